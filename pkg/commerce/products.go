package commerce

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/cellex-webapp/cellex-storefront/pkg/models"
)

// GetProduct fetches a single product, including its current stock figure.
func (c *Client) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	if err := c.get(ctx, "/products/"+pathEscape(productID), &product); err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	return &product, nil
}

type ProductQuery struct {
	Keyword string
	Page    int
	Size    int
}

// SearchProducts runs a paged catalog search.
func (c *Client) SearchProducts(ctx context.Context, query ProductQuery) (*models.ProductPage, error) {
	params := url.Values{}
	if query.Keyword != "" {
		params.Set("keyword", query.Keyword)
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.Size > 0 {
		params.Set("size", strconv.Itoa(query.Size))
	}

	path := "/products"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page models.ProductPage
	if err := c.get(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return &page, nil
}
