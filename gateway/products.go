package gateway

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cellex-webapp/cellex-storefront/pkg/commerce"
	"github.com/cellex-webapp/cellex-storefront/pkg/search"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) searchProducts(c *gin.Context) {
	query := commerce.ProductQuery{
		Keyword: c.Query("keyword"),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.Query("size")); err == nil {
		query.Size = size
	}

	result, err := g.searches.Search(c.Request.Context(), sessionID(c), query)
	if err != nil {
		// A superseded query is not a failure; the newer request answers.
		if errors.Is(err, search.ErrSuperseded) {
			c.Status(http.StatusNoContent)
			return
		}
		g.fail(c, err)
		return
	}
	respond(c, result)
}
