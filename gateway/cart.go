package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type selectCartItemRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

func (g *Gateway) listCart(c *gin.Context) {
	lines, err := g.carts.List(c.Request.Context(), sessionID(c))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, gin.H{"items": lines})
}

func (g *Gateway) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	result, err := g.carts.AddItem(c.Request.Context(), sessionID(c), req.ProductID, req.Quantity)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, result)
}

func (g *Gateway) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	result, err := g.carts.UpdateQuantity(c.Request.Context(), sessionID(c), c.Param("productId"), req.Quantity)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, result)
}

func (g *Gateway) selectCartItem(c *gin.Context) {
	var req selectCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	if err := g.carts.SetSelected(c.Request.Context(), sessionID(c), c.Param("productId"), *req.Selected); err != nil {
		g.fail(c, err)
		return
	}
	respond(c, gin.H{"updated": true})
}

func (g *Gateway) removeCartItem(c *gin.Context) {
	if err := g.carts.RemoveItem(c.Request.Context(), sessionID(c), c.Param("productId")); err != nil {
		g.fail(c, err)
		return
	}
	respond(c, gin.H{"removed": true})
}
