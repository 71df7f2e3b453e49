package gateway

import (
	"net/http"

	"github.com/cellex-webapp/cellex-storefront/pkg/models"
	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
}

func (g *Gateway) checkoutOrder(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	result, err := g.checkouts.Checkout(c.Request.Context(), sessionID(c), c.Param("id"), req.PaymentMethod)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, result)
}

func (g *Gateway) redirectState(c *gin.Context) {
	state, err := g.checkouts.RedirectState(c.Request.Context(), sessionID(c))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, state)
}

func (g *Gateway) cancelRedirect(c *gin.Context) {
	cancelled := g.checkouts.CancelRedirect(sessionID(c))
	respond(c, gin.H{"cancelled": cancelled})
}

func (g *Gateway) clearSession(c *gin.Context) {
	if err := g.checkouts.ClearSession(c.Request.Context(), sessionID(c)); err != nil {
		g.fail(c, err)
		return
	}
	respond(c, gin.H{"cleared": true})
}
