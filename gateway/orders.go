package gateway

import (
	"net/http"

	"github.com/cellex-webapp/cellex-storefront/pkg/models"
	"github.com/cellex-webapp/cellex-storefront/pkg/notify"
	"github.com/cellex-webapp/cellex-storefront/pkg/status"
	"github.com/gin-gonic/gin"
)

type createFromCartRequest struct {
	Items []models.CreateOrderItem `json:"items"`
}

type applyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// orderView is an order plus its projected status tag. History entries get
// tags too so old statuses render consistently.
type orderView struct {
	models.Order
	StatusTag  status.Tag   `json:"status_tag"`
	HistoryTag []status.Tag `json:"history_tags,omitempty"`
}

func viewOf(order *models.Order) orderView {
	view := orderView{
		Order:     *order,
		StatusTag: status.Project(order.Status),
	}
	for _, entry := range order.StatusHistory {
		view.HistoryTag = append(view.HistoryTag, status.Project(entry.Status))
	}
	return view
}

func (g *Gateway) createOrderFromCart(c *gin.Context) {
	var req createFromCartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
	}

	order, warnings, err := g.bridge.CreateOrder(c.Request.Context(), sessionID(c), req.Items)
	if err != nil {
		g.fail(c, err)
		return
	}

	g.events.PublishAsync(notify.OrderEvent{
		Type:        notify.EventOrderCreated,
		OrderID:     order.ID,
		SessionID:   sessionID(c),
		TotalAmount: order.TotalAmount.String(),
	})

	respond(c, gin.H{
		"order":    viewOf(order),
		"warnings": warnings,
	})
}

func (g *Gateway) getOrder(c *gin.Context) {
	order, err := g.commerce.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, viewOf(order))
}

func (g *Gateway) listCoupons(c *gin.Context) {
	coupons, err := g.coupons.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, gin.H{"coupons": coupons})
}

func (g *Gateway) applyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	order, err := g.coupons.Apply(c.Request.Context(), sessionID(c), c.Param("id"), req.Code)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, viewOf(order))
}

func (g *Gateway) removeCoupon(c *gin.Context) {
	order, err := g.coupons.Remove(c.Request.Context(), sessionID(c), c.Param("id"))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, viewOf(order))
}
