// Package gateway is the UI-facing HTTP surface of the storefront. Every
// response uses the same envelope the commerce backend speaks, so the web
// client decodes one shape end to end.
package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cellex-webapp/cellex-storefront/pkg/cart"
	"github.com/cellex-webapp/cellex-storefront/pkg/checkout"
	"github.com/cellex-webapp/cellex-storefront/pkg/commerce"
	"github.com/cellex-webapp/cellex-storefront/pkg/config"
	"github.com/cellex-webapp/cellex-storefront/pkg/coupon"
	"github.com/cellex-webapp/cellex-storefront/pkg/notify"
	"github.com/cellex-webapp/cellex-storefront/pkg/search"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const (
	sessionCookie = "cellex_session"
	sessionHeader = "X-Session-Id"
	sessionKey    = "sessionID"
)

type Gateway struct {
	config    *config.Config
	logger    *zap.Logger
	router    *gin.Engine
	commerce  *commerce.Client
	carts     *cart.Service
	bridge    *cart.Bridge
	coupons   *coupon.Service
	checkouts *checkout.Orchestrator
	searches  *search.Service
	events    *notify.Publisher
}

func NewGateway(
	cfg *config.Config,
	logger *zap.Logger,
	commerceClient *commerce.Client,
	carts *cart.Service,
	bridge *cart.Bridge,
	coupons *coupon.Service,
	checkouts *checkout.Orchestrator,
	searches *search.Service,
	events *notify.Publisher,
) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Gateway{
		config:    cfg,
		logger:    logger,
		router:    router,
		commerce:  commerceClient,
		carts:     carts,
		bridge:    bridge,
		coupons:   coupons,
		checkouts: checkouts,
		searches:  searches,
		events:    events,
	}
}

func (g *Gateway) SetupRoutes() {
	// Health check
	g.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := g.router.Group("/api/v1")
	v1.Use(sessionMiddleware())
	{
		carts := v1.Group("/cart")
		{
			carts.GET("", g.listCart)
			carts.POST("/items", g.addCartItem)
			carts.PUT("/items/:productId", g.updateCartItem)
			carts.PUT("/items/:productId/selected", g.selectCartItem)
			carts.DELETE("/items/:productId", g.removeCartItem)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("/from-cart", g.createOrderFromCart)
			orders.GET("/:id", g.getOrder)
			orders.GET("/:id/coupons", g.listCoupons)
			orders.POST("/:id/coupon", g.applyCoupon)
			orders.DELETE("/:id/coupon", g.removeCoupon)
			orders.POST("/:id/checkout", g.checkoutOrder)
		}

		redirect := v1.Group("/checkout")
		{
			redirect.GET("/redirect", g.redirectState)
			redirect.POST("/redirect/cancel", g.cancelRedirect)
			redirect.DELETE("/session", g.clearSession)
		}

		v1.GET("/products", g.searchProducts)
	}

	// Swagger
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.config.Server.Host, g.config.Server.Port)
	g.logger.Info("Storefront gateway starting", zap.String("address", addr))
	return g.router.Run(addr)
}

// Router exposes the handler for tests.
func (g *Gateway) Router() http.Handler {
	return g.router
}

// respond wraps a successful result in the backend envelope shape.
func respond(c *gin.Context, result any) {
	c.JSON(http.StatusOK, gin.H{
		"code":   commerce.CodeSuccess,
		"result": result,
	})
}

func respondError(c *gin.Context, status, code int, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

const (
	codeInvalidRequest = 4000
	codeNotFound       = 4040
	codeUpstream       = 5020
)

// fail maps an error to the envelope. Business rejections keep the backend
// code and message; everything else collapses to a generic upstream
// failure the user can safely retry.
func (g *Gateway) fail(c *gin.Context, err error) {
	if apiErr, ok := commerce.AsAPIError(err); ok {
		respondError(c, http.StatusUnprocessableEntity, apiErr.Code, apiErr.Message)
		return
	}

	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, cart.ErrNotInCart),
		errors.Is(err, cart.ErrEmptySelection),
		errors.Is(err, checkout.ErrInvalidPaymentMethod):
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(c, http.StatusNotFound, codeNotFound, err.Error())
	default:
		g.logger.Error("upstream request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		respondError(c, http.StatusBadGateway, codeUpstream, "the operation could not be completed, please try again")
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// sessionMiddleware attaches a stable session ID: cookie first, then
// header, else a fresh UUID set back as a cookie.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || id == "" {
			id = c.GetHeader(sessionHeader)
		}
		if id == "" {
			id = uuid.NewString()
			c.SetCookie(sessionCookie, id, int((30 * 24 * time.Hour).Seconds()), "/", "", false, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
