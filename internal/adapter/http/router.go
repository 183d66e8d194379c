package http

import (
	"log/slog"
	"net/http"

	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Payment  *PaymentHandler
	Order    *OrderHandler
	Token    *TokenHandler
}

type RouterOptions struct {
	Session middleware.SessionOptions
	Logger  *slog.Logger // nil => logging.New("http")
}

func NewRouter(h Handlers, authz *middleware.Authz, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := opts.Logger
	if l == nil {
		l = logging.New("http")
	}
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/token", h.Token.IssueToken)
		v1.GET("/categories", h.Catalog.ListCategories)
		v1.GET("/products", h.Catalog.ListProducts)

		// storefront routes share the visitor session
		shop := v1.Group("", middleware.Session(opts.Session))
		shop.GET("/cart", h.Cart.View)
		shop.POST("/cart/items", h.Cart.Add)
		shop.POST("/cart/items/update", h.Cart.Update)
		shop.POST("/checkout", h.Checkout.Checkout)
		shop.POST("/orders/:id/payment", h.Payment.Start)
		shop.POST("/payments/confirm", h.Payment.Confirm)
		shop.GET("/orders/:id", h.Order.GetOrder)
		shop.GET("/orders/:id/invoice", h.Order.Invoice)

		admin := v1.Group("/admin")
		admin.GET("/orders/:id", authz.Require("orders.read"), h.Order.AdminGetOrder)
	}

	return r
}
