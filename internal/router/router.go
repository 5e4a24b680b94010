package router

import (
	"time"

	"paypalgw/config"
	"paypalgw/internal/handler"
	"paypalgw/internal/middleware"
	"paypalgw/internal/repository"
	"paypalgw/internal/service"
	"paypalgw/pkg/paypal"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	paymentRepo := repository.NewPaymentRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Gateway clients
	ec := paypal.NewNVPClient("", paypal.NVPConfig{
		User:      cfg.ExpressCheckout.User,
		Pwd:       cfg.ExpressCheckout.Pwd,
		Signature: cfg.ExpressCheckout.Signature,
		TestMode:  cfg.ExpressCheckout.TestMode,
	})
	pro := paypal.NewProClient("", paypal.ProConfig{
		ClientID: cfg.Pro.ClientID,
		Secret:   cfg.Pro.Secret,
		TestMode: cfg.Pro.TestMode,
	})
	standard := paypal.NewStandardClient(paypal.StandardConfig{
		Business: cfg.Standard.Business,
		TestMode: cfg.Standard.TestMode,
	})
	validator := paypal.NewIPNValidator("", cfg.ExpressCheckout.TestMode, cfg.IPN.ValidateTimeout)

	// Services. The lock registry is shared: synchronous operations and the
	// IPN reconciler must serialize on the same per-payment locks.
	locks := service.NewPaymentLocks()
	paymentSvc := service.NewPaymentService(paymentRepo, methodRepo, ec, pro, locks)
	checkoutSvc := service.NewCheckoutService(paymentRepo, sessionRepo, ec, standard, service.CheckoutConfig{
		Capture:             cfg.ExpressCheckout.Capture,
		SendShippingAddress: cfg.ExpressCheckout.SendShippingAddress,
		ReturnURL:           cfg.Server.BaseURL + "/api/v1/checkout/express/return",
		CancelURL:           cfg.Server.BaseURL + "/api/v1/checkout/express/cancel",
		NotifyURL:           cfg.Server.BaseURL + "/api/v1/webhooks/paypal/ipn",
	})
	ipnSvc := service.NewIPNService(paymentRepo, validator, locks)

	// Handlers
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	ipnHandler := handler.NewIPNHandler(ipnSvc)

	api := r.Group("/api/v1")

	checkout := api.Group("/checkout")
	checkout.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))
	{
		checkout.POST("/express", checkoutHandler.InitiateExpress)
		checkout.GET("/express/return", checkoutHandler.ExpressReturn)
		checkout.GET("/express/cancel", checkoutHandler.ExpressCancel)
		checkout.POST("/standard", checkoutHandler.InitiateStandard)
		checkout.POST("/standard/return", checkoutHandler.StandardReturn)
	}

	merchant := api.Group("/")
	merchant.Use(middleware.MerchantAuth(&cfg.Auth))
	{
		merchant.POST("payments", paymentHandler.Create)
		merchant.POST("payments/:id/capture", paymentHandler.Capture)
		merchant.POST("payments/:id/void", paymentHandler.Void)
		merchant.POST("payments/:id/refund", paymentHandler.Refund)
		merchant.POST("payment-methods", paymentHandler.CreateMethod)
		merchant.DELETE("payment-methods/:id", paymentHandler.DeleteMethod)
	}

	// IPN is never rate limited or authenticated at the HTTP layer; its
	// authenticity comes from the validation round-trip.
	api.POST("/webhooks/paypal/ipn", ipnHandler.Handle)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
