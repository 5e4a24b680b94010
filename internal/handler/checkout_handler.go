package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"paypalgw/internal/service"
)

type CheckoutHandler struct {
	checkout *service.CheckoutService
}

func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// InitiateExpress starts an Express Checkout session and returns the URL the
// buyer must be redirected to.
func (h *CheckoutHandler) InitiateExpress(c *gin.Context) {
	var payload orderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload"})
		return
	}
	order, err := payload.toOrder()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	redirect, err := h.checkout.InitiateExpressCheckout(c.Request.Context(), order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect_url": redirect})
}

// ExpressReturn finalizes the checkout after the buyer approved at PayPal.
// Only the order reference comes from the request; the token is read from the
// stored session.
func (h *CheckoutHandler) ExpressReturn(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id required"})
		return
	}
	p, err := h.checkout.OnExpressReturn(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ExpressCancel drops the session for an abandoned checkout.
func (h *CheckoutHandler) ExpressCancel(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id required"})
		return
	}
	if err := h.checkout.OnExpressCancel(orderID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// InitiateStandard builds the Website Payments Standard redirect.
func (h *CheckoutHandler) InitiateStandard(c *gin.Context) {
	var payload orderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload"})
		return
	}
	order, err := payload.toOrder()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	redirect, err := h.checkout.StandardRedirectURL(order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect_url": redirect})
}

// StandardReturn records the payment from the browser's return POST.
func (h *CheckoutHandler) StandardReturn(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id required"})
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		log.Printf("[CHECKOUT] standard return: bad form: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	p, err := h.checkout.OnStandardReturn(c.Request.Context(), orderID, c.Request.PostForm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
