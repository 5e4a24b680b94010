package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"paypalgw/internal/service"
	"paypalgw/pkg/money"
	"paypalgw/pkg/paypal"
)

// PaymentHandler exposes the merchant operations: direct PaymentsPro charges,
// capture/void/refund, and card vaulting.
type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func paymentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return 0, false
	}
	return uint(id), true
}

type createPaymentPayload struct {
	Order   orderPayload `json:"order" binding:"required"`
	Capture bool         `json:"capture"`
	Card    *struct {
		Number      string `json:"number" binding:"required"`
		Type        string `json:"type" binding:"required"`
		ExpireMonth int    `json:"expire_month" binding:"required"`
		ExpireYear  int    `json:"expire_year" binding:"required"`
		CVV2        string `json:"cvv2"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
	} `json:"card"`
	PaymentMethodID uint `json:"payment_method_id"`
}

// Create charges a card (or vaulted card) through PaymentsPro.
func (h *PaymentHandler) Create(c *gin.Context) {
	var payload createPaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment payload"})
		return
	}
	order, err := payload.Order.toOrder()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := service.CreateProPaymentRequest{
		Order:           order,
		Capture:         payload.Capture,
		PaymentMethodID: payload.PaymentMethodID,
	}
	if payload.Card != nil {
		req.Card = &paypal.CreditCard{
			Number:      payload.Card.Number,
			Type:        payload.Card.Type,
			ExpireMonth: payload.Card.ExpireMonth,
			ExpireYear:  payload.Card.ExpireYear,
			CVV2:        payload.Card.CVV2,
			FirstName:   payload.Card.FirstName,
			LastName:    payload.Card.LastName,
		}
	}
	p, err := h.payments.CreateProPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type amountPayload struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Capture collects funds from an authorization. An empty body captures the
// full authorized amount.
func (h *PaymentHandler) Capture(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	var payload amountPayload
	_ = c.ShouldBindJSON(&payload)
	var amt *money.Amount
	if payload.Amount != "" {
		a, err := money.New(payload.Amount, payload.Currency)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		amt = &a
	}
	p, err := h.payments.Capture(c.Request.Context(), id, amt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) Void(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	p, err := h.payments.Void(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	var payload amountPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refund amount required"})
		return
	}
	amt, err := money.New(payload.Amount, payload.Currency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.payments.Refund(c.Request.Context(), id, amt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type vaultPayload struct {
	OwnerRef    string `json:"owner_ref" binding:"required"`
	Number      string `json:"number" binding:"required"`
	Type        string `json:"type" binding:"required"`
	ExpireMonth int    `json:"expire_month" binding:"required"`
	ExpireYear  int    `json:"expire_year" binding:"required"`
	CVV2        string `json:"cvv2"`
}

// CreateMethod vaults a card at PayPal; the response carries only the masked
// last four digits.
func (h *PaymentHandler) CreateMethod(c *gin.Context) {
	var payload vaultPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card payload"})
		return
	}
	m, err := h.payments.CreatePaymentMethod(c.Request.Context(), &paypal.CreditCard{
		Number:      payload.Number,
		Type:        payload.Type,
		ExpireMonth: payload.ExpireMonth,
		ExpireYear:  payload.ExpireYear,
		CVV2:        payload.CVV2,
	}, payload.OwnerRef)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *PaymentHandler) DeleteMethod(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	if err := h.payments.DeletePaymentMethod(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
