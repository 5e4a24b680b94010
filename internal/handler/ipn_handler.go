package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"paypalgw/internal/service"
)

// IPNHandler receives PayPal's asynchronous notifications. Per IPN protocol
// convention it acknowledges with 200 even when a notification is rejected by
// the authenticity check; only a protocol-level error (unrecognized
// payment_status) gets a 400 back.
type IPNHandler struct {
	ipn *service.IPNService
}

func NewIPNHandler(ipn *service.IPNService) *IPNHandler {
	return &IPNHandler{ipn: ipn}
}

func (h *IPNHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("[IPN] read body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	verdict, err := h.ipn.Process(c.Request.Context(), body)
	if err != nil {
		if errors.Is(err, service.ErrProtocol) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "verdict": verdict})
			return
		}
		log.Printf("[IPN] processing error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verdict": verdict})
}
