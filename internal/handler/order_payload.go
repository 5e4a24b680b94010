package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"paypalgw/internal/models"
	"paypalgw/internal/service"
	"paypalgw/pkg/money"
	"paypalgw/pkg/paypal"
)

// orderPayload is the order snapshot posted by the commerce backend: items,
// adjustments and addresses, amounts as exact decimal strings.
type orderPayload struct {
	ID       string `json:"id" binding:"required"`
	Email    string `json:"email"`
	Currency string `json:"currency" binding:"required"`
	Items    []struct {
		Title     string `json:"title" binding:"required"`
		UnitPrice string `json:"unit_price" binding:"required"`
		Quantity  int64  `json:"quantity" binding:"required"`
	} `json:"items"`
	Adjustments []struct {
		Type   string `json:"type" binding:"required"`
		Label  string `json:"label"`
		Amount string `json:"amount" binding:"required"`
	} `json:"adjustments"`
	ShippingProfiles []struct {
		Name        string `json:"name"`
		Street1     string `json:"street1"`
		Street2     string `json:"street2"`
		City        string `json:"city"`
		State       string `json:"state"`
		PostalCode  string `json:"postal_code"`
		CountryCode string `json:"country_code"`
	} `json:"shipping_profiles"`
}

func (p *orderPayload) toOrder() (*models.Order, error) {
	order := &models.Order{
		ID:       p.ID,
		Email:    p.Email,
		Currency: p.Currency,
	}
	for _, item := range p.Items {
		amt, err := money.New(item.UnitPrice, p.Currency)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", item.Title, err)
		}
		order.Items = append(order.Items, models.OrderItem{
			Title:     item.Title,
			UnitPrice: amt,
			Quantity:  item.Quantity,
		})
	}
	for _, adj := range p.Adjustments {
		amt, err := money.New(adj.Amount, p.Currency)
		if err != nil {
			return nil, fmt.Errorf("adjustment %q: %w", adj.Label, err)
		}
		order.Adjustments = append(order.Adjustments, models.Adjustment{
			Type:   adj.Type,
			Label:  adj.Label,
			Amount: amt,
		})
	}
	for _, a := range p.ShippingProfiles {
		order.ShippingProfiles = append(order.ShippingProfiles, models.Address{
			Name:        a.Name,
			Street1:     a.Street1,
			Street2:     a.Street2,
			City:        a.City,
			State:       a.State,
			PostalCode:  a.PostalCode,
			CountryCode: a.CountryCode,
		})
	}
	return order, nil
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var declined *paypal.DeclinedError
	switch {
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(409, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRequest):
		c.JSON(422, gin.H{"error": err.Error()})
	case errors.As(err, &declined):
		c.JSON(402, gin.H{"error": declined.Message, "code": declined.Code})
	case errors.Is(err, paypal.ErrGatewayUnreachable):
		c.JSON(502, gin.H{"error": "paypal unreachable"})
	default:
		c.JSON(500, gin.H{"error": "internal error"})
	}
}
