package service

import "paypalgw/internal/models"

// Persistence is owned by external repositories; services only see these
// narrow store interfaces and mutate records in memory before handing them
// back. internal/repository satisfies all three.

type PaymentStore interface {
	Create(p *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	GetByRemoteID(remoteID string) (*models.Payment, error)
	Update(p *models.Payment) error
}

type SessionStore interface {
	Create(s *models.CheckoutSession) error
	GetByOrderID(orderID string) (*models.CheckoutSession, error)
	Update(s *models.CheckoutSession) error
	Delete(s *models.CheckoutSession) error
}

type PaymentMethodStore interface {
	Create(m *models.PaymentMethod) error
	GetByID(id uint) (*models.PaymentMethod, error)
	Delete(m *models.PaymentMethod) error
}
