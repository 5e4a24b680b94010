package repository

import (
	"errors"

	"gorm.io/gorm"

	"paypalgw/internal/models"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new checkout session, replacing any stale one left on the
// same order by an abandoned checkout.
func (r *SessionRepository) Create(s *models.CheckoutSession) error {
	r.db.Where("order_id = ?", s.OrderID).Delete(&models.CheckoutSession{})
	return r.db.Create(s).Error
}

func (r *SessionRepository) GetByOrderID(orderID string) (*models.CheckoutSession, error) {
	var s models.CheckoutSession
	err := r.db.Where("order_id = ?", orderID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Update(s *models.CheckoutSession) error {
	return r.db.Save(s).Error
}

func (r *SessionRepository) Delete(s *models.CheckoutSession) error {
	return r.db.Delete(s).Error
}
