package repository

import (
	"gorm.io/gorm"

	"paypalgw/internal/models"
)

type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) Create(m *models.PaymentMethod) error {
	return r.db.Create(m).Error
}

func (r *PaymentMethodRepository) GetByID(id uint) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := r.db.First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PaymentMethodRepository) GetByRemoteID(remoteID string) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := r.db.Where("remote_id = ?", remoteID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PaymentMethodRepository) Delete(m *models.PaymentMethod) error {
	return r.db.Delete(m).Error
}
