package repository

import (
	"context"

	"vestra/internal/domain"
	"vestra/internal/models"

	"gorm.io/gorm"
)

type InvestmentRepository struct {
	db *gorm.DB
}

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

// ListActive returns every ACTIVE investment, oldest first.
func (r *InvestmentRepository) ListActive(ctx context.Context) ([]models.Investment, error) {
	var list []models.Investment
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.InvestmentStatusActive).
		Order("id ASC").
		Find(&list).Error
	return list, err
}
