package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Investment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	PrincipalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"principal_amount"`
	Status          string          `gorm:"size:20;not null;index;default:'PENDING'" json:"status"` // PENDING, ACTIVE, COMPLETED, CANCELLED, REJECTED
	StartDate       *time.Time      `json:"start_date"`
	EndDate         *time.Time      `json:"end_date"`
	DurationMonths  int             `gorm:"not null;default:18" json:"duration_months"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Investment) TableName() string {
	return "investments"
}
