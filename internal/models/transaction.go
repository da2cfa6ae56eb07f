package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction records one deposit, withdrawal or interest event. AccrualPeriod
// is only set on interest rows; together with InvestmentID it is unique, so a
// month can be credited at most once per investment.
type Transaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Reference       string          `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	Type            string          `gorm:"size:20;not null;index" json:"type"` // DEPOSIT, WITHDRAWAL, INTEREST
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Status          string          `gorm:"size:20;not null;index" json:"status"` // PENDING, APPROVED, REJECTED, PAID
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	InvestmentID    uint            `gorm:"not null;index;uniqueIndex:idx_interest_period" json:"investment_id"`
	EarlyWithdrawal bool            `gorm:"not null;default:false" json:"early_withdrawal"`
	AccrualPeriod   *string         `gorm:"size:7;uniqueIndex:idx_interest_period" json:"accrual_period,omitempty"`
	ProcessedBy     *uint           `json:"processed_by"`
	ProcessedAt     *time.Time      `json:"processed_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
