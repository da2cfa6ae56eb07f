package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestorBalance is the authoritative financial state of one investment.
// Version is bumped on every write and checked by the ledger store.
type InvestorBalance struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	InvestmentID     uint            `gorm:"uniqueIndex;not null" json:"investment_id"`
	UserID           uint            `gorm:"not null;index" json:"user_id"`
	AvailableBalance decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"available_balance"`
	PrincipalLocked  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"principal_locked"`
	TotalDeposited   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_deposited"`
	TotalWithdrawn   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_withdrawn"`
	RoiAccrued       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"roi_accrued"`
	LastComputedAt   *time.Time      `json:"last_computed_at"`
	Version          uint            `gorm:"not null;default:0" json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (InvestorBalance) TableName() string {
	return "investor_balances"
}
