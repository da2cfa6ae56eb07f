package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalPenalty is written once, when an early withdrawal is approved with a
// non-zero penalty. PenaltyAmount carries two more decimal places than ledger
// amounts so a quarter of any amount is stored exactly.
type WithdrawalPenalty struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	TransactionID     uint            `gorm:"uniqueIndex;not null" json:"transaction_id"`
	PenaltyPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"penalty_percentage"`
	PenaltyAmount     decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"penalty_amount"`
	Reason            string          `gorm:"size:255;not null" json:"reason"`
	AppliedByAdminID  uint            `gorm:"not null;index" json:"applied_by_admin_id"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (WithdrawalPenalty) TableName() string {
	return "withdrawal_penalties"
}
