package repository

import (
	"context"
	"errors"
	"time"

	"vestra/internal/domain"
	"vestra/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrVersionConflict means the balance row changed after it was read.
	ErrVersionConflict = errors.New("investor balance version conflict")
	// ErrStatusConflict means a status guard matched no row.
	ErrStatusConflict = errors.New("status changed concurrently")
)

// LedgerRepository is the transactional store behind the settlement engine.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Atomically runs fn inside one database transaction. Any error returned by
// fn, or a panic, rolls back every write fn made.
func (r *LedgerRepository) Atomically(ctx context.Context, fn func(l *LedgerTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerTx{db: tx})
	})
}

// LedgerTx exposes ledger reads and writes bound to one open transaction.
// Lock* reads take row locks (SELECT ... FOR UPDATE) on drivers that support them.
type LedgerTx struct {
	db *gorm.DB
}

func (l *LedgerTx) forUpdate() *gorm.DB {
	return l.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (l *LedgerTx) LockTransaction(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := l.forUpdate().First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (l *LedgerTx) LockInvestment(id uint) (*models.Investment, error) {
	var inv models.Investment
	if err := l.forUpdate().First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (l *LedgerTx) LockBalance(investmentID uint) (*models.InvestorBalance, error) {
	var b models.InvestorBalance
	if err := l.forUpdate().Where("investment_id = ?", investmentID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// TransitionTransaction moves a transaction from one status to another only if
// it is still in the expected status, recording who processed it and when.
func (l *LedgerTx) TransitionTransaction(id uint, from, to string, processedBy *uint, at time.Time) error {
	res := l.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":       to,
			"processed_by": processedBy,
			"processed_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// TransitionInvestment is the investment counterpart of TransitionTransaction.
// extra columns are written in the same statement.
func (l *LedgerTx) TransitionInvestment(id uint, from, to string, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := l.db.Model(&models.Investment{}).Where("id = ? AND status = ?", id, from).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// SetPrincipal overwrites an investment's principal amount.
func (l *LedgerTx) SetPrincipal(id uint, principal decimal.Decimal, at time.Time) error {
	return l.db.Model(&models.Investment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"principal_amount": principal, "updated_at": at}).Error
}

// SaveBalance writes the mutable balance columns if the row still carries the
// version b was read with, then bumps b.Version.
func (l *LedgerTx) SaveBalance(b *models.InvestorBalance, at time.Time) error {
	res := l.db.Model(&models.InvestorBalance{}).
		Where("id = ? AND version = ?", b.ID, b.Version).
		Updates(map[string]interface{}{
			"available_balance": b.AvailableBalance,
			"principal_locked":  b.PrincipalLocked,
			"total_deposited":   b.TotalDeposited,
			"total_withdrawn":   b.TotalWithdrawn,
			"roi_accrued":       b.RoiAccrued,
			"last_computed_at":  b.LastComputedAt,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	b.Version++
	b.UpdatedAt = at
	return nil
}

func (l *LedgerTx) CreateTransaction(t *models.Transaction) error {
	return l.db.Create(t).Error
}

func (l *LedgerTx) CreatePenalty(p *models.WithdrawalPenalty) error {
	return l.db.Create(p).Error
}

// InterestCredited reports whether a PAID interest transaction already exists
// for the investment in the given accrual period.
func (l *LedgerTx) InterestCredited(investmentID uint, period string) (bool, error) {
	var n int64
	err := l.db.Model(&models.Transaction{}).
		Where("investment_id = ? AND type = ? AND status = ? AND accrual_period = ?",
			investmentID, domain.TxTypeInterest, domain.TxStatusPaid, period).
		Count(&n).Error
	return n > 0, err
}
