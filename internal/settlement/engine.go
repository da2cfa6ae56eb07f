// Package settlement applies the financial consequences of approved deposits,
// withdrawals and interest credits to investor balances.
//
// Every command authorizes the operator first, then reads, validates and
// writes inside a single ledger transaction. A command either applies fully
// or returns one of the errors in errors.go and leaves the ledger untouched.
package settlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vestra/internal/common"
	"vestra/internal/domain"
	"vestra/internal/models"
	"vestra/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Authorizer decides whether an operator holds a role. It must return an
// error matching ErrUnauthorized when the answer is no.
type Authorizer interface {
	Authorize(ctx context.Context, operatorID uint, requiredRole string) error
}

// Result describes the state left behind by a successful command.
type Result struct {
	Op            string                  `json:"op"`
	TransactionID uint                    `json:"transaction_id,omitempty"`
	InvestmentID  uint                    `json:"investment_id"`
	Status        string                  `json:"status"`
	Penalty       decimal.Decimal         `json:"penalty"`
	NetPayout     decimal.Decimal         `json:"net_payout"`
	Balance       *models.InvestorBalance `json:"balance,omitempty"`
}

type Engine struct {
	ledger *repository.LedgerRepository
	guard  Authorizer
	now    func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(ledger *repository.LedgerRepository, guard Authorizer, opts ...Option) *Engine {
	e := &Engine{ledger: ledger, guard: guard, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ApproveDeposit activates the investment behind a pending deposit and adds
// the amount to total deposited. The available balance is not changed.
func (e *Engine) ApproveDeposit(ctx context.Context, cmd ApproveDeposit) (*Result, error) {
	op := cmd.opName()
	if err := e.authorize(ctx, op, cmd.ApproverID); err != nil {
		return nil, err
	}
	now := e.now().UTC()
	res := &Result{Op: op, TransactionID: cmd.TransactionID}

	err := e.ledger.Atomically(ctx, func(l *repository.LedgerTx) error {
		tx, err := l.LockTransaction(cmd.TransactionID)
		if err != nil {
			return missing(op, err, ErrNotFound)
		}
		if tx.Type != domain.TxTypeDeposit || tx.Status != domain.TxStatusPending {
			return fail(op, ErrInvalidState)
		}
		if !ValidAmount(tx.Amount) {
			return fail(op, ErrInvalidAmount)
		}
		inv, err := l.LockInvestment(tx.InvestmentID)
		if err != nil {
			return missing(op, err, ErrNotFound)
		}
		if !domain.CanTransitionInvestment(inv.Status, domain.InvestmentStatusActive) {
			return fail(op, ErrInvalidState)
		}
		bal, err := l.LockBalance(inv.ID)
		if err != nil {
			return missing(op, err, ErrBalanceNotFound)
		}

		if err := l.TransitionTransaction(tx.ID, domain.TxStatusPending, domain.TxStatusApproved, &cmd.ApproverID, now); err != nil {
			return conflict(op, err, ErrInvalidState)
		}
		end := now.AddDate(0, domain.MaturityMonths, 0)
		err = l.TransitionInvestment(inv.ID, inv.Status, domain.InvestmentStatusActive, map[string]interface{}{
			"start_date":      now,
			"end_date":        end,
			"duration_months": domain.MaturityMonths,
			"updated_at":      now,
		})
		if err != nil {
			return conflict(op, err, ErrInvalidState)
		}

		bal.TotalDeposited = bal.TotalDeposited.Add(tx.Amount)
		bal.LastComputedAt = &now
		if err := l.SaveBalance(bal, now); err != nil {
			return err
		}

		res.InvestmentID = inv.ID
		res.Status = domain.TxStatusApproved
		res.Balance = bal
		return nil
	})
	if err != nil {
		return nil, e.finish(op, err)
	}
	e.applied(res, &cmd.ApproverID)
	return res, nil
}

// RejectDeposit rejects a pending deposit and the pending investment it funds.
func (e *Engine) RejectDeposit(ctx context.Context, cmd RejectDeposit) (*Result, error) {
	op := cmd.opName()
	if err := e.authorize(ctx, op, cmd.ApproverID); err != nil {
		return nil, err
	}
	now := e.now().UTC()
	res := &Result{Op: op, TransactionID: cmd.TransactionID}

	err := e.ledger.Atomically(ctx, func(l *repository.LedgerTx) error {
		tx, err := l.LockTransaction(cmd.TransactionID)
		if err != nil {
			return missing(op, err, ErrNotFound)
		}
		if tx.Type != domain.TxTypeDeposit || tx.Status != domain.TxStatusPending {
			return fail(op, ErrInvalidState)
		}
		inv, err := l.LockInvestment(tx.InvestmentID)
		if err != nil {
			return missing(op, err, ErrNotFound)
		}

		if err := l.TransitionTransaction(tx.ID, domain.TxStatusPending, domain.TxStatusRejected, &cmd.ApproverID, now); err != nil {
			return conflict(op, err, ErrInvalidState)
		}
		if domain.CanTransitionInvestment(inv.Status, domain.InvestmentStatusRejected) {
			err := l.TransitionInvestment(inv.ID, inv.Status, domain.InvestmentStatusRejected, map[string]interface{}{"updated_at": now})
			if err != nil {
				return conflict(op, err, ErrInvalidState)
			}
		}

		res.InvestmentID = inv.ID
		res.Status = domain.TxStatusRejected
		return nil
	})
	if err != nil {
		return nil, e.finish(op, err)
	}
	e.applied(res, &cmd.ApproverID)
	return res, nil
}

// ApproveWithdrawal debits the balance for a pending withdrawal. Early
// withdrawals may draw on locked principal; the principal part is penalized
// and the investment's principal amount is reduced.
func (e *Engine) ApproveWithdrawal(ctx context.Context, cmd ApproveWithdrawal) (*Result, error) {
	op := cmd.opName()
	if err := e.authorize(ctx, op, cmd.ApproverID); err != nil {
		return nil, err
	}
	now := e.now().UTC()
	res := &Result{Op: op, TransactionID: cmd.TransactionID}

	err := e.ledger.Atomically(ctx, func(l *repository.LedgerTx) error {
		tx, err := l.LockTransaction(cmd.TransactionID)
		if err != nil {
			return missing(op, err, ErrNotFound)
		}
		if tx.Type != domain.TxTypeWithdrawal {
			return fail(op, ErrInvalidState)
		}
		if tx.Status != domain.TxStatusPending {
			return fail(op, ErrAlreadyProcessed)
		}
		inv, err := l.LockInvestment(tx.InvestmentID)
		if err != nil {
			return missing(op, err, ErrNotFound)
		}
		bal, err := l.LockBalance(inv.ID)
		if err != nil {
			return missing(op, err, ErrBalanceNotFound)
		}

		plan, err := PlanWithdrawal(tx.Amount, bal.AvailableBalance, bal.PrincipalLocked, tx.EarlyWithdrawal)
		if err != nil {
			return fail(op, err)
		}

		bal.AvailableBalance = plan.NewAvailable
		bal.PrincipalLocked = plan.NewLocked
		bal.TotalWithdrawn = bal.TotalWithdrawn.Add(plan.Amount)
		if err := l.SaveBalance(bal, now); err != nil {
			return err
		}

		if plan.Penalty.IsPositive() {
			penalty := &models.WithdrawalPenalty{
				TransactionID:     tx.ID,
				PenaltyPercentage: PenaltyPercentage,
				PenaltyAmount:     plan.Penalty,
				Reason:            EarlyWithdrawalReason,
				AppliedByAdminID:  cmd.ApproverID,
				CreatedAt:         now,
			}
			if err := l.CreatePenalty(penalty); err != nil {
				return err
			}
			principal := decimal.Max(decimal.Zero, inv.PrincipalAmount.Sub(plan.Amount))
			if err := l.SetPrincipal(inv.ID, principal, now); err != nil {
				return err
			}
		}

		if err := l.TransitionTransaction(tx.ID, domain.TxStatusPending, domain.TxStatusApproved, &cmd.ApproverID, now); err != nil {
			return conflict(op, err, ErrAlreadyProcessed)
		}

		res.InvestmentID = inv.ID
		res.Status = domain.TxStatusApproved
		res.Penalty = plan.Penalty
		res.NetPayout = plan.NetPayout
		res.Balance = bal
		return nil
	})
	if err != nil {
		return nil, e.finish(op, err)
	}
	e.applied(res, &cmd.ApproverID)
	return res, nil
}

// RejectWithdrawal rejects a pending withdrawal. Balances are not touched.
func (e *Engine) RejectWithdrawal(ctx context.Context, cmd RejectWithdrawal) (*Result, error) {
	op := cmd.opName()
	if err := e.authorize(ctx, op, cmd.ApproverID); err != nil {
		return nil, err
	}
	now := e.now().UTC()
	res := &Result{Op: op, TransactionID: cmd.TransactionID}

	err := e.ledger.Atomically(ctx, func(l *repository.LedgerTx) error {
		tx, err := l.LockTransaction(cmd.TransactionID)
		if err != nil {
			return missing(op, err, ErrNotFound)
		}
		if tx.Type != domain.TxTypeWithdrawal {
			return fail(op, ErrInvalidState)
		}
		if tx.Status != domain.TxStatusPending {
			return fail(op, ErrAlreadyProcessed)
		}
		if err := l.TransitionTransaction(tx.ID, domain.TxStatusPending, domain.TxStatusRejected, &cmd.ApproverID, now); err != nil {
			return conflict(op, err, ErrAlreadyProcessed)
		}
		res.InvestmentID = tx.InvestmentID
		res.Status = domain.TxStatusRejected
		return nil
	})
	if err != nil {
		return nil, e.finish(op, err)
	}
	e.applied(res, &cmd.ApproverID)
	return res, nil
}

// CreditRoi credits interest for the current calendar month (UTC) to the
// investment's available balance. A month is credited at most once.
func (e *Engine) CreditRoi(ctx context.Context, cmd CreditRoi) (*Result, error) {
	op := cmd.opName()
	if cmd.ApproverID != nil {
		if err := e.authorize(ctx, op, *cmd.ApproverID); err != nil {
			return nil, err
		}
	}
	if !ValidAmount(cmd.Amount) {
		return nil, fail(op, ErrInvalidAmount)
	}
	now := e.now().UTC()
	period := AccrualPeriod(now)
	res := &Result{Op: op, InvestmentID: cmd.InvestmentID}

	err := e.ledger.Atomically(ctx, func(l *repository.LedgerTx) error {
		inv, err := l.LockInvestment(cmd.InvestmentID)
		if err != nil {
			return missing(op, err, ErrNotFound)
		}
		if inv.UserID != cmd.UserID || inv.Status != domain.InvestmentStatusActive {
			return fail(op, ErrInvalidState)
		}
		bal, err := l.LockBalance(inv.ID)
		if err != nil {
			return missing(op, err, ErrBalanceNotFound)
		}

		credited, err := l.InterestCredited(inv.ID, period)
		if err != nil {
			return err
		}
		if credited {
			return fail(op, ErrAlreadyCredited)
		}

		interest := &models.Transaction{
			Reference:     uuid.NewString(),
			Type:          domain.TxTypeInterest,
			Amount:        cmd.Amount,
			Status:        domain.TxStatusPaid,
			UserID:        inv.UserID,
			InvestmentID:  inv.ID,
			AccrualPeriod: &period,
			ProcessedBy:   cmd.ApproverID,
			ProcessedAt:   &now,
		}
		if err := l.CreateTransaction(interest); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fail(op, ErrAlreadyCredited)
			}
			return err
		}

		bal.RoiAccrued = bal.RoiAccrued.Add(cmd.Amount)
		bal.AvailableBalance = bal.AvailableBalance.Add(cmd.Amount)
		bal.LastComputedAt = &now
		if err := l.SaveBalance(bal, now); err != nil {
			return err
		}

		res.TransactionID = interest.ID
		res.Status = domain.TxStatusPaid
		res.Balance = bal
		return nil
	})
	if err != nil {
		return nil, e.finish(op, err)
	}
	e.applied(res, cmd.ApproverID)
	return res, nil
}

// MarkWithdrawalPaid flips an approved withdrawal to PAID once funds have left.
func (e *Engine) MarkWithdrawalPaid(ctx context.Context, cmd MarkWithdrawalPaid) (*Result, error) {
	op := cmd.opName()
	if err := e.authorize(ctx, op, cmd.ApproverID); err != nil {
		return nil, err
	}
	now := e.now().UTC()
	res := &Result{Op: op, TransactionID: cmd.TransactionID}

	err := e.ledger.Atomically(ctx, func(l *repository.LedgerTx) error {
		tx, err := l.LockTransaction(cmd.TransactionID)
		if err != nil {
			return missing(op, err, ErrNotFound)
		}
		if !domain.CanTransitionTx(tx.Type, tx.Status, domain.TxStatusPaid) {
			return fail(op, ErrInvalidTransition)
		}
		if err := l.TransitionTransaction(tx.ID, tx.Status, domain.TxStatusPaid, &cmd.ApproverID, now); err != nil {
			return conflict(op, err, ErrInvalidTransition)
		}
		res.InvestmentID = tx.InvestmentID
		res.Status = domain.TxStatusPaid
		return nil
	})
	if err != nil {
		return nil, e.finish(op, err)
	}
	e.applied(res, &cmd.ApproverID)
	return res, nil
}

// UpdateInvestmentStatus moves an ACTIVE investment to COMPLETED or CANCELLED.
func (e *Engine) UpdateInvestmentStatus(ctx context.Context, cmd UpdateInvestmentStatus) (*Result, error) {
	op := cmd.opName()
	if err := e.authorize(ctx, op, cmd.ApproverID); err != nil {
		return nil, err
	}
	if cmd.Status != domain.InvestmentStatusCompleted && cmd.Status != domain.InvestmentStatusCancelled {
		return nil, fail(op, ErrInvalidTransition)
	}
	now := e.now().UTC()
	res := &Result{Op: op, InvestmentID: cmd.InvestmentID}

	err := e.ledger.Atomically(ctx, func(l *repository.LedgerTx) error {
		inv, err := l.LockInvestment(cmd.InvestmentID)
		if err != nil {
			return missing(op, err, ErrNotFound)
		}
		if !domain.CanTransitionInvestment(inv.Status, cmd.Status) {
			return fail(op, ErrInvalidTransition)
		}
		if err := l.TransitionInvestment(inv.ID, inv.Status, cmd.Status, map[string]interface{}{"updated_at": now}); err != nil {
			return conflict(op, err, ErrInvalidTransition)
		}
		res.Status = cmd.Status
		return nil
	})
	if err != nil {
		return nil, e.finish(op, err)
	}
	e.applied(res, &cmd.ApproverID)
	return res, nil
}

// AccrualPeriod names the interest period containing t.
func AccrualPeriod(t time.Time) string {
	return t.UTC().Format(domain.AccrualPeriodLayout)
}

func (e *Engine) authorize(ctx context.Context, op string, operatorID uint) error {
	err := e.guard.Authorize(ctx, operatorID, domain.RoleAdmin)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnauthorized) {
		slog.Warn("settlement operator rejected", "op", op, "operator_id", operatorID)
		return fail(op, ErrUnauthorized)
	}
	return &StorageError{Op: op, Err: err}
}

// finish turns an error that escaped a ledger transaction into a command
// failure. Anything that is not a domain failure is a storage failure.
func (e *Engine) finish(op string, err error) error {
	if isDomainError(err) {
		return err
	}
	slog.Warn("settlement storage failure", "op", op, "error", err)
	return &StorageError{Op: op, Err: err}
}

func (e *Engine) applied(res *Result, operatorID *uint) {
	fields := common.Fields{
		"op":             res.Op,
		"transaction_id": res.TransactionID,
		"investment_id":  res.InvestmentID,
		"status":         res.Status,
	}
	if operatorID != nil {
		fields["operator_id"] = *operatorID
	}
	if res.Penalty.IsPositive() {
		fields["penalty"] = res.Penalty.String()
		fields["net_payout"] = res.NetPayout.String()
	}
	common.LogInfo("settlement applied", fields)
}

func missing(op string, err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(op, sentinel)
	}
	return err
}

func conflict(op string, err, sentinel error) error {
	if errors.Is(err, repository.ErrStatusConflict) {
		return fail(op, sentinel)
	}
	return err
}
