package settlement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Command is one of the settlement operations below. The set is closed.
type Command interface {
	opName() string
}

type ApproveDeposit struct {
	TransactionID uint
	ApproverID    uint
}

type RejectDeposit struct {
	TransactionID uint
	ApproverID    uint
}

type ApproveWithdrawal struct {
	TransactionID uint
	ApproverID    uint
}

type RejectWithdrawal struct {
	TransactionID uint
	ApproverID    uint
}

// CreditRoi credits one accrual period of interest. A nil ApproverID marks a
// scheduler call, which is authorized by the trigger rather than the guard.
type CreditRoi struct {
	InvestmentID uint
	UserID       uint
	Amount       decimal.Decimal
	ApproverID   *uint
}

// MarkWithdrawalPaid confirms disbursement of an approved withdrawal.
type MarkWithdrawalPaid struct {
	TransactionID uint
	ApproverID    uint
}

// UpdateInvestmentStatus closes an active investment as COMPLETED or CANCELLED.
type UpdateInvestmentStatus struct {
	InvestmentID uint
	Status       string
	ApproverID   uint
}

func (ApproveDeposit) opName() string         { return "approve deposit" }
func (RejectDeposit) opName() string          { return "reject deposit" }
func (ApproveWithdrawal) opName() string      { return "approve withdrawal" }
func (RejectWithdrawal) opName() string       { return "reject withdrawal" }
func (CreditRoi) opName() string              { return "credit roi" }
func (MarkWithdrawalPaid) opName() string     { return "mark withdrawal paid" }
func (UpdateInvestmentStatus) opName() string { return "update investment status" }

// Execute dispatches cmd to its handler.
func (e *Engine) Execute(ctx context.Context, cmd Command) (*Result, error) {
	switch c := cmd.(type) {
	case ApproveDeposit:
		return e.ApproveDeposit(ctx, c)
	case RejectDeposit:
		return e.RejectDeposit(ctx, c)
	case ApproveWithdrawal:
		return e.ApproveWithdrawal(ctx, c)
	case RejectWithdrawal:
		return e.RejectWithdrawal(ctx, c)
	case CreditRoi:
		return e.CreditRoi(ctx, c)
	case MarkWithdrawalPaid:
		return e.MarkWithdrawalPaid(ctx, c)
	case UpdateInvestmentStatus:
		return e.UpdateInvestmentStatus(ctx, c)
	default:
		return nil, fmt.Errorf("unknown settlement command %T", cmd)
	}
}
