package settlement

import (
	"vestra/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	// PenaltyRate applies to the part of an early withdrawal drawn from locked principal.
	PenaltyRate = decimal.RequireFromString("0.25")
	// PenaltyPercentage is PenaltyRate as recorded on penalty rows.
	PenaltyPercentage = decimal.NewFromInt(25)
)

const EarlyWithdrawalReason = "early withdrawal before maturity"

// ValidAmount reports whether amount is positive and fits the ledger's
// amount columns without rounding.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(domain.MoneyScale))
}

// MaxWithdrawable is the cap for a withdrawal: available funds only, or
// available plus locked principal for an early withdrawal.
func MaxWithdrawable(available, principalLocked decimal.Decimal, earlyWithdrawal bool) decimal.Decimal {
	if earlyWithdrawal {
		return available.Add(principalLocked)
	}
	return available
}

// SplitWithdrawal draws from the available balance first and takes the rest
// from principal.
func SplitWithdrawal(amount, available decimal.Decimal) (fromAvailable, fromPrincipal decimal.Decimal) {
	fromAvailable = decimal.Min(amount, available)
	fromPrincipal = decimal.Max(decimal.Zero, amount.Sub(available))
	return fromAvailable, fromPrincipal
}

func Penalty(fromPrincipal decimal.Decimal, earlyWithdrawal bool) decimal.Decimal {
	if !earlyWithdrawal {
		return decimal.Zero
	}
	return fromPrincipal.Mul(PenaltyRate)
}

func NetPayout(amount, penalty decimal.Decimal) (decimal.Decimal, error) {
	net := amount.Sub(penalty)
	if !net.IsPositive() {
		return decimal.Zero, ErrPayoutNonPositive
	}
	return net, nil
}

// WithdrawalPlan is the full effect of approving one withdrawal.
type WithdrawalPlan struct {
	Amount        decimal.Decimal
	FromAvailable decimal.Decimal
	FromPrincipal decimal.Decimal
	Penalty       decimal.Decimal
	NetPayout     decimal.Decimal
	NewAvailable  decimal.Decimal
	NewLocked     decimal.Decimal
}

// PlanWithdrawal validates a withdrawal against a balance and computes its
// effect. It never mutates anything; a non-nil error means nothing may be applied.
func PlanWithdrawal(amount, available, principalLocked decimal.Decimal, earlyWithdrawal bool) (WithdrawalPlan, error) {
	if !ValidAmount(amount) {
		return WithdrawalPlan{}, ErrInvalidAmount
	}
	if amount.GreaterThan(MaxWithdrawable(available, principalLocked, earlyWithdrawal)) {
		if earlyWithdrawal {
			return WithdrawalPlan{}, ErrInsufficientTotalBalance
		}
		return WithdrawalPlan{}, ErrInsufficientAvailableBalance
	}

	fromAvailable, fromPrincipal := SplitWithdrawal(amount, available)
	penalty := Penalty(fromPrincipal, earlyWithdrawal)
	net, err := NetPayout(amount, penalty)
	if err != nil {
		return WithdrawalPlan{}, err
	}

	plan := WithdrawalPlan{
		Amount:        amount,
		FromAvailable: fromAvailable,
		FromPrincipal: fromPrincipal,
		Penalty:       penalty,
		NetPayout:     net,
	}
	if amount.LessThanOrEqual(available) {
		plan.NewAvailable = available.Sub(amount)
		plan.NewLocked = principalLocked
	} else {
		plan.NewAvailable = decimal.Zero
		plan.NewLocked = principalLocked.Sub(amount.Sub(available))
	}
	return plan, nil
}
