package domain

const (
	RoleInvestor   = "INVESTOR"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPERADMIN"
)

const (
	TxTypeDeposit    = "DEPOSIT"
	TxTypeWithdrawal = "WITHDRAWAL"
	TxTypeInterest   = "INTEREST"
)

const (
	TxStatusPending  = "PENDING"
	TxStatusApproved = "APPROVED"
	TxStatusRejected = "REJECTED"
	TxStatusPaid     = "PAID"
)

const (
	InvestmentStatusPending   = "PENDING"
	InvestmentStatusActive    = "ACTIVE"
	InvestmentStatusCompleted = "COMPLETED"
	InvestmentStatusCancelled = "CANCELLED"
	InvestmentStatusRejected  = "REJECTED"
)

// Lock-up term of every plan.
const MaturityMonths = 18

// MoneyScale is the number of decimal places ledger amount columns hold.
const MoneyScale = 4

// AccrualPeriodLayout keys interest credits by calendar month.
const AccrualPeriodLayout = "2006-01"

var txTransitions = map[string][]string{
	TxStatusPending:  {TxStatusApproved, TxStatusRejected},
	TxStatusApproved: {TxStatusPaid},
}

var investmentTransitions = map[string][]string{
	InvestmentStatusPending: {InvestmentStatusActive, InvestmentStatusRejected},
	InvestmentStatusActive:  {InvestmentStatusCompleted, InvestmentStatusCancelled},
}

// CanTransitionTx reports whether a transaction of txType may move from one
// status to another. Only withdrawals are ever marked PAID by an operator.
func CanTransitionTx(txType, from, to string) bool {
	if to == TxStatusPaid && txType != TxTypeWithdrawal {
		return false
	}
	return contains(txTransitions[from], to)
}

// CanTransitionInvestment reports whether an investment may move between statuses.
func CanTransitionInvestment(from, to string) bool {
	return contains(investmentTransitions[from], to)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
