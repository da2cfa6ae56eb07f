package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestValidAmount(t *testing.T) {
	assert.True(t, ValidAmount(d("0.0001")))
	assert.True(t, ValidAmount(d("100.0010")))
	assert.True(t, ValidAmount(d("1.500000")))
	assert.False(t, ValidAmount(d("0.00001")))
	assert.False(t, ValidAmount(d("0")))
	assert.False(t, ValidAmount(d("-1")))
}

func TestMaxWithdrawable(t *testing.T) {
	assertDec(t, "100", MaxWithdrawable(d("100"), d("500"), false))
	assertDec(t, "600", MaxWithdrawable(d("100"), d("500"), true))
}

func TestSplitWithdrawal(t *testing.T) {
	tests := []struct {
		name                         string
		amount, available            string
		wantAvailable, wantPrincipal string
	}{
		{name: "covered by available", amount: "50", available: "100", wantAvailable: "50", wantPrincipal: "0"},
		{name: "exactly available", amount: "100", available: "100", wantAvailable: "100", wantPrincipal: "0"},
		{name: "spills into principal", amount: "100000", available: "20000", wantAvailable: "20000", wantPrincipal: "80000"},
		{name: "nothing available", amount: "10", available: "0", wantAvailable: "0", wantPrincipal: "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fromAvailable, fromPrincipal := SplitWithdrawal(d(tt.amount), d(tt.available))
			assertDec(t, tt.wantAvailable, fromAvailable)
			assertDec(t, tt.wantPrincipal, fromPrincipal)
		})
	}
}

func TestPenalty(t *testing.T) {
	assertDec(t, "20000", Penalty(d("80000"), true))
	assertDec(t, "0", Penalty(d("80000"), false))
	assertDec(t, "0.0025", Penalty(d("0.01"), true))
	assertDec(t, "0", Penalty(d("0"), true))
}

func TestNetPayout(t *testing.T) {
	net, err := NetPayout(d("100000"), d("20000"))
	require.NoError(t, err)
	assertDec(t, "80000", net)

	_, err = NetPayout(d("100"), d("100"))
	assert.ErrorIs(t, err, ErrPayoutNonPositive)

	_, err = NetPayout(d("100"), d("150"))
	assert.ErrorIs(t, err, ErrPayoutNonPositive)
}

func TestPlanWithdrawal_Failures(t *testing.T) {
	tests := []struct {
		name                      string
		amount, available, locked string
		early                     bool
		want                      error
	}{
		{name: "zero amount", amount: "0", available: "100", locked: "0", want: ErrInvalidAmount},
		{name: "negative amount", amount: "-5", available: "100", locked: "0", early: true, want: ErrInvalidAmount},
		{name: "more than four decimals", amount: "10.00001", available: "100", locked: "0", want: ErrInvalidAmount},
		{name: "regular beyond available", amount: "30000", available: "10000", locked: "50000", want: ErrInsufficientAvailableBalance},
		{name: "early beyond total", amount: "60001", available: "10000", locked: "50000", early: true, want: ErrInsufficientTotalBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanWithdrawal(d(tt.amount), d(tt.available), d(tt.locked), tt.early)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPlanWithdrawal_RegularWithinAvailable(t *testing.T) {
	plan, err := PlanWithdrawal(d("50000"), d("100000"), d("0"), false)
	require.NoError(t, err)

	assertDec(t, "0", plan.Penalty)
	assertDec(t, "50000", plan.NetPayout)
	assertDec(t, "50000", plan.NewAvailable)
	assertDec(t, "0", plan.NewLocked)
}

func TestPlanWithdrawal_EarlyIntoPrincipal(t *testing.T) {
	plan, err := PlanWithdrawal(d("100000"), d("20000"), d("200000"), true)
	require.NoError(t, err)

	assertDec(t, "20000", plan.FromAvailable)
	assertDec(t, "80000", plan.FromPrincipal)
	assertDec(t, "20000", plan.Penalty)
	assertDec(t, "80000", plan.NetPayout)
	assertDec(t, "0", plan.NewAvailable)
	assertDec(t, "120000", plan.NewLocked)
}

func TestPlanWithdrawal_PenaltyOnFourDecimalAmount(t *testing.T) {
	plan, err := PlanWithdrawal(d("100.0010"), d("0"), d("200"), true)
	require.NoError(t, err)

	assertDec(t, "25.00025", plan.Penalty)
	assertDec(t, "75.00075", plan.NetPayout)
	assertDec(t, "99.999", plan.NewLocked)
}

func TestPlanWithdrawal_EarlyWithinAvailableHasNoPenalty(t *testing.T) {
	plan, err := PlanWithdrawal(d("500"), d("1000"), d("9000"), true)
	require.NoError(t, err)

	assertDec(t, "0", plan.Penalty)
	assertDec(t, "500", plan.NewAvailable)
	assertDec(t, "9000", plan.NewLocked)
}

// Conservation and penalty exactness over a grid of balances.
func TestPlanWithdrawal_Properties(t *testing.T) {
	values := []string{"0", "0.01", "1", "99.99", "1000", "20000", "123456.78"}
	for _, avail := range values {
		for _, locked := range values {
			for _, amount := range values {
				for _, early := range []bool{false, true} {
					a, av, lk := d(amount), d(avail), d(locked)
					plan, err := PlanWithdrawal(a, av, lk, early)
					if err != nil {
						continue
					}
					if !early {
						assert.True(t, a.LessThanOrEqual(av), "regular withdrawal exceeded available")
					}
					assert.True(t, plan.NewAvailable.Add(plan.NewLocked).Equal(av.Add(lk).Sub(a)),
						"conservation: avail=%s locked=%s amount=%s", avail, locked, amount)
					wantPenalty := decimal.Zero
					if early {
						wantPenalty = decimal.Max(decimal.Zero, a.Sub(av)).Mul(d("0.25"))
					}
					assert.True(t, plan.Penalty.Equal(wantPenalty), "penalty: amount=%s avail=%s", amount, avail)
					assert.True(t, plan.NetPayout.Equal(a.Sub(plan.Penalty)))
					assert.False(t, plan.NewAvailable.IsNegative())
					assert.False(t, plan.NewLocked.IsNegative())
				}
			}
		}
	}
}
