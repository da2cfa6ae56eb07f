// Package scheduler runs the periodic ROI credit pass over active investments.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vestra/internal/common"
	"vestra/internal/models"
	"vestra/internal/settlement"

	"github.com/shopspring/decimal"
)

type Crediter interface {
	CreditRoi(ctx context.Context, cmd settlement.CreditRoi) (*settlement.Result, error)
}

type InvestmentLister interface {
	ListActive(ctx context.Context) ([]models.Investment, error)
}

// Summary counts the outcome of one pass.
type Summary struct {
	Credited int `json:"credited"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

type RoiScheduler struct {
	engine      Crediter
	investments InvestmentLister
	rate        decimal.Decimal
	retry       common.RetryOptions
}

func NewRoiScheduler(engine Crediter, investments InvestmentLister, monthlyRate decimal.Decimal, attempts int) *RoiScheduler {
	return &RoiScheduler{
		engine:      engine,
		investments: investments,
		rate:        monthlyRate,
		retry: common.RetryOptions{
			MaxAttempts:  attempts,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Retryable:    settlement.IsRetryable,
		},
	}
}

// MonthlyInterest is principal times rate, rounded to cents.
func MonthlyInterest(principal, rate decimal.Decimal) decimal.Decimal {
	return principal.Mul(rate).Round(2)
}

// RunOnce credits the current accrual period to every active investment.
// Periods already credited count as skipped, so repeated passes are safe.
func (s *RoiScheduler) RunOnce(ctx context.Context) (Summary, error) {
	var sum Summary
	list, err := s.investments.ListActive(ctx)
	if err != nil {
		return sum, err
	}

	for _, inv := range list {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		amount := MonthlyInterest(inv.PrincipalAmount, s.rate)
		if !amount.IsPositive() {
			sum.Skipped++
			continue
		}
		cmd := settlement.CreditRoi{InvestmentID: inv.ID, UserID: inv.UserID, Amount: amount}
		err := common.WithRetry(ctx, func() error {
			_, err := s.engine.CreditRoi(ctx, cmd)
			return err
		}, s.retry)

		switch {
		case err == nil:
			sum.Credited++
		case errors.Is(err, settlement.ErrAlreadyCredited):
			sum.Skipped++
		default:
			sum.Failed++
			common.LogError(err, "roi credit failed", common.Fields{
				"investment_id": inv.ID,
				"amount":        amount.String(),
			})
		}
	}

	slog.Info("roi pass finished", "credited", sum.Credited, "skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}

// Run calls RunOnce immediately and then on every tick until ctx is done.
func (s *RoiScheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Error("roi pass aborted", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
