package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"vestra/internal/settlement"

	"github.com/gin-gonic/gin"
)

type failure struct {
	err    error
	status int
	code   string
}

var failures = []failure{
	{settlement.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{settlement.ErrNotFound, http.StatusNotFound, "not_found"},
	{settlement.ErrBalanceNotFound, http.StatusNotFound, "balance_not_found"},
	{settlement.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{settlement.ErrAlreadyProcessed, http.StatusConflict, "already_processed"},
	{settlement.ErrAlreadyCredited, http.StatusConflict, "already_credited"},
	{settlement.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{settlement.ErrInvalidAmount, http.StatusUnprocessableEntity, "invalid_amount"},
	{settlement.ErrInsufficientAvailableBalance, http.StatusUnprocessableEntity, "insufficient_available_balance"},
	{settlement.ErrInsufficientTotalBalance, http.StatusUnprocessableEntity, "insufficient_total_balance"},
	{settlement.ErrPayoutNonPositive, http.StatusUnprocessableEntity, "payout_non_positive"},
	{settlement.ErrStorageFailure, http.StatusServiceUnavailable, "storage_failure"},
}

// classify maps a settlement failure onto an HTTP status and a stable code.
func classify(err error) (int, string) {
	for _, f := range failures {
		if errors.Is(err, f.err) {
			return f.status, f.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func abortWith(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("settlement request failed", "path", c.FullPath(), "code", code, "error", err)
	}
	body := gin.H{"error": err.Error(), "code": code}
	if settlement.IsRetryable(err) {
		body["error"] = "storage temporarily unavailable"
		body["retryable"] = true
	}
	c.AbortWithStatusJSON(status, body)
}
