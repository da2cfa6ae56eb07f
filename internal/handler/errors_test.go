package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"vestra/internal/settlement"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("approve withdrawal: %w", settlement.ErrUnauthorized), http.StatusForbidden, "unauthorized"},
		{settlement.ErrNotFound, http.StatusNotFound, "not_found"},
		{settlement.ErrBalanceNotFound, http.StatusNotFound, "balance_not_found"},
		{settlement.ErrAlreadyProcessed, http.StatusConflict, "already_processed"},
		{settlement.ErrAlreadyCredited, http.StatusConflict, "already_credited"},
		{settlement.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{settlement.ErrInsufficientTotalBalance, http.StatusUnprocessableEntity, "insufficient_total_balance"},
		{settlement.ErrPayoutNonPositive, http.StatusUnprocessableEntity, "payout_non_positive"},
		{&settlement.StorageError{Op: "credit roi", Err: errors.New("deadlock")}, http.StatusServiceUnavailable, "storage_failure"},
		{errors.New("surprise"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		status, code := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}
