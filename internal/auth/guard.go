package auth

import (
	"context"
	"errors"
	"fmt"

	"vestra/internal/repository"

	"gorm.io/gorm"
)

// ErrUnauthorized is returned when an operator may not perform an operation.
var ErrUnauthorized = errors.New("unauthorized")

// Guard checks operator roles against the user table on every call. Token
// claims are not consulted here.
type Guard struct {
	users *repository.UserRepository
}

func NewGuard(users *repository.UserRepository) *Guard {
	return &Guard{users: users}
}

func (g *Guard) Authorize(ctx context.Context, operatorID uint, requiredRole string) error {
	if operatorID == 0 {
		return ErrUnauthorized
	}
	u, err := g.users.GetByID(ctx, operatorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("load operator %d: %w", operatorID, err)
	}
	if !u.HasRole(requiredRole) {
		return ErrUnauthorized
	}
	return nil
}
