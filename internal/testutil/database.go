// Package testutil opens isolated ledger databases and seeds fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"vestra/config"
	"vestra/internal/database"
	"vestra/internal/domain"
	"vestra/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory sqlite database with all migrations
// applied. The database is closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := database.NewDB(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Dec parses a decimal literal or fails the test.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// CreateUser inserts a user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	u := &models.User{
		Email: uuid.NewString() + "@vestra.test",
		Name:  role,
		Role:  role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// BalanceSeed describes the starting balance of a fixture investment.
type BalanceSeed struct {
	Principal string
	Available string
	Locked    string
	Status    string
}

// CreateInvestment inserts an investment and its balance row.
func CreateInvestment(t *testing.T, db *gorm.DB, userID uint, seed BalanceSeed) (*models.Investment, *models.InvestorBalance) {
	t.Helper()
	status := seed.Status
	if status == "" {
		status = domain.InvestmentStatusActive
	}
	inv := &models.Investment{
		UserID:          userID,
		PrincipalAmount: decOrZero(t, seed.Principal),
		Status:          status,
		DurationMonths:  domain.MaturityMonths,
	}
	if status == domain.InvestmentStatusActive {
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, domain.MaturityMonths, 0)
		inv.StartDate, inv.EndDate = &start, &end
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("create investment: %v", err)
	}
	bal := &models.InvestorBalance{
		InvestmentID:     inv.ID,
		UserID:           userID,
		AvailableBalance: decOrZero(t, seed.Available),
		PrincipalLocked:  decOrZero(t, seed.Locked),
		TotalDeposited:   decimal.Zero,
		TotalWithdrawn:   decimal.Zero,
		RoiAccrued:       decimal.Zero,
	}
	if err := db.Create(bal).Error; err != nil {
		t.Fatalf("create balance: %v", err)
	}
	return inv, bal
}

// CreateTransaction inserts a PENDING request of txType against inv.
func CreateTransaction(t *testing.T, db *gorm.DB, inv *models.Investment, txType, amount string, early bool) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		Reference:       uuid.NewString(),
		Type:            txType,
		Amount:          Dec(t, amount),
		Status:          domain.TxStatusPending,
		UserID:          inv.UserID,
		InvestmentID:    inv.ID,
		EarlyWithdrawal: early,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

// ReloadBalance reads the balance row of an investment.
func ReloadBalance(t *testing.T, db *gorm.DB, investmentID uint) *models.InvestorBalance {
	t.Helper()
	var b models.InvestorBalance
	if err := db.Where("investment_id = ?", investmentID).First(&b).Error; err != nil {
		t.Fatalf("reload balance: %v", err)
	}
	return &b
}

// ReloadTransaction reads a transaction by id.
func ReloadTransaction(t *testing.T, db *gorm.DB, id uint) *models.Transaction {
	t.Helper()
	var tx models.Transaction
	if err := db.First(&tx, id).Error; err != nil {
		t.Fatalf("reload transaction: %v", err)
	}
	return &tx
}

// ReloadInvestment reads an investment by id.
func ReloadInvestment(t *testing.T, db *gorm.DB, id uint) *models.Investment {
	t.Helper()
	var inv models.Investment
	if err := db.First(&inv, id).Error; err != nil {
		t.Fatalf("reload investment: %v", err)
	}
	return &inv
}

func decOrZero(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	if s == "" {
		return decimal.Zero
	}
	return Dec(t, s)
}

// AssertDecimal fails the test unless got equals the decimal literal want.
func AssertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, Dec(t, want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}
