package database

import (
	"errors"
	"fmt"
	"log/slog"

	"vestra/config"
	"vestra/internal/domain"
	"vestra/internal/models"
	"vestra/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql", "":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// A single connection serializes writers and keeps in-memory databases alive.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return db, nil
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Investment{},
		&models.InvestorBalance{},
		&models.Transaction{},
		&models.WithdrawalPenalty{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the first SUPERADMIN operator when none exists. It is a
// no-op without a configured password.
func SeedAdmin(db *gorm.DB, cfg *config.AdminSeedConfig) error {
	if cfg.Password == "" {
		return nil
	}
	users := repository.NewUserRepository(db)
	_, err := users.GetByEmail(cfg.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := &models.User{
		Email:        cfg.Email,
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
	}
	if err := users.Create(u); err != nil {
		return err
	}
	slog.Info("seeded admin operator", "email", u.Email, "user_id", u.ID)
	return nil
}
