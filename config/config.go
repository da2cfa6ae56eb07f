package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Logging   LoggingConfig
	Scheduler SchedulerConfig
	Admin     AdminSeedConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig selects the ledger store backend. Driver is "mysql" or "sqlite".
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// SchedulerConfig drives the periodic ROI run. MonthlyRoiRate is applied to an
// investment's principal once per accrual period.
type SchedulerConfig struct {
	Enabled        bool
	Interval       time.Duration
	CronKey        string
	MonthlyRoiRate decimal.Decimal
	RetryAttempts  int
}

type AdminSeedConfig struct {
	Email    string
	Password string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8099")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "vestra:vestra@tcp(localhost:3306)/vestra?charset=utf8mb4&parseTime=True&loc=UTC")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("jwt.access_secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", 15*time.Minute)
	v.SetDefault("jwt.issuer", "vestra")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.interval", time.Hour)
	v.SetDefault("scheduler.cron_key", "")
	v.SetDefault("scheduler.monthly_roi_rate", "0.02")
	v.SetDefault("scheduler.retry_attempts", 3)

	v.SetDefault("admin.email", "admin@vestra.local")
	v.SetDefault("admin.password", "")
}

// Load reads configuration from defaults, an optional config file and
// VESTRA_* environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("vestra")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	rate, err := decimal.NewFromString(v.GetString("scheduler.monthly_roi_rate"))
	if err != nil {
		return nil, fmt.Errorf("scheduler.monthly_roi_rate: %w", err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("scheduler.monthly_roi_rate must not be negative, got %s", rate)
	}
	driver := strings.ToLower(v.GetString("database.driver"))
	if driver != "mysql" && driver != "sqlite" {
		return nil, fmt.Errorf("database.driver must be mysql or sqlite, got %q", driver)
	}

	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			Env:          v.GetString("server.env"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			Driver:          driver,
			DSN:             v.GetString("database.dsn"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		JWT: JWTConfig{
			AccessSecret: v.GetString("jwt.access_secret"),
			AccessExpiry: v.GetDuration("jwt.access_expiry"),
			Issuer:       v.GetString("jwt.issuer"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Scheduler: SchedulerConfig{
			Enabled:        v.GetBool("scheduler.enabled"),
			Interval:       v.GetDuration("scheduler.interval"),
			CronKey:        v.GetString("scheduler.cron_key"),
			MonthlyRoiRate: rate,
			RetryAttempts:  v.GetInt("scheduler.retry_attempts"),
		},
		Admin: AdminSeedConfig{
			Email:    v.GetString("admin.email"),
			Password: v.GetString("admin.password"),
		},
	}, nil
}
