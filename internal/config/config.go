package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort   string
	LogLevel  string
	LogFormat string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisPass string
	RedisDB   int

	IdempTTLSecs int

	// UnderwritingDueDays sets the queue-entry due date relative to submission.
	UnderwritingDueDays int

	// QCRequireFullCompletion gates QC approval on 100% verification.
	QCRequireFullCompletion bool
	// FundingAllowQCApproved lets funding requests start at QCApproved instead
	// of waiting for the explicit ready-to-fund step.
	FundingAllowQCApproved bool

	// Outbox dispatcher knobs.
	OutboxBatchSize int
	OutboxInterval  time.Duration
	OutboxLockTTL   time.Duration
	// OutboxSink selects delivery: "log" or "redis" (pub/sub channel).
	OutboxSink    string
	OutboxChannel string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func Load() *Config {
	return &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "loan_origination"),
		MySQLUser: getenv("MYSQL_USER", "loan_origination"),
		MySQLPass: getenv("MYSQL_PASS", "loan_origination"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisPass: getenv("REDIS_PASS", ""),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		UnderwritingDueDays: getint("UNDERWRITING_DUE_DAYS", 5),

		QCRequireFullCompletion: getbool("QC_REQUIRE_FULL_COMPLETION", false),
		FundingAllowQCApproved:  getbool("FUNDING_ALLOW_QC_APPROVED", false),

		OutboxBatchSize: getint("OUTBOX_BATCH_SIZE", 50),
		OutboxInterval:  time.Duration(getint("OUTBOX_INTERVAL_SECONDS", 2)) * time.Second,
		OutboxLockTTL:   time.Duration(getint("OUTBOX_LOCK_TTL_SECONDS", 30)) * time.Second,
		OutboxSink:      getenv("OUTBOX_SINK", "log"),
		OutboxChannel:   getenv("OUTBOX_CHANNEL", "loan-origination.events"),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.OutboxSink != "log" && c.OutboxSink != "redis" {
		return fmt.Errorf("invalid OUTBOX_SINK %q (want log or redis)", c.OutboxSink)
	}
	if c.OutboxBatchSize <= 0 {
		return errors.New("OUTBOX_BATCH_SIZE must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
