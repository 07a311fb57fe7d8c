package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking
// daemon.
type Config struct {
	SQLiteDSN        string
	CheckInGrace     time.Duration
	SweepInterval    time.Duration
	AdmissionRetries int
	RuleCacheTTL     time.Duration
	RuleCacheSize    int
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields while validating required
// values, accumulating every missing or invalid entry into a single error.
func Load() (Config, error) {
	cfg := Config{
		CheckInGrace:     15 * time.Minute,
		SweepInterval:    time.Minute,
		AdmissionRetries: 3,
		RuleCacheTTL:     30 * time.Second,
		RuleCacheSize:    128,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn == "" {
		missing = append(missing, "BOOKING_SQLITE_DSN")
	} else {
		cfg.SQLiteDSN = dsn
	}

	if graceValue := strings.TrimSpace(os.Getenv("BOOKING_CHECKIN_GRACE")); graceValue != "" {
		grace, err := time.ParseDuration(graceValue)
		if err != nil || grace <= 0 {
			invalid = append(invalid, "BOOKING_CHECKIN_GRACE")
		} else {
			cfg.CheckInGrace = grace
		}
	}

	if intervalValue := strings.TrimSpace(os.Getenv("BOOKING_SWEEP_INTERVAL")); intervalValue != "" {
		interval, err := time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "BOOKING_SWEEP_INTERVAL")
		} else {
			cfg.SweepInterval = interval
		}
	}

	if retriesValue := strings.TrimSpace(os.Getenv("BOOKING_ADMISSION_RETRIES")); retriesValue != "" {
		retries, err := strconv.Atoi(retriesValue)
		if err != nil || retries < 0 {
			invalid = append(invalid, "BOOKING_ADMISSION_RETRIES")
		} else {
			cfg.AdmissionRetries = retries
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_RULE_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_RULE_CACHE_TTL")
		} else {
			cfg.RuleCacheTTL = ttl
		}
	}

	if sizeValue := strings.TrimSpace(os.Getenv("BOOKING_RULE_CACHE_SIZE")); sizeValue != "" {
		size, err := strconv.Atoi(sizeValue)
		if err != nil || size <= 0 {
			invalid = append(invalid, "BOOKING_RULE_CACHE_SIZE")
		} else {
			cfg.RuleCacheSize = size
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
