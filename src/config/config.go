package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const (
	DAY_PARSE_FORMAT  = "2006-01-02"
	TIME_PARSE_FORMAT = "2006-01-02 15:04"
)

// PendingTicketTTL is how long a PENDING ticket may hold seats before the
// reaper releases them back to the pool.
func PendingTicketTTL() time.Duration {
	return envDuration("PENDING_TICKET_TTL", 30*time.Minute)
}

// EntryLead is how long before a session's start time the gate opens.
func EntryLead() time.Duration {
	return envDuration("ENTRY_LEAD", 30*time.Minute)
}

// SnapshotTTL bounds staleness of the cached availability snapshot.
func SnapshotTTL() time.Duration {
	return envDuration("SNAPSHOT_TTL", 30*time.Second)
}

// DuplicateWindow is the lookback used by the duplicate-submission heuristic.
func DuplicateWindow() time.Duration {
	return envDuration("DUPLICATE_WINDOW", 5*time.Minute)
}

func ReaperInterval() time.Duration {
	return envDuration("REAPER_INTERVAL", 5*time.Minute)
}

func SMSTimeout() time.Duration {
	return envDuration("SMS_TIMEOUT", 10*time.Second)
}

func PublicURL() string {
	url := os.Getenv("PUBLIC_URL")
	if url == "" {
		url = "http://localhost:9090"
	}
	return url
}

// CategoryPrice returns the unit price for a ticket category. Prices are
// deployment configuration, not catalog data.
func CategoryPrice(category string) float64 {
	switch category {
	case "adult":
		return envFloat("PRICE_ADULT", 150)
	case "student":
		return envFloat("PRICE_STUDENT", 100)
	case "child":
		return envFloat("PRICE_CHILD", 50)
	}
	return 0
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
