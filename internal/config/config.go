package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AdsURL      string
	SinkURL     string
	SinkSecret  string
	Port        string
	HTTPTimeout time.Duration
	LogLevel    slog.Level

	// ads API quota
	AdsRatePerSec float64
	AdsBurst      int

	// alert bucketing policy (percent change vs rolling average)
	AlertCriticalPct    float64
	AlertWarningPct     float64
	AlertImprovementPct float64

	// integrity guard tuning
	RoundSpendFraction float64
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		AdsURL:              os.Getenv("ADS_API_URL"),
		SinkURL:             os.Getenv("SINK_URL"),
		SinkSecret:          os.Getenv("SINK_SECRET"),
		Port:                envOr("PORT", "8080"),
		HTTPTimeout:         to,
		LogLevel:            lvl,
		AdsRatePerSec:       floatOr("ADS_RATE_PER_SEC", 5),
		AdsBurst:            intOr("ADS_BURST", 10),
		AlertCriticalPct:    floatOr("ALERT_CRITICAL_PCT", 25),
		AlertWarningPct:     floatOr("ALERT_WARNING_PCT", 15),
		AlertImprovementPct: floatOr("ALERT_IMPROVEMENT_PCT", -10),
		RoundSpendFraction:  floatOr("INTEGRITY_ROUND_SPEND_FRACTION", 0.5),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func floatOr(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func intOr(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
