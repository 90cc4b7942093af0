// Package tlconfig loads the small set of environment-variable overrides
// tldiff honors in addition to its positional CLI arguments. The CLI's
// positional arguments and flags remain authoritative; these
// variables only supply defaults so batched/CI comparisons can pin
// thresholds without touching the excluded driver scripts.
package tlconfig

import (
	"math"
	"os"
	"strconv"

	"github.com/jonlighthall/tldiff/internal/tlerrors"
)

// Config holds the fixed thresholds and accumulation-analyzer knobs.
// MarginalDB, IgnoreDB, MinAccumPoints and DebugDir can be overridden
// from the environment; the other fields always keep their defaults.
type Config struct {
	MarginalDB       float64
	IgnoreDB         float64
	MinAccumPoints   int
	DebugDir         string
	SlopeThreshold   float64
	R2Threshold      float64
	AutocorrThresh   float64
	BiasThresholdMul float64 // multiplier against zero: bias_threshold = 3*zero
}

// Default returns the fixed constants used when no override is set.
func Default() *Config {
	return &Config{
		MarginalDB:       110.0,
		IgnoreDB:         -20 * math.Log10(math.Pow(2, -23)),
		MinAccumPoints:   10,
		DebugDir:         ".",
		SlopeThreshold:   0.001,
		R2Threshold:      0.5,
		AutocorrThresh:   0.5,
		BiasThresholdMul: 3.0,
	}
}

// Load reads environment variables over the defaults, with one
// loadXOverride (or getEnvOrDefault) call per variable.
func Load() (*Config, error) {
	cfg := Default()

	if v, err := loadFloatOverride("TLDIFF_MARGINAL_DB", cfg.MarginalDB); err != nil {
		return nil, err
	} else {
		cfg.MarginalDB = v
	}

	if v, err := loadFloatOverride("TLDIFF_IGNORE_DB", cfg.IgnoreDB); err != nil {
		return nil, err
	} else {
		cfg.IgnoreDB = v
	}

	if v, err := loadIntOverride("TLDIFF_MIN_ACCUM_POINTS", cfg.MinAccumPoints); err != nil {
		return nil, err
	} else {
		cfg.MinAccumPoints = v
	}

	cfg.DebugDir = getEnvOrDefault("TLDIFF_DEBUG_DIR", cfg.DebugDir)

	if err := validateConfig(cfg); err != nil {
		return nil, tlerrors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.MinAccumPoints < 2 {
		return tlerrors.ConfigInvalid("TLDIFF_MIN_ACCUM_POINTS must be >= 2")
	}
	if cfg.MarginalDB <= 0 || cfg.IgnoreDB <= 0 {
		return tlerrors.ConfigInvalid("marginal/ignore thresholds must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadFloatOverride(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, tlerrors.ConfigInvalid(key + " must be a float: " + err.Error())
	}
	return f, nil
}

func loadIntOverride(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, tlerrors.ConfigInvalid(key + " must be an integer: " + err.Error())
	}
	return n, nil
}
