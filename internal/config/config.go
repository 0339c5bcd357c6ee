package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"gmfit/domain/core"
	"gmfit/internal/errors"
)

// Config holds the engine-wide tunables. Everything has a working default;
// Load overrides from the environment (optionally seeded from a .env file).
type Config struct {
	Engine  EngineConfig
	Ranking RankingConfig
}

// EngineConfig controls the residual pipeline
type EngineConfig struct {
	// Normalize divides decomposed residuals by their stddev (z-scores).
	// When false, residuals stay in natural-log physical-unit scale.
	Normalize bool
	// Likelihood decorates every residual column with its Scherbaum et al.
	// (2004) likelihood counterpart after the merge barrier.
	Likelihood bool
	// Workers bounds the number of event groups processed concurrently.
	Workers int
}

// RankingConfig controls the EDR discretization (Kale & Akkar 2013)
type RankingConfig struct {
	// Bandwidth is the width of each absolute-difference bin
	Bandwidth float64
	// Multiplier extends the difference range this many stddevs beyond the
	// observed extremes
	Multiplier float64
}

// Default returns the engine defaults
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Normalize:  true,
			Likelihood: true,
			Workers:    4,
		},
		Ranking: RankingConfig{
			Bandwidth:  0.01,
			Multiplier: 3.0,
		},
	}
}

// Load builds a Config from defaults plus environment overrides.
// A .env file in the working directory is honored when present.
func Load() (Config, error) {
	// Ignore missing .env; explicit environment always wins
	_ = godotenv.Load()

	cfg := Default()

	var err error
	if cfg.Engine.Normalize, err = envBool("GMFIT_NORMALIZE", cfg.Engine.Normalize); err != nil {
		return Config{}, err
	}
	if cfg.Engine.Likelihood, err = envBool("GMFIT_LIKELIHOOD", cfg.Engine.Likelihood); err != nil {
		return Config{}, err
	}
	if cfg.Engine.Workers, err = envInt("GMFIT_WORKERS", cfg.Engine.Workers); err != nil {
		return Config{}, err
	}
	if cfg.Ranking.Bandwidth, err = envFloat("GMFIT_EDR_BANDWIDTH", cfg.Ranking.Bandwidth); err != nil {
		return Config{}, err
	}
	if cfg.Ranking.Multiplier, err = envFloat("GMFIT_EDR_MULTIPLIER", cfg.Ranking.Multiplier); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with
func (c Config) Validate() error {
	if c.Engine.Workers < 1 {
		return core.NewBadConfigError("workers", "must be at least 1")
	}
	if c.Ranking.Bandwidth <= 0 {
		return core.NewBadConfigError("edr bandwidth", "must be positive")
	}
	if c.Ranking.Multiplier <= 0 {
		return core.NewBadConfigError("edr multiplier", "must be positive")
	}
	// A bandwidth at or above the multiplier span leaves no usable bins
	if c.Ranking.Bandwidth >= c.Ranking.Multiplier {
		return core.NewBadConfigError("edr bandwidth", "must be smaller than the multiplier span")
	}
	return nil
}

func envBool(name string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.WithCode(errors.CodeConfig, errors.Wrapf(err, "parse %s", name))
	}
	return v, nil
}

func envInt(name string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.WithCode(errors.CodeConfig, errors.Wrapf(err, "parse %s", name))
	}
	return v, nil
}

func envFloat(name string, fallback float64) (float64, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.WithCode(errors.CodeConfig, errors.Wrapf(err, "parse %s", name))
	}
	return v, nil
}
