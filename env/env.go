package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/jt05610/dpn/sim"
	"go.uber.org/zap"
)

const (
	Trials     = "DPNSIM_TRIALS"
	Steps      = "DPNSIM_STEPS"
	Seed       = "DPNSIM_SEED"
	Workers    = "DPNSIM_WORKERS"
	Timeout    = "DPNSIM_TIMEOUT"
	Completion = "DPNSIM_COMPLETION"
)

// Environment holds the simulation defaults read from the process
// environment and an optional .env file.
type Environment struct {
	Trials     int
	Steps      int
	Seed       uint64
	SeedSet    bool
	Workers    int
	Timeout    time.Duration
	Completion sim.Completion
}

// Load reads files (default ".env") into the environment, then parses the
// DPNSIM_* variables. Missing files and unset variables are fine; malformed
// values are errors.
func Load(logger *zap.Logger, files ...string) (*Environment, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil {
			logger.Debug("loaded env file", zap.String("file", f))
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	cfg := sim.DefaultConfig()
	e := &Environment{
		Trials:     cfg.Trials,
		Steps:      cfg.Steps,
		Completion: cfg.Completion,
	}
	var err error
	if e.Trials, err = intVar(Trials, e.Trials); err != nil {
		return nil, err
	}
	if e.Steps, err = intVar(Steps, e.Steps); err != nil {
		return nil, err
	}
	if e.Workers, err = intVar(Workers, e.Workers); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv(Seed); ok {
		if e.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("parse %s: %w", Seed, err)
		}
		e.SeedSet = true
	}
	if v, ok := os.LookupEnv(Timeout); ok {
		if e.Timeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("parse %s: %w", Timeout, err)
		}
	}
	if v, ok := os.LookupEnv(Completion); ok {
		if e.Completion, err = sim.ParseCompletion(v); err != nil {
			return nil, fmt.Errorf("parse %s: %w", Completion, err)
		}
	}
	logger.Debug("environment",
		zap.Int("trials", e.Trials),
		zap.Int("steps", e.Steps),
		zap.Int("workers", e.Workers),
		zap.Duration("timeout", e.Timeout),
		zap.Stringer("completion", e.Completion),
	)
	return e, nil
}

func intVar(name string, def int) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return n, nil
}

// Config turns the environment into a simulation config.
func (e *Environment) Config(logger *zap.Logger) sim.Config {
	return sim.Config{
		Trials:     e.Trials,
		Steps:      e.Steps,
		Seed:       e.Seed,
		Workers:    e.Workers,
		Timeout:    e.Timeout,
		Completion: e.Completion,
		Logger:     logger,
	}
}
