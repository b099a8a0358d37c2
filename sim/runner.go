package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jt05610/dpn"
	"go.uber.org/zap"
)

const (
	DefaultTrials = 1000
	DefaultSteps  = 100
)

type Config struct {
	// Trials is the number of independent executions.
	Trials int
	// Steps bounds the number of firings of every trial.
	Steps int
	// Seed makes a run reproducible: equal seeds give equal outcomes.
	Seed uint64
	// Workers is the pool size; zero means one per CPU.
	Workers int
	// Timeout caps the wall-clock time of the whole run; zero means none.
	Timeout    time.Duration
	Completion Completion
	Logger     *zap.Logger
}

func DefaultConfig() Config {
	return Config{
		Trials: DefaultTrials,
		Steps:  DefaultSteps,
	}
}

func (c Config) validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidConfig, c.Trials)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Steps)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %s", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// Result holds the outcomes of a run ordered by trial index.
type Result struct {
	RunID    string
	Seed     uint64
	Trials   int
	Outcomes []Outcome
	Elapsed  time.Duration
}

// Run executes cfg.Trials independent trials of net on a worker pool.
//
// A trial that fails aborts the run and Run returns a *TrialError. When the
// timeout expires or ctx is cancelled, trials still in flight are discarded
// and Run returns the trials that did finish together with an error wrapping
// ErrTimeout or the context's error.
func Run(ctx context.Context, net *dpn.Net, cfg Config) (*Result, error) {
	if net == nil {
		return nil, fmt.Errorf("%w: nil net", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	res := &Result{
		RunID:  uuid.NewString(),
		Seed:   cfg.Seed,
		Trials: cfg.Trials,
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run", res.RunID))

	if cfg.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeoutCause(ctx, cfg.Timeout, ErrTimeout)
		defer cancelTimeout()
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	p := newPool(cfg.Workers)
	logger.Info("simulation started",
		zap.String("net", net.Name),
		zap.Int("trials", cfg.Trials),
		zap.Int("steps", cfg.Steps),
		zap.Uint64("seed", cfg.Seed),
		zap.Int("workers", p.workers),
		zap.Stringer("completion", cfg.Completion),
	)
	start := time.Now()

	outcomes := make([]Outcome, cfg.Trials)
	done := make([]bool, cfg.Trials)
	engines := make([]*Engine, p.workers)
	for w := range engines {
		engines[w] = NewEngine(net, cfg.Completion)
	}
	var (
		failOnce sync.Once
		failure  *TrialError
	)
	p.start(ctx, func(ctx context.Context, w, i int) {
		e := engines[w]
		e.Reseed(cfg.Seed, uint64(i))
		out, err := e.Run(ctx, cfg.Steps)
		if err != nil {
			if interrupted(err) {
				return
			}
			te := &TrialError{Index: i, Trace: out.Trace, Err: err}
			failOnce.Do(func() { failure = te })
			cancel(te)
			return
		}
		out.Index = i
		outcomes[i] = out
		done[i] = true
		if ce := logger.Check(zap.DebugLevel, "trial finished"); ce != nil {
			ce.Write(
				zap.Int("trial", i),
				zap.Stringer("status", out.Status),
				zap.Int("fired", len(out.Trace)),
				zap.Float64("duration", out.Duration),
			)
		}
	})
	for i := 0; i < cfg.Trials; i++ {
		if !p.submit(ctx, i) {
			break
		}
	}
	p.stop()
	res.Elapsed = time.Since(start)

	if failure != nil {
		logger.Error("simulation aborted",
			zap.Int("trial", failure.Index),
			zap.Strings("trace", failure.Trace),
			zap.Error(failure.Err),
		)
		return nil, failure
	}
	cause := context.Cause(ctx)

	res.Outcomes = make([]Outcome, 0, cfg.Trials)
	for i, ok := range done {
		if ok {
			res.Outcomes = append(res.Outcomes, outcomes[i])
		}
	}
	if len(res.Outcomes) == cfg.Trials {
		logger.Info("simulation finished",
			zap.Duration("elapsed", res.Elapsed),
			zap.Int("completed", len(res.Outcomes)),
		)
		return res, nil
	}
	if cause == nil {
		cause = ctx.Err()
	}
	logger.Warn("simulation interrupted",
		zap.Duration("elapsed", res.Elapsed),
		zap.Int("completed", len(res.Outcomes)),
		zap.Error(cause),
	)
	if errors.Is(cause, ErrTimeout) {
		return res, fmt.Errorf("%w after %s: %d of %d trials completed", ErrTimeout, cfg.Timeout, len(res.Outcomes), cfg.Trials)
	}
	return res, fmt.Errorf("simulation interrupted: %w", cause)
}

// interrupted reports whether a trial stopped because its run context ended
// rather than because the trial itself failed.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
