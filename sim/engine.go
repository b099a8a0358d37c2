// Package sim executes annotated nets: one stochastic trial at a time with
// Engine, or many independent trials in parallel with Run.
package sim

import (
	"context"
	"math/rand/v2"

	"github.com/jt05610/dpn"
)

// Outcome is the record a finished trial leaves behind.
type Outcome struct {
	Index int      `json:"index"`
	Trace []string `json:"trace"`
	// Duration is the sum of the sampled durations of every fired transition.
	Duration float64 `json:"duration"`
	// Timed is set when at least one fired transition carried a duration
	// interval.
	Timed  bool   `json:"timed"`
	Status Status `json:"status"`
}

// Trial is the private, mutable state of one execution.
type Trial struct {
	Outcome
	state     dpn.State
	remaining int
}

// Marking returns a copy of the trial's current marking.
func (t *Trial) Marking() dpn.State {
	return t.state.Clone()
}

// Remaining is the number of firings the trial may still perform.
func (t *Trial) Remaining() int {
	return t.remaining
}

// Engine runs trials against one net. An Engine reuses scratch buffers
// between trials and must not be shared between goroutines.
type Engine struct {
	net        *dpn.Net
	completion Completion
	pcg        *rand.PCG
	rng        *rand.Rand
	enabled    []int
	weights    []float64
	cum        []float64
}

func NewEngine(net *dpn.Net, completion Completion) *Engine {
	pcg := rand.NewPCG(0, 0)
	return &Engine{
		net:        net,
		completion: completion,
		pcg:        pcg,
		rng:        rand.New(pcg),
	}
}

// Reseed positions the engine's generator on (seed, stream). Trials of a run
// use their index as the stream so each trial's draws are independent of
// which worker runs it.
func (e *Engine) Reseed(seed, stream uint64) {
	e.pcg.Seed(seed, stream)
}

// Start begins a trial from a fresh copy of the initial marking with a
// budget of steps firings.
func (e *Engine) Start(steps int) *Trial {
	return &Trial{
		Outcome: Outcome{
			Trace:  make([]string, 0),
			Status: Running,
		},
		state:     e.net.NewState(),
		remaining: steps,
	}
}

func (e *Engine) completed(s dpn.State) bool {
	if e.completion == CoverFinal {
		return e.net.Covers(s)
	}
	return e.net.ReachedSink(s)
}

// Step advances tr by one transition of the trial state machine: it either
// moves tr to a terminal status or fires one sampled transition.
func (e *Engine) Step(tr *Trial) error {
	if tr.Status.Terminal() {
		return nil
	}
	var err error
	e.enabled, err = e.net.Available(tr.state, e.enabled[:0])
	if err != nil {
		return err
	}
	switch {
	case e.completed(tr.state):
		tr.Status = Completed
		return nil
	case tr.remaining <= 0:
		tr.Status = StepBudgetExhausted
		return nil
	case len(e.enabled) == 0:
		tr.Status = Stuck
		return nil
	}
	t, err := e.sample()
	if err != nil {
		return err
	}
	if d, ok := e.net.Duration(t); ok {
		tr.Duration += e.uniform(d)
		tr.Timed = true
	}
	if err := e.net.Fire(tr.state, t); err != nil {
		return err
	}
	tr.Trace = append(tr.Trace, e.net.Label(t))
	tr.remaining--
	return nil
}

// Run executes a whole trial. On error the returned outcome still carries the
// trace fired so far.
func (e *Engine) Run(ctx context.Context, steps int) (Outcome, error) {
	tr := e.Start(steps)
	done := ctx.Done()
	for !tr.Status.Terminal() {
		select {
		case <-done:
			return tr.Outcome, ctx.Err()
		default:
		}
		if err := e.Step(tr); err != nil {
			return tr.Outcome, err
		}
	}
	return tr.Outcome, nil
}
