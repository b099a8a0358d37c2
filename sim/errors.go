package sim

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSampling      = errors.New("sampling error")
	ErrTimeout       = errors.New("simulation timed out")
	ErrInvalidConfig = errors.New("invalid simulation config")
)

// SamplingError is returned when every enabled transition weighs zero.
type SamplingError struct {
	Enabled []string
}

func (e *SamplingError) Error() string {
	return fmt.Sprintf("%s: enabled transitions [%s] have no positive weight", ErrSampling, strings.Join(e.Enabled, ", "))
}

func (e *SamplingError) Unwrap() error { return ErrSampling }

// TrialError aborts a run. Trace is what the trial fired before failing.
type TrialError struct {
	Index int
	Trace []string
	Err   error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("trial %d failed after [%s]: %v", e.Index, strings.Join(e.Trace, ", "), e.Err)
}

func (e *TrialError) Unwrap() error { return e.Err }
