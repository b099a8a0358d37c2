package sim

import (
	"fmt"
	"strings"
)

// Status is where a trial is in its life cycle. Every status except Running
// is terminal.
type Status int

const (
	Running Status = iota
	Completed
	Stuck
	StepBudgetExhausted
)

var statusNames = map[Status]string{
	Running:             "Running",
	Completed:           "Completed",
	Stuck:               "Stuck",
	StepBudgetExhausted: "StepBudgetExhausted",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) Terminal() bool { return s != Running }

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// Completion selects how a trial decides it has reached the final marking.
type Completion int

const (
	// SinkPlace completes once the net's sink place holds a token.
	SinkPlace Completion = iota
	// CoverFinal completes once every place of the final marking holds at
	// least its final count.
	CoverFinal
)

func (c Completion) String() string {
	if c == CoverFinal {
		return "cover"
	}
	return "sink"
}

func ParseCompletion(s string) (Completion, error) {
	switch strings.ToLower(s) {
	case "", "sink":
		return SinkPlace, nil
	case "cover":
		return CoverFinal, nil
	default:
		return SinkPlace, fmt.Errorf("%w: unknown completion rule %q", ErrInvalidConfig, s)
	}
}
