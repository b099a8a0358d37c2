package dpn

import "fmt"

// Interval is a closed duration range a transition's firing time is drawn
// from.
type Interval struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g]", i.Min, i.Max)
}

// Annotations are the per-transition probability weights and duration
// intervals, keyed by transition ID. Transitions missing from Probabilities
// weigh 1; transitions missing from Durations take no time.
type Annotations struct {
	Probabilities map[string]float64  `json:"probabilities,omitempty" yaml:"probabilities,omitempty"`
	Durations     map[string]Interval `json:"durations,omitempty" yaml:"durations,omitempty"`
}

func NewAnnotations() *Annotations {
	return &Annotations{
		Probabilities: make(map[string]float64),
		Durations:     make(map[string]Interval),
	}
}
