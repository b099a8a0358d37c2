package dpn

import "fmt"

// Arc is a connection from a place to a transition or a transition to a place.
type Arc struct {
	// Src is the identifier of the place or transition the arc leaves.
	Src string `json:"from" yaml:"from"`
	// Dest is the identifier of the place or transition the arc enters.
	Dest string `json:"to" yaml:"to"`
	// Weight is the number of tokens consumed or produced. Zero means 1.
	Weight int `json:"weight,omitempty" yaml:"weight,omitempty"`
}

func NewArc(from, to string, weight int) *Arc {
	return &Arc{
		Src:    from,
		Dest:   to,
		Weight: weight,
	}
}

func (a *Arc) Multiplicity() int {
	if a.Weight == 0 {
		return 1
	}
	return a.Weight
}

func (a *Arc) String() string {
	return fmt.Sprintf("%s -> %s", a.Src, a.Dest)
}
