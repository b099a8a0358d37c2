package dpn

// Transition represents a transition
type Transition struct {
	ID string `json:"id" yaml:"id"`
	// Label is the activity name recorded in traces. Empty means ID.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	// Guard is an optional boolean expression over the current marking. Every
	// place ID is bound to its token count, and `tokens` maps place IDs to
	// counts for IDs that are not valid identifiers.
	Guard string `json:"guard,omitempty" yaml:"guard,omitempty"`
}

func NewTransition(id, label string) *Transition {
	return &Transition{
		ID:    id,
		Label: label,
	}
}

func (t *Transition) WithGuard(expression string) *Transition {
	t.Guard = expression
	return t
}

func (t *Transition) String() string {
	if t.Label == "" {
		return t.ID
	}
	return t.Label
}
