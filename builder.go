package dpn

// Builder assembles a net one element at a time.
type Builder struct {
	name        string
	places      []*Place
	transitions []*Transition
	arcs        []*Arc
	initial     Marking
	final       Marking
	ann         *Annotations
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name:    name,
		initial: make(Marking),
		final:   make(Marking),
		ann:     NewAnnotations(),
	}
}

// Place adds a place holding tokens in the initial marking.
func (b *Builder) Place(id string, tokens int) *Builder {
	b.places = append(b.places, NewPlace(id, ""))
	if tokens != 0 {
		b.initial[id] = tokens
	}
	return b
}

func (b *Builder) Transition(id, label string) *Builder {
	b.transitions = append(b.transitions, NewTransition(id, label))
	return b
}

func (b *Builder) GuardedTransition(id, label, guard string) *Builder {
	b.transitions = append(b.transitions, NewTransition(id, label).WithGuard(guard))
	return b
}

func (b *Builder) Arc(from, to string, weight int) *Builder {
	b.arcs = append(b.arcs, NewArc(from, to, weight))
	return b
}

// Final marks place as part of the final marking.
func (b *Builder) Final(place string, tokens int) *Builder {
	b.final[place] = tokens
	return b
}

func (b *Builder) Probability(transition string, p float64) *Builder {
	b.ann.Probabilities[transition] = p
	return b
}

func (b *Builder) Duration(transition string, min, max float64) *Builder {
	b.ann.Durations[transition] = Interval{Min: min, Max: max}
	return b
}

// Annotate merges ann into the annotations collected so far.
func (b *Builder) Annotate(ann *Annotations) *Builder {
	if ann == nil {
		return b
	}
	for k, v := range ann.Probabilities {
		b.ann.Probabilities[k] = v
	}
	for k, v := range ann.Durations {
		b.ann.Durations[k] = v
	}
	return b
}

func (b *Builder) Build() (*Net, error) {
	return New(b.name, b.places, b.transitions, b.arcs, b.initial, b.final, b.ann)
}
