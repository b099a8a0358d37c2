package dpn

// Marking maps place identifiers to token counts.
type Marking map[string]int

func (m Marking) Copy() Marking {
	ret := make(Marking, len(m))
	for k, v := range m {
		ret[k] = v
	}
	return ret
}

// State is a marking laid out in the net's place order. Each trial owns its
// own State; nothing else ever writes to it.
type State []int

func (s State) Clone() State {
	clone := make(State, len(s))
	copy(clone, s)
	return clone
}
