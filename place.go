package dpn

// Place represents a place.
type Place struct {
	ID string `json:"id" yaml:"id"`
	// Name is only used for display; ID is what arcs and markings refer to.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// NewPlace creates a new place.
func NewPlace(id, name string) *Place {
	return &Place{
		ID:   id,
		Name: name,
	}
}

func (p *Place) String() string {
	if p.Name == "" {
		return p.ID
	}
	return p.Name
}
