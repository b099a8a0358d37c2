package dpn

import (
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gonum.org/v1/gonum/mat"
)

// DefaultWeight is the probability weight of a transition nobody annotated.
const DefaultWeight = 1.0

// TokensVar is the guard variable holding the token map. No place may use it
// as its ID.
const TokensVar = "tokens"

type edge struct {
	place  int
	weight int
}

// Net is an annotated place/transition net. It never changes after New
// returns; simulation state lives in State values obtained from NewState.
type Net struct {
	Name        string
	Places      []*Place
	Transitions []*Transition
	Arcs        []*Arc
	Initial     Marking
	Final       Marking

	places      map[string]int
	transitions map[string]int
	inputs      [][]edge
	outputs     [][]edge
	weights     []float64
	durations   []Interval
	timed       []bool
	guards      []*vm.Program
	initial     State
	final       State
	sink        int
}

// New validates the structure and annotations and returns the net. Any
// defect is reported as a *ConfigurationError.
func New(name string, places []*Place, transitions []*Transition, arcs []*Arc, initial, final Marking, ann *Annotations) (*Net, error) {
	if ann == nil {
		ann = NewAnnotations()
	}
	net := &Net{
		Name:        name,
		Places:      places,
		Transitions: transitions,
		Arcs:        arcs,
		Initial:     initial.Copy(),
		Final:       final.Copy(),
		places:      make(map[string]int, len(places)),
		transitions: make(map[string]int, len(transitions)),
		inputs:      make([][]edge, len(transitions)),
		outputs:     make([][]edge, len(transitions)),
		weights:     make([]float64, len(transitions)),
		durations:   make([]Interval, len(transitions)),
		timed:       make([]bool, len(transitions)),
		guards:      make([]*vm.Program, len(transitions)),
		sink:        -1,
	}
	for i, p := range places {
		if p == nil || p.ID == "" {
			return nil, configError("place", "missing identifier at index %d", i)
		}
		if _, found := net.places[p.ID]; found {
			return nil, configError(p.ID, "duplicate place")
		}
		if p.ID == TokensVar {
			return nil, configError(p.ID, "place identifier is reserved for guards")
		}
		net.places[p.ID] = i
	}
	for i, t := range transitions {
		if t == nil || t.ID == "" {
			return nil, configError("transition", "missing identifier at index %d", i)
		}
		if _, found := net.transitions[t.ID]; found {
			return nil, configError(t.ID, "duplicate transition")
		}
		if _, found := net.places[t.ID]; found {
			return nil, configError(t.ID, "identifier used by both a place and a transition")
		}
		net.transitions[t.ID] = i
		net.weights[i] = DefaultWeight
	}
	for i, a := range arcs {
		if a == nil {
			return nil, configError("arc", "nil arc at index %d", i)
		}
		if err := net.addArc(a); err != nil {
			return nil, err
		}
	}
	var err error
	if net.initial, err = net.vector("initial marking", initial); err != nil {
		return nil, err
	}
	if net.final, err = net.vector("final marking", final); err != nil {
		return nil, err
	}
	for i := range places {
		if net.final[i] > 0 {
			net.sink = i
			break
		}
	}
	if err := net.annotate(ann); err != nil {
		return nil, err
	}
	if err := net.compileGuards(); err != nil {
		return nil, err
	}
	return net, nil
}

func hasEdge(edges []edge, place int) bool {
	for _, e := range edges {
		if e.place == place {
			return true
		}
	}
	return false
}

func (net *Net) addArc(a *Arc) error {
	if a.Weight < 0 {
		return configError(a.String(), "negative weight %d", a.Weight)
	}
	w := a.Multiplicity()
	if p, ok := net.places[a.Src]; ok {
		t, ok := net.transitions[a.Dest]
		if !ok {
			if _, isPlace := net.places[a.Dest]; isPlace {
				return configError(a.String(), "cannot connect two places")
			}
			return configError(a.String(), "dangling destination %q", a.Dest)
		}
		if hasEdge(net.inputs[t], p) {
			return configError(a.String(), "arc already exists")
		}
		net.inputs[t] = append(net.inputs[t], edge{place: p, weight: w})
		return nil
	}
	if t, ok := net.transitions[a.Src]; ok {
		p, ok := net.places[a.Dest]
		if !ok {
			if _, isTransition := net.transitions[a.Dest]; isTransition {
				return configError(a.String(), "cannot connect two transitions")
			}
			return configError(a.String(), "dangling destination %q", a.Dest)
		}
		if hasEdge(net.outputs[t], p) {
			return configError(a.String(), "arc already exists")
		}
		net.outputs[t] = append(net.outputs[t], edge{place: p, weight: w})
		return nil
	}
	return configError(a.String(), "dangling source %q", a.Src)
}

func (net *Net) vector(what string, m Marking) (State, error) {
	s := make(State, len(net.Places))
	for id, n := range m {
		i, ok := net.places[id]
		if !ok {
			return nil, configError(id, "%s refers to an unknown place", what)
		}
		if n < 0 {
			return nil, configError(id, "%s holds %d tokens", what, n)
		}
		s[i] = n
	}
	return s, nil
}

func (net *Net) annotate(ann *Annotations) error {
	for id, p := range ann.Probabilities {
		i, ok := net.transitions[id]
		if !ok {
			return configError(id, "probability for unknown transition")
		}
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return configError(id, "invalid probability %v", p)
		}
		net.weights[i] = p
	}
	for id, d := range ann.Durations {
		i, ok := net.transitions[id]
		if !ok {
			return configError(id, "duration for unknown transition")
		}
		if math.IsNaN(d.Min) || math.IsNaN(d.Max) || math.IsInf(d.Min, 0) || math.IsInf(d.Max, 0) {
			return configError(id, "invalid duration %s", d)
		}
		if d.Min < 0 {
			return configError(id, "negative duration %s", d)
		}
		if d.Min > d.Max {
			return configError(id, "duration minimum exceeds maximum %s", d)
		}
		net.durations[i] = d
		net.timed[i] = true
	}
	return nil
}

func (net *Net) guardEnv(s State) map[string]interface{} {
	tokens := make(map[string]int, len(net.Places))
	env := make(map[string]interface{}, len(net.Places)+1)
	for i, p := range net.Places {
		tokens[p.ID] = s[i]
		env[p.ID] = s[i]
	}
	env[TokensVar] = tokens
	return env
}

func (net *Net) compileGuards() error {
	env := net.guardEnv(make(State, len(net.Places)))
	for i, t := range net.Transitions {
		if t.Guard == "" {
			continue
		}
		program, err := expr.Compile(t.Guard, expr.Env(env), expr.AsBool())
		if err != nil {
			return configError(t.ID, "guard: %v", err)
		}
		net.guards[i] = program
	}
	return nil
}

// NewState returns a fresh copy of the initial marking.
func (net *Net) NewState() State {
	return net.initial.Clone()
}

// Marking converts s back to a place-keyed marking.
func (net *Net) Marking(s State) Marking {
	m := make(Marking, len(net.Places))
	for i, p := range net.Places {
		m[p.ID] = s[i]
	}
	return m
}

func (net *Net) TransitionIndex(id string) (int, bool) {
	i, ok := net.transitions[id]
	return i, ok
}

// Label is the trace label of transition t.
func (net *Net) Label(t int) string {
	return net.Transitions[t].String()
}

// Weight is the annotated probability weight of transition t.
func (net *Net) Weight(t int) float64 {
	return net.weights[t]
}

// Duration returns the duration interval of transition t and whether one was
// annotated.
func (net *Net) Duration(t int) (Interval, bool) {
	return net.durations[t], net.timed[t]
}

// Sink is the place whose marking decides completion: the first place, in
// declaration order, with a positive count in the final marking.
func (net *Net) Sink() (*Place, bool) {
	if net.sink < 0 {
		return nil, false
	}
	return net.Places[net.sink], true
}

// Enabled returns true if the transition is enabled
func (net *Net) Enabled(s State, t int) (bool, error) {
	for _, in := range net.inputs[t] {
		if s[in.place] < in.weight {
			return false, nil
		}
	}
	program := net.guards[t]
	if program == nil {
		return true, nil
	}
	out, err := expr.Run(program, net.guardEnv(s))
	if err != nil {
		return false, configError(net.Transitions[t].ID, "guard: %v", err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Available appends the indices of every enabled transition to dst.
func (net *Net) Available(s State, dst []int) ([]int, error) {
	for t := range net.Transitions {
		ok, err := net.Enabled(s, t)
		if err != nil {
			return dst, err
		}
		if ok {
			dst = append(dst, t)
		}
	}
	return dst, nil
}

// Fire consumes the input tokens and produces the output tokens of
// transition t. Either every place changes or none does. Guards are not
// evaluated here; callers fire only transitions Available returned.
func (net *Net) Fire(s State, t int) error {
	for _, in := range net.inputs[t] {
		if s[in.place] < in.weight {
			return NotEnabled(net.Transitions[t].ID)
		}
	}
	for _, in := range net.inputs[t] {
		s[in.place] -= in.weight
	}
	for _, out := range net.outputs[t] {
		s[out.place] += out.weight
	}
	return nil
}

// ReachedSink reports whether the sink place holds a token. A net without a
// final marking never reaches it.
func (net *Net) ReachedSink(s State) bool {
	return net.sink >= 0 && s[net.sink] > 0
}

// Covers reports whether s holds at least the final marking in every place
// the final marking names. An empty final marking is never covered.
func (net *Net) Covers(s State) bool {
	covered := false
	for i, n := range net.final {
		if n == 0 {
			continue
		}
		if s[i] < n {
			return false
		}
		covered = true
	}
	return covered
}

// Incidence returns the transitions × places incidence matrix: row t holds
// the change firing t applies to every place.
func (net *Net) Incidence() *mat.Dense {
	m := len(net.Places)
	n := len(net.Transitions)
	if m == 0 || n == 0 {
		return &mat.Dense{}
	}
	d := make([]float64, n*m)
	for t := range net.Transitions {
		for _, in := range net.inputs[t] {
			d[t*m+in.place] -= float64(in.weight)
		}
		for _, out := range net.outputs[t] {
			d[t*m+out.place] += float64(out.weight)
		}
	}
	return mat.NewDense(n, m, d)
}

