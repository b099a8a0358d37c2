// Package annotate binds diagram-level annotations (sequence-flow
// probabilities and task durations) onto the transitions of a converted net.
package annotate

import (
	"sort"
	"strings"

	"github.com/jt05610/dpn"
	"go.uber.org/zap"
)

// Payload is what a diagram parser extracts from a process model.
type Payload struct {
	// Probabilities maps a sequence-flow ID to its probability weight.
	Probabilities map[string]float64 `json:"probabilities,omitempty" yaml:"probabilities,omitempty"`
	// Targets maps a sequence-flow ID to the ID of the element it enters.
	Targets map[string]string `json:"targets,omitempty" yaml:"targets,omitempty"`
	// Durations maps a task ID to its duration interval.
	Durations map[string]dpn.Interval `json:"durations,omitempty" yaml:"durations,omitempty"`
}

func NewPayload() *Payload {
	return &Payload{
		Probabilities: make(map[string]float64),
		Targets:       make(map[string]string),
		Durations:     make(map[string]dpn.Interval),
	}
}

// Match says which rule bound a flow to a transition.
type Match int

const (
	NoMatch Match = iota
	ExactMatch
	TargetMatch
	SuffixMatch
)

func (m Match) String() string {
	switch m {
	case ExactMatch:
		return "exact"
	case TargetMatch:
		return "target"
	case SuffixMatch:
		return "suffix"
	default:
		return "none"
	}
}

// Unresolved is an annotation that could not be bound to any transition.
type Unresolved struct {
	// Kind is "probability" or "duration".
	Kind string
	ID   string
	// Reason is "no transition" or "conflict" when another annotation already
	// claimed the transition.
	Reason string
}

type Binder struct {
	logger *zap.Logger
}

func NewBinder(logger *zap.Logger) *Binder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Binder{logger: logger}
}

// Resolve finds the transition a flow annotation belongs to. The rules are
// tried in order and the first hit wins: the flow ID itself, the flow's
// recorded target, then a transition whose ID ends with the flow ID. Suffix
// ties go to the earliest transition in ids. An empty flow ID matches nothing.
func Resolve(flow, target string, ids []string, known map[string]bool) (string, Match) {
	if flow == "" {
		return "", NoMatch
	}
	if known[flow] {
		return flow, ExactMatch
	}
	if target != "" && known[target] {
		return target, TargetMatch
	}
	for _, id := range ids {
		if strings.HasSuffix(id, flow) {
			return id, SuffixMatch
		}
	}
	return "", NoMatch
}

type binding struct {
	flow       string
	transition string
	how        Match
}

// Bind resolves p against the transition IDs of a net. Every flow is resolved
// first; bindings are then claimed strongest match first, in sorted flow order
// within a match kind, so an exact match always beats a weaker one. Entries
// that resolve nowhere are logged, reported and otherwise ignored.
func (b *Binder) Bind(p *Payload, transitions []string) (*dpn.Annotations, []Unresolved) {
	ann := dpn.NewAnnotations()
	if p == nil {
		return ann, nil
	}
	known := make(map[string]bool, len(transitions))
	for _, id := range transitions {
		known[id] = true
	}
	var unresolved []Unresolved

	bindings := make([]binding, 0, len(p.Probabilities))
	for _, flow := range sortedKeys(p.Probabilities) {
		target := p.Targets[flow]
		id, how := Resolve(flow, target, transitions, known)
		if how == NoMatch {
			b.logger.Warn("no transition for flow",
				zap.String("flow", flow),
				zap.String("target", target),
			)
			unresolved = append(unresolved, Unresolved{Kind: "probability", ID: flow, Reason: "no transition"})
			continue
		}
		bindings = append(bindings, binding{flow: flow, transition: id, how: how})
	}
	sort.SliceStable(bindings, func(i, j int) bool {
		return bindings[i].how < bindings[j].how
	})

	claimed := make(map[string]string)
	for _, bd := range bindings {
		if prev, taken := claimed[bd.transition]; taken {
			b.logger.Warn("transition already annotated",
				zap.String("flow", bd.flow),
				zap.String("transition", bd.transition),
				zap.String("boundBy", prev),
			)
			unresolved = append(unresolved, Unresolved{Kind: "probability", ID: bd.flow, Reason: "conflict"})
			continue
		}
		claimed[bd.transition] = bd.flow
		ann.Probabilities[bd.transition] = p.Probabilities[bd.flow]
		b.logger.Debug("bound probability",
			zap.String("flow", bd.flow),
			zap.String("transition", bd.transition),
			zap.Stringer("match", bd.how),
			zap.Float64("probability", p.Probabilities[bd.flow]),
		)
	}

	for _, task := range sortedKeys(p.Durations) {
		if !known[task] {
			b.logger.Warn("no transition for task", zap.String("task", task))
			unresolved = append(unresolved, Unresolved{Kind: "duration", ID: task, Reason: "no transition"})
			continue
		}
		ann.Durations[task] = p.Durations[task]
	}
	return ann, unresolved
}

// BindNet is Bind against the transitions of an unannotated structure.
func (b *Binder) BindNet(p *Payload, transitions []*dpn.Transition) (*dpn.Annotations, []Unresolved) {
	ids := make([]string, len(transitions))
	for i, t := range transitions {
		ids[i] = t.ID
	}
	return b.Bind(p, ids)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge copies every entry of o into p; entries of o win.
func (p *Payload) Merge(o *Payload) {
	if o == nil {
		return
	}
	for k, v := range o.Probabilities {
		p.Probabilities[k] = v
	}
	for k, v := range o.Targets {
		p.Targets[k] = v
	}
	for k, v := range o.Durations {
		p.Durations[k] = v
	}
}
