// Package netfile reads and writes annotated nets as YAML documents. JSON
// documents load too since YAML is a superset of JSON.
package netfile

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jt05610/dpn"
	"github.com/jt05610/dpn/annotate"
	"gopkg.in/yaml.v3"
)

// Flow is a diagram sequence flow carrying a probability.
type Flow struct {
	ID          string  `yaml:"id" json:"id"`
	Probability float64 `yaml:"probability" json:"probability"`
	// Target is the element the flow enters, when the converter recorded it.
	Target string `yaml:"target,omitempty" json:"target,omitempty"`
}

// Task is a diagram task carrying a duration interval.
type Task struct {
	ID  string  `yaml:"id" json:"id"`
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// File is the on-disk form of a net and the annotations of the diagram it
// was converted from.
type File struct {
	Name        string            `yaml:"name" json:"name"`
	Places      []*dpn.Place      `yaml:"places" json:"places"`
	Transitions []*dpn.Transition `yaml:"transitions" json:"transitions"`
	Arcs        []*dpn.Arc        `yaml:"arcs" json:"arcs"`
	Initial     dpn.Marking       `yaml:"initial" json:"initial"`
	Final       dpn.Marking       `yaml:"final,omitempty" json:"final,omitempty"`
	Flows       []*Flow           `yaml:"flows,omitempty" json:"flows,omitempty"`
	Tasks       []*Task           `yaml:"tasks,omitempty" json:"tasks,omitempty"`
}

// Payload collects the flow and task annotations of f.
func (f *File) Payload() (*annotate.Payload, error) {
	p := annotate.NewPayload()
	for i, fl := range f.Flows {
		if fl == nil || fl.ID == "" {
			return nil, fmt.Errorf("%s: flow %d has no id", f.Name, i)
		}
		if _, dup := p.Probabilities[fl.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate flow %q", f.Name, fl.ID)
		}
		p.Probabilities[fl.ID] = fl.Probability
		if fl.Target != "" {
			p.Targets[fl.ID] = fl.Target
		}
	}
	for i, t := range f.Tasks {
		if t == nil || t.ID == "" {
			return nil, fmt.Errorf("%s: task %d has no id", f.Name, i)
		}
		if _, dup := p.Durations[t.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate task %q", f.Name, t.ID)
		}
		p.Durations[t.ID] = dpn.Interval{Min: t.Min, Max: t.Max}
	}
	return p, nil
}

// Net binds extra, then the file's own annotations, onto the file's structure
// and builds the net. Annotations in the file override those in extra.
func (f *File) Net(b *annotate.Binder, extra *annotate.Payload) (*dpn.Net, []annotate.Unresolved, error) {
	own, err := f.Payload()
	if err != nil {
		return nil, nil, err
	}
	p := annotate.NewPayload()
	p.Merge(extra)
	p.Merge(own)
	ann, unresolved := b.BindNet(p, f.Transitions)
	net, err := dpn.New(f.Name, f.Places, f.Transitions, f.Arcs, f.Initial, f.Final, ann)
	if err != nil {
		return nil, unresolved, err
	}
	return net, unresolved, nil
}

type Service struct {
}

func (s *Service) Load(_ context.Context, r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode net file: %w", err)
	}
	return &f, nil
}

func (s *Service) Save(_ context.Context, w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

// Open loads the net file at path.
func Open(ctx context.Context, path string) (*File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = in.Close()
	}()
	s := &Service{}
	return s.Load(ctx, in)
}
