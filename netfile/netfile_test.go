package netfile_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jt05610/dpn"
	"github.com/jt05610/dpn/annotate"
	"github.com/jt05610/dpn/netfile"
)

func TestOpen(t *testing.T) {
	f, err := netfile.Open(context.Background(), "testdata/order.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "order" {
		t.Error("wrong name")
	}
	if len(f.Places) != 4 {
		t.Error("wrong places")
	}
	if len(f.Transitions) != 4 {
		t.Error("wrong transitions")
	}
	if len(f.Arcs) != 8 {
		t.Error("wrong arcs")
	}
	if f.Initial["p_start"] != 1 || f.Final["p_end"] != 1 {
		t.Errorf("markings = %v %v", f.Initial, f.Final)
	}
}

func TestFile_Net(t *testing.T) {
	f, err := netfile.Open(context.Background(), "testdata/order.yaml")
	if err != nil {
		t.Fatal(err)
	}
	extra := annotate.NewPayload()
	extra.Probabilities["Flow_cancel"] = 0.4
	extra.Durations["ship"] = dpn.Interval{Min: 3, Max: 4}
	net, unresolved, err := f.Net(annotate.NewBinder(nil), extra)
	if err != nil {
		t.Fatal(err)
	}
	if len(unresolved) != 1 || unresolved[0].ID != "Flow_ghost" {
		t.Errorf("unresolved = %v", unresolved)
	}
	pay, _ := net.TransitionIndex("pn_Flow_pay")
	cancel, _ := net.TransitionIndex("pn_Flow_cancel")
	if net.Weight(pay) != 0.9 {
		t.Errorf("pay weight = %v", net.Weight(pay))
	}
	if net.Weight(cancel) != 0.1 {
		t.Errorf("file annotations override extra ones, cancel weight = %v", net.Weight(cancel))
	}
	ship, _ := net.TransitionIndex("ship")
	if d, ok := net.Duration(ship); !ok || d.Min != 3 {
		t.Errorf("ship duration = %v %v", d, ok)
	}
	recv, _ := net.TransitionIndex("receive")
	if d, ok := net.Duration(recv); !ok || d.Max != 2 {
		t.Errorf("receive duration = %v %v", d, ok)
	}
}

func TestService_SaveLoad(t *testing.T) {
	s := &netfile.Service{}
	f, err := netfile.Open(context.Background(), "testdata/order.yaml")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := s.Save(context.Background(), &buf, f); err != nil {
		t.Fatal(err)
	}
	g, err := s.Load(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if g.Name != f.Name || len(g.Arcs) != len(f.Arcs) || len(g.Flows) != len(f.Flows) {
		t.Errorf("saved file did not load back: %+v", g)
	}
}

func TestService_LoadErrors(t *testing.T) {
	s := &netfile.Service{}
	if _, err := s.Load(context.Background(), strings.NewReader("name: x\nbogus: 1\n")); err == nil {
		t.Error("expected unknown fields to be rejected")
	}
	f, err := s.Load(context.Background(), strings.NewReader(`{"name": "dup", "flows": [{"id": "f", "probability": 1}, {"id": "f", "probability": 2}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.Net(annotate.NewBinder(nil), nil); err == nil {
		t.Error("expected duplicate flows to be rejected")
	}
	for name, doc := range map[string]string{
		"flow without id": "name: n\nflows:\n  - probability: 0\n",
		"task without id": "name: n\ntasks:\n  - min: 1\n    max: 2\n",
	} {
		f, err := s.Load(context.Background(), strings.NewReader(doc))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if _, err := f.Payload(); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
