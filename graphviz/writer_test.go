package graphviz_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jt05610/dpn"
	"github.com/jt05610/dpn/graphviz"
)

func TestWriter_Flush(t *testing.T) {
	net, err := dpn.NewBuilder("review").
		Place("in", 2).
		Place("out", 0).
		Transition("approve", "Approve").
		GuardedTransition("reject", "Reject", "in > 1").
		Arc("in", "approve", 1).
		Arc("approve", "out", 1).
		Arc("in", "reject", 2).
		Arc("reject", "out", 1).
		Final("out", 1).
		Probability("approve", 0.7).
		Duration("reject", 1, 2).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	w := graphviz.New(&graphviz.Config{Name: net.Name})
	if err := w.Flush(&buf, net); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Approve", "p=0.7", "Reject", "in > 1", "[1, 2]"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered graph is missing %q", want)
		}
	}
}
