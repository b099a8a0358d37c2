package dpn_test

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/jt05610/dpn"
)

// ExampleNet fires a small two-branch net by hand.
func ExampleNet() {
	net, err := dpn.NewBuilder("door").
		Place("closed", 1).
		Place("opened", 0).
		Transition("open", "Open door").
		Transition("close", "Close door").
		Arc("closed", "open", 1).
		Arc("open", "opened", 1).
		Arc("opened", "close", 1).
		Arc("close", "closed", 1).
		Final("opened", 1).
		Build()
	if err != nil {
		panic(err)
	}
	s := net.NewState()
	for _, id := range []string{"open", "open", "close"} {
		t, _ := net.TransitionIndex(id)
		if ok, _ := net.Enabled(s, t); !ok {
			fmt.Printf("%s: not enabled\n", net.Label(t))
			continue
		}
		_ = net.Fire(s, t)
		fmt.Printf("%s: closed=%d opened=%d\n", net.Label(t), s[0], s[1])
	}
	// Output:
	// Open door: closed=0 opened=1
	// Open door: not enabled
	// Close door: closed=1 opened=0
}

func TestNew_ConfigurationErrors(t *testing.T) {
	cases := []struct {
		name  string
		build func() *dpn.Builder
	}{
		{"dangling source", func() *dpn.Builder {
			return dpn.NewBuilder("n").Place("p", 1).Transition("t", "").Arc("ghost", "t", 1)
		}},
		{"dangling destination", func() *dpn.Builder {
			return dpn.NewBuilder("n").Place("p", 1).Transition("t", "").Arc("p", "ghost", 1)
		}},
		{"place to place", func() *dpn.Builder {
			return dpn.NewBuilder("n").Place("p", 1).Place("q", 0).Arc("p", "q", 1)
		}},
		{"transition to transition", func() *dpn.Builder {
			return dpn.NewBuilder("n").Transition("t", "").Transition("u", "").Arc("t", "u", 1)
		}},
		{"negative arc weight", func() *dpn.Builder {
			return dpn.NewBuilder("n").Place("p", 1).Transition("t", "").Arc("p", "t", -1)
		}},
		{"duplicate arc", func() *dpn.Builder {
			return dpn.NewBuilder("n").Place("p", 1).Transition("t", "").Arc("p", "t", 1).Arc("p", "t", 2)
		}},
		{"duplicate place", func() *dpn.Builder {
			return dpn.NewBuilder("n").Place("p", 1).Place("p", 0)
		}},
		{"place named like the guard token map", func() *dpn.Builder {
			return dpn.NewBuilder("n").Place(dpn.TokensVar, 1).GuardedTransition("t", "", "tokens > 0")
		}},
		{"negative probability", func() *dpn.Builder {
			return dpn.NewBuilder("n").Transition("t", "").Probability("t", -0.5)
		}},
		{"NaN probability", func() *dpn.Builder {
			return dpn.NewBuilder("n").Transition("t", "").Probability("t", math.NaN())
		}},
		{"inverted duration", func() *dpn.Builder {
			return dpn.NewBuilder("n").Transition("t", "").Duration("t", 3, 1)
		}},
		{"annotation on unknown transition", func() *dpn.Builder {
			return dpn.NewBuilder("n").Transition("t", "").Probability("u", 0.5)
		}},
		{"final marking on unknown place", func() *dpn.Builder {
			return dpn.NewBuilder("n").Place("p", 1).Final("q", 1)
		}},
		{"negative initial tokens", func() *dpn.Builder {
			return dpn.NewBuilder("n").Place("p", -2)
		}},
		{"bad guard", func() *dpn.Builder {
			return dpn.NewBuilder("n").Place("p", 1).GuardedTransition("t", "", "p >")
		}},
		{"guard on unknown place", func() *dpn.Builder {
			return dpn.NewBuilder("n").Place("p", 1).GuardedTransition("t", "", "q > 0")
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.build().Build()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, dpn.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
			var ce *dpn.ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("expected *ConfigurationError, got %T", err)
			}
		})
	}
}

func TestNet_Defaults(t *testing.T) {
	net, err := dpn.NewBuilder("n").
		Place("p", 1).
		Transition("t", "").
		Transition("u", "U").
		Arc("p", "t", 0).
		Probability("u", 0.25).
		Duration("u", 1, 2).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if net.Weight(0) != dpn.DefaultWeight {
		t.Errorf("unannotated weight = %v", net.Weight(0))
	}
	if net.Weight(1) != 0.25 {
		t.Errorf("annotated weight = %v", net.Weight(1))
	}
	if _, ok := net.Duration(0); ok {
		t.Error("t should carry no duration")
	}
	if d, ok := net.Duration(1); !ok || d.Min != 1 || d.Max != 2 {
		t.Errorf("u duration = %v %v", d, ok)
	}
	if net.Label(0) != "t" || net.Label(1) != "U" {
		t.Errorf("labels = %q %q", net.Label(0), net.Label(1))
	}
	if _, ok := net.Sink(); ok {
		t.Error("net without final marking has no sink")
	}
}

func TestNet_FireWeightedArcs(t *testing.T) {
	net, err := dpn.NewBuilder("n").
		Place("a", 3).
		Place("b", 0).
		Transition("t", "").
		Arc("a", "t", 2).
		Arc("t", "b", 3).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	s := net.NewState()
	if err := net.Fire(s, 0); err != nil {
		t.Fatal(err)
	}
	if s[0] != 1 || s[1] != 3 {
		t.Errorf("state after firing = %v", s)
	}
	if ok, _ := net.Enabled(s, 0); ok {
		t.Error("t should not be enabled with one token")
	}
	before := s.Clone()
	if err := net.Fire(s, 0); err == nil {
		t.Error("expected firing a disabled transition to fail")
	}
	for i := range s {
		if s[i] != before[i] {
			t.Errorf("failed firing changed place %d", i)
		}
	}
	if fresh := net.NewState(); fresh[0] != 3 {
		t.Error("NewState must not share storage with earlier states")
	}
}

func TestNet_Guard(t *testing.T) {
	net, err := dpn.NewBuilder("n").
		Place("p", 1).
		Place("retries", 0).
		Place("p-hyphen", 2).
		GuardedTransition("retry", "", "retries < 2").
		GuardedTransition("give_up", "", `retries >= 2 && tokens["p-hyphen"] == 2`).
		Arc("p", "retry", 1).
		Arc("retry", "p", 1).
		Arc("retry", "retries", 1).
		Arc("p", "give_up", 1).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	s := net.NewState()
	for i := 0; i < 2; i++ {
		av, err := net.Available(s, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(av) != 1 || av[0] != 0 {
			t.Fatalf("step %d: available = %v", i, av)
		}
		_ = net.Fire(s, 0)
	}
	av, err := net.Available(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(av) != 1 || av[0] != 1 {
		t.Errorf("after two retries available = %v", av)
	}
}

func TestNet_Completion(t *testing.T) {
	net, err := dpn.NewBuilder("n").
		Place("a", 0).
		Place("b", 0).
		Place("c", 0).
		Final("b", 1).
		Final("c", 2).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	sink, ok := net.Sink()
	if !ok || sink.ID != "b" {
		t.Fatalf("sink = %v", sink)
	}
	s := dpn.State{0, 1, 1}
	if !net.ReachedSink(s) {
		t.Error("sink holds a token")
	}
	if net.Covers(s) {
		t.Error("c holds fewer tokens than the final marking")
	}
	s[2] = 2
	if !net.Covers(s) {
		t.Error("final marking should be covered")
	}
}

// randomNet builds a connected random net with weighted arcs.
func randomNet(r *rand.Rand, places, transitions int) (*dpn.Net, error) {
	b := dpn.NewBuilder("random")
	for p := 0; p < places; p++ {
		b.Place(fmt.Sprintf("p%d", p), r.IntN(4))
	}
	for t := 0; t < transitions; t++ {
		id := fmt.Sprintf("t%d", t)
		b.Transition(id, "")
		in := r.Perm(places)[:1+r.IntN(2)]
		for _, p := range in {
			b.Arc(fmt.Sprintf("p%d", p), id, 1+r.IntN(2))
		}
		out := r.Perm(places)[:1+r.IntN(2)]
		for _, p := range out {
			b.Arc(id, fmt.Sprintf("p%d", p), 1+r.IntN(2))
		}
	}
	return b.Build()
}

func TestNet_RandomWalkStateEquation(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for n := 0; n < 50; n++ {
		net, err := randomNet(r, 2+r.IntN(5), 1+r.IntN(6))
		if err != nil {
			t.Fatal(err)
		}
		c := net.Incidence()
		s := net.NewState()
		for step := 0; step < 100; step++ {
			av, err := net.Available(s, nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(av) == 0 {
				break
			}
			tr := av[r.IntN(len(av))]
			before := s.Clone()
			if err := net.Fire(s, tr); err != nil {
				t.Fatalf("net %d step %d: %v", n, step, err)
			}
			for p := range s {
				if s[p] < 0 {
					t.Fatalf("net %d step %d: place %d went negative", n, step, p)
				}
				if want := float64(before[p]) + c.At(tr, p); float64(s[p]) != want {
					t.Fatalf("net %d step %d: place %d = %d, state equation says %v", n, step, p, s[p], want)
				}
			}
		}
	}
}
