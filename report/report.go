// Package report groups simulation outcomes into per-trace statistics.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jt05610/dpn/sim"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Separator joins trace labels in keys and tables.
const Separator = " → "

// Entry summarises every trial that fired the same label sequence.
type Entry struct {
	Trace []string `json:"trace"`
	Count int      `json:"count"`
	// Percentage is 100·Count/N rounded to two decimals.
	Percentage float64 `json:"percentage"`
	// AvgTime is the mean duration over the timed trials of the group; zero
	// when Timed is false.
	AvgTime  float64            `json:"avgTime"`
	Timed    bool               `json:"timed"`
	Statuses map[sim.Status]int `json:"statuses"`
}

func (e *Entry) Key() string {
	return strings.Join(e.Trace, Separator)
}

type Report struct {
	RunID   string   `json:"runId,omitempty"`
	Trials  int      `json:"trials"`
	Entries []*Entry `json:"entries"`
}

type group struct {
	entry     *Entry
	durations []float64
}

// Aggregate groups outcomes by trace. Entries come back sorted by count,
// largest first, then by trace; the order carries no other meaning.
func Aggregate(outcomes []sim.Outcome) *Report {
	r := &Report{
		Trials:  len(outcomes),
		Entries: make([]*Entry, 0),
	}
	groups := make(map[string]*group)
	for _, o := range outcomes {
		key := traceKey(o.Trace)
		g, ok := groups[key]
		if !ok {
			trace := make([]string, len(o.Trace))
			copy(trace, o.Trace)
			g = &group{entry: &Entry{
				Trace:    trace,
				Statuses: make(map[sim.Status]int),
			}}
			groups[key] = g
			r.Entries = append(r.Entries, g.entry)
		}
		g.entry.Count++
		g.entry.Statuses[o.Status]++
		if o.Timed {
			g.durations = append(g.durations, o.Duration)
		}
	}
	for _, g := range groups {
		g.entry.Percentage = Percentage(g.entry.Count, r.Trials)
		if len(g.durations) > 0 {
			g.entry.Timed = true
			g.entry.AvgTime = stat.Mean(g.durations, nil)
		}
	}
	sort.Slice(r.Entries, func(i, j int) bool {
		a, b := r.Entries[i], r.Entries[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return traceKey(a.Trace) < traceKey(b.Trace)
	})
	return r
}

// traceKey is unambiguous even when labels contain the display separator.
func traceKey(trace []string) string {
	return strings.Join(trace, "\x00")
}

// Percentage returns 100·count/total rounded half away from zero to two
// decimals.
func Percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	p, _ := decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 2).
		Float64()
	return p
}

// Lookup returns the entry for trace, if any trial produced it.
func (r *Report) Lookup(trace ...string) (*Entry, bool) {
	key := traceKey(trace)
	for _, e := range r.Entries {
		if traceKey(e.Trace) == key {
			return e, true
		}
	}
	return nil, false
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(tw, "Count\t%\tAvg time\tTrace\t"); err != nil {
		return err
	}
	for _, e := range r.Entries {
		avg := "-"
		if e.Timed {
			avg = fmt.Sprintf("%.3f", e.AvgTime)
		}
		trace := e.Key()
		if trace == "" {
			trace = "(empty)"
		}
		if _, err := fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\t\n", e.Count, e.Percentage, avg, trace); err != nil {
			return err
		}
	}
	return tw.Flush()
}
