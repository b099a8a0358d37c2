package sim

import (
	"sort"

	"github.com/jt05610/dpn"
	"gonum.org/v1/gonum/floats"
)

// sample picks one of e.enabled with probability proportional to its weight.
func (e *Engine) sample() (int, error) {
	n := len(e.enabled)
	e.weights = e.weights[:0]
	for _, t := range e.enabled {
		e.weights = append(e.weights, e.net.Weight(t))
	}
	if cap(e.cum) < n {
		e.cum = make([]float64, n)
	}
	e.cum = e.cum[:n]
	floats.CumSum(e.cum, e.weights)
	total := e.cum[n-1]
	if !(total > 0) {
		labels := make([]string, n)
		for i, t := range e.enabled {
			labels[i] = e.net.Label(t)
		}
		return -1, &SamplingError{Enabled: labels}
	}
	u := e.rng.Float64() * total
	i := sort.Search(n, func(i int) bool { return e.cum[i] > u })
	if i == n {
		// u rounded up to total; take the last transition that has weight.
		i = n - 1
		for e.weights[i] <= 0 {
			i--
		}
	}
	return e.enabled[i], nil
}

func (e *Engine) uniform(d dpn.Interval) float64 {
	return d.Min + e.rng.Float64()*(d.Max-d.Min)
}
