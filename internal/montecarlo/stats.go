package montecarlo

import (
	"math"
	"sort"
)

// Metric extracts one number from a terminal state.
type Metric func(*State) int

// PurchasedContainers measures containers of a variant a player paid for.
func PurchasedContainers(variant string) Metric {
	return func(s *State) int { return s.PurchasedContainers(variant) }
}

func OpenedContainers(variant string) Metric {
	return func(s *State) int { return s.OpenedContainers(variant) }
}

func ReceivedVehicles(variant string) Metric {
	return func(s *State) int { return s.ReceivedVehicles(variant) }
}

func ReceivedContainers(variant string) Metric {
	return func(s *State) int { return s.ReceivedContainers(variant) }
}

// Stats summarizes a metric over a batch.
type Stats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// Samples applies m to every state.
func Samples(states []*State, m Metric) []int {
	xs := make([]int, len(states))
	for i, st := range states {
		xs[i] = m(st)
	}
	return xs
}

// Summarize computes Stats of m over states.
func Summarize(states []*State, m Metric) Stats {
	return calcStats(Samples(states, m))
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)

	return Stats{
		N:       n,
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		Min:     cp[0],
		Max:     cp[n-1],
		P50:     percentile(cp, 0.50),
		P90:     percentile(cp, 0.90),
		P95:     percentile(cp, 0.95),
		P99:     percentile(cp, 0.99),
		Samples: xs,
	}
}

// percentile interpolates linearly between closest ranks of sorted xs.
func percentile(sorted []int, p float64) float64 {
	n := len(sorted)
	if n == 1 || p <= 0 {
		return float64(sorted[0])
	}
	if p >= 1 {
		return float64(sorted[n-1])
	}
	pos := p * float64(n-1)
	i := int(math.Floor(pos))
	f := pos - float64(i)
	if i+1 >= n {
		return float64(sorted[i])
	}
	return float64(sorted[i])*(1-f) + float64(sorted[i+1])*f
}
