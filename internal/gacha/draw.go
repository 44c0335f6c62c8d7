package gacha

import "errors"

var (
	ErrInvalidProb    = errors.New("invalid probability p; must be 0..1")
	ErrInvalidWeights = errors.New("invalid weights; must be non-negative with a positive sum")
)

// Draw under p, return if it is hit
// p <= 0 => no hit. p >= 1 => must hit. otherwise, rng.Float64() < p
func Draw(p float64, rng RandomSource) (bool, error) {
	if err := validateProb(p); err != nil {
		return false, err
	}
	if p <= 0 {
		return false, nil
	}
	if p >= 1 {
		return true, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return rng.Float64() < p, nil
}

// WeightedChoice picks an index with probability weights[i] / sum(weights).
// Weights need not be normalized. One uniform draw is consumed per call.
func WeightedChoice(weights []float64, rng RandomSource) (int, error) {
	if len(weights) == 0 {
		return 0, ErrInvalidWeights
	}
	var total float64
	for _, w := range weights {
		if err := validateWeight(w); err != nil {
			return 0, err
		}
		total += w
	}
	if total <= 0 {
		return 0, ErrInvalidWeights
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	x := rng.Float64() * total
	var acc float64
	last := 0
	for i, w := range weights {
		if w == 0 {
			continue
		}
		acc += w
		if x < acc {
			return i, nil
		}
		last = i
	}
	// rounding left x at or past the final edge
	return last, nil
}
