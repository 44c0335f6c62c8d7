package gacha

// PitySystem handles a "hard pity": once Count consecutive misses reach the
// threshold, the next draw is guaranteed. Count always stays in [0, Pity].
type PitySystem struct {
	Pity  int          // consecutive misses after which a hit is guaranteed
	Count int          // number of draws since last hit
	RNG   RandomSource // random source for the probability roll
}

// NewPitySystem creates a new hard pity system with given threshold and RNG
func NewPitySystem(pity int, rng RandomSource) *PitySystem {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &PitySystem{Pity: pity, RNG: rng}
}

// Guaranteed reports whether the next draw hits regardless of probability.
func (ps *PitySystem) Guaranteed() bool {
	return ps.Count >= ps.Pity
}

// Draw performs one draw with probability p
// - If Count has reached the pity threshold, the draw hits without a roll
// - Otherwise, it uses probability p.
// - On hit, Count resets to 0; otherwise, Count increments
func (ps *PitySystem) Draw(p float64) (bool, error) {
	if ps.Guaranteed() {
		ps.Count = 0
		return true, nil
	}

	hit, err := Draw(p, ps.RNG)
	if err != nil {
		return false, err
	}
	ps.record(hit)
	return hit, nil
}

func (ps *PitySystem) record(hit bool) {
	if hit {
		ps.Count = 0
	} else {
		ps.Count++
	}
}
