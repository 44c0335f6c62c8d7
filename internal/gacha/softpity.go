package gacha

import "errors"

// Easing specifies how the probability ramps up as we approach pity.
type Easing string

const (
	EaseLinear     Easing = "linear"
	EaseOutQuad    Easing = "easeOutQuad"
	EaseInOutCubic Easing = "easeInOutCubic"
)

var ErrSoftPityConfig = errors.New("invalid soft pity config")

// SoftPityConfig defines the ramp behavior before the hard pity.
// Example: Pity=50, StartAt=40, Target=0.3 → from miss #40 up to #49, p ramps to 0.3
type SoftPityConfig struct {
	StartAt    int     // miss count at which the ramp begins
	TargetProb float64 // probability at Count == Pity-1, must be in (0,1]
	Easing     Easing  // easing function
}

// Validate checks the ramp against a hard pity threshold.
func (c SoftPityConfig) Validate(pity int) error {
	if pity <= 1 {
		return ErrSoftPityConfig
	}
	if c.TargetProb <= 0 || c.TargetProb > 1 {
		return ErrSoftPityConfig
	}
	// Ramp ends at (Pity-1). StartAt must be < (Pity-1) to have room to ramp.
	if c.StartAt < 0 || c.StartAt >= pity-1 {
		return ErrSoftPityConfig
	}
	switch c.Easing {
	case "", EaseLinear, EaseOutQuad, EaseInOutCubic:
	default:
		return ErrSoftPityConfig
	}
	return nil
}

// SoftPitySystem extends PitySystem with a soft ramp before hard pity.
type SoftPitySystem struct {
	PitySystem
	Soft *SoftPityConfig
}

// NewSoftPitySystem creates a pity system with an optional soft ramp.
// If soft is nil → behaves like plain hard pity.
func NewSoftPitySystem(pity int, soft *SoftPityConfig, rng RandomSource) (*SoftPitySystem, error) {
	if soft != nil {
		if err := soft.Validate(pity); err != nil {
			return nil, err
		}
		cp := *soft
		if cp.Easing == "" {
			cp.Easing = EaseLinear
		}
		soft = &cp
	}
	return &SoftPitySystem{PitySystem: *NewPitySystem(pity, rng), Soft: soft}, nil
}

// effectiveProb computes the actual probability this draw should use:
// - If soft ramp is configured and Count >= StartAt: ramp p toward TargetProb at (Pity-1).
// - Else: return base p.
func (s *SoftPitySystem) effectiveProb(pBase float64) float64 {
	if s.Soft == nil || s.Count < s.Soft.StartAt {
		return pBase
	}
	end := s.Pity - 1
	length := float64(end - s.Soft.StartAt)
	if length <= 0 {
		return pBase
	}
	t := float64(s.Count-s.Soft.StartAt) / length
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	switch s.Soft.Easing {
	case EaseOutQuad:
		// f(t) = 1 - (1 - t)^2
		t = 1 - (1-t)*(1-t)
	case EaseInOutCubic:
		if t < 0.5 {
			t = 4 * t * t * t
		} else {
			t = 1 - (-2*t+2)*(-2*t+2)*(-2*t+2)/2
		}
	}
	// a ramp never lowers the odds below base
	if s.Soft.TargetProb <= pBase {
		return pBase
	}
	p := pBase + (s.Soft.TargetProb-pBase)*t
	if p > 1 {
		p = 1
	}
	return p
}

// Draw performs one draw using the soft/hard pity rules.
// On hit → Count resets; else → Count++.
func (s *SoftPitySystem) Draw(pBase float64) (bool, error) {
	if s.Guaranteed() {
		s.Count = 0
		return true, nil
	}
	hit, err := Draw(s.effectiveProb(pBase), s.RNG)
	if err != nil {
		return false, err
	}
	s.record(hit)
	return hit, nil
}
