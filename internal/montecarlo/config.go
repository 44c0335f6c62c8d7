package montecarlo

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/xtding233/wotsim/internal/gacha"
)

// DefaultMaxIterations caps openings per trial when Config.MaxIterations is 0.
const DefaultMaxIterations = 1_000_000

// routingTolerance bounds how far a routing distribution may drift from 1.
const routingTolerance = 1e-6

var ErrInvalidConfig = errors.New("invalid simulation config")

// Variant is one tier of container with its own odds and reward pool.
type Variant struct {
	Name                 string
	VehicleProbability   float64 // chance an opening yields a vehicle
	PossibleVehicles     int     // distinct vehicles obtainable from this tier
	ContainerProbability float64 // chance an opening drops an extra container
	PityThreshold        int     // consecutive misses after which a vehicle is guaranteed

	// Soft is an optional ramp toward PityThreshold; nil keeps plain hard pity.
	Soft *gacha.SoftPityConfig
}

// Config is the immutable input of a trial. It is read concurrently by
// every trial of a batch and must not be mutated while a batch runs.
type Config struct {
	Variants map[string]Variant
	// Routing maps a source variant to the distribution of the variant an
	// extra container drop belongs to. Each distribution sums to 1.
	Routing map[string]map[string]float64
	// PreOwned counts vehicles already owned before the first opening.
	PreOwned map[string]int

	Base     string // variant opened when nothing else is pending
	Fallback string // variant granted instead of a vehicle from an exhausted pool

	// MaxIterations fails a trial after this many openings; 0 means DefaultMaxIterations.
	MaxIterations int
}

// Validate checks semantic constraints of a Config and reports every
// problem found in a single error wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []string

	if len(c.Variants) == 0 {
		errs = append(errs, "at least one variant is required")
	}
	if c.Base == "" {
		errs = append(errs, "base variant is required")
	} else if _, ok := c.Variants[c.Base]; !ok {
		errs = append(errs, fmt.Sprintf("base variant %q is not defined", c.Base))
	}
	if c.Fallback == "" {
		errs = append(errs, "fallback variant is required")
	} else if _, ok := c.Variants[c.Fallback]; !ok {
		errs = append(errs, fmt.Sprintf("fallback variant %q is not defined", c.Fallback))
	}
	if c.MaxIterations < 0 {
		errs = append(errs, "max_iterations must be >= 0 (0 means default)")
	}

	for _, name := range sortedKeys(c.Variants) {
		v := c.Variants[name]
		if v.Name != name {
			errs = append(errs, fmt.Sprintf("variants[%s].name %q does not match its key", name, v.Name))
		}
		if !isProb(v.VehicleProbability) {
			errs = append(errs, fmt.Sprintf("variants[%s].vehicle_probability must be in [0,1]", name))
		}
		if !isProb(v.ContainerProbability) {
			errs = append(errs, fmt.Sprintf("variants[%s].container_probability must be in [0,1]", name))
		}
		if v.PossibleVehicles < 0 {
			errs = append(errs, fmt.Sprintf("variants[%s].possible_vehicles must be >= 0", name))
		}
		if v.PityThreshold < 0 {
			errs = append(errs, fmt.Sprintf("variants[%s].pity_threshold must be >= 0", name))
		}
		if v.Soft != nil {
			if err := v.Soft.Validate(v.PityThreshold); err != nil {
				errs = append(errs, fmt.Sprintf("variants[%s].soft: need 0 <= start_at < pity_threshold-1, target in (0,1], known easing", name))
			}
		}
		if v.ContainerProbability > 0 {
			if _, ok := c.Routing[name]; !ok {
				errs = append(errs, fmt.Sprintf("routing[%s] is required when container_probability > 0", name))
			}
		}
	}

	for _, src := range sortedKeys(c.Routing) {
		if _, ok := c.Variants[src]; !ok {
			errs = append(errs, fmt.Sprintf("routing source %q is not a defined variant", src))
		}
		dist := c.Routing[src]
		var sum float64
		for _, dst := range sortedKeys(dist) {
			w := dist[dst]
			if _, ok := c.Variants[dst]; !ok {
				errs = append(errs, fmt.Sprintf("routing[%s] references unknown variant %q", src, dst))
			}
			if !isProb(w) {
				errs = append(errs, fmt.Sprintf("routing[%s][%s] must be in [0,1]", src, dst))
			}
			sum += w
		}
		if math.Abs(sum-1) > routingTolerance {
			errs = append(errs, fmt.Sprintf("routing[%s] must sum to 1, got %g", src, sum))
		}
	}

	for _, name := range sortedKeys(c.PreOwned) {
		n := c.PreOwned[name]
		v, ok := c.Variants[name]
		if !ok {
			errs = append(errs, fmt.Sprintf("preowned references unknown variant %q", name))
			continue
		}
		if n < 0 {
			errs = append(errs, fmt.Sprintf("preowned[%s] must be >= 0", name))
		} else if n > v.PossibleVehicles {
			errs = append(errs, fmt.Sprintf("preowned[%s]=%d exceeds possible_vehicles=%d", name, n, v.PossibleVehicles))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// Remaining returns the distinct vehicles of a variant still obtainable
// before any opening: possible minus pre-owned.
func (c Config) Remaining(variant string) int {
	return c.Variants[variant].PossibleVehicles - c.PreOwned[variant]
}

func (c Config) maxIterations() int {
	if c.MaxIterations > 0 {
		return c.MaxIterations
	}
	return DefaultMaxIterations
}

func isProb(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
