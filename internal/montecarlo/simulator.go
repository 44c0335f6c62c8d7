package montecarlo

import (
	"errors"
	"fmt"
	"maps"

	"github.com/xtding233/wotsim/internal/gacha"
)

var (
	ErrMaxIterations = errors.New("exceeded maximum iterations")
	ErrNilPredicate  = errors.New("stop predicate is nil")
)

// route is a routing distribution in a fixed order, so a seeded trial
// picks the same destinations on every run.
type route struct {
	names   []string
	weights []float64
}

// Simulator runs trials of one validated Config. It holds no per-trial
// state and is safe for concurrent use.
type Simulator struct {
	cfg    Config
	routes map[string]route
}

// NewSimulator validates cfg and prepares it for repeated trials.
// The simulator keeps its own copy, so later edits to cfg have no effect.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	own := cloneConfig(cfg)
	routes := make(map[string]route, len(own.Routing))
	for src, dist := range own.Routing {
		var r route
		for _, dst := range sortedKeys(dist) {
			r.names = append(r.names, dst)
			r.weights = append(r.weights, dist[dst])
		}
		routes[src] = r
	}
	return &Simulator{cfg: own, routes: routes}, nil
}

// Config returns the configuration the simulator was built with.
func (s *Simulator) Config() Config { return cloneConfig(s.cfg) }

// Run validates cfg and runs a single trial.
func Run(cfg Config, stop Predicate, rng gacha.RandomSource) (*State, error) {
	sim, err := NewSimulator(cfg)
	if err != nil {
		return nil, err
	}
	return sim.Run(stop, rng)
}

// Run opens containers until stop holds and returns the terminal state.
//
// Pending openings form a FIFO queue seeded with one base container. Each
// opening rolls for a vehicle (guaranteed once the pity counter reaches the
// threshold), then independently rolls for an extra container routed by the
// source variant's distribution. A vehicle from an exhausted pool becomes a
// fallback container instead. When the queue drains, another base container
// is queued, so only stop or the iteration cap ends a trial.
func (s *Simulator) Run(stop Predicate, rng gacha.RandomSource) (*State, error) {
	if stop == nil {
		return nil, ErrNilPredicate
	}
	if rng == nil {
		rng = gacha.DefaultRNG()
	}

	state := newState()
	remaining := make(map[string]int, len(s.cfg.Variants))
	pity := make(map[string]*gacha.SoftPitySystem, len(s.cfg.Variants))
	for name, v := range s.cfg.Variants {
		remaining[name] = s.cfg.Remaining(name)
		ps, err := gacha.NewSoftPitySystem(v.PityThreshold, v.Soft, rng)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", name, err)
		}
		pity[name] = ps
	}

	maxIter := s.cfg.maxIterations()
	queue := []string{s.cfg.Base}
	for {
		if state.openings >= maxIter {
			return nil, fmt.Errorf("trial stopped after %d openings: %w", state.openings, ErrMaxIterations)
		}

		name := queue[0]
		queue = queue[1:]
		v := s.cfg.Variants[name]
		ps := pity[name]

		hit, err := ps.Draw(v.VehicleProbability)
		if err != nil {
			return nil, fmt.Errorf("variant %s: vehicle roll: %w", name, err)
		}
		if hit {
			if remaining[name] <= 0 {
				queue = append(queue, s.cfg.Fallback)
				state.receivedContainers[s.cfg.Fallback]++
				state.redirects[name]++
			} else {
				state.receivedVehicles[name]++
				remaining[name]--
			}
		}
		state.pityCounter[name] = ps.Count

		drop, err := gacha.Draw(v.ContainerProbability, rng)
		if err != nil {
			return nil, fmt.Errorf("variant %s: container roll: %w", name, err)
		}
		if drop {
			r := s.routes[name]
			i, err := gacha.WeightedChoice(r.weights, rng)
			if err != nil {
				return nil, fmt.Errorf("variant %s: routing: %w", name, err)
			}
			extra := r.names[i]
			queue = append(queue, extra)
			state.receivedContainers[extra]++
		}

		state.openedContainers[name]++
		state.openings++

		if stop(state) {
			return state, nil
		}
		if len(queue) == 0 {
			queue = append(queue, s.cfg.Base)
		}
	}
}

func cloneConfig(c Config) Config {
	out := c
	out.Variants = make(map[string]Variant, len(c.Variants))
	for k, v := range c.Variants {
		if v.Soft != nil {
			soft := *v.Soft
			v.Soft = &soft
		}
		out.Variants[k] = v
	}
	out.Routing = make(map[string]map[string]float64, len(c.Routing))
	for k, dist := range c.Routing {
		out.Routing[k] = maps.Clone(dist)
	}
	out.PreOwned = maps.Clone(c.PreOwned)
	return out
}
