package montecarlo_test

import (
	"github.com/xtding233/wotsim/internal/montecarlo"
)

func pandoraConfig() montecarlo.Config {
	return montecarlo.Config{
		Variants: map[string]montecarlo.Variant{
			"proto": {Name: "proto", VehicleProbability: 0.02, PossibleVehicles: 10, ContainerProbability: 0.2, PityThreshold: 50},
			"alpha": {Name: "alpha", VehicleProbability: 0.05, PossibleVehicles: 5, ContainerProbability: 0.2, PityThreshold: 40},
			"prime": {Name: "prime", VehicleProbability: 0.1, PossibleVehicles: 3, ContainerProbability: 0.2, PityThreshold: 20},
		},
		Routing: map[string]map[string]float64{
			"proto": {"proto": 0.23, "alpha": 0.75, "prime": 0.02},
			"alpha": {"proto": 0.02, "alpha": 0.23, "prime": 0.75},
			"prime": {"proto": 0.75, "alpha": 0.23, "prime": 0.02},
		},
		PreOwned: map[string]int{"proto": 0, "alpha": 0},
		Base:     "proto",
		Fallback: "prime",
	}
}

// inert is a variant that never rewards and never drops.
func inert(name string) montecarlo.Variant {
	return montecarlo.Variant{Name: name, PossibleVehicles: 1, PityThreshold: 1 << 30}
}

// openedOrder wraps stop and records which variant each opening belonged to.
func openedOrder(variants []string, stop montecarlo.Predicate, order *[]string) montecarlo.Predicate {
	last := map[string]int{}
	return func(s *montecarlo.State) bool {
		for _, v := range variants {
			if n := s.OpenedContainers(v); n != last[v] {
				last[v] = n
				*order = append(*order, v)
			}
		}
		return stop(s)
	}
}
