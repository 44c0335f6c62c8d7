package montecarlo

// State is the mutable record of one trial. Every accessor returns zero
// for a variant that has not been touched yet.
type State struct {
	openedContainers   map[string]int
	receivedVehicles   map[string]int
	receivedContainers map[string]int
	pityCounter        map[string]int
	redirects          map[string]int
	openings           int
}

func newState() *State {
	return &State{
		openedContainers:   make(map[string]int),
		receivedVehicles:   make(map[string]int),
		receivedContainers: make(map[string]int),
		pityCounter:        make(map[string]int),
		redirects:          make(map[string]int),
	}
}

// OpenedContainers counts openings of a variant.
func (s *State) OpenedContainers(variant string) int { return s.openedContainers[variant] }

// ReceivedVehicles counts vehicles granted from a variant.
func (s *State) ReceivedVehicles(variant string) int { return s.receivedVehicles[variant] }

// ReceivedContainers counts containers of a variant obtained as side drops
// or as redirected rewards.
func (s *State) ReceivedContainers(variant string) int { return s.receivedContainers[variant] }

// PityCounter is the number of consecutive openings of a variant without a reward.
func (s *State) PityCounter(variant string) int { return s.pityCounter[variant] }

// Redirects counts rewards of a variant replaced by a fallback container
// because its vehicle pool was exhausted.
func (s *State) Redirects(variant string) int { return s.redirects[variant] }

// PurchasedContainers is openings of a variant not covered by received
// containers, i.e. the ones a player had to buy.
func (s *State) PurchasedContainers(variant string) int {
	return s.openedContainers[variant] - s.receivedContainers[variant]
}

// Openings is the total number of containers opened across all variants.
func (s *State) Openings() int { return s.openings }

// Snapshot is an exported copy of a State for encoding.
type Snapshot struct {
	OpenedContainers   map[string]int `json:"opened_containers" yaml:"opened_containers"`
	ReceivedVehicles   map[string]int `json:"received_vehicles" yaml:"received_vehicles"`
	ReceivedContainers map[string]int `json:"received_containers" yaml:"received_containers"`
	PityCounter        map[string]int `json:"pity_counter" yaml:"pity_counter"`
	Redirects          map[string]int `json:"redirects,omitempty" yaml:"redirects,omitempty"`
	Openings           int            `json:"openings" yaml:"openings"`
}

// Snapshot copies the counters so the result can outlive further mutation.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		OpenedContainers:   copyCounts(s.openedContainers),
		ReceivedVehicles:   copyCounts(s.receivedVehicles),
		ReceivedContainers: copyCounts(s.receivedContainers),
		PityCounter:        copyCounts(s.pityCounter),
		Redirects:          copyCounts(s.redirects),
		Openings:           s.openings,
	}
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
