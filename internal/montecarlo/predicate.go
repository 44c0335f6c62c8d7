package montecarlo

// Predicate decides whether a trial is finished. It is evaluated after
// every opening and must only read the state.
type Predicate func(*State) bool

// VehiclesReceived stops once n vehicles of a variant have been granted.
func VehiclesReceived(variant string, n int) Predicate {
	return func(s *State) bool {
		return s.ReceivedVehicles(variant) >= n
	}
}

// PurchasedAtLeast stops once n containers of a variant were opened beyond
// the ones received for free.
func PurchasedAtLeast(variant string, n int) Predicate {
	return func(s *State) bool {
		return s.PurchasedContainers(variant) >= n
	}
}

// OpenedAtLeast stops once n containers of a variant were opened.
func OpenedAtLeast(variant string, n int) Predicate {
	return func(s *State) bool {
		return s.OpenedContainers(variant) >= n
	}
}

// AllOf holds when every predicate holds. An empty AllOf always holds.
func AllOf(ps ...Predicate) Predicate {
	return func(s *State) bool {
		for _, p := range ps {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

// AnyOf holds when at least one predicate holds.
func AnyOf(ps ...Predicate) Predicate {
	return func(s *State) bool {
		for _, p := range ps {
			if p(s) {
				return true
			}
		}
		return false
	}
}
