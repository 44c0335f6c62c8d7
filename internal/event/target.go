package event

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xtding233/wotsim/internal/montecarlo"
)

// Target kinds.
const (
	TargetAll       = "all"       // all:<variant>, every vehicle still obtainable
	TargetVehicles  = "vehicles"  // vehicles:<variant>:<n>
	TargetPurchased = "purchased" // purchased:<variant>:<n>
	TargetOpened    = "opened"    // opened:<variant>:<n>
)

// Metric kinds.
const (
	MetricPurchased = "purchased"
	MetricOpened    = "opened"
	MetricVehicles  = "vehicles"
	MetricReceived  = "received"
)

// Target is a parsed stopping condition.
type Target struct {
	Kind    string
	Variant string
	Count   int
}

func (t Target) String() string {
	if t.Kind == TargetAll {
		return t.Kind + ":" + t.Variant
	}
	return fmt.Sprintf("%s:%s:%d", t.Kind, t.Variant, t.Count)
}

// ParseTarget parses "all:<variant>" or "<kind>:<variant>:<n>".
func ParseTarget(spec string) (Target, error) {
	parts := strings.Split(strings.TrimSpace(spec), ":")
	switch {
	case len(parts) == 2 && parts[0] == TargetAll && parts[1] != "":
		return Target{Kind: TargetAll, Variant: parts[1]}, nil
	case len(parts) == 3:
		switch parts[0] {
		case TargetVehicles, TargetPurchased, TargetOpened:
		default:
			return Target{}, fmt.Errorf("target %q: unknown kind %q", spec, parts[0])
		}
		if parts[1] == "" {
			return Target{}, fmt.Errorf("target %q: variant is required", spec)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return Target{}, fmt.Errorf("target %q: count must be a positive integer", spec)
		}
		return Target{Kind: parts[0], Variant: parts[1], Count: n}, nil
	}
	return Target{}, fmt.Errorf("target %q: want all:<variant> or <kind>:<variant>:<n>", spec)
}

// Predicate binds the target to cfg. "all" resolves to the vehicles left
// after pre-owned ones, which may be zero.
func (t Target) Predicate(cfg montecarlo.Config) montecarlo.Predicate {
	switch t.Kind {
	case TargetAll:
		return montecarlo.VehiclesReceived(t.Variant, cfg.Remaining(t.Variant))
	case TargetVehicles:
		return montecarlo.VehiclesReceived(t.Variant, t.Count)
	case TargetPurchased:
		return montecarlo.PurchasedAtLeast(t.Variant, t.Count)
	default:
		return montecarlo.OpenedAtLeast(t.Variant, t.Count)
	}
}

// MetricSpec is a parsed per-trial statistic.
type MetricSpec struct {
	Kind    string
	Variant string
}

func (m MetricSpec) String() string { return m.Kind + ":" + m.Variant }

// ParseMetric parses "<kind>:<variant>".
func ParseMetric(spec string) (MetricSpec, error) {
	kind, variant, ok := strings.Cut(strings.TrimSpace(spec), ":")
	if !ok || variant == "" {
		return MetricSpec{}, fmt.Errorf("metric %q: want <kind>:<variant>", spec)
	}
	switch kind {
	case MetricPurchased, MetricOpened, MetricVehicles, MetricReceived:
	default:
		return MetricSpec{}, fmt.Errorf("metric %q: unknown kind %q", spec, kind)
	}
	return MetricSpec{Kind: kind, Variant: variant}, nil
}

func (m MetricSpec) Metric() montecarlo.Metric {
	switch m.Kind {
	case MetricOpened:
		return montecarlo.OpenedContainers(m.Variant)
	case MetricVehicles:
		return montecarlo.ReceivedVehicles(m.Variant)
	case MetricReceived:
		return montecarlo.ReceivedContainers(m.Variant)
	default:
		return montecarlo.PurchasedContainers(m.Variant)
	}
}
