// types.go
package event

import (
	"github.com/xtding233/wotsim/internal/montecarlo"
	"github.com/xtding233/wotsim/internal/pricing"
)

// RawConfig is one event file as loaded from YAML. Pointer fields tell an
// unset value apart from an explicit zero, so files can be layered.
type RawConfig struct {
	Version  string                        `yaml:"version"`
	Name     string                        `yaml:"name,omitempty"`
	Base     string                        `yaml:"base,omitempty"`
	Fallback string                        `yaml:"fallback,omitempty"`
	Variants map[string]RawVariant         `yaml:"variants,omitempty"`
	Routing  map[string]map[string]float64 `yaml:"routing,omitempty"`
	PreOwned map[string]int                `yaml:"preowned,omitempty"`
	Target   string                        `yaml:"target,omitempty"` // e.g. "all:prime", "purchased:proto:100"
	Metric   string                        `yaml:"metric,omitempty"` // e.g. "purchased:proto"
	Run      *RunConfig                    `yaml:"run,omitempty"`
	Store    *StoreConfig                  `yaml:"store,omitempty"`
	Notes    string                        `yaml:"notes,omitempty"`
}

type RawVariant struct {
	VehicleProbability   *float64 `yaml:"vehicle_probability"`
	PossibleVehicles     *int     `yaml:"possible_vehicles"`
	ContainerProbability *float64 `yaml:"container_probability"`
	PityThreshold        *int     `yaml:"pity_threshold"`
	Soft                 *SoftCfg `yaml:"soft,omitempty"`
}

type SoftCfg struct {
	StartAt  *int     `yaml:"start_at,omitempty"`
	StartPct *float64 `yaml:"start_pct,omitempty"` // fraction of pity_threshold; unused if start_at is set
	Target   *float64 `yaml:"target,omitempty"`
	Easing   string   `yaml:"easing,omitempty"`
}

type RunConfig struct {
	Trials        *int    `yaml:"trials,omitempty"`
	Workers       *int    `yaml:"workers,omitempty"` // 0 = all CPUs
	Seed          *uint64 `yaml:"seed,omitempty"`
	MaxIterations *int    `yaml:"max_iterations,omitempty"`
}

type StoreConfig struct {
	Currency string       `yaml:"currency"`
	TaxRate  float64      `yaml:"tax_rate,omitempty"`
	Packs    []PackConfig `yaml:"packs"`
	// FirstTime lists pack ids whose first-purchase x2 is still available.
	FirstTime []string `yaml:"first_time,omitempty"`
}

type PackConfig struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Containers      int    `yaml:"containers"`
	BonusContainers int    `yaml:"bonus_containers,omitempty"`
	FirstTimeX2     bool   `yaml:"first_time_x2,omitempty"`
	PriceCents      int    `yaml:"price_cents"`
}

// Params is a fully resolved, validated event ready to simulate.
type Params struct {
	Event   string
	Version string // effective config version for tracing

	Sim    montecarlo.Config
	Target Target
	Metric MetricSpec

	Trials  int
	Workers int
	Seed    uint64

	Store     *pricing.Catalog
	FirstTime pricing.FirstTimeState
}

// Defaults applied when neither the default file nor the event sets a value.
const (
	DefaultBase     = "proto"
	DefaultFallback = "prime"
	DefaultTrials   = 10_000
)
