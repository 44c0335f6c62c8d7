// resolve.go
package event

import (
	"fmt"
	"maps"
	"math"

	"github.com/xtding233/wotsim/internal/gacha"
	"github.com/xtding233/wotsim/internal/montecarlo"
	"github.com/xtding233/wotsim/internal/pricing"
)

// Overrides carries command-line values that win over the files.
type Overrides struct {
	Trials        *int
	Workers       *int
	Seed          *uint64
	MaxIterations *int
	Target        *string
	Metric        *string
	Fallback      *string
	PreOwned      map[string]int
}

type Resolver interface {
	// Returns merged RawConfig and normalized Params
	Resolve(event string, o Overrides) (RawConfig, Params, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → event → overrides, validates the result and
// normalizes it into Params.
func (l *Loader) Resolve(event string, o Overrides) (RawConfig, Params, error) {
	raw, err := l.LoadMerged(event)
	if err != nil {
		return RawConfig{}, Params{}, err
	}
	raw = applyOverrides(raw, o)
	if err := ValidateRaw(raw); err != nil {
		return raw, Params{}, fmt.Errorf("event %s: %w", event, err)
	}
	p, err := Normalize(raw)
	if err != nil {
		return raw, Params{}, fmt.Errorf("event %s: %w", event, err)
	}
	p.Event = event
	return raw, p, nil
}

// applyOverrides returns a copy of raw with o layered on top. The loader's
// cached maps are never written.
func applyOverrides(raw RawConfig, o Overrides) RawConfig {
	over := RawConfig{Run: &RunConfig{
		Trials:        o.Trials,
		Workers:       o.Workers,
		Seed:          o.Seed,
		MaxIterations: o.MaxIterations,
	}}
	if o.Target != nil {
		over.Target = *o.Target
	}
	if o.Metric != nil {
		over.Metric = *o.Metric
	}
	if o.Fallback != nil {
		over.Fallback = *o.Fallback
	}
	if len(o.PreOwned) > 0 {
		over.PreOwned = maps.Clone(o.PreOwned)
	}
	return mergeRaw(raw, over)
}

// Normalize turns a validated RawConfig into runnable Params, filling
// defaults and checking the simulation config.
func Normalize(raw RawConfig) (Params, error) {
	cfg := montecarlo.Config{
		Variants: make(map[string]montecarlo.Variant, len(raw.Variants)),
		Routing:  make(map[string]map[string]float64, len(raw.Routing)),
		PreOwned: maps.Clone(raw.PreOwned),
		Base:     raw.Base,
		Fallback: raw.Fallback,
	}
	if cfg.Base == "" {
		cfg.Base = DefaultBase
	}
	if cfg.Fallback == "" {
		cfg.Fallback = DefaultFallback
	}
	for name, rv := range raw.Variants {
		cfg.Variants[name] = normalizeVariant(name, rv)
	}
	for src, dist := range raw.Routing {
		cfg.Routing[src] = maps.Clone(dist)
	}

	p := Params{Version: raw.Version, Trials: DefaultTrials, Seed: gacha.RandomSeed()}
	if r := raw.Run; r != nil {
		if r.Trials != nil {
			p.Trials = *r.Trials
		}
		if r.Workers != nil {
			p.Workers = *r.Workers
		}
		if r.MaxIterations != nil {
			cfg.MaxIterations = *r.MaxIterations
		}
		if r.Seed != nil {
			p.Seed = *r.Seed
		}
	}

	if err := cfg.Validate(); err != nil {
		return Params{}, err
	}
	p.Sim = cfg

	target, err := ParseTarget(raw.Target)
	if err != nil {
		return Params{}, err
	}
	if _, ok := cfg.Variants[target.Variant]; !ok {
		return Params{}, fmt.Errorf("target %s: unknown variant %q", target, target.Variant)
	}
	p.Target = target

	metric := MetricSpec{Kind: MetricPurchased, Variant: cfg.Base}
	if raw.Metric != "" {
		if metric, err = ParseMetric(raw.Metric); err != nil {
			return Params{}, err
		}
	}
	if _, ok := cfg.Variants[metric.Variant]; !ok {
		return Params{}, fmt.Errorf("metric %s: unknown variant %q", metric, metric.Variant)
	}
	p.Metric = metric

	if raw.Store != nil {
		p.Store, p.FirstTime = normalizeStore(*raw.Store)
	}
	return p, nil
}

func normalizeVariant(name string, rv RawVariant) montecarlo.Variant {
	v := montecarlo.Variant{Name: name}
	if rv.VehicleProbability != nil {
		v.VehicleProbability = *rv.VehicleProbability
	}
	if rv.PossibleVehicles != nil {
		v.PossibleVehicles = *rv.PossibleVehicles
	}
	if rv.ContainerProbability != nil {
		v.ContainerProbability = *rv.ContainerProbability
	}
	if rv.PityThreshold != nil {
		v.PityThreshold = *rv.PityThreshold
	}
	if s := rv.Soft; s != nil && s.Target != nil {
		startAt := 0
		if s.StartAt != nil {
			startAt = *s.StartAt
		} else if s.StartPct != nil {
			startAt = int(math.Ceil(*s.StartPct * float64(v.PityThreshold)))
			if startAt >= v.PityThreshold-1 {
				startAt = v.PityThreshold - 2
			}
		}
		v.Soft = &gacha.SoftPityConfig{
			StartAt:    startAt,
			TargetProb: *s.Target,
			Easing:     gacha.Easing(s.Easing),
		}
	}
	return v
}

func normalizeStore(s StoreConfig) (*pricing.Catalog, pricing.FirstTimeState) {
	cat := &pricing.Catalog{Currency: s.Currency, TaxRate: s.TaxRate}
	for _, p := range s.Packs {
		cat.Packs = append(cat.Packs, pricing.Pack{
			ID:              p.ID,
			Name:            p.Name,
			Containers:      p.Containers,
			BonusContainers: p.BonusContainers,
			FirstTimeX2:     p.FirstTimeX2,
			PriceCents:      p.PriceCents,
		})
	}
	first := pricing.FirstTimeState{}
	for _, id := range s.FirstTime {
		first[id] = true
	}
	return cat, first
}
