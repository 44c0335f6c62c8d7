package event

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrConfigValidation = errors.New("config validation failed")

// ValidateRaw checks that a merged RawConfig is complete enough to build a
// simulation. Cross-variant rules (routing sums, unknown names) are checked
// again by montecarlo.Config.Validate once the config is normalized.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if len(cfg.Variants) == 0 {
		errs = append(errs, "variants must define at least one variant")
	}
	names := make([]string, 0, len(cfg.Variants))
	for name := range cfg.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := cfg.Variants[name]
		if v.VehicleProbability == nil {
			errs = append(errs, fmt.Sprintf("variants.%s.vehicle_probability is required", name))
		}
		if v.PossibleVehicles == nil {
			errs = append(errs, fmt.Sprintf("variants.%s.possible_vehicles is required", name))
		}
		if v.ContainerProbability == nil {
			errs = append(errs, fmt.Sprintf("variants.%s.container_probability is required", name))
		}
		if v.PityThreshold == nil {
			errs = append(errs, fmt.Sprintf("variants.%s.pity_threshold is required", name))
		}
		if v.Soft != nil {
			if v.Soft.Target == nil {
				errs = append(errs, fmt.Sprintf("variants.%s.soft.target is required", name))
			}
			if v.Soft.StartAt == nil && v.Soft.StartPct == nil {
				errs = append(errs, fmt.Sprintf("variants.%s.soft.start_at or start_pct is required", name))
			}
			if v.Soft.StartPct != nil && (*v.Soft.StartPct < 0 || *v.Soft.StartPct > 1) {
				errs = append(errs, fmt.Sprintf("variants.%s.soft.start_pct must be in [0,1]", name))
			}
		}
	}

	// target / metric
	if cfg.Target == "" {
		errs = append(errs, "target is required")
	} else if _, err := ParseTarget(cfg.Target); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.Metric != "" {
		if _, err := ParseMetric(cfg.Metric); err != nil {
			errs = append(errs, err.Error())
		}
	}

	// run
	if cfg.Run != nil {
		if cfg.Run.Trials != nil && *cfg.Run.Trials < 0 {
			errs = append(errs, "run.trials must be >= 0")
		}
		if cfg.Run.Workers != nil && *cfg.Run.Workers < 0 {
			errs = append(errs, "run.workers must be >= 0 (0 means all CPUs)")
		}
		if cfg.Run.MaxIterations != nil && *cfg.Run.MaxIterations < 0 {
			errs = append(errs, "run.max_iterations must be >= 0 (0 means default)")
		}
	}

	// store (optional)
	if cfg.Store != nil {
		if cfg.Store.TaxRate < 0 {
			errs = append(errs, "store.tax_rate must be >= 0")
		}
		seen := map[string]bool{}
		for i, p := range cfg.Store.Packs {
			switch {
			case p.ID == "":
				errs = append(errs, fmt.Sprintf("store.packs[%d].id is required", i))
			case seen[p.ID]:
				errs = append(errs, fmt.Sprintf("store.packs[%d].id %q is duplicated", i, p.ID))
			}
			seen[p.ID] = true
			if p.Containers < 0 || p.BonusContainers < 0 || p.Containers+p.BonusContainers == 0 {
				errs = append(errs, fmt.Sprintf("store.packs[%d] must grant at least one container", i))
			}
			if p.PriceCents < 0 {
				errs = append(errs, fmt.Sprintf("store.packs[%d].price_cents must be >= 0", i))
			}
		}
		for _, id := range cfg.Store.FirstTime {
			if !seen[id] {
				errs = append(errs, fmt.Sprintf("store.first_time references unknown pack %q", id))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigValidation, strings.Join(errs, "; "))
	}
	return nil
}
