package event

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrUnknownEvent = errors.New("unknown event")

// Paths helper for default/event files.
type Paths struct {
	BaseDir string // base directory, e.g., ./configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "events", "default.yaml")
}

// EventPath resolves an event name to its file. A name ending in .yaml or
// .yml is taken as a path of its own.
func (p Paths) EventPath(event string) string {
	if strings.HasSuffix(event, ".yaml") || strings.HasSuffix(event, ".yml") {
		return event
	}
	return filepath.Join(p.BaseDir, "events", event+".yaml")
}

// Loader reads YAML configs and merges default → event.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: event name
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads the event file layered over the optional default file.
// It returns the merged RawConfig (without validation).
func (l *Loader) LoadMerged(event string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[event]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, _, err := readYAML(l.paths.DefaultPath()) // default file is optional
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	evCfg, found, err := readYAML(l.paths.EventPath(event))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read event %s: %w", event, err)
	}
	if !found {
		return RawConfig{}, fmt.Errorf("%w: %s (looked in %s)", ErrUnknownEvent, event, l.paths.EventPath(event))
	}

	merged := mergeRaw(defCfg, evCfg)
	if merged.Name == "" {
		merged.Name = event
	}

	l.mu.Lock()
	l.cache[event] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after the watcher detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return a zero
// config, found=false and no error.
func readYAML(path string) (RawConfig, bool, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, false, nil
		}
		return RawConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, true, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, true, nil
}

// mergeRaw layers b over a: set fields of b win. Variants merge per field,
// preowned counts per key. A routing distribution or a store is replaced
// whole, since mixing two distributions would break their sums.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Name != "" {
		out.Name = b.Name
	}
	if b.Base != "" {
		out.Base = b.Base
	}
	if b.Fallback != "" {
		out.Fallback = b.Fallback
	}
	if b.Target != "" {
		out.Target = b.Target
	}
	if b.Metric != "" {
		out.Metric = b.Metric
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// variants
	if len(b.Variants) > 0 {
		vs := make(map[string]RawVariant, len(a.Variants)+len(b.Variants))
		maps.Copy(vs, a.Variants)
		for name, bv := range b.Variants {
			vs[name] = mergeVariant(vs[name], bv)
		}
		out.Variants = vs
	}

	// routing
	if len(b.Routing) > 0 {
		rt := make(map[string]map[string]float64, len(a.Routing)+len(b.Routing))
		maps.Copy(rt, a.Routing)
		for src, dist := range b.Routing {
			rt[src] = maps.Clone(dist)
		}
		out.Routing = rt
	}

	// preowned
	if len(b.PreOwned) > 0 {
		po := make(map[string]int, len(a.PreOwned)+len(b.PreOwned))
		maps.Copy(po, a.PreOwned)
		maps.Copy(po, b.PreOwned)
		out.PreOwned = po
	}

	// run
	switch {
	case out.Run == nil && b.Run != nil:
		c := *b.Run
		out.Run = &c
	case out.Run != nil && b.Run != nil:
		c := *out.Run
		if b.Run.Trials != nil {
			c.Trials = b.Run.Trials
		}
		if b.Run.Workers != nil {
			c.Workers = b.Run.Workers
		}
		if b.Run.Seed != nil {
			c.Seed = b.Run.Seed
		}
		if b.Run.MaxIterations != nil {
			c.MaxIterations = b.Run.MaxIterations
		}
		out.Run = &c
	}

	// store
	if b.Store != nil {
		c := *b.Store
		c.Packs = append([]PackConfig(nil), b.Store.Packs...)
		out.Store = &c
	}

	return out
}

func mergeVariant(a, b RawVariant) RawVariant {
	out := a
	if b.VehicleProbability != nil {
		out.VehicleProbability = b.VehicleProbability
	}
	if b.PossibleVehicles != nil {
		out.PossibleVehicles = b.PossibleVehicles
	}
	if b.ContainerProbability != nil {
		out.ContainerProbability = b.ContainerProbability
	}
	if b.PityThreshold != nil {
		out.PityThreshold = b.PityThreshold
	}
	switch {
	case out.Soft == nil && b.Soft != nil:
		c := *b.Soft
		out.Soft = &c
	case out.Soft != nil && b.Soft != nil:
		c := *out.Soft
		if b.Soft.StartAt != nil {
			c.StartAt = b.Soft.StartAt
		}
		if b.Soft.StartPct != nil {
			c.StartPct = b.Soft.StartPct
		}
		if b.Soft.Target != nil {
			c.Target = b.Soft.Target
		}
		if b.Soft.Easing != "" {
			c.Easing = b.Soft.Easing
		}
		out.Soft = &c
	}
	return out
}
