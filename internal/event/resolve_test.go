package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/wotsim/internal/event"
	"github.com/xtding233/wotsim/internal/gacha"
	"github.com/xtding233/wotsim/internal/montecarlo"
)

func TestResolve_Pandora(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"default": defaultYAML, "pandora": pandoraYAML})
	_, p, err := event.NewLoader(dir).Resolve("pandora", event.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "pandora", p.Event)
	assert.Equal(t, "7", p.Version)
	assert.Equal(t, 200, p.Trials)
	assert.Equal(t, 2, p.Workers)
	assert.Equal(t, uint64(42), p.Seed)
	assert.Equal(t, 50000, p.Sim.MaxIterations)
	assert.Equal(t, "proto", p.Sim.Base)
	assert.Equal(t, "prime", p.Sim.Fallback)
	assert.Equal(t, montecarlo.Variant{Name: "alpha", VehicleProbability: 0.05, PossibleVehicles: 5, ContainerProbability: 0.2, PityThreshold: 40}, p.Sim.Variants["alpha"])
	assert.Equal(t, 1, p.Sim.PreOwned["proto"])
	assert.Equal(t, event.Target{Kind: event.TargetAll, Variant: "prime"}, p.Target)
	assert.Equal(t, event.MetricSpec{Kind: event.MetricPurchased, Variant: "proto"}, p.Metric)
	assert.Nil(t, p.Store)
}

func TestResolve_OverridesWin(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"default": defaultYAML, "pandora": pandoraYAML})
	l := event.NewLoader(dir)
	_, p, err := l.Resolve("pandora", event.Overrides{
		Trials:        ptr(5),
		Workers:       ptr(1),
		Seed:          ptr(uint64(9)),
		MaxIterations: ptr(10),
		Target:        ptr("vehicles:alpha:2"),
		Metric:        ptr("opened:alpha"),
		Fallback:      ptr("alpha"),
		PreOwned:      map[string]int{"alpha": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, p.Trials)
	assert.Equal(t, 1, p.Workers)
	assert.Equal(t, uint64(9), p.Seed)
	assert.Equal(t, 10, p.Sim.MaxIterations)
	assert.Equal(t, "alpha", p.Sim.Fallback)
	assert.Equal(t, map[string]int{"proto": 1, "alpha": 3}, p.Sim.PreOwned)
	assert.Equal(t, "vehicles:alpha:2", p.Target.String())
	assert.Equal(t, "opened:alpha", p.Metric.String())

	// overrides never leak into the cached file config
	raw, err := l.LoadMerged("pandora")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"proto": 1}, raw.PreOwned)
}

func TestResolve_DefaultsWithoutDefaultFile(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"pandora": pandoraYAML})
	_, p, err := event.NewLoader(dir).Resolve("pandora", event.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, event.DefaultBase, p.Sim.Base)
	assert.Equal(t, event.DefaultFallback, p.Sim.Fallback)
	assert.Equal(t, event.DefaultTrials, p.Trials)
	assert.Equal(t, 0, p.Sim.MaxIterations)
}

func TestResolve_RandomSeedWhenUnset(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"ev": `
target: opened:proto:1
variants:
  proto: {vehicle_probability: 1, possible_vehicles: 1, container_probability: 0, pity_threshold: 1}
fallback: proto
`})
	_, a, err := event.NewLoader(dir).Resolve("ev", event.Overrides{})
	require.NoError(t, err)
	_, b, err := event.NewLoader(dir).Resolve("ev", event.Overrides{})
	require.NoError(t, err)
	assert.NotEqual(t, a.Seed, b.Seed)
}

func TestResolve_InvalidRouting(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"bad": `
target: all:proto
fallback: proto
variants:
  proto: {vehicle_probability: 0.1, possible_vehicles: 2, container_probability: 0.5, pity_threshold: 5}
routing:
  proto: {proto: 0.4, beta: 0.4}
`})
	_, _, err := event.NewLoader(dir).Resolve("bad", event.Overrides{})
	require.ErrorIs(t, err, montecarlo.ErrInvalidConfig)
	assert.Contains(t, err.Error(), `unknown variant "beta"`)
	assert.Contains(t, err.Error(), "must sum to 1")
}

func TestResolve_UnknownTargetVariant(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"default": defaultYAML, "pandora": pandoraYAML})
	_, _, err := event.NewLoader(dir).Resolve("pandora", event.Overrides{Target: ptr("all:omega")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown variant "omega"`)
}

func TestResolve_SoftPityAndStore(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"ev": `
target: vehicles:proto:1
fallback: proto
variants:
  proto:
    vehicle_probability: 0.01
    possible_vehicles: 5
    container_probability: 0
    pity_threshold: 50
    soft: {start_pct: 0.8, target: 0.4, easing: easeOutQuad}
store:
  currency: EUR
  tax_rate: 0.2
  first_time: [p25]
  packs:
    - {id: p5, name: Five, containers: 5, price_cents: 500}
    - {id: p25, name: Twenty-five, containers: 25, first_time_x2: true, price_cents: 2000}
`})
	_, p, err := event.NewLoader(dir).Resolve("ev", event.Overrides{})
	require.NoError(t, err)

	soft := p.Sim.Variants["proto"].Soft
	require.NotNil(t, soft)
	assert.Equal(t, gacha.SoftPityConfig{StartAt: 40, TargetProb: 0.4, Easing: gacha.EaseOutQuad}, *soft)

	require.NotNil(t, p.Store)
	assert.Equal(t, "EUR", p.Store.Currency)
	assert.Equal(t, 0.2, p.Store.TaxRate)
	assert.Len(t, p.Store.Packs, 2)
	assert.True(t, p.FirstTime["p25"])
}

func TestTargetPredicate_AllUsesRemainingPool(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"default": defaultYAML, "pandora": pandoraYAML})
	_, p, err := event.NewLoader(dir).Resolve("pandora", event.Overrides{
		Target:   ptr("all:alpha"),
		PreOwned: map[string]int{"alpha": 4},
	})
	require.NoError(t, err)

	st, err := montecarlo.Run(p.Sim, p.Target.Predicate(p.Sim), gacha.NewSeededRNG(3))
	require.NoError(t, err)
	assert.Equal(t, 1, st.ReceivedVehicles("alpha"))
}
