package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/wotsim/internal/event"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		in   string
		want event.Target
	}{
		{"all:prime", event.Target{Kind: event.TargetAll, Variant: "prime"}},
		{" vehicles:alpha:2 ", event.Target{Kind: event.TargetVehicles, Variant: "alpha", Count: 2}},
		{"purchased:proto:100", event.Target{Kind: event.TargetPurchased, Variant: "proto", Count: 100}},
		{"opened:prime:1", event.Target{Kind: event.TargetOpened, Variant: "prime", Count: 1}},
	}
	for _, tc := range cases {
		got, err := event.ParseTarget(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseTarget_Errors(t *testing.T) {
	for _, in := range []string{"", "all", "all:", "vehicles:alpha", "vehicles:alpha:0", "vehicles:alpha:x", "bought:alpha:1", "opened::3", "a:b:c:d"} {
		_, err := event.ParseTarget(in)
		assert.Error(t, err, in)
	}
}

func TestTargetString_RoundTrips(t *testing.T) {
	for _, in := range []string{"all:prime", "opened:proto:7"} {
		tg, err := event.ParseTarget(in)
		require.NoError(t, err)
		assert.Equal(t, in, tg.String())
	}
}

func TestParseMetric(t *testing.T) {
	m, err := event.ParseMetric("received:prime")
	require.NoError(t, err)
	assert.Equal(t, event.MetricSpec{Kind: event.MetricReceived, Variant: "prime"}, m)
	assert.Equal(t, "received:prime", m.String())

	for _, in := range []string{"", "purchased", "purchased:", "cost:proto"} {
		_, err := event.ParseMetric(in)
		assert.Error(t, err, in)
	}
}
