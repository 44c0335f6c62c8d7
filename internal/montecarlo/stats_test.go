package montecarlo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcStats(t *testing.T) {
	s := calcStats([]int{4, 1, 3, 2, 5})
	assert.Equal(t, 5, s.N)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.0, s.Var, 1e-12)
	assert.InDelta(t, 1.41421356, s.StdDev, 1e-8)
	assert.Equal(t, 1, s.Min)
	assert.Equal(t, 5, s.Max)
	assert.InDelta(t, 3.0, s.P50, 1e-12)
	assert.InDelta(t, 4.6, s.P90, 1e-12)
	assert.InDelta(t, 4.8, s.P95, 1e-12)
	// samples keep trial order
	assert.Equal(t, []int{4, 1, 3, 2, 5}, s.Samples)
}

func TestCalcStatsEdges(t *testing.T) {
	assert.Equal(t, Stats{}, calcStats(nil))

	one := calcStats([]int{7})
	assert.Equal(t, 7.0, one.P50)
	assert.Equal(t, 7.0, one.P99)
	assert.Equal(t, 0.0, one.StdDev)
}

func TestSummarizePurchased(t *testing.T) {
	a := newState()
	a.openedContainers["proto"] = 10
	a.receivedContainers["proto"] = 4
	b := newState()
	b.openedContainers["proto"] = 6

	s := Summarize([]*State{a, b}, PurchasedContainers("proto"))
	assert.Equal(t, []int{6, 6}, s.Samples)
	assert.Equal(t, 6.0, s.Mean)
	assert.Equal(t, []int{10, 6}, Samples([]*State{a, b}, OpenedContainers("proto")))
	assert.Equal(t, []int{0, 0}, Samples([]*State{a, b}, ReceivedVehicles("alpha")))
}
