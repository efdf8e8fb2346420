package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/transitcatalogue/internal/catalogue"
	"github.com/passbi/transitcatalogue/internal/geo"
)

func TestNewRejectsInvalidParameters(t *testing.T) {
	cat := catalogue.New()

	_, err := New(cat, RoutingParameters{BusWaitTime: 1, BusVelocity: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRoutingParameters)

	_, err = New(cat, RoutingParameters{BusWaitTime: -1, BusVelocity: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRoutingParameters)
}

// S5: route with transfer penalty.
func TestRouteWithWaitAndRide(t *testing.T) {
	cat := catalogue.New()
	cat.UpsertStop("X", geo.Coordinates{Lat: 0, Lon: 0})
	cat.UpsertStop("Y", geo.Coordinates{Lat: 0, Lon: 0.01})
	cat.SetDistance("X", "Y", 1000)
	require.NoError(t, cat.AddBus("1", []string{"X", "Y"}, true))

	tr, err := New(cat, RoutingParameters{BusWaitTime: 6, BusVelocity: 40})
	require.NoError(t, err)

	itin, ok := tr.Route("X", "Y")
	require.True(t, ok)
	assert.InDelta(t, 7.5, itin.TotalTime, 1e-6)

	require.Len(t, itin.Items, 2)
	wait, ok := itin.Items[0].(WaitStep)
	require.True(t, ok)
	assert.Equal(t, "X", wait.StopName)
	assert.InDelta(t, 6.0, wait.Time, 1e-9)

	ride, ok := itin.Items[1].(RideStep)
	require.True(t, ok)
	assert.Equal(t, "1", ride.Bus)
	assert.Equal(t, 1, ride.SpanCount)
	assert.InDelta(t, 1.5, ride.Time, 1e-6)
}

func TestRouteSameStopIsZeroWithNoSteps(t *testing.T) {
	cat := catalogue.New()
	cat.UpsertStop("X", geo.Coordinates{})
	tr, err := New(cat, RoutingParameters{BusWaitTime: 5, BusVelocity: 10})
	require.NoError(t, err)

	itin, ok := tr.Route("X", "X")
	require.True(t, ok)
	assert.Equal(t, 0.0, itin.TotalTime)
	assert.Empty(t, itin.Items)
}

func TestRouteUnknownStopReturnsNotOk(t *testing.T) {
	cat := catalogue.New()
	cat.UpsertStop("X", geo.Coordinates{})
	tr, err := New(cat, RoutingParameters{BusWaitTime: 5, BusVelocity: 10})
	require.NoError(t, err)

	_, ok := tr.Route("X", "nowhere")
	assert.False(t, ok)
}

func TestRouteUnreachableReturnsNotOk(t *testing.T) {
	cat := catalogue.New()
	cat.UpsertStop("X", geo.Coordinates{})
	cat.UpsertStop("Y", geo.Coordinates{})
	tr, err := New(cat, RoutingParameters{BusWaitTime: 5, BusVelocity: 10})
	require.NoError(t, err)

	_, ok := tr.Route("X", "Y")
	assert.False(t, ok)
}

func TestRouteOptimalityAgainstBruteForce(t *testing.T) {
	cat := catalogue.New()
	cat.UpsertStop("A", geo.Coordinates{})
	cat.UpsertStop("B", geo.Coordinates{})
	cat.UpsertStop("C", geo.Coordinates{})
	cat.SetDistance("A", "B", 6000)
	cat.SetDistance("B", "C", 6000)
	cat.SetDistance("A", "C", 6000)
	require.NoError(t, cat.AddBus("slow", []string{"A", "B", "C"}, true))
	require.NoError(t, cat.AddBus("direct", []string{"A", "C"}, true))

	tr, err := New(cat, RoutingParameters{BusWaitTime: 1, BusVelocity: 60})
	require.NoError(t, err)

	itin, ok := tr.Route("A", "C")
	require.True(t, ok)
	// Every candidate opens with the 1-minute wait at A (1000m/min):
	// direct bus board(A) -> arrive(C), 6000m: 1 + 6 = 7 minutes; slow
	// bus riding through B, 12000m: 1 + 12 = 13; changing buses at B:
	// 1 + 6 + 1 + 6 = 14. The direct bus is strictly cheapest.
	assert.InDelta(t, 7.0, itin.TotalTime, 1e-9)
}
