package catalogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/transitcatalogue/internal/geo"
)

func TestDistanceSymmetryDefault(t *testing.T) {
	c := New()
	c.UpsertStop("A", geo.Coordinates{})
	c.UpsertStop("B", geo.Coordinates{})

	c.SetDistance("A", "B", 100)

	ab, err := c.Distance("A", "B")
	require.NoError(t, err)
	ba, err := c.Distance("B", "A")
	require.NoError(t, err)
	assert.Equal(t, 100.0, ab)
	assert.Equal(t, 100.0, ba, "reverse direction should default to the same value")

	c.SetDistance("B", "A", 250)

	ba, err = c.Distance("B", "A")
	require.NoError(t, err)
	assert.Equal(t, 250.0, ba, "explicit reverse write takes precedence")

	ab, err = c.Distance("A", "B")
	require.NoError(t, err)
	assert.Equal(t, 100.0, ab, "explicit reverse write must not touch the forward direction")
}

func TestSetDistanceCreatesPlaceholders(t *testing.T) {
	c := New()
	c.SetDistance("X", "Y", 50)

	_, ok := c.FindStop("X")
	assert.True(t, ok)
	_, ok = c.FindStop("Y")
	assert.True(t, ok)

	x, _ := c.FindStop("X")
	assert.False(t, x.HasCoords)
}

func TestUpsertStopIdempotentAndFillsPlaceholder(t *testing.T) {
	c := New()
	c.SetDistance("X", "Y", 50)

	c.UpsertStop("X", geo.Coordinates{Lat: 1, Lon: 2})
	x, ok := c.FindStop("X")
	require.True(t, ok)
	assert.True(t, x.HasCoords)
	assert.Equal(t, geo.Coordinates{Lat: 1, Lon: 2}, x.Coords)

	c.UpsertStop("X", geo.Coordinates{Lat: 1, Lon: 2})
	x, _ = c.FindStop("X")
	assert.Equal(t, geo.Coordinates{Lat: 1, Lon: 2}, x.Coords)
}

func TestAddBusUnknownStopFails(t *testing.T) {
	c := New()
	c.UpsertStop("A", geo.Coordinates{})

	err := c.AddBus("1", []string{"A", "B"}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStop)
}

// S1: roundtrip bus statistics.
func TestBusInfoRoundtrip(t *testing.T) {
	c := New()
	c.UpsertStop("Flower", geo.Coordinates{Lat: 2, Lon: 2})
	c.UpsertStop("Honey", geo.Coordinates{Lat: 2, Lon: 2})
	c.UpsertStop("Tree", geo.Coordinates{Lat: 2, Lon: 3})
	c.SetDistance("Flower", "Honey", 2)
	c.SetDistance("Honey", "Tree", 4)

	require.NoError(t, c.AddBus("001", []string{"Flower", "Honey", "Tree"}, true))

	info, err := c.BusInfo("001")
	require.NoError(t, err)
	assert.Equal(t, 3, info.StopsCount)
	assert.Equal(t, 3, info.UniqueStopsCount)
	assert.Equal(t, 6.0, info.RouteLength)

	honey, _ := c.FindStop("Honey")
	tree, _ := c.FindStop("Tree")
	expectedCurvature := 6.0 / geo.GreatCircleMeters(honey.Coords, tree.Coords)
	assert.InDelta(t, expectedCurvature, info.Curvature, 1e-9)
}

// S2: non-roundtrip doubling.
func TestBusInfoNonRoundtripDoubling(t *testing.T) {
	c := New()
	c.UpsertStop("A", geo.Coordinates{Lat: 55, Lon: 55})
	c.UpsertStop("B", geo.Coordinates{Lat: 50, Lon: 60})
	c.UpsertStop("C", geo.Coordinates{Lat: 60, Lon: 50})
	c.SetDistance("A", "B", 1000)
	c.SetDistance("B", "C", 1000)

	require.NoError(t, c.AddBus("002", []string{"A", "B", "C"}, false))

	info, err := c.BusInfo("002")
	require.NoError(t, err)
	assert.Equal(t, 5, info.StopsCount)
	assert.Equal(t, 3, info.UniqueStopsCount)
}

// S3: stop info ordering.
func TestStopInfoLexicographicOrder(t *testing.T) {
	c := New()
	for _, name := range []string{"Flower", "Tree", "Honey"} {
		c.UpsertStop(name, geo.Coordinates{})
	}
	c.SetDistance("Flower", "Tree", 10)
	c.SetDistance("Tree", "Honey", 10)
	c.SetDistance("Flower", "Honey", 20)

	require.NoError(t, c.AddBus("002", []string{"Flower", "Tree", "Honey"}, true))
	require.NoError(t, c.AddBus("001", []string{"Flower", "Tree", "Honey"}, true))

	info, ok := c.StopInfo("Flower")
	require.True(t, ok)
	assert.Equal(t, []string{"001", "002"}, info.Buses)
}

// S4: not-found.
func TestBusInfoNotFound(t *testing.T) {
	c := New()
	_, err := c.BusInfo("751")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownBus)
}

func TestStopInfoUnknownStop(t *testing.T) {
	c := New()
	_, ok := c.StopInfo("nowhere")
	assert.False(t, ok)
}

func TestNonEmptyProjectionsExcludeUntouchedStops(t *testing.T) {
	c := New()
	c.UpsertStop("Lonely", geo.Coordinates{Lat: 1, Lon: 1})
	c.UpsertStop("A", geo.Coordinates{Lat: 2, Lon: 2})
	c.UpsertStop("B", geo.Coordinates{Lat: 3, Lon: 3})
	c.SetDistance("A", "B", 10)
	require.NoError(t, c.AddBus("1", []string{"A", "B"}, true))

	names := make([]string, 0)
	for _, s := range c.NonEmptyStops() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"A", "B"}, names)
}
