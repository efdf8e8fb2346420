package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreatCircleMeters(t *testing.T) {
	t.Run("equal coordinates return zero", func(t *testing.T) {
		c := Coordinates{Lat: 55.611087, Lon: 37.20829}
		assert.Equal(t, 0.0, GreatCircleMeters(c, c))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Coordinates{Lat: 55.611087, Lon: 37.20829}
		b := Coordinates{Lat: 55.595884, Lon: 37.209755}
		assert.InDelta(t, GreatCircleMeters(a, b), GreatCircleMeters(b, a), 1e-9)
	})

	t.Run("known distance within tolerance", func(t *testing.T) {
		// Moscow stops roughly 2km apart by an earlier distillation of the
		// same fixture family used across the transit-catalogue corpus.
		a := Coordinates{Lat: 55.611087, Lon: 37.20829}
		b := Coordinates{Lat: 55.595884, Lon: 37.209755}
		d := GreatCircleMeters(a, b)
		assert.InDelta(t, 1693, d, 50)
	})
}
