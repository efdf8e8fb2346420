// Package render carries the RenderSettings value type and the
// map-rendering collaborator contract. Per the purpose and scope
// section, the geometric transforms that turn a catalogue projection
// into SVG are an external collaborator's job; this package validates
// settings the way the original transport-catalogue's json_reader does
// at construction time (svg.h's Color union, render_settings.h's
// padding bound) and defines the MapRenderer interface the collaborator
// satisfies. A minimal DefaultRenderer is provided so the CLI has a
// working implementation to call end to end, but it does not reproduce
// the original's polyline simplification or label layout geometry.
package render

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/passbi/transitcatalogue/internal/geo"
)

// ErrInvalidSettings is returned by Validate when a RenderSettings value
// violates one of the fatal constraints from the error handling design.
var ErrInvalidSettings = errors.New("invalid render settings")

// ColorKind tags which variant of the Color union is populated.
type ColorKind int

const (
	ColorNamed ColorKind = iota
	ColorRGB
	ColorRGBA
)

// Color is the tagged union the original's svg.h models as
// std::variant<std::monostate, std::string, Rgb, Rgba>: a CSS color
// name, an (r,g,b) triple, or an (r,g,b,a) quadruple with a float alpha.
type Color struct {
	Kind ColorKind
	Name string
	R, G, B uint8
	A       float64
}

// Named constructs a named-string color.
func Named(name string) Color { return Color{Kind: ColorNamed, Name: name} }

// RGB constructs an opaque (r,g,b) color.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// RGBA constructs an (r,g,b,a) color with a floating-point alpha.
func RGBA(r, g, b uint8, a float64) Color { return Color{Kind: ColorRGBA, R: r, G: g, B: b, A: a} }

// String renders the color the way an SVG attribute value would.
func (c Color) String() string {
	switch c.Kind {
	case ColorNamed:
		return c.Name
	case ColorRGB:
		return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
	case ColorRGBA:
		return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.R, c.G, c.B, c.A)
	default:
		return "none"
	}
}

// Offset is a (dx, dy) label offset pair.
type Offset struct {
	DX, DY float64
}

// RenderSettings mirrors §3's RenderSettings entity: everything the map
// renderer collaborator needs beyond the catalogue projection itself.
type RenderSettings struct {
	Width, Height, Padding float64

	LineWidth  float64
	StopRadius float64

	BusLabelFontSize int
	BusLabelOffset   Offset

	StopLabelFontSize int
	StopLabelOffset   Offset

	UnderlayerColor Color
	UnderlayerWidth float64

	ColorPalette []Color
}

// Validate checks the constraints the original implementation enforces
// at JSON-reading time, before any query can reach the renderer:
// padding must lie in [0, min(width,height)/2).
func Validate(s RenderSettings) error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: width and height must be positive", ErrInvalidSettings)
	}
	half := s.Width
	if s.Height < half {
		half = s.Height
	}
	half /= 2
	if s.Padding < 0 || s.Padding >= half {
		return fmt.Errorf("%w: padding %v must be in [0, %v)", ErrInvalidSettings, s.Padding, half)
	}
	return nil
}

// StopProjection is one stop's projected coordinate, already named
// rather than keyed by catalogue identity, so this package has no
// dependency on internal/catalogue.
type StopProjection struct {
	Name   string
	Coords geo.Coordinates
}

// BusProjection is one bus's stop-name sequence as traversed for
// rendering (the same materialized traversal bus_info uses).
type BusProjection struct {
	Name  string
	Stops []string
}

// Projection bundles the catalogue inputs the renderer needs: the
// non-empty stops and buses, in the lexicographic order
// Catalogue.NonEmptyStops/NonEmptyBuses already produce.
type Projection struct {
	Stops []StopProjection
	Buses []BusProjection
}

// MapRenderer is the collaborator contract: turn settings and a
// catalogue projection into a complete SVG document.
type MapRenderer interface {
	Render(settings RenderSettings, projection Projection) []byte
}

// DefaultRenderer is a minimal MapRenderer: it emits a well-formed SVG
// document sized per settings with one circle per stop, plain-projected
// into the viewport with no zoom-compression or label-collision
// avoidance. The original's coordinate compression and label layout
// algorithm is out of scope for this system (see §1); this exists so
// `process_requests` has something real to return for a Map query.
type DefaultRenderer struct{}

// Render implements MapRenderer.
func (DefaultRenderer) Render(settings RenderSettings, projection Projection) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" ?>`+"\n")
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%g" height="%g">`+"\n",
		settings.Width, settings.Height)

	minLat, maxLat, minLon, maxLon := boundingBox(projection.Stops)
	project := func(c geo.Coordinates) (float64, float64) {
		x, y := settings.Padding, settings.Padding
		innerW := settings.Width - 2*settings.Padding
		innerH := settings.Height - 2*settings.Padding
		if maxLon > minLon {
			x += (c.Lon - minLon) / (maxLon - minLon) * innerW
		}
		if maxLat > minLat {
			y += (maxLat - c.Lat) / (maxLat - minLat) * innerH
		}
		return x, y
	}

	palette := settings.ColorPalette
	for i, bus := range projection.Buses {
		if len(bus.Stops) < 2 || len(palette) == 0 {
			continue
		}
		color := palette[i%len(palette)]
		fmt.Fprintf(&buf, `<polyline points="`)
		for _, name := range bus.Stops {
			sp := findStop(projection.Stops, name)
			if sp == nil {
				continue
			}
			x, y := project(sp.Coords)
			fmt.Fprintf(&buf, "%g,%g ", x, y)
		}
		fmt.Fprintf(&buf, `" fill="none" stroke="%s" stroke-width="%g"/>`+"\n", color.String(), settings.LineWidth)
	}

	for _, sp := range projection.Stops {
		x, y := project(sp.Coords)
		fmt.Fprintf(&buf, `<circle cx="%g" cy="%g" r="%g" fill="white"/>`+"\n", x, y, settings.StopRadius)
	}

	buf.WriteString("</svg>")
	return buf.Bytes()
}

func findStop(stops []StopProjection, name string) *StopProjection {
	for i := range stops {
		if stops[i].Name == name {
			return &stops[i]
		}
	}
	return nil
}

func boundingBox(stops []StopProjection) (minLat, maxLat, minLon, maxLon float64) {
	if len(stops) == 0 {
		return 0, 0, 0, 0
	}
	minLat, maxLat = stops[0].Coords.Lat, stops[0].Coords.Lat
	minLon, maxLon = stops[0].Coords.Lon, stops[0].Coords.Lon
	for _, sp := range stops[1:] {
		if sp.Coords.Lat < minLat {
			minLat = sp.Coords.Lat
		}
		if sp.Coords.Lat > maxLat {
			maxLat = sp.Coords.Lat
		}
		if sp.Coords.Lon < minLon {
			minLon = sp.Coords.Lon
		}
		if sp.Coords.Lon > maxLon {
			maxLon = sp.Coords.Lon
		}
	}
	return minLat, maxLat, minLon, maxLon
}
