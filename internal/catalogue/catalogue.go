// Package catalogue owns the interned stop and bus entities, the
// asymmetric road-distance map, and the reverse stop-to-buses index. It
// is the transit-domain analogue of impactsolutionsas-passbi_core's
// internal/graph.InMemoryGraph: a single struct guarding append-only
// in-memory state behind name-indexed lookups, except the identity here
// is a stop/bus name rather than a database row id, so there is no
// pgx dependency to carry.
package catalogue

import (
	"errors"
	"fmt"
	"sort"

	"github.com/passbi/transitcatalogue/internal/geo"
)

// Sentinel errors surfaced during catalogue build and query, matching
// the kinds named in the error handling design: a missing stop referenced
// by a bus is always fatal at build time; a missing distance or bus is
// reported to the caller, who decides whether that is fatal (build) or a
// "not found" response (query).
var (
	ErrUnknownStop     = errors.New("unknown stop")
	ErrUnknownBus      = errors.New("unknown bus")
	ErrUnknownDistance = errors.New("unknown distance")
)

// Stop is a named geographic point. Coords are zero-valued and HasCoords
// is false until an explicit upsert_stop call supplies real coordinates;
// a stop may exist as a bare distance-table placeholder until then.
type Stop struct {
	Name      string
	Coords    geo.Coordinates
	HasCoords bool
}

// Bus is a named ordered traversal of stop names as declared by the
// caller. IsRoundtrip selects how MaterializedTraversal expands it.
type Bus struct {
	Name        string
	Stops       []string
	IsRoundtrip bool
}

// BusInfo is the derived statistics block for a single bus, computed on
// demand rather than cached, since buses never mutate after add_bus.
type BusInfo struct {
	StopsCount       int
	UniqueStopsCount int
	RouteLength      float64
	Curvature        float64
}

// StopInfo is the derived reverse-index view for a single stop.
type StopInfo struct {
	Buses []string // lexicographically ordered
}

type distanceKey struct {
	from, to string
}

// Catalogue owns all stops and buses for one build. It is append-only:
// there is no remove or mutate-in-place operation beyond upsert_stop
// updating a placeholder's coordinates. Once built it is treated as
// immutable for the remainder of the process, per the concurrency model.
type Catalogue struct {
	stops    []*Stop
	stopIdx  map[string]*Stop
	buses    []*Bus
	busIdx   map[string]*Bus
	distance map[distanceKey]float64
	stopBus  map[string][]string // insertion order; sorted lazily on read
}

// New returns an empty catalogue ready for build-time population.
func New() *Catalogue {
	return &Catalogue{
		stopIdx:  make(map[string]*Stop),
		busIdx:   make(map[string]*Bus),
		distance: make(map[distanceKey]float64),
		stopBus:  make(map[string][]string),
	}
}

// placeholder creates a stop with zeroed coordinates if name is not yet
// known, leaving an already-known stop untouched. Callers that will
// immediately set coordinates use UpsertStop instead.
func (c *Catalogue) placeholder(name string) *Stop {
	if s, ok := c.stopIdx[name]; ok {
		return s
	}
	s := &Stop{Name: name}
	c.stops = append(c.stops, s)
	c.stopIdx[name] = s
	return s
}

// UpsertStop creates the stop if unseen, or fills in coordinates on an
// existing placeholder. It is idempotent: re-upserting the same
// coordinates on an already-coordinated stop is a no-op in effect.
func (c *Catalogue) UpsertStop(name string, coords geo.Coordinates) {
	s := c.placeholder(name)
	s.Coords = coords
	s.HasCoords = true
}

// SetDistance records the directed distance from->to. If the reverse
// direction to->from has no entry at all yet (neither explicit nor
// previously defaulted), it is seeded with the same value. A later
// explicit SetDistance(to, from, ...) always overwrites its own
// direction outright and never touches the direction just written here,
// so an established explicit value is never clobbered by a later
// default.
func (c *Catalogue) SetDistance(from, to string, meters float64) {
	c.placeholder(from)
	c.placeholder(to)

	c.distance[distanceKey{from, to}] = meters
	if _, ok := c.distance[distanceKey{to, from}]; !ok {
		c.distance[distanceKey{to, from}] = meters
	}
}

// Distance returns the directed road distance from->to, or
// ErrUnknownDistance if no entry exists for that ordered pair.
func (c *Catalogue) Distance(from, to string) (float64, error) {
	m, ok := c.distance[distanceKey{from, to}]
	if !ok {
		return 0, fmt.Errorf("%w: %s -> %s", ErrUnknownDistance, from, to)
	}
	return m, nil
}

// AddBus resolves every stop name in stopNames through the interning
// index and appends the bus. Any unresolved name is ErrUnknownStop and
// the bus is not added. The reverse stop->buses index is updated for
// every distinct stop the bus touches.
func (c *Catalogue) AddBus(name string, stopNames []string, isRoundtrip bool) error {
	for _, sn := range stopNames {
		if _, ok := c.stopIdx[sn]; !ok {
			return fmt.Errorf("%w: %s (referenced by bus %s)", ErrUnknownStop, sn, name)
		}
	}

	b := &Bus{Name: name, Stops: append([]string(nil), stopNames...), IsRoundtrip: isRoundtrip}
	c.buses = append(c.buses, b)
	c.busIdx[name] = b

	seen := make(map[string]bool, len(stopNames))
	for _, sn := range stopNames {
		if seen[sn] {
			continue
		}
		seen[sn] = true
		c.stopBus[sn] = append(c.stopBus[sn], name)
	}
	return nil
}

// FindStop is a total lookup: ok is false if name was never registered.
func (c *Catalogue) FindStop(name string) (*Stop, bool) {
	s, ok := c.stopIdx[name]
	return s, ok
}

// FindBus is a total lookup: ok is false if name was never registered.
func (c *Catalogue) FindBus(name string) (*Bus, bool) {
	b, ok := c.busIdx[name]
	return b, ok
}

// MaterializedTraversal expands a bus's declared stop sequence into the
// sequence used for statistics and graph building: the declared list
// unchanged for a round-trip bus (the input is expected to already
// describe the loop it forms), or the declared list followed by its
// reflection (excluding the repeated turnaround stop) for a
// there-and-back bus.
func MaterializedTraversal(b *Bus) []string {
	if b.IsRoundtrip {
		return b.Stops
	}
	n := len(b.Stops)
	out := make([]string, 0, 2*n-1)
	out = append(out, b.Stops...)
	for i := n - 2; i >= 0; i-- {
		out = append(out, b.Stops[i])
	}
	return out
}

// BusInfo computes the derived statistics block for a bus, or
// ErrUnknownBus if name is not registered. A missing distance along the
// traversal surfaces as ErrUnknownDistance.
func (c *Catalogue) BusInfo(name string) (BusInfo, error) {
	b, ok := c.busIdx[name]
	if !ok {
		return BusInfo{}, fmt.Errorf("%w: %s", ErrUnknownBus, name)
	}

	traversal := MaterializedTraversal(b)

	unique := make(map[string]struct{}, len(traversal))
	for _, s := range traversal {
		unique[s] = struct{}{}
	}

	var routeLength, geoLength float64
	for i := 0; i+1 < len(traversal); i++ {
		d, err := c.Distance(traversal[i], traversal[i+1])
		if err != nil {
			return BusInfo{}, err
		}
		routeLength += d

		from, _ := c.FindStop(traversal[i])
		to, _ := c.FindStop(traversal[i+1])
		geoLength += geo.GreatCircleMeters(from.Coords, to.Coords)
	}

	info := BusInfo{
		StopsCount:       len(traversal),
		UniqueStopsCount: len(unique),
		RouteLength:      routeLength,
	}
	if geoLength > 0 {
		info.Curvature = routeLength / geoLength
	}
	return info, nil
}

// StopInfo returns the lexicographically ordered set of bus names
// touching the stop, or ok=false if the stop is not registered.
func (c *Catalogue) StopInfo(name string) (StopInfo, bool) {
	if _, ok := c.stopIdx[name]; !ok {
		return StopInfo{}, false
	}
	buses := append([]string(nil), c.stopBus[name]...)
	sort.Strings(buses)
	return StopInfo{Buses: buses}, true
}

// NonEmptyStops returns stops touched by at least one bus, in
// lexicographic order, for the map-rendering collaborator.
func (c *Catalogue) NonEmptyStops() []*Stop {
	var out []*Stop
	for _, s := range c.stops {
		if len(c.stopBus[s.Name]) > 0 {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NonEmptyBuses returns buses in lexicographic order by name.
func (c *Catalogue) NonEmptyBuses() []*Bus {
	out := append([]*Bus(nil), c.buses...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NonEmptyStopCoords returns the coordinates of every non-empty stop, in
// the same lexicographic order as NonEmptyStops, for the map projection.
func (c *Catalogue) NonEmptyStopCoords() []geo.Coordinates {
	stops := c.NonEmptyStops()
	out := make([]geo.Coordinates, len(stops))
	for i, s := range stops {
		out[i] = s.Coords
	}
	return out
}

// StopNames returns every registered stop name in lexicographic order.
// The TransitRouter uses this ordering to assign graph vertex indices,
// per the deterministic vertex-assignment invariant.
func (c *Catalogue) StopNames() []string {
	out := make([]string, len(c.stops))
	for i, s := range c.stops {
		out[i] = s.Name
	}
	sort.Strings(out)
	return out
}

// Buses returns every registered bus in insertion order.
func (c *Catalogue) Buses() []*Bus {
	return c.buses
}

// RestoreStop recreates a stop exactly as the codec read it, including
// an unset HasCoords for a placeholder that was never upserted with
// real coordinates — unlike UpsertStop, it does not force HasCoords
// true.
func (c *Catalogue) RestoreStop(name string, coords geo.Coordinates, hasCoords bool) {
	s := c.placeholder(name)
	if hasCoords {
		s.Coords = coords
		s.HasCoords = true
	}
}

// Stops returns every registered stop in insertion order, the ordering
// the codec assigns stable integer archive ids from — distinct from the
// lexicographic order StopNames uses for graph vertex assignment.
func (c *Catalogue) Stops() []*Stop {
	return c.stops
}

// DistancePair is one directed entry of the road-distance map.
type DistancePair struct {
	From, To string
	Meters   float64
}

// DistancePairs returns every directed distance entry in unspecified
// order; callers that need a deterministic order (the codec) sort by
// their own id assignment after resolving names.
func (c *Catalogue) DistancePairs() []DistancePair {
	out := make([]DistancePair, 0, len(c.distance))
	for k, meters := range c.distance {
		out = append(out, DistancePair{From: k.from, To: k.to, Meters: meters})
	}
	return out
}
