// Package router maps a catalogue.Catalogue onto a weighted graph.Graph
// under the wait/ride time model and answers shortest-itinerary
// queries. Its query path — build a frontier, relax edges, walk a
// reconstructed edge list into user-facing steps — is grounded on
// impactsolutionsas-passbi_core's internal/routing/astar.go FindPath and
// buildSteps, with the A* heuristic and multi-strategy cost model
// dropped: this router always answers the single, parameter-fixed wait
// + ride cost function the spec defines, so there is exactly one
// shortest path per (from, to), not one per strategy.
package router

import (
	"errors"
	"fmt"

	"github.com/passbi/transitcatalogue/internal/catalogue"
	"github.com/passbi/transitcatalogue/internal/graph"
	"github.com/passbi/transitcatalogue/internal/shortestpaths"
)

// ErrInvalidRoutingParameters is returned by New when bus_velocity <= 0
// or bus_wait_time < 0, a condition the design treats as fatal at build
// time rather than discoverable only on the first query.
var ErrInvalidRoutingParameters = errors.New("invalid routing parameters")

// RoutingParameters are the two tuning knobs of the wait/ride cost
// model: how long a rider waits at a stop before boarding, and how fast
// a bus travels along its road distance.
type RoutingParameters struct {
	BusWaitTime int     // minutes, >= 0
	BusVelocity float64 // km/h, > 0
}

func (p RoutingParameters) validate() error {
	if p.BusVelocity <= 0 {
		return fmt.Errorf("%w: bus_velocity must be > 0, got %v", ErrInvalidRoutingParameters, p.BusVelocity)
	}
	if p.BusWaitTime < 0 {
		return fmt.Errorf("%w: bus_wait_time must be >= 0, got %v", ErrInvalidRoutingParameters, p.BusWaitTime)
	}
	return nil
}

// metersPerMinute converts the km/h velocity into the unit ride-edge
// weights are computed in.
func (p RoutingParameters) metersPerMinute() float64 {
	return p.BusVelocity * 1000 / 60
}

// RideStep is one itinerary segment covering a contiguous run of stops
// on a single bus.
type RideStep struct {
	Bus       string
	SpanCount int
	Time      float64 // minutes
}

// WaitStep is one itinerary segment for waiting at a stop before
// boarding.
type WaitStep struct {
	StopName string
	Time     float64 // minutes
}

// Item is either a RideStep or a WaitStep. Consumers type-switch on it.
type Item interface {
	isItem()
}

func (RideStep) isItem() {}
func (WaitStep) isItem() {}

// Itinerary is the result of a successful Route query.
type Itinerary struct {
	TotalTime float64
	Items     []Item
}

// rideMeta is the side-metadata carried per ride edge id: which bus it
// belongs to and how many inter-stop hops it spans.
type rideMeta struct {
	bus       string
	spanCount int
}

// TransitRouter owns the graph built from a catalogue under a fixed set
// of routing parameters, plus the shortest-path table precomputed over
// it.
type TransitRouter struct {
	params   RoutingParameters
	graph    *graph.Graph[float64]
	table    *shortestpaths.Table
	stopIdx  map[string]int // stop name -> lexicographic index k
	stops    []string       // lexicographic order, index k -> name
	rideMeta map[int]rideMeta
}

// New builds a fresh Graph and ShortestPaths table from cat under
// params: the "build from Catalogue" construction entry point. It
// returns ErrInvalidRoutingParameters eagerly rather than deferring the
// check to the first Route call.
func New(cat *catalogue.Catalogue, params RoutingParameters) (*TransitRouter, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	stops := cat.StopNames()
	stopIdx := make(map[string]int, len(stops))
	for k, name := range stops {
		stopIdx[name] = k
	}

	g := graph.New[float64](2 * len(stops))
	rideMeta := make(map[int]rideMeta)

	// Wait edges: arrive(k) -> board(k), weight bus_wait_time, for every
	// stop regardless of whether any bus visits it.
	for k := range stops {
		g.AddEdge(arriveVertex(k), boardVertex(k), float64(params.BusWaitTime))
	}

	// Ride edges: for every bus and every pair i<j along its materialized
	// traversal, board(s_i) -> arrive(s_j) weighted by cumulative road
	// distance converted to minutes at bus_velocity.
	metersPerMinute := params.metersPerMinute()
	for _, b := range cat.Buses() {
		traversal := catalogue.MaterializedTraversal(b)
		n := len(traversal)

		cumulative := make([]float64, n)
		for i := 0; i+1 < n; i++ {
			d, err := cat.Distance(traversal[i], traversal[i+1])
			if err != nil {
				return nil, fmt.Errorf("building ride edges for bus %s: %w", b.Name, err)
			}
			cumulative[i+1] = cumulative[i] + d
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				weight := (cumulative[j] - cumulative[i]) / metersPerMinute
				from := boardVertex(stopIdx[traversal[i]])
				to := arriveVertex(stopIdx[traversal[j]])
				id := g.AddEdge(from, to, weight)
				rideMeta[id] = rideMeta{bus: b.Name, spanCount: j - i}
			}
		}
	}

	table := shortestpaths.Build(g)

	return &TransitRouter{
		params:   params,
		graph:    g,
		table:    table,
		stopIdx:  stopIdx,
		stops:    stops,
		rideMeta: rideMeta,
	}, nil
}

// FromArchive is the second construction entry point: rehydrate a
// TransitRouter from an already-built graph, shortest-path table, and
// bus-metadata maps, as read back by the codec, instead of recomputing
// them from a catalogue.
func FromArchive(
	params RoutingParameters,
	g *graph.Graph[float64],
	table *shortestpaths.Table,
	stops []string,
	busByEdge map[int]string,
	spanByEdge map[int]int,
) *TransitRouter {
	stopIdx := make(map[string]int, len(stops))
	for k, name := range stops {
		stopIdx[name] = k
	}
	rm := make(map[int]rideMeta, len(busByEdge))
	for id, bus := range busByEdge {
		rm[id] = rideMeta{bus: bus, spanCount: spanByEdge[id]}
	}
	return &TransitRouter{
		params:   params,
		graph:    g,
		table:    table,
		stopIdx:  stopIdx,
		stops:    stops,
		rideMeta: rm,
	}
}

func arriveVertex(k int) int { return 2 * k }
func boardVertex(k int) int  { return 2*k + 1 }

// Graph exposes the built graph, for the codec to persist.
func (r *TransitRouter) Graph() *graph.Graph[float64] { return r.graph }

// Table exposes the precomputed shortest-path table, for the codec to
// persist.
func (r *TransitRouter) Table() *shortestpaths.Table { return r.table }

// Stops exposes the lexicographic stop ordering used for vertex
// assignment, for the codec to persist.
func (r *TransitRouter) Stops() []string { return r.stops }

// Params exposes the routing parameters the router was built with.
func (r *TransitRouter) Params() RoutingParameters { return r.params }

// RideMetadata returns the bus-name and span-count maps keyed by edge
// id, in the shape the codec writes them.
func (r *TransitRouter) RideMetadata() (busByEdge map[int]string, spanByEdge map[int]int) {
	busByEdge = make(map[int]string, len(r.rideMeta))
	spanByEdge = make(map[int]int, len(r.rideMeta))
	for id, m := range r.rideMeta {
		busByEdge[id] = m.bus
		spanByEdge[id] = m.spanCount
	}
	return busByEdge, spanByEdge
}

// Route answers the shortest-fastest-time itinerary between two stops.
// It enters at arrive(from) and exits at arrive(to): the itinerary opens
// with the wait to board at the origin, and the terminal wait at the
// destination is not counted. ok is false if either stop name is unknown to the router or
// the destination is unreachable; neither case is an error, matching
// the "unknown names return none" failure semantics.
func (r *TransitRouter) Route(from, to string) (Itinerary, bool) {
	fromIdx, ok := r.stopIdx[from]
	if !ok {
		return Itinerary{}, false
	}
	toIdx, ok := r.stopIdx[to]
	if !ok {
		return Itinerary{}, false
	}

	if from == to {
		return Itinerary{TotalTime: 0, Items: nil}, true
	}

	src, dst := arriveVertex(fromIdx), arriveVertex(toIdx)
	weight, edgeIDs, ok := shortestpaths.BuildRoute(r.table, r.graph, src, dst)
	if !ok {
		return Itinerary{}, false
	}

	items := make([]Item, 0, len(edgeIDs))
	for _, id := range edgeIDs {
		if meta, isRide := r.rideMeta[id]; isRide {
			items = append(items, RideStep{Bus: meta.bus, SpanCount: meta.spanCount, Time: r.graph.Edge(id).Weight})
			continue
		}
		stopK := r.graph.Edge(id).From / 2 // wait edges run arrive(k) -> board(k)
		items = append(items, WaitStep{StopName: r.stops[stopK], Time: r.graph.Edge(id).Weight})
	}

	return Itinerary{TotalTime: weight, Items: items}, true
}
