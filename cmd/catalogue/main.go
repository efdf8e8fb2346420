// Command catalogue is the two-subcommand CLI the original main.cpp
// dispatches on argv[1]: make_base builds and freezes a transit
// catalogue, process_requests answers queries against a frozen one.
// Phase-boundary logging follows
// impactsolutionsas-passbi_core/cmd/rebuild-graph's short, emoji-marked
// status lines instead of introducing a logging library the teacher
// itself never reaches for.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/passbi/transitcatalogue/internal/catalogue"
	"github.com/passbi/transitcatalogue/internal/codec"
	"github.com/passbi/transitcatalogue/internal/geo"
	"github.com/passbi/transitcatalogue/internal/jsonio"
	"github.com/passbi/transitcatalogue/internal/render"
	"github.com/passbi/transitcatalogue/internal/router"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: catalogue make_base|process_requests")
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "make_base":
		err = makeBase(os.Stdin)
	case "process_requests":
		err = processRequests(os.Stdin, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "usage: catalogue make_base|process_requests (got %q)\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func makeBase(stdin io.Reader) error {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	in, err := jsonio.DecodeMakeBaseInput(data)
	if err != nil {
		return fmt.Errorf("decoding make_base input: %w", err)
	}

	log.Println("🔄 building catalogue")
	cat, err := buildCatalogue(in.BaseRequests)
	if err != nil {
		return fmt.Errorf("building catalogue: %w", err)
	}
	log.Printf("✅ catalogue built: %d stops, %d buses", len(cat.StopNames()), len(cat.Buses()))

	settings, err := jsonio.DecodeRenderSettings(in.RenderSettings)
	if err != nil {
		return fmt.Errorf("decoding render settings: %w", err)
	}

	params := router.RoutingParameters{
		BusWaitTime: in.RoutingSettings.BusWaitTime,
		BusVelocity: in.RoutingSettings.BusVelocity,
	}

	log.Println("🔄 building routing graph and shortest-path table")
	tr, err := router.New(cat, params)
	if err != nil {
		return fmt.Errorf("building router: %w", err)
	}
	log.Printf("✅ router built: %d vertices, %d edges", tr.Graph().VertexCount(), tr.Graph().EdgeCount())

	f, err := os.Create(in.SerializationSettings.File)
	if err != nil {
		return fmt.Errorf("opening archive file: %w", err)
	}
	defer f.Close()

	if err := codec.Write(f, codec.Archive{Catalogue: cat, RenderSettings: settings, Router: tr}); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	log.Printf("✅ archive written to %s", in.SerializationSettings.File)

	return nil
}

// buildCatalogue runs the strict build-time sequencing the concurrency
// model requires: every stop upsert and distance write happens before
// any bus is added, so a bus added early in the input can still
// reference a stop declared later.
func buildCatalogue(requests []jsonio.BaseRequest) (*catalogue.Catalogue, error) {
	cat := catalogue.New()

	for _, req := range requests {
		if req.Type != "Stop" {
			continue
		}
		cat.UpsertStop(req.Name, geo.Coordinates{Lat: req.Latitude, Lon: req.Longitude})
		for other, meters := range req.RoadDistances {
			cat.SetDistance(req.Name, other, meters)
		}
	}

	for _, req := range requests {
		if req.Type != "Bus" {
			continue
		}
		if err := cat.AddBus(req.Name, req.Stops, req.IsRoundtrip); err != nil {
			return nil, err
		}
	}

	return cat, nil
}

func processRequests(stdin io.Reader, stdout io.Writer) error {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	in, err := jsonio.DecodeProcessRequestsInput(data)
	if err != nil {
		return fmt.Errorf("decoding process_requests input: %w", err)
	}

	f, err := os.Open(in.SerializationSettings.File)
	if err != nil {
		return fmt.Errorf("opening archive file: %w", err)
	}
	defer f.Close()

	log.Println("🔄 loading archive")
	cat, settings, tr, err := codec.Read(f)
	if err != nil {
		return fmt.Errorf("loading archive: %w", err)
	}
	log.Println("✅ archive loaded")

	responses := make([]interface{}, 0, len(in.StatRequests))
	for _, req := range in.StatRequests {
		responses = append(responses, answer(cat, tr, settings, req))
	}

	out, err := jsonio.EncodeResponses(responses)
	if err != nil {
		return fmt.Errorf("encoding responses: %w", err)
	}
	if _, err := stdout.Write(out); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

func notFound(id int) jsonio.ErrorResponse {
	return jsonio.ErrorResponse{RequestID: id, ErrorMessage: "not found"}
}

// answer dispatches a single stat request by its type tag. A per-request
// failure never aborts the batch, per the error handling design's
// propagation policy.
func answer(cat *catalogue.Catalogue, tr *router.TransitRouter, settings render.RenderSettings, req jsonio.StatRequest) interface{} {
	switch req.Type {
	case "Bus":
		info, err := cat.BusInfo(req.NameOrEmpty())
		if err != nil {
			return notFound(req.ID)
		}
		return jsonio.BusResponse{
			RequestID:       req.ID,
			RouteLength:     info.RouteLength,
			Curvature:       info.Curvature,
			StopCount:       info.StopsCount,
			UniqueStopCount: info.UniqueStopsCount,
		}

	case "Stop":
		info, ok := cat.StopInfo(req.NameOrEmpty())
		if !ok {
			return notFound(req.ID)
		}
		buses := info.Buses
		if buses == nil {
			buses = []string{}
		}
		return jsonio.StopResponse{RequestID: req.ID, Buses: buses}

	case "Map":
		return jsonio.MapResponse{RequestID: req.ID, Map: string(renderMap(cat, settings))}

	case "Route":
		itin, ok := tr.Route(req.FromOrEmpty(), req.ToOrEmpty())
		if !ok {
			return notFound(req.ID)
		}
		items := make([]interface{}, 0, len(itin.Items))
		for _, it := range itin.Items {
			switch v := it.(type) {
			case router.WaitStep:
				items = append(items, jsonio.WaitItem{Type: "Wait", StopName: v.StopName, Time: v.Time})
			case router.RideStep:
				items = append(items, jsonio.BusItem{Type: "Bus", Bus: v.Bus, SpanCount: v.SpanCount, Time: v.Time})
			}
		}
		return jsonio.RouteResponse{RequestID: req.ID, TotalTime: itin.TotalTime, Items: items}

	default:
		return notFound(req.ID)
	}
}

func renderMap(cat *catalogue.Catalogue, settings render.RenderSettings) []byte {
	stops := cat.NonEmptyStops()
	projStops := make([]render.StopProjection, len(stops))
	for i, s := range stops {
		projStops[i] = render.StopProjection{Name: s.Name, Coords: s.Coords}
	}

	buses := cat.NonEmptyBuses()
	projBuses := make([]render.BusProjection, len(buses))
	for i, b := range buses {
		projBuses[i] = render.BusProjection{Name: b.Name, Stops: catalogue.MaterializedTraversal(b)}
	}

	var renderer render.MapRenderer = render.DefaultRenderer{}
	return renderer.Render(settings, render.Projection{Stops: projStops, Buses: projBuses})
}
