// Package codec reads and writes the single binary archive that
// freezes a Catalogue, its RenderSettings and RoutingParameters, the
// TransitRouter's Graph, and its precomputed ShortestPaths table. No
// schema-driven binary serialization library in the retrieval pack is a
// genuine, non-fabricated dependency for this domain (see DESIGN.md), so
// this is a hand-rolled length-delimited, version-tagged binary format
// over encoding/binary and bufio — the same low-level-but-plain style
// impactsolutionsas-passbi_core uses for manual pgx row scanning, just
// applied to a flat byte stream instead of SQL rows.
package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/passbi/transitcatalogue/internal/catalogue"
	"github.com/passbi/transitcatalogue/internal/geo"
	"github.com/passbi/transitcatalogue/internal/graph"
	"github.com/passbi/transitcatalogue/internal/render"
	"github.com/passbi/transitcatalogue/internal/router"
	"github.com/passbi/transitcatalogue/internal/shortestpaths"
)

// ErrCorruptArchive is returned when the stream is truncated, or its
// magic, format version or a color tag is not one this package writes.
var ErrCorruptArchive = errors.New("corrupt archive")

// ErrArchiveInconsistent is returned when an id referenced by a bus,
// distance, or edge record falls outside the range established by the
// stop or edge count just read.
var ErrArchiveInconsistent = errors.New("archive inconsistent")

const (
	magic         = "TCAT"
	formatVersion = uint32(1)
)

// Archive is everything a freshly built (Catalogue, RenderSettings,
// RoutingParameters, TransitRouter) tuple needs to round-trip through
// disk, assembled by the caller (cmd/catalogue's make_base path) from
// the four components.
type Archive struct {
	Catalogue      *catalogue.Catalogue
	RenderSettings render.RenderSettings
	Router         *router.TransitRouter
}

// Write serializes a into w in the normative section order: catalogue,
// render settings, routing parameters, graph, shortest-path table,
// bus-metadata maps, router stop order.
func Write(w io.Writer, a Archive) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(magic); err != nil {
		return err
	}
	if err := writeUint32(bw, formatVersion); err != nil {
		return err
	}

	stopID, err := writeStops(bw, a.Catalogue)
	if err != nil {
		return err
	}
	if err := writeBuses(bw, a.Catalogue, stopID); err != nil {
		return err
	}
	if err := writeDistances(bw, a.Catalogue, stopID); err != nil {
		return err
	}
	if err := writeRenderSettings(bw, a.RenderSettings); err != nil {
		return err
	}
	if err := writeRoutingParameters(bw, a.Router.Params()); err != nil {
		return err
	}
	if err := writeGraph(bw, a.Router.Graph()); err != nil {
		return err
	}
	if err := writeTable(bw, a.Router.Table()); err != nil {
		return err
	}
	busByEdge, spanByEdge := a.Router.RideMetadata()
	if err := writeRideMetadata(bw, busByEdge, spanByEdge); err != nil {
		return err
	}
	if err := writeStopOrder(bw, a.Router.Stops()); err != nil {
		return err
	}

	return bw.Flush()
}

// Read deserializes an archive from r, rebuilding the Catalogue and a
// TransitRouter via its FromArchive entry point rather than recomputing
// the graph and shortest-path table.
func Read(r io.Reader) (*catalogue.Catalogue, render.RenderSettings, *router.TransitRouter, error) {
	br := bufio.NewReader(r)

	var gotMagic [4]byte
	if _, err := io.ReadFull(br, gotMagic[:]); err != nil {
		return nil, render.RenderSettings{}, nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	if string(gotMagic[:]) != magic {
		return nil, render.RenderSettings{}, nil, fmt.Errorf("%w: bad magic", ErrCorruptArchive)
	}
	version, err := readUint32(br)
	if err != nil {
		return nil, render.RenderSettings{}, nil, err
	}
	if version != formatVersion {
		return nil, render.RenderSettings{}, nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptArchive, version)
	}

	cat, stopNames, err := readStops(br)
	if err != nil {
		return nil, render.RenderSettings{}, nil, err
	}
	if err := readBuses(br, cat, stopNames); err != nil {
		return nil, render.RenderSettings{}, nil, err
	}
	if err := readDistances(br, cat, stopNames); err != nil {
		return nil, render.RenderSettings{}, nil, err
	}
	settings, err := readRenderSettings(br)
	if err != nil {
		return nil, render.RenderSettings{}, nil, err
	}
	params, err := readRoutingParameters(br)
	if err != nil {
		return nil, render.RenderSettings{}, nil, err
	}
	g, err := readGraph(br)
	if err != nil {
		return nil, render.RenderSettings{}, nil, err
	}
	table, err := readTable(br, g.VertexCount())
	if err != nil {
		return nil, render.RenderSettings{}, nil, err
	}
	busByEdge, spanByEdge, err := readRideMetadata(br, g.EdgeCount())
	if err != nil {
		return nil, render.RenderSettings{}, nil, err
	}
	routerStopOrder, err := readStopOrder(br)
	if err != nil {
		return nil, render.RenderSettings{}, nil, err
	}

	tr := router.FromArchive(params, g, table, routerStopOrder, busByEdge, spanByEdge)
	return cat, settings, tr, nil
}

// ---- catalogue section ----

func writeStops(w *bufio.Writer, cat *catalogue.Catalogue) (map[string]uint32, error) {
	stops := cat.Stops()
	if err := writeUint32(w, uint32(len(stops))); err != nil {
		return nil, err
	}
	ids := make(map[string]uint32, len(stops))
	for i, s := range stops {
		ids[s.Name] = uint32(i)
		if err := writeString(w, s.Name); err != nil {
			return nil, err
		}
		if err := writeFloat64(w, s.Coords.Lat); err != nil {
			return nil, err
		}
		if err := writeFloat64(w, s.Coords.Lon); err != nil {
			return nil, err
		}
		if err := writeBool(w, s.HasCoords); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func readStops(r *bufio.Reader) (*catalogue.Catalogue, []string, error) {
	count, err := readUint32(r)
	if err != nil {
		return nil, nil, err
	}
	cat := catalogue.New()
	names := make([]string, count)
	for i := uint32(0); i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, nil, err
		}
		lat, err := readFloat64(r)
		if err != nil {
			return nil, nil, err
		}
		lon, err := readFloat64(r)
		if err != nil {
			return nil, nil, err
		}
		hasCoords, err := readBool(r)
		if err != nil {
			return nil, nil, err
		}
		cat.RestoreStop(name, geo.Coordinates{Lat: lat, Lon: lon}, hasCoords)
		names[i] = name
	}
	return cat, names, nil
}

func writeBuses(w *bufio.Writer, cat *catalogue.Catalogue, stopID map[string]uint32) error {
	buses := cat.Buses()
	if err := writeUint32(w, uint32(len(buses))); err != nil {
		return err
	}
	for _, b := range buses {
		if err := writeString(w, b.Name); err != nil {
			return err
		}
		if err := writeBool(w, b.IsRoundtrip); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(len(b.Stops))); err != nil {
			return err
		}
		for _, name := range b.Stops {
			id, ok := stopID[name]
			if !ok {
				return fmt.Errorf("%w: bus %s references unknown stop %s", ErrArchiveInconsistent, b.Name, name)
			}
			if err := writeUint32(w, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func readBuses(r *bufio.Reader, cat *catalogue.Catalogue, names []string) error {
	count, err := readUint32(r)
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return err
		}
		isRoundtrip, err := readBool(r)
		if err != nil {
			return err
		}
		stopCount, err := readUint32(r)
		if err != nil {
			return err
		}
		stops := make([]string, stopCount)
		for j := uint32(0); j < stopCount; j++ {
			id, err := readUint32(r)
			if err != nil {
				return err
			}
			if int(id) >= len(names) {
				return fmt.Errorf("%w: bus %s stop id %d out of range", ErrArchiveInconsistent, name, id)
			}
			stops[j] = names[id]
		}
		if err := cat.AddBus(name, stops, isRoundtrip); err != nil {
			return fmt.Errorf("%w: %v", ErrArchiveInconsistent, err)
		}
	}
	return nil
}

func writeDistances(w *bufio.Writer, cat *catalogue.Catalogue, stopID map[string]uint32) error {
	pairs := cat.DistancePairs()
	sort.Slice(pairs, func(i, j int) bool {
		if stopID[pairs[i].From] != stopID[pairs[j].From] {
			return stopID[pairs[i].From] < stopID[pairs[j].From]
		}
		return stopID[pairs[i].To] < stopID[pairs[j].To]
	})
	if err := writeUint32(w, uint32(len(pairs))); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := writeUint32(w, stopID[p.From]); err != nil {
			return err
		}
		if err := writeUint32(w, stopID[p.To]); err != nil {
			return err
		}
		if err := writeFloat64(w, p.Meters); err != nil {
			return err
		}
	}
	return nil
}

func readDistances(r *bufio.Reader, cat *catalogue.Catalogue, names []string) error {
	count, err := readUint32(r)
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		fromID, err := readUint32(r)
		if err != nil {
			return err
		}
		toID, err := readUint32(r)
		if err != nil {
			return err
		}
		meters, err := readFloat64(r)
		if err != nil {
			return err
		}
		if int(fromID) >= len(names) || int(toID) >= len(names) {
			return fmt.Errorf("%w: distance id out of range", ErrArchiveInconsistent)
		}
		cat.SetDistance(names[fromID], names[toID], meters)
	}
	return nil
}

// ---- render settings section ----

func writeRenderSettings(w *bufio.Writer, s render.RenderSettings) error {
	for _, v := range []float64{s.Width, s.Height, s.Padding, s.LineWidth, s.StopRadius} {
		if err := writeFloat64(w, v); err != nil {
			return err
		}
	}
	if err := writeInt32(w, int32(s.BusLabelFontSize)); err != nil {
		return err
	}
	if err := writeFloat64(w, s.BusLabelOffset.DX); err != nil {
		return err
	}
	if err := writeFloat64(w, s.BusLabelOffset.DY); err != nil {
		return err
	}
	if err := writeInt32(w, int32(s.StopLabelFontSize)); err != nil {
		return err
	}
	if err := writeFloat64(w, s.StopLabelOffset.DX); err != nil {
		return err
	}
	if err := writeFloat64(w, s.StopLabelOffset.DY); err != nil {
		return err
	}
	if err := writeColor(w, s.UnderlayerColor); err != nil {
		return err
	}
	if err := writeFloat64(w, s.UnderlayerWidth); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(s.ColorPalette))); err != nil {
		return err
	}
	for _, c := range s.ColorPalette {
		if err := writeColor(w, c); err != nil {
			return err
		}
	}
	return nil
}

func readRenderSettings(r *bufio.Reader) (render.RenderSettings, error) {
	var s render.RenderSettings
	vals := make([]float64, 5)
	for i := range vals {
		v, err := readFloat64(r)
		if err != nil {
			return s, err
		}
		vals[i] = v
	}
	s.Width, s.Height, s.Padding, s.LineWidth, s.StopRadius = vals[0], vals[1], vals[2], vals[3], vals[4]

	busFont, err := readInt32(r)
	if err != nil {
		return s, err
	}
	s.BusLabelFontSize = int(busFont)
	if s.BusLabelOffset.DX, err = readFloat64(r); err != nil {
		return s, err
	}
	if s.BusLabelOffset.DY, err = readFloat64(r); err != nil {
		return s, err
	}
	stopFont, err := readInt32(r)
	if err != nil {
		return s, err
	}
	s.StopLabelFontSize = int(stopFont)
	if s.StopLabelOffset.DX, err = readFloat64(r); err != nil {
		return s, err
	}
	if s.StopLabelOffset.DY, err = readFloat64(r); err != nil {
		return s, err
	}
	if s.UnderlayerColor, err = readColor(r); err != nil {
		return s, err
	}
	if s.UnderlayerWidth, err = readFloat64(r); err != nil {
		return s, err
	}
	count, err := readUint32(r)
	if err != nil {
		return s, err
	}
	s.ColorPalette = make([]render.Color, count)
	for i := uint32(0); i < count; i++ {
		c, err := readColor(r)
		if err != nil {
			return s, err
		}
		s.ColorPalette[i] = c
	}
	return s, nil
}

func writeColor(w *bufio.Writer, c render.Color) error {
	if err := w.WriteByte(byte(c.Kind)); err != nil {
		return err
	}
	switch c.Kind {
	case render.ColorNamed:
		return writeString(w, c.Name)
	case render.ColorRGB:
		_, err := w.Write([]byte{c.R, c.G, c.B})
		return err
	case render.ColorRGBA:
		if _, err := w.Write([]byte{c.R, c.G, c.B}); err != nil {
			return err
		}
		return writeFloat64(w, c.A)
	default:
		return fmt.Errorf("%w: unknown color kind %d", ErrCorruptArchive, c.Kind)
	}
}

func readColor(r *bufio.Reader) (render.Color, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return render.Color{}, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	switch render.ColorKind(kind) {
	case render.ColorNamed:
		name, err := readString(r)
		if err != nil {
			return render.Color{}, err
		}
		return render.Named(name), nil
	case render.ColorRGB:
		var rgb [3]byte
		if _, err := io.ReadFull(r, rgb[:]); err != nil {
			return render.Color{}, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}
		return render.RGB(rgb[0], rgb[1], rgb[2]), nil
	case render.ColorRGBA:
		var rgb [3]byte
		if _, err := io.ReadFull(r, rgb[:]); err != nil {
			return render.Color{}, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}
		a, err := readFloat64(r)
		if err != nil {
			return render.Color{}, err
		}
		return render.RGBA(rgb[0], rgb[1], rgb[2], a), nil
	default:
		return render.Color{}, fmt.Errorf("%w: unknown color tag %d", ErrCorruptArchive, kind)
	}
}

// ---- routing parameters section ----

func writeRoutingParameters(w *bufio.Writer, p router.RoutingParameters) error {
	if err := writeInt32(w, int32(p.BusWaitTime)); err != nil {
		return err
	}
	return writeFloat64(w, p.BusVelocity)
}

func readRoutingParameters(r *bufio.Reader) (router.RoutingParameters, error) {
	wait, err := readInt32(r)
	if err != nil {
		return router.RoutingParameters{}, err
	}
	velocity, err := readFloat64(r)
	if err != nil {
		return router.RoutingParameters{}, err
	}
	return router.RoutingParameters{BusWaitTime: int(wait), BusVelocity: velocity}, nil
}

// ---- graph section ----

func writeGraph(w *bufio.Writer, g *graph.Graph[float64]) error {
	if err := writeUint32(w, uint32(g.VertexCount())); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(g.EdgeCount())); err != nil {
		return err
	}
	for id := 0; id < g.EdgeCount(); id++ {
		e := g.Edge(id)
		if err := writeUint32(w, uint32(e.From)); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(e.To)); err != nil {
			return err
		}
		if err := writeFloat64(w, e.Weight); err != nil {
			return err
		}
	}
	return nil
}

func readGraph(r *bufio.Reader) (*graph.Graph[float64], error) {
	vertexCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	edgeCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	g := graph.New[float64](int(vertexCount))
	for i := uint32(0); i < edgeCount; i++ {
		from, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		to, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		weight, err := readFloat64(r)
		if err != nil {
			return nil, err
		}
		if int(from) >= int(vertexCount) || int(to) >= int(vertexCount) {
			return nil, fmt.Errorf("%w: edge endpoint out of range", ErrArchiveInconsistent)
		}
		g.AddEdge(int(from), int(to), weight)
	}
	return g, nil
}

// ---- shortest-path table section ----

func writeTable(w *bufio.Writer, t *shortestpaths.Table) error {
	n := t.VertexCount()
	if err := writeUint32(w, uint32(n)); err != nil {
		return err
	}
	for _, e := range t.Entries() {
		if err := writeBool(w, e.Present); err != nil {
			return err
		}
		if !e.Present {
			continue
		}
		if err := writeFloat64(w, e.Weight); err != nil {
			return err
		}
		if err := writeBool(w, e.HasEdge); err != nil {
			return err
		}
		if e.HasEdge {
			if err := writeUint32(w, uint32(e.PrevEdge)); err != nil {
				return err
			}
		}
	}
	return nil
}

func readTable(r *bufio.Reader, expectedN int) (*shortestpaths.Table, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if int(n) != expectedN {
		return nil, fmt.Errorf("%w: table dimension %d does not match graph vertex count %d", ErrArchiveInconsistent, n, expectedN)
	}
	entries := make([]shortestpaths.Entry, int(n)*int(n))
	for i := range entries {
		present, err := readBool(r)
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		weight, err := readFloat64(r)
		if err != nil {
			return nil, err
		}
		hasEdge, err := readBool(r)
		if err != nil {
			return nil, err
		}
		var prevEdge uint32
		if hasEdge {
			prevEdge, err = readUint32(r)
			if err != nil {
				return nil, err
			}
		}
		entries[i] = shortestpaths.Entry{Weight: weight, PrevEdge: int(prevEdge), HasEdge: hasEdge, Present: true}
	}
	return shortestpaths.FromEntries(int(n), entries), nil
}

// ---- bus-metadata section ----

func writeRideMetadata(w *bufio.Writer, busByEdge map[int]string, spanByEdge map[int]int) error {
	ids := make([]int, 0, len(busByEdge))
	for id := range busByEdge {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	if err := writeUint32(w, uint32(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		if err := writeUint32(w, uint32(id)); err != nil {
			return err
		}
		if err := writeString(w, busByEdge[id]); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(spanByEdge[id])); err != nil {
			return err
		}
	}
	return nil
}

func readRideMetadata(r *bufio.Reader, edgeCount int) (map[int]string, map[int]int, error) {
	count, err := readUint32(r)
	if err != nil {
		return nil, nil, err
	}
	busByEdge := make(map[int]string, count)
	spanByEdge := make(map[int]int, count)
	for i := uint32(0); i < count; i++ {
		id, err := readUint32(r)
		if err != nil {
			return nil, nil, err
		}
		if int(id) >= edgeCount {
			return nil, nil, fmt.Errorf("%w: ride metadata edge id out of range", ErrArchiveInconsistent)
		}
		bus, err := readString(r)
		if err != nil {
			return nil, nil, err
		}
		span, err := readUint32(r)
		if err != nil {
			return nil, nil, err
		}
		busByEdge[int(id)] = bus
		spanByEdge[int(id)] = int(span)
	}
	return busByEdge, spanByEdge, nil
}

// ---- router stop order section ----

func writeStopOrder(w *bufio.Writer, stops []string) error {
	if err := writeUint32(w, uint32(len(stops))); err != nil {
		return err
	}
	for _, s := range stops {
		if err := writeString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readStopOrder(r *bufio.Reader) ([]string, error) {
	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]string, count)
	for i := uint32(0); i < count; i++ {
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// ---- primitive encoding ----

func writeUint32(w *bufio.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r *bufio.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func writeInt32(w *bufio.Writer, v int32) error {
	return writeUint32(w, uint32(v))
}

func readInt32(r *bufio.Reader) (int32, error) {
	v, err := readUint32(r)
	return int32(v), err
}

func writeFloat64(w *bufio.Writer, v float64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	_, err := w.Write(buf[:])
	return err
}

func readFloat64(r *bufio.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf[:])), nil
}

func writeBool(w *bufio.Writer, v bool) error {
	if v {
		return w.WriteByte(1)
	}
	return w.WriteByte(0)
}

func readBool(r *bufio.Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return b != 0, nil
}

func writeString(w *bufio.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return string(buf), nil
}
