// Package jsonio defines the wire types for the collaborator boundary
// named in §6: the JSON request/response schema for make_base and
// process_requests. Decoding and encoding are deliberately thin here —
// per the purpose and scope section, textual/JSON request decoding is
// an out-of-scope collaborator concern — but something has to actually
// run the bytes through a decoder for the CLI to work end to end, so
// this package reaches for goccy/go-json the way
// angelodlfrtr-valhalla-http-client-go does instead of stdlib
// encoding/json.
package jsonio

import (
	json "github.com/goccy/go-json"
	"github.com/gotidy/ptr"
)

// BaseRequest is the flat union of the Stop and Bus base-request shapes
// from §6.2; which fields are meaningful is determined by Type.
type BaseRequest struct {
	Type string `json:"type"`

	// Stop fields.
	Name          string             `json:"name,omitempty"`
	Latitude      float64            `json:"latitude,omitempty"`
	Longitude     float64            `json:"longitude,omitempty"`
	RoadDistances map[string]float64 `json:"road_distances,omitempty"`

	// Bus fields.
	Stops       []string `json:"stops,omitempty"`
	IsRoundtrip bool     `json:"is_roundtrip,omitempty"`
}

// RenderSettingsJSON mirrors §3's RenderSettings on the wire; colors are
// decoded separately via DecodeColor since they are a tagged union of
// string or 3/4-element array.
type RenderSettingsJSON struct {
	Width             float64           `json:"width"`
	Height            float64           `json:"height"`
	Padding           float64           `json:"padding"`
	LineWidth         float64           `json:"line_width"`
	StopRadius        float64           `json:"stop_radius"`
	BusLabelFontSize  int               `json:"bus_label_font_size"`
	BusLabelOffset    [2]float64        `json:"bus_label_offset"`
	StopLabelFontSize int               `json:"stop_label_font_size"`
	StopLabelOffset   [2]float64        `json:"stop_label_offset"`
	UnderlayerColor   json.RawMessage   `json:"underlayer_color"`
	UnderlayerWidth   float64           `json:"underlayer_width"`
	ColorPalette      []json.RawMessage `json:"color_palette"`
}

// RoutingSettingsJSON is §6.2's routing settings shape.
type RoutingSettingsJSON struct {
	BusWaitTime int     `json:"bus_wait_time"`
	BusVelocity float64 `json:"bus_velocity"`
}

// SerializationSettingsJSON is §6.2's serialization settings shape.
type SerializationSettingsJSON struct {
	File string `json:"file"`
}

// StatRequest is the flat tagged record the design notes call for
// (§9's "each stat-request is a plain data record, the handler
// dispatches on its tag"): Name serves Bus/Stop, From/To serve Route.
// The optional fields are stored behind pointers built with
// github.com/gotidy/ptr so a request that omits them round-trips as a
// true absence rather than an ambiguous empty string.
type StatRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`

	Name *string `json:"name,omitempty"`
	From *string `json:"from,omitempty"`
	To   *string `json:"to,omitempty"`
}

// NameOrEmpty returns Name dereferenced, or "" if absent.
func (r StatRequest) NameOrEmpty() string { return ptr.Get(r.Name) }

// FromOrEmpty returns From dereferenced, or "" if absent.
func (r StatRequest) FromOrEmpty() string { return ptr.Get(r.From) }

// ToOrEmpty returns To dereferenced, or "" if absent.
func (r StatRequest) ToOrEmpty() string { return ptr.Get(r.To) }

// MakeBaseInput is the full stdin document for the make_base subcommand.
type MakeBaseInput struct {
	BaseRequests          []BaseRequest             `json:"base_requests"`
	RenderSettings        RenderSettingsJSON        `json:"render_settings"`
	RoutingSettings       RoutingSettingsJSON       `json:"routing_settings"`
	SerializationSettings SerializationSettingsJSON `json:"serialization_settings"`
}

// ProcessRequestsInput is the full stdin document for the
// process_requests subcommand.
type ProcessRequestsInput struct {
	StatRequests          []StatRequest             `json:"stat_requests"`
	SerializationSettings SerializationSettingsJSON `json:"serialization_settings"`
}

// DecodeMakeBaseInput decodes a make_base stdin document.
func DecodeMakeBaseInput(data []byte) (MakeBaseInput, error) {
	var in MakeBaseInput
	if err := json.Unmarshal(data, &in); err != nil {
		return MakeBaseInput{}, err
	}
	return in, nil
}

// DecodeProcessRequestsInput decodes a process_requests stdin document.
func DecodeProcessRequestsInput(data []byte) (ProcessRequestsInput, error) {
	var in ProcessRequestsInput
	if err := json.Unmarshal(data, &in); err != nil {
		return ProcessRequestsInput{}, err
	}
	return in, nil
}

// EncodeResponses marshals the ordered list of per-request response
// objects into the JSON array process_requests writes to stdout.
func EncodeResponses(responses []interface{}) ([]byte, error) {
	return json.Marshal(responses)
}

// NewString is a small ptr.Of wrapper kept local so callers building a
// StatRequest by hand (tests, the CLI's own request assembly) do not
// need to import gotidy/ptr directly.
func NewString(s string) *string { return ptr.Of(s) }
