package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S6: an archive built by make_base answers process_requests queries
// the same way a freshly-built in-memory catalogue would.
func TestMakeBaseThenProcessRequestsRoundTrip(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "base.db")

	makeBaseInput := `{
		"base_requests": [
			{"type": "Stop", "name": "X", "latitude": 0, "longitude": 0, "road_distances": {"Y": 1000}},
			{"type": "Stop", "name": "Y", "latitude": 0, "longitude": 0.01},
			{"type": "Bus", "name": "1", "stops": ["X", "Y"], "is_roundtrip": true}
		],
		"render_settings": {
			"width": 600, "height": 400, "padding": 30,
			"line_width": 14, "stop_radius": 5,
			"underlayer_color": "white", "underlayer_width": 3,
			"color_palette": ["green", [255, 160, 0]]
		},
		"routing_settings": {"bus_wait_time": 6, "bus_velocity": 40},
		"serialization_settings": {"file": "` + strings.ReplaceAll(archivePath, `\`, `\\`) + `"}
	}`

	require.NoError(t, makeBase(strings.NewReader(makeBaseInput)))

	processInput := `{
		"stat_requests": [
			{"id": 1, "type": "Bus", "name": "1"},
			{"id": 2, "type": "Stop", "name": "X"},
			{"id": 3, "type": "Route", "from": "X", "to": "Y"},
			{"id": 4, "type": "Stop", "name": "nowhere"},
			{"id": 5, "type": "Map"}
		],
		"serialization_settings": {"file": "` + strings.ReplaceAll(archivePath, `\`, `\\`) + `"}
	}`

	var out bytes.Buffer
	require.NoError(t, processRequests(strings.NewReader(processInput), &out))

	var responses []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &responses))
	require.Len(t, responses, 5)

	assert.Equal(t, float64(1), responses[0]["request_id"])
	assert.Equal(t, float64(1000), responses[0]["route_length"])
	assert.Equal(t, float64(2), responses[0]["stop_count"])

	assert.Equal(t, []interface{}{"1"}, responses[1]["buses"])

	assert.Equal(t, float64(3), responses[2]["request_id"])
	assert.InDelta(t, 7.5, responses[2]["total_time"], 1e-6)
	items := responses[2]["items"].([]interface{})
	require.Len(t, items, 2)
	wait := items[0].(map[string]interface{})
	assert.Equal(t, "Wait", wait["type"])
	assert.Equal(t, "X", wait["stop_name"])
	ride := items[1].(map[string]interface{})
	assert.Equal(t, "Bus", ride["type"])
	assert.Equal(t, "1", ride["bus"])

	assert.Equal(t, "not found", responses[3]["error_message"])

	mapSVG, ok := responses[4]["map"].(string)
	require.True(t, ok)
	assert.Contains(t, mapSVG, "<svg")
}
