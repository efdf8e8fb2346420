package jsonio

// BusResponse is the success shape for a Bus stat request.
type BusResponse struct {
	RequestID       int     `json:"request_id"`
	RouteLength     float64 `json:"route_length"`
	Curvature       float64 `json:"curvature"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}

// StopResponse is the success shape for a Stop stat request.
type StopResponse struct {
	RequestID int      `json:"request_id"`
	Buses     []string `json:"buses"`
}

// MapResponse is the success shape for a Map stat request.
type MapResponse struct {
	RequestID int    `json:"request_id"`
	Map       string `json:"map"`
}

// WaitItem is a Route response item for waiting at a stop.
type WaitItem struct {
	Type     string  `json:"type"`
	StopName string  `json:"stop_name"`
	Time     float64 `json:"time"`
}

// BusItem is a Route response item for riding a bus.
type BusItem struct {
	Type      string  `json:"type"`
	Bus       string  `json:"bus"`
	SpanCount int     `json:"span_count"`
	Time      float64 `json:"time"`
}

// RouteResponse is the success shape for a Route stat request. Items
// holds WaitItem/BusItem values; they marshal correctly as-is since
// each already carries its own "type" discriminator field.
type RouteResponse struct {
	RequestID int           `json:"request_id"`
	TotalTime float64       `json:"total_time"`
	Items     []interface{} `json:"items"`
}

// ErrorResponse is the shared failure shape for any stat request whose
// target was not found.
type ErrorResponse struct {
	RequestID    int    `json:"request_id"`
	ErrorMessage string `json:"error_message"`
}
