package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteSummarize      = "/summarize"
	RouteCallback       = "/oauth/callback"
	RouteExecutePending = "/execute-pending"
	RouteSample         = "/sample"
	RouteClear          = "/clear"
	RouteLogout         = "/logout"
	RouteMetrics        = "/metrics"
)
