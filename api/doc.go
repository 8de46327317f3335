// Package api exposes a counter.Service over HTTP.
//
// Routes:
//
//	POST /api/v1/counter/visit/{page_id}   record one visit
//	GET  /api/v1/counter/visits/{page_id}  {"visits": N, "served_via": "in_memory" | "remote"}
//	GET  /api/v1/counter/info              instance id, nodes, buffer and cache sizes, flusher state
//	GET  /metrics                          prometheus text format
//	GET  /health                           200 while the server is running
//
// A read whose owning node is unavailable is answered with 503 and the locally
// buffered count, unless the service serves degraded reads.
// With the log level debug every request is logged.
package api
