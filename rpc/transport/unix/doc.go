// Package unix runs the framed counter protocol of the base package over Unix domain
// sockets. It is meant for a counter service and its node on the same host, for example
// a sidecar node reached with --transport unix.
//
// The default buffer size is 64 KB. incr and get frames are tiny, so the buffer mostly
// matters for the perf command running many requests per connection.
package unix
