// Package http carries counter incr and get messages over plain HTTP.
//
// Every message is POSTed to /{shardID} on the node and the serialized response is the
// body of the reply. The client round-robins over its endpoints and retries a failed
// request on the next one, up to the configured retry count. The counter service sets
// that count to 1 per node, since a node's keys live on that node only.
//
// LoggerMiddleware is also used by the public api when it runs in debug mode.
package http
