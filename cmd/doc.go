// Package cmd implements the command-line interface of dCount.
//
// The package is organized into several subpackages:
//
//   - serve: Starts the visit counter service with its HTTP API
//   - node: Starts a backing node serving counter shards via RPC
//   - counter: Commands for talking to a backing node directly (incr, get, perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// A minimal local setup:
//
//	dcount node --endpoint localhost:9090 &
//	dcount serve --nodes A=localhost:9090
//
// See dcount -help for a list of all commands.
package cmd
