// Package tcp implements the TCP socket transport for the RPC system. It provides
// concrete implementations of the base package's connector interfaces.
//
// This package builds on the base package's transport functionality, inheriting its
// connection pooling, buffer reuse, reconnection and request routing. See the base
// package documentation for details.
//
// Key Components:
//
//   - clientConnector: TCP implementation of base.IClientConnector
//
//   - serverConnector: TCP implementation of base.IServerConnector
//
// Both connectors apply the SocketConf and TCPConf options of their configuration to
// every connection. The default server buffer size is 512 KB.
package tcp
