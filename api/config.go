package api

import (
	"fmt"
	"github.com/ValentinKolb/dCount/lib/counter"
	"github.com/ValentinKolb/dCount/rpc/common"
	"strings"
	"time"
)

// ServiceConfig holds all configuration parameters of a dcount service instance
type ServiceConfig struct {
	// backing nodes and ring
	Nodes        []counter.NodeConfig
	VirtualNodes int
	RingHash     string

	// buffering and caching
	CacheTTLSecond      int
	FlushIntervalSecond int
	DegradedReads       bool

	// HTTP API
	Endpoint       string
	ProcessMetrics bool

	// Logging configuration
	LogLevel string

	// Client holds the transport settings used for every node connection
	Client common.ClientConfig
}

// ToCounterConfig converts the service configuration to the counter.Config
func (c *ServiceConfig) ToCounterConfig() counter.Config {
	return counter.Config{
		Nodes:         c.Nodes,
		VirtualNodes:  c.VirtualNodes,
		RingHash:      c.RingHash,
		CacheTTL:      time.Duration(c.CacheTTLSecond) * time.Second,
		FlushInterval: time.Duration(c.FlushIntervalSecond) * time.Second,
		DegradedReads: c.DegradedReads,
	}
}

// String returns a formatted string representation of the configuration
func (c *ServiceConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("HTTP API")
	addField("Endpoint", c.Endpoint)
	addField("Process Metrics", fmt.Sprintf("%t", c.ProcessMetrics))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	addSection("Counter")
	addField("Virtual Nodes", fmt.Sprintf("%d", c.VirtualNodes))
	addField("Ring Hash", c.RingHash)
	addField("Cache TTL", fmt.Sprintf("%d sec", c.CacheTTLSecond))
	addField("Flush Interval", fmt.Sprintf("%d sec", c.FlushIntervalSecond))
	addField("Degraded Reads", fmt.Sprintf("%t", c.DegradedReads))

	addSection("Nodes")
	for _, n := range c.Nodes {
		addField(n.ID, fmt.Sprintf("%s (shard %d)", n.Endpoint, n.ShardID))
	}

	sb.WriteString(c.Client.String())
	return sb.String()
}
