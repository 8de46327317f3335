package client

import (
	"github.com/ValentinKolb/dCount/lib/counter"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/ValentinKolb/dCount/lib/store/lstore"
	"github.com/ValentinKolb/dCount/rpc/common"
	"github.com/ValentinKolb/dCount/rpc/serializer"
	"github.com/ValentinKolb/dCount/rpc/transport"
)

// NewRPCStore creates a new RPC counter store
// The function takes a shard ID, a config, a transport and a serializer as parameters
// It returns a store.ICounterStore and an error
func NewRPCStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.ICounterStore, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC store
	s := rpcStore{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC store
	return &s, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Incr(key string, delta int64) (total int64, err error) {
	req := common.NewIncrRequest(key, delta)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return resp.Value, nil
}

func (i *rpcStore) Get(key string) (total int64, loaded bool, err error) {
	req := common.NewGetRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return 0, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcStore) Close() error {
	return i.transport.Close()
}

// NodeConnector returns a counter.NodeConnector that connects to counter nodes via RPC.
// Every node gets its own transport created by newTransport, so a node failure never
// affects requests to other nodes. Nodes with the endpoint counter.LocalEndpoint are
// served by an in-process store. Node requests are never retried, a retried increment
// whose response was lost would be counted twice.
func NodeConnector(
	config common.ClientConfig,
	newTransport func() transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) counter.NodeConnector {
	return func(node counter.NodeConfig) (store.ICounterStore, error) {
		if node.Endpoint == counter.LocalEndpoint {
			Logger.Infof("node %s is served by an in-process store", node.ID)
			return lstore.NewLocalStore(), nil
		}

		nodeConfig := config
		nodeConfig.Transport.Endpoints = []string{node.Endpoint}
		nodeConfig.Transport.RetryCount = 1
		return NewRPCStore(node.ShardID, nodeConfig, newTransport(), serializer)
	}
}
