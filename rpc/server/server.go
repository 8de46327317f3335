package server

import (
	"fmt"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/ValentinKolb/dCount/lib/store/dstore"
	"github.com/ValentinKolb/dCount/lib/store/lstore"
	"github.com/ValentinKolb/dCount/rpc/common"
	"github.com/ValentinKolb/dCount/rpc/serializer"
	"github.com/ValentinKolb/dCount/rpc/transport"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server
// It contains the counter store it encapsulates and the adapter
// that handles requests for the store
type serverShard struct {
	Store   store.ICounterStore
	Adapter IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	// Create shards map
	shardMap := xsync.NewMapOf[uint64, serverShard]()

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     shardMap,
	}
}

// RPCServer serves the counter shards of a node
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
	nodeHost   *dragonboat.NodeHost
}

// handle decodes a request, lets the shard adapter process it and encodes the response
func (s *RPCServer) handle(shardId uint64, req []byte) []byte {
	var msg common.Message
	var respMsg common.Message

	// Get appropriate shard
	shard, ok := s.shards.Load(shardId)

	// Case shard does not exist -> error
	if !ok {
		respMsg = common.Message{
			MsgType: common.MsgTError,
			Err:     fmt.Sprintf("shard %d not found", shardId),
		}
	} else {
		// Decode the request
		err := s.serializer.Deserialize(req, &msg)

		if err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to deserialize request: %s", err),
			}
		} else {
			// Let the adapter handle the request
			respMsg = *shard.Adapter.Handle(&msg, shard.Store)
		}
	}

	// Return result
	val, err := s.serializer.Serialize(respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
	}
	return val
}

// init creates all shards and registers the transport handler
func (s *RPCServer) init() error {

	// Create the Dragonboat NodeHost
	if s.config.HasReplicatedShard() {
		// Only create the NodeHost if we have replicated shards
		nodeHost, err := dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
		if err != nil {
			return fmt.Errorf("failed to create node host: %w", err)
		}
		s.nodeHost = nodeHost
	}

	// Configure the timeout for the distributed store
	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	// CREATE SHARDS

	/*
		Note: A single RPC Server can have any number of replicated and or local shards.
		The following loop creates all the shards and stores them for the RPC server.
	*/

	for _, shardConfig := range s.config.Shards {
		if _, exists := s.shards.Load(shardConfig.ShardID); exists {
			return fmt.Errorf("duplicate shard id %d", shardConfig.ShardID)
		}

		switch shardConfig.Type {
		case common.ShardTypeLocalCounter:
			s.shards.Store(shardConfig.ShardID, serverShard{
				Store:   lstore.NewLocalStore(),
				Adapter: NewICounterStoreServerAdapter(),
			})
			Logger.Infof("created local counter store for shard %d", shardConfig.ShardID)

		case common.ShardTypeReplicatedCounter:
			if s.nodeHost == nil {
				return fmt.Errorf("node host is nil, cannot create replicated store")
			}

			// Start Raft for the shard
			if err := s.nodeHost.StartConcurrentReplica(s.config.ClusterMembers, false, dstore.CreateStateMachineFactory(), s.config.ToDragonboatConfig(shardConfig.ShardID)); err != nil {
				return fmt.Errorf("failed to start shard %d: %w", shardConfig.ShardID, err)
			}

			s.shards.Store(shardConfig.ShardID, serverShard{
				Store:   dstore.NewDistributedStore(s.nodeHost, shardConfig.ShardID, timeout),
				Adapter: NewICounterStoreServerAdapter(),
			})
			Logger.Infof("created replicated counter store for shard %d", shardConfig.ShardID)

		default:
			return fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}
	}

	Logger.Infof("dCount node setup completed successfully")

	// Configure the transport layer
	s.transport.RegisterHandler(s.handle)

	return nil
}

// Serve starts the RPC server
// This function will also initialize the shards and start the transport layer.
// It blocks until Close is called.
func (s *RPCServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// Close stops the transport, closes all shards and stops the raft node host
func (s *RPCServer) Close() error {
	err := s.transport.Close()

	s.shards.Range(func(id uint64, shard serverShard) bool {
		if cerr := shard.Store.Close(); cerr != nil {
			Logger.Warningf("failed to close shard %d: %v", id, cerr)
		}
		return true
	})

	if s.nodeHost != nil {
		s.nodeHost.Close()
	}
	return err
}
