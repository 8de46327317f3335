package node

import (
	"fmt"
	cmdUtil "github.com/ValentinKolb/dCount/cmd/util"
	"github.com/ValentinKolb/dCount/rpc/common"
	"github.com/ValentinKolb/dCount/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

var (
	nodeCmdConfig = &common.ServerConfig{}
	NodeCmd       = &cobra.Command{
		Use:     "node",
		Short:   "Start a dcount backing node",
		Long:    `Start a backing node that stores counters and serves them via RPC. The configuration can be set via command line flags or environment variables. The format of the environment variables is DCOUNT_<flag> (e.g. DCOUNT_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitClientConfig)

	// add flags
	key := "shards"
	NodeCmd.PersistentFlags().String(key, "1=lstore", cmdUtil.WrapString("Comma-separated list of shards to serve. Format: ID=TYPE where TYPE is one of: lstore (in memory), dstore (raft replicated)"))

	key = "rtt-millisecond"
	NodeCmd.PersistentFlags().Int(key, 100, cmdUtil.WrapString("(dstore only) RTTMillisecond defines the average Round Trip Time (RTT) in milliseconds between two NodeHost instances. \nOther raft configuration parameters (ElectionRTT=value*10, HeartbeatRTT=value*1) are derived from this value"))

	key = "snapshot-entries"
	NodeCmd.PersistentFlags().Int(key, 1000, cmdUtil.WrapString("(dstore only) SnapshotEntries defines how often the state machine should be snapshotted automatically. It is defined in terms of the number of applied Raft log entries. SnapshotEntries can be set to 0 to disable such automatic snapshotting (not recommended)"))

	key = "compaction-overhead"
	NodeCmd.PersistentFlags().Int(key, 500, cmdUtil.WrapString("(dstore only) CompactionOverhead defines the number of log entries to keep after a snapshot. Recommended value is about 1/2 of SnapshotEntries"))

	key = "data-dir"
	NodeCmd.PersistentFlags().String(key, "data", cmdUtil.WrapString("(dstore only) DataDir is the directory used for storing the raft log and snapshots"))

	key = "replica-id"
	NodeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(dstore only) ReplicaID is the unique identifier for this NodeHost instance (e.g. 'node-1')"))

	key = "cluster-members"
	NodeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(dstore only) ClusterMembers is a comma-separated list of NodeHost addresses in the format 'node-1=localhost:63001,node-2=localhost:63002,...'"))

	key = "timeout"
	NodeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds for writing responses and raft proposals"))

	key = "endpoint"
	NodeCmd.PersistentFlags().String(key, "0.0.0.0:9090", cmdUtil.WrapString("The address on which the node will listen (e.g. localhost:9090, /tmp/dcount.sock, ...)"))

	key = "workers-per-conn"
	NodeCmd.PersistentFlags().Int(key, 16, cmdUtil.WrapString("Maximum number of concurrent requests per connection (tcp and unix only)"))

	key = "buffer-size"
	NodeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Size of the pooled read buffers in KB (0 = transport default, tcp and unix only)"))

	key = "log-level"
	NodeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse shards
	shards, err := cmdUtil.ParseShards(viper.GetString("shards"))
	if err != nil {
		return err
	}
	nodeCmdConfig.Shards = shards

	// read the configuration from the command line flags and environment variables
	nodeCmdConfig.RTTMillisecond = viper.GetUint64("rtt-millisecond")
	nodeCmdConfig.SnapshotEntries = viper.GetUint64("snapshot-entries")
	nodeCmdConfig.CompactionOverhead = viper.GetUint64("compaction-overhead")
	nodeCmdConfig.DataDir = viper.GetString("data-dir")
	nodeCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	nodeCmdConfig.Transport.Endpoint = viper.GetString("endpoint")
	nodeCmdConfig.Transport.WorkersPerConn = viper.GetInt("workers-per-conn")
	nodeCmdConfig.Transport.BufferSize = viper.GetInt("buffer-size") * 1024
	nodeCmdConfig.LogLevel = viper.GetString("log-level")

	// raft settings are only needed for replicated shards
	if !nodeCmdConfig.HasReplicatedShard() {
		return nil
	}

	// parse replica id
	id := viper.GetString("replica-id")
	if id == "" {
		return fmt.Errorf("replica-id is required for dstore shards")
	}
	nodeCmdConfig.ReplicaID = cmdUtil.HashID(id)

	// parse cluster members
	clusterMembers := viper.GetString("cluster-members")
	if clusterMembers == "" {
		return fmt.Errorf("cluster-members is required for dstore shards")
	}
	nodeCmdConfig.ClusterMembers, err = cmdUtil.ParseClusterMembers(clusterMembers)
	if err != nil {
		return err
	}

	// test if the replica id is in the cluster members
	if _, ok := nodeCmdConfig.ClusterMembers[nodeCmdConfig.ReplicaID]; !ok {
		return fmt.Errorf("no address found for replica %s in cluster members (%s)", id, strings.TrimSpace(clusterMembers))
	}

	return nil
}

// run starts the dcount node and blocks until SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	if err := common.InitLoggers(nodeCmdConfig.LogLevel); err != nil {
		return err
	}

	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(
		*nodeCmdConfig,
		t,
		s,
	)

	// stop the node on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		server.Logger.Infof("shutting down node")
		if err := serv.Close(); err != nil {
			server.Logger.Errorf("failed to stop node: %v", err)
		}
	}()

	return serv.Serve()
}
