package serve

import (
	"context"
	"errors"
	"fmt"
	cmdUtil "github.com/ValentinKolb/dCount/cmd/util"
	"github.com/ValentinKolb/dCount/api"
	"github.com/ValentinKolb/dCount/lib/counter"
	"github.com/ValentinKolb/dCount/rpc/client"
	"github.com/ValentinKolb/dCount/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	serveCmdConfig = &api.ServiceConfig{}
	ServeCmd       = &cobra.Command{
		Use:   "serve",
		Short: "Start the dcount visit counter service",
		Long: `Start the visit counter service with its HTTP API. Visits are buffered in memory and
flushed to the backing nodes periodically, reads are served from a short lived cache.
The configuration can be set via command line flags or environment variables. The format
of the environment variables is DCOUNT_<flag> (e.g. DCOUNT_CACHE_TTL=10)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitClientConfig)

	// node connections
	cmdUtil.SetupRPCClientFlags(ServeCmd)

	key := "nodes"
	ServeCmd.PersistentFlags().String(key, "local", cmdUtil.WrapString("Comma-separated list of backing nodes. Format: ID=ENDPOINT, ID/SHARD=ENDPOINT or ENDPOINT. The endpoint 'local' creates an in-process node"))

	key = "shard"
	ServeCmd.PersistentFlags().Uint64(key, 1, cmdUtil.WrapString("Shard ID used on nodes that do not specify one"))

	key = "vnodes"
	ServeCmd.PersistentFlags().Int(key, 100, cmdUtil.WrapString("Number of virtual nodes per backing node on the hash ring"))

	key = "ring-hash"
	ServeCmd.PersistentFlags().String(key, "xxhash", cmdUtil.WrapString("Hash function of the ring (xxhash, murmur3). All instances sharing nodes must use the same value"))

	key = "cache-ttl"
	ServeCmd.PersistentFlags().Int(key, 5, cmdUtil.WrapString("Seconds a count read from a node is served from memory (0 disables the cache)"))

	key = "flush-interval"
	ServeCmd.PersistentFlags().Int(key, 30, cmdUtil.WrapString("Seconds between two flushes of the buffered visits to the backing nodes"))

	key = "degraded-reads"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Serve the locally buffered count instead of an error if the owning node is unavailable"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the HTTP API will listen"))

	key = "process-metrics"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Include go runtime and process metrics in /metrics"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	nodes, err := counter.ParseNodeList(viper.GetString("nodes"), viper.GetUint64("shard"))
	if err != nil {
		return err
	}

	serveCmdConfig.Nodes = nodes
	serveCmdConfig.VirtualNodes = viper.GetInt("vnodes")
	serveCmdConfig.RingHash = viper.GetString("ring-hash")
	serveCmdConfig.CacheTTLSecond = viper.GetInt("cache-ttl")
	serveCmdConfig.FlushIntervalSecond = viper.GetInt("flush-interval")
	serveCmdConfig.DegradedReads = viper.GetBool("degraded-reads")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.ProcessMetrics = viper.GetBool("process-metrics")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Client = *cmdUtil.GetClientConfig()

	if serveCmdConfig.FlushIntervalSecond < 1 {
		return fmt.Errorf("flush-interval must be at least 1 second")
	}
	return serveCmdConfig.ToCounterConfig().Validate()
}

// run starts the service and the HTTP API and blocks until SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	if err := common.InitLoggers(serveCmdConfig.LogLevel); err != nil {
		return err
	}
	api.Logger.Infof(serveCmdConfig.String())

	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	newTransport, err := cmdUtil.GetTransportFactory()
	if err != nil {
		return err
	}

	svc, err := counter.NewService(
		serveCmdConfig.ToCounterConfig(),
		client.NodeConnector(serveCmdConfig.Client, newTransport, s),
	)
	if err != nil {
		return err
	}
	svc.Start()

	httpServer := api.NewServer(svc, *serveCmdConfig)
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case <-stop:
		api.Logger.Infof("shutting down")
	case serveErr = <-errCh:
		api.Logger.Errorf("HTTP API stopped: %v", serveErr)
	}

	// stop accepting visits first, then flush what is buffered and close the nodes
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		api.Logger.Warningf("failed to stop HTTP API: %v", err)
	}

	return errors.Join(serveErr, svc.Stop())
}
