package counter

import (
	"github.com/ValentinKolb/dCount/cmd/util"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/ValentinKolb/dCount/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcStore store.ICounterStore

	// CounterCommands represents the counter command group
	CounterCommands = &cobra.Command{
		Use:               "counter",
		Short:             "Talk to a backing node directly",
		PersistentPreRunE: setupCounterClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the counter command
	util.SetupRPCClientFlags(CounterCommands)

	CounterCommands.PersistentFlags().Int("shard", 1, util.WrapString("ID of the shard to connect to"))

	// Add subcommands
	CounterCommands.AddCommand(incrCmd)
	CounterCommands.AddCommand(getCmd)
	CounterCommands.AddCommand(perfTestCmd)
}

// setupCounterClient initializes the RPC store client
func setupCounterClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	shardId := util.GetShardID()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the counter store client
	rpcStore, err = client.NewRPCStore(
		shardId,
		*config,
		t,
		s,
	)

	return err
}
