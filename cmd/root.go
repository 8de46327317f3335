package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dCount/cmd/counter"
	"github.com/ValentinKolb/dCount/cmd/node"
	"github.com/ValentinKolb/dCount/cmd/serve"
	"github.com/ValentinKolb/dCount/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dcount",
		Short: "distributed visit counter",
		Long: fmt.Sprintf(`dCount (v%s)

A distributed visit counter written in Go. Visits are buffered in memory,
flushed periodically to backing nodes chosen by consistent hashing and
read through a short lived cache.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dCount",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dCount v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(node.NodeCmd)
	RootCmd.AddCommand(counter.CounterCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use for node connections (binary, cbor, json, gob)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use for node connections (tcp, unix, http)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
