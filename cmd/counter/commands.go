package counter

import (
	"fmt"
	"github.com/spf13/cobra"
	"strconv"
)

var (
	incrCmd = &cobra.Command{
		Use:   "incr [key] [delta]",
		Short: "Adds delta (default 1) to the counter of a key and prints the new total",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer rpcStore.Close()

			delta := int64(1)
			if len(args) == 2 {
				var err error
				if delta, err = strconv.ParseInt(args[1], 10, 64); err != nil {
					return fmt.Errorf("delta must be a number: %w", err)
				}
			}

			total, err := rpcStore.Incr(args[0], delta)
			if err != nil {
				return err
			}
			fmt.Println(total)
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Gets the counter of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer rpcStore.Close()

			total, ok, err := rpcStore.Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("counter does not exist")
				return nil
			}
			fmt.Println(total)
			return nil
		},
	}
)
