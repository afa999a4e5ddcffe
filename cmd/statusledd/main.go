// Command statusledd drives an RGB status LED from a Linux board's GPIO
// header and offers offline tools for status words.
//
//	statusledd run --config /etc/statusled.toml
//	statusledd decode 0x6000
//	statusledd simulate --status magenta|longblink --ticks 20
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "statusledd",
		Short:        "RGB status LED driver",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "statusled.toml", "Path to configuration file")
	root.AddCommand(newRunCmd(), newDecodeCmd(), newSimulateCmd())
	return root
}
