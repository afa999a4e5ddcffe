package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harveysanders/picostatus/statusled"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <word>...",
		Short: "Show the color and blink mode packed in status words",
		Example: `  statusledd decode 0x6000
  statusledd decode 49155 red|solid`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, arg := range args {
				w, err := statusled.ParseWord(arg)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				s := statusled.Decode(w)
				fmt.Fprintf(out, "word   %#06x\n", uint16(s.Word()))
				fmt.Fprintf(out, "color  %s\n", s.Color)
				fmt.Fprintf(out, "mode   %s\n", s.Mode)
				for id := statusled.LineRed; id <= statusled.LineBlue; id++ {
					fmt.Fprintf(out, "%-6s %s\n", id, onOff(s.Color.Has(id)))
				}
			}
			return nil
		},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
