package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harveysanders/picostatus/statusled"
)

// frameLines keeps the last level written to each line.
type frameLines struct {
	high [3]bool
}

func (f *frameLines) SetLine(id statusled.LineID, high bool) { f.high[id] = high }

func (f *frameLines) String() string {
	var b strings.Builder
	for id, sym := range [3]byte{'R', 'G', 'B'} {
		if id > 0 {
			b.WriteByte(' ')
		}
		if f.high[id] {
			b.WriteByte(sym)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func newSimulateCmd() *cobra.Command {
	var (
		status   string
		ticks    int
		switches []string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Print the LED output tick by tick without hardware",
		Long: `Runs the LED state machine on a manual timer and prints which lines are lit ` +
			`after every tick. --at changes the status before a given tick.`,
		Example: `  statusledd simulate --status teal|shortblink --ticks 20
  statusledd simulate --status red|solid --at 5=green|longblink`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ticks < 0 {
				return fmt.Errorf("--ticks must not be negative, got %d", ticks)
			}
			at, err := parseSwitches(switches)
			if err != nil {
				return err
			}

			lines := &frameLines{}
			timer := &statusled.ManualTimer{}
			led := statusled.New(lines, timer)
			led.Initialize()
			if status != "" {
				w, err := statusled.ParseWord(status)
				if err != nil {
					return err
				}
				led.SetStatus(w)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%4s %5s  %s  %s\n", "tick", "phase", "R G B", "status")
			for i := 0; i < ticks; i++ {
				if w, ok := at[i]; ok {
					led.SetStatus(w)
				}
				phase := led.Phase()
				timer.Fire(1)
				fmt.Fprintf(out, "%4d %5d  %s  %s\n", i, phase, lines, led.Status())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "status to show (default blue|shortblink)")
	cmd.Flags().IntVarP(&ticks, "ticks", "n", 2*statusled.CycleTicks, "number of ticks to run")
	cmd.Flags().StringArrayVar(&switches, "at", nil, "TICK=STATUS, set STATUS before tick TICK (repeatable)")
	return cmd
}

// parseSwitches reads --at values of the form "5=green|solid".
func parseSwitches(specs []string) (map[int]statusled.Word, error) {
	at := make(map[int]statusled.Word, len(specs))
	for _, s := range specs {
		tick, word, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("--at %q: want TICK=STATUS", s)
		}
		n, err := strconv.Atoi(strings.TrimSpace(tick))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("--at %q: bad tick", s)
		}
		w, err := statusled.ParseWord(word)
		if err != nil {
			return nil, fmt.Errorf("--at %q: %w", s, err)
		}
		at[n] = w
	}
	return at, nil
}
