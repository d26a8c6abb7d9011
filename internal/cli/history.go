package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teamcutter/patches/internal/config"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var limit int
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "history [name]",
		Short: "Show past detections",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			hist, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer hist.Close()

			out := cmd.OutOrStdout()

			if clearAll {
				if err := hist.Clear(); err != nil {
					return fmt.Errorf("failed to clear history: %w", err)
				}
				fmt.Fprintf(out, "%s History cleared\n", green("✓"))
				return nil
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			}

			detections, err := hist.List(name, limit)
			if err != nil {
				return err
			}

			if len(detections) == 0 {
				fmt.Fprintf(out, "%s No detections recorded\n", dim("○"))
				return nil
			}

			for _, d := range detections {
				fmt.Fprintf(out, "%s %s %s\n",
					dim(d.CheckedAt.Local().Format(time.DateTime)), statusLine(d), dim("("+d.Strategy+")"))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most n detections (0 for all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all recorded detections")
	return cmd
}
