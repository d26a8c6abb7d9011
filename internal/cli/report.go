package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teamcutter/patches/internal/report"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <file>",
		Short: "Print a report written by scan --output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.Read(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", cyan("host:"), r.Host)
			fmt.Fprintf(out, "%s %s\n\n", cyan("generated:"), r.GeneratedAt.Local().Format(time.DateTime))

			for _, d := range r.Detections {
				fmt.Fprintln(out, statusLine(d))
			}

			fmt.Fprintf(out, "\n%s of %s package(s) installed\n", green(len(r.Installed())), green(len(r.Detections)))
			return nil
		},
	}
}
