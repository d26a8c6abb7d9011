package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teamcutter/patches/internal/config"
	"github.com/teamcutter/patches/internal/report"
)

func newScanCmd(opts *globalOptions) *cobra.Command {
	var watchlist, directory, output string

	cmd := &cobra.Command{
		Use:   "scan -f <watchlist.toml>",
		Short: "Check every package in a watchlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgs, err := config.LoadWatchlist(watchlist)
			if err != nil {
				return err
			}

			s, _, release, err := newScanner(opts, directory)
			if err != nil {
				return err
			}
			defer release()

			stop := withSpinner(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("Checking %d package(s)...", len(pkgs)))
			results, scanErr := s.Scan(cmd.Context(), pkgs)
			stop()

			out := cmd.OutOrStdout()
			var installed, failed int
			for _, d := range results {
				fmt.Fprintln(out, statusLine(d))
				if d.Installed {
					installed++
				}
				if d.Failed() {
					failed++
				}
			}
			fmt.Fprintf(out, "\n%s of %s package(s) installed\n", green(installed), green(len(results)))

			if output != "" {
				if err := report.Write(output, report.New(results)); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				fmt.Fprintf(out, "%s %s\n", cyan("report:"), output)
			}

			if scanErr != nil {
				return fmt.Errorf("failed to check %d package(s)", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&watchlist, "file", "f", "", "Watchlist TOML file")
	cmd.Flags().StringVarP(&directory, "directory", "d", "", "A directory to search for packages in")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write a JSON report (.gz, .zst and .xz are compressed)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
