package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teamcutter/patches/internal/config"
	"github.com/teamcutter/patches/internal/detector"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var directory string

	cmd := &cobra.Command{
		Use:   "list <name>",
		Short: "List the installed versions of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if directory == "" {
				directory = cfg.CellarDir
			}

			name := args[0]
			versions, err := detector.New(detector.WithBaseDir(directory)).Versions(name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(versions) == 0 {
				fmt.Fprintf(out, "%s %s is not installed\n", dim("○"), name)
				return nil
			}

			fmt.Fprintf(out, "Installed versions of %s:\n\n", bold(name))
			for i, v := range versions {
				line := fmt.Sprintf(" %s", bold(fmt.Sprintf("%s-%s", name, v)))
				if i == 0 {
					line += fmt.Sprintf("  %s", yellow("latest"))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", "", "A directory to search for packages in")
	return cmd
}
