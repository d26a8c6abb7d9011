package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teamcutter/patches/internal/domain"
)

const about = "Check if a package is installed with Homebrew"

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var name, version, directory string

	cmd := &cobra.Command{
		Use:   "patches -p <package> -v <version> [-d <directory>]",
		Short: about,
		Long: about + `.

A package counts as installed when <directory>/<package>/<major>.<minor>.<patch>
exists. Pre-release and build metadata are not part of the directory name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := domain.ParsePackage(name, version)
			if err != nil {
				return err
			}

			s, _, release, err := newScanner(opts, directory)
			if err != nil {
				return err
			}
			defer release()

			d, err := s.Check(cmd.Context(), pkg)
			if err != nil {
				return err
			}

			if d.Installed {
				fmt.Fprintln(cmd.OutOrStdout(), "Installed")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Not installed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "package", "p", "", "The name of a package to search for")
	cmd.Flags().StringVarP(&version, "version", "v", "", "The semantic version of the package to search for. E.g. 1.2.3")
	cmd.Flags().StringVarP(&directory, "directory", "d", "", "A directory to search for packages in. Defaults to the Homebrew Cellar")
	_ = cmd.MarkFlagRequired("package")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}
