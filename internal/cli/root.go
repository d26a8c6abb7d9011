package cli

import (
	"github.com/spf13/cobra"

	"github.com/teamcutter/patches/internal/config"
	"github.com/teamcutter/patches/internal/detector"
	"github.com/teamcutter/patches/internal/domain"
	"github.com/teamcutter/patches/internal/log"
	"github.com/teamcutter/patches/internal/scanner"
	"github.com/teamcutter/patches/internal/state"
)

type globalOptions struct {
	configPath string
	debug      bool
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := newCheckCmd(opts)
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.patches/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		log.SetDebug(opts.debug)
	}

	rootCmd.AddCommand(
		newScanCmd(opts),
		newListCmd(opts),
		newHistoryCmd(opts),
		newReportCmd(),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func openHistory(cfg *config.Config) (domain.History, error) {
	return state.Open(cfg.HistoryBackend, cfg.HistoryDB, cfg.HistoryFile)
}

// newScanner wires the Cellar detector for dir (or the configured cellar when
// dir is empty) to the configured history. The returned func releases the
// history store.
func newScanner(opts *globalOptions, dir string) (*scanner.Scanner, *config.Config, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	if dir == "" {
		dir = cfg.CellarDir
	}
	cellar := detector.New(detector.WithBaseDir(dir))

	var hist domain.History
	release := func() {}
	if cfg.RecordHistory {
		hist, err = openHistory(cfg)
		if err != nil {
			log.Warn("history disabled", "err", err)
			hist = nil
		} else {
			release = func() {
				if err := hist.Close(); err != nil {
					log.Warn("failed to close history", "err", err)
				}
			}
		}
	}

	return scanner.New(cellar, hist, cfg.MaxParallel), cfg, release, nil
}
