package cmd

import (
	"github.com/bnema/pnr-status-cli/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "pnr",
		Short:         "PNR status CLI: look up and follow train reservations",
		Long:          "pnr validates 10-digit PNR numbers, shows the live status of a reservation, keeps it refreshed, and can pick the PNR out of an inbound message.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr (or to log.file)")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		logger, err := logging.New(logging.Config{
			Level:   app.cfg.LogLevel,
			File:    app.cfg.LogFile,
			Verbose: verbose,
			Quiet:   !verbose,
		})
		if err != nil {
			return err
		}
		app.logger = logger.With(zap.String("command", cmd.Name()))
		return nil
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		_ = app.logger.Sync()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLookupCmd(app),
		newExtractCmd(),
		newRecordsCmd(app),
		newWatchCmd(app),
		newSendCmd(app),
	)

	return rootCmd
}
