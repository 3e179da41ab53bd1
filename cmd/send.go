package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/pnr-status-cli/internal/adapters/messages/inbox"
	natssource "github.com/bnema/pnr-status-cli/internal/adapters/messages/nats"
	"github.com/bnema/pnr-status-cli/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSendCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>",
		Short: "Deliver a message to the configured message source",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			switch app.cfg.Source {
			case config.SourceNATS:
				pub, err := natssource.NewPublisher(app.cfg.NATSURL, app.cfg.NATSSubject)
				if err != nil {
					return fmt.Errorf("connect publisher: %w", err)
				}
				defer func() { _ = pub.Close() }()
				if err := pub.Publish(cmd.Context(), text); err != nil {
					return err
				}
				app.logger.Debug("message published", zap.String("subject", app.cfg.NATSSubject))
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "published to %s\n", app.cfg.NATSSubject)
				return err
			case config.SourceInbox:
				path, err := inbox.Drop(app.cfg.InboxDir, text)
				if err != nil {
					return err
				}
				app.logger.Debug("message dropped", zap.String("path", path))
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return err
			default:
				return errNoMessageSource
			}
		},
	}
}
