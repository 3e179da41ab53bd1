package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/pnr-status-cli/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLookupCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lookup <pnr>",
		Short: "Show the current status for a PNR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ValidateIdentifier(args[0])
			if err != nil {
				return fmt.Errorf("invalid PNR: %s", domain.RejectionOf(err).Message())
			}

			record, err := app.provider.Find(id)
			if errors.Is(err, domain.ErrRecordNotFound) {
				app.logger.Info("lookup missed", zap.Stringer("pnr", id))
				return fmt.Errorf("no train found for PNR %s", id)
			}
			if err != nil {
				return fmt.Errorf("unable to fetch train details: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(record)
			}

			rendered, err := app.recordRenderer(record)
			if err != nil {
				return fmt.Errorf("render record: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")

	return cmd
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <text>",
		Short: "Print the PNR found in a message body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ExtractIdentifier(args[0])
			if err != nil {
				return errors.New("no PNR found in message")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
}

func newRecordsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List the PNRs known to the lookup table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, id := range app.provider.Identifiers() {
				record, err := app.provider.Find(id)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(out, "%s  %s\n", id, record.TrainName); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
