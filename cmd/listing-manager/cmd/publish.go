package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

func publishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <draft.json>",
		Short: "Publish a listing draft",
		Long: "Reads a listing draft from a JSON file and publishes it through\n" +
			"the API server. Requires a seller session (--session).",
		Example: `  listing-manager publish draft.json --session "$LM_SESSION"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) //nolint:gosec // draft path from CLI arg
			if err != nil {
				return fmt.Errorf("reading draft file: %w", err)
			}

			var draft domain.ListingDraft
			if err := json.Unmarshal(data, &draft); err != nil {
				return fmt.Errorf("parsing draft file: %w", err)
			}

			result, err := newClient().Publish(cmd.Context(), &draft)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(result)
			}
			return printPublishResult(result)
		},
	}

	return cmd
}

func historyCmd() *cobra.Command {
	var (
		historySKU    string
		historyFailed bool
		historyLimit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List publish attempts",
		Long:  "Lists the publish journal, newest first. Requires a journal database on the server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := newClient().ListHistory(
				cmd.Context(), historySKU, historyFailed, historyLimit,
			)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(result)
			}
			return printHistoryTable(result)
		},
	}
	cmd.Flags().StringVar(&historySKU, "sku", "", "filter attempts to one SKU")
	cmd.Flags().BoolVar(&historyFailed, "failed", false, "only show failed attempts")
	cmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum attempts to list")

	return cmd
}
