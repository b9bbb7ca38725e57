package cmd

import (
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and quota status",
		Long: "Queries the API server for the seller session state and the\n" +
			"current eBay API quota. Pass --session to check a browser session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()

			session, err := c.GetSessionStatus(cmd.Context())
			if err != nil {
				return err
			}

			quota, err := c.GetQuota(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(map[string]any{
					"session": session,
					"quota":   quota,
				})
			}
			return printStatus(session, quota)
		},
	}
}
