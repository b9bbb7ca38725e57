package cmd

import (
	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/listing-manager/internal/api/client"
)

func searchCmd() *cobra.Command {
	var (
		searchLimit    int
		searchCategory string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search competing eBay listings",
		Long:  "Sends a search request to the API server and displays competitor offers.",
		Example: `  listing-manager search "DDR4 ECC 32GB RDIMM"
  listing-manager search "Dell PowerEdge R630" --limit 25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newClient().Search(cmd.Context(), apiclient.SearchRequest{
				Query:      args[0],
				CategoryID: searchCategory,
				Limit:      searchLimit,
			})
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(result)
			}
			return printOffersTable(result)
		},
	}
	cmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
	cmd.Flags().StringVar(&searchCategory, "category", "", "eBay category ID")

	return cmd
}

func pricingCmd() *cobra.Command {
	var (
		pricingLimit    int
		pricingCategory string
	)

	cmd := &cobra.Command{
		Use:   "pricing <query>",
		Short: "Aggregate competitor prices for a query",
		Long: "Searches comparable listings and displays price statistics plus\n" +
			"the suggested price derived from them.",
		Example: `  listing-manager pricing "DDR4 ECC 32GB RDIMM" --limit 50`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newClient().GetPricing(cmd.Context(), apiclient.SearchRequest{
				Query:      args[0],
				CategoryID: pricingCategory,
				Limit:      pricingLimit,
			})
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(result)
			}
			return printPricing(result)
		},
	}
	cmd.Flags().IntVar(&pricingLimit, "limit", 50, "maximum comparables to aggregate")
	cmd.Flags().StringVar(&pricingCategory, "category", "", "eBay category ID")

	return cmd
}
