package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	apiclient "github.com/donaldgifford/listing-manager/internal/api/client"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printOffersTable(result *apiclient.SearchResult) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("TITLE\tPRICE\tSHIPPING\tTOTAL\n")
	for i := range result.Offers {
		o := &result.Offers[i]
		tw.writef("%s\t%.2f\t%.2f\t%.2f\n",
			truncate(o.Title, 50),
			o.Price,
			o.Shipping,
			o.Total(),
		)
	}
	tw.writef("\n%d of %d results\n", len(result.Offers), result.Total)
	return tw.finish()
}

func printPricing(result *apiclient.PricingResult) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Comparables:\t%d\n", result.Stats.Count)
	tw.writef("Min:\t%.2f\n", result.Stats.Min)
	tw.writef("Max:\t%.2f\n", result.Stats.Max)
	tw.writef("Mean:\t%.2f\n", result.Stats.Mean)
	tw.writef("Median:\t%.2f\n", result.Stats.Median)
	tw.writef("Suggested (gross):\t%.2f\n", result.SuggestedGross)
	tw.writef("Suggested (net):\t%.2f (VAT %.0f%%)\n",
		result.SuggestedNet, result.VATRate*100)
	return tw.finish()
}

func printPublishResult(result *domain.PublishResult) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("SKU:\t%s\n", result.SKU)
	tw.writef("Offer ID:\t%s\n", result.OfferID)
	tw.writef("Listing ID:\t%s\n", result.ListingID)
	if !result.Succeeded() {
		tw.writef("Failed step:\t%s\n", result.FailedStep)
		tw.writef("Message:\t%s\n", result.Message)
	}
	return tw.finish()
}

func printHistoryTable(result *apiclient.HistoryResult) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("CREATED\tSKU\tOFFER\tLISTING\tFAILED STEP\tMESSAGE\n")
	for i := range result.Attempts {
		a := &result.Attempts[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			a.CreatedAt.Format("2006-01-02 15:04:05"),
			a.SKU,
			a.OfferID,
			a.ListingID,
			a.FailedStep,
			truncate(a.Message, 40),
		)
	}
	tw.writef("\n%d of %d attempts\n", len(result.Attempts), result.Total)
	return tw.finish()
}

func printStatus(session *apiclient.SessionStatus, quota *apiclient.QuotaStatus) error {
	tw := newTabWriter(os.Stdout)

	tw.writef("Connected:\t%v\n", session.Connected)
	if session.ExpiresAt != nil {
		tw.writef("Token expires:\t%s\n", session.ExpiresAt.Format("2006-01-02 15:04:05"))
	}
	if session.RefreshExpiresAt != nil {
		tw.writef("Refresh expires:\t%s\n", session.RefreshExpiresAt.Format("2006-01-02 15:04:05"))
	}
	if session.Connected {
		tw.writef("Needs refresh:\t%v\n", session.NeedsRefresh)
		tw.writef("Refresh token:\t%v\n", session.HasRefreshToken)
	}

	tw.writef("\nDaily quota:\t%d/%d used\n", quota.DailyUsed, quota.DailyLimit)
	tw.writef("Window resets:\t%s\n", quota.ResetAt.Format("2006-01-02 15:04:05"))
	if quota.Upstream != nil {
		tw.writef("Upstream remaining:\t%d/%d\n",
			quota.Upstream.Remaining, quota.Upstream.Limit)
	}

	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
