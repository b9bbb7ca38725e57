package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/listing-manager/internal/ebay"
)

// QuotaSource exposes the most recent upstream quota observation. Nil
// state with a zero time means no successful poll yet.
type QuotaSource interface {
	Last() (*ebay.QuotaState, time.Time)
}

// QuotaHandler provides the eBay API quota status endpoint, combining the
// local rate limiter window with the last Analytics API observation.
type QuotaHandler struct {
	rl     *ebay.RateLimiter
	source QuotaSource
}

// NewQuotaHandler creates a new QuotaHandler. Either dependency may be nil;
// the corresponding section is omitted from the response.
func NewQuotaHandler(rl *ebay.RateLimiter, source QuotaSource) *QuotaHandler {
	return &QuotaHandler{rl: rl, source: source}
}

// UpstreamQuota is the Analytics API view of the Browse quota.
type UpstreamQuota struct {
	Limit      int64     `json:"limit"      example:"5000" doc:"Upstream daily call limit"`
	Remaining  int64     `json:"remaining"  example:"4858" doc:"Upstream calls remaining"`
	ResetAt    time.Time `json:"reset_at"   doc:"When the upstream window resets"`
	ObservedAt time.Time `json:"observed_at" doc:"When this state was last polled"`
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		DailyLimit int64     `json:"daily_limit" example:"5000" doc:"Configured local daily API call limit"`
		DailyUsed  int64     `json:"daily_used"  example:"142"  doc:"API calls used in the current local 24-hour window"`
		Remaining  int64     `json:"remaining"   example:"4858" doc:"API calls remaining in the current local window"`
		ResetAt    time.Time `json:"reset_at"    doc:"When the current local window expires"`

		Upstream *UpstreamQuota `json:"upstream,omitempty" doc:"Last observed upstream quota state, when polling is enabled"`
	}
}

// GetQuota returns the current eBay API quota status.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}

	if h.rl != nil {
		resp.Body.DailyLimit = h.rl.MaxDaily()
		resp.Body.DailyUsed = h.rl.DailyCount()
		resp.Body.Remaining = h.rl.Remaining()
		resp.Body.ResetAt = h.rl.ResetAt()
	}

	if h.source != nil {
		if state, observedAt := h.source.Last(); state != nil {
			resp.Body.Upstream = &UpstreamQuota{
				Limit:      state.Limit,
				Remaining:  state.Remaining,
				ResetAt:    state.ResetAt,
				ObservedAt: observedAt,
			}
		}
	}

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get eBay API quota status",
		Description: "Returns the local rate limit window plus the last observed upstream quota state.",
		Tags:        []string{"ebay"},
	}, h.GetQuota)
}
