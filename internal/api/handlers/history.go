package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/listing-manager/internal/store"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// HistoryHandler serves the publish journal.
type HistoryHandler struct {
	journal store.Store
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(journal store.Store) *HistoryHandler {
	return &HistoryHandler{journal: journal}
}

// HistoryInput is the query input for the history endpoint.
type HistoryInput struct {
	SKU        string `query:"sku" doc:"Filter attempts to one SKU"`
	FailedOnly bool   `query:"failed_only" doc:"Only return failed attempts"`
	Limit      int    `query:"limit" minimum:"1" maximum:"200" doc:"Page size (default 50)"`
	Offset     int    `query:"offset" minimum:"0" doc:"Page offset"`
}

// HistoryOutput is the response body for the history endpoint.
type HistoryOutput struct {
	Body struct {
		Attempts []domain.PublishAttempt `json:"attempts" doc:"Publish attempts, newest first"`
		Total    int                     `json:"total" doc:"Total attempts matching the filter"`
	}
}

// ListHistory returns publish attempts newest-first. With the no-op
// journal the list is always empty; the endpoint shape does not change.
func (h *HistoryHandler) ListHistory(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	attempts, total, err := h.journal.ListPublishAttempts(ctx, &store.AttemptQuery{
		SKU:        input.SKU,
		FailedOnly: input.FailedOnly,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("listing publish attempts: " + err.Error())
	}

	out := &HistoryOutput{}
	out.Body.Attempts = attempts
	out.Body.Total = total
	return out, nil
}

// RegisterHistoryRoutes registers the history endpoint with the Huma API.
func RegisterHistoryRoutes(api huma.API, h *HistoryHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "List publish attempts",
		Description: "Returns the publish journal, newest first.",
		Tags:        []string{"publish"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListHistory)
}
