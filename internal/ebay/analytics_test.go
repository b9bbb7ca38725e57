package ebay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	token string
	err   error
}

func (f fakeTokens) Token(_ context.Context) (string, error) {
	return f.token, f.err
}

const analyticsJSON = `{
	"rateLimits": [
		{
			"apiContext": "buy",
			"apiName": "browse",
			"apiVersion": "v1",
			"resources": [
				{
					"name": "buy.browse",
					"rates": [
						{
							"count": 1200,
							"limit": 5000,
							"remaining": 3800,
							"reset": "2026-03-02T00:00:00.000Z",
							"timeWindow": 86400
						}
					]
				}
			]
		}
	]
}`

func TestAnalyticsClient_GetBrowseQuota(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))

			q := r.URL.Query()
			assert.Equal(t, "buy", q.Get("api_context"))
			assert.Equal(t, "browse", q.Get("api_name"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(analyticsJSON))
		}),
	)
	defer srv.Close()

	client := NewAnalyticsClient(
		fakeTokens{token: "app-token"},
		Endpoints{},
		WithAnalyticsURL(srv.URL),
	)

	state, err := client.GetBrowseQuota(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1200), state.Count)
	assert.Equal(t, int64(5000), state.Limit)
	assert.Equal(t, int64(3800), state.Remaining)
	assert.Equal(t, 24*time.Hour, state.TimeWindow)
	assert.Equal(t, 2026, state.ResetAt.Year())
}

func TestAnalyticsClient_GetBrowseQuota_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":[{"errorId":131003,"message":"insufficient permissions"}]}`))
		}),
	)
	defer srv.Close()

	client := NewAnalyticsClient(
		fakeTokens{token: "app-token"},
		Endpoints{},
		WithAnalyticsURL(srv.URL),
	)

	_, err := client.GetBrowseQuota(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestExtractBrowseQuota(t *testing.T) {
	t.Parallel()

	resetAt := "2026-03-02T00:00:00.000Z"

	tests := []struct {
		name       string
		resp       rateLimitResponse
		wantErr    bool
		errContain string
	}{
		{
			name: "resource found",
			resp: rateLimitResponse{
				RateLimits: []rateLimitEntry{
					{
						Resources: []resource{
							{
								Name: "buy.browse",
								Rates: []quotaRate{
									{Count: 1, Limit: 5000, Remaining: 4999, Reset: resetAt, TimeWindow: 86400},
								},
							},
						},
					},
				},
			},
		},
		{
			name: "resource missing",
			resp: rateLimitResponse{
				RateLimits: []rateLimitEntry{
					{Resources: []resource{{Name: "buy.feed"}}},
				},
			},
			wantErr:    true,
			errContain: "not found",
		},
		{
			name: "resource without rates",
			resp: rateLimitResponse{
				RateLimits: []rateLimitEntry{
					{Resources: []resource{{Name: "buy.browse"}}},
				},
			},
			wantErr:    true,
			errContain: "no rates",
		},
		{
			name: "unparseable reset time",
			resp: rateLimitResponse{
				RateLimits: []rateLimitEntry{
					{
						Resources: []resource{
							{
								Name:  "buy.browse",
								Rates: []quotaRate{{Reset: "not-a-time"}},
							},
						},
					},
				},
			},
			wantErr:    true,
			errContain: "parsing reset time",
		},
		{
			name:       "empty response",
			resp:       rateLimitResponse{},
			wantErr:    true,
			errContain: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			state, err := extractBrowseQuota(tt.resp)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(5000), state.Limit)
		})
	}
}
