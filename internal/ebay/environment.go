package ebay

import (
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// Endpoints is the set of upstream base URLs for one eBay environment.
// Sandbox and production hostnames are distinct and non-interchangeable;
// a process resolves its set once from configuration.
type Endpoints struct {
	AuthURL      string // user consent page
	TokenURL     string // OAuth2 token endpoint
	APIBaseURL   string // REST API base (browse, sell)
	AnalyticsURL string // developer analytics rate_limit resource
}

var productionEndpoints = Endpoints{
	AuthURL:      "https://auth.ebay.com/oauth2/authorize",
	TokenURL:     "https://api.ebay.com/identity/v1/oauth2/token",
	APIBaseURL:   "https://api.ebay.com",
	AnalyticsURL: "https://api.ebay.com/developer/analytics/v1_beta/rate_limit/",
}

var sandboxEndpoints = Endpoints{
	AuthURL:      "https://auth.sandbox.ebay.com/oauth2/authorize",
	TokenURL:     "https://api.sandbox.ebay.com/identity/v1/oauth2/token",
	APIBaseURL:   "https://api.sandbox.ebay.com",
	AnalyticsURL: "https://api.sandbox.ebay.com/developer/analytics/v1_beta/rate_limit/",
}

// EndpointsFor returns the endpoint set for the given environment.
// Anything other than PRODUCTION resolves to sandbox.
func EndpointsFor(env domain.Environment) Endpoints {
	if env == domain.EnvProduction {
		return productionEndpoints
	}
	return sandboxEndpoints
}
