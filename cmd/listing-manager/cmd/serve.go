package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/listing-manager/api/openapi"
	"github.com/donaldgifford/listing-manager/internal/api/handlers"
	"github.com/donaldgifford/listing-manager/internal/api/middleware"
	"github.com/donaldgifford/listing-manager/internal/config"
	"github.com/donaldgifford/listing-manager/internal/ebay"
	"github.com/donaldgifford/listing-manager/internal/publish"
	"github.com/donaldgifford/listing-manager/internal/quota"
	"github.com/donaldgifford/listing-manager/internal/store"
	"github.com/donaldgifford/listing-manager/internal/tokens"
	"github.com/donaldgifford/listing-manager/pkg/logger"
	"github.com/donaldgifford/listing-manager/pkg/pricing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the listing API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cmdLog := log.NewWithOptions(os.Stderr, log.Options{
		Level: parseLogLevel(cfg.Logging.Level),
	})
	slogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	endpoints := resolveEndpoints(&cfg.Ebay)

	// Publish journal. Optional; without a database every attempt is
	// discarded and history stays empty.
	var journal store.Store = store.NewNoop(slogger)
	if cfg.Database.Enabled() {
		pg, err := store.NewPostgresStore(context.Background(), cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to journal database: %w", err)
		}
		defer pg.Close()
		journal = pg
		cmdLog.Info("publish journal enabled", "host", cfg.Database.Host)
	}

	// eBay clients. Browse and Analytics run on the application token;
	// Sell calls carry the per-request seller token.
	appTokens := ebay.NewAppTokenProvider(
		cfg.Ebay.ClientID, cfg.Ebay.ClientSecret, endpoints,
	)
	rateLimiter := ebay.NewRateLimiter(
		cfg.Ebay.RateLimit.PerSecond,
		cfg.Ebay.RateLimit.Burst,
		cfg.Ebay.RateLimit.DailyLimit,
	)
	browse := ebay.NewBrowseClient(appTokens, endpoints,
		ebay.WithMarketplace(cfg.Ebay.Marketplace),
		ebay.WithRateLimiter(rateLimiter),
	)
	sell := ebay.NewSellClient(endpoints,
		ebay.WithSellMarketplace(cfg.Ebay.Marketplace),
	)
	identity := ebay.NewIdentityClient(
		cfg.Ebay.ClientID, cfg.Ebay.ClientSecret, cfg.Ebay.RedirectName,
		endpoints,
	)

	// Seller session plumbing.
	key, err := cfg.Cookie.KeyBytes()
	if err != nil {
		return fmt.Errorf("loading cookie key: %w", err)
	}
	codec, err := tokens.NewCodec(key)
	if err != nil {
		return fmt.Errorf("creating cookie codec: %w", err)
	}
	manager := tokens.NewManager(identity)
	sessions := handlers.NewSessions(codec, manager, cfg.Cookie.MaxAge, cfg.Ebay.Environment)

	publisher := publish.NewPublisher(
		sell, journal, cfg.Ebay.Marketplace, cfg.Ebay.Environment, slogger,
	)

	pricingCfg := pricing.Config{
		Base:          pricing.Base(cfg.Pricing.Base),
		UndercutBy:    cfg.Pricing.UndercutBy,
		MinGrossPrice: cfg.Pricing.MinGrossPrice,
	}

	// Optional upstream quota polling.
	var poller *quota.Poller
	if cfg.Quota.Enabled {
		analytics := ebay.NewAnalyticsClient(appTokens, endpoints)
		poller, err = quota.NewPoller(analytics, cfg.Quota.PollInterval, slogger)
		if err != nil {
			return fmt.Errorf("creating quota poller: %w", err)
		}
		poller.Start()
		defer poller.Stop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(slogger))
	e.Use(middleware.RequestLog(slogger))
	e.Use(middleware.Metrics())

	handlers.RegisterHealthRoutes(e, handlers.NewHealthHandler(journal))
	handlers.RegisterOAuthRoutes(e, handlers.NewOAuthHandler(identity, sessions, manager, slogger))
	handlers.RegisterListingRoutes(e, handlers.NewListingHandler(
		sessions, sell, publisher, pricingCfg, cfg.Pricing.VATRate, slogger,
	))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	openapi.RegisterRoutes(e)

	humaConfig := huma.DefaultConfig("Listing Manager API", Version)
	api := humaecho.New(e, humaConfig)

	handlers.RegisterSearchRoutes(api, handlers.NewSearchHandler(browse))
	handlers.RegisterPricingRoutes(api, handlers.NewPricingHandler(
		browse, pricingCfg, cfg.Pricing.VATRate,
	))

	// QuotaSource is nil-interface-safe only via explicit check; a typed
	// nil poller must not reach the handler.
	var quotaSource handlers.QuotaSource
	if poller != nil {
		quotaSource = poller
	}
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(rateLimiter, quotaSource))
	handlers.RegisterHistoryRoutes(api, handlers.NewHistoryHandler(journal))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	cmdLog.Info("starting server",
		"addr", addr,
		"environment", string(cfg.Ebay.Environment),
		"marketplace", cfg.Ebay.Marketplace,
	)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cmdLog.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cmdLog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	cmdLog.Info("server stopped")
	return nil
}

// resolveEndpoints returns the environment's endpoint set with any
// configured overrides applied.
func resolveEndpoints(cfg *config.EbayConfig) ebay.Endpoints {
	endpoints := ebay.EndpointsFor(cfg.Environment)

	if cfg.AuthURL != "" {
		endpoints.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoints.TokenURL = cfg.TokenURL
	}
	if cfg.APIBaseURL != "" {
		endpoints.APIBaseURL = cfg.APIBaseURL
	}
	if cfg.AnalyticsURL != "" {
		endpoints.AnalyticsURL = cfg.AnalyticsURL
	}

	return endpoints
}

func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
