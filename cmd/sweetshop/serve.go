package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"SweetShop/internal/catalog"
	"SweetShop/internal/config"
	"SweetShop/pkg/kit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and catalog page",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	config.RegisterFlags(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags(), flagConfigFile)
	if err != nil {
		return err
	}

	log, err := kit.NewLogger(service, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	seq := catalog.ProcessSequence()
	if cfg.SequenceScope == config.ScopeStore {
		seq = catalog.NewCounter()
	}
	store := catalog.NewMemStore(seq)

	if cfg.Seed {
		if err := catalog.Seed(store, catalog.DemoItems); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		log.Info("catalog seeded", zap.Int("items", store.Len()))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &catalog.Server{Store: store, Log: log}
	if cfg.RateLimitPerMin > 0 {
		s.WriteLimit = kit.NewIPRateLimiter(cfg.RateLimitPerMin, time.Minute)
		s.WriteLimit.TrustForwardedFor = cfg.TrustProxy
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	return kit.RunHTTPServer(cmd.Context(), cfg.Addr, h, log, cfg.ShutdownTimeout)
}
