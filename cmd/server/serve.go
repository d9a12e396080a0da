package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/catalog-bot/internal/adapter/assistant"
	"github.com/rl1809/catalog-bot/internal/adapter/auth"
	"github.com/rl1809/catalog-bot/internal/adapter/handler"
	"github.com/rl1809/catalog-bot/internal/adapter/storage"
	"github.com/rl1809/catalog-bot/internal/adapter/telegram"
	"github.com/rl1809/catalog-bot/internal/config"
	"github.com/rl1809/catalog-bot/internal/core/service"
	"github.com/rl1809/catalog-bot/internal/metrics"
	"github.com/rl1809/catalog-bot/internal/port"
)

const (
	shutdownTimeout = 5 * time.Second
	pruneInterval   = time.Hour
)

func newServeCmd(v *viper.Viper, configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *configFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("http-addr", ":8080", "HTTP listen address (webhook, health, metrics)")
	cmd.Flags().String("grpc-addr", ":50051", "gRPC health listen address")
	bindFlag(v, cmd, "http.addr", "http-addr")
	bindFlag(v, cmd, "grpc.addr", "grpc-addr")
	return cmd
}

// ledger picks the listing ledger backend. The returned closer releases any
// connection the backend opened.
func ledger(ctx context.Context, cfg config.Config, db *sql.DB, checks map[string]handler.Pinger) (port.LedgerRepository, *storage.SQLLedger, func(), error) {
	switch cfg.Ledger.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		log.Println("connected to redis")
		l := storage.NewRedisLedger(rdb, cfg.Ledger.TTL)
		checks["ledger"] = l
		return l, nil, func() { rdb.Close() }, nil

	case "memory":
		log.Println("using in-memory ledger; delete listings do not survive restarts")
		return storage.NewMemoryLedger(), nil, func() {}, nil

	default:
		l := storage.NewSQLLedger(db, cfg.Store.Driver)
		return l, l, func() {}, nil
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	taxonomy, err := config.LoadTaxonomy(cfg.Catalog.TaxonomyFile)
	if err != nil {
		return err
	}

	db, err := storage.OpenSQL(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect catalog store: %w", err)
	}
	defer db.Close()
	log.Printf("connected to %s", cfg.Store.Driver)

	catalog := storage.NewSQLCatalog(db)
	checks := map[string]handler.Pinger{"catalog": catalog}

	ledgerRepo, sqlLedger, closeLedger, err := ledger(ctx, cfg, db, checks)
	if err != nil {
		return err
	}
	defer closeLedger()

	bot := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.APIURL, nil)

	var helper port.Assistant
	if cfg.Assistant.Enabled() {
		helper = assistant.New(assistant.Config{
			APIKey:  cfg.Assistant.APIKey,
			Model:   cfg.Assistant.Model,
			BaseURL: cfg.Assistant.BaseURL,
		}, catalog)
	} else {
		log.Println("assistant.api_key not set; assistant disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	manager, err := service.NewSessionManager(service.Dependencies{
		Catalog:    catalog,
		Ledger:     ledgerRepo,
		Messenger:  bot,
		Authorizer: auth.NewStaticAuthorizer(cfg.AdminIDs),
		Assistant:  helper,
		Taxonomy:   taxonomy,
		Metrics:    metrics.MustNew(reg),
	}, service.Options{
		BatchSize:    cfg.Session.BatchSize,
		QueueSize:    cfg.Session.QueueSize,
		IdleTimeout:  cfg.Session.IdleTimeout,
		RemovedPhoto: cfg.Catalog.RemovedPhoto,
	})
	if err != nil {
		return err
	}

	// Initialize HTTP server
	httpHandler, err := handler.NewHTTPHandler(manager, bot, cfg.Telegram.WebhookSecret, checks)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", httpHandler.Webhook)
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	reporter := handler.NewHealthReporter(checks, cfg.HealthInterval)
	reporter.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	if cfg.Telegram.WebhookURL != "" {
		if err := bot.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			return fmt.Errorf("failed to register webhook: %w", err)
		}
		log.Printf("webhook registered at %s", cfg.Telegram.WebhookURL)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return reporter.Run(gctx)
	})

	if sqlLedger != nil && cfg.Ledger.TTL > 0 {
		g.Go(func() error {
			pruneLoop(gctx, sqlLedger, cfg.Ledger.TTL)
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
		log.Println("HTTP server stopped")

		grpcServer.GracefulStop()
		log.Println("gRPC server stopped")

		manager.Close()
		log.Println("sessions drained")
		return nil
	})

	return g.Wait()
}

func pruneLoop(ctx context.Context, l *storage.SQLLedger, ttl time.Duration) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := l.Prune(ctx, ttl)
			if err != nil {
				log.Printf("ledger: prune failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("ledger: pruned %d entries older than %s", n, ttl)
			}
		}
	}
}
