// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Custody rules live in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"custodia/internal/authtoken"
	"custodia/internal/custody"
	custodymetrics "custodia/internal/custody/metrics"
	"custodia/internal/custody/service"
	"custodia/internal/custody/store"
	"custodia/internal/platform/config"
	"custodia/internal/platform/httpserver"
	"custodia/internal/platform/logger"
	platformmetrics "custodia/internal/platform/metrics"
	platformredis "custodia/internal/platform/redis"
	"custodia/internal/registry"
	id "custodia/pkg/domain"
	"custodia/pkg/platform/audit"
	auditkafka "custodia/pkg/platform/audit/kafka"
	"custodia/pkg/platform/audit/publisher"
	auditmemory "custodia/pkg/platform/audit/store/memory"
	"custodia/pkg/platform/audit/worker"
	authmw "custodia/pkg/platform/middleware/auth"
	"custodia/pkg/platform/middleware/requestid"
	"custodia/pkg/platform/middleware/requesttime"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, cleanup, err := newRecordStore(ctx, cfg)
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	participants := registry.NewStatic(seedParticipants(os.Getenv("CUSTODIA_REGISTRY_SEED")))
	var categories registry.Registry = participants
	if redisClient, err := platformredis.New(cfg.Redis); err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	} else if redisClient != nil {
		defer redisClient.Close()
		categories = registry.NewRedisCache(redisClient.Client, participants, config.RegistryCacheTTL)
	}

	auditSink, closeSink, err := newAuditSink(ctx, cfg)
	if err != nil {
		log.Error("audit sink init failed", "error", err)
		os.Exit(1)
	}
	defer closeSink()

	// Audit persistence runs as a supervised worker: requests enqueue into
	// the inbox and the worker goroutine below owns the sink writes.
	auditInbox := make(chan audit.Event, 256)
	auditPublisher := publisher.NewPublisher(auditSink, publisher.WithWorkerInbox(auditInbox))
	defer auditPublisher.Close()
	auditWorker := worker.NewWorker(auditSink, auditInbox)

	svc := custody.NewService(records, categories,
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(custodymetrics.New()),
	)
	tokens := authtoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)

	router := chi.NewRouter()
	router.Use(platformmetrics.NewHTTP().Middleware)
	router.Use(requestid.Middleware)
	router.Use(requesttime.Middleware)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuthority(tokens, log))
		custody.NewHandler(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting custodia", "addr", cfg.Addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := auditWorker.Run(ctx); !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// newRecordStore selects Postgres when a DSN is configured, otherwise the
// in-memory store for development.
func newRecordStore(ctx context.Context, cfg config.Server) (service.RecordStore, func(), error) {
	if cfg.PostgresDSN == "" {
		return store.NewInMemory(), func() {}, nil
	}
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	pg := store.NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, func() { db.Close() }, nil
}

// newAuditSink publishes to Kafka when brokers are configured, otherwise
// keeps events in memory.
func newAuditSink(ctx context.Context, cfg config.Server) (audit.Store, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return auditmemory.NewInMemoryStore(), func() {}, nil
	}
	sink, err := auditkafka.NewSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	return sink, sink.Close, nil
}

// seedParticipants parses "party=category" pairs separated by commas, e.g.
// "vendor-1=vendor,carrier-7=carrier_air,pharmacy-3=pharmacy".
func seedParticipants(raw string) map[id.PartyID]id.Category {
	seed := make(map[id.PartyID]id.Category)
	if raw == "" {
		return seed
	}
	for pair := range strings.SplitSeq(raw, ",") {
		party, category, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		parsed, err := id.ParseCategory(category)
		if err != nil {
			continue
		}
		seed[id.PartyID(party)] = parsed
	}
	return seed
}
