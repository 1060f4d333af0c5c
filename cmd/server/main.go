package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	jwttoken "kycgate/internal/jwt_token"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/httpserver"
	"kycgate/internal/platform/logger"
	platformmetrics "kycgate/internal/platform/metrics"
	"kycgate/internal/platform/postgres"
	platformredis "kycgate/internal/platform/redis"
	"kycgate/internal/ratelimit"
	"kycgate/internal/verification/events"
	"kycgate/internal/verification/gate"
	"kycgate/internal/verification/handler"
	vmetrics "kycgate/internal/verification/metrics"
	"kycgate/internal/verification/models"
	"kycgate/internal/verification/service"
	"kycgate/internal/verification/store/auditlog"
	"kycgate/internal/verification/store/cases"
	"kycgate/internal/verification/store/documents"
	"kycgate/internal/verification/store/outbox"
	"kycgate/internal/verification/store/snapshots"
	"kycgate/pkg/platform/circuit"
	request "kycgate/pkg/platform/middleware/request"
	"kycgate/pkg/platform/middleware/requesttime"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies and hands control to the CLI. Business
// logic lives in the internal verification packages.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	Execute(ctx)
}

// infra holds the external resources selected by config. Nil members fall
// back to in-process implementations.
type infra struct {
	db        *sql.DB
	redis     *platformredis.Client
	publisher events.Publisher
	closers   []func()
}

func (i *infra) close() {
	for idx := len(i.closers) - 1; idx >= 0; idx-- {
		i.closers[idx]()
	}
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{}

	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.Options{MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: 30 * time.Minute})
		if err != nil {
			return nil, err
		}
		in.db = db
		in.closers = append(in.closers, func() { _ = db.Close() })
		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			in.close()
			return nil, err
		}
		log.Info("postgres ready", "migrations_applied", len(applied))
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		in.close()
		return nil, err
	}
	if client != nil {
		in.redis = client
		in.closers = append(in.closers, func() { _ = client.Close() })
		log.Info("redis gate cache enabled", "ttl", cfg.Gate.CacheTTL)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.DecisionTopic)
		if err != nil {
			in.close()
			return nil, err
		}
		in.closers = append(in.closers, kafka.Close)
		if err := kafka.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure decision topic", "topic", cfg.Kafka.DecisionTopic, "error", err)
		}
		in.publisher = kafka
		log.Info("publishing decisions to kafka", "topic", cfg.Kafka.DecisionTopic)
	} else {
		in.publisher = events.NewLogPublisher(log)
	}
	return in, nil
}

// newStores picks Postgres stores when a database is configured.
func newStores(db *sql.DB, txTimeout time.Duration) (service.Stores, events.PendingStore) {
	if db == nil {
		box := outbox.NewInMemory()
		return service.Stores{
			Cases:     cases.NewInMemory(),
			Audit:     auditlog.NewInMemory(),
			Documents: documents.NewInMemory(),
			Snapshots: snapshots.NewInMemory(),
			Outbox:    box,
			Tx:        service.NewMemoryTx(txTimeout),
		}, box
	}
	box := outbox.NewPostgres(db)
	return service.Stores{
		Cases:     cases.NewPostgres(db),
		Audit:     auditlog.NewPostgres(db),
		Documents: documents.NewPostgres(db),
		Snapshots: snapshots.NewPostgres(db),
		Outbox:    box,
		Tx:        newCasePostgresTx(db, txTimeout),
	}, box
}

func serve(ctx context.Context, cfg config.Server) error {
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	in, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.close()

	policy := models.DefaultDocumentPolicy()
	if cfg.DocumentPolicyFile != "" {
		if policy, err = models.LoadDocumentPolicy(cfg.DocumentPolicyFile); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	verificationMetrics := vmetrics.New(reg)
	httpMetrics := platformmetrics.NewHTTP(reg)

	stores, pending := newStores(in.db, cfg.TxTimeout)

	gateOpts := []gate.Option{gate.WithObserver(verificationMetrics), gate.WithLogger(log)}
	if in.redis != nil {
		gateOpts = append(gateOpts, gate.WithCache(gate.NewRedisCache(in.redis.Client, cfg.Gate.CacheTTL)))
	}
	caseGate := gate.New(stores.Cases, gateOpts...)

	svc := service.New(stores,
		service.WithLogger(log),
		service.WithMetrics(verificationMetrics),
		service.WithDocumentPolicy(policy),
		service.WithGate(caseGate),
	)

	var limitStore ratelimit.Store = ratelimit.NewInMemoryStore()
	if in.redis != nil {
		limitStore = ratelimit.NewRedisStore(in.redis.Client)
	}
	limiter := ratelimit.New(limitStore, log,
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
		ratelimit.WithPolicy(ratelimit.ClassWrite, ratelimit.Policy{Limit: cfg.RateLimit.WritesPerMinute, Window: time.Minute}),
		ratelimit.WithPolicy(ratelimit.ClassDecision, ratelimit.Policy{Limit: cfg.RateLimit.DecisionsPerMinute, Window: time.Minute}),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	caseHandler := handler.New(svc, log, jwttoken.NewJWTServiceAdapter(jwtService),
		handler.WithForwardAuth(caseGate, gate.RedirectConfig{
			SubmissionURL:  cfg.Gate.SubmissionURL,
			ExemptPrefixes: cfg.Gate.ExemptPrefixes,
		}),
		handler.WithRateLimiter(limiter),
	)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Logger(log, httpMetrics))
	r.Use(request.Recovery(log))
	r.Use(requesttime.Middleware)
	r.Get("/healthz", healthHandler(in))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	caseHandler.Register(r)

	relay := events.NewRelay(pending, in.publisher,
		events.WithRelayLogger(log),
		events.WithRelayMetrics(verificationMetrics),
		events.WithBreaker(circuit.New("outbox-relay",
			circuit.WithFailureThreshold(5),
			circuit.WithCooldown(30*time.Second),
		)),
		events.WithPollInterval(cfg.Kafka.RelayInterval),
		events.WithBatchSize(cfg.Kafka.RelayBatch),
	)

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting kycgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return relay.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func healthHandler(in *infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if in.db != nil {
			if err := in.db.PingContext(ctx); err != nil {
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if in.redis != nil {
			if err := in.redis.Health(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
