package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"auditlink/internal/jwttoken"
	ledgerhandler "auditlink/internal/ledger/handler"
	ledgermetrics "auditlink/internal/ledger/metrics"
	ledgerservice "auditlink/internal/ledger/service"
	agreementstore "auditlink/internal/ledger/store/agreement"
	claimstore "auditlink/internal/ledger/store/claim"
	notificationstore "auditlink/internal/ledger/store/notification"
	"auditlink/internal/platform/config"
	"auditlink/internal/platform/httpserver"
	"auditlink/internal/platform/kafka"
	"auditlink/internal/platform/metrics"
	"auditlink/internal/platform/postgres"
	"auditlink/internal/platform/redis"
	profilehandler "auditlink/internal/profile/handler"
	profileservice "auditlink/internal/profile/service"
	profilestore "auditlink/internal/profile/store"
	audit "auditlink/pkg/platform/audit"
	"auditlink/pkg/platform/audit/outbox"
	"auditlink/pkg/platform/audit/publishers/compliance"
	auditmemory "auditlink/pkg/platform/audit/store/memory"
	auditpostgres "auditlink/pkg/platform/audit/store/postgres"
	"auditlink/pkg/platform/httputil"
	authmw "auditlink/pkg/platform/middleware/auth"
	"auditlink/pkg/platform/middleware/request"
	"auditlink/pkg/platform/middleware/requesttime"
)

const (
	requestTimeout = 10 * time.Second
	healthTimeout  = 2 * time.Second
)

type appOptions struct {
	migrate bool
	// now overrides the request clock in tests.
	now func() time.Time
}

type auditStore interface {
	audit.Store
	audit.Outbox
}

// app owns every long-lived dependency of the serve command.
type app struct {
	cfg     config.Server
	logger  *slog.Logger
	router  http.Handler
	relay   *outbox.Relay
	checks  map[string]func(context.Context) error
	closers []func()
}

type ledgerStores struct {
	claims        ledgerservice.ClaimStore
	agreements    ledgerservice.AgreementStore
	notifications ledgerservice.NotificationStore
	audit         auditStore
	tx            ledgerservice.StoreTx
}

func newApp(ctx context.Context, cfg config.Server, logger *slog.Logger, opts appOptions) (_ *app, err error) {
	a := &app{
		cfg:    cfg,
		logger: logger,
		checks: map[string]func(context.Context) error{},
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	m := metrics.New()

	stores, err := a.buildLedgerStores(ctx, opts)
	if err != nil {
		return nil, err
	}

	publisher := compliance.New(stores.audit,
		compliance.WithLogger(logger),
		compliance.WithMetrics(compliance.NewMetrics(m.Registry)),
	)
	ledgerOpts := []ledgerservice.Option{
		ledgerservice.WithLogger(logger),
		ledgerservice.WithAuditPublisher(publisher),
		ledgerservice.WithMetrics(ledgermetrics.New(m.Registry)),
	}
	if stores.tx != nil {
		ledgerOpts = append(ledgerOpts, ledgerservice.WithStoreTx(stores.tx))
	}
	ledger := ledgerservice.New(stores.claims, stores.agreements, stores.notifications, ledgerOpts...)

	profiles, err := a.buildProfileStore(ctx)
	if err != nil {
		return nil, err
	}
	profileSvc := profileservice.New(profiles, ledger,
		profileservice.WithLogger(logger),
		profileservice.WithAuditPublisher(publisher),
	)

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, producer.Close)
		if err := producer.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return nil, err
		}
		a.checks["kafka"] = producer.Ping
		a.relay = outbox.NewRelay(stores.audit, producer,
			outbox.WithInterval(cfg.Outbox.PollInterval),
			outbox.WithBatchSize(cfg.Outbox.BatchSize),
			outbox.WithLogger(logger),
		)
	} else {
		logger.Info("kafka brokers not configured, audit outbox relay disabled")
	}

	jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	a.router = a.buildRouter(
		m,
		jwttoken.NewJWTServiceAdapter(jwtService),
		opts.now,
		ledgerhandler.New(ledger, logger),
		profilehandler.New(profileSvc, logger),
	)
	return a, nil
}

func (a *app) buildLedgerStores(ctx context.Context, opts appOptions) (ledgerStores, error) {
	switch a.cfg.Storage {
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, a.cfg.Database)
		if err != nil {
			return ledgerStores{}, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		a.checks["postgres"] = db.PingContext
		if opts.migrate {
			if err := a.migrate(ctx, db); err != nil {
				return ledgerStores{}, err
			}
		}
		return ledgerStores{
			claims:        claimstore.NewPostgres(db),
			agreements:    agreementstore.NewPostgres(db),
			notifications: notificationstore.NewPostgres(db),
			audit:         auditpostgres.New(db),
			tx:            postgres.NewTxRunner(db, postgres.LedgerLockKey, postgres.WithTxTimeout(a.cfg.TxTimeout)),
		}, nil
	case config.StorageMemory:
		return ledgerStores{
			claims:        claimstore.NewInMemory(),
			agreements:    agreementstore.NewInMemory(),
			notifications: notificationstore.NewInMemory(),
			audit:         auditmemory.NewInMemoryStore(),
		}, nil
	default:
		return ledgerStores{}, fmt.Errorf("unknown storage %q", a.cfg.Storage)
	}
}

func (a *app) migrate(ctx context.Context, db *sql.DB) error {
	n, err := postgres.NewMigrator(db).Up(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("database migrations applied", "count", n)
	return nil
}

func (a *app) buildProfileStore(ctx context.Context) (profileservice.Store, error) {
	client, err := redis.New(ctx, a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		a.logger.Info("redis not configured, profiles kept in memory")
		return profilestore.NewInMemory(), nil
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.checks["redis"] = client.Health
	return profilestore.NewRedis(client.Client), nil
}

func (a *app) buildRouter(
	m *metrics.Metrics,
	validator authmw.JWTValidator,
	now func() time.Time,
	ledger *ledgerhandler.Handler,
	profiles *profilehandler.Handler,
) http.Handler {
	clock := requesttime.Middleware
	if now != nil {
		clock = requesttime.MiddlewareWithClock(now)
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(a.logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(a.logger))
	r.Use(m.Middleware)
	r.Use(clock)

	r.Get("/healthz", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(requestTimeout))
		r.Use(request.ContentTypeJSON)
		r.Use(authmw.RequireAuth(validator, a.logger))
		ledger.Register(r)
		profiles.Register(r)
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: map[string]string{}}
	status := http.StatusOK
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			a.logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	httputil.WriteJSON(w, status, resp)
}

// Run serves HTTP and relays the audit outbox until ctx is done or either
// fails.
func (a *app) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(ctx, httpserver.New(a.cfg.Addr, a.router), a.logger)
	})
	if a.relay != nil {
		g.Go(func() error {
			err := a.relay.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// Close releases dependencies in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
