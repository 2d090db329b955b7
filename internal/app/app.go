package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/draft-auction/internal/config"
	"github.com/riskibarqy/draft-auction/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/draft-auction/internal/infrastructure/realtime"
	repocache "github.com/riskibarqy/draft-auction/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/draft-auction/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/draft-auction/internal/interfaces/httpapi"
	"github.com/riskibarqy/draft-auction/internal/platform/cache"
	idgen "github.com/riskibarqy/draft-auction/internal/platform/id"
	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/platform/resilience"
	"github.com/riskibarqy/draft-auction/internal/scheduler"
	"github.com/riskibarqy/draft-auction/internal/storage"
	"github.com/riskibarqy/draft-auction/internal/usecase"
)

// App bundles the HTTP server, the background sweep scheduler and the
// database handle so main can start and stop them together.
type App struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler

	db *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	db, err := otelsqlx.Connect("postgres",
		normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var store storage.Store = postgres.NewStore(db)
	var readCache *cache.Store
	if cfg.CacheEnabled {
		readCache = cache.NewStore(cfg.CacheTTL)
		store = repocache.NewStore(store, readCache)
	}

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		anubis.Config{
			BaseURL:        cfg.AnubisBaseURL,
			IntrospectPath: cfg.AnubisIntrospectPath,
			SessionsPath:   cfg.AnubisSessionsPath,
			AdminKey:       cfg.AnubisAdminKey,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AnubisCircuitEnabled,
				FailureThreshold: cfg.AnubisCircuitFailureCount,
				OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
			},
			PrincipalTTL: cfg.AnubisPrincipalTTL,
		},
		logger,
	)

	var notifier usecase.Notifier
	if cfg.RealtimeEnabled {
		notifier = realtime.NewPublisher(realtime.PublisherConfig{
			BaseURL: cfg.RealtimeBaseURL,
			Token:   cfg.RealtimeToken,
			Timeout: cfg.RealtimeTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.RealtimeCircuitEnabled,
				FailureThreshold: cfg.RealtimeCircuitFailureCount,
				OpenTimeout:      cfg.RealtimeCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.RealtimeCircuitHalfOpenMaxReq,
			},
		}, logger)
	} else {
		logger.Info("realtime publisher disabled", "reason", "REALTIME_ENABLED=false")
		notifier = usecase.NewNoopNotifier()
	}

	ids := idgen.NewRandomGenerator()

	complianceSvc := usecase.NewComplianceService(
		store,
		notifier,
		anubisClient,
		readCache,
		ids,
		cfg.ComplianceGracePeriod,
		cfg.PenaltyAmount,
		cfg.PenaltyCap,
		logger,
	)
	bidSvc := usecase.NewBidService(store, notifier, complianceSvc, ids, cfg.ResponseWindow, logger)
	timerSvc := usecase.NewResponseTimerService(store, notifier, complianceSvc, cfg.AbandonCooldown, logger)
	settlementSvc := usecase.NewSettlementService(store, notifier, complianceSvc, ids, cfg.SettlementPoolSize, logger)
	querySvc := usecase.NewQueryService(store, complianceSvc, logger)

	handler := httpapi.NewHandler(bidSvc, timerSvc, settlementSvc, complianceSvc, querySvc, logger)
	router := httpapi.NewRouter(
		handler,
		anubisClient,
		logger,
		cfg.SwaggerEnabled,
		cfg.CORSAllowedOrigins,
		cfg.InternalJobToken,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	var sweeper *scheduler.Scheduler
	if cfg.SweepEnabled {
		sweeper = scheduler.New(cfg.SweepInterval, logger,
			scheduler.Job{Name: "settle-expired-auctions", Run: settlementSvc.SweepExpired},
			scheduler.Job{Name: "expire-response-timers", Run: timerSvc.SweepExpired},
			scheduler.Job{Name: "apply-compliance-penalties", Run: complianceSvc.SweepPenalties},
		)
	} else {
		logger.Info("sweep scheduler disabled", "reason", "SWEEP_ENABLED=false")
	}

	return &App{
		Server:    server,
		Scheduler: sweeper,
		db:        db,
	}, nil
}

// Close releases the database handle. Call after the HTTP server and the
// scheduler have stopped.
func (a *App) Close() error {
	return a.db.Close()
}
