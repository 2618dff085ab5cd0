package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/lumberjacked/internal/auth"
	"github.com/2beens/lumberjacked/internal/config"
	"github.com/2beens/lumberjacked/internal/db"
	"github.com/2beens/lumberjacked/internal/ids"
	"github.com/2beens/lumberjacked/internal/middleware"
	"github.com/2beens/lumberjacked/internal/telemetry/metrics"
	"github.com/2beens/lumberjacked/internal/telemetry/tracing"
	"github.com/2beens/lumberjacked/internal/training"
	"github.com/2beens/lumberjacked/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	trainingService *training.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()

	stopSessionCleanup context.CancelFunc
}

type NewServerParams struct {
	Config                  *config.Config
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	dbParams := db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.PostgresPassword,
		SSLMode:        cfg.PostgresSSLMode,
		TracingEnabled: params.HoneycombTracingEnabled,
	}

	if cfg.RunMigrationsOnStart {
		if err := db.Migrate(ctx, db.ConnString(dbParams)); err != nil {
			return nil, fmt.Errorf("migrate db: %w", err)
		}
		log.Debugln("db migrations applied")
	}

	dbPool, err := db.NewDBPool(ctx, dbParams)
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("lumberjacked", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "lumberjacked-backend", rdb)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	authService := auth.NewAuthService(auth.NewUsersRepo(dbPool, ids.New), sessionTTL, rdb)

	trainingService := training.NewService(
		training.NewMovementsRepo(dbPool, ids.New),
		training.NewWorkoutsRepo(dbPool, ids.New),
		training.NewMovementLogsRepo(dbPool, ids.New),
		metricsManager,
	)

	return &Server{
		config: cfg,
		dbPool: dbPool,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(sessionTTL, rdb),

		trainingService: trainingService,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "ok")
	}).Methods("GET").Name("health")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	authHandler := auth.NewHandler(s.authService, s.loginChecker, s.metricsManager)
	authHandler.SetupRoutes(r, middleware.RateLimit(
		reqRateLimiter,
		"auth",
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
	))

	trainingHandler := training.NewHandler(
		s.trainingService,
		s.config.DefaultPageSize,
		s.config.MaxPageSize,
	)
	trainingHandler.SetupRoutes(r)

	// all the rest - unhandled paths
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	cleanupCtx, cancel := context.WithCancel(ctx)
	s.stopSessionCleanup = cancel
	go s.runSessionCleanup(
		cleanupCtx,
		time.Duration(s.config.SessionCleanupIntervalHours)*time.Hour,
	)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// runSessionCleanup drops expired sessions every interval, until ctx is done.
func (s *Server) runSessionCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debugln("session cleanup stopped")
			return
		case <-ticker.C:
			s.authService.ScanAndClean(ctx)
		}
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.stopSessionCleanup != nil {
		s.stopSessionCleanup()
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}
