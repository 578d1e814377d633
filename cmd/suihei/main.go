package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tjper/suihei/cmd/suihei/config"
	"github.com/tjper/suihei/cmd/suihei/controller"
	"github.com/tjper/suihei/cmd/suihei/db"
	"github.com/tjper/suihei/cmd/suihei/director"
	"github.com/tjper/suihei/cmd/suihei/graph"
	"github.com/tjper/suihei/cmd/suihei/router"
	"github.com/tjper/suihei/cmd/suihei/wiki"
	ictx "github.com/tjper/suihei/context"
	"github.com/tjper/suihei/internal/healthz"
	ihttp "github.com/tjper/suihei/internal/http"
	ilogger "github.com/tjper/suihei/internal/logger"
	"github.com/tjper/suihei/internal/session"
	"github.com/tjper/suihei/internal/stream"
	itime "github.com/tjper/suihei/internal/time"
	ivalidator "github.com/tjper/suihei/internal/validator"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	redisv8 "github.com/go-redis/redis/v8"
	"github.com/graph-gophers/graphql-transport-ws/graphqlws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

const (
	ecExit = iota
	ecConfig
	ecLogger
	ecDatabaseConnection
	ecMigration
	ecRedisConnection
	ecStream
	ecWiki
	ecSchema
	ecServerAPI
)

func run() int {
	if err := config.Load(os.Args[1:]); err != nil {
		log.Printf("[Startup] Failed to load configuration; error: %s", err)
		return ecConfig
	}

	logger, err := ilogger.New(config.Development())
	if err != nil {
		log.Printf("[Startup] Failed to initialize logger; error: %s", err)
		return ecLogger
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := ictx.WithSignal(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer cancel()

	logger.Info("[Startup] Connecting to DB ...")
	dbconn, err := db.Open(config.DSN(), logger)
	if err != nil {
		logger.Error("[Startup] Failed to initialize database connection.", zap.Error(err))
		return ecDatabaseConnection
	}
	logger.Info("[Startup] Connected to DB.")

	logger.Info("[Startup] Migrating DB ...")
	if err := db.Migrate(dbconn); err != nil {
		logger.Error("[Startup] Failed to migrate database model.", zap.Error(err))
		return ecMigration
	}
	logger.Info("[Startup] Migrated DB.")

	logger.Info("[Startup] Connecting to Redis ...")
	rdb := redisv8.NewClient(&redisv8.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("[Startup] Failed to initialize Redis client.", zap.Error(err))
		return ecRedisConnection
	}
	logger.Info("[Startup] Connected to Redis.")

	registry, err := db.Registry()
	if err != nil {
		logger.Error("[Startup] Failed to build query registry.", zap.Error(err))
		return ecSchema
	}
	store := db.NewStore(logger, dbconn, registry)
	sessionManager := session.NewManager(logger, rdb)

	group, ctx := errgroup.WithContext(ctx)

	rt := router.New(logger, store, prometheus.DefaultRegisterer, router.WithBuffer(config.RouterBuffer()))
	var publisher controller.IPublisher = rt
	if config.Transport() == config.TransportRedis {
		logger.Info("[Startup] Initializing change event stream ...")
		streamClient, err := stream.Init(ctx, logger, rdb, config.StreamKey())
		if err != nil {
			logger.Error("[Startup] Failed to initialize change event stream.", zap.Error(err))
			return ecStream
		}
		publisher = router.NewStreamPublisher(streamClient)
		group.Go(func() error {
			return router.Launch(ctx, logger, rt, streamClient)
		})
		logger.Info("[Startup] Initialized change event stream.")
	}

	pages, err := wiki.New(logger, os.DirFS(config.WikiDir()), config.WikiTTL())
	if err != nil {
		logger.Error("[Startup] Failed to initialize wiki.", zap.Error(err))
		return ecWiki
	}
	defer pages.Close()

	ctrl := controller.New(
		logger,
		store,
		sessionManager,
		publisher,
		ivalidator.New(),
		itime.Time{},
		controller.Rules{
			ContentSafeCredit:           config.ContentSafeCredit(),
			MaxPendingAwardApplications: config.MaxPendingAwardApplications(),
			MaxFutureSchedules:          config.MaxFutureSchedules(),
			VoteJoinedFor:               config.VoteJoinedFor(),
			VotePuzzles:                 config.VotePuzzles(),
			VoteQuestions:               config.VoteQuestions(),
		},
		config.SessionActiveExpiration(),
		config.SessionAbsoluteExpiration(),
	)

	dir := director.New(logger, ctrl)
	group.Go(func() error {
		return dir.Run(ctx, config.DazeSchedule())
	})

	cookies := ihttp.CookieOptions{
		Domain:   config.CookieDomain(),
		Secure:   config.CookieSecure(),
		SameSite: config.CookieSameSite(),
	}

	logger.Info("[Startup] Parsing GraphQL schema ...")
	schema, err := graph.NewSchema(graph.NewResolver(logger, store, ctrl, rt, pages, cookies))
	if err != nil {
		logger.Error("[Startup] Failed to parse GraphQL schema.", zap.Error(err))
		return ecSchema
	}
	logger.Info("[Startup] Parsed GraphQL schema.")

	health := healthz.NewHTTP(
		healthz.Check{Name: "db", Fn: store.Ping},
		healthz.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}},
	)

	mux := chi.NewRouter()
	mux.Use(
		ilogger.RequestIDMiddleware(),
		middleware.RequestLogger(ihttp.NewZapLogFormatter(logger)),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   config.CORSOrigins(),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}),
		ihttp.AccessMiddleware(),
		ihttp.Session(logger, sessionManager, config.SessionActiveExpiration()),
	)

	queryHandler := graph.NewHandler(logger, schema, prometheus.DefaultRegisterer)
	mux.Handle("/query", queryHandler)
	mux.Handle("/subscriptions", graphqlws.NewHandlerFunc(schema, queryHandler))
	mux.Handle("/healthz", health)
	mux.Handle("/metrics", promhttp.Handler())

	srv := http.Server{
		Handler:     mux,
		Addr:        fmt.Sprintf(":%d", config.Port()),
		ReadTimeout: 10 * time.Second,
	}

	group.Go(func() error {
		<-ctx.Done()
		health.Sick()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		logger.Sugar().Infof("[Startup] suihei API listening at :%d", config.Port())
		health.Healthy()
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	if err := group.Wait(); err != nil {
		logger.Error("[Startup] Failed to serve suihei API.", zap.Error(err))
		return ecServerAPI
	}
	return ecExit
}
