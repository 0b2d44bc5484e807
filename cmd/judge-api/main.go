// Command judge-api runs the HTTP façade in front of the judge engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	limits "github.com/gin-contrib/size"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gradeflow/judge-engine/internal/auth"
	"github.com/gradeflow/judge-engine/internal/catalog"
	"github.com/gradeflow/judge-engine/internal/cfg"
	"github.com/gradeflow/judge-engine/internal/fixtures"
	"github.com/gradeflow/judge-engine/internal/handlers"
	"github.com/gradeflow/judge-engine/internal/logger"
	customMiddleware "github.com/gradeflow/judge-engine/internal/middleware"
	metricsMiddleware "github.com/gradeflow/judge-engine/internal/middleware/otel/metrics"
	tracingMiddleware "github.com/gradeflow/judge-engine/internal/middleware/otel/tracing"
	"github.com/gradeflow/judge-engine/internal/telemetry"
	"github.com/gradeflow/judge-engine/internal/utils"
)

const (
	serviceName = "judge-api"

	// expectedMigrationVersion is the highest migration number this binary
	// was built against; bump it alongside a new internal/catalog/migrations
	// file. The service refuses to serve traffic against an older schema.
	expectedMigrationVersion = 3

	maxUploadLimit = 1 << 22 // 4 MiB, generous for a submitted script

	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 75 * time.Second
	idleTimeout       = 120 * time.Second

	shutdownGrace = 15 * time.Second
)

func newGinServer(ctx context.Context, config cfg.Config, tel *telemetry.Client, l logger.Logger, store *handlers.APIStore, port int) *http.Server {
	r := gin.New()

	r.Use(
		tracingMiddleware.Middleware(tel.TracerProvider, serviceName),
		metricsMiddleware.Middleware(tel.MeterProvider.Meter(serviceName), serviceName),
		gin.Recovery(),
	)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Length", "Content-Type", "User-Agent",
		"Authorization", "X-Admin-Token",
	}
	r.Use(cors.New(corsConfig))

	r.Use(
		limits.RequestSizeLimiter(maxUploadLimit),
		customMiddleware.LoggingMiddleware(l, customMiddleware.Config{
			TimeFormat:   time.RFC3339Nano,
			UTC:          true,
			DefaultLevel: zap.InfoLevel,
			SkipPaths:    []string{"/health"},
		}),
	)

	registerRoutes(r, config, store)

	return &http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func registerRoutes(r *gin.Engine, config cfg.Config, store *handlers.APIStore) {
	r.GET("/health", store.GetHealth)

	accessAuth := auth.AccessTokenAuth(store.TokenIssuer())
	optionalAccessAuth := auth.OptionalAccessTokenAuth(store.TokenIssuer())
	adminEmailAuth := auth.RequireAdminEmail(config, store.TokenIssuer())

	r.GET("/exercises", store.ListExercises)
	r.GET("/exercises/:id", store.GetExercise)
	r.POST("/exercises/:id/run", accessAuth, store.RunExercise)
	r.GET("/statistics", accessAuth, store.GetStatistics)
	r.GET("/statistics/:exerciseId", accessAuth, store.GetStatistics)
	r.GET("/user", optionalAccessAuth, adminEmailAuth, store.GetCurrentUser)
	r.GET("/languages", store.ListLanguages)

	admin := r.Group("/admin", store.RequireAdmin)
	{
		admin.GET("/exercises", store.AdminListExercises)
		admin.GET("/exercises/:id/full", store.AdminGetExercise)
		admin.POST("/exercises", store.AdminCreateExercise)
		admin.PUT("/exercises/:id", store.AdminUpdateExercise)
		admin.DELETE("/exercises/:id", store.AdminDeleteExercise)
		admin.POST("/exercises/reorder", store.AdminReorderExercises)

		admin.GET("/chapters", store.AdminListChapters)
		admin.POST("/chapters", store.AdminCreateChapter)
		admin.DELETE("/chapters/:id", store.AdminDeleteChapter)

		admin.POST("/languages", store.AdminUpsertLanguage)

		admin.POST("/test-solution", store.AdminTestSolution)
		admin.POST("/run-test-case", store.AdminRunTestCase)

		// Gin catch-alls (*param) must be the last path element, so
		// per-operation fixed prefixes stand in for the spec's nested
		// "/fixtures/{folder}/contents" style paths.
		admin.GET("/fixtures", store.AdminListFixtures)
		admin.POST("/fixtures/sync", store.AdminSyncFixtures)
		admin.GET("/fixtures/item/*path", store.AdminGetFixture)
		admin.POST("/fixtures/item/*path", store.AdminPutFixture)
		admin.DELETE("/fixtures/item/*path", store.AdminDeleteFixture)
		admin.PUT("/fixtures/permissions/*path", store.AdminSetFixturePermissions)
		admin.GET("/fixtures/folder/*folder", store.AdminListFolderContents)
		admin.POST("/fixtures/folder/*folder", store.AdminPutFolderFile)
		admin.DELETE("/fixtures/folder/*folder", store.AdminDeleteFolderFile)

		admin.GET("/users", store.AdminListUsers)
		admin.GET("/users/:id", store.AdminGetUser)
		admin.PUT("/users/:id", store.AdminUpdateUser)
		admin.DELETE("/users/:id", store.AdminDeleteUser)

		admin.POST("/admin-tokens", store.AdminCreateAdminToken)
		admin.DELETE("/admin-tokens", store.AdminRevokeAdminToken)
	}
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var debug bool
	flag.BoolVar(&debug, "debug", false, "enable debug logging and gin debug mode")
	flag.Parse()

	config, err := cfg.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse config:", err)
		return 1
	}

	l, err := logger.New(logger.Config{ServiceName: serviceName, Debug: config.Debug || debug})
	if err != nil {
		fmt.Fprintln(os.Stderr, "build logger:", err)
		return 1
	}
	defer l.Sync() //nolint:errcheck

	tel, err := telemetry.New(serviceName)
	if err != nil {
		l.Fatal(ctx, "failed to create telemetry client", zap.Error(err))
	}
	defer func() {
		if err := tel.Shutdown(ctx); err != nil {
			l.Error(ctx, "telemetry shutdown error", zap.Error(err))
		}
	}()

	if !config.Debug && !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := utils.CheckMigrationVersion(ctx, l, config.PostgresConnectionString, expectedMigrationVersion); err != nil {
		l.Fatal(ctx, "database schema is not up to date", zap.Error(err))
	}

	catalogStore, err := catalog.NewStore(ctx, config.PostgresConnectionString)
	if err != nil {
		l.Fatal(ctx, "failed to connect to catalog store", zap.Error(err))
	}

	var fixturesRedis *redis.Client
	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			l.Fatal(ctx, "failed to parse redis url for fixture store locking", zap.Error(err))
		}
		fixturesRedis = redis.NewClient(opts)
	}

	fixtureStore, err := fixtures.NewStore(config.FixturesRoot, catalogStore, fixturesRedis)
	if err != nil {
		l.Fatal(ctx, "failed to open fixture store", zap.Error(err))
	}

	apiStore, err := handlers.NewAPIStore(ctx, config, l, catalogStore, fixtureStore)
	if err != nil {
		l.Fatal(ctx, "failed to build API store", zap.Error(err))
	}

	var cleanupFns []func(context.Context) error
	cleanupFns = append(cleanupFns, apiStore.Close)
	if fixturesRedis != nil {
		cleanupFns = append(cleanupFns, func(context.Context) error { return fixturesRedis.Close() })
	}

	exitCode := &atomic.Int32{}
	cleanupOnce := &sync.Once{}
	cleanup := func() {
		cleanupOnce.Do(func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			cwg := &sync.WaitGroup{}
			for idx := range cleanupFns {
				cleanup := cleanupFns[idx]
				cwg.Add(1)
				go func(op func(context.Context) error) {
					defer cwg.Done()
					if err := op(shutdownCtx); err != nil {
						exitCode.Add(1)
						l.Error(shutdownCtx, "cleanup operation error", zap.Error(err))
					}
				}(cleanup)
			}
			cwg.Wait()
		})
	}
	defer cleanup()

	server := newGinServer(ctx, config, tel, l, apiStore, config.Port)

	signalCtx, sigCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer sigCancel()

	wg := &sync.WaitGroup{}
	defer wg.Wait()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()

		l.Info(ctx, "http service starting", zap.Int("port", config.Port))

		err := server.ListenAndServe()
		switch {
		case errors.Is(err, http.ErrServerClosed):
			l.Info(ctx, "http service shutdown successfully")
		case err != nil:
			exitCode.Add(1)
			l.Error(ctx, "http service encountered error", zap.Error(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		<-signalCtx.Done()
		apiStore.SetHealthy(false)
		time.Sleep(shutdownGrace)

		if err := server.Shutdown(ctx); err != nil {
			exitCode.Add(1)
			l.Error(ctx, "http service shutdown error", zap.Error(err))
		}
	}()

	wg.Wait()
	cleanup()

	return int(exitCode.Load())
}

func main() {
	os.Exit(run())
}
