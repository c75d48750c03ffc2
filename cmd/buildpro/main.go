package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitfantasy/nimo-build/internal/config"
	crmentity "github.com/bitfantasy/nimo-build/internal/crm/entity"
	crmhandler "github.com/bitfantasy/nimo-build/internal/crm/handler"
	crmrepo "github.com/bitfantasy/nimo-build/internal/crm/repository"
	crmsvc "github.com/bitfantasy/nimo-build/internal/crm/service"
	dashhandler "github.com/bitfantasy/nimo-build/internal/dashboard/handler"
	dashsvc "github.com/bitfantasy/nimo-build/internal/dashboard/service"
	"github.com/bitfantasy/nimo-build/internal/middleware"
	pmentity "github.com/bitfantasy/nimo-build/internal/pm/entity"
	pmhandler "github.com/bitfantasy/nimo-build/internal/pm/handler"
	pmrepo "github.com/bitfantasy/nimo-build/internal/pm/repository"
	pmsvc "github.com/bitfantasy/nimo-build/internal/pm/service"
	propentity "github.com/bitfantasy/nimo-build/internal/property/entity"
	prophandler "github.com/bitfantasy/nimo-build/internal/property/handler"
	proprepo "github.com/bitfantasy/nimo-build/internal/property/repository"
	propsvc "github.com/bitfantasy/nimo-build/internal/property/service"
	"github.com/bitfantasy/nimo-build/internal/shared/cache"
	"github.com/bitfantasy/nimo-build/internal/shared/importer"
	"github.com/bitfantasy/nimo-build/internal/shared/notify"
	"github.com/bitfantasy/nimo-build/internal/shared/observability"
	"github.com/bitfantasy/nimo-build/internal/shared/sse"
	"github.com/bitfantasy/nimo-build/internal/shared/storage"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting buildpro service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database, cfg.Log)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := migrate(db); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	// Redis与MinIO都是可选依赖，不可用时降级
	var rdb redis.UniversalClient
	if cfg.Redis.Enabled() {
		client := initRedis(cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("Redis unavailable, dashboard cache disabled", zap.Error(err))
			client.Close()
		} else {
			rdb = client
			defer client.Close()
		}
		cancel()
	}
	dashCache := cache.New(rdb, "buildpro")

	store, err := storage.New(cfg.MinIO)
	if err != nil {
		zapLogger.Warn("MinIO client init failed, archiving disabled", zap.Error(err))
		store = nil
	}
	if store.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := store.EnsureBucket(ctx); err != nil {
			zapLogger.Warn("MinIO bucket unavailable, archiving disabled", zap.Error(err))
			store = nil
		}
		cancel()
	}

	hub := sse.NewHub(zapLogger)
	notifier := notify.New(dashCache, hub, zapLogger)
	batches := importer.NewBatchRepository(db)

	crmServices := crmsvc.NewServices(crmrepo.NewRepositories(db), crmsvc.Deps{
		Batches:  batches,
		Store:    store,
		Notifier: notifier,
		Logger:   zapLogger,
		MaxRows:  cfg.Import.MaxRows,
	})
	pmServices := pmsvc.NewServices(pmrepo.NewRepositories(db), pmsvc.Deps{
		Notifier: notifier,
		Logger:   zapLogger,
	})
	propServices := propsvc.NewServices(proprepo.NewRepositories(db), propsvc.Deps{
		Batches:  batches,
		Store:    store,
		Notifier: notifier,
		Logger:   zapLogger,
		MaxRows:  cfg.Import.MaxRows,
	})
	dashboard := dashsvc.NewDashboardService(
		dashsvc.NewSources(crmServices, pmServices, propServices),
		dashCache, cfg.Metrics.DashboardCacheTTL, zapLogger,
	)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	// SSE不能压缩，否则事件会被缓冲
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/events"})))
	router.Use(middleware.BodyLimit(int64(cfg.Import.MaxUploadMB) << 20))

	registerRoutes(router, cfg, hub, routeSet{
		crm:       crmhandler.NewHandlers(crmServices),
		pm:        pmhandler.NewHandlers(pmServices),
		property:  prophandler.NewHandlers(propServices),
		dashboard: dashhandler.NewDashboardHandler(dashboard),
		batches:   importer.NewBatchHandler(batches),
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// SSE长连接不设写超时
		WriteTimeout: 0,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func migrate(db *gorm.DB) error {
	models := []interface{}{&crmentity.Bid{}, &importer.Batch{}}
	models = append(models, pmentity.All()...)
	models = append(models, propentity.All()...)
	return db.AutoMigrate(models...)
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig, logCfg config.LogConfig) (*gorm.DB, error) {
	level := logger.Warn
	if logCfg.Level == "debug" {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

type routeSet struct {
	crm       *crmhandler.Handlers
	pm        *pmhandler.Handlers
	property  *prophandler.Handlers
	dashboard *dashhandler.DashboardHandler
	batches   *importer.BatchHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, hub *sse.Hub, h routeSet) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	r.GET("/metrics", observability.Handler(observability.Default))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 40400, "message": "Not found"})
	})

	v1 := r.Group("/api/v1", middleware.JWTAuth(cfg.JWT.Secret), middleware.CompanyScope())
	{
		v1.GET("/events", hub.Stream)

		h.crm.RegisterRoutes(v1)
		h.pm.RegisterRoutes(v1)
		h.property.RegisterRoutes(v1)
		h.dashboard.RegisterRoutes(v1)
		h.batches.RegisterRoutes(v1)
	}
}
