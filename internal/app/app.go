package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"questionnaire_backend/internal/config"
	"questionnaire_backend/internal/controller"
	"questionnaire_backend/internal/repository"
	"questionnaire_backend/internal/service"
	"questionnaire_backend/internal/session"
	"questionnaire_backend/pkg/configwatcher"
	"questionnaire_backend/pkg/database"
	"questionnaire_backend/pkg/logger"
	"questionnaire_backend/pkg/monitoring"
	"questionnaire_backend/pkg/security"
	"questionnaire_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	origins         *security.OriginSet
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user          *repository.UserRepository
	role          *repository.RoleRepository
	questionnaire *repository.QuestionnaireRepository
	answer        *repository.AnswerRepository
}

type services struct {
	role          *service.RoleService
	auth          *service.AuthService
	questionnaire *service.QuestionnaireService
	admin         *service.AdminService
	storage       *service.StorageService
	sessions      session.Store
}

type controllers struct {
	auth          *controller.AuthController
	questionnaire *controller.QuestionnaireController
	admin         *controller.AdminController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:          repository.NewUserRepository(db),
		role:          repository.NewRoleRepository(db),
		questionnaire: repository.NewQuestionnaireRepository(db),
		answer:        repository.NewAnswerRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.sessions = session.NewRedisStore(rdb)
	s.storage = service.NewStorageService(&cfg.Storage)
	s.role = service.NewRoleService(repos.role)
	s.auth = service.NewAuthService(repos.user, s.role, s.sessions, cfg.JWT)
	s.questionnaire = service.NewQuestionnaireService(repos.questionnaire, repos.answer, cfg.Questionnaire.AllowResubmit)
	s.admin = service.NewAdminService(s.questionnaire, repos.answer, repos.user, s.storage, cfg.Questionnaire.ExportPrefix)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth),
		questionnaire: controller.NewQuestionnaireController(s.questionnaire),
		admin:         controller.NewAdminController(s.admin),
		health: controller.NewHealthController(map[string]controller.Pinger{
			"database": controller.PingFunc(func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}),
			"redis": controller.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		}),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	a.origins = security.NewOriginSet(cfg.CORS.AllowedOrigins)
	router.Use(security.CORS(a.origins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerReloadables 配置文件变更后可以在线生效的项
func (a *App) registerReloadables(s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetMode(cfg.Server.Mode)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.origins.Update(cfg.CORS.AllowedOrigins)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		if s.questionnaire.AllowResubmit() != cfg.Questionnaire.AllowResubmit {
			logger.Log.Info("resubmission policy changed", zap.Bool("allow_resubmit", cfg.Questionnaire.AllowResubmit))
		}
		s.questionnaire.SetAllowResubmit(cfg.Questionnaire.AllowResubmit)
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// release 模式下只有显式指定 -migrate 才迁移
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerReloadables(services)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, services, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if a.Config.File != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.Config.File, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
