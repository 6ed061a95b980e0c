package app

import (
	"context"
	"language_gems_backend/internal/config"
	"language_gems_backend/internal/controller"
	"language_gems_backend/internal/repository"
	"language_gems_backend/internal/service"
	"language_gems_backend/pkg/database"
	"language_gems_backend/pkg/logger"
	"language_gems_backend/pkg/monitoring"
	"language_gems_backend/pkg/security"
	"language_gems_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	topic      *repository.TopicRepository
	session    *repository.SessionRepository
	gemEvent   *repository.GemEventRepository
	assignment *repository.AssignmentRepository
	progress   *repository.ProgressRepository
}

type services struct {
	auth       *service.AuthService
	content    *service.ContentService
	assignment *service.AssignmentService
	progress   *service.ProgressService
	session    *service.SessionService
}

type controllers struct {
	auth       *controller.AuthController
	content    *controller.ContentController
	session    *controller.SessionController
	assignment *controller.AssignmentController
	progress   *controller.ProgressController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口，由 configwatcher 回调
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Config reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		topic:      repository.NewTopicRepository(db),
		session:    repository.NewSessionRepository(db),
		gemEvent:   repository.NewGemEventRepository(db),
		assignment: repository.NewAssignmentRepository(db),
		progress:   repository.NewProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.content = service.NewContentService(repos.topic, rdb)
	s.assignment = service.NewAssignmentService(repos.assignment, repos.topic)
	s.progress = service.NewProgressService(repos.assignment, repos.progress, repos.session, rdb, cfg, db)
	s.session = service.NewSessionService(repos.session, repos.gemEvent, repos.user, s.progress, db)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		content:    controller.NewContentController(s.content),
		session:    controller.NewSessionController(s.session),
		assignment: controller.NewAssignmentController(s.assignment, s.progress),
		progress:   controller.NewProgressController(s.progress),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(repos *repositories) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			count, err := repos.session.CountInProgress()
			if err != nil {
				logger.Log.Error("failed to count in-progress sessions", zap.Error(err))
				continue
			}
			monitoring.ActiveSessions.Set(float64(count))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("language-gems", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.startBackgroundTasks(repos)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
