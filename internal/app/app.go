package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"pyland_backend/internal/config"
	"pyland_backend/internal/controller"
	"pyland_backend/internal/repository"
	"pyland_backend/internal/service"
	"pyland_backend/pkg/database"
	"pyland_backend/pkg/logger"
	"pyland_backend/pkg/monitoring"
	"pyland_backend/pkg/security"
	"pyland_backend/pkg/tracing"
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
	workerCancel    context.CancelFunc
}

type repositories struct {
	user         *repository.UserRepository
	course       *repository.CourseRepository
	lesson       *repository.LessonRepository
	step         *repository.StepRepository
	progress     *repository.ProgressRepository
	submission   *repository.SubmissionRepository
	certificate  *repository.CertificateRepository
	notification *repository.NotificationRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	catalog      *service.CatalogService
	progress     *service.ProgressService
	review       *service.ReviewService
	certificate  *service.CertificateService
	notification *service.NotificationService
	storage      *service.StorageService
	content      *service.ContentService
	dashboard    *service.DashboardService
	reviewHub    *service.ReviewHub
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	course       *controller.CourseController
	progress     *controller.ProgressController
	submission   *controller.SubmissionController
	review       *controller.ReviewController
	certificate  *controller.CertificateController
	dashboard    *controller.DashboardController
	notification *controller.NotificationController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置文件热更新回调入口
func (a *App) ApplyConfig(cfg *config.Config) {
	a.services.review.SetThresholds(cfg.Review.MinCommentLength, cfg.Review.MinImprovementDescLength)
	a.services.certificate.SetNumberPrefix(cfg.Certificate.NumberPrefix)
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		course:       repository.NewCourseRepository(db),
		lesson:       repository.NewLessonRepository(db),
		step:         repository.NewStepRepository(db),
		progress:     repository.NewProgressRepository(db),
		submission:   repository.NewSubmissionRepository(db),
		certificate:  repository.NewCertificateRepository(db),
		notification: repository.NewNotificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.catalog = service.NewCatalogService(repos.course, repos.lesson, repos.step, repos.progress, db)
	s.progress = service.NewProgressService(repos.course, repos.lesson, repos.step, repos.progress, db)
	s.notification = service.NewNotificationService(repos.notification, repos.user, rdb, cfg.Notification)
	s.certificate = service.NewCertificateService(
		repos.certificate,
		repos.course,
		repos.lesson,
		repos.submission,
		repos.user,
		cfg.Certificate.NumberPrefix,
		db,
	)

	s.reviewHub = service.NewReviewHub(rdb)
	go s.reviewHub.Run()

	s.review = service.NewReviewService(
		repos.submission,
		repos.course,
		repos.lesson,
		repos.user,
		s.certificate,
		s.notification,
		db,
	)
	s.review.Events = s.reviewHub
	s.review.SetThresholds(cfg.Review.MinCommentLength, cfg.Review.MinImprovementDescLength)

	s.content = service.NewContentService(repos.step, repos.course, repos.user, s.storage,
		filepath.Join(cfg.Storage.LocalPath, "temp"))
	s.dashboard = service.NewDashboardService(
		repos.user,
		repos.course,
		repos.progress,
		repos.submission,
		repos.certificate,
		repos.notification,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user, s.content),
		course:       controller.NewCourseController(s.catalog, s.content),
		progress:     controller.NewProgressController(s.progress),
		submission:   controller.NewSubmissionController(s.review),
		review:       controller.NewReviewController(s.review, s.reviewHub),
		certificate:  controller.NewCertificateController(s.certificate),
		dashboard:    controller.NewDashboardController(s.dashboard),
		notification: controller.NewNotificationController(s.notification),
		health:       controller.NewHealthController(db, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	ctx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel

	go s.notification.Run(ctx)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 队列和实时推送会降级，核心业务不依赖 Redis
		logger.Log.Warn("Redis unavailable, queue and live feed run degraded", zap.Error(err))
		rdb = nil
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

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("pyland-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

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

	if a.workerCancel != nil {
		a.workerCancel()
	}
	if a.services != nil && a.services.reviewHub != nil {
		a.services.reviewHub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
