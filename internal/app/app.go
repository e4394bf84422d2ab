package app

import (
	"aru_academy_backend/internal/config"
	"aru_academy_backend/internal/controller"
	"aru_academy_backend/internal/repository"
	"aru_academy_backend/internal/service"
	"aru_academy_backend/pkg/database"
	"aru_academy_backend/pkg/logger"
	"aru_academy_backend/pkg/monitoring"
	"aru_academy_backend/pkg/security"
	"aru_academy_backend/pkg/tracing"
	"context"
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
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user       *repository.UserRepository
	approved   *repository.ApprovedUserRepository
	department *repository.DepartmentRepository
	course     *repository.CourseRepository
	resource   *repository.ResourceRepository
	progress   *repository.ProgressRepository
	quiz       *repository.QuizRepository
	aiLog      *repository.AiLogRepository
}

type services struct {
	auth     *service.AuthService
	storage  *service.StorageService
	course   *service.CourseService
	resource *service.ResourceService
	quiz     *service.QuizService
	tutor    *service.TutorService
	admin    *service.AdminService
}

type controllers struct {
	auth     *controller.AuthController
	course   *controller.CourseController
	resource *controller.ResourceController
	quiz     *controller.QuizController
	tutor    *controller.TutorController
	admin    *controller.AdminController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		approved:   repository.NewApprovedUserRepository(db),
		department: repository.NewDepartmentRepository(db),
		course:     repository.NewCourseRepository(db),
		resource:   repository.NewResourceRepository(db),
		progress:   repository.NewProgressRepository(db),
		quiz:       repository.NewQuizRepository(db),
		aiLog:      repository.NewAiLogRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, repos.approved, cfg)
	s.course = service.NewCourseService(repos.course, repos.department)
	s.resource = service.NewResourceService(repos.resource, repos.course, repos.progress, s.storage)
	s.quiz = service.NewQuizService(repos.quiz, repos.course, rdb)

	provider := service.NewHuggingFaceProvider(cfg.AI)
	s.tutor = service.NewTutorService(provider, repos.resource, repos.course, repos.quiz, repos.aiLog, cfg.AI.APIToken, cfg.AI.APIURL)

	s.admin = service.NewAdminService(
		repos.user,
		repos.approved,
		repos.department,
		repos.course,
		repos.resource,
		repos.quiz,
		repos.aiLog,
		s.tutor,
	)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		course:   controller.NewCourseController(s.course, repos.user),
		resource: controller.NewResourceController(s.resource, repos.user),
		quiz:     controller.NewQuizController(s.quiz, repos.user),
		tutor:    controller.NewTutorController(s.tutor, repos.user),
		admin:    controller.NewAdminController(s.admin),
		health:   controller.NewHealthController(db, rdb, cfg),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	// 认证中间件从上下文读取配置
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})

	router.Use(security.CORS(&cfg.CORS))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(&cfg.RateLimit))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	// release模式默认跳过自动迁移，-migrate参数可强制执行
	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != "release")
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
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, repos, cfg, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("aru-academy", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

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
