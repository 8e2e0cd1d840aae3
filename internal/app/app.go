package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"paper_review_backend/internal/config"
	"paper_review_backend/internal/controller"
	"paper_review_backend/internal/repository"
	"paper_review_backend/internal/service"
	"paper_review_backend/pkg/database"
	"paper_review_backend/pkg/logger"
	"paper_review_backend/pkg/monitoring"
	"paper_review_backend/pkg/security"
	"paper_review_backend/pkg/tracing"
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
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	paper      *repository.PaperRepository
	question   *repository.QuestionRepository
	attachment *repository.AttachmentRepository
	importRepo *repository.ImportRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	review     *service.ReviewService
	paper      *service.PaperService
	question   *service.QuestionService
	attachment *service.AttachmentService
	importSvc  *service.ImportService
	export     *service.ExportService
}

type controllers struct {
	auth       *controller.AuthController
	paper      *controller.PaperController
	question   *controller.QuestionController
	review     *controller.ReviewController
	attachment *controller.AttachmentController
	importCtrl *controller.ImportController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热加载入口，通知所有已注册的回调
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		paper:      repository.NewPaperRepository(db),
		question:   repository.NewQuestionRepository(db),
		attachment: repository.NewAttachmentRepository(db),
		importRepo: repository.NewImportRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.review = service.NewReviewService(repos.paper, repos.question, rdb)
	s.paper = service.NewPaperService(repos.paper, repos.question, s.review)
	s.question = service.NewQuestionService(repos.paper, repos.question, s.review)
	s.attachment = service.NewAttachmentService(repos.question, repos.attachment, repos.paper, s.storage, s.review, &cfg.Upload)
	s.importSvc = service.NewImportService(db, repos.paper, repos.question, repos.importRepo, s.review)
	s.export = service.NewExportService(s.review)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		paper:      controller.NewPaperController(s.paper),
		question:   controller.NewQuestionController(s.question),
		review:     controller.NewReviewController(s.review, s.importSvc, s.export),
		attachment: controller.NewAttachmentController(s.attachment),
		importCtrl: controller.NewImportController(s.importSvc),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	// 下游中间件从上下文取配置
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})

	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("paper-review", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
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
