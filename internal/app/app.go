package app

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz_admin_backend/internal/config"
	"quiz_admin_backend/internal/controller"
	"quiz_admin_backend/internal/repository"
	"quiz_admin_backend/internal/service"
	"quiz_admin_backend/pkg/configwatcher"
	"quiz_admin_backend/pkg/database"
	"quiz_admin_backend/pkg/logger"
	"quiz_admin_backend/pkg/monitoring"
	"quiz_admin_backend/pkg/security"
	"quiz_admin_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config         *config.Config
	Router         *gin.Engine
	DB             *gorm.DB
	Redis          *redis.Client
	repos          *repositories
	services       *services
	tracerShutdown func()
}

type repositories struct {
	student  *repository.StudentRepository
	usage    *repository.AIUsageRepository
	score    *repository.ScoreRepository
	question *repository.QuestionRepository
}

type services struct {
	ai     *service.AIService
	auth   *service.AuthService
	usage  *service.AIUsageService
	score  *service.ScoreService
	report *service.ReportService
}

type controllers struct {
	auth   *controller.AuthController
	quiz   *controller.QuizController
	ai     *controller.AIController
	report *controller.ReportController
	health *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, cfg *config.Config) (*repositories, error) {
	// 题库启动时加载一次，此后只读
	source, err := service.NewBankSource(cfg)
	if err != nil {
		return nil, err
	}

	bankData, err := source.Fetch(context.Background(), cfg.Quiz.QuestionBank)
	if err != nil {
		return nil, err
	}
	questions, err := repository.ParseQuestionCSV(bytes.NewReader(bankData))
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Question bank loaded", zap.Int("questions", len(questions)))

	return &repositories{
		student:  repository.NewStudentRepository(db),
		usage:    repository.NewAIUsageRepository(db),
		score:    repository.NewScoreRepository(db),
		question: repository.NewQuestionRepository(questions),
	}, nil
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.ai = service.NewAIService(cfg.AI)
	s.auth = service.NewAuthService(repos.student, repos.usage, repos.score, service.PlainComparer{}, cfg)
	s.usage = service.NewAIUsageService(repos.usage, repos.question, s.ai, rdb, cfg.Quiz.MaxQuestions, cfg.Quiz.MaxPrompts)
	s.score = service.NewScoreService(repos.score, repos.question)
	s.report = service.NewReportService(repos.question, repos.score, repos.usage, cfg.Quiz.MaxPrompts)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth, s.usage, s.score),
		quiz:   controller.NewQuizController(repos.question, s.score),
		ai:     controller.NewAIController(s.usage),
		report: controller.NewReportController(s.report),
		health: controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// importRoster 启动时导入学生名单，已有账号不覆盖
func (a *App) importRoster(s *services, cfg *config.Config) error {
	source, err := service.NewBankSource(cfg)
	if err != nil {
		return err
	}
	data, err := source.Fetch(context.Background(), cfg.Quiz.UserFile)
	if err != nil {
		return err
	}
	count, err := s.auth.ImportRosterJSON(data)
	if err != nil {
		return err
	}
	logger.Log.Info("Student roster imported", zap.Int("students", count))
	return nil
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

	repos, err := app.initRepositories(db, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to load question bank", zap.Error(err))
	}
	app.repos = repos

	services := app.initServices(repos, cfg, rdb)
	app.services = services

	if err := app.importRoster(services, cfg); err != nil {
		logger.Log.Fatal("Failed to import student roster", zap.Error(err))
	}

	controllers := app.initControllers(services, repos, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("quiz-admin", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerShutdown = func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}
	}

	app.registerRoutes(router, controllers, cfg)

	// 配置热更新：目前只有AI配置支持运行中切换
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		services.ai.UpdateConfig(newCfg.AI)
		logger.Log.Info("Config reloaded", zap.String("ai_model", newCfg.AI.Model))
	})

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

	if a.tracerShutdown != nil {
		a.tracerShutdown()
	}

	// 关闭服务
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
