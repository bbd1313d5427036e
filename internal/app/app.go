package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"testlab_backend/internal/config"
	"testlab_backend/internal/controller"
	"testlab_backend/internal/service"
	"testlab_backend/internal/store"
	"testlab_backend/pkg/database"
	"testlab_backend/pkg/logger"
	"testlab_backend/pkg/monitoring"
	"testlab_backend/pkg/security"
	"testlab_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services  *services
	autosaver *store.AutoSaver
	tracer    *sdktrace.TracerProvider
}

type services struct {
	sessions    *service.SessionRegistry
	catalog     *service.CatalogService
	progression *service.ProgressionService
	submission  *service.SubmissionService
	chat        *service.ChatService
	hub         *service.Hub
}

type controllers struct {
	auth     *controller.AuthController
	exercise *controller.ExerciseController
	ws       *controller.WSController
	health   *controller.HealthController
}

func (a *App) initServices(state *store.State, rdb *redis.Client, catalog *service.CatalogService) *services {
	s := &services{}

	s.sessions = service.NewSessionRegistry()
	s.catalog = catalog
	s.progression = service.NewProgressionService(state, catalog)
	s.submission = service.NewSubmissionService(state, catalog, s.progression)
	s.chat = service.NewChatService(state)
	s.hub = service.NewHub(rdb, state, s.sessions, s.chat, s.submission, s.progression)
	go s.hub.Run()

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(a.Config),
		exercise: controller.NewExerciseController(s.catalog, s.progression, a.Config),
		ws:       controller.NewWSController(s.hub),
		health:   controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests == 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window == 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// initStore 按配置选择快照存储并恢复启动快照
func (a *App) initStore(cfg *config.Config, state *store.State) store.Store {
	var st store.Store
	switch cfg.Store.Type {
	case "mysql":
		db, err := database.InitDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
			log.Fatalf("Failed to initialize database: %v", err)
		}
		a.DB = db
		dbStore, err := store.NewDBStore(db)
		if err != nil {
			logger.Log.Fatal("Failed to initialize snapshot tables", zap.Error(err))
			log.Fatalf("Failed to initialize snapshot tables: %v", err)
		}
		st = dbStore
	default:
		fileStore, err := store.NewFileStore(cfg.Store.DataDir)
		if err != nil {
			logger.Log.Fatal("Failed to initialize data directory", zap.Error(err))
			log.Fatalf("Failed to initialize data directory: %v", err)
		}
		st = fileStore
	}

	submissions, chats, err := st.Load()
	if err != nil {
		logger.Log.Fatal("Failed to load snapshots", zap.Error(err))
		log.Fatalf("Failed to load snapshots: %v", err)
	}
	state.LoadFrom(submissions, chats)
	logger.Log.Info("Snapshots loaded",
		zap.Int("students", len(submissions)),
		zap.Int("chats", len(chats)))

	return st
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	app := &App{Config: cfg}

	state := store.NewState()
	st := app.initStore(cfg, state)

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
			log.Fatalf("Failed to initialize redis: %v", err)
		}
		app.Redis = rdb
	}

	exercises, err := service.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		logger.Log.Fatal("Failed to load exercise catalog", zap.Error(err))
		log.Fatalf("Failed to load exercise catalog: %v", err)
	}
	catalog := service.NewCatalogService(exercises)
	logger.Log.Info("Exercise catalog loaded", zap.Int("exercises", catalog.Len()))

	app.services = app.initServices(state, app.Redis, catalog)
	controllers := app.initControllers(app.services)

	app.autosaver = store.NewAutoSaver(st, state)
	go app.autosaver.Run(cfg.Store.SaveInterval)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("testlab-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers)

	return app
}

// OnConfigReload 配置热更新回调 只应用运行期间可以安全调整的项
func (a *App) OnConfigReload(cfg *config.Config) {
	logger.Log.Info("Config reloaded")
	a.autosaver.SetInterval(cfg.Store.SaveInterval)
	a.Config.Admin = cfg.Admin
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

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 先关连接，再做最后一次快照保存
	a.services.hub.Stop()
	a.autosaver.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
