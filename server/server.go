package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dinerozz/focus-session-backend/config"
	"github.com/dinerozz/focus-session-backend/docs"
	eventHandler "github.com/dinerozz/focus-session-backend/internal/handler/event"
	focusSessionHandler "github.com/dinerozz/focus-session-backend/internal/handler/focus_session"
	historyHandler "github.com/dinerozz/focus-session-backend/internal/handler/history"
	userHandler "github.com/dinerozz/focus-session-backend/internal/handler/user"
	"github.com/dinerozz/focus-session-backend/internal/repository"
	"github.com/dinerozz/focus-session-backend/internal/service/advisor"
	"github.com/dinerozz/focus-session-backend/internal/service/classifier"
	"github.com/dinerozz/focus-session-backend/internal/service/event"
	"github.com/dinerozz/focus-session-backend/internal/service/focus_session"
	"github.com/dinerozz/focus-session-backend/internal/service/history"
	"github.com/dinerozz/focus-session-backend/internal/service/redis"
	"github.com/dinerozz/focus-session-backend/internal/service/user"
	"github.com/dinerozz/focus-session-backend/internal/worker"
	"github.com/dinerozz/focus-session-backend/middleware"
	"github.com/dinerozz/focus-session-backend/migrations"
	"github.com/dinerozz/focus-session-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 30 * time.Second

type RouterHandler struct {
	userHandler         *userHandler.UserHandler
	focusSessionHandler *focusSessionHandler.FocusSessionHandler
	historyHandler      *historyHandler.HistoryHandler
	eventHandler        *eventHandler.EventHandler
}

// App is the wired HTTP application plus its background classifier pinger.
type App struct {
	Router    *gin.Engine
	KeepAlive *worker.KeepAlive
}

// NewApp wires repositories, services and handlers. cache may be nil.
func NewApp(ctx context.Context, cfg *config.Config, db *sqlx.DB, cache redis.ServiceInterface, logger *slog.Logger) (*App, error) {
	jwt := utils.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	eventRepo := repository.NewEventRepository(db)
	predictionRepo := repository.NewPredictionRepository(db)

	gateway := classifier.NewGateway(classifier.Config{
		URL:            cfg.Classifier.URL,
		MaxAttempts:    cfg.Classifier.MaxAttempts,
		AttemptTimeout: cfg.Classifier.AttemptTimeout,
		RetryBudget:    cfg.Classifier.RetryBudget,
		BackoffBase:    cfg.Classifier.BackoffBase,
		BackoffMax:     cfg.Classifier.BackoffMax,
		RatioScale:     classifier.RatioScale(cfg.Classifier.RatioScale),
	}, logger.With(slog.String("component", "classifier")))

	adv, err := advisor.NewFromConfig(ctx, cfg.Advisor, logger.With(slog.String("component", "advisor")))
	if err != nil {
		return nil, err
	}

	var (
		historyCache redis.Cache
		limiter      redis.RateLimiter
	)
	if cache != nil {
		historyCache = cache
		limiter = cache
	}

	userSrv := user.NewUserService(userRepo, jwt)
	historySrv := history.NewService(sessionRepo, historyCache, cfg.History, logger.With(slog.String("component", "history")))
	sessionSrv := focus_session.NewService(gateway, adv, historySrv, predictionRepo, logger.With(slog.String("component", "session")))
	eventSrv := event.NewService(eventRepo)

	routerHandler := &RouterHandler{
		userHandler:         userHandler.NewUserHandler(userSrv),
		focusSessionHandler: focusSessionHandler.NewFocusSessionHandler(sessionSrv, adv),
		historyHandler:      historyHandler.NewHistoryHandler(historySrv),
		eventHandler:        eventHandler.NewEventHandler(eventSrv),
	}

	return &App{
		Router:    setupRouter(routerHandler, cfg, jwt, limiter, logger),
		KeepAlive: worker.NewKeepAlive(gateway, cfg.Classifier.KeepAliveInterval, logger.With(slog.String("component", "keepalive"))),
	}, nil
}

// RunServer serves HTTP and runs the keep-alive worker until SIGINT/SIGTERM.
func RunServer(cfg *config.Config, logger *slog.Logger) error {
	switch cfg.Env {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewRepository(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DB.Driver == "sqlite" {
		if err := migrations.Up(db.DB, "sqlite"); err != nil {
			return err
		}
	}

	var cache redis.ServiceInterface
	if cfg.Redis.Enabled() {
		redisSrv, err := redis.NewRedisService(ctx, redis.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Warn("redis unavailable, caching and rate limiting disabled", slog.String("error", err.Error()))
		} else {
			defer redisSrv.Close()
			cache = redisSrv
		}
	}

	app, err := NewApp(ctx, cfg, db, cache, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", slog.String("port", cfg.Server.Port), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return app.KeepAlive.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", slog.String("error", err.Error()))
			return err
		}
		logger.Info("server gracefully stopped")
		return nil
	})

	return g.Wait()
}

func setupRouter(routerHandler *RouterHandler, cfg *config.Config, jwt *utils.JWTManager, limiter redis.RateLimiter, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "focus-session-backend",
		})
	})

	docs.SwaggerInfo.Host = hostOf(cfg.Server.BaseURL)
	docs.SwaggerInfo.Schemes = []string{"http", "https"}
	docs.SwaggerInfo.BasePath = "/api"

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	publicRoutes := r.Group("/api")
	{
		publicRoutes.POST("/auth/register", routerHandler.userHandler.Register)
		publicRoutes.POST("/auth/login", routerHandler.userHandler.Login)
		publicRoutes.POST("/auth/logout", routerHandler.userHandler.Logout)

		publicRoutes.POST("/predict",
			middleware.RateLimitMiddleware(limiter, "predict", cfg.Redis.RateLimit, cfg.Redis.Window, logger),
			routerHandler.focusSessionHandler.Predict)
		publicRoutes.POST("/advice", routerHandler.focusSessionHandler.Advice)
	}

	privateRoutes := r.Group("/api")
	privateRoutes.Use(middleware.AuthenticationMiddleware(jwt))
	{
		privateRoutes.GET("/auth/profile", routerHandler.userHandler.Profile)

		privateRoutes.POST("/sessions", routerHandler.focusSessionHandler.CreateSession)

		privateRoutes.GET("/history", routerHandler.historyHandler.List)
		privateRoutes.GET("/history/trend", routerHandler.historyHandler.Trend)
		privateRoutes.GET("/history/stats", routerHandler.historyHandler.Stats)

		privateRoutes.POST("/events", routerHandler.eventHandler.Create)
		privateRoutes.GET("/events", routerHandler.eventHandler.List)
	}

	return r
}

func hostOf(baseURL string) string {
	return strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
}
