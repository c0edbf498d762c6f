package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/autoimport/internal/config"
	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/handler"
	"github.com/prperemyshlev/autoimport/internal/repository"
	"github.com/prperemyshlev/autoimport/internal/service"
	"github.com/prperemyshlev/autoimport/internal/utils"
	"github.com/prperemyshlev/autoimport/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra   Infrastructure
	config  *config.Config
	router  *gin.Engine
	server  *http.Server
	cleaner *service.TokenCleaner
	workers sync.WaitGroup
}

type handlers struct {
	auth   *handler.AuthHandler
	users  *handler.UserHandler
	orders *handler.OrderHandler
	health *HealthChecker
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	logger := infra.Logger()
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	hasher := utils.NewPasswordHasher(utils.Argon2Params{
		MemoryKB:    cfg.Argon2.MemoryKB,
		Time:        cfg.Argon2.Time,
		Parallelism: cfg.Argon2.Parallelism,
	}, cfg.Argon2.MaxConcurrent)

	var events service.EventPublisher = service.NoopPublisher{}
	if mq := infra.RabbitMQ(); mq != nil {
		events = service.NewAMQPPublisher(mq, cfg.AMQP.Exchange)
	}

	rateLimiter := service.NewRateLimiter(infra.Redis())
	cache := service.NewRedisCache(infra.Redis(), cfg.Cache.TTL.Duration, logger)

	authService := service.NewAuthService(
		repos.User,
		repos.Token,
		jwtManager,
		hasher,
		infra.Metrics(),
		logger,
	)

	orderService := service.NewOrderService(
		repos.Order,
		repos.User,
		cache,
		events,
		infra.Metrics(),
		logger,
		cfg.Orders.AllowBackwardTransitions,
	)

	h := handlers{
		auth:   handler.NewAuthHandler(authService, cfg.IsProduction()),
		users:  handler.NewUserHandler(authService),
		orders: handler.NewOrderHandler(orderService),
		health: NewHealthChecker(infra),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidatorTagNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))
	router.Use(handler.ErrorHandler(logger, cfg.IsProduction()))
	router.NoRoute(handler.NotFound)

	setupRoutes(router, cfg, h, authService, rateLimiter, logger, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:   infra,
		config:  cfg,
		router:  router,
		server:  srv,
		cleaner: service.NewTokenCleaner(authService, cfg.TokenCleanupInterval.Duration, logger),
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h handlers,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	logger *zap.Logger,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", h.health.Handler)

	window := cfg.Security.RateLimitWindow.Duration
	authLimit := func(scope string) gin.HandlerFunc {
		return handler.RateLimitMiddleware(rateLimiter, scope, cfg.Security.RateLimitRequests, window, handler.IPBasedKey, logger)
	}
	requireAuth := handler.AuthMiddleware(authService)
	staff := handler.RequireMinRole(domain.RoleCompany)

	api := router.Group("/api/v1")
	api.Use(handler.RateLimitMiddleware(rateLimiter, "global", cfg.Security.GlobalRateLimitRequests, window, handler.IPBasedKey, logger))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimit("register"), h.auth.Register)
			auth.POST("/login", authLimit("login"), h.auth.Login)
			auth.POST("/refresh", h.auth.Refresh)
			auth.POST("/logout", h.auth.Logout)
			auth.POST("/logout-all", requireAuth, h.auth.LogoutAll)
			auth.GET("/me", requireAuth, h.auth.GetMe)
		}

		users := api.Group("/users", requireAuth)
		{
			users.PATCH("/:id/active", handler.RequireRoles(domain.RoleAdmin), h.users.SetActive)
		}

		orders := api.Group("/orders", requireAuth)
		{
			orders.POST("", staff, h.orders.Create)
			orders.GET("", h.orders.List)
			orders.GET("/:id", h.orders.Get)
			orders.PATCH("/:id/status",
				handler.RequireRoles(domain.RoleAdmin, domain.RoleCompany, domain.RoleDriver),
				h.orders.UpdateStatus,
			)
		}

		api.GET("/track/:code", handler.OptionalAuth(authService), h.orders.Track)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	a.workers.Add(1)
	go func() {
		defer a.workers.Done()
		a.cleaner.Run(workerCtx)
	}()

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("addr", a.server.Addr),
			zap.String("env", a.config.Env),
		)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	stopWorkers()

	if err := a.Shutdown(); err != nil {
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("HTTP server shutdown failed", zap.Error(err))
		return errors.Join(err, a.infra.Shutdown(ctx))
	}

	a.workers.Wait()

	if err := a.infra.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
