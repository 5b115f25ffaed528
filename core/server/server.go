package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"clinic-calendar-api/core/cache"
	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/constants"
	"clinic-calendar-api/core/database"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/core/metrics"
	"clinic-calendar-api/core/middleware"
	"clinic-calendar-api/core/secret"
	"clinic-calendar-api/core/utils"
	"clinic-calendar-api/modules/appointment"
	"clinic-calendar-api/modules/assistant"
	"clinic-calendar-api/modules/calendar"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Server owns the HTTP stack and the connections the modules share.
type Server struct {
	echo    *echo.Echo
	cfg     *config.Config
	db      database.IDatabase
	cache   cache.Cache
	metrics *metrics.Metrics
}

// New builds the echo instance and registers every module against the given dependencies.
func New(cfg *config.Config, db database.IDatabase, c cache.Cache, cipher *secret.TokenCipher, m *metrics.Metrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	mw := middleware.NewMiddleware(cfg.JWT, m)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator:    utils.GenerateID,
		TargetHeader: constants.HeaderRequestID,
		RequestIDHandler: func(c echo.Context, id string) {
			c.Set(constants.ContextRequestID, id)
		},
	}))
	e.Use(mw.RequestLogger())

	s := &Server{echo: e, cfg: cfg, db: db, cache: c, metrics: m}

	e.GET("/healthz", s.health)
	if cfg.Metrics.Enabled && m != nil {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(m.Handler()))
	}

	cal := calendar.Init(e, db, c, cfg, cipher, m, mw)
	booking := appointment.Init(e, db, cfg, cal, m, mw)
	assistant.Init(e, cfg, cal, booking, m, mw)

	return s
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultTimeout)
	defer cancel()

	status := map[string]string{"database": "ok", "redis": "ok"}
	healthy := true
	if err := s.db.PingContext(ctx); err != nil {
		logger.Warn("Server:Health:Database:Error", "error", err)
		status["database"] = "unavailable"
		healthy = false
	}
	if err := s.cache.Ping(ctx); err != nil {
		logger.Warn("Server:Health:Redis:Error", "error", err)
		status["redis"] = "unavailable"
		healthy = false
	}

	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, status)
	}
	return c.JSON(http.StatusOK, status)
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Start:Listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("Server:Shutdown:Start", "timeout", timeout)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server:Shutdown:Success")
	return nil
}

// Run loads configuration, connects to Postgres and Redis, and serves until ctx is cancelled.
func Run(ctx context.Context, configFile string) error {
	cfg, err := config.Init(configFile)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	cipher, err := secret.NewTokenCipherFromBase64(cfg.Security.TokenEncryptionKey)
	if err != nil {
		return err
	}
	if !cipher.Enabled() {
		logger.Warn("Server:Run:TokenEncryptionDisabled")
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisCache, err := cache.InitRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisCache.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	return New(cfg, db, redisCache, cipher, m).Start(ctx)
}
