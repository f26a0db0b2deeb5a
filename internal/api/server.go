package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/cschnabel/svtracker/internal/auth"
	"github.com/cschnabel/svtracker/internal/model"
)

// RecordStore is the record store as the HTTP layer sees it. LoadAll returns a
// usable (possibly empty) table even when it also returns an error.
type RecordStore interface {
	LoadAll(ctx context.Context) (model.Table, error)
	Append(ctx context.Context, rec model.MatchRecord) error
}

type Options struct {
	Records      RecordStore
	Auth         *auth.Authenticator
	Logger       *zap.Logger
	StaticDir    string
	CookieSecure bool
	Classes      []string
	// Location is the timezone submissions are stamped in. Defaults to UTC.
	Location *time.Location
	Now      func() time.Time
}

type Server struct {
	echo         *echo.Echo
	records      RecordStore
	auth         *auth.Authenticator
	log          *zap.Logger
	staticDir    string
	cookieSecure bool
	classes      []string
	loc          *time.Location
	now          func() time.Time
}

func NewServer(opts Options) *Server {
	s := &Server{
		records:      opts.Records,
		auth:         opts.Auth,
		log:          opts.Logger,
		staticDir:    opts.StaticDir,
		cookieSecure: opts.CookieSecure,
		classes:      opts.Classes,
		loc:          opts.Location,
		now:          opts.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.echo = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}),
		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:    true,
			LogURI:       true,
			LogStatus:    true,
			LogLatency:   true,
			LogRequestID: true,
			LogError:     true,
			LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
				fields := []zap.Field{
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.Duration("latency", v.Latency),
					zap.String("request_id", v.RequestID),
				}
				if v.Error != nil {
					fields = append(fields, zap.Error(v.Error))
				}
				s.log.Info("http request", fields...)
				return nil
			},
		}),
	)

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/login", s.handleLogin)
	api.POST("/logout", s.handleLogout)
	api.GET("/session", s.handleSession)

	private := api.Group("", s.requireSession)
	private.GET("/records", s.handleRecords)
	private.POST("/records", s.handleSubmit)
	private.GET("/options", s.handleOptions)
	private.GET("/summary", s.handleSummary)
	private.GET("/decks", s.handleDecks)
	private.GET("/decks/:deck", s.handleDeckFocus)
	private.GET("/trend", s.handleTrend)
	private.POST("/form/apply", s.handleFormApply)
	private.GET("/export.csv", s.handleExport)

	if s.staticDir != "" {
		if fi, err := os.Stat(s.staticDir); err == nil && fi.IsDir() {
			e.Static("/", s.staticDir)
		} else {
			e.GET("/", func(c echo.Context) error {
				return c.String(http.StatusOK, "svtracker API is running. Frontend build not found.")
			})
		}
	}

	return e
}

func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		err := s.echo.StartServer(httpServer)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.log.Error("graceful shutdown failed, forcing close", zap.Error(err))
			return s.echo.Close()
		}
		return nil
	case err := <-errCh:
		return err
	}
}

type envelope struct {
	Data    any    `json:"data"`
	Warning string `json:"warning,omitempty"`
}

func writeJSON(c echo.Context, status int, payload any) error {
	return c.JSONPretty(status, payload, "  ")
}

func (s *Server) writeError(c echo.Context, status int, message string, extra map[string]any) error {
	if status >= http.StatusInternalServerError {
		s.log.Error("http error", zap.Int("status", status), zap.String("error", message))
	}
	body := map[string]any{"error": message}
	for k, v := range extra {
		body[k] = v
	}
	return writeJSON(c, status, body)
}
