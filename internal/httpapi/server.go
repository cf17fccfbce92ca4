package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/dev-bikash-roy/briloai/internal/auth"
	"github.com/dev-bikash-roy/briloai/internal/feed"
	"github.com/dev-bikash-roy/briloai/internal/globaltime"
	"github.com/dev-bikash-roy/briloai/internal/release"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
	"github.com/dev-bikash-roy/briloai/internal/titles"
)

const defaultMaxBodyBytes int64 = 1 << 20

// Feed serves release feed requests.
type Feed interface {
	Releases(ctx context.Context, q feed.Query) (feed.Payload, error)
}

// Pinger reports archive connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	MaxBodyBytes    int64

	Policy  releasedate.Policy
	Matcher titles.Matcher
}

type Server struct {
	feed       Feed
	archive    Pinger
	tokens     auth.TokenVerifier
	normalizer release.Normalizer
	logger     zerolog.Logger
	opts       Options
}

// NewServer wires the HTTP surface. archive may be nil when no database is
// configured.
func NewServer(feedSvc Feed, archive Pinger, tokens auth.TokenVerifier, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	// Feed requests scrape several pages; leave room for them.
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 60 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Server{
		feed:       feedSvc,
		archive:    archive,
		tokens:     tokens,
		normalizer: release.NewNormalizer(opts.Policy),
		logger:     logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			AllowedOrigins:  origins,
			MaxBodyBytes:    maxBody,
			Policy:          opts.Policy,
			Matcher:         opts.Matcher,
		},
	}
}

// Handler builds the echo instance with middleware and routes.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		MaxAge:       3600,
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", s.opts.MaxBodyBytes)))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	requireToken := s.requireToken()

	e.GET("/api/releases", s.handleReleases, requireToken)
	e.POST("/api/releases", s.handleReleases, requireToken)

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)

	protected := api.Group("", requireToken)
	protected.GET("/releases", s.handleReleasesV1)
	protected.GET("/normalize-date", s.handleNormalizeDate)
	protected.GET("/window", s.handleWindow)
	protected.POST("/merge", s.handleMerge)

	return e
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.feed == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().
		Str("addr", addr).
		Bool("token_auth", s.tokens.Enabled()).
		Bool("archive", s.archive != nil).
		Msg("briloai web server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("briloai web server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	path := c.Request().URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/"):
		if status >= 500 {
			_ = internalError(c, "Internal server error")
			return
		}
		_ = fail(c, status, message, nil)
	case strings.HasPrefix(path, "/api/"):
		if status >= 500 {
			message = "Internal server error"
		}
		_ = legacyError(c, status, message, nil)
	default:
		_ = c.String(status, message)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	archive := "disabled"
	if s.archive != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		if err := s.archive.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("archive ping failed")
			archive = "unavailable"
		} else {
			archive = "ok"
		}
	}
	return success(c, map[string]any{
		"service": "briloai",
		"time":    globaltime.UTC(),
		"archive": archive,
	})
}
