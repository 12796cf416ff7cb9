package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators the HTTP API is served from.
type Dependencies struct {
	Bookings domain.BookingService
	Items    domain.ItemService
	// Limiter is optional; requests are not limited when nil.
	Limiter domain.RateLimiter
	// Health reports storage readiness for /healthz.
	Health func(ctx context.Context) error
	Now    func() time.Time
}

// HTTPServer exposes the booking API.
type HTTPServer struct {
	cfg     config.APIConfig
	booking config.BookingConfig
	deps    Dependencies
	engine  *gin.Engine
	server  *http.Server
	log     *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, bookingCfg config.BookingConfig, deps Dependencies, logger *zerolog.Logger) *HTTPServer {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if bookingCfg.DefaultPageSize <= 0 {
		bookingCfg.DefaultPageSize = 10
	}

	switch cfg.HTTP.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.HTTP.Mode)
	}

	srv := &HTTPServer{
		cfg:     cfg,
		booking: bookingCfg,
		deps:    deps,
		log:     logging.Component(logger, "http"),
	}

	engine := gin.New()
	engine.Use(requestID(), recovery(srv.log), requestLogger(srv.log), requestMetrics())
	srv.registerRoutes(engine)
	srv.engine = engine

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) registerRoutes(r *gin.Engine) {
	r.GET("/healthz", s.handleHealth)

	limited := r.Group("/", actingUser(), rateLimit(s.deps.Limiter, s.cfg.RateLimit, s.log))

	bookings := limited.Group("/bookings")
	bookings.POST("", s.handleAddBooking)
	bookings.GET("", s.handleUserBookings)
	bookings.GET("/owner", s.handleOwnerBookings)
	bookings.GET("/owner/export", s.handleOwnerExport)
	bookings.GET("/:bookingId", s.handleGetBooking)
	bookings.PATCH("/:bookingId", s.handleChangeStatus)

	items := limited.Group("/items")
	items.GET("", s.handleOwnerItems)
	items.GET("/:itemId", s.handleGetItem)
}

// Handler returns the routed handler with all middleware.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
