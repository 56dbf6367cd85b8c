// Package server exposes interview sessions over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spigell/interview-coach/internal/rounds"
	"github.com/spigell/interview-coach/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultAddr           = ":8080"
	defaultMaxUploadBytes = 10 << 20
	defaultSessionTTL     = 2 * time.Hour
	shutdownTimeout       = 10 * time.Second
)

type resumeExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

type Config struct {
	Addr           string
	AllowOrigins   []string
	MaxUploadBytes int64
	// SessionTTL is how long a session may sit idle before it is dropped.
	SessionTTL time.Duration
}

type Deps struct {
	Catalog     *rounds.Catalog
	Interviewer *session.Interviewer
	Resumes     resumeExtractor
	Logger      *zap.Logger
}

type Server struct {
	addr      string
	maxUpload int64
	ttl       time.Duration
	deps      Deps
	store     *store
	engine    *gin.Engine
}

func New(cfg *Config, deps Deps) *Server {
	if cfg == nil {
		cfg = &Config{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{
		addr:      cfg.Addr,
		maxUpload: cfg.MaxUploadBytes,
		ttl:       cfg.SessionTTL,
		deps:      deps,
		store:     newStore(),
	}
	if s.addr == "" {
		s.addr = defaultAddr
	}
	if s.maxUpload <= 0 {
		s.maxUpload = defaultMaxUploadBytes
	}
	if s.ttl <= 0 {
		s.ttl = defaultSessionTTL
	}

	s.engine = s.routes(cfg.AllowOrigins)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("http server listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepIdle(sweepCtx)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.deps.Logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}

func (s *Server) sweepIdle(ctx context.Context) {
	ticker := time.NewTicker(max(min(s.ttl/4, time.Minute), time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *Server) evictIdle() {
	for _, id := range s.store.evictIdle(s.ttl) {
		s.deps.Logger.Info("session evicted after inactivity",
			zap.String("session_id", id),
			zap.Duration("ttl", s.ttl),
		)
	}
}

func (s *Server) routes(allowOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.accessLog())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/rounds", s.listRounds)

	sessions := router.Group("/sessions")
	sessions.POST("", s.createSession)
	sessions.GET("/:id", s.withSession(s.getSession))
	sessions.DELETE("/:id", s.withSession(s.terminateSession))
	sessions.POST("/:id/rounds", s.withSession(s.startRound))
	sessions.POST("/:id/answers", s.withSession(s.answer))
	sessions.POST("/:id/feedback", s.withSession(s.retryFeedback))
	sessions.POST("/:id/next-round", s.withSession(s.nextRound))

	return router
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.deps.Logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

type sessionHandler func(c *gin.Context, e *entry)

// withSession resolves the session and holds its lock for the whole request.
func (s *Server) withSession(h sessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, ok := s.store.get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		e.mu.Lock()
		defer e.mu.Unlock()

		if e.session.State() == session.Terminated {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		h(c, e)
	}
}
