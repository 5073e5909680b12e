package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linkedin-automator/internal/content"
	"linkedin-automator/internal/linkedin"
	"linkedin-automator/internal/posts"
)

// HistoryWriter records publish outcomes.
type HistoryWriter interface {
	Create(rec *posts.Record) error
}

// HistoryReader reads recorded publish outcomes back.
type HistoryReader interface {
	Get(id string) (*posts.Record, error)
	List(limit int) ([]posts.Record, error)
}

// Server is the HTTP surface of the service. Handlers share no mutable
// state; every dependency here is either immutable configuration or a
// concurrency-safe client injected at construction.
type Server struct {
	logger   *zap.Logger
	linkedin *linkedin.Client
	content  *content.Service

	// history is optional. When nil, publish outcomes are not recorded
	// and /posts reports the store as disabled.
	history       HistoryWriter
	historyReader HistoryReader

	metrics Metrics

	engine     *gin.Engine
	httpServer *http.Server
}

type Config struct {
	Host string
	Port int

	EnableCORS bool
	Debug      bool
}

// NewServer returns an instantiated HTTP server. The server has the
// following dependencies:
//
// logger - for structured logging
// li - the LinkedIn client (auth, identity, publish)
// contentSvc - the content generation service
// metrics - request/publish counters, Noop{} to disable
//
// history and historyReader may both be nil to run without the publish
// history store.
func NewServer(
	logger *zap.Logger,
	cfg Config,
	li *linkedin.Client,
	contentSvc *content.Service,
	history HistoryWriter,
	historyReader HistoryReader,
	metrics Metrics,
) (*Server, error) {
	s := Server{
		logger:        logger,
		linkedin:      li,
		content:       contentSvc,
		history:       history,
		historyReader: historyReader,
		metrics:       metrics,
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(s.recovery())
	engine.Use(s.requestMetrics())

	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		engine.Use(cors.New(corsConfig))
	}

	s.engine = engine
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: engine,
		// generation calls can take most of the gemini client's 30s budget
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 60,
	}

	return &s, nil
}

func (s *Server) validate() error {
	var missingDeps []string

	for _, tc := range []struct {
		dep string
		chk func() bool
	}{
		{
			dep: "logger",
			chk: func() bool { return s.logger != nil },
		},
		{
			dep: "linkedin client",
			chk: func() bool { return s.linkedin != nil },
		},
		{
			dep: "content service",
			chk: func() bool { return s.content != nil },
		},
		{
			dep: "metrics",
			chk: func() bool { return s.metrics != nil },
		},
	} {
		if !tc.chk() {
			missingDeps = append(missingDeps, tc.dep)
		}
	}

	if len(missingDeps) > 0 {
		return fmt.Errorf(
			"unable to initialize server due to (%d) missing dependencies: %s",
			len(missingDeps),
			strings.Join(missingDeps, ","),
		)
	}

	return nil
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/login", s.handleLogin)
	s.engine.GET("/callback", s.handleCallback)
	s.engine.GET("/userinfo", s.handleUserInfo)

	s.engine.POST("/generate-image", s.handleGenerateImage)
	s.engine.POST("/enhance-prompt", s.handleEnhancePrompt)
	s.engine.POST("/image-prompt", s.handleImagePrompt)
	s.engine.POST("/recent-news", s.handleRecentNews)

	s.engine.POST("/publish-image", s.handlePublishImage)
	s.engine.GET("/posts", s.handleListPosts)
	s.engine.GET("/posts/:id", s.handleGetPost)

	s.engine.GET("/metrics", gin.WrapH(MetricsHandler()))
}

// Handler exposes the underlying engine, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts the listener down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// recovery turns any panic into a generic internal-error response with
// the failure's message, after logging it.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		s.logger.Error("handler panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("%v", recovered),
		})
	})
}

func (s *Server) requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.IncRequest(route, strconv.Itoa(c.Writer.Status()))
	}
}
