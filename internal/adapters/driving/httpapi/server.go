package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/core/ports/driving"
	"github.com/quaero-labs/quaero/internal/logger"
)

// DefaultAddr is the default HTTP listen address.
const DefaultAddr = ":8080"

// requestIDHeader carries the per-request correlation ID.
const requestIDHeader = "X-Request-ID"

// Server serves the HTTP API.
type Server struct {
	answers driving.AnswerService
	ingest  driving.IngestService
	engine  *gin.Engine
	addr    string
}

// NewServer creates an HTTP server over the given services.
// If addr is empty, DefaultAddr is used.
func NewServer(answers driving.AnswerService, ingest driving.IngestService, addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), cors(), accessLog())

	s := &Server{
		answers: answers,
		ingest:  ingest,
		engine:  engine,
		addr:    addr,
	}
	s.routes()
	return s
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the server and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)

	v1 := s.engine.Group("/v1")
	v1.POST("/query", s.handleQuery)
	v1.POST("/upload", s.handleUpload)
	v1.GET("/documents", s.handleListDocuments)
	v1.DELETE("/documents/:id", s.handleDeleteDocument)
}

// requestID attaches a correlation ID to each request, honouring a
// client-provided one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// cors allows cross-origin access from any origin.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// accessLog logs one line per request through the shared logger.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrNoContent):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error as a {"detail": ...} payload.
func fail(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"detail": err.Error()})
}
