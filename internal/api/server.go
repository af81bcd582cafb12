// Package api exposes the ledger service over a local REST interface.
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/julianstephens/wellkept/internal/errors"
	"github.com/julianstephens/wellkept/internal/ledger"
	"github.com/julianstephens/wellkept/internal/logger"
)

const requestTimeout = 5 * time.Second

// Server routes HTTP requests for one owner to the ledger service
type Server struct {
	svc   *ledger.Service
	owner string
	token string
}

// NewServer returns a server for owner. An empty token disables auth.
func NewServer(svc *ledger.Service, owner, token string) *Server {
	return &Server{svc: svc, owner: owner, token: token}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(s.authMiddleware())
	{
		v1.GET("/habits", s.listHabits)
		v1.POST("/habits", s.createHabit)
		v1.GET("/habits/:id", s.getHabit)
		v1.POST("/habits/:id/deactivate", s.deactivateHabit)
		v1.GET("/habits/:id/stats", s.habitStats)
		v1.GET("/habits/:id/log", s.habitLog)
		v1.PUT("/habits/:id/completions/:day", s.markDone)
		v1.DELETE("/habits/:id/completions/:day", s.undoDone)

		v1.GET("/account", s.accountSummary)
		v1.GET("/account/verify", s.verifyAccount)

		v1.GET("/rewards", s.listRewards)
		v1.POST("/rewards/evaluate", s.evaluateRewards)
	}
	return router
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization token"})
			return
		}
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid Authorization token format"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("API request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// writeError maps domain errors onto HTTP status codes
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidDay), errors.Is(err, apperrors.ErrInvalidHabit):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrHabitInactive), errors.Is(err, apperrors.ErrConstraintViolation):
		status = http.StatusConflict
	case apperrors.IsRetryable(err):
		status = http.StatusServiceUnavailable
		c.Header("Retry-After", "1")
	}
	if status == http.StatusInternalServerError {
		logger.Error("API request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "retryable": apperrors.IsRetryable(err)})
}
