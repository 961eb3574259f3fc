package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/tallytrack/internal/pkg/circuitbreaker"
	"github.com/piresc/tallytrack/internal/pkg/logger"
)

// Checker reports whether one dependency is usable
type Checker interface {
	CheckHealth(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) CheckHealth(ctx context.Context) error { return f(ctx) }

// Pinger is satisfied by the database and cache clients
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker checks a dependency by pinging it. A nil pinger is treated as healthy.
func PingChecker(p Pinger) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		if p == nil {
			return nil
		}
		return p.Ping(ctx)
	})
}

// ConnChecker checks a connection that reports its own state, such as NATS
func ConnChecker(isConnected func() bool) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		if !isConnected() {
			return errors.New("not connected")
		}
		return nil
	})
}

// BreakerChecker marks an upstream degraded while its breaker is open
func BreakerChecker(cb *circuitbreaker.CircuitBreaker) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		if stats := cb.Stats(); stats.State == circuitbreaker.StateOpen.String() {
			return fmt.Errorf("%w: %s after %d consecutive failures", circuitbreaker.ErrCircuitBreakerOpen, stats.Name, stats.ConsecutiveFailures)
		}
		return nil
	})
}

// Service runs registered checks
type Service struct {
	checkers map[string]Checker
	logger   *logger.ZapLogger
	now      func() time.Time
}

// NewService creates a health service
func NewService(l *logger.ZapLogger) *Service {
	return &Service{
		checkers: make(map[string]Checker),
		logger:   l,
		now:      time.Now,
	}
}

// AddChecker registers a checker under a dependency name
func (s *Service) AddChecker(name string, checker Checker) {
	s.checkers[name] = checker
}

// Response is the detailed health body
type Response struct {
	Status       string                    `json:"status"`
	Timestamp    time.Time                 `json:"timestamp"`
	Service      string                    `json:"service"`
	Version      string                    `json:"version,omitempty"`
	Dependencies map[string]DependencyInfo `json:"dependencies"`
}

// DependencyInfo represents health info for a dependency
type DependencyInfo struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// CheckAll runs every checker and reports unhealthy if any fails
func (s *Service) CheckAll(ctx context.Context) Response {
	response := Response{
		Status:       "healthy",
		Timestamp:    s.now(),
		Dependencies: make(map[string]DependencyInfo, len(s.checkers)),
	}

	names := make([]string, 0, len(s.checkers))
	for name := range s.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.checkers[name].CheckHealth(ctx); err != nil {
			s.logger.Warn("Health check failed",
				logger.String("dependency", name),
				logger.Err(err))
			response.Dependencies[name] = DependencyInfo{Status: "unhealthy", Error: err.Error()}
			response.Status = "unhealthy"
			continue
		}
		response.Dependencies[name] = DependencyInfo{Status: "healthy"}
	}

	return response
}

// BuildInfo describes the running binary
type BuildInfo struct {
	Version     string    `json:"version"`
	GitCommit   string    `json:"git_commit"`
	ServiceName string    `json:"service_name"`
	GoVersion   string    `json:"go_version"`
	Hostname    string    `json:"hostname"`
	ServerTime  time.Time `json:"server_time"`
}

func buildInfo(serviceName, version string) BuildInfo {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	commit := os.Getenv("GIT_COMMIT")
	if commit == "" {
		commit = "unknown"
	}
	return BuildInfo{
		Version:     version,
		GitCommit:   commit,
		ServiceName: serviceName,
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
	}
}

// RegisterEndpoints mounts /ping and the /health group
func RegisterEndpoints(e *echo.Echo, serviceName, version string, svc *Service) {
	info := buildInfo(serviceName, version)

	e.GET("/ping", func(c echo.Context) error {
		out := info
		out.ServerTime = svc.now()
		return c.JSON(http.StatusOK, out)
	})

	healthGroup := e.Group("/health")

	healthGroup.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": serviceName,
		})
	})

	healthGroup.GET("/live", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "alive",
			"service": serviceName,
		})
	})

	healthGroup.GET("/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()

		response := svc.CheckAll(ctx)
		response.Service = serviceName
		if response.Status == "unhealthy" {
			return c.JSON(http.StatusServiceUnavailable, response)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ready",
			"service": serviceName,
		})
	})

	healthGroup.GET("/detailed", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		response := svc.CheckAll(ctx)
		response.Service = serviceName
		response.Version = version

		statusCode := http.StatusOK
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
		return c.JSON(statusCode, response)
	})
}
