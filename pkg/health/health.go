// Package health reports the state of a service's backing dependencies.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/stockroom/pkg/logger"
	"github.com/tair/stockroom/pkg/response"
)

// Status values reported per dependency and overall
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Probe reports an error when the dependency is unusable
type Probe func(ctx context.Context) error

// DependencyHealth is the outcome of one probe
type DependencyHealth struct {
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	Required  bool          `json:"required"`
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Report is the body served on /health
type Report struct {
	Service      string                      `json:"service"`
	Status       string                      `json:"status"`
	Dependencies map[string]DependencyHealth `json:"dependencies"`
	Uptime       time.Duration               `json:"uptime_seconds"`
}

type dependency struct {
	probe    Probe
	required bool
}

// Checker probes every registered dependency concurrently
type Checker struct {
	service   string
	timeout   time.Duration
	deps      map[string]dependency
	startTime time.Time
}

// NewChecker creates a new health checker
func NewChecker(service string, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{
		service:   service,
		timeout:   timeout,
		deps:      make(map[string]dependency),
		startTime: time.Now(),
	}
}

// Require registers a dependency the service cannot work without
func (c *Checker) Require(name string, probe Probe) *Checker {
	c.deps[name] = dependency{probe: probe, required: true}
	return c
}

// Optional registers a dependency whose loss only degrades the service
func (c *Checker) Optional(name string, probe Probe) *Checker {
	c.deps[name] = dependency{probe: probe}
	return c
}

// Check runs every probe and folds the results into one report
func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results := make(map[string]DependencyHealth, len(c.deps))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, dep := range c.deps {
		wg.Add(1)
		go func(name string, dep dependency) {
			defer wg.Done()
			result := run(ctx, name, dep)

			mu.Lock()
			results[name] = result
			mu.Unlock()

			if result.Status != StatusHealthy {
				logger.Logger.Warn().
					Str("dependency", name).
					Str("error", result.Error).
					Msg("Dependency health check failed")
			}
		}(name, dep)
	}
	wg.Wait()

	return Report{
		Service:      c.service,
		Status:       overall(results),
		Dependencies: results,
		Uptime:       time.Since(c.startTime),
	}
}

// Handler serves the report, answering 503 only when a required dependency is down
func (c *Checker) Handler(w http.ResponseWriter, r *http.Request) {
	report := c.Check(r.Context())
	status := http.StatusOK
	if report.Status == StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, response.Response{
		Success: status == http.StatusOK,
		Message: c.service + " is " + report.Status,
		Data:    report,
	})
}

// Register mounts the checker on GET /health
func (c *Checker) Register(router *mux.Router) {
	router.HandleFunc("/health", c.Handler).Methods("GET")
}

func run(ctx context.Context, name string, dep dependency) DependencyHealth {
	start := time.Now()
	result := DependencyHealth{
		Name:      name,
		Status:    StatusHealthy,
		Required:  dep.required,
		Timestamp: start,
	}
	if err := dep.probe(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	result.Latency = time.Since(start)
	return result
}

func overall(results map[string]DependencyHealth) string {
	status := StatusHealthy
	for _, result := range results {
		if result.Status == StatusHealthy {
			continue
		}
		if result.Required {
			return StatusUnhealthy
		}
		status = StatusDegraded
	}
	return status
}
