package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/infrastructure/logger"
	"github.com/shipdesk/backend/internal/infrastructure/scheduler"
)

// HealthCheck checks one dependency
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// JobStatusReader exposes the outcome of background job runs
type JobStatusReader interface {
	JobNames() []string
	LastRun(jobName string) (scheduler.JobRun, bool)
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name         string
	version      string
	startTime    time.Time
	checks       []HealthCheck
	jobs         JobStatusReader
	checkTimeout time.Duration
}

// SystemHandlerOption configures a SystemHandler
type SystemHandlerOption func(*SystemHandler)

// WithHealthChecks adds dependency checks to /health
func WithHealthChecks(checks ...HealthCheck) SystemHandlerOption {
	return func(h *SystemHandler) {
		h.checks = append(h.checks, checks...)
	}
}

// WithJobStatus reports background job runs on /health
func WithJobStatus(jobs JobStatusReader) SystemHandlerOption {
	return func(h *SystemHandler) {
		h.jobs = jobs
	}
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, opts ...SystemHandlerOption) *SystemHandler {
	h := &SystemHandler{
		name:         name,
		version:      version,
		startTime:    time.Now(),
		checkTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts ping and info under rg
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/system")
	g.GET("/info", h.GetSystemInfo)
	g.GET("/ping", h.Ping)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns version and uptime
//
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns name, version, Go version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping answers liveness checks
//
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=PingResponse}
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// CheckResult is the outcome of one dependency check
type CheckResult struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// JobStatus summarises the latest finished run of a job
type JobStatus struct {
	Status      scheduler.JobStatus `json:"status"`
	Error       string              `json:"error,omitempty"`
	RetryCount  int                 `json:"retry_count"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// HealthResponse is the body of /health
type HealthResponse struct {
	Status string                 `json:"status"`
	Time   string                 `json:"time"`
	Checks map[string]CheckResult `json:"checks"`
	Jobs   map[string]*JobStatus  `json:"jobs,omitempty"`
}

// Health reports readiness. It answers 503 when any dependency check fails.
// Job outcomes are reported but never make the service unhealthy.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.checkTimeout)
	defer cancel()

	resp := HealthResponse{
		Status: "healthy",
		Time:   time.Now().Format(time.RFC3339),
		Checks: make(map[string]CheckResult, len(h.checks)),
	}
	for _, check := range h.checks {
		start := time.Now()
		result := CheckResult{Status: "ok"}
		if err := check.Check(ctx); err != nil {
			result.Status = "error"
			result.Error = err.Error()
			resp.Status = "unhealthy"
			logger.GetGinLogger(c).Warn("Health check failed",
				zap.String("check", check.Name),
				zap.Error(err),
			)
		}
		result.Latency = time.Since(start).Round(time.Microsecond).String()
		resp.Checks[check.Name] = result
	}
	resp.Jobs = h.jobStatuses()

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (h *SystemHandler) jobStatuses() map[string]*JobStatus {
	if h.jobs == nil {
		return nil
	}
	names := h.jobs.JobNames()
	out := make(map[string]*JobStatus, len(names))
	for _, name := range names {
		run, ok := h.jobs.LastRun(name)
		if !ok {
			out[name] = &JobStatus{Status: scheduler.JobStatusPending}
			continue
		}
		out[name] = &JobStatus{
			Status:      run.Status,
			Error:       run.Error,
			RetryCount:  run.RetryCount,
			CompletedAt: run.CompletedAt,
		}
	}
	return out
}
