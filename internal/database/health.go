package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Health check statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus represents the current health status of the database
type HealthStatus struct {
	Status          string                 `json:"status"`
	Timestamp       time.Time              `json:"timestamp"`
	ResponseTime    time.Duration          `json:"response_time"`
	ConnectionCount int                    `json:"connection_count"`
	Errors          []string               `json:"errors,omitempty"`
	Details         map[string]interface{} `json:"details"`
}

// HealthChecker performs on-demand database health checks
type HealthChecker struct {
	manager *Manager
	logger  *zap.Logger

	mu        sync.RWMutex
	lastCheck time.Time
	status    *HealthStatus
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(manager *Manager, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		manager: manager,
		logger:  logger,
	}
}

// Check performs a health check and returns the current status
func (h *HealthChecker) Check(ctx context.Context) *HealthStatus {
	start := time.Now()

	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: start,
		Details:   make(map[string]interface{}),
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.manager.DB().PingContext(checkCtx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, fmt.Sprintf("ping failed: %v", err))
	}

	stats := h.manager.Stats()
	status.ConnectionCount = stats.OpenConnections
	status.Details["open_connections"] = stats.OpenConnections
	status.Details["in_use"] = stats.InUse
	status.Details["idle"] = stats.Idle
	status.Details["wait_count"] = stats.WaitCount
	status.Details["wait_duration"] = stats.WaitDuration.String()

	// A saturated pool degrades service before it fails outright.
	if status.Status == StatusHealthy && stats.MaxOpenConnections > 0 &&
		stats.OpenConnections >= stats.MaxOpenConnections {
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "connection pool exhausted")
	}

	status.ResponseTime = time.Since(start)

	h.mu.Lock()
	h.lastCheck = start
	h.status = status
	h.mu.Unlock()

	if status.Status != StatusHealthy {
		h.logger.Warn("Database health check detected issues",
			zap.String("status", status.Status),
			zap.Strings("errors", status.Errors),
		)
	}

	return status
}

// LastStatus returns the most recent health status, or nil if no check has run
func (h *HealthChecker) LastStatus() *HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}
