package utils

import (
	"sync"
	"time"
)

// Tracks performance metrics across the system
type MetricsCollector struct {
	mu           sync.RWMutex
	requestCount uint64
	errorCount   uint64

	// Scheduler activity
	schedulerTicks      uint64
	postsAutoPublished  uint64
	schedulerTickErrors uint64

	// Maps operation name to list of latencies in nanoseconds
	operationTimes map[string][]int64

	systemStartTime time.Time
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		operationTimes:  make(map[string][]int64),
		systemStartTime: time.Now(),
	}
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.requestCount++
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errorCount++
}

func (mc *MetricsCollector) RecordSchedulerTick(published int, failed bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.schedulerTicks++
	mc.postsAutoPublished += uint64(published)
	if failed {
		mc.schedulerTickErrors++
	}
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.operationTimes[operationName]; !exists {
		mc.operationTimes[operationName] = make([]int64, 0)
	}
	mc.operationTimes[operationName] = append(
		mc.operationTimes[operationName],
		duration.Nanoseconds(),
	)
}

// Snapshot returns a point-in-time copy of the collected counters, used by
// the health endpoint.
func (mc *MetricsCollector) Snapshot() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return map[string]interface{}{
		"requests":              mc.requestCount,
		"errors":                mc.errorCount,
		"scheduler_ticks":       mc.schedulerTicks,
		"posts_auto_published":  mc.postsAutoPublished,
		"scheduler_tick_errors": mc.schedulerTickErrors,
		"uptime_seconds":        int64(time.Since(mc.systemStartTime).Seconds()),
	}
}
