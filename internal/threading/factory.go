package threading

import (
	"gridchase/internal/threading/core"
	"gridchase/internal/threading/monitoring"
)

// Components holds the threading-related pieces shared by a simulation
type Components struct {
	WorkerPool         *core.WorkerPool
	PerformanceMonitor *monitoring.PerformanceMonitor
}

// NewComponents creates and starts the worker pool and the monitor. A worker
// count of 1 or less leaves the pool nil and agents are advanced inline.
func NewComponents(workers int) *Components {
	tc := &Components{
		PerformanceMonitor: monitoring.NewPerformanceMonitor(),
	}
	if workers > 1 {
		tc.WorkerPool = core.NewWorkerPool(workers)
		tc.WorkerPool.Start()
	}
	return tc
}

// Shutdown stops the worker pool
func (tc *Components) Shutdown() {
	if tc.WorkerPool != nil {
		tc.WorkerPool.Stop()
	}
}

// GetDetailedPerformanceStats returns detailed performance statistics
func (tc *Components) GetDetailedPerformanceStats() map[string]interface{} {
	if tc.PerformanceMonitor != nil {
		return tc.PerformanceMonitor.GetDetailedStats()
	}
	return nil
}

// CheckPerformanceAlerts returns any performance warnings
func (tc *Components) CheckPerformanceAlerts() []monitoring.PerformanceAlert {
	if tc.PerformanceMonitor != nil {
		return tc.PerformanceMonitor.CheckPerformanceAlerts()
	}
	return nil
}
