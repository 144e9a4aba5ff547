package monitoring

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// PerformanceMonitor tracks simulation counters and step timing. All
// counters are safe to update from agent workers concurrently.
type PerformanceMonitor struct {
	// Tick metrics
	tickCount atomic.Uint64
	stepTime  atomic.Uint64 // nanoseconds, last step

	// Navigation metrics
	replans         atomic.Uint64
	subGoalsReached atomic.Uint64
	pathTicks       atomic.Uint64 // agent-ticks spent off homing
	collisions      atomic.Uint64
	attacks         atomic.Uint64

	mutex        sync.RWMutex
	avgStepTime  float64 // exponential moving average, nanoseconds
	peakStepTime time.Duration
	startTime    time.Time

	slowStepThreshold time.Duration
}

// NewPerformanceMonitor creates a new performance monitor
func NewPerformanceMonitor() *PerformanceMonitor {
	return &PerformanceMonitor{
		startTime:         time.Now(),
		slowStepThreshold: 16 * time.Millisecond,
	}
}

// StepTimer measures one simulation step
type StepTimer struct {
	monitor   *PerformanceMonitor
	startTime time.Time
}

// StartStep begins step timing
func (pm *PerformanceMonitor) StartStep() *StepTimer {
	return &StepTimer{
		monitor:   pm,
		startTime: time.Now(),
	}
}

// EndStep completes step timing and counts the tick
func (st *StepTimer) EndStep() time.Duration {
	elapsed := time.Since(st.startTime)
	st.monitor.recordStep(elapsed)
	return elapsed
}

func (pm *PerformanceMonitor) recordStep(elapsed time.Duration) {
	pm.stepTime.Store(uint64(elapsed.Nanoseconds()))
	count := pm.tickCount.Add(1)

	pm.mutex.Lock()
	if count == 1 {
		pm.avgStepTime = float64(elapsed)
	} else {
		pm.avgStepTime = 0.9*pm.avgStepTime + 0.1*float64(elapsed)
	}
	if elapsed > pm.peakStepTime {
		pm.peakStepTime = elapsed
	}
	pm.mutex.Unlock()
}

// AddReplans counts solver invocations
func (pm *PerformanceMonitor) AddReplans(n int) {
	if n > 0 {
		pm.replans.Add(uint64(n))
	}
}

// IncrementSubGoalsReached counts snaps onto a path cell
func (pm *PerformanceMonitor) IncrementSubGoalsReached() {
	pm.subGoalsReached.Add(1)
}

// IncrementPathTicks counts an agent tick spent transitioning or following a path
func (pm *PerformanceMonitor) IncrementPathTicks() {
	pm.pathTicks.Add(1)
}

// IncrementCollisions counts an agent tick spent touching the target
func (pm *PerformanceMonitor) IncrementCollisions() {
	pm.collisions.Add(1)
}

// IncrementAttacks counts landed attacks
func (pm *PerformanceMonitor) IncrementAttacks() {
	pm.attacks.Add(1)
}

// Metrics is a point-in-time copy of the counters
type Metrics struct {
	Ticks           uint64
	Replans         uint64
	SubGoalsReached uint64
	PathTicks       uint64
	Collisions      uint64
	Attacks         uint64
	LastStep        time.Duration
	AverageStep     time.Duration
	PeakStep        time.Duration
}

// GetCurrentMetrics returns current counters
func (pm *PerformanceMonitor) GetCurrentMetrics() Metrics {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	return Metrics{
		Ticks:           pm.tickCount.Load(),
		Replans:         pm.replans.Load(),
		SubGoalsReached: pm.subGoalsReached.Load(),
		PathTicks:       pm.pathTicks.Load(),
		Collisions:      pm.collisions.Load(),
		Attacks:         pm.attacks.Load(),
		LastStep:        time.Duration(pm.stepTime.Load()),
		AverageStep:     time.Duration(pm.avgStepTime),
		PeakStep:        pm.peakStepTime,
	}
}

// GetDetailedStats returns detailed statistics keyed by name
func (pm *PerformanceMonitor) GetDetailedStats() map[string]interface{} {
	m := pm.GetCurrentMetrics()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	pm.mutex.RLock()
	uptime := time.Since(pm.startTime)
	pm.mutex.RUnlock()

	return map[string]interface{}{
		"uptime_seconds":    uptime.Seconds(),
		"tick_count":        m.Ticks,
		"avg_step_time_ms":  float64(m.AverageStep) / float64(time.Millisecond),
		"peak_step_time_ms": float64(m.PeakStep) / float64(time.Millisecond),
		"replans":           m.Replans,
		"sub_goals_reached": m.SubGoalsReached,
		"path_ticks":        m.PathTicks,
		"collisions":        m.Collisions,
		"attacks":           m.Attacks,
		"memory_alloc_mb":   memStats.Alloc / 1024 / 1024,
		"goroutines":        runtime.NumGoroutine(),
	}
}

// PerformanceAlert represents a performance warning
type PerformanceAlert struct {
	Type      string
	Message   string
	Value     float64
	Threshold float64
	Timestamp time.Time
}

// CheckPerformanceAlerts reports a step slower than the frame budget
func (pm *PerformanceMonitor) CheckPerformanceAlerts() []PerformanceAlert {
	var alerts []PerformanceAlert

	pm.mutex.RLock()
	threshold := pm.slowStepThreshold
	pm.mutex.RUnlock()

	last := time.Duration(pm.stepTime.Load())
	if threshold > 0 && last > threshold {
		alerts = append(alerts, PerformanceAlert{
			Type:      "slow_step",
			Message:   "Simulation step exceeded the frame budget",
			Value:     float64(last) / float64(time.Millisecond),
			Threshold: float64(threshold) / float64(time.Millisecond),
			Timestamp: time.Now(),
		})
	}
	return alerts
}

// SetSlowStepThreshold changes the step duration that raises an alert
func (pm *PerformanceMonitor) SetSlowStepThreshold(d time.Duration) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	pm.slowStepThreshold = d
}

// Reset resets all performance counters
func (pm *PerformanceMonitor) Reset() {
	pm.tickCount.Store(0)
	pm.stepTime.Store(0)
	pm.replans.Store(0)
	pm.subGoalsReached.Store(0)
	pm.pathTicks.Store(0)
	pm.collisions.Store(0)
	pm.attacks.Store(0)

	pm.mutex.Lock()
	pm.avgStepTime = 0
	pm.peakStepTime = 0
	pm.startTime = time.Now()
	pm.mutex.Unlock()
}
