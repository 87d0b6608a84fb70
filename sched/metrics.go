package sched

import "time"

// Metrics accumulates tick-engine diagnostics: counts of context switches,
// idle ticks, and a streaming P99/P50 estimate of tick-processing
// duration. Purely observational — nothing here feeds back into a
// scheduling decision (§9's Non-goals exclude fairness tuning).
type Metrics struct {
	clock      func() time.Time
	durations  *pSquareMultiQuantile
	switches   uint64
	idleTicks  uint64
	totalTicks uint64
}

// MetricsSnapshot is an immutable point-in-time copy returned by
// Scheduler.Metrics.
type MetricsSnapshot struct {
	TotalTicks      uint64
	ContextSwitches uint64
	IdleTicks       uint64
	TickDurationP50 time.Duration
	TickDurationP99 time.Duration
	TickDurationMax time.Duration
}

func newMetrics() *Metrics {
	return &Metrics{
		clock:     time.Now,
		durations: newPSquareMultiQuantile(0.50, 0.99),
	}
}

func (m *Metrics) beginTick() time.Time {
	m.totalTicks++
	return m.clock()
}

func (m *Metrics) endTick(start time.Time) {
	m.durations.Update(float64(m.clock().Sub(start)))
}

func (m *Metrics) observeSwitch() { m.switches++ }

func (m *Metrics) observeIdle() { m.idleTicks++ }

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TotalTicks:      m.totalTicks,
		ContextSwitches: m.switches,
		IdleTicks:       m.idleTicks,
		TickDurationP50: time.Duration(m.durations.Quantile(0)),
		TickDurationP99: time.Duration(m.durations.Quantile(1)),
		TickDurationMax: time.Duration(m.durations.estimators[1].Max()),
	}
}
