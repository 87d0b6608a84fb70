// Package sched implements the scheduler core: the TCB pool, the 32-band
// ready queue, the sleep list, the tick-driven preemption engine, and the
// ContextSwitcher abstraction that the platform-specific assembly (or a
// host-testable simulator) implements.
package sched

import (
	"fmt"

	"github.com/joeycumines/go-catrate"
)

// Scheduler is the process-wide singleton described in §3. It is shared
// between task context (TaskCreate, Sleep) and interrupt context (Tick);
// every mutating method funnels through withInterruptsMasked.
type Scheduler struct {
	pool      *pool
	ready     *readyBank
	sleeping  *sleepList
	switcher  ContextSwitcher
	mask      InterruptMasker
	logger    *kernelLogger
	diagRate  *catrate.Limiter
	metrics   *Metrics
	current   *TCB
	started   bool
	tickCount uint64
	panicFunc func(msg string, args ...any)
}

// InterruptMasker disables and restores interrupt delivery around a
// scheduler mutation. On a freestanding ARM target this toggles the CPSR I
// bit; under simulation it can be a no-op or a mutex, since the host build
// never runs the tick engine concurrently with task code (arch/sim hands
// off control cooperatively, one goroutine at a time).
type InterruptMasker interface {
	// Mask disables interrupts and returns a token to pass to Unmask.
	Mask() (token any)
	// Unmask restores the interrupt state token was captured from.
	Unmask(token any)
}

// New constructs a Scheduler. Mirrors §6's scheduler_init: the singleton
// starts fully zeroed (no tasks, no current, tick_count 0) and ready for
// TaskCreate calls.
func New(opts ...Option) (*Scheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	p := newPool(cfg.poolCapacity)
	s := &Scheduler{
		pool:      p,
		ready:     newReadyBank(p),
		sleeping:  newSleepList(p),
		switcher:  cfg.switcher,
		mask:      cfg.masker,
		logger:    newKernelLogger(cfg.logOpts),
		diagRate:  cfg.diagRate,
		metrics:   newMetrics(),
		panicFunc: cfg.panicFunc,
	}
	return s, nil
}

// withInterruptsMasked is the single chokepoint every scheduler mutation
// path funnels through (§5, §9): the one place that touches the platform's
// interrupt-mask state.
func (s *Scheduler) withInterruptsMasked(fn func()) {
	tok := s.mask.Mask()
	defer s.mask.Unmask(tok)
	fn()
}

// TaskCreate registers a task: entry is the function to run (never
// expected to return; see the trampoline below for what happens if it
// does), stack is the caller-reserved stack buffer, and priority is
// masked to 0..31. Returns ErrPoolExhausted, ErrZeroStack, or
// ErrStackTooSmall on failure.
func (s *Scheduler) TaskCreate(entry func(), stack []uintptr, priority uint8) (*TCB, error) {
	var t *TCB
	var err error
	s.withInterruptsMasked(func() {
		t, err = s.pool.create(s.trampoline(entry), stack, priority)
		if err == nil {
			s.ready.enqueue(t)
		}
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// trampoline wraps a task entry so that a returning task function (spec
// §9's "an implementer must resolve deliberately" open question) is marked
// Stopped instead of running off the end of its stack. A Stopped task is
// on no list and is never selected again; the trampoline hands the CPU to
// whichever task is next Ready via the same select+commit sub-path Sleep
// uses, rather than returning to boot context.
func (s *Scheduler) trampoline(entry func()) func() {
	return func() {
		entry()
		s.withInterruptsMasked(func() {
			s.current.SetState(Stopped)
		})
		s.yield()
	}
}

// Start transfers control to the highest-priority Ready task (§4.5's
// scheduler_start). On success it returns only if the ContextSwitcher's
// Start does: arch/arm926's never does, while arch/sim's returns at once
// and Start then returns nil. Returns ErrNoReadyTask if the bank is
// empty, or ErrAlreadyStarted if called twice.
func (s *Scheduler) Start() error {
	if s.started {
		return ErrAlreadyStarted
	}
	var next *TCB
	s.withInterruptsMasked(func() {
		next = s.ready.pickNext()
		if next != nil {
			next.SetState(Running)
			s.current = next
			s.started = true
		}
	})
	if next == nil {
		return ErrNoReadyTask
	}
	active.Store(s)
	s.switcher.Start(next)
	return nil
}

// Tick is scheduler_tick (§4.4): it must be invoked only from the
// software-interrupt trap the timer IRQ raises, and it runs the mandatory
// four phases: wake, preempt, select, commit.
func (s *Scheduler) Tick() {
	s.withInterruptsMasked(func() {
		s.tickCount++
		s.tickLocked()
	})
}

func (s *Scheduler) tickLocked() {
	start := s.metrics.beginTick()
	defer s.metrics.endTick(start)

	// 1. Wake phase.
	s.sleeping.wake(s.ready)

	// 2. Preempt phase.
	prev := s.current
	if prev != nil && prev.State() == Running {
		prev.SetState(Ready)
		s.ready.enqueue(prev)
	}

	// 3. Select phase.
	next := s.ready.pickNext()
	if next == nil {
		s.metrics.observeIdle()
		s.logDiagnostic("idle tick: no ready task")
		return
	}

	// 4. Commit phase.
	next.SetState(Running)
	s.current = next
	if prev != next {
		s.metrics.observeSwitch()
		s.switcher.Switch(prev, next)
	}
}

// Sleep is called by the currently running task (never by interrupt
// context) to block for at least ms ticks. sleep(0) yields immediately:
// wakeTicksRemaining is set to 0, so the very next tick's wake phase fires
// before the preempt phase would otherwise have re-queued the caller,
// resolving §9's open question in favor of "yields without sleeping".
func (s *Scheduler) Sleep(ms uint32) error {
	var t *TCB
	ok := false
	s.withInterruptsMasked(func() {
		t = s.current
		if t == nil || t.State() != Running {
			return
		}
		t.wakeTicksRemaining = ms
		t.SetState(Sleeping)
		s.sleeping.enqueue(t)
		ok = true
	})
	if !ok {
		return ErrNotCurrentTask
	}
	s.yield()
	return nil
}

// yield directly invokes the tick engine's select+commit sub-path (§5's
// sleep contract, and the trampoline above), as opposed to re-raising the
// software trap the timer uses. It must be called with interrupts
// unmasked and the caller's TCB already off the ready bank.
func (s *Scheduler) yield() {
	var prev, next *TCB
	s.withInterruptsMasked(func() {
		prev = s.current
		next = s.ready.pickNext()
		if next == nil {
			s.invariantViolation("yield: no ready task to switch to")
			return
		}
		next.SetState(Running)
		s.current = next
		s.metrics.observeSwitch()
	})
	if next == nil {
		return
	}
	s.switcher.Switch(prev, next)
}

// Current returns the currently Running task, or nil before Start.
func (s *Scheduler) Current() *TCB { return s.current }

// TickCount returns the monotonic tick counter.
func (s *Scheduler) TickCount() uint64 { return s.tickCount }

// Metrics returns a snapshot of tick-processing diagnostics (§4.4.1).
func (s *Scheduler) Metrics() MetricsSnapshot { return s.metrics.snapshot() }

func (s *Scheduler) logDiagnostic(msg string, args ...any) {
	if s.logger == nil {
		return
	}
	if s.diagRate != nil {
		if _, ok := s.diagRate.Allow("tick-diagnostic"); !ok {
			return
		}
	}
	s.logger.warn(msg, args...)
}

func (s *Scheduler) invariantViolation(msg string, args ...any) {
	if s.logger != nil {
		s.logger.crit(msg, args...)
	}
	s.panicFunc(fmt.Sprintf(msg, args...))
}
