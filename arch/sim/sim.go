// Package sim implements sched.ContextSwitcher on top of goroutines and
// channels, so the scheduler core is fully testable on a host with no ARM
// hardware or emulator involved. It is the "mock context switch" the base
// specification's testable-properties section calls for.
//
// A real context switch suspends whatever is currently executing, mid
// instruction stream, because the CPU itself is interrupted. A goroutine
// cannot be suspended that way without its own cooperation, so the
// simulator requires every task body driven by it to call back into the
// Scheduler once per "instruction window": either scheduler.Sleep, or
// scheduler.Tick standing in for the timer-interrupt trap a real task never
// issues itself. Concretely, a simulated task loop looks like:
//
//	for {
//	    emit(tag)
//	    scheduler.Tick() // "one tick elapsed" -- never called this way on target hardware
//	}
//
// Exactly one task goroutine is ever runnable at a time: Switch hands a
// single-use credit to the incoming task's resume channel and then parks
// the outgoing task (if any) on its own, mirroring the teacher's
// fastWakeupCh rendezvous in eventloop/loop.go, repurposed from "wake the
// loop" to "wake the next task."
package sim

import (
	"sync"

	"github.com/tickrtos/tickrtos/sched"
)

// Switcher is a goroutine-backed sched.ContextSwitcher. The zero value is
// not usable; construct with New.
type Switcher struct {
	mu      sync.Mutex
	resume  map[int]chan struct{}
	started map[int]bool
}

// New constructs a Switcher ready to be passed to sched.WithContextSwitcher.
func New() *Switcher {
	return &Switcher{
		resume:  make(map[int]chan struct{}),
		started: make(map[int]bool),
	}
}

func (s *Switcher) chanFor(id int) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.resume[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.resume[id] = ch
	}
	return ch
}

func (s *Switcher) markStarted(id int) (already bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	already = s.started[id]
	s.started[id] = true
	return already
}

// Start launches next's entry point in a new goroutine. Unlike the real
// ARM926EJ-S primitive, it returns to its caller immediately instead of
// never returning: there is no boot context to abandon on a host test, and
// callers need to keep driving the test from the same goroutine that called
// Scheduler.Start. This divergence is deliberate and documented in
// DESIGN.md.
func (s *Switcher) Start(next *sched.TCB) {
	s.markStarted(next.ID())
	go next.Entry()()
}

// Switch hands control to next, parking the calling goroutine as prev until
// some future Switch or Start targets it again. The task whose own
// goroutine is calling Switch (via Sleep, or via the Stopped trampoline) is
// the one that ends up parked; a tick-driven preemption is always invoked
// from the preempted task's own goroutine too, since that is what a real
// interrupt trap does -- it runs on the interrupted context's stack.
func (s *Switcher) Switch(prev, next *sched.TCB) {
	if !s.markStarted(next.ID()) {
		go next.Entry()()
	} else {
		s.chanFor(next.ID()) <- struct{}{}
	}
	if prev != nil {
		<-s.chanFor(prev.ID())
	}
}
