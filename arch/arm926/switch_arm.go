//go:build arm

// Package arm926 implements sched.ContextSwitcher for the real
// ARM926EJ-S core targeted by the QEMU versatilepb machine. It only builds
// under GOARCH=arm; host tests use arch/sim instead.
//
// Mode discipline: task code runs in System mode (privileged, but banked
// like User mode, so it shares User mode's r13/r14) with IRQs enabled. The
// timer IRQ traps to IRQ mode, which has its own banked sp/lr; boot's IRQ
// vector stub drops into Supervisor mode before calling into Go, so the sp
// this package reads and writes is always the task's System-mode sp, never
// the IRQ-mode one. The seven leaf primitives below do the minimum that
// must be hand-written in assembly (touching r4-r11, sp, lr directly);
// everything else -- deciding what to save where, updating the TCB -- is
// ordinary Go.
package arm926

import "github.com/tickrtos/tickrtos/sched"

// Switcher is the zero-sized ContextSwitcher backing a freestanding ARM
// build. It carries no state of its own: everything it needs lives in the
// TCB, per §4.5 of the specification.
type Switcher struct{}

// Start transfers control to next and never returns, per §4.5's
// scheduler_start contract. A task reaching Start has never run before
// (scheduler_start only ever targets the first task picked at boot), so
// this always dispatches through the closure path, never restoreAndBranch.
func (Switcher) Start(next *sched.TCB) {
	startClosure(next.SavedSP(), next.EntryClosure())
}

// Switch saves the calling context into prev, restores next's, and
// branches to it. prev resumes, on some later Switch or Start targeting
// it, immediately after the call site that invoked this Switch.
//
// next falls into one of two cases, distinguished by SavedPC's taskEntryPC
// sentinel: a task that has never run before has no "resume mid-function"
// address to branch to, since it has no prior call frame -- it must be
// started via its entry closure, exactly like Start above. A task that has
// run before (and was preempted or slept) resumes at the real machine
// address resumePC captured on its way out.
func (Switcher) Switch(prev, next *sched.TCB) {
	prev.SetSavedCalleeRegs(saveCalleeRegs())
	prev.SetSavedSP(currentSP())
	prev.SetSavedLR(currentLR())
	prev.SetSavedPC(resumePC())
	restoreCalleeRegs(next.SavedCalleeRegs())
	if pc := next.SavedPC(); pc != taskNeverRun {
		restoreAndBranch(next.SavedSP(), pc)
		return
	}
	startClosure(next.SavedSP(), next.EntryClosure())
}

// taskNeverRun mirrors sched's unexported taskEntryPC sentinel: a TCB whose
// SavedPC is still this value has never been switched into.
const taskNeverRun = 0

// The following are implemented in switch_arm.s. Each is a short leaf
// routine touching only r4-r11/sp/lr/pc/r7 (the ARM closure-context
// register); nothing here may be written in Go because the Go compiler
// does not let a function address its own raw register file.
func saveCalleeRegs() [8]uintptr
func restoreCalleeRegs(regs [8]uintptr)
func currentSP() uintptr
func currentLR() uintptr
// resumePC returns the address Switch's caller should resume at next time
// this TCB is switched back in: the instruction immediately following the
// call to Switch.
func resumePC() uintptr
// restoreAndBranch loads sp and branches to pc. It never returns to its
// caller; the next return from this function happens via some future
// Switch targeting the task being restored here.
func restoreAndBranch(sp, pc uintptr)
// startClosure loads sp, loads closurePtr into the ARM closure-context
// register (r7), and branches to the code address stored at closurePtr's
// first word -- the standard ARM calling convention for invoking a Go
// func() value indirectly. It never returns to its caller.
func startClosure(sp, closurePtr uintptr)
