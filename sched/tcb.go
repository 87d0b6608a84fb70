package sched

import "unsafe"

// linkNone is the sentinel pool index meaning "not linked into any list".
const linkNone int32 = -1

// stackReserveWords is the window reserved at the top of a task's stack for
// the first inbound context-restore to write into safely.
const stackReserveWords = 16

// TCB is a task control block. Every TCB lives in the scheduler's static
// pool; the core never allocates or frees one after Scheduler construction.
type TCB struct {
	id    int
	entry func()

	stackBase  []uintptr
	stackWords int

	entryClosure uintptr

	savedSP         uintptr
	savedCalleeRegs [8]uintptr
	savedLR         uintptr
	savedPC         uintptr

	priority           uint8
	state              TaskState
	wakeTicksRemaining uint32

	queueNext int32
	queuePrev int32

	inUse bool
}

// ID returns the task's stable pool index, assigned at creation.
func (t *TCB) ID() int { return t.id }

// Priority returns the task's priority band, 0 (highest) to 31 (lowest).
func (t *TCB) Priority() uint8 { return t.priority }

// State returns the task's current lifecycle state.
func (t *TCB) State() TaskState { return t.state }

// WakeTicksRemaining returns the number of ticks left before a Sleeping
// task becomes Ready. Meaningless for any other state.
func (t *TCB) WakeTicksRemaining() uint32 { return t.wakeTicksRemaining }

// SetState is used by the tick engine and by the Scheduler's trampoline
// to record a lifecycle transition. Callers must already hold the
// interrupt-masking discipline §5 requires.
func (t *TCB) SetState(s TaskState) { t.state = s }

// Entry returns the task's entry closure. The goroutine-based simulator in
// arch/sim calls it directly; arch/arm926 instead dispatches through
// EntryClosure, since bare assembly has no way to invoke a Go func value.
func (t *TCB) Entry() func() { return t.entry }

// EntryClosure returns the funcval pointer backing the task's entry
// closure: the closure-context register (R7 on ARM) a first switch-in must
// load before branching to the code address stored at that pointer's first
// word, per the ARM compiler's closure-call convention. Meaningless once
// the task has actually run once; arch/arm926 consults SavedPC's
// taskEntryPC sentinel to decide which of the two to use.
func (t *TCB) EntryClosure() uintptr { return t.entryClosure }

// StackBase returns the task's caller-provided stack buffer.
func (t *TCB) StackBase() []uintptr { return t.stackBase }

// SavedSP returns the stack pointer recorded at the task's last switch-out
// (or its initial value, before first switch-in).
func (t *TCB) SavedSP() uintptr { return t.savedSP }

// SetSavedSP records the stack pointer at switch-out.
func (t *TCB) SetSavedSP(sp uintptr) { t.savedSP = sp }

// SavedPC returns the resume address recorded at the task's last
// switch-out.
func (t *TCB) SavedPC() uintptr { return t.savedPC }

// SetSavedPC records the resume address at switch-out.
func (t *TCB) SetSavedPC(pc uintptr) { t.savedPC = pc }

// SavedLR returns the return-link register recorded at the task's last
// switch-out.
func (t *TCB) SavedLR() uintptr { return t.savedLR }

// SetSavedLR records the return-link register at switch-out.
func (t *TCB) SetSavedLR(lr uintptr) { t.savedLR = lr }

// SavedCalleeRegs returns the callee-saved general-purpose registers
// recorded at the task's last switch-out.
func (t *TCB) SavedCalleeRegs() [8]uintptr { return t.savedCalleeRegs }

// SetSavedCalleeRegs records the callee-saved general-purpose registers at
// switch-out.
func (t *TCB) SetSavedCalleeRegs(regs [8]uintptr) { t.savedCalleeRegs = regs }

func (t *TCB) reset(id int, entry func(), stack []uintptr, priority uint8) {
	t.id = id
	t.entry = entry
	t.entryClosure = closurePtr(entry)
	t.stackBase = stack
	t.stackWords = len(stack)
	t.savedCalleeRegs = [8]uintptr{}
	t.savedLR = 0
	t.savedPC = taskEntryPC
	t.savedSP = stackTop(stack)
	t.priority = priority & 31
	t.state = Ready
	t.wakeTicksRemaining = 0
	t.queueNext = linkNone
	t.queuePrev = linkNone
	t.inUse = true
}

// stackTop computes the initial saved stack pointer per §4.1: the top of
// the buffer, less the inbound-restore reserve. stack is word-addressable
// and assumed to grow toward lower addresses, so "top" is the high end.
func stackTop(stack []uintptr) uintptr {
	return uintptr(unsafe.Pointer(&stack[0])) + uintptr(len(stack)-stackReserveWords)*uintptrSize
}

// taskEntryPC is a sentinel recorded as a TCB's saved_pc at creation,
// meaning "never switched in yet". arch/arm926 checks for it to decide
// between branching to a real resume address (a task that has run before)
// and dispatching through EntryClosure (a task's first switch-in, where
// there is no "resume mid-function" address to branch to at all).
const taskEntryPC = 0

const uintptrSize = 4 // ARM926EJ-S is a 32-bit core.

// closurePtr extracts the funcval pointer from a zero-argument Go closure:
// a func() value is itself a pointer to a funcval struct whose first word
// is the function's code entry address, with any captured variables
// following. Reading that pointer out of fn's own storage is the standard
// trick for obtaining a closure's context pointer without calling it; see
// arch/arm926's startClosure doc comment for how the ARM build then uses
// it to make the actual call from assembly.
func closurePtr(fn func()) uintptr {
	return *(*uintptr)(unsafe.Pointer(&fn))
}
