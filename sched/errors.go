package sched

import "errors"

var (
	// ErrPoolExhausted is returned by TaskCreate when the TCB pool has no
	// free slots left.
	ErrPoolExhausted = errors.New("sched: task pool exhausted")
	// ErrZeroStack is returned by TaskCreate when given a zero-length stack
	// buffer.
	ErrZeroStack = errors.New("sched: zero-length stack buffer")
	// ErrStackTooSmall is returned by TaskCreate when the supplied stack is
	// smaller than the minimum reserve the first context-restore requires.
	ErrStackTooSmall = errors.New("sched: stack smaller than minimum reserve")
	// ErrNoReadyTask is returned by Start when no task is Ready.
	ErrNoReadyTask = errors.New("sched: no ready task at start")
	// ErrAlreadyStarted is returned by Start if called more than once.
	ErrAlreadyStarted = errors.New("sched: scheduler already started")
	// ErrNotCurrentTask is returned by Sleep when called other than from
	// the currently running task's own context.
	ErrNotCurrentTask = errors.New("sched: sleep called outside task context")
	// ErrMissingContextSwitcher is returned by New when constructed
	// without a ContextSwitcher, which has no safe default.
	ErrMissingContextSwitcher = errors.New("sched: no ContextSwitcher configured")
)
