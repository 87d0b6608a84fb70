//go:build arm

// Package intc drives the PL190 vectored interrupt controller on
// versatilepb (base 0x10140000). The scheduler core only ever needs one
// IRQ line routed anywhere -- the timer's -- so this package exposes only
// Enable, Disable and Pending. It writes no acknowledge register: the
// timer's line deasserts once drivers/timer's Ack clears the source. The
// PL190's vectoring and priority features go unused.
package intc

import (
	"runtime/volatile"
	"unsafe"
)

const base = 0x10140000

type pl190 struct {
	irqStatus volatile.Register32 // VICIRQSTATUS, offset 0x00
	_         [3]volatile.Register32
	intEnable volatile.Register32 // VICINTENABLE, offset 0x10
	intEnClr  volatile.Register32 // VICINTENCLEAR, offset 0x14
}

func regs() *pl190 {
	return (*pl190)(unsafe.Pointer(uintptr(base)))
}

// Enable unmasks irq at the controller, allowing it to reach the CPU's IRQ
// line. The base spec requires this happen before scheduler_start.
func Enable(irq uint32) {
	regs().intEnable.Set(1 << irq)
}

// Disable masks irq back off.
func Disable(irq uint32) {
	regs().intEnClr.Set(1 << irq)
}

// Pending reports whether irq is currently asserted, for the IRQ vector's
// dispatch: versatilepb routes every enabled source to the single IRQ
// exception, so the handler must consult this to tell them apart (even
// though, on this kernel, there is only ever one source enabled: the
// timer).
func Pending(irq uint32) bool {
	return regs().irqStatus.Get()&(1<<irq) != 0
}
