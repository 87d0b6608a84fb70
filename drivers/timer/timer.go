//go:build arm

// Package timer drives one of the two SP804 dual-timer blocks on
// versatilepb (base 0x101E2000, Timer0), programmed for a free-running
// periodic interrupt. The base specification requires exactly a 1ms
// period; ConfigurePeriodic takes the reference clock so the reload value can be
// computed for any QEMU build that varies it, but callers on versatilepb
// always pass the board's fixed 1MHz TIMCLK.
package timer

import (
	"runtime/volatile"
	"unsafe"
)

const base = 0x101E2000

type sp804 struct {
	load    volatile.Register32 // TimerLoad
	value   volatile.Register32 // TimerValue (read-only)
	control volatile.Register32 // TimerControl
	intclr  volatile.Register32 // TimerIntClr (write-only)
}

const (
	ctlEnable    = 1 << 7
	ctlPeriodic  = 1 << 6
	ctlIntEnable = 1 << 5
	ctl32Bit     = 1 << 1
)

func regs() *sp804 {
	return (*sp804)(unsafe.Pointer(uintptr(base)))
}

// ConfigurePeriodic arms the timer for a periodic interrupt every msPeriod
// milliseconds, given the timer's input clock frequency in Hz. It leaves
// the timer disabled; call Start once the interrupt controller has been
// told to expect this timer's IRQ (see drivers/intc).
func ConfigurePeriodic(clockHz, msPeriod uint32) {
	r := regs()
	reload := clockHz / 1000 * msPeriod
	r.load.Set(reload)
	r.control.Set(ctl32Bit | ctlPeriodic | ctlIntEnable)
}

// Start enables the timer, beginning the periodic countdown configured by
// ConfigurePeriodic.
func Start() {
	regs().control.SetBits(ctlEnable)
}

// Ack clears the timer's interrupt-pending flag. It is the IRQ handler's
// first responsibility (§6): until this is written, the PL190 continues to
// see the timer's IRQ line asserted.
func Ack() {
	regs().intclr.Set(0)
}
