//go:build arm

// Package boot is the freestanding entry point for the versatilepb image:
// the exception vector table, BSS zeroing, and per-mode stack setup live in
// start_arm.s; this file is the first Go code that ever runs, reached once
// those are in place.
package boot

import (
	"github.com/tickrtos/tickrtos/arch/arm926"
	"github.com/tickrtos/tickrtos/drivers/intc"
	"github.com/tickrtos/tickrtos/drivers/timer"
	"github.com/tickrtos/tickrtos/drivers/uart"
	"github.com/tickrtos/tickrtos/sched"
)

// TimerIRQ is the PL190 input line versatilepb wires Timer0/1 to.
const TimerIRQ = 4

// timerClockHz is versatilepb's fixed TIMCLK input to the SP804 blocks.
const timerClockHz = 1_000_000

// Scheduler is the process-wide instance every IRQ and task in this image
// shares. It is assigned once, from Main, before interrupts are unmasked.
var Scheduler *sched.Scheduler

// Main is called once boot/start_arm.s has installed the vector table,
// zeroed BSS, and set up the IRQ-mode and System-mode stacks. build is the
// caller-supplied closure that registers the image's tasks via
// Scheduler.TaskCreate; boot owns bringing up the drivers and the
// scheduler around it.
func Main(build func(s *sched.Scheduler)) {
	var u uart.UART
	s, err := sched.New(
		sched.WithContextSwitcher(arm926.Switcher{}),
		sched.WithInterruptMasker(cpsrMasker{}),
		sched.WithLogOption(stumpyUARTOption(u)...),
	)
	if err != nil {
		// Nothing else can observe this: the UART logger isn't up yet.
		// Spin rather than silently boot a half-configured kernel.
		for {
		}
	}
	Scheduler = s

	build(s)

	timer.ConfigurePeriodic(timerClockHz, 1)
	intc.Enable(TimerIRQ)
	timer.Start()
	enableIRQs()

	if err := s.Start(); err != nil {
		u.Puts("boot: scheduler start failed: " + err.Error() + "\n")
		for {
		}
	}
	// unreachable: Scheduler.Start never returns on success.
}

// handleTimerIRQ is called from the assembly IRQ vector in start_arm.s
// after it has switched to Supervisor mode (so Scheduler.Tick observes the
// task's System-mode sp, not the IRQ-mode one -- see arch/arm926's doc
// comment). It acknowledges the timer and runs the tick engine.
//
//export handleTimerIRQ
func handleTimerIRQ() {
	timer.Ack()
	Scheduler.Tick()
}
