//go:build arm

// Command versatilepb is the kernel image for QEMU's versatilepb ARM926EJ-S
// machine. It is not a CLI: it takes no flags, reads no environment, and
// parses no input (§6's "no file formats, no wire protocols, no CLI").
// Building and booting it is the only way to observe the scheduler core
// running preemptively rather than under arch/sim.
package main

import (
	"github.com/tickrtos/tickrtos/boot"
	"github.com/tickrtos/tickrtos/drivers/uart"
	"github.com/tickrtos/tickrtos/sched"
)

// stackWords sizes each demo task's stack. 256 words is generous for a
// loop that does nothing but format a tag and sleep; it is not meant to be
// tuned, just large enough that stack discipline (§5) is a non-issue for a
// demo image.
const stackWords = 256

var (
	highStack [stackWords]uintptr
	lowStack  [stackWords]uintptr
)

func main() {
	boot.Main(func(s *sched.Scheduler) {
		var u uart.UART

		high := func() {
			for {
				u.Puts("H\n")
				_ = sched.Sleep(10)
			}
		}
		low := func() {
			for {
				u.Puts("L\n")
			}
		}

		if _, err := s.TaskCreate(high, highStack[:], 0); err != nil {
			u.Puts("versatilepb: high-priority task create failed\n")
		}
		if _, err := s.TaskCreate(low, lowStack[:], 5); err != nil {
			u.Puts("versatilepb: low-priority task create failed\n")
		}
	})
}
