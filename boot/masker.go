//go:build arm

package boot

// cpsrMasker implements sched.InterruptMasker by toggling the CPSR I bit,
// per §5's requirement that every non-atomic mutation of the ready bank,
// sleep list, or current run with interrupts masked. The token threaded
// back through Unmask is the previous CPSR value, so nested Mask/Unmask
// pairs (not that the scheduler ever nests them, but a defensive
// implementation shouldn't assume) restore exactly what was there before.
type cpsrMasker struct{}

func (cpsrMasker) Mask() any {
	return maskIRQ()
}

func (cpsrMasker) Unmask(token any) {
	restoreCPSR(token.(uint32))
}

func enableIRQs() {
	restoreCPSR(readCPSR() &^ cpsrIBit)
}

const cpsrIBit = 1 << 7

// maskIRQ and restoreCPSR are implemented in cpsr_arm.s.
func maskIRQ() uint32
func restoreCPSR(cpsr uint32)
func readCPSR() uint32
