//go:build arm

// Package uart drives the PL011 UART wired up on QEMU's versatilepb
// machine at base address 0x101F1000. It is the kernel's sole byte sink:
// diagnostic task output and, via the stumpy backend wired up in
// sched.WithLogOption, the structured log stream both funnel through it.
package uart

import (
	"runtime/volatile"
	"unsafe"
)

const base = 0x101F1000

// pl011 mirrors the subset of the PL011 register map this driver touches.
// Offsets match the ARM PrimeCell UART (PL011) technical reference manual.
type pl011 struct {
	data volatile.Register32 // UARTDR, offset 0x00
	_    [5]volatile.Register32
	fr   volatile.Register32 // UARTFR, offset 0x18
}

const (
	frTXFF = 1 << 5 // transmit FIFO full
)

func regs() *pl011 {
	return (*pl011)(unsafe.Pointer(uintptr(base)))
}

// UART is an io.Writer over the PL011. The zero value is ready to use: the
// versatilepb machine has exactly one instance the kernel talks to, so
// there is nothing to configure beyond what QEMU/boot already sets up
// (8n1, no flow control, clocked from the board's UARTCLK).
type UART struct{}

// Write implements io.Writer, spinning on the transmit-FIFO-full flag
// between bytes. It never returns an error: there is no failure mode for a
// memory-mapped register write.
func (UART) Write(p []byte) (int, error) {
	r := regs()
	for _, b := range p {
		for r.fr.Get()&frTXFF != 0 {
		}
		r.data.Set(uint32(b))
	}
	return len(p), nil
}

// Puts writes s followed by nothing extra; callers append their own
// newline, matching the base spec's bare "write characters" sink.
func (u UART) Puts(s string) {
	_, _ = u.Write([]byte(s))
}
