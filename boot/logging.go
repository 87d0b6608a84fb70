//go:build arm

package boot

import (
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// stumpyUARTOption wires stumpy's newline-delimited-JSON backend to the
// UART sink, making uart.Puts the kernel's one and only log transport (§2.1
// of SPEC_FULL.md): every sched.Scheduler diagnostic and invariant-failure
// log travels the same byte-stream the demo tasks write their tags to.
func stumpyUARTOption(w io.Writer) []logiface.Option[*stumpy.Event] {
	return []logiface.Option[*stumpy.Event]{
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
	}
}
