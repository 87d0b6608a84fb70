package sched

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// kernelLogger is a thin wrapper around a logiface.Logger[*stumpy.Event],
// giving the scheduler core a small, fixed vocabulary of log calls (warn,
// crit) instead of exposing the full builder API to every call site.
type kernelLogger struct {
	l *logiface.Logger[*stumpy.Event]
}

func newKernelLogger(opts []logiface.Option[*stumpy.Event]) *kernelLogger {
	if len(opts) == 0 {
		return nil
	}
	return &kernelLogger{l: stumpy.L.New(opts...)}
}

func (k *kernelLogger) warn(msg string, args ...any) {
	if k == nil || k.l == nil {
		return
	}
	b := k.l.Warning()
	addFields(b, args)
	b.Log(msg)
}

func (k *kernelLogger) crit(msg string, args ...any) {
	if k == nil || k.l == nil {
		return
	}
	b := k.l.Crit()
	addFields(b, args)
	b.Log(msg)
}

// addFields treats args as alternating key, value pairs, mirroring the
// zerolog-influenced builder style logiface itself follows.
func addFields(b *logiface.Builder[*stumpy.Event], args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, _ := args[i].(string)
		if key == "" {
			continue
		}
		b.Any(key, args[i+1])
	}
}
