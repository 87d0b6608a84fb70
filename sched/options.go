package sched

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// schedOptions holds configuration resolved from a slice of Option values.
type schedOptions struct {
	poolCapacity int
	switcher     ContextSwitcher
	masker       InterruptMasker
	logOpts      []logiface.Option[*stumpy.Event]
	diagRate     *catrate.Limiter
	panicFunc    func(msg string, args ...any)
}

// Option configures a Scheduler at construction time.
type Option interface {
	apply(*schedOptions) error
}

type optionFunc func(*schedOptions) error

func (f optionFunc) apply(o *schedOptions) error { return f(o) }

// WithPoolCapacity overrides the default 16-slot TCB pool.
func WithPoolCapacity(n int) Option {
	return optionFunc(func(o *schedOptions) error {
		if n <= 0 {
			return ErrPoolExhausted
		}
		o.poolCapacity = n
		return nil
	})
}

// WithContextSwitcher supplies the platform-specific (or simulated)
// register save/restore primitive. Mandatory: New fails without one.
func WithContextSwitcher(cs ContextSwitcher) Option {
	return optionFunc(func(o *schedOptions) error {
		o.switcher = cs
		return nil
	})
}

// WithInterruptMasker overrides the default no-op InterruptMasker. A
// freestanding build must supply one that toggles the CPSR I bit; the
// default is correct only for single-goroutine host tests where the tick
// engine and task code never truly run concurrently.
func WithInterruptMasker(m InterruptMasker) Option {
	return optionFunc(func(o *schedOptions) error {
		o.masker = m
		return nil
	})
}

// WithLogOption passes one or more logiface options through to the kernel
// logger construction, e.g.
// stumpy.L.WithStumpy(stumpy.WithWriter(uartWriter)).
func WithLogOption(opts ...logiface.Option[*stumpy.Event]) Option {
	return optionFunc(func(o *schedOptions) error {
		o.logOpts = append(o.logOpts, opts...)
		return nil
	})
}

// WithDiagnosticRateLimit throttles repeated tick-engine diagnostic
// warnings (e.g. idle ticks) through a go-catrate limiter, so a storm of
// identical warnings cannot itself saturate the log sink. rates follows
// catrate.NewLimiter's contract: window duration to max-events-in-window,
// shorter windows must have counts >= longer windows.
func WithDiagnosticRateLimit(rates map[time.Duration]int) Option {
	return optionFunc(func(o *schedOptions) error {
		o.diagRate = catrate.NewLimiter(rates)
		return nil
	})
}

// WithPanicFunc overrides the function invoked on an unrecoverable
// invariant violation (§7). Defaults to panic; tests substitute a
// recording stub so a violation doesn't abort the test binary.
func WithPanicFunc(fn func(msg string, args ...any)) Option {
	return optionFunc(func(o *schedOptions) error {
		o.panicFunc = fn
		return nil
	})
}

func resolveOptions(opts []Option) (*schedOptions, error) {
	cfg := &schedOptions{
		poolCapacity: 16,
		masker:       noopMasker{},
		panicFunc: func(msg string, args ...any) {
			panic(fmt.Sprintf(msg, args...))
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.switcher == nil {
		return nil, ErrMissingContextSwitcher
	}
	return cfg, nil
}

// noopMasker is the default InterruptMasker: correct for single-goroutine
// host tests driven tick-by-tick from the test itself, where the tick
// engine and task code are never concurrently active.
type noopMasker struct{}

func (noopMasker) Mask() any  { return nil }
func (noopMasker) Unmask(any) {}
