package sched

import "math/bits"

// maxBands is the number of priority levels. Priority 0 is highest.
const maxBands = 32

// readyBank is the 32-band ready queue: one intrusive doubly linked FIFO
// per priority, plus a bitmap summarizing which bands are non-empty so
// pickNext can skip straight to the lowest-numbered occupied band in O(1).
type readyBank struct {
	head   [maxBands]int32
	tail   [maxBands]int32
	bitmap uint32
	p      *pool
}

func newReadyBank(p *pool) *readyBank {
	rb := &readyBank{p: p}
	for i := range rb.head {
		rb.head[i] = linkNone
		rb.tail[i] = linkNone
	}
	return rb
}

// enqueue appends t at the tail of its band's FIFO and sets the band's
// bitmap bit. t must not already be linked into any list.
func (rb *readyBank) enqueue(t *TCB) {
	band := t.priority
	t.queueNext = linkNone
	t.queuePrev = rb.tail[band]
	if rb.tail[band] != linkNone {
		rb.p.get(int(rb.tail[band])).queueNext = int32(t.id)
	} else {
		rb.head[band] = int32(t.id)
	}
	rb.tail[band] = int32(t.id)
	rb.bitmap |= 1 << band
}

// dequeue unlinks t from its band's FIFO. It is a no-op if t is not the
// head/tail/middle of any band list (callers are expected to only dequeue
// tasks they know are ready-linked; pickNext, its only caller in this
// package, satisfies that).
func (rb *readyBank) dequeue(t *TCB) {
	band := t.priority
	if t.queuePrev != linkNone {
		rb.p.get(int(t.queuePrev)).queueNext = t.queueNext
	} else if rb.head[band] == int32(t.id) {
		rb.head[band] = t.queueNext
	}
	if t.queueNext != linkNone {
		rb.p.get(int(t.queueNext)).queuePrev = t.queuePrev
	} else if rb.tail[band] == int32(t.id) {
		rb.tail[band] = t.queuePrev
	}
	t.queueNext = linkNone
	t.queuePrev = linkNone
	if rb.head[band] == linkNone {
		rb.bitmap &^= 1 << band
	}
}

// pickNext scans bands by increasing priority number using ctz(bitmap) to
// skip empty bands in O(1); within the chosen band it walks from the head
// and returns (and dequeues) the first Ready task. Returns nil, leaving
// state unmutated, if no Ready task exists anywhere in the bank.
func (rb *readyBank) pickNext() *TCB {
	bitmap := rb.bitmap
	for bitmap != 0 {
		band := bits.TrailingZeros32(bitmap)
		for idx := rb.head[band]; idx != linkNone; {
			t := rb.p.get(int(idx))
			next := t.queueNext
			if t.state == Ready {
				rb.dequeue(t)
				return t
			}
			idx = next
		}
		bitmap &^= 1 << band
	}
	return nil
}
