package sched

// sleepList is the single doubly linked list of Sleeping tasks. Order
// within the list is irrelevant to correctness: the wake phase visits
// every node on every tick regardless of position.
type sleepList struct {
	head int32
	p    *pool
}

func newSleepList(p *pool) *sleepList {
	return &sleepList{head: linkNone, p: p}
}

// enqueue prepends t at the head of the sleep list. t must not already be
// linked into any list.
func (sl *sleepList) enqueue(t *TCB) {
	t.queuePrev = linkNone
	t.queueNext = sl.head
	if sl.head != linkNone {
		sl.p.get(int(sl.head)).queuePrev = int32(t.id)
	}
	sl.head = int32(t.id)
}

// unlink removes t from the sleep list.
func (sl *sleepList) unlink(t *TCB) {
	if t.queuePrev != linkNone {
		sl.p.get(int(t.queuePrev)).queueNext = t.queueNext
	} else if sl.head == int32(t.id) {
		sl.head = t.queueNext
	}
	if t.queueNext != linkNone {
		sl.p.get(int(t.queueNext)).queuePrev = t.queuePrev
	}
	t.queueNext = linkNone
	t.queuePrev = linkNone
}

// wake walks the sleep list, decrementing every node's countdown and
// moving expired ones to ready, which is the tick engine's wake phase
// (§4.4 step 1). The next pointer is captured before any unlink so the
// walk survives removing the current node.
func (sl *sleepList) wake(rb *readyBank) {
	idx := sl.head
	for idx != linkNone {
		t := sl.p.get(int(idx))
		next := t.queueNext
		if t.wakeTicksRemaining > 0 {
			t.wakeTicksRemaining--
		}
		if t.wakeTicksRemaining == 0 {
			sl.unlink(t)
			t.state = Ready
			rb.enqueue(t)
		}
		idx = next
	}
}
