package sched

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop() {}

func TestPoolCreate(t *testing.T) {
	t.Parallel()

	p := newPool(2)
	stack := make([]uintptr, 32)

	tsk, err := p.create(noop, stack, 3)
	require.NoError(t, err)
	require.NotNil(t, tsk)
	assert.Equal(t, uint8(3), tsk.Priority())
	assert.Equal(t, Ready, tsk.State())
	assert.Equal(t, uint32(0), tsk.WakeTicksRemaining())
	assert.Equal(t, stackTop(stack), tsk.SavedSP())
	assert.Equal(t, [8]uintptr{}, tsk.SavedCalleeRegs())
	assert.Equal(t, uintptr(0), tsk.SavedLR())
}

func TestPoolCreatePriorityMasked(t *testing.T) {
	t.Parallel()

	p := newPool(1)
	tsk, err := p.create(noop, make([]uintptr, 32), 200)
	require.NoError(t, err)
	assert.Equal(t, uint8(200&31), tsk.Priority())
}

func TestPoolExhausted(t *testing.T) {
	t.Parallel()

	p := newPool(1)
	stack := make([]uintptr, 32)

	_, err := p.create(noop, stack, 0)
	require.NoError(t, err)

	_, err = p.create(noop, stack, 0)
	assert.True(t, errors.Is(err, ErrPoolExhausted))

	// A full pool must not corrupt state: existing slots remain usable.
	assert.Equal(t, 1, p.taskCount)
	assert.Equal(t, 1, p.capacity())
}

func TestPoolZeroStack(t *testing.T) {
	t.Parallel()

	p := newPool(1)
	_, err := p.create(noop, nil, 0)
	assert.True(t, errors.Is(err, ErrZeroStack))
}

func TestPoolStackTooSmall(t *testing.T) {
	t.Parallel()

	p := newPool(1)
	_, err := p.create(noop, make([]uintptr, stackReserveWords-1), 0)
	assert.True(t, errors.Is(err, ErrStackTooSmall))
}

func TestPoolStackExactlyReserve(t *testing.T) {
	t.Parallel()

	// S6: stack_words == the minimum reserve is accepted, and sp lands
	// exactly at the base of the buffer.
	p := newPool(1)
	stack := make([]uintptr, stackReserveWords)
	tsk, err := p.create(noop, stack, 0)
	require.NoError(t, err)
	assert.Equal(t, uintptr(unsafe.Pointer(&stack[0])), tsk.SavedSP())
}

func TestPoolGetOutOfRange(t *testing.T) {
	t.Parallel()

	p := newPool(2)
	assert.Nil(t, p.get(-1))
	assert.Nil(t, p.get(0))

	_, err := p.create(noop, make([]uintptr, 32), 0)
	require.NoError(t, err)
	assert.NotNil(t, p.get(0))
	assert.Nil(t, p.get(1))
}
