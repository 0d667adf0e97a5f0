package mosig

import (
	"testing"

	"github.com/oruby/mosig/ext/assert"
)

func TestSetAction(t *testing.T) {
	st := NewState()
	act := SigAction{Handler: 0x500000, Mask: SetOf(SIGINT)}

	old, err := st.SetAction(SIGUSR1, act)
	assert.NilError(t, err)
	assert.Equal(t, old, SigAction{})

	old, err = st.SetAction(SIGUSR1, SigAction{Handler: HandlerIgnore})
	assert.NilError(t, err)
	assert.Equal(t, old, act)

	got, err := st.Action(SIGUSR1)
	assert.NilError(t, err)
	assert.Equal(t, got.Disposition(), DispositionIgnore)

	assert.Equal(t, st.Pending(), EmptySet())
	assert.Equal(t, st.Blocked(), EmptySet())
}

func TestSetActionRejects(t *testing.T) {
	st := NewState()
	before := st

	for _, sig := range []Signal{0, MaxSig, SIGKILL, SIGSTOP} {
		_, err := st.SetAction(sig, SigAction{Handler: HandlerIgnore})
		assert.ErrorIs(t, err, ErrInvalidSignal)
	}
	assert.Equal(t, st, before)
}

func TestSetMask(t *testing.T) {
	st := NewState()

	old, err := st.SetMask(SigBlock, SetOf(SIGINT, SIGTERM))
	assert.NilError(t, err)
	assert.Equal(t, old, EmptySet())
	assert.Equal(t, st.Blocked(), SetOf(SIGINT, SIGTERM))

	old, err = st.SetMask(SigUnblock, SetOf(SIGINT))
	assert.NilError(t, err)
	assert.Equal(t, old, SetOf(SIGINT, SIGTERM))
	assert.Equal(t, st.Blocked(), SetOf(SIGTERM))

	_, err = st.SetMask(SigSetMask, SetOf(SIGUSR2))
	assert.NilError(t, err)
	assert.Equal(t, st.Blocked(), SetOf(SIGUSR2))

	_, err = st.SetMask(MaskHow(7), FillSet())
	assert.ErrorIs(t, err, ErrInvalidMaskOp)
	assert.Equal(t, st.Blocked(), SetOf(SIGUSR2))
}

func TestSetMaskNeverBlocksProtected(t *testing.T) {
	st := NewState()
	_, err := st.SetMask(SigSetMask, FillSet())
	assert.NilError(t, err)
	assert.Equal(t, st.Blocked(), FillSet().Minus(SetOf(SIGKILL, SIGSTOP)))
}

func TestRaiseCoalesces(t *testing.T) {
	st := NewState()
	assert.NilError(t, st.Raise(SIGUSR1))
	assert.NilError(t, st.Raise(SIGUSR1))
	assert.Equal(t, st.Pending(), SetOf(SIGUSR1))

	assert.ErrorIs(t, st.Raise(0), ErrInvalidSignal)
	assert.Equal(t, st.Pending(), SetOf(SIGUSR1))
}

func TestFinishWithoutHandler(t *testing.T) {
	st := NewState()
	_, _, err := st.Finish()
	assert.ErrorIs(t, err, ErrNoSavedFrame)
}

func TestErrno(t *testing.T) {
	err := Raisef(ErrNoSuchProcess, "env %d", 3)
	assert.Equal(t, Errno(err), int32(ENoSuchProcess))
	assert.ErrorIs(t, ErrnoError(Errno(err)), ErrNoSuchProcess)
	assert.Equal(t, Errno(nil), int32(0))
	assert.Expect(t, ErrnoError(0) == nil, "0 is success")
	assert.Equal(t, err.Error(), "no such process: env 3")
}
