package mosig

import (
	"testing"

	"github.com/oruby/mosig/ext/assert"
)

const (
	testEntry   = 0x400000
	testHandler = 0x500000
)

func frameAt(pc uint32) Trapframe {
	var tf Trapframe
	tf.EPC = pc
	tf.Regs[RegSP] = 0x7f000000
	tf.Regs[RegA0] = 0xdead
	return tf
}

func handledState(t *testing.T, sig Signal, act SigAction) State {
	t.Helper()
	st := NewState()
	st.SetEntry(testEntry)
	_, err := st.SetAction(sig, act)
	assert.NilError(t, err)
	return st
}

func TestDispatchNothingReady(t *testing.T) {
	st := NewState()
	tf := frameAt(0x1000)

	next, out := st.Dispatch(tf)
	assert.Equal(t, out.Verdict, Resume)
	assert.Equal(t, out.Frame, tf)
	assert.Equal(t, next, st)
}

func TestDispatchBlockedStaysPending(t *testing.T) {
	st := handledState(t, SIGUSR1, SigAction{Handler: testHandler})
	_, _ = st.SetMask(SigBlock, SetOf(SIGUSR1))
	_ = st.Raise(SIGUSR1)

	next, out := st.Dispatch(frameAt(0x1000))
	assert.Equal(t, out.Verdict, Resume)
	assert.Equal(t, next.Pending(), SetOf(SIGUSR1))

	_, _ = next.SetMask(SigUnblock, SetOf(SIGUSR1))
	_, out = next.Dispatch(frameAt(0x1000))
	assert.Equal(t, out.Verdict, Deliver)
	assert.Equal(t, out.Signal, SIGUSR1)
}

func TestDispatchLowestFirst(t *testing.T) {
	st := NewState()
	st.SetEntry(testEntry)
	for _, sig := range []Signal{SIGUSR2, SIGHUP, SIGUSR1} {
		_, err := st.SetAction(sig, SigAction{Handler: testHandler})
		assert.NilError(t, err)
		_ = st.Raise(sig)
	}

	st, out := st.Dispatch(frameAt(0x1000))
	assert.Equal(t, out.Signal, SIGHUP)
	assert.Equal(t, st.Pending(), SetOf(SIGUSR1, SIGUSR2))
}

func TestDispatchIgnoreContinues(t *testing.T) {
	st := handledState(t, SIGXCPU, SigAction{Handler: testHandler})
	_, _ = st.SetAction(SIGUSR1, SigAction{Handler: HandlerIgnore})
	_ = st.Raise(SIGUSR1)
	_ = st.Raise(SIGCHLD)
	_ = st.Raise(SIGXCPU)

	st, out := st.Dispatch(frameAt(0x1000))
	assert.Equal(t, out.Verdict, Deliver)
	assert.Equal(t, out.Signal, SIGXCPU)
	assert.Equal(t, out.Ignored, SetOf(SIGUSR1, SIGCHLD))
	assert.Equal(t, st.Pending(), EmptySet())
}

func TestDispatchDefaultTerminates(t *testing.T) {
	st := NewState()
	_ = st.Raise(SIGTERM)

	st, out := st.Dispatch(frameAt(0x1000))
	assert.Equal(t, out.Verdict, Terminate)
	assert.Equal(t, out.Signal, SIGTERM)
	assert.Expect(t, !st.Handling(), "no handler runs on termination")
}

func TestDispatchInjects(t *testing.T) {
	st := handledState(t, SIGTRAP, SigAction{Handler: testHandler, Mask: SetOf(SIGINT, SIGKILL)})
	_, _ = st.SetMask(SigBlock, SetOf(SIGTERM))
	_ = st.Raise(SIGTRAP)
	tf := frameAt(0x1004)

	st, out := st.Dispatch(tf)
	assert.Equal(t, out.Verdict, Deliver)
	assert.Equal(t, out.Signal, SIGTRAP)
	assert.Expect(t, !out.Nested, "first delivery is not nested")
	assert.Equal(t, out.Frame.EPC, uint32(testEntry))
	assert.Equal(t, out.Frame.Regs[RegA0], uint32(SIGTRAP))
	assert.Equal(t, out.Frame.Regs[RegSP], tf.Regs[RegSP])

	saved, mask, ok := st.Saved()
	assert.Expect(t, ok && st.Handling(), "handler must be active")
	assert.Equal(t, saved, tf)
	assert.Equal(t, mask, SetOf(SIGTERM))
	assert.Equal(t, st.Blocked(), SetOf(SIGTERM, SIGINT, SIGTRAP))

	st, back, err := st.Finish()
	assert.NilError(t, err)
	assert.Equal(t, back, tf)
	assert.Equal(t, st.Blocked(), SetOf(SIGTERM))
	assert.Expect(t, !st.Handling(), "finish clears handling")
	_, _, ok = st.Saved()
	assert.Expect(t, !ok, "finish clears the saved frame")
}

func TestDispatchNoDefer(t *testing.T) {
	st := handledState(t, SIGUSR1, SigAction{Handler: testHandler, Flags: FlagNoDefer})
	_ = st.Raise(SIGUSR1)

	st, out := st.Dispatch(frameAt(0x1000))
	assert.Equal(t, out.Verdict, Deliver)
	assert.Equal(t, st.Blocked(), EmptySet())
}

func TestDispatchNestedKeepsOriginalFrame(t *testing.T) {
	st := handledState(t, SIGUSR1, SigAction{Handler: testHandler, Flags: FlagNoDefer})
	orig := frameAt(0x1000)
	_ = st.Raise(SIGUSR1)
	st, out := st.Dispatch(orig)

	inHandler := out.Frame
	inHandler.EPC = testHandler + 8
	_ = st.Raise(SIGUSR1)
	st, out = st.Dispatch(inHandler)
	assert.Equal(t, out.Verdict, Deliver)
	assert.Expect(t, out.Nested, "second delivery is nested")

	saved, _, _ := st.Saved()
	assert.Equal(t, saved, orig)

	st, back, err := st.Finish()
	assert.NilError(t, err)
	assert.Equal(t, back, orig)

	_, _, err = st.Finish()
	assert.ErrorIs(t, err, ErrNoSavedFrame)
}

func TestDispatchNestedDifferentSignal(t *testing.T) {
	st := handledState(t, SIGUSR1, SigAction{Handler: testHandler})
	_, _ = st.SetAction(SIGUSR2, SigAction{Handler: testHandler + 0x100})
	orig := frameAt(0x1000)

	_ = st.Raise(SIGUSR1)
	st, _ = st.Dispatch(orig)
	_ = st.Raise(SIGUSR1)
	_ = st.Raise(SIGUSR2)

	st, out := st.Dispatch(frameAt(testHandler))
	assert.Equal(t, out.Signal, SIGUSR2)
	assert.Expect(t, out.Nested, "USR2 nests inside USR1")
	assert.Equal(t, st.Pending(), SetOf(SIGUSR1))

	st, back, err := st.Finish()
	assert.NilError(t, err)
	assert.Equal(t, back, orig)
	assert.Equal(t, st.Blocked(), EmptySet())
}

func TestDispatchWithoutEntryUsesDefault(t *testing.T) {
	st := NewState()
	_, _ = st.SetAction(SIGUSR1, SigAction{Handler: testHandler})
	_, _ = st.SetAction(SIGCHLD, SigAction{Handler: testHandler})
	_ = st.Raise(SIGCHLD)

	st, out := st.Dispatch(frameAt(0x1000))
	assert.Equal(t, out.Verdict, Resume)
	assert.Equal(t, out.Ignored, SetOf(SIGCHLD))

	_ = st.Raise(SIGUSR1)
	_, out = st.Dispatch(frameAt(0x1000))
	assert.Equal(t, out.Verdict, Terminate)
}

func TestDispatchIsPure(t *testing.T) {
	st := handledState(t, SIGUSR1, SigAction{Handler: testHandler})
	_ = st.Raise(SIGUSR1)
	before := st

	_, _ = st.Dispatch(frameAt(0x1000))
	assert.Equal(t, st, before)
}
