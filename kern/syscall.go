package kern

import (
	"fmt"

	"github.com/oruby/mosig"
)

// EnvID returns the id of the calling env. It does not enter the kernel.
func (u *UserContext) EnvID() EnvID { return u.e.id }

// Parent returns the id of the env that spawned the caller, 0 if none.
func (u *UserContext) Parent() EnvID { return u.e.parent }

// SetSigEntry registers the trampoline every custom handler is entered
// through.
func (u *UserContext) SetSigEntry(addr uint32) {
	u.enter()
	u.e.sig.SetEntry(addr)
	u.k.log.Trace("set-sig-entry", "env", u.e.id, "entry", addr)
	u.ret(nil)
}

// SigAction installs act for sig when act is non-nil and stores the
// previous action in old when old is non-nil.
func (u *UserContext) SigAction(sig mosig.Signal, act, old *mosig.SigAction) error {
	u.enter()
	return u.ret(u.k.sigaction(u.e, sig, act, old))
}

// SigProcMask changes the blocked set as selected by how when set is
// non-nil and stores the previous mask in old when old is non-nil.
func (u *UserContext) SigProcMask(how mosig.MaskHow, set, old *mosig.SigSet) error {
	u.enter()
	return u.ret(u.k.sigprocmask(u.e, how, set, old))
}

// Kill raises sig on target. Target 0 is the caller.
func (u *UserContext) Kill(target EnvID, sig mosig.Signal) error {
	u.enter()
	return u.ret(u.k.kill(u.e, target, sig))
}

// SigFinish ends the running handler and resumes the interrupted frame.
// Calling it outside a handler destroys the env.
func (u *UserContext) SigFinish() {
	u.enter()
	u.k.finish(u.e)
}

// Yield gives up the rest of the time slice.
func (u *UserContext) Yield() {
	u.enter()
	u.k.yielded = true
	u.ret(nil)
}

// Exit destroys the calling env.
func (u *UserContext) Exit() {
	u.enter()
	u.k.destroy(u.e, Exit{Kind: ExitNormal})
}

// Spawn creates a child env running img.
func (u *UserContext) Spawn(img Image) (EnvID, error) {
	u.enter()
	e, err := u.k.alloc(img, u.e.id)
	if err != nil {
		return 0, u.ret(err)
	}
	u.k.created(e)
	u.SetReg(mosig.RegV1, uint32(e.id))
	return e.id, u.ret(nil)
}

// IpcRecv suspends the caller until a message arrives or a signal is
// raised on it. On wake V0 is 0, or EInterrupted when a signal woke it.
func (u *UserContext) IpcRecv() {
	u.enter()
	u.e.recving = true
	u.k.setNotRunnable(u.e)
	u.ret(nil)
}

// IpcTrySend delivers value to an env blocked in IpcRecv.
func (u *UserContext) IpcTrySend(to EnvID, value uint32) error {
	u.enter()
	return u.ret(u.k.ipcSend(u.e, to, value))
}

// Print writes s to the console.
func (u *UserContext) Print(s string) {
	u.enter()
	_, err := fmt.Fprint(u.k.cfg.Console, s)
	u.ret(err)
}

func (k *Kernel) sigaction(e *Env, sig mosig.Signal, act, old *mosig.SigAction) error {
	var (
		prev mosig.SigAction
		err  error
	)
	if act != nil {
		prev, err = e.sig.SetAction(sig, *act)
	} else {
		prev, err = e.sig.Action(sig)
	}
	if err != nil {
		k.log.Trace("sigaction-failed", "env", e.id, "signal", sig, "error", err)
		return err
	}
	if act != nil {
		k.log.Trace("sigaction", "env", e.id, "signal", sig, "action", act.String())
	}
	if old != nil {
		*old = prev
	}
	return nil
}

func (k *Kernel) sigprocmask(e *Env, how mosig.MaskHow, set, old *mosig.SigSet) error {
	prev := e.sig.Blocked()
	if set != nil {
		if _, err := e.sig.SetMask(how, *set); err != nil {
			return err
		}
		k.log.Trace("sigprocmask", "env", e.id, "how", how.String(), "blocked", e.sig.Blocked().String())
	}
	if old != nil {
		*old = prev
	}
	return nil
}

func (k *Kernel) kill(from *Env, target EnvID, sig mosig.Signal) error {
	if !sig.Valid() {
		return mosig.Raisef(mosig.ErrInvalidSignal, "signal %d out of range", int(sig))
	}
	t, err := k.lookup(target, from)
	if err != nil {
		return err
	}

	var fromID EnvID
	if from != nil {
		fromID = from.id
	}
	k.raise(t, sig, fromID)
	return nil
}

// raise marks sig pending on t and wakes t out of IpcRecv so the signal
// is looked at on its next return to user mode.
func (k *Kernel) raise(t *Env, sig mosig.Signal, from EnvID) {
	_ = t.sig.Raise(sig)
	k.log.Trace("signal-raised", "env", t.id, "signal", sig.String(), "from", from)
	k.emit(Event{Kind: EventRaised, Env: t.id, Signal: sig, From: from})

	if t.recving {
		t.recving = false
		t.tf.Regs[mosig.RegV0] = uint32(mosig.Errno(mosig.ErrInterrupted))
		k.setRunnable(t)
		k.log.Trace("recv-interrupted", "env", t.id)
	}
}

func (k *Kernel) finish(e *Env) {
	next, tf, err := e.sig.Finish()
	if err != nil {
		k.log.Warn("sig-finish-outside-handler", "env", e.id, "pc", e.tf.EPC-4, "error", err)
		k.emit(Event{Kind: EventFatal, Env: e.id, PC: e.tf.EPC - 4})
		k.destroy(e, Exit{Kind: ExitFatal, Err: err})
		return
	}
	e.sig = next
	e.tf = tf
	k.log.Debug("sig-finish", "env", e.id, "resume", tf.EPC)
	k.emit(Event{Kind: EventFinished, Env: e.id, PC: tf.EPC})
}

func (k *Kernel) ipcSend(from *Env, to EnvID, value uint32) error {
	t, err := k.lookup(to, from)
	if err != nil {
		return err
	}
	if !t.recving {
		return mosig.Raisef(mosig.ErrIPCNotRecv, "env %v", t.id)
	}
	t.recving = false
	t.ipcValue = value
	t.ipcFrom = from.id
	t.tf.Regs[mosig.RegV0] = 0
	k.setRunnable(t)
	return nil
}
