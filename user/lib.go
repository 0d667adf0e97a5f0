package user

import (
	"github.com/oruby/mosig"
	"github.com/oruby/mosig/kern"
)

// Do wraps fn as an instruction.
func Do(fn func(u *kern.UserContext)) kern.Instr { return fn }

// Nop does nothing.
func Nop() kern.Instr { return func(*kern.UserContext) {} }

// Jump continues at addr.
func Jump(addr uint32) kern.Instr {
	return func(u *kern.UserContext) { u.Jump(addr) }
}

// Call jumps to addr with the return address in RA.
func Call(addr uint32) kern.Instr {
	return func(u *kern.UserContext) {
		u.SetReg(mosig.RegRA, u.PC())
		u.Jump(addr)
	}
}

// Ret returns to RA.
func Ret() kern.Instr {
	return func(u *kern.UserContext) { u.Jump(u.Reg(mosig.RegRA)) }
}

// SetSigEntry registers entry as the trampoline.
func SetSigEntry(entry uint32) kern.Instr {
	return func(u *kern.UserContext) { u.SetSigEntry(entry) }
}

// Sigaction registers act for sig. When act has a custom handler, the
// shadow table is updated before the kernel sees the action, so the
// trampoline never lags behind what the kernel delivers. old, if non-nil,
// receives the previous action.
func Sigaction(sig mosig.Signal, act, old *mosig.SigAction) kern.Instr {
	return func(u *kern.UserContext) {
		if act != nil && sig.Valid() && act.Disposition() == mosig.DispositionCustom {
			u.Store(ShadowAddr(sig), uint32(act.Handler))
		}
		_ = u.SigAction(sig, act, old)
	}
}

// Sigprocmask changes the blocked set. old, if non-nil, receives the
// previous mask.
func Sigprocmask(how mosig.MaskHow, set, old *mosig.SigSet) kern.Instr {
	return func(u *kern.UserContext) { _ = u.SigProcMask(how, set, old) }
}

// Kill raises sig on target; target 0 is the caller.
func Kill(target kern.EnvID, sig mosig.Signal) kern.Instr {
	return func(u *kern.UserContext) { _ = u.Kill(target, sig) }
}

// KillParent raises sig on the env that spawned the caller.
func KillParent(sig mosig.Signal) kern.Instr {
	return func(u *kern.UserContext) { _ = u.Kill(u.Parent(), sig) }
}

// Finish issues the finish syscall directly. Only the trampoline should
// do this.
func Finish() kern.Instr {
	return func(u *kern.UserContext) { u.SigFinish() }
}

// Yield gives up the time slice.
func Yield() kern.Instr {
	return func(u *kern.UserContext) { u.Yield() }
}

// Exit ends the env.
func Exit() kern.Instr {
	return func(u *kern.UserContext) { u.Exit() }
}

// Print writes s to the console.
func Print(s string) kern.Instr {
	return func(u *kern.UserContext) { u.Print(s) }
}

// Spawn starts a child running img. The child id is left in V1.
func Spawn(img kern.Image) kern.Instr {
	return func(u *kern.UserContext) { _, _ = u.Spawn(img) }
}

// IpcRecv waits for a message. See kern.UserContext.IpcRecv for the
// result in V0.
func IpcRecv() kern.Instr {
	return func(u *kern.UserContext) { u.IpcRecv() }
}

// IpcSend sends value to an env waiting in IpcRecv. The id is read at
// run time so it can come from memory filled in by an earlier instruction.
func IpcSend(to func(u *kern.UserContext) kern.EnvID, value uint32) kern.Instr {
	return func(u *kern.UserContext) { _ = u.IpcTrySend(to(u), value) }
}

// Sleep spins for n slices worth of yields, returning to the instruction
// after it. The counter lives in the word at scratch.
func Sleep(scratch uint32, n uint32) kern.Instr {
	return func(u *kern.UserContext) {
		c := u.Load(scratch)
		if c+1 < n {
			u.Store(scratch, c+1)
			u.Jump(u.PC() - 4)
		} else {
			u.Store(scratch, 0)
		}
		u.Yield()
	}
}
