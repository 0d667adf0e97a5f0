package user

import (
	"github.com/oruby/mosig"
	"github.com/oruby/mosig/kern"
)

// ShadowBase is the user address of the shadow action table: the word at
// ShadowAddr(sig) holds the handler address the kernel will deliver sig
// to.
const ShadowBase = 0x7f400000

// ShadowAddr returns the shadow table slot of sig.
func ShadowAddr(sig mosig.Signal) uint32 {
	return ShadowBase + 4*uint32(sig)
}

// trampoline is entered with the signal number in A0. It calls the
// handler from the shadow table with the same argument, which returns to
// sigFinish.
func trampoline(u *kern.UserContext) {
	sig := mosig.Signal(u.Reg(mosig.RegA0))
	u.SetReg(mosig.RegRA, FinishAddr)
	u.Jump(u.Load(ShadowAddr(sig)))
}

func sigFinish(u *kern.UserContext) {
	u.SigFinish()
}
