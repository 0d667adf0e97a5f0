// Package user is the user-side runtime of mosig programs: a program
// builder, the signal trampoline and the library instructions that wrap
// each syscall.
//
// A program starts with the trampoline, then a short libmain that
// registers the trampoline with the kernel, then falls into the
// instructions added with Emit. Handlers live in a separate segment and
// are added with Func:
//
//     p := user.NewProgram()
//     h := p.Func(user.Print("got USR1\n"))
//     p.Emit(
//         user.Sigaction(mosig.SIGUSR1, &mosig.SigAction{Handler: mosig.Handler(h)}, nil),
//         user.Kill(0, mosig.SIGUSR1),
//         user.Exit(),
//     )
package user

import (
	"github.com/oruby/mosig/kern"
)

const (
	// TrampolineAddr is where every custom handler is entered.
	TrampolineAddr = 0x00400000
	// FinishAddr is the trampoline instruction handlers return to.
	FinishAddr = TrampolineAddr + 4

	funcBase = 0x00500000
)

// Program is a user program image. Build it completely before handing it
// to the kernel; the same Program may back several envs.
type Program struct {
	text  map[uint32]kern.Instr
	next  uint32
	fn    uint32
	entry uint32
}

// NewProgram returns a program holding the trampoline and libmain.
func NewProgram() *Program {
	p := &Program{
		text: make(map[uint32]kern.Instr),
		next: TrampolineAddr,
		fn:   funcBase,
	}
	p.Emit(trampoline, sigFinish)
	p.entry = p.next
	p.Emit(SetSigEntry(TrampolineAddr))
	return p
}

// Entry implements kern.Image.
func (p *Program) Entry() uint32 { return p.entry }

// Fetch implements kern.Image.
func (p *Program) Fetch(pc uint32) (kern.Instr, bool) {
	instr, ok := p.text[pc]
	return instr, ok
}

// Here returns the address the next Emit will use.
func (p *Program) Here() uint32 { return p.next }

// Emit appends instructions to the main segment and returns the address of
// the first one.
func (p *Program) Emit(instrs ...kern.Instr) uint32 {
	return p.place(&p.next, instrs)
}

// Func appends a function to the function segment and returns its
// address. A return is appended after body.
func (p *Program) Func(body ...kern.Instr) uint32 {
	addr := p.place(&p.fn, body)
	p.place(&p.fn, []kern.Instr{Ret()})
	return addr
}

func (p *Program) place(at *uint32, instrs []kern.Instr) uint32 {
	start := *at
	for _, instr := range instrs {
		p.text[*at] = instr
		*at += 4
	}
	return start
}
