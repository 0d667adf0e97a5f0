package kern

import (
	"github.com/oruby/mosig"
)

// Instr is one user instruction. It may touch registers and memory through
// u, and may issue at most one syscall, which must be its last action.
type Instr func(u *UserContext)

// Image is the text of a user program.
type Image interface {
	// Entry is the address execution starts at.
	Entry() uint32
	// Fetch returns the instruction at pc.
	Fetch(pc uint32) (Instr, bool)
}

// UserContext is what a running instruction sees of its env.
type UserContext struct {
	k       *Kernel
	e       *Env
	trapped bool
}

// Reg returns register r.
func (u *UserContext) Reg(r int) uint32 { return u.e.tf.Regs[r] }

// SetReg sets register r. Register 0 stays zero.
func (u *UserContext) SetReg(r int, v uint32) {
	if r != mosig.RegZero {
		u.e.tf.Regs[r] = v
	}
}

// PC returns the address of the next instruction.
func (u *UserContext) PC() uint32 { return u.e.tf.EPC }

// Jump continues execution at addr.
func (u *UserContext) Jump(addr uint32) { u.e.tf.EPC = addr }

// Load reads a word of user memory. Unwritten words read as zero.
func (u *UserContext) Load(addr uint32) uint32 { return u.e.mem[addr&^3] }

// Store writes a word of user memory.
func (u *UserContext) Store(addr, v uint32) { u.e.mem[addr&^3] = v }

// Result returns the V0 register as a syscall result.
func (u *UserContext) Result() error {
	return mosig.ErrnoError(int32(u.e.tf.Regs[mosig.RegV0]))
}

// IpcValue returns the value and sender of the last received message.
func (u *UserContext) IpcValue() (uint32, EnvID) { return u.e.ipcValue, u.e.ipcFrom }

// step executes one instruction of e. It reports whether the instruction
// entered the kernel.
func (k *Kernel) step(e *Env) bool {
	pc := e.tf.EPC
	instr, ok := e.img.Fetch(pc)
	if !ok {
		k.fault(e, pc)
		return true
	}

	e.tf.EPC = pc + 4
	u := &UserContext{k: k, e: e}
	instr(u)
	return u.trapped
}

// fault handles an instruction fetch from an address without text. The
// env resumes at the faulting pc, so SIGSEGV is raised for delivery when it
// has a handler and cannot be deferred otherwise.
func (k *Kernel) fault(e *Env, pc uint32) {
	e.tf.EPC = pc
	k.log.Debug("page-fault", "env", e.id, "pc", pc)

	act, _ := e.sig.Action(mosig.SIGSEGV)
	blocked, _ := e.sig.Blocked().IsMember(mosig.SIGSEGV)
	if act.Disposition() != mosig.DispositionCustom || blocked || e.sig.Entry() == 0 {
		k.emit(Event{Kind: EventTerminated, Env: e.id, Signal: mosig.SIGSEGV, PC: pc})
		k.destroy(e, Exit{Kind: ExitSignaled, Signal: mosig.SIGSEGV})
		return
	}
	k.raise(e, mosig.SIGSEGV, e.id)
}

func (u *UserContext) enter() {
	if u.trapped {
		panic("kern: second syscall in one instruction")
	}
	u.trapped = true
}

func (u *UserContext) ret(err error) error {
	u.e.tf.Regs[mosig.RegV0] = uint32(mosig.Errno(err))
	return err
}
