package kern

import (
	"container/list"
	"fmt"

	"github.com/oruby/mosig"
)

const (
	envSlotBits = 11
	envSlotMask = 1<<envSlotBits - 1

	// UStackTop is the initial user stack pointer.
	UStackTop = 0x7f3fe000
)

// EnvID names an env. The low bits select a table slot, the high bits
// count how many times the slot was reused, so ids of destroyed envs never
// resolve again. 0 means "the calling env" where a target is expected.
type EnvID uint32

func (id EnvID) String() string { return fmt.Sprintf("%08x", uint32(id)) }

func (id EnvID) slot() int { return int(id & envSlotMask) }

// EnvStatus is the scheduling state of an env.
type EnvStatus int

const (
	EnvFree EnvStatus = iota
	EnvRunnable
	EnvNotRunnable
)

func (s EnvStatus) String() string {
	switch s {
	case EnvFree:
		return "free"
	case EnvRunnable:
		return "runnable"
	case EnvNotRunnable:
		return "not runnable"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ExitKind tells how an env ended.
type ExitKind int

const (
	ExitNormal ExitKind = iota
	ExitSignaled
	ExitFatal
)

// Exit records the end of an env.
type Exit struct {
	Kind ExitKind
	// Signal is the terminating signal for ExitSignaled.
	Signal mosig.Signal
	// Err is the contract violation for ExitFatal.
	Err error
}

func (x Exit) String() string {
	switch x.Kind {
	case ExitSignaled:
		return "killed by " + x.Signal.String()
	case ExitFatal:
		return "fatal: " + x.Err.Error()
	}
	return "exited"
}

// Env is a process.
type Env struct {
	id     EnvID
	parent EnvID
	status EnvStatus
	gen    uint32

	tf  mosig.Trapframe
	sig mosig.State
	img Image
	mem map[uint32]uint32

	recving  bool
	ipcValue uint32
	ipcFrom  EnvID

	runq *list.Element
}

// ID returns the env id.
func (e *Env) ID() EnvID { return e.id }

func (k *Kernel) mkenvid(e *Env, slot int) EnvID {
	e.gen++
	return EnvID(e.gen<<envSlotBits | uint32(slot))
}

// lookup resolves id to a live env. id 0 resolves to cur.
func (k *Kernel) lookup(id EnvID, cur *Env) (*Env, error) {
	if id == 0 {
		if cur == nil {
			return nil, mosig.Raise(mosig.ErrNoSuchProcess, "no calling env")
		}
		return cur, nil
	}
	slot := id.slot()
	if slot >= len(k.envs) {
		return nil, mosig.Raisef(mosig.ErrNoSuchProcess, "env %v", id)
	}
	e := &k.envs[slot]
	if e.status == EnvFree || e.id != id {
		return nil, mosig.Raisef(mosig.ErrNoSuchProcess, "env %v", id)
	}
	return e, nil
}

func (k *Kernel) alloc(img Image, parent EnvID) (*Env, error) {
	front := k.free.Front()
	if front == nil {
		return nil, mosig.Raise(mosig.ErrNoFreeEnv, "env table full")
	}
	k.free.Remove(front)
	slot := front.Value.(int)

	e := &k.envs[slot]
	gen := e.gen
	*e = Env{
		parent: parent,
		gen:    gen,
		sig:    mosig.NewState(),
		img:    img,
		mem:    make(map[uint32]uint32),
	}
	e.id = k.mkenvid(e, slot)
	e.tf.EPC = img.Entry()
	e.tf.Regs[mosig.RegSP] = UStackTop

	k.live++
	k.setRunnable(e)
	return e, nil
}

func (k *Kernel) destroy(e *Env, x Exit) {
	id, parent := e.id, e.parent

	k.unqueue(e)
	e.status = EnvFree
	e.mem = nil
	e.img = nil
	e.recving = false
	k.free.PushBack(id.slot())
	k.live--
	k.exits[id] = x

	k.log.Info("env-destroyed", "env", id, "exit", x.String())
	k.emit(Event{Kind: EventEnvExited, Env: id, Signal: x.Signal, Exit: &x})

	if parent == 0 {
		return
	}
	if p, err := k.lookup(parent, nil); err == nil {
		k.raise(p, mosig.SIGCHLD, id)
	}
}

func (k *Kernel) setRunnable(e *Env) {
	e.status = EnvRunnable
	if e.runq == nil {
		e.runq = k.runq.PushBack(e)
	}
}

func (k *Kernel) setNotRunnable(e *Env) {
	e.status = EnvNotRunnable
	k.unqueue(e)
}

func (k *Kernel) unqueue(e *Env) {
	if e.runq != nil {
		k.runq.Remove(e.runq)
		e.runq = nil
	}
}
