package mosig

// Register numbers used by the calling convention.
const (
	RegZero = 0
	RegV0   = 2
	RegV1   = 3
	RegA0   = 4
	RegA1   = 5
	RegA2   = 6
	RegA3   = 7
	RegSP   = 29
	RegRA   = 31
)

// Trapframe is the saved user execution context of a process.
type Trapframe struct {
	Regs   [32]uint32
	Hi     uint32
	Lo     uint32
	EPC    uint32
	Status uint32
}

// HandlerFrame derives the frame that enters the trampoline at entry with
// sig as its sole argument. Everything else, stack pointer included, is
// inherited from tf so the handler runs on the interrupted stack.
func (tf Trapframe) HandlerFrame(entry uint32, sig Signal) Trapframe {
	tf.EPC = entry
	tf.Regs[RegA0] = uint32(sig)
	tf.Regs[RegRA] = 0
	tf.Regs[RegV0] = 0
	return tf
}
