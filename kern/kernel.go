// Package kern hosts user processes (envs) around the mosig signal state:
// an env table, a round-robin scheduler, a word-addressed instruction
// machine and the syscall surface user programs reach it through.
//
// The dispatcher runs on every return to user mode: at the start of each
// time slice and after every syscall.
package kern

import (
	"container/list"
	"io"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/oruby/mosig"
)

// Kernel owns every env. Run and RunUntilIdle must not be called
// concurrently with each other; every other method is safe for concurrent
// use.
type Kernel struct {
	mu  sync.Mutex
	cfg Config
	log hclog.Logger

	envs  []Env
	free  *list.List
	runq  *list.List
	live  int
	exits map[EnvID]Exit

	// set by Yield, cleared at the start of each slice
	yielded bool

	mailbox chan post

	observers []Observer
	features  map[string]struct{}
	seq       uint64
}

// New returns a kernel with an empty env table.
func New(cfg Config) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	k := &Kernel{
		cfg:      cfg,
		log:      cfg.Logger.Named("kern"),
		envs:     make([]Env, cfg.MaxEnvs),
		free:     list.New(),
		runq:     list.New(),
		exits:    make(map[EnvID]Exit),
		mailbox:  make(chan post, 64),
		features: make(map[string]struct{}),
	}
	for i := range k.envs {
		k.free.PushBack(i)
	}
	return k, nil
}

// Config returns the validated configuration.
func (k *Kernel) Config() Config { return k.cfg }

// Logger returns the kernel logger.
func (k *Kernel) Logger() hclog.Logger { return k.log }

// EnvCreate starts a new env running img. parent may be 0.
func (k *Kernel) EnvCreate(img Image, parent EnvID) (EnvID, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if parent != 0 {
		if _, err := k.lookup(parent, nil); err != nil {
			return 0, err
		}
	}
	e, err := k.alloc(img, parent)
	if err != nil {
		return 0, err
	}
	k.created(e)
	return e.id, nil
}

// EnvDestroy destroys an env as if it had exited.
func (k *Kernel) EnvDestroy(id EnvID) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, err := k.lookup(id, nil)
	if err != nil {
		return err
	}
	k.destroy(e, Exit{Kind: ExitNormal})
	return nil
}

func (k *Kernel) created(e *Env) {
	k.log.Info("env-created", "env", e.id, "parent", e.parent, "entry", e.tf.EPC)
	k.emit(Event{Kind: EventEnvCreated, Env: e.id, From: e.parent, PC: e.tf.EPC})
}

// Status returns the scheduling status of id, EnvFree if it is gone.
func (k *Kernel) Status(id EnvID) EnvStatus {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, err := k.lookup(id, nil)
	if err != nil {
		return EnvFree
	}
	return e.status
}

// SigState returns a copy of the signal state of id.
func (k *Kernel) SigState(id EnvID) (mosig.State, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, err := k.lookup(id, nil)
	if err != nil {
		return mosig.State{}, err
	}
	return e.sig, nil
}

// Frame returns a copy of the current trapframe of id.
func (k *Kernel) Frame(id EnvID) (mosig.Trapframe, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, err := k.lookup(id, nil)
	if err != nil {
		return mosig.Trapframe{}, err
	}
	return e.tf, nil
}

// Exited reports how a destroyed env ended.
func (k *Kernel) Exited(id EnvID) (Exit, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	x, ok := k.exits[id]
	return x, ok
}

// Live returns the number of envs not yet destroyed.
func (k *Kernel) Live() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.live
}

// Close closes every observer that is an io.Closer and returns the first
// error.
func (k *Kernel) Close() error {
	k.mu.Lock()
	obs := k.observers
	k.observers = nil
	k.mu.Unlock()

	var first error
	for _, o := range obs {
		if c, ok := o.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
