package kern_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/oruby/mosig"
	"github.com/oruby/mosig/ext/assert"
	"github.com/oruby/mosig/kern"
	"github.com/oruby/mosig/user"
)

type trace struct {
	mu    sync.Mutex
	lines []string
}

func (tr *trace) add(format string, args ...interface{}) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.lines = append(tr.lines, fmt.Sprintf(format, args...))
}

func (tr *trace) rec(format string, args ...interface{}) kern.Instr {
	return user.Do(func(u *kern.UserContext) { tr.add(format, args...) })
}

func (tr *trace) get() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.lines...)
}

type eventLog struct {
	mu     sync.Mutex
	events []kern.Event
}

func (l *eventLog) Observe(ev kern.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) kinds(env kern.EnvID) []kern.EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	var ret []kern.EventKind
	for _, ev := range l.events {
		if ev.Env == env {
			ret = append(ret, ev.Kind)
		}
	}
	return ret
}

func (l *eventLog) find(kind kern.EventKind) []kern.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var ret []kern.Event
	for _, ev := range l.events {
		if ev.Kind == kind {
			ret = append(ret, ev)
		}
	}
	return ret
}

func newKernel(t *testing.T) (*kern.Kernel, *eventLog) {
	t.Helper()
	cfg := kern.DefaultConfig()
	cfg.MaxEnvs = 8
	cfg.Quantum = 4

	k, err := kern.New(cfg)
	assert.NilError(t, err)

	events := &eventLog{}
	k.Attach(events)
	return k, events
}

func spawn(t *testing.T, k *kern.Kernel, p *user.Program) kern.EnvID {
	t.Helper()
	id, err := k.EnvCreate(p, 0)
	assert.NilError(t, err)
	return id
}

func runIdle(t *testing.T, k *kern.Kernel) {
	t.Helper()
	assert.NilError(t, k.RunUntilIdle(1000))
}

func handler(sig mosig.Signal, h uint32, flags mosig.ActionFlags) kern.Instr {
	return user.Sigaction(sig, &mosig.SigAction{Handler: mosig.Handler(h), Flags: flags}, nil)
}

func expectExit(t *testing.T, k *kern.Kernel, id kern.EnvID, want kern.Exit) {
	t.Helper()
	x, ok := k.Exited(id)
	assert.Expect(t, ok, "env %v should have exited", id)
	assert.Equal(t, x.Kind, want.Kind)
	assert.Equal(t, x.Signal, want.Signal)
}
