package kern

import (
	"context"
	"errors"

	"github.com/oruby/mosig"
)

type post struct {
	target EnvID
	sig    mosig.Signal
	reply  chan error
}

// Post raises sig on target on behalf of code outside the kernel, such as
// a host signal forwarder. The request is queued and applied by Run at its
// next scheduling point; Post waits for the result. Target 0 is rejected
// since there is no calling env.
func (k *Kernel) Post(ctx context.Context, target EnvID, sig mosig.Signal) error {
	if target == 0 {
		return mosig.Raise(mosig.ErrNoSuchProcess, "posted signal needs an explicit target")
	}
	p := post{target: target, sig: sig, reply: make(chan error, 1)}

	select {
	case k.mailbox <- p:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-p.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *Kernel) deliverPost(p post) {
	k.mu.Lock()
	err := k.kill(nil, p.target, p.sig)
	k.mu.Unlock()
	p.reply <- err
}

func (k *Kernel) drainMailbox() {
	for {
		select {
		case p := <-k.mailbox:
			k.deliverPost(p)
		default:
			return
		}
	}
}

// Run schedules envs until none is left or ctx is done. While every live
// env is suspended it waits for posted signals.
func (k *Kernel) Run(ctx context.Context) error {
	for {
		k.drainMailbox()

		ran, live := k.schedule()
		if live == 0 {
			return nil
		}
		if !ran {
			select {
			case p := <-k.mailbox:
				k.deliverPost(p)
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// ErrStalled is returned by RunUntilIdle when live envs remain but none
// can run.
var ErrStalled = errors.New("all envs are suspended")

// RunUntilIdle schedules envs until none is runnable. It returns nil when
// every env is gone and ErrStalled when some are left suspended. Posted
// signals are applied between slices. maxSlices bounds the run; 0 means
// no bound.
func (k *Kernel) RunUntilIdle(maxSlices int) error {
	for n := 0; maxSlices == 0 || n < maxSlices; n++ {
		k.drainMailbox()

		ran, live := k.schedule()
		if live == 0 {
			return nil
		}
		if !ran {
			return ErrStalled
		}
	}
	return errors.New("slice budget exhausted")
}

// schedule runs one time slice of the next runnable env.
func (k *Kernel) schedule() (ran bool, live int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	front := k.runq.Front()
	if front == nil {
		return false, k.live
	}
	e := front.Value.(*Env)
	k.unqueue(e)

	k.runSlice(e)

	if e.status == EnvRunnable {
		k.setRunnable(e)
	}
	return true, k.live
}

func (k *Kernel) runSlice(e *Env) {
	k.yielded = false

	if !k.returnToUser(e) {
		return
	}
	for i := 0; i < k.cfg.Quantum; i++ {
		if !k.step(e) {
			continue
		}
		if e.status != EnvRunnable || k.yielded {
			return
		}
		if !k.returnToUser(e) {
			return
		}
	}
}

// returnToUser runs the dispatcher before e resumes in user mode. It
// reports false if e was destroyed.
func (k *Kernel) returnToUser(e *Env) bool {
	if e.sig.Ready().Empty() {
		return true
	}

	next, out := e.sig.Dispatch(e.tf)
	e.sig = next

	for _, sig := range out.Ignored.Signals() {
		k.log.Trace("signal-ignored", "env", e.id, "signal", sig.String())
		k.emit(Event{Kind: EventIgnored, Env: e.id, Signal: sig, PC: e.tf.EPC})
	}

	switch out.Verdict {
	case mosig.Terminate:
		k.log.Debug("signal-terminate", "env", e.id, "signal", out.Signal.String())
		k.emit(Event{Kind: EventTerminated, Env: e.id, Signal: out.Signal, PC: e.tf.EPC})
		k.destroy(e, Exit{Kind: ExitSignaled, Signal: out.Signal})
		return false
	case mosig.Deliver:
		k.log.Debug("signal-deliver", "env", e.id, "signal", out.Signal.String(),
			"handler", uint32(out.Action.Handler), "nested", out.Nested, "pc", e.tf.EPC)
		k.emit(Event{Kind: EventDelivered, Env: e.id, Signal: out.Signal, PC: e.tf.EPC, Nested: out.Nested})
	}
	e.tf = out.Frame
	return true
}
