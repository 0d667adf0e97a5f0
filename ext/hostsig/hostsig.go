// Package hostsig forwards signals received by the host process into
// envs of a running kernel. Signals are matched by name, so a host SIGUSR1
// becomes the mosig SIGUSR1 whatever the host numbering is.
package hostsig

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oruby/mosig"
	"github.com/oruby/mosig/kern"
)

// FromHost maps a host signal to the mosig signal of the same name.
func FromHost(s os.Signal) (mosig.Signal, error) {
	hs, ok := s.(syscall.Signal)
	if !ok {
		return 0, mosig.Raisef(mosig.ErrInvalidSignal, "not a host signal: %v", s)
	}
	name := hostName(hs)
	if name == "" {
		return 0, mosig.Raisef(mosig.ErrInvalidSignal, "host signal %d has no name", int(hs))
	}
	return mosig.ParseSignal(name)
}

// ToHost maps sig to the host signal of the same name.
func ToHost(sig mosig.Signal) (syscall.Signal, error) {
	if !sig.Valid() {
		return 0, mosig.Raisef(mosig.ErrInvalidSignal, "signal %d out of range", int(sig))
	}
	hs := hostNum("SIG" + sig.Name())
	if hs == 0 {
		return 0, mosig.Raisef(mosig.ErrInvalidSignal, "%v has no host equivalent", sig)
	}
	return hs, nil
}

// Forwarder relays host signals to one env until stopped.
type Forwarder struct {
	k      *kern.Kernel
	target kern.EnvID
	ch     chan os.Signal
	cancel context.CancelFunc
	done   chan struct{}
}

// Forward starts relaying the given host signals to target through
// k.Post. Signals without a mosig equivalent, or that the kernel refuses,
// are logged and dropped. Protected signals cannot be caught on the host,
// so asking for SIGKILL or SIGSTOP is an error.
func Forward(ctx context.Context, k *kern.Kernel, target kern.EnvID, sigs ...os.Signal) (*Forwarder, error) {
	if len(sigs) == 0 {
		return nil, mosig.Raise(mosig.ErrInvalidSignal, "no signals to forward")
	}
	for _, s := range sigs {
		sig, err := FromHost(s)
		if err != nil {
			return nil, err
		}
		if sig.Protected() {
			return nil, mosig.Raisef(mosig.ErrInvalidSignal, "%v cannot be forwarded", sig)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	f := &Forwarder{
		k:      k,
		target: target,
		ch:     make(chan os.Signal, 8),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	signal.Notify(f.ch, sigs...)
	go f.loop(ctx)
	return f, nil
}

func (f *Forwarder) loop(ctx context.Context) {
	defer close(f.done)
	log := f.k.Logger().Named("hostsig")

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-f.ch:
			sig, err := FromHost(s)
			if err != nil {
				log.Warn("unmapped host signal", "signal", s, "error", err)
				continue
			}
			if err := f.k.Post(ctx, f.target, sig); err != nil {
				log.Warn("forward failed", "signal", sig.String(), "env", f.target, "error", err)
				continue
			}
			log.Debug("forwarded", "signal", sig.String(), "env", f.target)
		}
	}
}

// Stop ends forwarding and restores default host handling of the signals.
func (f *Forwarder) Stop() {
	signal.Stop(f.ch)
	f.cancel()
	<-f.done
}
