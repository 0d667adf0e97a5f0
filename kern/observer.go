package kern

import (
	"fmt"

	"github.com/oruby/mosig"
)

// EventKind classifies kernel events.
type EventKind int

const (
	EventRaised EventKind = iota
	EventDelivered
	EventIgnored
	EventTerminated
	EventFinished
	EventFatal
	EventEnvCreated
	EventEnvExited
)

var eventNames = [...]string{
	EventRaised:     "raised",
	EventDelivered:  "delivered",
	EventIgnored:    "ignored",
	EventTerminated: "terminated",
	EventFinished:   "finished",
	EventFatal:      "fatal",
	EventEnvCreated: "env-created",
	EventEnvExited:  "env-exited",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(s string) (EventKind, error) {
	for i, name := range eventNames {
		if name == s {
			return EventKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// Event is one observable step of signal handling or env lifecycle.
type Event struct {
	Seq    uint64
	Kind   EventKind
	Env    EnvID
	Signal mosig.Signal
	// From is the raising env for EventRaised, 0 for the kernel or host.
	From EnvID
	// PC is the user pc the event happened at, where meaningful.
	PC     uint32
	Nested bool
	Exit   *Exit
}

// Observer receives kernel events. Observe is called with the kernel
// lock held and must not call back into the kernel.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Attach adds an observer.
func (k *Kernel) Attach(obs Observer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.observers = append(k.observers, obs)
}

func (k *Kernel) emit(ev Event) {
	k.seq++
	ev.Seq = k.seq
	for _, obs := range k.observers {
		obs.Observe(ev)
	}
}
