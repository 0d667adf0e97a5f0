package mosig

import "fmt"

// Handler is a user-space handler address or one of the sentinels
// HandlerDefault and HandlerIgnore.
type Handler uint32

const (
	HandlerDefault Handler = 0
	HandlerIgnore  Handler = 1
)

// ActionFlags modify how a custom handler is entered.
type ActionFlags uint32

const (
	// FlagNoDefer leaves the signal itself unblocked while its handler runs,
	// so it may be delivered again before the handler finishes.
	FlagNoDefer ActionFlags = 1 << iota
)

// Disposition is what delivery of a signal does.
type Disposition int

const (
	DispositionDefault Disposition = iota
	DispositionIgnore
	DispositionCustom
)

func (d Disposition) String() string {
	switch d {
	case DispositionDefault:
		return "default"
	case DispositionIgnore:
		return "ignore"
	case DispositionCustom:
		return "custom"
	}
	return fmt.Sprintf("disposition(%d)", int(d))
}

// SigAction describes how a process handles one signal.
type SigAction struct {
	Handler Handler
	// Mask is added to the blocked set while the handler runs.
	Mask  SigSet
	Flags ActionFlags
}

// Disposition classifies the handler.
func (a SigAction) Disposition() Disposition {
	switch a.Handler {
	case HandlerDefault:
		return DispositionDefault
	case HandlerIgnore:
		return DispositionIgnore
	}
	return DispositionCustom
}

// NoDefer reports whether FlagNoDefer is set.
func (a SigAction) NoDefer() bool { return a.Flags&FlagNoDefer != 0 }

func (a SigAction) String() string {
	if a.Disposition() != DispositionCustom {
		return a.Disposition().String()
	}
	return fmt.Sprintf("handler@%#x mask=%v flags=%#x", uint32(a.Handler), a.Mask, uint32(a.Flags))
}

// Terminates reports whether delivering sig under its default disposition
// destroys the process.
func Terminates(sig Signal) bool {
	return sig.Valid() && !sig.DefaultIgnored()
}
