package mosig

import (
	"strconv"
	"strings"
)

// Signal is a signal number. Valid signals are in [1, MaxSig).
type Signal int

// MaxSig is one past the highest valid signal number.
const MaxSig = 33

const (
	SIGHUP    Signal = 1
	SIGINT    Signal = 2
	SIGQUIT   Signal = 3
	SIGILL    Signal = 4
	SIGTRAP   Signal = 5
	SIGABRT   Signal = 6
	SIGBUS    Signal = 7
	SIGFPE    Signal = 8
	SIGKILL   Signal = 9
	SIGUSR1   Signal = 10
	SIGSEGV   Signal = 11
	SIGUSR2   Signal = 12
	SIGPIPE   Signal = 13
	SIGALRM   Signal = 14
	SIGTERM   Signal = 15
	SIGSTKFLT Signal = 16
	SIGCHLD   Signal = 17
	SIGCONT   Signal = 18
	SIGSTOP   Signal = 19
	SIGTSTP   Signal = 20
	SIGTTIN   Signal = 21
	SIGTTOU   Signal = 22
	SIGURG    Signal = 23
	SIGXCPU   Signal = 24
	SIGXFSZ   Signal = 25
	SIGVTALRM Signal = 26
	SIGPROF   Signal = 27
	SIGWINCH  Signal = 28
	SIGIO     Signal = 29
	SIGPWR    Signal = 30
	SIGSYS    Signal = 31
)

var signalNames = map[Signal]string{
	SIGHUP:    "HUP",
	SIGINT:    "INT",
	SIGQUIT:   "QUIT",
	SIGILL:    "ILL",
	SIGTRAP:   "TRAP",
	SIGABRT:   "ABRT",
	SIGBUS:    "BUS",
	SIGFPE:    "FPE",
	SIGKILL:   "KILL",
	SIGUSR1:   "USR1",
	SIGSEGV:   "SEGV",
	SIGUSR2:   "USR2",
	SIGPIPE:   "PIPE",
	SIGALRM:   "ALRM",
	SIGTERM:   "TERM",
	SIGSTKFLT: "STKFLT",
	SIGCHLD:   "CHLD",
	SIGCONT:   "CONT",
	SIGSTOP:   "STOP",
	SIGTSTP:   "TSTP",
	SIGTTIN:   "TTIN",
	SIGTTOU:   "TTOU",
	SIGURG:    "URG",
	SIGXCPU:   "XCPU",
	SIGXFSZ:   "XFSZ",
	SIGVTALRM: "VTALRM",
	SIGPROF:   "PROF",
	SIGWINCH:  "WINCH",
	SIGIO:     "IO",
	SIGPWR:    "PWR",
	SIGSYS:    "SYS",
}

// Signals that can be neither caught, ignored nor blocked.
var protected = SigSet(1<<(SIGKILL-1) | 1<<(SIGSTOP-1))

// Signals whose default disposition is to be discarded.
var ignoredByDefault = SigSet(1<<(SIGCHLD-1) | 1<<(SIGCONT-1) | 1<<(SIGURG-1) | 1<<(SIGWINCH-1))

// Valid reports whether sig is in [1, MaxSig).
func (sig Signal) Valid() bool {
	return sig >= 1 && sig < MaxSig
}

// Protected reports whether sig is reserved by the kernel and cannot be
// caught, ignored or blocked.
func (sig Signal) Protected() bool {
	return sig.Valid() && protected.has(sig)
}

// DefaultIgnored reports whether the default disposition of sig is to
// discard it rather than terminate the process.
func (sig Signal) DefaultIgnored() bool {
	return sig.Valid() && ignoredByDefault.has(sig)
}

// Name returns the short name without the SIG prefix, e.g. "USR1".
// Unnamed valid signals are reported by number.
func (sig Signal) Name() string {
	if name, ok := signalNames[sig]; ok {
		return name
	}
	return strconv.Itoa(int(sig))
}

func (sig Signal) String() string {
	if name, ok := signalNames[sig]; ok {
		return "SIG" + name
	}
	return "signal " + strconv.Itoa(int(sig))
}

// ParseSignal accepts "SIGUSR1", "USR1" or a decimal number.
func ParseSignal(s string) (Signal, error) {
	if n, err := strconv.Atoi(s); err == nil {
		sig := Signal(n)
		if !sig.Valid() {
			return 0, Raisef(ErrInvalidSignal, "signal %d out of range", n)
		}
		return sig, nil
	}

	name := strings.TrimPrefix(strings.ToUpper(s), "SIG")
	for sig, v := range signalNames {
		if v == name {
			return sig, nil
		}
	}
	return 0, Raisef(ErrInvalidSignal, "unknown signal name %q", s)
}

// SignalNames returns the name table keyed by short name, like Signal.list.
func SignalNames() map[string]Signal {
	ret := make(map[string]Signal, len(signalNames))
	for sig, name := range signalNames {
		ret[name] = sig
	}
	return ret
}

func checkSignal(sig Signal) error {
	if !sig.Valid() {
		return Raisef(ErrInvalidSignal, "signal %d out of range [1, %d)", int(sig), MaxSig)
	}
	return nil
}
