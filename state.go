package mosig

import "fmt"

// MaskHow selects how SetMask combines the given set with the blocked set.
type MaskHow int

const (
	SigBlock   MaskHow = 0
	SigUnblock MaskHow = 1
	SigSetMask MaskHow = 2
)

func (h MaskHow) String() string {
	switch h {
	case SigBlock:
		return "BLOCK"
	case SigUnblock:
		return "UNBLOCK"
	case SigSetMask:
		return "SETMASK"
	}
	return fmt.Sprintf("how(%d)", int(h))
}

// State is the signal state owned by one process. The zero value is not
// usable; start from NewState. State is a plain value: copying it yields an
// independent state, which is what Dispatch and Finish rely on.
type State struct {
	pending SigSet
	blocked SigSet
	actions [MaxSig]SigAction
	entry   uint32

	// Valid only while handling is true.
	handling  bool
	saved     Trapframe
	savedMask SigSet
}

// NewState returns the state of a newly created process: nothing pending,
// nothing blocked, every action at its default.
func NewState() State {
	return State{}
}

// Pending returns signals raised but not yet delivered.
func (s State) Pending() SigSet { return s.pending }

// Blocked returns the current signal mask.
func (s State) Blocked() SigSet { return s.blocked }

// Entry returns the registered trampoline address, 0 if none.
func (s State) Entry() uint32 { return s.entry }

// Handling reports whether a handler invocation is outstanding.
func (s State) Handling() bool { return s.handling }

// Saved returns the interrupted frame and the mask it will restore.
// ok is false unless a handler is active.
func (s State) Saved() (tf Trapframe, mask SigSet, ok bool) {
	if !s.handling {
		return Trapframe{}, 0, false
	}
	return s.saved, s.savedMask, true
}

// Ready returns the signals that may be delivered now.
func (s State) Ready() SigSet { return s.pending &^ s.blocked }

// SetEntry records the trampoline address shared by every custom handler.
func (s *State) SetEntry(addr uint32) { s.entry = addr }

// Action returns the action registered for sig.
func (s State) Action(sig Signal) (SigAction, error) {
	if err := checkSignal(sig); err != nil {
		return SigAction{}, err
	}
	return s.actions[sig], nil
}

// SetAction installs act for sig and returns the previous action.
// Protected signals cannot be given an action.
func (s *State) SetAction(sig Signal, act SigAction) (SigAction, error) {
	if err := checkSignal(sig); err != nil {
		return SigAction{}, err
	}
	if sig.Protected() {
		return SigAction{}, Raisef(ErrInvalidSignal, "%v cannot be caught or ignored", sig)
	}
	old := s.actions[sig]
	s.actions[sig] = act
	return old, nil
}

// SetMask changes the blocked set and returns the previous one.
// Protected signals are never blocked.
func (s *State) SetMask(how MaskHow, set SigSet) (SigSet, error) {
	old := s.blocked
	switch how {
	case SigBlock:
		s.blocked |= set
	case SigUnblock:
		s.blocked &^= set
	case SigSetMask:
		s.blocked = set
	default:
		return old, Raisef(ErrInvalidMaskOp, "unknown mask operation %v", how)
	}
	s.blocked &^= protected
	return old, nil
}

// Raise marks sig pending. Raising a pending signal is a no-op.
func (s *State) Raise(sig Signal) error {
	if err := checkSignal(sig); err != nil {
		return err
	}
	s.pending |= bit(sig)
	return nil
}

// Finish ends the active handler invocation: the returned state has the
// pre-delivery mask restored and no saved frame, and the returned frame is
// where the process resumes.
func (s State) Finish() (State, Trapframe, error) {
	if !s.handling {
		return s, Trapframe{}, Raise(ErrNoSavedFrame, "finish outside of a signal handler")
	}
	tf := s.saved
	s.blocked = s.savedMask
	s.handling = false
	s.saved = Trapframe{}
	s.savedMask = 0
	return s, tf, nil
}
