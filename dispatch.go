package mosig

// Verdict is the result of one dispatch.
type Verdict int

const (
	// Resume continues the process in the frame it was going to run.
	Resume Verdict = iota
	// Deliver enters the trampoline for a custom handler.
	Deliver
	// Terminate destroys the process; no handler runs.
	Terminate
)

func (v Verdict) String() string {
	switch v {
	case Resume:
		return "resume"
	case Deliver:
		return "deliver"
	case Terminate:
		return "terminate"
	}
	return "verdict(?)"
}

// Outcome describes what the kernel must do after Dispatch.
type Outcome struct {
	Verdict Verdict
	// Signal is the delivered or fatal signal, 0 on Resume.
	Signal Signal
	// Frame is the frame to resume into on Resume and Deliver.
	Frame Trapframe
	// Nested is set when a handler was already active at delivery.
	Nested bool
	// Action is the action that was delivered.
	Action SigAction
	// Ignored lists signals discarded by this dispatch.
	Ignored SigSet
}

// Dispatch runs on every return to user mode with cur, the frame the
// process is about to resume into. It consumes ready signals lowest first
// until one is delivered or fatal, or none are left. The receiver is not
// modified; the new state is returned alongside the outcome.
//
// A custom action is only deliverable once a trampoline entry has been
// registered; before that it is treated as the default action.
func (s State) Dispatch(cur Trapframe) (State, Outcome) {
	out := Outcome{Verdict: Resume, Frame: cur}

	for {
		ready := s.Ready()
		if ready.Empty() {
			return s, out
		}
		sig := ready.Lowest()
		s.pending &^= bit(sig)

		act := s.actions[sig]
		disp := act.Disposition()
		if disp == DispositionCustom && s.entry == 0 {
			disp = DispositionDefault
		}

		switch disp {
		case DispositionIgnore:
			out.Ignored |= bit(sig)
			continue
		case DispositionDefault:
			if !Terminates(sig) {
				out.Ignored |= bit(sig)
				continue
			}
			out.Verdict = Terminate
			out.Signal = sig
			return s, out
		}

		// Custom handler. A nested delivery keeps the original frame and
		// mask: finishing any handler lands at the first interruption point.
		out.Nested = s.handling
		if !s.handling {
			s.handling = true
			s.saved = cur
			s.savedMask = s.blocked
		}
		s.blocked |= act.Mask
		if !act.NoDefer() {
			s.blocked |= bit(sig)
		}
		s.blocked &^= protected

		out.Verdict = Deliver
		out.Signal = sig
		out.Action = act
		out.Frame = cur.HandlerFrame(s.entry, sig)
		return s, out
	}
}
