// Package mosig implements asynchronous signal delivery for a small
// microkernel: signal sets, per-signal actions, the per-process signal
// state and the dispatcher that runs on every return to user mode.
//
// Everything in this package is a value. A process owns one State:
//
//     st := mosig.NewState()
//     old, err := st.SetAction(mosig.SIGUSR1, mosig.SigAction{Handler: h})
//     st.SetEntry(trampoline)
//     _ = st.Raise(mosig.SIGUSR1)
//
// Before resuming the process the kernel asks the state what to do:
//
//     st, out := st.Dispatch(tf)
//     switch out.Verdict {
//     case mosig.Deliver:   // run out.Frame, which enters the trampoline
//     case mosig.Terminate: // destroy the process
//     case mosig.Resume:    // run out.Frame unchanged
//     }
//
// When the handler returns, the trampoline asks the kernel to finish and
// the saved frame comes back:
//
//     st, tf, err = st.Finish()
//
// The kern package hosts processes around this state, the user package
// provides the trampoline and the user-side library.
package mosig
