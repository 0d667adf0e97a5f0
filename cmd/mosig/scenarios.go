package main

import (
	"fmt"
	"sort"

	"github.com/oruby/mosig"
	"github.com/oruby/mosig/kern"
	"github.com/oruby/mosig/user"
)

const (
	childSlot = 0x10000000
	counter   = 0x10000004
	scratch   = 0x10000008
)

type scenario struct {
	about string
	// wait scenarios only end on an external signal
	wait  bool
	build func() *user.Program
}

var scenarios = map[string]scenario{
	"selfkill": {"raise USR1 on itself, handle it, then die of SIGTERM", false, selfKill},
	"nested":   {"USR1 handler without self-blocking raises USR1 again", false, nested},
	"ipc":      {"parent interrupts a child waiting in recv", false, ipc},
	"mask":     {"USR1 stays pending while blocked", false, mask},
	"host":     {"wait for host SIGUSR1/SIGINT forwarded into the env", true, host},
}

func scenarioNames() []string {
	var names []string
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func catch(sig mosig.Signal, h uint32, flags mosig.ActionFlags) kern.Instr {
	return user.Sigaction(sig, &mosig.SigAction{Handler: mosig.Handler(h), Flags: flags}, nil)
}

func selfKill() *user.Program {
	p := user.NewProgram()
	h := p.Func(user.Print("handler: got SIGUSR1\n"))
	p.Emit(
		catch(mosig.SIGUSR1, h, 0),
		user.Print("main: raising SIGUSR1\n"),
		user.Kill(0, mosig.SIGUSR1),
		user.Print("main: resumed, raising SIGTERM\n"),
		user.Kill(0, mosig.SIGTERM),
		user.Print("main: unreachable\n"),
		user.Exit(),
	)
	return p
}

func nested() *user.Program {
	p := user.NewProgram()
	h := p.Func(
		user.Do(func(u *kern.UserContext) {
			depth := u.Load(counter) + 1
			u.Store(counter, depth)
			u.Print(fmt.Sprintf("handler: depth %d\n", depth))
		}),
		user.Do(func(u *kern.UserContext) {
			if u.Load(counter) < 3 {
				_ = u.Kill(0, mosig.SIGUSR1)
			}
		}),
		user.Print("handler: unwinding\n"),
	)
	p.Emit(
		catch(mosig.SIGUSR1, h, mosig.FlagNoDefer),
		user.Kill(0, mosig.SIGUSR1),
		user.Print("main: back at the original interruption point\n"),
		user.Exit(),
	)
	return p
}

func ipc() *user.Program {
	child := user.NewProgram()
	ch := child.Func(user.Print("child: SIGUSR2 while waiting\n"))
	child.Emit(
		catch(mosig.SIGUSR2, ch, 0),
		user.Print("child: waiting in recv\n"),
		user.IpcRecv(),
		user.Do(func(u *kern.UserContext) {
			u.Print(fmt.Sprintf("child: recv returned %v\n", u.Result()))
		}),
		user.Exit(),
	)

	p := user.NewProgram()
	p.Emit(
		user.Spawn(child),
		user.Do(func(u *kern.UserContext) { u.Store(childSlot, u.Reg(mosig.RegV1)) }),
		user.Sleep(scratch, 3),
		user.Do(func(u *kern.UserContext) {
			_ = u.Kill(kern.EnvID(u.Load(childSlot)), mosig.SIGUSR2)
		}),
		user.IpcRecv(),
		user.Print("parent: woken by SIGCHLD\n"),
		user.Exit(),
	)
	return p
}

func mask() *user.Program {
	usr1 := mosig.SetOf(mosig.SIGUSR1)
	p := user.NewProgram()
	h := p.Func(user.Print("handler: got SIGUSR1\n"))
	p.Emit(
		catch(mosig.SIGUSR1, h, 0),
		user.Sigprocmask(mosig.SigBlock, &usr1, nil),
		user.Kill(0, mosig.SIGUSR1),
		user.Kill(0, mosig.SIGUSR1),
		user.Print("main: two SIGUSR1 pending, unblocking\n"),
		user.Sigprocmask(mosig.SigUnblock, &usr1, nil),
		user.Print("main: done\n"),
		user.Exit(),
	)
	return p
}

func host() *user.Program {
	p := user.NewProgram()
	usr1 := p.Func(user.Print("handler: host SIGUSR1\n"))
	intr := p.Func(user.Print("handler: host SIGINT, exiting\n"), user.Exit())
	p.Emit(
		catch(mosig.SIGUSR1, usr1, 0),
		catch(mosig.SIGINT, intr, 0),
		user.Print("main: waiting for host signals\n"),
	)
	loop := p.Here()
	p.Emit(user.IpcRecv(), user.Jump(loop))
	return p
}
