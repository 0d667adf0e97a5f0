// +build !windows

package hostsig

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func hostName(s syscall.Signal) string { return unix.SignalName(s) }

func hostNum(name string) syscall.Signal { return unix.SignalNum(name) }
