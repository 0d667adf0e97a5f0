package main

import (
	"bytes"
	"testing"

	"github.com/oruby/mosig"
	"github.com/oruby/mosig/ext/assert"
	"github.com/oruby/mosig/kern"
)

func runScenario(t *testing.T, name string) (string, kern.Exit) {
	t.Helper()
	var out bytes.Buffer
	cfg := kern.DefaultConfig()
	cfg.Console = &out

	k, err := kern.New(cfg)
	assert.NilError(t, err)
	id, err := k.EnvCreate(scenarios[name].build(), 0)
	assert.NilError(t, err)
	assert.NilError(t, k.RunUntilIdle(10000))

	x, ok := k.Exited(id)
	assert.Expect(t, ok, "main env of %v should have exited", name)
	return out.String(), x
}

func TestSelfKill(t *testing.T) {
	out, x := runScenario(t, "selfkill")
	assert.Equal(t, out, "main: raising SIGUSR1\n"+
		"handler: got SIGUSR1\n"+
		"main: resumed, raising SIGTERM\n")
	assert.Equal(t, x.Kind, kern.ExitSignaled)
	assert.Equal(t, x.Signal, mosig.SIGTERM)
}

func TestNested(t *testing.T) {
	out, x := runScenario(t, "nested")
	assert.Equal(t, out, "handler: depth 1\n"+
		"handler: depth 2\n"+
		"handler: depth 3\n"+
		"handler: unwinding\n"+
		"main: back at the original interruption point\n")
	assert.Equal(t, x.Kind, kern.ExitNormal)
}

func TestIPC(t *testing.T) {
	out, x := runScenario(t, "ipc")
	assert.Equal(t, out, "child: waiting in recv\n"+
		"child: SIGUSR2 while waiting\n"+
		"child: recv returned "+mosig.ErrnoError(mosig.EInterrupted).Error()+"\n"+
		"parent: woken by SIGCHLD\n")
	assert.Equal(t, x.Kind, kern.ExitNormal)
}

func TestMask(t *testing.T) {
	out, _ := runScenario(t, "mask")
	assert.Equal(t, out, "main: two SIGUSR1 pending, unblocking\n"+
		"handler: got SIGUSR1\n"+
		"main: done\n")
}

func TestScenarioNames(t *testing.T) {
	assert.Equal(t, scenarioNames(), []string{"host", "ipc", "mask", "nested", "selfkill"})
}
