package kern

import (
	"fmt"
	"io"

	hclog "github.com/hashicorp/go-hclog"
)

// Config holds kernel tunables.
type Config struct {
	// MaxEnvs is the size of the env table.
	MaxEnvs int
	// Quantum is the number of user instructions in one time slice.
	Quantum int
	// Logger receives kernel logs. Nil means no logging.
	Logger hclog.Logger
	// Console receives output of the Print syscall. Nil discards it.
	Console io.Writer
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MaxEnvs: 1 << envSlotBits,
		Quantum: 16,
		Logger:  hclog.NewNullLogger(),
		Console: io.Discard,
	}
}

// Validate checks the configuration and fills unset optional fields.
func (c *Config) Validate() error {
	if c.MaxEnvs < 1 || c.MaxEnvs > 1<<envSlotBits {
		return fmt.Errorf("max envs %d out of range [1, %d]", c.MaxEnvs, 1<<envSlotBits)
	}
	if c.Quantum < 1 {
		return fmt.Errorf("quantum must be positive, got %d", c.Quantum)
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
	if c.Console == nil {
		c.Console = io.Discard
	}
	return nil
}
