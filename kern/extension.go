package kern

import (
	"errors"
	"fmt"
	"sync"
)

// ExtensionFunc builds an observer for k. arg is extension specific, for
// example a database path.
type ExtensionFunc func(k *Kernel, arg string) (Observer, error)

var (
	extMu      sync.Mutex
	extensions = make(map[string]ExtensionFunc)
)

// Extension makes an extension available by the provided name.
// If Extension is called twice with the same name it panics.
func Extension(name string, fn ExtensionFunc) {
	if name == "" {
		panic("error - empty name not allowed")
	}

	extMu.Lock()
	defer extMu.Unlock()
	if _, dup := extensions[name]; dup {
		panic("extension register called twice for extension " + name)
	}
	extensions[name] = fn
}

// ExtensionExists checks if an extension was registered
func ExtensionExists(name string) bool {
	extMu.Lock()
	defer extMu.Unlock()
	_, exists := extensions[name]
	return exists
}

// Require attaches the named extension if not already attached.
// It reports whether the extension was attached by this call.
func (k *Kernel) Require(name, arg string) (bool, error) {
	if name == "" {
		return false, errors.New("error - empty")
	}

	k.mu.Lock()
	_, loaded := k.features[name]
	k.mu.Unlock()
	if loaded {
		return false, nil
	}

	extMu.Lock()
	fn, exists := extensions[name]
	extMu.Unlock()
	if !exists {
		return false, fmt.Errorf("error loading '%v'", name)
	}

	obs, err := fn(k, arg)
	if err != nil {
		return false, fmt.Errorf("extension %v: %w", name, err)
	}
	k.Attach(obs)

	k.mu.Lock()
	k.features[name] = struct{}{}
	k.mu.Unlock()
	return true, nil
}
