package glir

import (
	"fmt"
	"sort"
	"sync"
)

// DriverFactory creates a driver. The provider carries whatever the driver
// needs to reach its graphics context (for example a device provider);
// drivers that need nothing ignore it.
type DriverFactory func(provider any) (Driver, error)

// Registry state - protected by mutex for thread-safe access.
var (
	driversMu sync.RWMutex
	drivers   = make(map[string]DriverFactory)
)

// Register registers a driver factory with the given name.
// This function is typically called from init() in driver packages,
// following the database/sql driver pattern:
//
//	func init() {
//	    glir.Register("soft", func(any) (glir.Driver, error) {
//	        return New(), nil
//	    })
//	}
//
// Register panics if factory is nil or a driver with the same name is
// already registered.
func Register(name string, factory DriverFactory) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if factory == nil {
		panic("glir: Register factory is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("glir: Register called twice for " + name)
	}
	drivers[name] = factory
}

// Unregister removes a driver from the registry.
// If the driver is not registered, this is a no-op.
func Unregister(name string) {
	driversMu.Lock()
	defer driversMu.Unlock()
	delete(drivers, name)
}

// Open creates a new driver instance by name.
// The error message includes a hint about forgotten imports.
func Open(name string, provider any) (Driver, error) {
	driversMu.RLock()
	factory, ok := drivers[name]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("glir: unknown driver %q (forgotten import?)", name)
	}
	d, err := factory(provider)
	if err != nil {
		return nil, fmt.Errorf("glir: open driver %q: %w", name, err)
	}
	return d, nil
}

// MustOpen is like Open but panics on error.
func MustOpen(name string, provider any) Driver {
	d, err := Open(name, provider)
	if err != nil {
		panic(err)
	}
	return d
}

// Drivers returns a sorted list of registered driver names.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a driver with the given name is registered.
func IsRegistered(name string) bool {
	driversMu.RLock()
	defer driversMu.RUnlock()
	_, ok := drivers[name]
	return ok
}
