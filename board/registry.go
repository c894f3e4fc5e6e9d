// Package board names the clocks of a board. Clocks are built once at
// startup and registered under conventional names so that code needing
// "a millisecond clock" does not care how the board derives it.
package board

import (
	"errors"
	"sort"
	"sync"

	"ztimer/core"
)

// Conventional clock names
const (
	Usec = "usec"
	Msec = "msec"
	Sec  = "sec"
)

// Info describes a registered clock
type Info struct {
	Name      string
	Frequency uint32 // nominal rate in Hz
	Lower     string // clock this one is derived from, empty for hardware
	Clock     *core.Clock
}

// Registry maps clock names to clocks
type Registry struct {
	mu     sync.RWMutex
	clocks map[string]*Info
	order  []string
}

// Default is the process-wide registry filled in by board setup
var Default = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{clocks: make(map[string]*Info)}
}

// Register adds a clock under info.Name. A lower clock, if named, must
// already be registered.
func (r *Registry) Register(info Info) error {
	if info.Name == "" {
		return errors.New("clock name is required")
	}
	if info.Clock == nil {
		return errors.New("clock " + info.Name + " is nil")
	}
	if info.Frequency == 0 {
		return errors.New("clock " + info.Name + " has no frequency")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clocks[info.Name]; exists {
		return errors.New("clock " + info.Name + " already registered")
	}
	if info.Lower != "" {
		if _, exists := r.clocks[info.Lower]; !exists {
			return errors.New("clock " + info.Name + ": lower clock " + info.Lower + " not registered")
		}
	}

	r.clocks[info.Name] = &info
	r.order = append(r.order, info.Name)
	return nil
}

// Clock returns the clock registered under name
func (r *Registry) Clock(name string) (*core.Clock, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.clocks[name]
	if !ok {
		return nil, false
	}
	return info.Clock, true
}

// MustClock is like Clock but panics when name is unknown
func (r *Registry) MustClock(name string) *core.Clock {
	c, ok := r.Clock(name)
	if !ok {
		panic("board: no clock named " + name)
	}
	return c
}

// Info returns the description of the clock registered under name
func (r *Registry) Info(name string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.clocks[name]
	if !ok {
		return Info{}, false
	}
	return *info, true
}

// Names returns the registered names in registration order, so every
// clock comes after the one it is derived from
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Sorted returns the registered names in lexical order
func (r *Registry) Sorted() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}

// Len returns the number of registered clocks
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
