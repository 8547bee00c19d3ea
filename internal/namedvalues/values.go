// Package namedvalues provides the ordered name→value store filled in by the
// token parsers. One store is created per top-level invocation and threaded
// through every nested @file and foreach parse.
package namedvalues

import (
	"fmt"

	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
)

// Values is an ordered string→string map.
//
// The most recent recoverable parse error lives out-of-band in its own slot,
// never as an ordinary entry. Keys marked with Freeze reject a different
// value instead of being overwritten.
type Values struct {
	names  []string
	values map[string]string
	frozen map[string]bool
	err    error
}

// New returns an empty store.
func New() *Values {
	return &Values{
		values: make(map[string]string),
		frozen: make(map[string]bool),
	}
}

// Add inserts name=value. Re-adding an identical value is a no-op; a
// different value overwrites in place, keeping the original position.
// A frozen key returns a domain.ErrKeyConflict error instead.
func (v *Values) Add(name, value string) error {
	current, exists := v.values[name]
	switch {
	case !exists:
		v.names = append(v.names, name)
		v.values[name] = value
	case current == value:
	case v.frozen[name]:
		return domain.NewParseError(domain.ErrKeyConflict,
			fmt.Sprintf("Cannot set %q to %q; already set to %q", name, value, current), "")
	default:
		v.values[name] = value
	}
	return nil
}

// Clone returns an independent copy of the entries and frozen keys. The
// error slot is not copied.
func (v *Values) Clone() *Values {
	c := &Values{
		names:  v.Names(),
		values: make(map[string]string, len(v.values)),
		frozen: make(map[string]bool, len(v.frozen)),
	}
	for name, value := range v.values {
		c.values[name] = value
	}
	for name := range v.frozen {
		c.frozen[name] = true
	}
	return c
}

// Set unconditionally replaces name, moving it to the end of the order.
func (v *Values) Set(name, value string) {
	v.Reset(name)
	v.names = append(v.names, name)
	v.values[name] = value
}

// Reset removes name. Frozen keys are unfrozen.
func (v *Values) Reset(name string) {
	if _, ok := v.values[name]; !ok {
		return
	}
	delete(v.values, name)
	delete(v.frozen, name)
	for i, n := range v.names {
		if n == name {
			v.names = append(v.names[:i], v.names[i+1:]...)
			break
		}
	}
}

// Freeze marks an existing key as non-overridable.
func (v *Values) Freeze(name string) {
	if _, ok := v.values[name]; ok {
		v.frozen[name] = true
	}
}

// Contains reports whether name has been set.
func (v *Values) Contains(name string) bool {
	_, ok := v.values[name]
	return ok
}

// Get returns the value for name, or "" when unset.
func (v *Values) Get(name string) string {
	return v.values[name]
}

// Lookup returns the value for name and whether it was set.
func (v *Values) Lookup(name string) (string, bool) {
	value, ok := v.values[name]
	return value, ok
}

// Names returns the keys in insertion order.
func (v *Values) Names() []string {
	names := make([]string, len(v.names))
	copy(names, v.names)
	return names
}

// Len returns the number of entries.
func (v *Values) Len() int {
	return len(v.names)
}

// ─── Error Slot ─────────────────────────────────────────────────────────────

// SetError records the most recent parse error.
func (v *Values) SetError(err error) {
	v.err = err
}

// ClearError empties the error slot.
func (v *Values) ClearError() {
	v.err = nil
}

// Err returns the recorded error, if any.
func (v *Values) Err() error {
	return v.err
}

// HasError reports whether the error slot is occupied.
func (v *Values) HasError() bool {
	return v.err != nil
}
