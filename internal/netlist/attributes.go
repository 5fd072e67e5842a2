package netlist

import (
	"fmt"
	"strings"
)

// Well-known attribute names.
const (
	AttrTop      = "top"
	AttrBlackbox = "blackbox"
	AttrSrc      = "src"
)

// Attributes is an insertion-ordered string map used for module and cell
// attributes and for cell parameters. Values are kept in their netlist
// encoding: integers as binary strings, everything else as plain text.
type Attributes struct {
	keys []string
	vals map[string]string
}

// NewAttributes returns an empty attribute set.
func NewAttributes() *Attributes {
	return &Attributes{vals: make(map[string]string)}
}

// Set sets key to value, keeping the original position of an existing key.
func (a *Attributes) Set(key, value string) {
	if _, ok := a.vals[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.vals[key] = value
}

// Get returns the value for key.
func (a *Attributes) Get(key string) (string, bool) {
	v, ok := a.vals[key]
	return v, ok
}

// Delete removes key.
func (a *Attributes) Delete(key string) {
	if _, ok := a.vals[key]; !ok {
		return
	}
	delete(a.vals, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (a *Attributes) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of entries.
func (a *Attributes) Len() int { return len(a.keys) }

// Bool reports whether key is present with a value that has at least one
// bit set. A present key with an empty value counts as true.
func (a *Attributes) Bool(key string) bool {
	v, ok := a.vals[key]
	if !ok {
		return false
	}
	if v == "" {
		return true
	}
	if !isBinary(v) {
		return true
	}
	return strings.ContainsRune(v, '1')
}

// ConstInt encodes v as a 32-bit binary constant.
func ConstInt(v int) string {
	return fmt.Sprintf("%032b", uint32(v))
}

func isBinary(v string) bool {
	for _, r := range v {
		switch r {
		case '0', '1', 'x', 'z':
		default:
			return false
		}
	}
	return true
}
