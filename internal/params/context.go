package params

import (
	"sort"

	"github.com/ariel-frischer/poretally/internal/rule"
)

// Well-known parameter names provided by the assemble run.
const (
	WorkDir       = "WD"
	NbThreads     = "NB_THREADS"
	RefGenomeSize = "REFGENOME_SIZE"
	SequencedSize = "SEQUENCED_SIZE"
	Coverage      = "COVERAGE"
	Fast5Dir      = "FAST5_DIR"
)

// Context is an immutable mapping from parameter name to scalar value.
// A nil *Context behaves as an empty context.
type Context struct {
	values map[string]Value
}

// New builds a Context from values. Every name must be an identifier and
// every value must be set and finite.
func New(values map[string]Value) (*Context, error) {
	copied := make(map[string]Value, len(values))
	for name, v := range values {
		if !rule.IsIdentifier(name) {
			return nil, &InvalidParameterError{Name: name, Reason: "name must match [A-Za-z_][A-Za-z0-9_]*"}
		}
		if ok, reason := v.valid(); !ok {
			return nil, &InvalidParameterError{Name: name, Reason: reason}
		}
		copied[name] = v
	}
	return &Context{values: copied}, nil
}

// With returns a copy of c with name set to v.
func (c *Context) With(name string, v Value) (*Context, error) {
	values := make(map[string]Value, c.Len()+1)
	if c != nil {
		for k, existing := range c.values {
			values[k] = existing
		}
	}
	values[name] = v
	return New(values)
}

// Lookup returns the value bound to name.
func (c *Context) Lookup(name string) (Value, bool) {
	if c == nil {
		return Value{}, false
	}
	v, ok := c.values[name]
	return v, ok
}

// Keys returns the parameter names in sorted order.
func (c *Context) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of parameters.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// Strings returns every parameter rendered as a string, for manifests and
// debug output.
func (c *Context) Strings() map[string]string {
	out := make(map[string]string, c.Len())
	for _, k := range c.Keys() {
		out[k] = c.values[k].String()
	}
	return out
}
