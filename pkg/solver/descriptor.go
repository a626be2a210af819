// Package solver implements the cached solver catalog and its client-side
// filter/sort query surface (spec.md §4.7).
package solver

import (
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apitypes"
)

// Descriptor is the cached, immutable view of one solver. It wraps the
// wire-level apitypes.SolverDescriptor with the dotted-path resolution the
// filter/sort query language needs.
type Descriptor struct {
	raw apitypes.SolverDescriptor
}

// NewDescriptor wraps a wire-level solver descriptor.
func NewDescriptor(raw apitypes.SolverDescriptor) *Descriptor {
	return &Descriptor{raw: raw}
}

// ID returns the solver's identifier.
func (d *Descriptor) ID() string {
	return d.raw.ID
}

// Parameters returns the solver's accepted parameter map.
func (d *Descriptor) Parameters() map[string]interface{} {
	return d.raw.Parameters
}

// Properties returns the solver's nested property map.
func (d *Descriptor) Properties() map[string]interface{} {
	return d.raw.Properties
}

// Online reports the solver's online derived attribute, defaulting to
// false when the server omits it.
func (d *Descriptor) Online() bool {
	v, ok := lookupNested(d.raw.Properties, []string{"online"})
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// AvgLoad reports the solver's avg_load derived attribute, defaulting to
// 0 when absent.
func (d *Descriptor) AvgLoad() float64 {
	v, ok := lookupNested(d.raw.Properties, []string{"avg_load"})
	if !ok {
		return 0
	}
	f, _ := toFloat64(v)
	return f
}

// NumActiveQubits reports the solver's num_active_qubits derived
// attribute, defaulting to 0 when absent.
func (d *Descriptor) NumActiveQubits() int {
	v, ok := lookupNested(d.raw.Properties, []string{"num_active_qubits"})
	if !ok {
		return 0
	}
	f, _ := toFloat64(v)
	return int(f)
}

// namespace identifies which section of a descriptor a resolved dotted
// path fell into, used to pick the right default filter operator.
type namespace int

const (
	namespaceOther namespace = iota
	namespaceParameters
	namespaceProperties
)

// resolve looks up a dotted path against the descriptor. The first
// segment selects a namespace: "id", "parameters", or "properties"; any
// other first segment is resolved directly against properties as a
// shorthand for the common case of filtering derived/top-level attributes
// (online, avg_load, num_active_qubits, ...) without the "properties."
// prefix. Missing values report found=false.
func (d *Descriptor) resolve(path []string) (value interface{}, ns namespace, found bool) {
	if len(path) == 0 {
		return nil, namespaceOther, false
	}

	switch path[0] {
	case "id":
		if len(path) == 1 {
			return d.raw.ID, namespaceOther, true
		}
		return nil, namespaceOther, false
	case "parameters":
		v, ok := lookupAvailable(d.raw.Parameters, path[1:])
		return v, namespaceParameters, ok
	case "properties":
		v, ok := lookupNested(d.raw.Properties, path[1:])
		return v, namespaceProperties, ok
	default:
		if v, ok := lookupNested(d.raw.Properties, path); ok {
			return v, namespaceProperties, true
		}
		return nil, namespaceOther, false
	}
}

// lookupNested walks a map[string]interface{} tree by dotted path
// segments.
func lookupNested(m map[string]interface{}, path []string) (interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var cur interface{} = m
	for _, seg := range path {
		asMap, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, ok := asMap[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// lookupAvailable resolves a parameter name. Parameters are leaf values
// (the solver either accepts the named parameter or does not), so only a
// single remaining path segment is meaningful.
func lookupAvailable(m map[string]interface{}, path []string) (interface{}, bool) {
	if len(path) != 1 {
		return nil, false
	}
	v, ok := m[path[0]]
	return v, ok
}
