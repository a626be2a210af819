package solver

import (
	"sort"
	"strings"
)

// KeyFunc extracts a sort key from a descriptor. Returning (nil, false)
// means "no key" — such entries are always pushed to the end regardless of
// sort direction.
type KeyFunc func(d *Descriptor) (interface{}, bool)

// OrderBy is one of: nil (no sort), a string path (optionally prefixed
// with "-" for descending), or a KeyFunc.
type OrderBy interface{}

// Sort stable-sorts descriptors by orderBy. Ties preserve input order;
// keys resolving to None always sort to the end irrespective of
// direction, per spec.md §4.7/§8 property 7.
func Sort(descs []*Descriptor, orderBy OrderBy) []*Descriptor {
	if orderBy == nil {
		return descs
	}

	keyFn, descending := resolveOrderBy(orderBy)
	if keyFn == nil {
		return descs
	}

	out := make([]*Descriptor, len(descs))
	copy(out, descs)

	sort.SliceStable(out, func(i, j int) bool {
		ki, iok := keyFn(out[i])
		kj, jok := keyFn(out[j])
		if !iok && !jok {
			return false
		}
		if !iok {
			return false // i (None) never sorts before j
		}
		if !jok {
			return true // j (None) always sorts after i
		}
		less := compareLess(ki, kj)
		if descending {
			return compareLess(kj, ki)
		}
		return less
	})
	return out
}

func resolveOrderBy(orderBy OrderBy) (KeyFunc, bool) {
	switch v := orderBy.(type) {
	case KeyFunc:
		return v, false
	case func(d *Descriptor) (interface{}, bool):
		return KeyFunc(v), false
	case string:
		path := v
		descending := false
		if strings.HasPrefix(path, "-") {
			descending = true
			path = path[1:]
		}
		segments := strings.Split(path, ".")
		return func(d *Descriptor) (interface{}, bool) {
			value, _, found := d.resolve(segments)
			return value, found
		}, descending
	default:
		return nil, false
	}
}

func compareLess(a, b interface{}) bool {
	if af, aok := toFloat64(a); aok {
		if bf, bok := toFloat64(b); bok {
			return af < bf
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as < bs
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			return !ab && bb
		}
	}
	return false
}
