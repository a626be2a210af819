package solver

import (
	"fmt"
	"regexp"
	"strings"
)

// Op names one of the comparison operators the filter DSL supports.
type Op string

const (
	OpEq        Op = "eq"
	OpAvailable Op = "available"
	OpLt        Op = "lt"
	OpLte       Op = "lte"
	OpGt        Op = "gt"
	OpGte       Op = "gte"
	OpRegex     Op = "regex"
	OpCovers    Op = "covers"
	OpWithin    Op = "within"
	OpIn        Op = "in"
	OpContains  Op = "contains"
	OpIssubset  Op = "issubset"
	OpIssuperset Op = "issuperset"
)

var knownOps = map[Op]bool{
	OpEq: true, OpAvailable: true, OpLt: true, OpLte: true, OpGt: true,
	OpGte: true, OpRegex: true, OpCovers: true, OpWithin: true, OpIn: true,
	OpContains: true, OpIssubset: true, OpIssuperset: true,
}

// Predicate is one filter term: a dotted path, an operator, and the
// argument to compare against.
type Predicate struct {
	Path  string
	Op    Op
	Value interface{}
}

// ParseFilters turns a raw filter map (as accepted by Catalog.GetSolvers)
// into Predicates. A key's trailing "__operator" token selects the
// operator; absent, the operator defaults to "available" for a path
// resolving under parameters and "eq" otherwise.
func ParseFilters(raw map[string]interface{}) []Predicate {
	preds := make([]Predicate, 0, len(raw))
	for key, value := range raw {
		path := key
		op := Op("")
		if idx := strings.LastIndex(key, "__"); idx != -1 {
			candidate := Op(key[idx+2:])
			if knownOps[candidate] {
				path = key[:idx]
				op = candidate
			}
		}
		if op == "" {
			if strings.HasPrefix(path, "parameters.") {
				op = OpAvailable
			} else {
				op = OpEq
			}
		}
		preds = append(preds, Predicate{Path: path, Op: op, Value: value})
	}
	return preds
}

// DefaultFilters is merged under the caller-supplied filters: an explicit
// "online" key from the caller always wins.
func DefaultFilters() map[string]interface{} {
	return map[string]interface{}{"online": true}
}

// MergeFilters overlays override on top of base, with override's keys
// winning on conflict.
func MergeFilters(base, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// Match reports whether d satisfies every predicate (a total predicate:
// all must pass).
func Match(d *Descriptor, preds []Predicate) bool {
	for _, p := range preds {
		if !evaluate(d, p) {
			return false
		}
	}
	return true
}

func evaluate(d *Descriptor, p Predicate) bool {
	segments := strings.Split(p.Path, ".")
	lhs, _, found := d.resolve(segments)

	if !found {
		// Missing LHS is treated as None; predicates on None yield false
		// except for "available" (absent means unavailable -> compare
		// against false) and eq(None).
		switch p.Op {
		case OpAvailable:
			want, _ := p.Value.(bool)
			return want == false
		case OpEq:
			return p.Value == nil
		default:
			return false
		}
	}

	switch p.Op {
	case OpEq:
		return deepEqual(lhs, p.Value)
	case OpAvailable:
		want, _ := p.Value.(bool)
		return want == true
	case OpLt, OpLte, OpGt, OpGte:
		l, lok := toFloat64(lhs)
		r, rok := toFloat64(p.Value)
		if !lok || !rok {
			return false
		}
		switch p.Op {
		case OpLt:
			return l < r
		case OpLte:
			return l <= r
		case OpGt:
			return l > r
		default:
			return l >= r
		}
	case OpRegex:
		s, ok := lhs.(string)
		if !ok {
			return false
		}
		pattern, _ := p.Value.(string)
		return fullMatch(pattern, s)
	case OpCovers:
		lr, lok := toRange(lhs)
		rr, rok := toRange(p.Value)
		if !lok || !rok {
			return false
		}
		return lr.min <= rr.min && rr.max <= lr.max
	case OpWithin:
		lr, lok := toRange(lhs)
		rr, rok := toRange(p.Value)
		if !lok || !rok {
			return false
		}
		return rr.min <= lr.min && lr.max <= rr.max
	case OpIn:
		list, ok := toSlice(p.Value)
		if !ok {
			return false
		}
		return sliceContains(list, lhs)
	case OpContains:
		list, ok := toSlice(lhs)
		if !ok {
			return false
		}
		return sliceContains(list, p.Value)
	case OpIssubset:
		lhsList, lok := toSlice(lhs)
		rhsList, rok := toSlice(p.Value)
		if !lok || !rok {
			return false
		}
		for _, v := range lhsList {
			if !sliceContains(rhsList, v) {
				return false
			}
		}
		return true
	case OpIssuperset:
		lhsList, lok := toSlice(lhs)
		rhsList, rok := toSlice(p.Value)
		if !lok || !rok {
			return false
		}
		for _, v := range rhsList {
			if !sliceContains(lhsList, v) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

type numRange struct {
	min, max float64
}

// toRange interprets v as a range: a two-element numeric slice [min,max],
// or a bare number treated as a degenerate point range.
func toRange(v interface{}) (numRange, bool) {
	if f, ok := toFloat64(v); ok {
		return numRange{min: f, max: f}, true
	}
	list, ok := toSlice(v)
	if !ok || len(list) != 2 {
		return numRange{}, false
	}
	lo, lok := toFloat64(list[0])
	hi, hok := toFloat64(list[1])
	if !lok || !hok {
		return numRange{}, false
	}
	return numRange{min: lo, max: hi}, true
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toSlice(v interface{}) ([]interface{}, bool) {
	switch s := v.(type) {
	case []interface{}:
		return s, true
	case []string:
		out := make([]interface{}, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out, true
	default:
		return nil, false
	}
}

func sliceContains(list []interface{}, target interface{}) bool {
	for _, v := range list {
		if deepEqual(v, target) {
			return true
		}
	}
	return false
}

func deepEqual(a, b interface{}) bool {
	if af, aok := toFloat64(a); aok {
		if bf, bok := toFloat64(b); bok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b) && sameType(a, b)
}

func sameType(a, b interface{}) bool {
	_, aIsNum := toFloat64(a)
	_, bIsNum := toFloat64(b)
	if aIsNum != bIsNum {
		return false
	}
	return true
}

// fullMatch reports whether pattern matches the entirety of s, not just a
// substring.
func fullMatch(pattern, s string) bool {
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
