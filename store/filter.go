package store

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Op identifies a single comparison applied to one record field.
type Op int

// Supported filter operators. OpEq is the implicit operator for literal
// filter values, OpIn for array values; the rest map to the $-prefixed
// keys of an operator object.
const (
	OpEq Op = iota
	OpIn
	OpGte
	OpLte
	OpNe
	OpContains
	OpLike
)

// Cond is one operator applied to one field. Values is only populated for
// OpIn, pattern only for OpLike.
type Cond struct {
	Op     Op
	Value  any
	Values []any

	pattern glob.Glob
}

// Filter maps field names to the conditions a record must satisfy on that
// field. All fields combine with AND semantics; an empty Filter matches
// every record. A field absent from a record matches nothing, whatever the
// operator, so filters stay total over heterogeneous records.
type Filter map[string][]Cond

// ParseFilter converts a decoded JSON filter object into a Filter. Literal
// values become equality conditions, arrays become membership tests, and
// operator objects may combine several operators on one field, e.g.
// {"budget": {"$gte": 100, "$lte": 500}}.
func ParseFilter(raw map[string]any) (Filter, error) {
	f := make(Filter, len(raw))
	for field, value := range raw {
		conds, err := parseConds(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		f[field] = conds
	}
	return f, nil
}

func parseConds(value any) ([]Cond, error) {
	switch v := value.(type) {
	case []any:
		return []Cond{{Op: OpIn, Values: v}}, nil
	case map[string]any:
		if !hasOperatorKeys(v) {
			// A plain object is an equality test against the whole value.
			return []Cond{{Op: OpEq, Value: v}}, nil
		}
		conds := make([]Cond, 0, len(v))
		for op, operand := range v {
			cond, err := parseOperator(op, operand)
			if err != nil {
				return nil, err
			}
			conds = append(conds, cond)
		}
		return conds, nil
	default:
		return []Cond{{Op: OpEq, Value: value}}, nil
	}
}

func hasOperatorKeys(m map[string]any) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func parseOperator(op string, operand any) (Cond, error) {
	switch op {
	case "$gte":
		return Cond{Op: OpGte, Value: operand}, nil
	case "$lte":
		return Cond{Op: OpLte, Value: operand}, nil
	case "$ne":
		return Cond{Op: OpNe, Value: operand}, nil
	case "$contains":
		s, ok := operand.(string)
		if !ok {
			return Cond{}, fmt.Errorf("$contains operand must be a string, got %T", operand)
		}
		return Cond{Op: OpContains, Value: s}, nil
	case "$like":
		s, ok := operand.(string)
		if !ok {
			return Cond{}, fmt.Errorf("$like operand must be a string, got %T", operand)
		}
		g, err := glob.Compile(strings.ToLower(s))
		if err != nil {
			return Cond{}, fmt.Errorf("invalid $like pattern %q: %w", s, err)
		}
		return Cond{Op: OpLike, Value: s, pattern: g}, nil
	default:
		return Cond{}, fmt.Errorf("unknown filter operator %q", op)
	}
}

// Match reports whether rec satisfies every condition in the filter.
func (f Filter) Match(rec Record) bool {
	for field, conds := range f {
		value, ok := rec[field]
		if !ok {
			return false
		}
		for _, cond := range conds {
			if !cond.match(value) {
				return false
			}
		}
	}
	return true
}

func (c Cond) match(value any) bool {
	switch c.Op {
	case OpEq:
		return equalValues(value, c.Value)
	case OpNe:
		return !equalValues(value, c.Value)
	case OpIn:
		for _, candidate := range c.Values {
			if equalValues(value, candidate) {
				return true
			}
		}
		return false
	case OpGte:
		cmp, ok := compareValues(value, c.Value)
		return ok && cmp >= 0
	case OpLte:
		cmp, ok := compareValues(value, c.Value)
		return ok && cmp <= 0
	case OpContains:
		s, ok := value.(string)
		if !ok {
			return false
		}
		needle, _ := c.Value.(string)
		return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	case OpLike:
		s, ok := value.(string)
		if !ok || c.pattern == nil {
			return false
		}
		return c.pattern.Match(strings.ToLower(s))
	default:
		return false
	}
}

// equalValues compares two values with numeric coercion, so a filter literal
// decoded as float64 still matches a record field stored as int.
func equalValues(a, b any) bool {
	if cmp, ok := compareValues(a, b); ok {
		return cmp == 0
	}
	return a == b
}

// compareValues orders two values when they are mutually comparable: both
// numeric, both strings, or both booleans (false < true). The second return
// reports comparability.
func compareValues(a, b any) (int, bool) {
	if na, aok := toFloat(a); aok {
		nb, bok := toFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		default:
			return 0, true
		}
	}

	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(va, vb), true
	case bool:
		vb, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case va == vb:
			return 0, true
		case !va:
			return -1, true
		default:
			return 1, true
		}
	}

	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
