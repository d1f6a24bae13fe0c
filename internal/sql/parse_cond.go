package sql

import (
	"strings"

	"github.com/pkg/errors"
)

// Comparison operators accepted by conditions, longest first so that "<="
// wins over "<" while scanning a prefix.
var condOperators = []string{"<>", "!=", "<=", ">=", "=", "<", ">"}

// Condition is a single "[op] value" comparison against one field.
type Condition struct {
	Op    string
	Value Value
	Type  TypeCode
}

// ParseCondition parses "[op] value" where op is one of = <> != < <= > >=
// (default =). The value is parsed according to t.
func ParseCondition(expr string, t TypeCode) (Condition, error) {
	s := strings.TrimSpace(expr)
	op := "="
	for _, candidate := range condOperators {
		if strings.HasPrefix(s, candidate) {
			op = candidate
			s = strings.TrimSpace(s[len(candidate):])
			break
		}
	}
	if s == "" {
		return Condition{}, errors.Wrapf(ErrMalformedCondition, "COND: missing value in %q", expr)
	}
	if op == "!=" {
		op = "<>"
	}

	v, err := ParseValue(s, t)
	if err != nil {
		return Condition{}, errors.Wrapf(ErrMalformedCondition, "COND: %q: %v", expr, err)
	}
	return Condition{Op: op, Value: v, Type: t}, nil
}

// Match applies the condition to v. Numeric types compare numerically,
// everything else compares the canonical string forms. A null operand only
// satisfies = against null and <> against non-null.
func (c Condition) Match(v Value) bool {
	if v.IsNull() || c.Value.IsNull() {
		both := v.IsNull() && c.Value.IsNull()
		switch c.Op {
		case "=":
			return both
		case "<>":
			return !both
		}
		return false
	}

	var cmp int
	if c.Type.IsNumeric() || (c.Type == TypeUnknown && v.IsNumber() && c.Value.IsNumber()) {
		n, ok := asNumber(v)
		if !ok {
			return false
		}
		cmp = compareNumbers(n, c.Value)
	} else {
		cmp = strings.Compare(v.Format(c.Type), c.Value.Format(c.Type))
	}
	return applyOp(c.Op, cmp)
}

func applyOp(op string, cmp int) bool {
	switch op {
	case "=":
		return cmp == 0
	case "<>", "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

// asNumber returns v as a numeric value, parsing strings when needed.
func asNumber(v Value) (Value, bool) {
	if v.IsNumber() {
		return v, true
	}
	if v.Kind == KindString {
		n, err := parseLiteral(strings.TrimSpace(v.S))
		if err == nil && n.IsNumber() {
			return n, true
		}
	}
	return Value{}, false
}
