package sql

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// splitCommaSeparated splits a string by commas and drops empty parts:
// "name ASC, age DESC" -> ["name ASC", "age DESC"].
func splitCommaSeparated(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// unquote strips matching single or double quotes and collapses doubled
// quote characters inside ('it''s' -> it's). Unquoted input is returned as is.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return s, false
	}
	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return s, false
	}
	inner := s[1 : len(s)-1]
	return strings.ReplaceAll(inner, string([]byte{q, q}), string(q)), true
}

// parseLiteral parses a single untyped literal token into a Value.
// Supports:
//   - integers:  1, -42
//   - floats:    3.14, 1e3
//   - strings:   'Alice', "Bob"
//   - booleans:  true / false (case-insensitive)
//   - NULL
func parseLiteral(tok string) (Value, error) {
	s := strings.TrimSpace(tok)
	if s == "" {
		return Value{}, errors.New("empty literal")
	}

	switch strings.ToUpper(s) {
	case "TRUE":
		return Bool(true), nil
	case "FALSE":
		return Bool(false), nil
	case "NULL":
		return Null(), nil
	}

	if inner, ok := unquote(s); ok {
		return Str(inner), nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f), nil
	}

	return Value{}, errors.Errorf("cannot parse literal %q", tok)
}

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	DateLayout,
}

// ParseValue parses text as a value of column type t. Quoted text is
// unquoted first; the keyword NULL yields a null value for every type.
func ParseValue(text string, t TypeCode) (Value, error) {
	s := strings.TrimSpace(text)
	if strings.EqualFold(s, "NULL") {
		return Null(), nil
	}
	if inner, ok := unquote(s); ok {
		if t.IsText() || t == TypeUnknown {
			return Str(inner), nil
		}
		s = inner
	}

	switch {
	case t.IsText():
		return Str(s), nil
	case t.IsInteger():
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, errors.Wrapf(ErrNotConvertible, "%q is not an %s", s, t.Name())
		}
		return Int(i), nil
	case t == TypeDecimal || t == TypeNumeric:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Value{}, errors.Wrapf(ErrNotConvertible, "%q is not a %s", s, t.Name())
		}
		return Dec(d), nil
	case t == TypeReal || t == TypeFloat || t == TypeDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, errors.Wrapf(ErrNotConvertible, "%q is not a %s", s, t.Name())
		}
		return Float(f), nil
	case t == TypeBit || t == TypeBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, errors.Wrapf(ErrNotConvertible, "%q is not a %s", s, t.Name())
		}
		return Bool(b), nil
	case t == TypeDate:
		return parseTime(s, t, DateLayout)
	case t == TypeTime:
		return parseTime(s, t, TimeLayout)
	case t == TypeTimestamp:
		return parseTime(s, t, timestampLayouts...)
	case t.IsBinary():
		return Bytes([]byte(s)), nil
	}

	if v, err := parseLiteral(s); err == nil {
		return v, nil
	}
	return Str(s), nil
}

func parseTime(s string, t TypeCode, layouts ...string) (Value, error) {
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return Time(ts), nil
		}
	}
	return Value{}, errors.Wrapf(ErrNotConvertible, "%q is not a %s", s, t.Name())
}
