package sql

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags which member of a Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindDecimal
	KindBool
	KindTime
	KindBytes
	KindRow
	KindTable
	KindList
)

var kindNames = [...]string{"null", "string", "int", "float", "decimal", "bool", "time", "bytes", "row", "table", "list"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Table is the read-only view of a row set nested inside a value.
type Table interface {
	Len() int
	At(i int) *Row
}

// Value represents a single cell (one field in one row).
// Only the member matching Kind should be read; the others stay at their
// zero values.
type Value struct {
	Kind Kind

	S   string          // KindString
	I64 int64           // KindInt
	F64 float64         // KindFloat
	Dec decimal.Decimal // KindDecimal
	B   bool            // KindBool
	T   time.Time       // KindTime
	Raw []byte          // KindBytes

	Row   *Row    // KindRow
	Table Table   // KindTable
	List  []Value // KindList
}

func Null() Value { return Value{} }
func Str(s string) Value { return Value{Kind: KindString, S: s} }
func Int(i int64) Value { return Value{Kind: KindInt, I64: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, F64: f} }
func Dec(d decimal.Decimal) Value { return Value{Kind: KindDecimal, Dec: d} }
func Bool(b bool) Value { return Value{Kind: KindBool, B: b} }
func Time(t time.Time) Value { return Value{Kind: KindTime, T: t} }
func Bytes(b []byte) Value { return Value{Kind: KindBytes, Raw: b} }
func NestedRow(r *Row) Value { return Value{Kind: KindRow, Row: r} }
func NestedTable(t Table) Value { return Value{Kind: KindTable, Table: t} }
func List(values ...Value) Value { return Value{Kind: KindList, List: values} }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsNumber reports whether the value compares numerically.
func (v Value) IsNumber() bool {
	return v.Kind == KindInt || v.Kind == KindFloat || v.Kind == KindDecimal
}

const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	TimestampLayout = "2006-01-02 15:04:05.000"
)

// String returns the canonical text form of the value. Null is "".
func (v Value) String() string {
	return v.Format(TypeUnknown)
}

// Format renders the value for a column of type t. Only time values depend
// on the type; everything else renders the same as String.
func (v Value) Format(t TypeCode) string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindString:
		return v.S
	case KindInt:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F64, 'f', -1, 64)
	case KindDecimal:
		return v.Dec.String()
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	case KindTime:
		switch t {
		case TypeDate:
			return v.T.Format(DateLayout)
		case TypeTime:
			return v.T.Format(TimeLayout)
		case TypeTimestamp:
			return v.T.Format(TimestampLayout)
		}
		return v.T.Format("2006-01-02 15:04:05.999999999")
	case KindBytes:
		return string(v.Raw)
	case KindRow:
		if v.Row == nil {
			return ""
		}
		return v.Row.String()
	case KindTable:
		if v.Table == nil {
			return "[]"
		}
		var sb strings.Builder
		sb.WriteByte('[')
		for i := 0; i < v.Table.Len(); i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(v.Table.At(i).String())
		}
		sb.WriteByte(']')
		return sb.String()
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}

// Equal compares two values for equality, considering their kind.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindString:
		return v.S == o.S
	case KindInt:
		return v.I64 == o.I64
	case KindFloat:
		return v.F64 == o.F64
	case KindDecimal:
		return v.Dec.Equal(o.Dec)
	case KindBool:
		return v.B == o.B
	case KindTime:
		return v.T.Equal(o.T)
	case KindBytes:
		return bytes.Equal(v.Raw, o.Raw)
	case KindRow:
		if v.Row == nil || o.Row == nil {
			return v.Row == o.Row
		}
		return v.Row.Equal(o.Row)
	case KindTable:
		return tablesEqual(v.Table, o.Table)
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func tablesEqual(a, b Table) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !a.At(i).Equal(b.At(i)) {
			return false
		}
	}
	return true
}

// Compare orders two values: nulls first, numbers numerically, values of the
// same kind naturally, and anything else by canonical string.
func Compare(a, b Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}

	if a.IsNumber() && b.IsNumber() {
		return compareNumbers(a, b)
	}
	if a.Kind == b.Kind {
		switch a.Kind {
		case KindString:
			return strings.Compare(a.S, b.S)
		case KindBool:
			switch {
			case a.B == b.B:
				return 0
			case !a.B:
				return -1
			default:
				return 1
			}
		case KindTime:
			return a.T.Compare(b.T)
		case KindBytes:
			return bytes.Compare(a.Raw, b.Raw)
		}
	}
	return strings.Compare(a.String(), b.String())
}

func compareNumbers(a, b Value) int {
	if a.Kind == KindInt && b.Kind == KindInt {
		switch {
		case a.I64 < b.I64:
			return -1
		case a.I64 > b.I64:
			return 1
		}
		return 0
	}
	if a.Kind == KindDecimal || b.Kind == KindDecimal {
		return a.decimal().Cmp(b.decimal())
	}
	fa, fb := a.float(), b.float()
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}

func (v Value) decimal() decimal.Decimal {
	switch v.Kind {
	case KindDecimal:
		return v.Dec
	case KindInt:
		return decimal.NewFromInt(v.I64)
	case KindFloat:
		return decimal.NewFromFloat(v.F64)
	}
	return decimal.Zero
}

func (v Value) float() float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.I64)
	case KindFloat:
		return v.F64
	case KindDecimal:
		return v.Dec.InexactFloat64()
	}
	return 0
}

// Native returns the Go value carried by v, or nil for null and composite
// values.
func (v Value) Native() any {
	switch v.Kind {
	case KindString:
		return v.S
	case KindInt:
		return v.I64
	case KindFloat:
		return v.F64
	case KindDecimal:
		return v.Dec
	case KindBool:
		return v.B
	case KindTime:
		return v.T
	case KindBytes:
		return v.Raw
	}
	return nil
}

// clone copies the mutable parts of a value (byte slices, nested rows, lists).
// Nested tables are shared.
func (v Value) clone() Value {
	switch v.Kind {
	case KindBytes:
		if v.Raw != nil {
			v.Raw = append([]byte(nil), v.Raw...)
		}
	case KindRow:
		if v.Row != nil {
			v.Row = v.Row.Clone()
		}
	case KindList:
		if v.List != nil {
			list := make([]Value, len(v.List))
			for i, e := range v.List {
				list[i] = e.clone()
			}
			v.List = list
		}
	}
	return v
}
