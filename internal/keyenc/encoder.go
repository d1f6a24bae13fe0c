// Package keyenc turns typed column values into canonical key bytes.
//
// The encoding is fixed per type: identical (type, value) pairs always
// produce identical bytes, and a row key is the concatenation of its key
// columns' encodings in declared order. Segments of variable length that
// are followed by another segment carry a uvarint length prefix, so every
// segment of a composite key has a known extent. Encoding never fails;
// nulls encode as the type's default.
package keyenc

import (
	"encoding/binary"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"goRowSet/internal/sql"
)

const (
	// DecimalScale is the number of fractional digits decimals are normalised to.
	DecimalScale = 15

	decimalWidth = 24

	julianEpoch = 2440588 // Julian day number of 1970-01-01

	signNegative byte = 0
	signZero     byte = 1
	signPositive byte = 2
	decimalText  byte = 0xff

	canonicalNaN64 uint64 = 0x7ff8000000000000
	canonicalNaN32 uint32 = 0x7fc00000
)

// Part is one key column: its declared type and current value.
type Part struct {
	Name  string
	Type  sql.TypeCode
	Value sql.Value
}

// Encode returns the key contribution of a single value of type t.
func Encode(t sql.TypeCode, v sql.Value) []byte {
	return Append(nil, t, v)
}

// EncodeParts concatenates the encodings of parts in order.
func EncodeParts(parts []Part) []byte {
	var out []byte
	for i, p := range parts {
		out = appendSegment(out, p.Type, p.Value, i == len(parts)-1)
	}
	return out
}

// RowKey encodes the named fields of r. typeOf supplies the declared column
// type; when it returns sql.TypeUnknown the field's own type is used.
// Missing fields encode as nulls.
func RowKey(r *sql.Row, names []string, typeOf func(name string) sql.TypeCode) []byte {
	var out []byte
	for i, name := range names {
		t := sql.TypeUnknown
		if typeOf != nil {
			t = typeOf(name)
		}
		if t == sql.TypeUnknown {
			t = r.Type(name)
		}
		v, _ := r.Value(name)
		out = appendSegment(out, t, v, i == len(names)-1)
	}
	return out
}

// appendSegment appends one key segment. Variable-length segments other
// than the last are prefixed with their length.
func appendSegment(dst []byte, t sql.TypeCode, v sql.Value, last bool) []byte {
	if last || FixedWidth(t) {
		return Append(dst, t, v)
	}
	seg := Append(nil, t, v)
	dst = binary.AppendUvarint(dst, uint64(len(seg)))
	return append(dst, seg...)
}

// FixedWidth reports whether every value of type t encodes to the same
// number of bytes.
func FixedWidth(t sql.TypeCode) bool {
	switch t {
	case sql.TypeNull, sql.TypeTinyInt, sql.TypeSmallInt, sql.TypeInteger, sql.TypeBigInt,
		sql.TypeReal, sql.TypeFloat, sql.TypeDouble, sql.TypeDate, sql.TypeBit, sql.TypeBoolean:
		return true
	}
	return false
}

// Append appends the encoding of v as type t to dst.
func Append(dst []byte, t sql.TypeCode, v sql.Value) []byte {
	switch {
	case t == sql.TypeNull:
		return dst
	case t.IsText():
		if v.IsNull() {
			return dst
		}
		return append(dst, v.String()...)
	case t == sql.TypeTinyInt:
		return append(dst, byte(int8(toInt(v))))
	case t == sql.TypeSmallInt:
		return binary.BigEndian.AppendUint16(dst, uint16(int16(toInt(v))))
	case t == sql.TypeInteger:
		return binary.BigEndian.AppendUint32(dst, uint32(int32(toInt(v))))
	case t == sql.TypeBigInt:
		return binary.BigEndian.AppendUint64(dst, uint64(toInt(v)))
	case t == sql.TypeReal:
		return binary.BigEndian.AppendUint32(dst, float32Bits(float32(toFloat(v))))
	case t == sql.TypeFloat || t == sql.TypeDouble:
		return binary.BigEndian.AppendUint64(dst, float64Bits(toFloat(v)))
	case t == sql.TypeDecimal || t == sql.TypeNumeric:
		return appendDecimal(dst, toDecimal(v))
	case t == sql.TypeDate:
		return binary.BigEndian.AppendUint32(dst, uint32(julianDay(v)))
	case t == sql.TypeTime:
		if v.Kind != sql.KindTime {
			return append(dst, v.String()...)
		}
		return append(dst, v.T.Format(sql.TimeLayout)...)
	case t == sql.TypeTimestamp:
		if v.Kind != sql.KindTime {
			return append(dst, v.String()...)
		}
		return append(dst, v.T.Format(sql.TimestampLayout)...)
	case t.IsBinary():
		if v.Kind == sql.KindBytes {
			return append(dst, v.Raw...)
		}
		return append(dst, v.String()...)
	case t == sql.TypeBit || t == sql.TypeBoolean:
		if toBool(v) {
			return append(dst, 1)
		}
		return append(dst, 0)
	}
	return append(dst, v.String()...)
}

func toInt(v sql.Value) int64 {
	switch v.Kind {
	case sql.KindInt:
		return v.I64
	case sql.KindDecimal:
		return v.Dec.IntPart()
	case sql.KindNull:
		return 0
	}
	n, err := cast.ToInt64E(v.Native())
	if err != nil {
		return 0
	}
	return n
}

func toFloat(v sql.Value) float64 {
	switch v.Kind {
	case sql.KindFloat:
		return v.F64
	case sql.KindDecimal:
		return v.Dec.InexactFloat64()
	case sql.KindNull:
		return 0
	}
	f, err := cast.ToFloat64E(v.Native())
	if err != nil {
		return 0
	}
	return f
}

func toBool(v sql.Value) bool {
	switch v.Kind {
	case sql.KindBool:
		return v.B
	case sql.KindNull:
		return false
	}
	b, err := cast.ToBoolE(v.Native())
	if err != nil {
		return false
	}
	return b
}

func toDecimal(v sql.Value) decimal.Decimal {
	switch v.Kind {
	case sql.KindDecimal:
		return v.Dec
	case sql.KindInt:
		return decimal.NewFromInt(v.I64)
	case sql.KindFloat:
		if math.IsNaN(v.F64) || math.IsInf(v.F64, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(v.F64)
	case sql.KindString:
		d, err := decimal.NewFromString(strings.TrimSpace(v.S))
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}

// appendDecimal writes a sign byte and the fixed-width coefficient of d at
// DecimalScale. Coefficients wider than decimalWidth bytes fall back to a
// marker byte and the fixed-scale text.
func appendDecimal(dst []byte, d decimal.Decimal) []byte {
	d = d.RoundBank(DecimalScale)
	coeff := d.Shift(DecimalScale).BigInt()

	sign := signPositive
	switch coeff.Sign() {
	case 0:
		sign = signZero
	case -1:
		sign = signNegative
	}

	mag := new(big.Int).Abs(coeff).Bytes()
	if len(mag) > decimalWidth {
		dst = append(dst, decimalText)
		return append(dst, d.StringFixedBank(DecimalScale)...)
	}

	dst = append(dst, sign)
	var buf [decimalWidth]byte
	copy(buf[decimalWidth-len(mag):], mag)
	return append(dst, buf[:]...)
}

func float64Bits(f float64) uint64 {
	switch {
	case math.IsNaN(f):
		return canonicalNaN64
	case f == 0:
		return 0
	}
	return math.Float64bits(f)
}

func float32Bits(f float32) uint32 {
	switch {
	case f != f:
		return canonicalNaN32
	case f == 0:
		return 0
	}
	return math.Float32bits(f)
}

// julianDay returns the Julian day number of the value's calendar date, or
// -1 when there is none.
func julianDay(v sql.Value) int32 {
	var t time.Time
	switch v.Kind {
	case sql.KindTime:
		t = v.T
	case sql.KindString:
		parsed, err := time.Parse(sql.DateLayout, strings.TrimSpace(v.S))
		if err != nil {
			return -1
		}
		t = parsed
	default:
		return -1
	}
	y, m, d := t.Date()
	days := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	return int32(days + julianEpoch)
}

