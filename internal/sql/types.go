package sql

import "github.com/pkg/errors"

// TypeCode is the relational type of a column or field.
// The numeric values match the JDBC java.sql.Types codes so that metadata
// coming from a relational cursor can be stored without translation.
type TypeCode int

const (
	TypeUnknown TypeCode = -9999

	TypeNull TypeCode = 0

	TypeChar         TypeCode = 1
	TypeVarchar      TypeCode = 12
	TypeLongVarchar  TypeCode = -1
	TypeNChar        TypeCode = -15
	TypeNVarchar     TypeCode = -9
	TypeLongNVarchar TypeCode = -16
	TypeClob         TypeCode = 2005
	TypeNClob        TypeCode = 2011
	TypeDatalink     TypeCode = 70

	TypeTinyInt  TypeCode = -6
	TypeSmallInt TypeCode = 5
	TypeInteger  TypeCode = 4
	TypeBigInt   TypeCode = -5

	TypeDecimal TypeCode = 3
	TypeNumeric TypeCode = 2
	TypeReal    TypeCode = 7
	TypeFloat   TypeCode = 6
	TypeDouble  TypeCode = 8

	TypeDate      TypeCode = 91
	TypeTime      TypeCode = 92
	TypeTimestamp TypeCode = 93

	TypeBinary        TypeCode = -2
	TypeVarBinary     TypeCode = -3
	TypeLongVarBinary TypeCode = -4
	TypeBlob          TypeCode = 2004

	TypeBit     TypeCode = -7
	TypeBoolean TypeCode = 16

	TypeOther      TypeCode = 1111
	TypeJavaObject TypeCode = 2000
	TypeArray      TypeCode = 2003

	// Composite codes for values that nest other rows or row sets.
	TypeValueList    TypeCode = -973
	TypeNestedRow    TypeCode = -974
	TypeNestedRowSet TypeCode = -975
)

var typeNames = map[TypeCode]string{
	TypeNull:          "NULL",
	TypeChar:          "CHAR",
	TypeVarchar:       "VARCHAR",
	TypeLongVarchar:   "LONGVARCHAR",
	TypeNChar:         "NCHAR",
	TypeNVarchar:      "NVARCHAR",
	TypeLongNVarchar:  "LONGNVARCHAR",
	TypeClob:          "CLOB",
	TypeNClob:         "NCLOB",
	TypeDatalink:      "DATALINK",
	TypeTinyInt:       "TINYINT",
	TypeSmallInt:      "SMALLINT",
	TypeInteger:       "INTEGER",
	TypeBigInt:        "BIGINT",
	TypeDecimal:       "DECIMAL",
	TypeNumeric:       "NUMERIC",
	TypeReal:          "REAL",
	TypeFloat:         "FLOAT",
	TypeDouble:        "DOUBLE",
	TypeDate:          "DATE",
	TypeTime:          "TIME",
	TypeTimestamp:     "TIMESTAMP",
	TypeBinary:        "BINARY",
	TypeVarBinary:     "VARBINARY",
	TypeLongVarBinary: "LONGVARBINARY",
	TypeBlob:          "BLOB",
	TypeBit:           "BIT",
	TypeBoolean:       "BOOLEAN",
	TypeOther:         "OTHER",
	TypeJavaObject:    "JAVA_OBJECT",
	TypeArray:         "ARRAY",
	TypeValueList:     "ArrayList",
	TypeNestedRow:     "DataRow",
	TypeNestedRowSet:  "ResultSet",
}

// LookupType converts a raw numeric code into a TypeCode.
// It fails with ErrUnknownColumnType for codes outside the enumeration.
func LookupType(code int) (TypeCode, error) {
	t := TypeCode(code)
	if _, ok := typeNames[t]; !ok {
		return TypeUnknown, errors.Wrapf(ErrUnknownColumnType, "type code %d", code)
	}
	return t, nil
}

// Name returns the relational type name, e.g. "VARCHAR".
func (t TypeCode) Name() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "UNKNOWN"
}

func (t TypeCode) String() string { return t.Name() }

// IsText reports whether values of this type are character data.
func (t TypeCode) IsText() bool {
	switch t {
	case TypeChar, TypeVarchar, TypeLongVarchar, TypeNChar, TypeNVarchar,
		TypeLongNVarchar, TypeClob, TypeNClob, TypeDatalink:
		return true
	}
	return false
}

// IsInteger reports whether the type is one of the fixed-width integer types.
func (t TypeCode) IsInteger() bool {
	switch t {
	case TypeTinyInt, TypeSmallInt, TypeInteger, TypeBigInt:
		return true
	}
	return false
}

// IsNumeric reports whether values of this type compare numerically.
func (t TypeCode) IsNumeric() bool {
	if t.IsInteger() {
		return true
	}
	switch t {
	case TypeDecimal, TypeNumeric, TypeReal, TypeFloat, TypeDouble:
		return true
	}
	return false
}

// IsBinary reports whether the type holds raw bytes.
func (t TypeCode) IsBinary() bool {
	switch t {
	case TypeBinary, TypeVarBinary, TypeLongVarBinary, TypeBlob:
		return true
	}
	return false
}

// DefaultType picks the type code used for a value whose column type was
// never declared.
func DefaultType(k Kind) TypeCode {
	switch k {
	case KindString:
		return TypeVarchar
	case KindInt:
		return TypeInteger
	case KindFloat:
		return TypeDouble
	case KindDecimal:
		return TypeNumeric
	case KindBool:
		return TypeBoolean
	case KindTime:
		return TypeTimestamp
	case KindBytes:
		return TypeVarBinary
	case KindRow:
		return TypeNestedRow
	case KindTable:
		return TypeNestedRowSet
	case KindList:
		return TypeValueList
	default:
		return TypeNull
	}
}

// Accepts reports whether a value of kind k can be stored under type t
// without changing the declared type.
func (t TypeCode) Accepts(k Kind) bool {
	if k == KindNull {
		return true
	}
	switch {
	case t.IsText():
		return k == KindString
	case t.IsInteger():
		return k == KindInt
	case t == TypeDecimal || t == TypeNumeric:
		return k == KindDecimal || k == KindInt || k == KindFloat
	case t == TypeReal || t == TypeFloat || t == TypeDouble:
		return k == KindFloat || k == KindInt
	case t == TypeDate || t == TypeTime || t == TypeTimestamp:
		return k == KindTime
	case t.IsBinary():
		return k == KindBytes
	case t == TypeBit || t == TypeBoolean:
		return k == KindBool
	case t == TypeNestedRow:
		return k == KindRow
	case t == TypeNestedRowSet:
		return k == KindTable
	case t == TypeValueList || t == TypeArray:
		return k == KindList
	case t == TypeOther || t == TypeJavaObject:
		return true
	}
	return false
}
