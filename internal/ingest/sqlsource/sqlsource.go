// Package sqlsource adapts database/sql result cursors to ingest.Source.
package sqlsource

import (
	"context"
	dbsql "database/sql"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"goRowSet/internal/sql"
)

var typesByName = map[string]sql.TypeCode{
	"CHAR":              sql.TypeChar,
	"CHARACTER":         sql.TypeChar,
	"NCHAR":             sql.TypeNChar,
	"VARCHAR":           sql.TypeVarchar,
	"VARYING CHARACTER": sql.TypeVarchar,
	"NVARCHAR":          sql.TypeNVarchar,
	"TEXT":              sql.TypeVarchar,
	"JSON":              sql.TypeVarchar,
	"CLOB":              sql.TypeClob,
	"NCLOB":             sql.TypeNClob,
	"TINYINT":           sql.TypeTinyInt,
	"SMALLINT":          sql.TypeSmallInt,
	"INT2":              sql.TypeSmallInt,
	"INT":               sql.TypeInteger,
	"INTEGER":           sql.TypeInteger,
	"MEDIUMINT":         sql.TypeInteger,
	"BIGINT":            sql.TypeBigInt,
	"INT8":              sql.TypeBigInt,
	"DECIMAL":           sql.TypeDecimal,
	"NUMERIC":           sql.TypeNumeric,
	"REAL":              sql.TypeReal,
	"FLOAT":             sql.TypeFloat,
	"DOUBLE":            sql.TypeDouble,
	"DOUBLE PRECISION":  sql.TypeDouble,
	"DATE":              sql.TypeDate,
	"TIME":              sql.TypeTime,
	"DATETIME":          sql.TypeTimestamp,
	"TIMESTAMP":         sql.TypeTimestamp,
	"BINARY":            sql.TypeBinary,
	"VARBINARY":         sql.TypeVarBinary,
	"BLOB":              sql.TypeBlob,
	"BIT":               sql.TypeBit,
	"BOOL":              sql.TypeBoolean,
	"BOOLEAN":           sql.TypeBoolean,
}

// TypeFromName maps a database type name such as "VARCHAR(20)" to a type
// code. Unknown or empty names map to TypeOther.
func TypeFromName(name string) sql.TypeCode {
	name = strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	name = strings.TrimPrefix(name, "UNSIGNED ")
	if t, ok := typesByName[name]; ok {
		return t
	}
	return sql.TypeOther
}

// Source reads a *sql.Rows cursor.
type Source struct {
	rows *dbsql.Rows
	cols []sql.Column
	dest []any
	ptrs []any
}

// New wraps rows. The Source takes ownership and closes them on Close.
func New(rows *dbsql.Rows) *Source {
	return &Source{rows: rows}
}

// Query runs query on db and wraps the result.
func Query(ctx context.Context, db *dbsql.DB, query string, args ...any) (*Source, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	return New(rows), nil
}

// Columns describes the result columns from the driver's metadata.
func (s *Source) Columns(ctx context.Context) ([]sql.Column, error) {
	if s.cols != nil {
		return s.cols, nil
	}
	types, err := s.rows.ColumnTypes()
	if err != nil {
		return nil, errors.Wrap(err, "column types")
	}

	cols := make([]sql.Column, len(types))
	for i, ct := range types {
		typeName := strings.ToUpper(ct.DatabaseTypeName())
		c := sql.NewColumn(ct.Name(), TypeFromName(typeName))
		if typeName != "" {
			c.TypeName = typeName
		}
		c.Label = ct.Name()
		if nullable, ok := ct.Nullable(); ok {
			c.Nullable = sql.NoNulls
			if nullable {
				c.Nullable = sql.Nullable
			}
		}
		if precision, scale, ok := ct.DecimalSize(); ok {
			c.Precision, c.Scale = int(precision), int(scale)
		}
		if length, ok := ct.Length(); ok {
			c.DisplaySize = int(length)
		}
		cols[i] = c
	}

	s.cols = cols
	s.dest = make([]any, len(cols))
	s.ptrs = make([]any, len(cols))
	for i := range s.dest {
		s.ptrs[i] = &s.dest[i]
	}
	return cols, nil
}

// Next scans the next record, converting each value to its column's type.
func (s *Source) Next(ctx context.Context) ([]sql.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.Columns(ctx); err != nil {
		return nil, err
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, errors.Wrap(err, "next")
		}
		return nil, io.EOF
	}
	if err := s.rows.Scan(s.ptrs...); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	values := make([]sql.Value, len(s.dest))
	for i, raw := range s.dest {
		v, err := Convert(raw, s.cols[i].Type)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", s.cols[i].Name)
		}
		values[i] = v
	}
	return values, nil
}

func (s *Source) Close() error {
	return s.rows.Close()
}

// Convert turns a driver value into a value of type t.
func Convert(raw any, t sql.TypeCode) (sql.Value, error) {
	if raw == nil {
		return sql.Null(), nil
	}
	if b, ok := raw.([]byte); ok {
		if t.IsBinary() {
			return sql.Bytes(append([]byte(nil), b...)), nil
		}
		raw = string(b)
	}

	switch {
	case t.IsText():
		s, err := cast.ToStringE(raw)
		return sql.Str(s), err
	case t.IsInteger():
		n, err := cast.ToInt64E(raw)
		return sql.Int(n), err
	case t == sql.TypeDecimal || t == sql.TypeNumeric:
		return convertDecimal(raw)
	case t == sql.TypeReal || t == sql.TypeFloat || t == sql.TypeDouble:
		f, err := cast.ToFloat64E(raw)
		return sql.Float(f), err
	case t == sql.TypeBit || t == sql.TypeBoolean:
		b, err := cast.ToBoolE(raw)
		return sql.Bool(b), err
	case t == sql.TypeDate || t == sql.TypeTime || t == sql.TypeTimestamp:
		if tm, ok := raw.(time.Time); ok {
			return sql.Time(tm), nil
		}
		return sql.ParseValue(cast.ToString(raw), t)
	case t.IsBinary():
		return sql.Bytes([]byte(cast.ToString(raw))), nil
	}
	return natural(raw), nil
}

func convertDecimal(raw any) (sql.Value, error) {
	switch v := raw.(type) {
	case int64:
		return sql.Dec(decimal.NewFromInt(v)), nil
	case float64:
		return sql.Dec(decimal.NewFromFloat(v)), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return sql.Value{}, errors.Wrapf(sql.ErrNotConvertible, "%q: %v", v, err)
		}
		return sql.Dec(d), nil
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return sql.Value{}, errors.Wrapf(sql.ErrNotConvertible, "%v: %v", raw, err)
	}
	return sql.Dec(decimal.NewFromFloat(f)), nil
}

// natural keeps the driver's own representation.
func natural(raw any) sql.Value {
	switch v := raw.(type) {
	case int64:
		return sql.Int(v)
	case float64:
		return sql.Float(v)
	case bool:
		return sql.Bool(v)
	case string:
		return sql.Str(v)
	case time.Time:
		return sql.Time(v)
	}
	return sql.Str(cast.ToString(raw))
}
