package rowset

import (
	"slices"

	"github.com/pkg/errors"

	"goRowSet/internal/sql"
)

// Columns returns a copy of the column descriptors.
func (rs *RowSet) Columns() []sql.Column {
	out := make([]sql.Column, len(rs.columns))
	for i, c := range rs.columns {
		out[i] = c.Clone()
	}
	return out
}

// ColumnCount returns the number of columns.
func (rs *RowSet) ColumnCount() int { return len(rs.columns) }

// ColumnNames returns the column names in order.
func (rs *RowSet) ColumnNames() []string {
	names := make([]string, len(rs.columns))
	for i, c := range rs.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (rs *RowSet) ColumnIndex(name string) int {
	for i, c := range rs.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the descriptor at position i.
func (rs *RowSet) Column(i int) (sql.Column, error) {
	c, err := rs.column(i)
	if err != nil {
		return sql.Column{}, err
	}
	return c.Clone(), nil
}

// ColumnByName returns the descriptor of the named column.
func (rs *RowSet) ColumnByName(name string) (sql.Column, error) {
	i := rs.ColumnIndex(name)
	if i < 0 {
		return sql.Column{}, errors.Wrapf(ErrColumnNotFound, "column %q", name)
	}
	return rs.columns[i].Clone(), nil
}

// AddColumn appends a column and returns its position. Adding a name that
// already exists leaves the existing descriptor untouched and returns its
// position.
func (rs *RowSet) AddColumn(c sql.Column) int {
	if i := rs.ColumnIndex(c.Name); i >= 0 {
		return i
	}
	c = c.Clone()
	c.IsKey = slices.Contains(rs.keyColumns, c.Name)
	return rs.addColumn(c)
}

func (rs *RowSet) addColumn(c sql.Column) int {
	if c.TypeName == "" {
		c.TypeName = c.Type.Name()
	}
	rs.columns = append(rs.columns, c)
	return len(rs.columns) - 1
}

// RemoveColumn drops the column at position i and its key-column entry.
// Row fields are left in place.
func (rs *RowSet) RemoveColumn(i int) error {
	c, err := rs.column(i)
	if err != nil {
		return err
	}
	name := c.Name
	rs.columns = slices.Delete(rs.columns, i, i+1)
	rs.keyColumns = slices.DeleteFunc(rs.keyColumns, func(k string) bool { return k == name })
	return nil
}

// RemoveColumnByName drops the named column. Unknown names are a no-op.
func (rs *RowSet) RemoveColumnByName(name string) {
	if i := rs.ColumnIndex(name); i >= 0 {
		_ = rs.RemoveColumn(i)
	}
}

// SetColumnType sets the type code of column i. Codes outside the known
// relational and composite types fail with ErrUnknownColumnType.
func (rs *RowSet) SetColumnType(i int, code int) error {
	c, err := rs.column(i)
	if err != nil {
		return err
	}
	t, err := sql.LookupType(code)
	if err != nil {
		return errors.Wrapf(err, "column %q", c.Name)
	}
	c.Type = t
	c.TypeName = t.Name()
	return nil
}

// SetPrecision sets the precision of column i; it may not drop below the scale.
func (rs *RowSet) SetPrecision(i, precision int) error {
	c, err := rs.column(i)
	if err != nil {
		return err
	}
	if precision < c.Scale {
		return errors.Wrapf(ErrInvalidPrecisionScale, "column %q: precision %d < scale %d", c.Name, precision, c.Scale)
	}
	c.Precision = precision
	return nil
}

// SetScale sets the scale of column i; it may not exceed the precision.
func (rs *RowSet) SetScale(i, scale int) error {
	c, err := rs.column(i)
	if err != nil {
		return err
	}
	if scale > c.Precision {
		return errors.Wrapf(ErrInvalidPrecisionScale, "column %q: scale %d > precision %d", c.Name, scale, c.Precision)
	}
	c.Scale = scale
	return nil
}

// SetNullable sets the nullability of column i to one of sql.NoNulls,
// sql.Nullable or sql.NullableUnknown.
func (rs *RowSet) SetNullable(i, nullable int) error {
	c, err := rs.column(i)
	if err != nil {
		return err
	}
	switch nullable {
	case sql.NoNulls, sql.Nullable, sql.NullableUnknown:
	default:
		return errors.Wrapf(ErrInvalidNullable, "column %q: %d", c.Name, nullable)
	}
	c.Nullable = nullable
	return nil
}

// SetColumnLabel sets the display label of column i.
func (rs *RowSet) SetColumnLabel(i int, label string) error {
	c, err := rs.column(i)
	if err != nil {
		return err
	}
	c.Label = label
	return nil
}

// SetColumnAttribute sets a free-form attribute on the named column.
func (rs *RowSet) SetColumnAttribute(column, name, value string) error {
	i := rs.ColumnIndex(column)
	if i < 0 {
		return errors.Wrapf(ErrColumnNotFound, "column %q", column)
	}
	c := &rs.columns[i]
	if c.Attributes == nil {
		c.Attributes = &sql.Attributes{}
	}
	c.Attributes.Set(name, value)
	return nil
}

// ColumnAttribute returns a column attribute, or "" if the column or the
// attribute does not exist.
func (rs *RowSet) ColumnAttribute(column, name string) string {
	i := rs.ColumnIndex(column)
	if i < 0 {
		return ""
	}
	return rs.columns[i].Attributes.Get(name)
}

// KeyColumns returns the key column names.
func (rs *RowSet) KeyColumns() []string { return slices.Clone(rs.keyColumns) }

// SetKeyColumns replaces the key column names. Existing row keys are kept.
func (rs *RowSet) SetKeyColumns(names ...string) {
	rs.keyColumns = slices.Clone(names)
	rs.markKeyColumns()
}

// AddKeyColumn appends a key column name.
func (rs *RowSet) AddKeyColumn(name string) {
	if slices.Contains(rs.keyColumns, name) {
		return
	}
	rs.keyColumns = append(rs.keyColumns, name)
	rs.markKeyColumns()
}

func (rs *RowSet) markKeyColumns() {
	for i := range rs.columns {
		rs.columns[i].IsKey = slices.Contains(rs.keyColumns, rs.columns[i].Name)
	}
}

func (rs *RowSet) column(i int) (*sql.Column, error) {
	if i < 0 || i >= len(rs.columns) {
		return nil, errors.Wrapf(ErrColumnNotFound, "column index %d of %d", i, len(rs.columns))
	}
	return &rs.columns[i], nil
}

// columnType returns the declared type of the named column, or TypeUnknown.
func (rs *RowSet) columnType(name string) sql.TypeCode {
	if i := rs.ColumnIndex(name); i >= 0 {
		return rs.columns[i].Type
	}
	return sql.TypeUnknown
}

// syncColumns appends a column for every field of r the row set does not
// know yet, copying the field's type and attributes.
func (rs *RowSet) syncColumns(r *sql.Row) {
	for _, name := range r.Names() {
		if rs.ColumnIndex(name) >= 0 {
			continue
		}
		f, _ := r.Field(name)
		c := sql.NewColumn(name, f.Type)
		if attrs := f.Attributes(); attrs.Len() > 0 {
			c.Attributes = attrs.Clone()
		}
		c.IsKey = slices.Contains(rs.keyColumns, name)
		rs.addColumn(c)
	}
}
