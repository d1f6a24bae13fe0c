// Package ingest fills row sets from tabular cursors.
package ingest

import (
	"context"
	"io"
	"slices"
	"strconv"

	"github.com/pkg/errors"

	"goRowSet/internal/keyenc"
	"goRowSet/internal/logger"
	"goRowSet/internal/rowset"
	"goRowSet/internal/sql"
)

// Field attributes set on the first ingested row.
const (
	AttrEditable     = "EDITABLE"
	AttrStringFormat = "StringFormat"
)

// EDITABLE values.
const (
	EditableNo  = "0"
	EditableYes = "1"
	EditableKey = "2"
)

// Source is a forward-only cursor over typed records.
type Source interface {
	// Columns describes the values Next returns, in order.
	Columns(ctx context.Context) ([]sql.Column, error)
	// Next returns the next record, or io.EOF when the cursor is exhausted.
	Next(ctx context.Context) ([]sql.Value, error)
	Close() error
}

// Transform may replace or drop (by returning nil) each row before it is
// added. Rows already carry their key when the transform sees them.
type Transform func(*sql.Row) *sql.Row

type options struct {
	transform Transform
	selection []string
	keys      []string
}

// Option configures Populate.
type Option func(*options)

// WithTransform installs a per-row hook.
func WithTransform(fn Transform) Option {
	return func(o *options) { o.transform = fn }
}

// WithFieldSelection imports only the named source columns.
func WithFieldSelection(names ...string) Option {
	return func(o *options) { o.selection = names }
}

// WithKeyColumns declares the key columns of the target row set.
func WithKeyColumns(names ...string) Option {
	return func(o *options) { o.keys = names }
}

// binding maps a source column to its row field.
type binding struct {
	src    int
	column sql.Column
}

// Populate reads src to the end and appends its records to rs. It returns
// the number of rows added. The source is not closed.
func Populate(ctx context.Context, rs *rowset.RowSet, src Source, opts ...Option) (int, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.keys) > 0 {
		rs.SetKeyColumns(o.keys...)
	}

	cols, err := src.Columns(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "INGEST: columns")
	}
	bindings := bind(rs, cols, o.selection)
	attrs := fieldAttributes(bindings, rs.KeyColumns())

	added := 0
	for {
		values, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return added, errors.Wrapf(err, "INGEST: row %d", added)
		}
		if len(values) != len(cols) {
			return added, errors.Errorf("INGEST: row %d has %d values, expected %d", added, len(values), len(cols))
		}

		r := sql.NewRow()
		for _, b := range bindings {
			r.SetField(b.column.Name, b.column.Type, values[b.src])
		}
		if keys := rs.KeyColumns(); len(keys) > 0 {
			r.AppendKey(keyenc.RowKey(r, keys, r.Type))
		}

		if o.transform != nil {
			if r = o.transform(r); r == nil {
				logger.Debug("ingested row dropped by transform", "row", added)
				continue
			}
		}
		if added == 0 {
			for name, a := range attrs {
				for _, k := range a.Keys() {
					_ = r.SetAttribute(name, k, a.Get(k))
				}
			}
		}
		rs.Add(r)
		added++
	}
	return added, nil
}

// bind registers the selected source columns on rs. A name already known
// to rs gets "_<ordinal>" appended, the ordinal being the 1-based source
// position.
func bind(rs *rowset.RowSet, cols []sql.Column, selection []string) []binding {
	out := make([]binding, 0, len(cols))
	for i, c := range cols {
		if c.Name == "*" {
			continue
		}
		if selection != nil && !slices.Contains(selection, c.Name) {
			continue
		}
		c = c.Clone()
		if rs.ColumnIndex(c.Name) >= 0 {
			c.Name += "_" + strconv.Itoa(i+1)
		}
		rs.AddColumn(c)
		out = append(out, binding{src: i, column: c})
	}
	return out
}

func fieldAttributes(bindings []binding, keys []string) map[string]*sql.Attributes {
	out := make(map[string]*sql.Attributes, len(bindings))
	for _, b := range bindings {
		a := &sql.Attributes{}
		if b.column.TypeName == "JSON" {
			a.Set(AttrStringFormat, "JSON")
		}
		switch {
		case slices.Contains(keys, b.column.Name):
			a.Set(AttrEditable, EditableKey)
		case b.column.AutoIncrement || !b.column.Writable || b.column.ReadOnly:
			a.Set(AttrEditable, EditableNo)
		default:
			a.Set(AttrEditable, EditableYes)
		}
		out[b.column.Name] = a
	}
	return out
}
