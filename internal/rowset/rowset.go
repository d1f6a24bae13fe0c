// Package rowset implements an in-memory, ordered container of rows with
// column metadata, an optional key index, and filter, order, aggregate and
// merge operations over it.
//
// A RowSet is not safe for concurrent mutation; callers serialise access.
package rowset

import (
	"iter"
	"slices"

	"github.com/pkg/errors"

	"goRowSet/internal/index"
	"goRowSet/internal/keyenc"
	"goRowSet/internal/logger"
	"goRowSet/internal/sql"
)

// RowSet is an ordered sequence of rows plus column descriptors and the
// names of its key columns.
type RowSet struct {
	columns    []sql.Column
	keyColumns []string

	rows   []*sql.Row
	nextID int

	idx *index.Index
}

// New creates an empty row set with the given columns and key columns.
func New(columns []sql.Column, keyColumns ...string) *RowSet {
	rs := &RowSet{}
	for _, c := range columns {
		rs.addColumn(c.Clone())
	}
	rs.keyColumns = slices.Clone(keyColumns)
	rs.markKeyColumns()
	return rs
}

// FromRows creates a row set from rows, deriving columns from their fields.
func FromRows(rows ...*sql.Row) *RowSet {
	rs := New(nil)
	for _, r := range rows {
		rs.Add(r)
	}
	return rs
}

// Len returns the number of rows.
func (rs *RowSet) Len() int { return len(rs.rows) }

// IsEmpty reports whether the row set has no rows.
func (rs *RowSet) IsEmpty() bool { return len(rs.rows) == 0 }

// At returns the row at pos without bounds checking.
func (rs *RowSet) At(pos int) *sql.Row { return rs.rows[pos] }

// Get returns the row at pos.
func (rs *RowSet) Get(pos int) (*sql.Row, error) {
	if err := rs.checkPos(pos); err != nil {
		return nil, err
	}
	return rs.rows[pos], nil
}

// Rows returns a copy of the row sequence. The rows themselves are shared.
func (rs *RowSet) Rows() []*sql.Row {
	return slices.Clone(rs.rows)
}

// All iterates positions and rows of the live sequence.
func (rs *RowSet) All() iter.Seq2[int, *sql.Row] {
	return func(yield func(int, *sql.Row) bool) {
		for i, r := range rs.rows {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Add appends r. Unknown fields become columns, the row gets an id if it has
// none, and a key if key columns are declared and it has none yet. On an
// indexed row set the index is extended in place.
func (rs *RowSet) Add(r *sql.Row) {
	rs.prepare(r)
	rs.rows = append(rs.rows, r)
	if rs.idx != nil {
		rs.idx.Append(r, len(rs.rows)-1)
	}
}

// Insert places r at pos, shifting later rows. Positions at or past the end
// append. The index, if any, is rebuilt.
func (rs *RowSet) Insert(pos int, r *sql.Row) error {
	if pos < 0 {
		return errors.Wrapf(ErrOutOfRange, "insert at %d", pos)
	}
	if pos >= len(rs.rows) {
		rs.Add(r)
		return nil
	}
	rs.prepare(r)
	rs.rows = slices.Insert(rs.rows, pos, r)
	rs.reindex()
	return nil
}

// Set replaces the row at pos. The index, if any, is rebuilt.
func (rs *RowSet) Set(pos int, r *sql.Row) error {
	if err := rs.checkPos(pos); err != nil {
		return err
	}
	rs.prepare(r)
	rs.rows[pos] = r
	rs.reindex()
	return nil
}

// Remove deletes and returns the row at pos. The index, if any, is rebuilt.
func (rs *RowSet) Remove(pos int) (*sql.Row, error) {
	if err := rs.checkPos(pos); err != nil {
		return nil, err
	}
	r := rs.rows[pos]
	rs.rows = slices.Delete(rs.rows, pos, pos+1)
	rs.reindex()
	return r, nil
}

// Clear removes every row and drops the index. Columns are kept.
func (rs *RowSet) Clear() {
	rs.rows = nil
	rs.idx = nil
}

// Clone copies the row set. A deep clone also clones every row; a shallow
// clone shares the rows with rs.
func (rs *RowSet) Clone(deep bool) *RowSet {
	out := rs.emptyCopy()
	out.nextID = rs.nextID
	if !deep {
		out.rows = slices.Clone(rs.rows)
		return out
	}
	out.rows = make([]*sql.Row, len(rs.rows))
	for i, r := range rs.rows {
		out.rows[i] = r.Clone()
	}
	return out
}

// Project returns a deep copy restricted to the named fields, in that order.
func (rs *RowSet) Project(names ...string) (*RowSet, error) {
	cols := make([]sql.Column, len(names))
	for i, name := range names {
		c, err := rs.ColumnByName(name)
		if err != nil {
			return nil, errors.Wrap(err, "SELECT")
		}
		cols[i] = c
	}

	var keys []string
	for _, k := range rs.keyColumns {
		if slices.Contains(names, k) {
			keys = append(keys, k)
		}
	}

	out := New(cols, keys...)
	for _, r := range rs.rows {
		p := sql.NewRow()
		p.SetID(r.ID())
		for _, name := range names {
			if f, ok := r.Field(name); ok {
				p.PutField(name, f.Clone())
			}
		}
		out.rows = append(out.rows, p)
	}
	out.nextID = rs.nextID
	return out, nil
}

// String renders one row per line.
func (rs *RowSet) String() string {
	out := make([]byte, 0, 64*len(rs.rows))
	for i, r := range rs.rows {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, r.String()...)
	}
	return string(out)
}

// emptyCopy returns a row set with the same columns and key columns and no rows.
func (rs *RowSet) emptyCopy() *RowSet {
	return New(rs.columns, rs.keyColumns...)
}

// prepare gives r an id and a key and registers its unknown fields as columns.
func (rs *RowSet) prepare(r *sql.Row) {
	if r.ID() < 0 {
		r.SetID(rs.nextID)
	}
	if r.ID() >= rs.nextID {
		rs.nextID = r.ID() + 1
	}
	rs.syncColumns(r)
	if len(rs.keyColumns) > 0 && len(r.Key()) == 0 {
		r.AppendKey(keyenc.RowKey(r, rs.keyColumns, rs.columnType))
	}
}

func (rs *RowSet) checkPos(pos int) error {
	if pos < 0 || pos >= len(rs.rows) {
		return errors.Wrapf(ErrOutOfRange, "position %d of %d", pos, len(rs.rows))
	}
	return nil
}

// reindex rebuilds an existing index after the row sequence changed.
func (rs *RowSet) reindex() {
	if rs.idx == nil {
		return
	}
	rs.idx = nil
	rs.idx = index.Build(rs)
	logger.Debug("row set index rebuilt", "rows", len(rs.rows))
}
