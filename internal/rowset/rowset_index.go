package rowset

import (
	"github.com/pkg/errors"

	"goRowSet/internal/index"
	"goRowSet/internal/logger"
	"goRowSet/internal/sql"
)

// BuildIndex indexes the rows by key string, deriving content-hash keys for
// rows that have none. It is a no-op when the row set is already indexed.
func (rs *RowSet) BuildIndex() {
	if rs.idx != nil {
		return
	}
	rs.idx = index.Build(rs)
	logger.Debug("row set index built", "rows", len(rs.rows))
}

// IsIndexed reports whether key-based access is available.
func (rs *RowSet) IsIndexed() bool { return rs.idx != nil }

// GetByKey returns the row with the given key string.
func (rs *RowSet) GetByKey(key string) (*sql.Row, error) {
	pos, err := rs.lookup(key)
	if err != nil {
		return nil, err
	}
	return rs.rows[pos], nil
}

// RemoveKey removes and returns the row with the given key string.
func (rs *RowSet) RemoveKey(key string) (*sql.Row, error) {
	pos, err := rs.lookup(key)
	if err != nil {
		return nil, err
	}
	return rs.Remove(pos)
}

// IndexOf returns the position of r, or -1. Indexed row sets resolve rows
// carrying a key string through the index; otherwise the rows are scanned
// for a structurally equal one.
func (rs *RowSet) IndexOf(r *sql.Row) int {
	if rs.idx != nil {
		if key := r.KeyString(); key != "" {
			pos, err := rs.idx.Lookup(key)
			if err != nil {
				return -1
			}
			return pos
		}
	}
	for i, row := range rs.rows {
		if row.Equal(r) {
			return i
		}
	}
	return -1
}

func (rs *RowSet) lookup(key string) (int, error) {
	if rs.idx == nil {
		return -1, errors.Wrapf(ErrNotIndexed, "lookup %q", key)
	}
	pos, err := rs.idx.Lookup(key)
	if err != nil {
		return -1, errors.Wrapf(ErrKeyNotFound, "lookup %q", key)
	}
	return pos, nil
}
