// Package memsource keeps named tables in memory and opens them as
// ingestion sources.
package memsource

import (
	"context"
	"io"
	"slices"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"goRowSet/internal/sql"
)

var (
	ErrTableExists   = errors.New("table already exists")
	ErrTableNotFound = errors.New("table does not exist")
	ErrTypeMismatch  = errors.New("type mismatch")
)

type table struct {
	name string
	cols []sql.Column
	rows [][]sql.Value
}

// Store is a set of in-memory tables. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tables: make(map[string]*table),
	}
}

// CreateTable creates a new empty table with the given columns.
func (s *Store) CreateTable(name string, cols []sql.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tables[name]; exists {
		return errors.Wrapf(ErrTableExists, "table %s", name)
	}

	copied := make([]sql.Column, len(cols))
	for i, c := range cols {
		copied[i] = c.Clone()
	}
	s.tables[name] = &table{
		name: name,
		cols: copied,
	}
	return nil
}

// Insert appends one record. Values must match the table's columns in
// count and be storable under each column's type.
func (s *Store) Insert(name string, values ...sql.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return errors.Wrapf(ErrTableNotFound, "table %s", name)
	}
	if err := t.check(values); err != nil {
		return err
	}
	t.rows = append(t.rows, slices.Clone(values))
	return nil
}

// ReplaceAll swaps the table's records for a copy of rows.
func (s *Store) ReplaceAll(name string, rows [][]sql.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return errors.Wrapf(ErrTableNotFound, "table %s", name)
	}
	for _, r := range rows {
		if err := t.check(r); err != nil {
			return err
		}
	}

	newRows := make([][]sql.Value, len(rows))
	for i, r := range rows {
		newRows[i] = slices.Clone(r)
	}
	t.rows = newRows
	return nil
}

func (t *table) check(values []sql.Value) error {
	if len(values) != len(t.cols) {
		return errors.Errorf("column count mismatch: expected %d, got %d", len(t.cols), len(values))
	}
	for i, col := range t.cols {
		if !col.Type.Accepts(values[i].Kind) {
			return errors.Wrapf(ErrTypeMismatch, "column %q: %v cannot hold %v", col.Name, col.Type, values[i].Kind)
		}
		if values[i].IsNull() && col.Nullable == sql.NoNulls {
			return errors.Wrapf(ErrTypeMismatch, "column %q is not nullable", col.Name)
		}
	}
	return nil
}

// Tables returns the table names in sorted order.
func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema returns a copy of the table's columns.
func (s *Store) Schema(name string) ([]sql.Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[name]
	if !ok {
		return nil, errors.Wrapf(ErrTableNotFound, "table %s", name)
	}
	cols := make([]sql.Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Clone()
	}
	return cols, nil
}

// Open returns a cursor over a snapshot of the table. Later writes to the
// store are not visible through it.
func (s *Store) Open(name string) (*Cursor, error) {
	cols, err := s.Schema(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.tables[name]
	rows := make([][]sql.Value, len(t.rows))
	for i, r := range t.rows {
		rows[i] = slices.Clone(r)
	}
	return &Cursor{cols: cols, rows: rows}, nil
}

// Cursor reads a table snapshot. It implements ingest.Source.
type Cursor struct {
	cols   []sql.Column
	rows   [][]sql.Value
	pos    int
	closed bool
}

func (c *Cursor) Columns(ctx context.Context) ([]sql.Column, error) {
	return c.cols, nil
}

func (c *Cursor) Next(ctx context.Context) ([]sql.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.closed {
		return nil, errors.New("cursor closed")
	}
	if c.pos >= len(c.rows) {
		return nil, io.EOF
	}
	r := c.rows[c.pos]
	c.pos++
	return r, nil
}

func (c *Cursor) Close() error {
	c.closed = true
	return nil
}
