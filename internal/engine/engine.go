package engine

import (
	"context"
	dbsql "database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"goRowSet/internal/config"
	"goRowSet/internal/ingest"
	"goRowSet/internal/ingest/sqlsource"
	"goRowSet/internal/logger"
	"goRowSet/internal/rowset"
)

var (
	ErrNotStarted     = errors.New("engine not started")
	ErrAlreadyStarted = errors.New("engine already started")
	ErrNoDatabase     = errors.New("no database configured")
	ErrUnknownRowSet  = errors.New("unknown row set")
)

// Engine keeps named row sets loaded from a database or any other
// ingestion source.
type Engine struct {
	mu      sync.RWMutex
	cfg     config.Config
	started bool
	db      *dbsql.DB
	sets    map[string]*rowset.RowSet
}

// New creates an engine. Nothing is opened until Start.
func New(cfg config.Config) *Engine {
	return &Engine{
		cfg:  cfg,
		sets: make(map[string]*rowset.RowSet),
	}
}

// Start opens the configured database, if any.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrAlreadyStarted
	}
	if d := e.cfg.Database; d.Driver != "" {
		db, err := dbsql.Open(d.Driver, d.DSN)
		if err != nil {
			return errors.Wrapf(err, "open %s", d.Driver)
		}
		if strings.Contains(d.DSN, ":memory:") || strings.Contains(d.DSN, "mode=memory") {
			// each pooled connection would open its own private database
			db.SetMaxOpenConns(1)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return errors.Wrapf(err, "ping %s", d.Driver)
		}
		e.db = db
	}
	e.started = true
	logger.Info("engine started", "driver", e.cfg.Database.Driver)
	return nil
}

// Close releases the database and forgets all row sets.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return ErrNotStarted
	}
	e.started = false
	e.sets = make(map[string]*rowset.RowSet)
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

// DB returns the open database handle, or nil when none is configured.
func (e *Engine) DB() *dbsql.DB {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.db
}

// Load runs query against the database and stores the result under name,
// replacing any row set of that name.
func (e *Engine) Load(ctx context.Context, name, query string, keyColumns ...string) (*rowset.RowSet, error) {
	db, err := e.database()
	if err != nil {
		return nil, err
	}
	src, err := sqlsource.Query(ctx, db, query)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", name)
	}
	defer src.Close()

	var opts []ingest.Option
	if len(keyColumns) > 0 {
		opts = append(opts, ingest.WithKeyColumns(keyColumns...))
	}
	return e.LoadSource(ctx, name, src, opts...)
}

// LoadSource ingests src and stores the result under name. The source is
// not closed.
func (e *Engine) LoadSource(ctx context.Context, name string, src ingest.Source, opts ...ingest.Option) (*rowset.RowSet, error) {
	if err := e.checkStarted(); err != nil {
		return nil, err
	}

	rs := rowset.New(nil)
	n, err := ingest.Populate(ctx, rs, src, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", name)
	}

	e.mu.Lock()
	e.sets[name] = rs
	e.mu.Unlock()
	logger.Debug("row set loaded", "name", name, "rows", n)
	return rs, nil
}

// Put stores rs under name.
func (e *Engine) Put(name string, rs *rowset.RowSet) error {
	if err := e.checkStarted(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sets[name] = rs
	return nil
}

// RowSet returns the row set stored under name.
func (e *Engine) RowSet(name string) (*rowset.RowSet, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.started {
		return nil, ErrNotStarted
	}
	rs, ok := e.sets[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownRowSet, "%q", name)
	}
	return rs, nil
}

// Drop forgets the row set stored under name.
func (e *Engine) Drop(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return ErrNotStarted
	}
	if _, ok := e.sets[name]; !ok {
		return errors.Wrapf(ErrUnknownRowSet, "%q", name)
	}
	delete(e.sets, name)
	return nil
}

// Names returns the stored row set names in sorted order.
func (e *Engine) Names() ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.started {
		return nil, ErrNotStarted
	}
	names := make([]string, 0, len(e.sets))
	for name := range e.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (e *Engine) checkStarted() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.started {
		return ErrNotStarted
	}
	return nil
}

func (e *Engine) database() (*dbsql.DB, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.started {
		return nil, ErrNotStarted
	}
	if e.db == nil {
		return nil, ErrNoDatabase
	}
	return e.db, nil
}
