package engine

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"goRowSet/internal/config"
	"goRowSet/internal/ingest/memsource"
	"goRowSet/internal/sql"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "file:engine_test?mode=memory&cache=shared"
	cfg.Filter.CaseSensitive = true
	return cfg
}

func startEngine(t *testing.T, cfg config.Config) *Engine {
	t.Helper()
	eng := New(cfg)
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func seed(t *testing.T, eng *Engine) {
	t.Helper()
	err := eng.Exec(context.Background(),
		`DROP TABLE IF EXISTS users`,
		`CREATE TABLE users (id INTEGER, name VARCHAR(20), state CHAR(2), active BOOLEAN)`,
		`INSERT INTO users VALUES (1, 'Alice', 'NM', 1)`,
		`INSERT INTO users VALUES (2, 'Bob', 'CA', 0)`,
		`INSERT INTO users VALUES (3, 'Carol', 'NY', 1)`,
	)
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
}

func TestEngineNotStarted(t *testing.T) {
	eng := New(testConfig())
	ctx := context.Background()

	if _, err := eng.Load(ctx, "users", "SELECT 1"); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	if _, err := eng.RowSet("users"); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	if _, err := eng.Names(); err == nil || err.Error() != "engine not started" {
		t.Fatalf("expected \"engine not started\", got %v", err)
	}
	if err := eng.Exec(ctx, "SELECT 1"); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}

	if err := eng.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer eng.Close()
	if err := eng.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

// TestEngineLoadAndSelect checks the engine API end-to-end against sqlite.
func TestEngineLoadAndSelect(t *testing.T) {
	eng := startEngine(t, testConfig())
	seed(t, eng)
	ctx := context.Background()

	rs, err := eng.Load(ctx, "users", "SELECT id, name, state, active FROM users ORDER BY id", "id")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rs.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", rs.Len())
	}
	if keys := rs.KeyColumns(); len(keys) != 1 || keys[0] != "id" {
		t.Fatalf("unexpected key columns %v", keys)
	}

	out, err := eng.Select("users", Query{
		Where:   "active = TRUE",
		OrderBy: "name DESC",
		Fields:  []string{"name"},
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Len())
	}
	if got := out.At(0).String(); got != "{name=Carol}" {
		t.Fatalf("unexpected first row %s", got)
	}

	out, err = eng.Select("users", Query{Template: templateRow("state", "regex:N.")})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("expected NM and NY, got %d rows", out.Len())
	}

	stored, _ := eng.RowSet("users")
	if s, _ := stored.At(0).AsString("name"); s != "Alice" || stored.ColumnCount() != 4 {
		t.Fatalf("Select must not modify the stored row set")
	}

	if _, err := eng.Select("users", Query{Where: "name = = 1"}); !errors.Is(err, sql.ErrMalformedQuery) {
		t.Fatalf("expected ErrMalformedQuery, got %v", err)
	}
}

func TestEngineFilterDefaultsFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Filter.CaseSensitive = false
	eng := startEngine(t, cfg)
	seed(t, eng)

	if _, err := eng.Load(context.Background(), "users", "SELECT name FROM users"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	out, err := eng.Select("users", Query{Where: "name = 'alice'"})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected case-insensitive match, got %d rows", out.Len())
	}
}

func TestEngineLoadSourceAndCatalog(t *testing.T) {
	var cfg config.Config
	eng := startEngine(t, cfg)
	ctx := context.Background()

	if _, err := eng.Load(ctx, "x", "SELECT 1"); !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("expected ErrNoDatabase, got %v", err)
	}

	store := memsource.New()
	_ = store.CreateTable("t", []sql.Column{sql.NewColumn("n", sql.TypeInteger)})
	_ = store.Insert("t", sql.Int(1))
	_ = store.Insert("t", sql.Int(2))
	cur, _ := store.Open("t")
	defer cur.Close()

	if _, err := eng.LoadSource(ctx, "b", cur); err != nil {
		t.Fatalf("LoadSource failed: %v", err)
	}
	rs, _ := eng.RowSet("b")
	if err := eng.Put("a", rs.Clone(true)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	names, err := eng.Names()
	if err != nil || len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names %v (%v)", names, err)
	}
	if err := eng.Drop("a"); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if _, err := eng.RowSet("a"); !errors.Is(err, ErrUnknownRowSet) {
		t.Fatalf("expected ErrUnknownRowSet, got %v", err)
	}
}

func TestEngineExecRollsBack(t *testing.T) {
	eng := startEngine(t, testConfig())
	seed(t, eng)
	ctx := context.Background()

	err := eng.Exec(ctx,
		`INSERT INTO users VALUES (4, 'Dan', 'TX', 1)`,
		`INSERT INTO missing VALUES (1)`,
	)
	if err == nil {
		t.Fatalf("expected failing statement to abort")
	}
	rs, err := eng.Load(ctx, "users", "SELECT id FROM users")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rs.Len() != 3 {
		t.Fatalf("expected rollback to keep 3 rows, got %d", rs.Len())
	}
}

func templateRow(kv ...string) *sql.Row {
	r := sql.NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], sql.Str(kv[i+1]))
	}
	return r
}

func TestLoadAll(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Workers = 2
	eng := startEngine(t, cfg)
	seed(t, eng)
	ctx := context.Background()

	err := eng.LoadAll(ctx,
		LoadJob{Name: "all", Query: "SELECT id, name FROM users", KeyColumns: []string{"id"}},
		LoadJob{Name: "active", Query: "SELECT name FROM users WHERE active = 1"},
		LoadJob{Name: "states", Query: "SELECT DISTINCT state FROM users"},
	)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	for name, want := range map[string]int{"all": 3, "active": 2, "states": 3} {
		rs, err := eng.RowSet(name)
		if err != nil {
			t.Fatalf("RowSet(%s) failed: %v", name, err)
		}
		if rs.Len() != want {
			t.Fatalf("expected %d rows in %s, got %d", want, name, rs.Len())
		}
	}

	err = eng.LoadAll(ctx,
		LoadJob{Name: "ok", Query: "SELECT name FROM users"},
		LoadJob{Name: "bad", Query: "SELECT nope FROM missing"},
	)
	if err == nil {
		t.Fatalf("expected failing load to be reported")
	}
	if _, err := eng.RowSet("ok"); err != nil {
		t.Fatalf("expected successful load to be kept: %v", err)
	}
	if _, err := eng.RowSet("bad"); !errors.Is(err, ErrUnknownRowSet) {
		t.Fatalf("expected ErrUnknownRowSet, got %v", err)
	}
}
