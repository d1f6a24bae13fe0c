package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"goRowSet/internal/engine"
	"goRowSet/internal/ingest"
	"goRowSet/internal/ingest/memsource"
	"goRowSet/internal/ingest/sqlsource"
	"goRowSet/internal/sql"
)

const inlineTable = "inline"

// inlineColumns parses name[:TYPE] definitions. The type defaults to VARCHAR.
func inlineColumns(defs []string) ([]sql.Column, error) {
	cols := make([]sql.Column, 0, len(defs))
	for _, def := range defs {
		name, typeName, ok := strings.Cut(def, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.Errorf("bad column %q, expected name[:TYPE]", def)
		}
		t := sql.TypeVarchar
		if ok {
			if t = sqlsource.TypeFromName(typeName); t == sql.TypeOther {
				return nil, errors.Wrapf(sql.ErrUnknownColumnType, "column %q: %q", name, typeName)
			}
		}
		cols = append(cols, sql.NewColumn(name, t))
	}
	return cols, nil
}

// loadInline builds the row set from --column and --row values held in an
// in-memory table.
func (a *app) loadInline(ctx context.Context, eng *engine.Engine) error {
	cols, err := inlineColumns(a.columns)
	if err != nil {
		return err
	}
	store := memsource.New()
	if err := store.CreateTable(inlineTable, cols); err != nil {
		return err
	}
	for i, line := range a.rows {
		texts := strings.Split(line, ",")
		if len(texts) != len(cols) {
			return errors.Errorf("row %d: expected %d values, got %d", i+1, len(cols), len(texts))
		}
		values := make([]sql.Value, len(cols))
		for j, text := range texts {
			v, err := sql.ParseValue(text, cols[j].Type)
			if err != nil {
				return errors.Wrapf(err, "row %d, column %q", i+1, cols[j].Name)
			}
			values[j] = v
		}
		if err := store.Insert(inlineTable, values...); err != nil {
			return errors.Wrapf(err, "row %d", i+1)
		}
	}

	cur, err := store.Open(inlineTable)
	if err != nil {
		return err
	}
	defer cur.Close()

	var opts []ingest.Option
	if len(a.keyColumns) > 0 {
		opts = append(opts, ingest.WithKeyColumns(a.keyColumns...))
	}
	_, err = eng.LoadSource(ctx, loadedName, cur, opts...)
	return err
}
