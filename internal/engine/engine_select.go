package engine

import (
	"github.com/pkg/errors"

	"goRowSet/internal/rowset"
	"goRowSet/internal/sql"
)

// Query reads a stored row set. Steps run in order: the WHERE-like clause,
// the template filter, the ordering and finally the field projection.
// Empty parts are skipped.
type Query struct {
	Where    string
	Template *sql.Row
	OrderBy  string
	Fields   []string
}

// Select evaluates q against the row set stored under name. The stored
// row set is never modified.
func (e *Engine) Select(name string, q Query) (*rowset.RowSet, error) {
	rs, err := e.RowSet(name)
	if err != nil {
		return nil, err
	}

	out := rs.Clone(false)
	if q.Where != "" {
		if out, err = out.FilterBy(q.Where, e.filterOptions()...); err != nil {
			return nil, errors.Wrapf(err, "select %s", name)
		}
	}
	if q.Template != nil {
		if out, err = out.FilterByTemplate(q.Template); err != nil {
			return nil, errors.Wrapf(err, "select %s", name)
		}
	}
	if q.OrderBy != "" {
		out = out.OrderBy(q.OrderBy)
	}
	if len(q.Fields) > 0 {
		if out, err = out.Project(q.Fields...); err != nil {
			return nil, errors.Wrapf(err, "select %s", name)
		}
	}
	return out, nil
}

func (e *Engine) filterOptions() []rowset.FilterOption {
	return []rowset.FilterOption{
		rowset.CaseSensitive(e.cfg.Filter.CaseSensitive),
		rowset.Trimmed(e.cfg.Filter.Trimmed),
	}
}
