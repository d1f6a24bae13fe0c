package rowset

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"goRowSet/internal/logger"
	"goRowSet/internal/sql"
)

const (
	regexPrefix = "regex:"
	condPrefix  = "cond:"
)

// FilterOption tunes FilterBy.
type FilterOption func(*sql.MatchOptions)

// CaseSensitive makes string comparisons case-sensitive (the default).
func CaseSensitive(on bool) FilterOption {
	return func(o *sql.MatchOptions) { o.CaseSensitive = on }
}

// Trimmed trims surrounding whitespace from string operands before comparing.
func Trimmed(on bool) FilterOption {
	return func(o *sql.MatchOptions) { o.Trimmed = on }
}

// FilterBy returns the rows matching a WHERE-like clause, e.g.
// "STATE = 'NM' AND POP > 1000". Comparisons are case-sensitive and untrimmed
// unless options say otherwise. This mode is experimental.
func (rs *RowSet) FilterBy(clause string, opts ...FilterOption) (*RowSet, error) {
	logger.Warn("filter by query clause is experimental", "clause", clause)

	match := sql.MatchOptions{CaseSensitive: true}
	for _, opt := range opts {
		opt(&match)
	}

	expr, err := sql.ParseWhereCached(clause)
	if err != nil {
		return nil, err
	}

	out := rs.emptyCopy()
	for _, r := range rs.rows {
		if expr.Match(r, match) {
			out.rows = append(out.rows, r)
		}
	}
	out.nextID = rs.nextID
	return out, nil
}

// fieldMatcher tests one field of the template row against candidate rows.
type fieldMatcher struct {
	name  string
	regex *regexp.Regexp
	cond  *sql.Condition
	want  *sql.Field
}

// FilterByTemplate returns the rows matching every field of cond. For each
// field, in order: a "regex:" value on a textual candidate field must fully
// match the candidate's string value; a "cond:" value is a comparison such
// as ">= 10" evaluated with the column's type; anything else must equal the
// candidate field in type and value.
func (rs *RowSet) FilterByTemplate(cond *sql.Row) (*RowSet, error) {
	matchers, err := rs.templateMatchers(cond)
	if err != nil {
		return nil, err
	}

	out := rs.emptyCopy()
	out.nextID = rs.nextID

	for _, r := range rs.rows {
		if matchesAll(r, matchers) {
			out.rows = append(out.rows, r)
		}
	}
	return out, nil
}

// templateMatchers resolves cond: field types come from the column
// descriptors, then from the first row.
func (rs *RowSet) templateMatchers(cond *sql.Row) ([]fieldMatcher, error) {
	matchers := make([]fieldMatcher, 0, cond.Len())
	for _, name := range cond.Names() {
		f, _ := cond.Field(name)
		m := fieldMatcher{name: name, want: f}

		text := ""
		if f.Value.Kind == sql.KindString {
			text = f.Value.S
		}

		switch {
		case strings.HasPrefix(text, regexPrefix):
			re, err := regexp.Compile(`^(?:` + text[len(regexPrefix):] + `)$`)
			if err != nil {
				return nil, errors.Wrapf(sql.ErrMalformedCondition, "REGEX: field %q: %v", name, err)
			}
			m.regex = re
		case strings.HasPrefix(text, condPrefix):
			t := rs.columnType(name)
			if t == sql.TypeUnknown && len(rs.rows) > 0 {
				t = rs.rows[0].Type(name)
			}
			c, err := sql.ParseCondition(text[len(condPrefix):], t)
			if err != nil {
				return nil, errors.Wrapf(err, "field %q", name)
			}
			m.cond = &c
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

func matchesAll(r *sql.Row, matchers []fieldMatcher) bool {
	for i := range matchers {
		if !matchers[i].match(r) {
			return false
		}
	}
	return true
}

func (m *fieldMatcher) match(r *sql.Row) bool {
	f, ok := r.Field(m.name)
	if !ok {
		return false
	}
	switch {
	case m.regex != nil && f.Type.IsText():
		return !f.IsNull() && m.regex.MatchString(f.String())
	case m.cond != nil:
		return m.cond.Match(f.Value)
	}
	return f.Equal(m.want)
}
