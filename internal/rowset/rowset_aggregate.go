package rowset

import (
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"goRowSet/internal/sql"
)

// SortMode selects how the fields of an aggregate row are ordered.
type SortMode int

const (
	NoSort               SortMode = 0
	SortOnGroupField     SortMode = 1
	SortOnGroupLabel     SortMode = 2
	SortOnResult         SortMode = 3
	SortOnGroupFieldDesc SortMode = 11
	SortOnGroupLabelDesc SortMode = 12
	SortOnResultDesc     SortMode = 13
)

// LabelAttribute is the field attribute holding the group label.
const LabelAttribute = "label"

const resultKeyWidth = 30

// ParseSortMode validates a raw sort code.
func ParseSortMode(code int) (SortMode, error) {
	switch m := SortMode(code); m {
	case NoSort, SortOnGroupField, SortOnGroupLabel, SortOnResult,
		SortOnGroupFieldDesc, SortOnGroupLabelDesc, SortOnResultDesc:
		return m, nil
	}
	return NoSort, errors.Wrapf(ErrInvalidSortMode, "sort code %d", code)
}

func (m SortMode) descending() bool { return m > 10 }

type groupOptions struct {
	label string
	sort  SortMode
	top   int
}

// GroupOption configures CountByGroup and SumByGroup.
type GroupOption func(*groupOptions)

// WithLabel reads each group's label from another field. By default the
// group field itself is the label.
func WithLabel(field string) GroupOption {
	return func(o *groupOptions) { o.label = field }
}

// WithSort orders the result fields.
func WithSort(mode SortMode) GroupOption {
	return func(o *groupOptions) { o.sort = mode }
}

// WithTop keeps only the first n result fields; n <= 0 keeps all.
func WithTop(n int) GroupOption {
	return func(o *groupOptions) { o.top = n }
}

func newGroupOptions(field string, opts []GroupOption) (groupOptions, error) {
	o := groupOptions{label: field}
	for _, opt := range opts {
		opt(&o)
	}
	if _, err := ParseSortMode(int(o.sort)); err != nil {
		return o, err
	}
	return o, nil
}

// CountByGroup counts rows per distinct value of field. The result has one
// field per group value, holding the count, with the group's label in the
// "label" attribute. Rows whose group or label cannot be read count under
// "(-)".
func (rs *RowSet) CountByGroup(field string, opts ...GroupOption) (*sql.Row, error) {
	o, err := newGroupOptions(field, opts)
	if err != nil {
		return nil, err
	}

	acc := sql.NewRow()
	for _, r := range rs.rows {
		group, label := groupOf(r, field, o.label)
		var n int64
		if v, err := acc.Value(group); err == nil {
			n = v.I64
		}
		acc.SetField(group, sql.TypeInteger, sql.Int(n+1))
		_ = acc.SetAttribute(group, LabelAttribute, label)
	}
	return finishGroups(acc, o), nil
}

// SumByGroup sums sumField per distinct value of field. Values that cannot
// be read as numbers count as 0.
func (rs *RowSet) SumByGroup(field, sumField string, opts ...GroupOption) (*sql.Row, error) {
	o, err := newGroupOptions(field, opts)
	if err != nil {
		return nil, err
	}

	acc := sql.NewRow()
	for _, r := range rs.rows {
		group, label := groupOf(r, field, o.label)
		n, err := r.AsNumber(sumField)
		if err != nil {
			n = 0
		}
		total, err := acc.AsNumber(group)
		if err != nil {
			total = 0
		}
		acc.SetField(group, sql.TypeDouble, sql.Float(total+n))
		_ = acc.SetAttribute(group, LabelAttribute, label)
	}
	return finishGroups(acc, o), nil
}

// groupOf extracts the group and label strings, falling back to the
// sentinel for both when either cannot be read.
func groupOf(r *sql.Row, field, labelField string) (string, string) {
	group, err := r.AsString(field)
	if err != nil {
		return sql.GroupSentinel, sql.GroupSentinel
	}
	label, err := r.AsString(labelField)
	if err != nil {
		return group, sql.GroupSentinel
	}
	return group, label
}

func finishGroups(acc *sql.Row, o groupOptions) *sql.Row {
	if o.sort != NoSort {
		acc = sortGroups(acc, o.sort)
	}
	if o.top > 0 {
		names := acc.Names()
		for i := len(names) - 1; i >= o.top; i-- {
			acc.Remove(names[i])
		}
	}
	return acc
}

// sortGroups rebuilds acc with its fields ordered by a per-field string key.
func sortGroups(acc *sql.Row, mode SortMode) *sql.Row {
	type entry struct {
		key  string
		name string
	}
	names := acc.Names()
	entries := make([]entry, 0, len(names))
	for _, name := range names {
		var key string
		switch mode {
		case SortOnGroupField, SortOnGroupFieldDesc:
			key = name
		case SortOnGroupLabel, SortOnGroupLabelDesc:
			key = acc.Attribute(name, LabelAttribute) + name
		case SortOnResult, SortOnResultDesc:
			key = resultKey(acc, name) + name
		}
		if mode.descending() {
			key = invert(key)
		}
		entries = append(entries, entry{key: key, name: name})
	}
	slices.SortStableFunc(entries, func(a, b entry) int { return strings.Compare(a.key, b.key) })

	out := sql.NewRow()
	for _, e := range entries {
		f, _ := acc.Field(e.name)
		out.PutField(e.name, f)
	}
	return out
}

// resultKey formats a numeric result so that its text order follows its
// numeric order for non-negative values.
func resultKey(acc *sql.Row, name string) string {
	n, err := acc.AsNumber(name)
	if err != nil {
		n = 0
	}
	s := strconv.FormatFloat(n, 'f', 6, 64)
	if len(s) < resultKeyWidth {
		s = strings.Repeat("0", resultKeyWidth-len(s)) + s
	}
	return s
}

// invert flips every byte so that ascending order of the result is
// descending order of the input.
func invert(s string) string {
	b := []byte(s)
	for i := range b {
		b[i] = 255 - b[i]
	}
	return string(b)
}

// Count returns the number of rows.
func (rs *RowSet) Count() int { return len(rs.rows) }

// Sum adds field over all rows.
func (rs *RowSet) Sum(field string) (float64, error) {
	var s float64
	for _, r := range rs.rows {
		n, err := r.AsNumber(field)
		if err != nil {
			return 0, errors.Wrap(err, "SUM")
		}
		s += n
	}
	return s, nil
}

// Min returns the smallest value of field, or 0 for an empty row set.
func (rs *RowSet) Min(field string) (float64, error) {
	return rs.extreme(field, "MIN", func(n, cur float64) bool { return n < cur })
}

// Max returns the largest value of field, or 0 for an empty row set.
func (rs *RowSet) Max(field string) (float64, error) {
	return rs.extreme(field, "MAX", func(n, cur float64) bool { return n > cur })
}

func (rs *RowSet) extreme(field, op string, better func(n, cur float64) bool) (float64, error) {
	var cur float64
	for i, r := range rs.rows {
		n, err := r.AsNumber(field)
		if err != nil {
			return 0, errors.Wrap(err, op)
		}
		if i == 0 || better(n, cur) {
			cur = n
		}
	}
	return cur, nil
}

// Avg returns the mean of field. An empty row set has no mean and yields 0.
func (rs *RowSet) Avg(field string) (float64, error) {
	if rs.IsEmpty() {
		return 0, nil
	}
	s, err := rs.Sum(field)
	if err != nil {
		return 0, err
	}
	return s / float64(len(rs.rows)), nil
}

// Median returns the median of field; for an even count it is the mean of
// the two middle values.
func (rs *RowSet) Median(field string) (float64, error) {
	if rs.IsEmpty() {
		return 0, nil
	}
	values := make([]float64, len(rs.rows))
	for i, r := range rs.rows {
		n, err := r.AsNumber(field)
		if err != nil {
			return 0, errors.Wrap(err, "MEDIAN")
		}
		values[i] = n
	}
	slices.Sort(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid], nil
	}
	return (values[mid-1] + values[mid]) / 2, nil
}
