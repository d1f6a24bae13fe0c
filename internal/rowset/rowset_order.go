package rowset

import (
	"cmp"
	"slices"

	"goRowSet/internal/sql"
)

// Comparator orders two rows; it returns a negative number when a sorts first.
type Comparator func(a, b *sql.Row) int

// FieldComparator orders rows by one field. Rows without the field or with
// a null value sort first.
func FieldComparator(field string) Comparator {
	return func(a, b *sql.Row) int {
		av, aerr := a.Value(field)
		bv, berr := b.Value(field)
		switch {
		case aerr != nil && berr != nil:
			return 0
		case aerr != nil:
			return -1
		case berr != nil:
			return 1
		}
		return sql.Compare(av, bv)
	}
}

// Reverse inverts a comparator.
func Reverse(c Comparator) Comparator {
	return func(a, b *sql.Row) int { return c(b, a) }
}

// ClauseComparator builds a comparator from "f1 [ASC|DESC], f2 ...": fields
// are compared left to right and the first difference decides.
func ClauseComparator(clause string) Comparator {
	terms := sql.ParseOrderBy(clause)
	cmps := make([]Comparator, len(terms))
	for i, t := range terms {
		cmps[i] = FieldComparator(t.Field)
		if t.Desc {
			cmps[i] = Reverse(cmps[i])
		}
	}
	return func(a, b *sql.Row) int {
		for _, c := range cmps {
			if n := c(a, b); n != 0 {
				return n
			}
		}
		return 0
	}
}

// OrderBy returns a deep clone of the row set ordered by clause, e.g.
// "NAME, FIRST_NAME DESC, ZIP".
func (rs *RowSet) OrderBy(clause string) *RowSet {
	out := rs.Clone(true)
	out.OrderByComparator(ClauseComparator(clause))
	return out
}

// OrderByColumn reorders the rows in place by one field. Any direction
// other than DESC (case-insensitive) sorts ascending.
func (rs *RowSet) OrderByColumn(field, direction string) {
	c := FieldComparator(field)
	if sql.ParseDirection(direction) {
		c = Reverse(c)
	}
	rs.OrderByComparator(c)
}

// OrderByComparator reorders the rows in place with a stable sort.
func (rs *RowSet) OrderByComparator(c Comparator) {
	slices.SortStableFunc(rs.rows, c)
	rs.reindex()
}

// OrderByRowID restores the insertion order of the rows.
func (rs *RowSet) OrderByRowID() {
	rs.OrderByComparator(func(a, b *sql.Row) int { return cmp.Compare(a.ID(), b.ID()) })
}
