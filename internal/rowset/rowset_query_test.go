package rowset

import (
	"testing"

	"github.com/pkg/errors"

	"goRowSet/internal/sql"
)

func states() *RowSet {
	rs := New([]sql.Column{sql.NewColumn("STATE", sql.TypeVarchar), sql.NewColumn("POP", sql.TypeInteger)}, "STATE")
	rs.Add(row("STATE", "NM", "POP", 2))
	rs.Add(row("STATE", "CA", "POP", 39))
	rs.Add(row("STATE", "NY", "POP", 19))
	return rs
}

func TestFilterByTemplate_Regex(t *testing.T) {
	rs := states()
	out, err := rs.FilterByTemplate(row("STATE", "regex:^N.*"))
	if err != nil {
		t.Fatalf("FilterByTemplate failed: %v", err)
	}
	if got := names(out, "STATE"); !equalStrings(got, []string{"NM", "NY"}) {
		t.Fatalf("expected NM and NY, got %v", got)
	}
	if !equalStrings(out.KeyColumns(), []string{"STATE"}) || out.ColumnCount() != 2 {
		t.Fatalf("expected columns and key columns to be preserved")
	}
}

func TestFilterByTemplate_RegexIsFullMatch(t *testing.T) {
	out, err := states().FilterByTemplate(row("STATE", "regex:N"))
	if err != nil {
		t.Fatalf("FilterByTemplate failed: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected partial matches to be rejected, got %v", names(out, "STATE"))
	}
}

func TestFilterByTemplate_Cond(t *testing.T) {
	out, err := states().FilterByTemplate(row("POP", "cond:>= 19"))
	if err != nil {
		t.Fatalf("FilterByTemplate failed: %v", err)
	}
	if got := names(out, "STATE"); !equalStrings(got, []string{"CA", "NY"}) {
		t.Fatalf("expected CA and NY, got %v", got)
	}

	// numeric, not lexical: "2" < "19" only numerically
	out, err = states().FilterByTemplate(row("POP", "cond:<19"))
	if err != nil {
		t.Fatalf("FilterByTemplate failed: %v", err)
	}
	if got := names(out, "STATE"); !equalStrings(got, []string{"NM"}) {
		t.Fatalf("expected NM, got %v", got)
	}
}

func TestFilterByTemplate_EqualityAndConjunction(t *testing.T) {
	out, err := states().FilterByTemplate(row("STATE", "regex:N.", "POP", 19))
	if err != nil {
		t.Fatalf("FilterByTemplate failed: %v", err)
	}
	if got := names(out, "STATE"); !equalStrings(got, []string{"NY"}) {
		t.Fatalf("expected NY, got %v", got)
	}
}

func TestFilterByTemplate_Errors(t *testing.T) {
	if _, err := states().FilterByTemplate(row("POP", "cond:>= abc")); !errors.Is(err, ErrMalformedCondition) {
		t.Fatalf("expected ErrMalformedCondition, got %v", err)
	}
	if _, err := states().FilterByTemplate(row("STATE", "regex:(")); !errors.Is(err, ErrMalformedCondition) {
		t.Fatalf("expected ErrMalformedCondition for bad regex, got %v", err)
	}

	empty := New([]sql.Column{sql.NewColumn("STATE", sql.TypeVarchar), sql.NewColumn("POP", sql.TypeInteger)})
	if _, err := empty.FilterByTemplate(row("POP", "cond:>= abc")); !errors.Is(err, ErrMalformedCondition) {
		t.Fatalf("expected ErrMalformedCondition on an empty row set, got %v", err)
	}
	if _, err := empty.FilterByTemplate(row("STATE", "regex:(")); !errors.Is(err, ErrMalformedCondition) {
		t.Fatalf("expected ErrMalformedCondition for bad regex on an empty row set, got %v", err)
	}
	out, err := empty.FilterByTemplate(row("POP", "cond:>= 10"))
	if err != nil || out.Len() != 0 {
		t.Fatalf("expected empty result for a valid template, got %v", err)
	}
}

func TestFilterBy_Clause(t *testing.T) {
	rs := states()
	out, err := rs.FilterBy("STATE LIKE 'N%' AND POP > 10")
	if err != nil {
		t.Fatalf("FilterBy failed: %v", err)
	}
	if got := names(out, "STATE"); !equalStrings(got, []string{"NY"}) {
		t.Fatalf("expected NY, got %v", got)
	}

	out, err = rs.FilterBy("state = 'ca'")
	if err != nil {
		t.Fatalf("FilterBy failed: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("unknown field must not match")
	}

	out, err = rs.FilterBy("STATE = 'ca'", CaseSensitive(false))
	if err != nil {
		t.Fatalf("FilterBy failed: %v", err)
	}
	if got := names(out, "STATE"); !equalStrings(got, []string{"CA"}) {
		t.Fatalf("expected CA, got %v", got)
	}

	if _, err := rs.FilterBy("STATE = = 'x'"); !errors.Is(err, ErrMalformedQuery) {
		t.Fatalf("expected ErrMalformedQuery, got %v", err)
	}
}

func TestOrderBy_Clause(t *testing.T) {
	rs := FromRows(
		row("last", "b", "first", "x"),
		row("last", "a", "first", "y"),
		row("last", "b", "first", "z"),
	)
	out := rs.OrderBy("last, first DESC")
	if got := names(out, "first"); !equalStrings(got, []string{"y", "z", "x"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if got := names(rs, "first"); !equalStrings(got, []string{"x", "y", "z"}) {
		t.Fatalf("OrderBy must not reorder the source, got %v", got)
	}

	restored := out.Clone(true)
	restored.OrderByRowID()
	if got := names(restored, "first"); !equalStrings(got, []string{"x", "y", "z"}) {
		t.Fatalf("expected clones to restore original order, got %v", got)
	}
}

func TestOrderByColumn_DirectionAndNulls(t *testing.T) {
	rs := FromRows(row("n", 3), row("n", nil), row("n", 10), row("other", 1))

	rs.OrderByColumn("n", "asc")
	want := []string{"", "", "3", "10"}
	if got := names(rs, "n"); !equalStrings(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	rs.OrderByColumn("n", "sideways")
	if got := names(rs, "n"); !equalStrings(got, want) {
		t.Fatalf("unknown direction must sort ascending, got %v", got)
	}

	rs.OrderByColumn("n", "DESC")
	if got := names(rs, "n"); got[0] != "10" || got[1] != "3" {
		t.Fatalf("expected descending numeric order, got %v", got)
	}
}

func TestOrderByRowID_Idempotent(t *testing.T) {
	rs := FromRows(row("n", "c"), row("n", "a"), row("n", "b"), row("n", "a"))
	before := names(rs, "n")

	rs.OrderByColumn("n", "ASC")
	rs.OrderByColumn("n", "DESC")
	rs.OrderByRowID()
	if got := names(rs, "n"); !equalStrings(got, before) {
		t.Fatalf("expected %v, got %v", before, got)
	}
	rs.OrderByRowID()
	if got := names(rs, "n"); !equalStrings(got, before) {
		t.Fatalf("second restore changed order: %v", got)
	}
}

func sales() *RowSet {
	return FromRows(
		row("cat", "A", "amt", 10, "name", "Alpha"),
		row("cat", "A", "amt", 5, "name", "Alpha"),
		row("cat", "B", "amt", 3, "name", "Beta"),
	)
}

func TestSumByGroup(t *testing.T) {
	acc, err := sales().SumByGroup("cat", "amt")
	if err != nil {
		t.Fatalf("SumByGroup failed: %v", err)
	}
	a, _ := acc.AsNumber("A")
	b, _ := acc.AsNumber("B")
	if acc.Len() != 2 || a != 15 || b != 3 {
		t.Fatalf("expected A=15 B=3, got %s", acc)
	}
	if acc.Attribute("A", LabelAttribute) != "A" {
		t.Fatalf("expected label to default to the group value")
	}
}

func TestSumByGroup_TopWithResultDesc(t *testing.T) {
	acc, err := sales().SumByGroup("cat", "amt", WithLabel("cat"), WithSort(SortOnResultDesc), WithTop(1))
	if err != nil {
		t.Fatalf("SumByGroup failed: %v", err)
	}
	if acc.Len() != 1 {
		t.Fatalf("expected one field, got %s", acc)
	}
	if n, _ := acc.AsNumber("A"); n != 15 {
		t.Fatalf("expected A=15, got %s", acc)
	}
}

func TestSumByGroup_BadValuesCountAsZero(t *testing.T) {
	rs := sales()
	rs.Add(row("cat", "B", "amt", "n/a"))
	rs.Add(row("amt", 7))

	acc, err := rs.SumByGroup("cat", "amt")
	if err != nil {
		t.Fatalf("SumByGroup failed: %v", err)
	}
	if n, _ := acc.AsNumber("B"); n != 3 {
		t.Fatalf("expected B=3, got %s", acc)
	}
	if n, _ := acc.AsNumber(sql.GroupSentinel); n != 7 {
		t.Fatalf("expected rows without a group under %q, got %s", sql.GroupSentinel, acc)
	}
}

func TestCountByGroup_Sorting(t *testing.T) {
	rs := FromRows(
		row("id", "2", "name", "beta"),
		row("id", "1", "name", "alpha"),
		row("id", "2", "name", "beta"),
		row("id", "3", "name", "gamma"),
		row("id", "2", "name", "beta"),
		row("id", "1", "name", "alpha"),
	)

	acc, err := rs.CountByGroup("id")
	if err != nil {
		t.Fatalf("CountByGroup failed: %v", err)
	}
	if got := acc.Names(); !equalStrings(got, []string{"2", "1", "3"}) {
		t.Fatalf("expected first-seen order without sort, got %v", got)
	}
	if n, _ := acc.AsNumber("2"); n != 3 {
		t.Fatalf("expected 3 rows for group 2, got %s", acc)
	}

	cases := []struct {
		mode SortMode
		want []string
	}{
		{SortOnGroupField, []string{"1", "2", "3"}},
		{SortOnGroupFieldDesc, []string{"3", "2", "1"}},
		{SortOnGroupLabel, []string{"1", "2", "3"}},
		{SortOnGroupLabelDesc, []string{"3", "2", "1"}},
		{SortOnResult, []string{"3", "1", "2"}},
		{SortOnResultDesc, []string{"2", "1", "3"}},
	}
	for _, c := range cases {
		acc, err := rs.CountByGroup("id", WithLabel("name"), WithSort(c.mode))
		if err != nil {
			t.Fatalf("mode %d: CountByGroup failed: %v", c.mode, err)
		}
		if got := acc.Names(); !equalStrings(got, c.want) {
			t.Fatalf("mode %d: expected %v, got %v", c.mode, c.want, got)
		}
	}

	acc, _ = rs.CountByGroup("id", WithLabel("name"))
	if acc.Attribute("3", LabelAttribute) != "gamma" {
		t.Fatalf("expected label gamma, got %q", acc.Attribute("3", LabelAttribute))
	}
}

func TestCountByGroup_InvalidSortMode(t *testing.T) {
	if _, err := sales().CountByGroup("cat", WithSort(SortMode(4))); !errors.Is(err, ErrInvalidSortMode) {
		t.Fatalf("expected ErrInvalidSortMode, got %v", err)
	}
	if _, err := ParseSortMode(13); err != nil {
		t.Fatalf("ParseSortMode(13) failed: %v", err)
	}
}

func TestScalarAggregates(t *testing.T) {
	rs := FromRows(row("v", 4), row("v", 1), row("v", 3), row("v", 2))

	check := func(name string, got float64, err error, want float64) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: expected %v, got %v", name, want, got)
		}
	}
	s, err := rs.Sum("v")
	check("Sum", s, err, 10)
	mn, err := rs.Min("v")
	check("Min", mn, err, 1)
	mx, err := rs.Max("v")
	check("Max", mx, err, 4)
	avg, err := rs.Avg("v")
	check("Avg", avg, err, 2.5)
	med, err := rs.Median("v")
	check("Median", med, err, 2.5)

	rs.Add(row("v", 5))
	med, err = rs.Median("v")
	check("Median", med, err, 3)

	rs.Add(row("v", "x"))
	if _, err := rs.Sum("v"); !errors.Is(err, sql.ErrNotConvertible) {
		t.Fatalf("expected ErrNotConvertible, got %v", err)
	}
}
