package sql

import "strings"

// OrderTerm is one "field [ASC|DESC]" element of an order clause.
type OrderTerm struct {
	Field string
	Desc  bool
}

// ParseDirection reports whether dir means descending. Anything other than
// DESC (case-insensitive) is ascending.
func ParseDirection(dir string) bool {
	return strings.EqualFold(strings.TrimSpace(dir), "DESC")
}

// ParseOrderBy parses "f1 [ASC|DESC], f2 [ASC|DESC], ...". Unrecognised
// direction tokens are ignored and the term sorts ascending.
func ParseOrderBy(clause string) []OrderTerm {
	parts := splitCommaSeparated(clause)
	terms := make([]OrderTerm, 0, len(parts))
	for _, p := range parts {
		tokens := strings.Fields(p)
		term := OrderTerm{Field: tokens[0]}
		if len(tokens) > 1 {
			term.Desc = ParseDirection(tokens[1])
		}
		terms = append(terms, term)
	}
	return terms
}
