package sql

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// WHERE-like filter grammar. Precedence, loosest first: OR, AND, NOT.
//
//	expr       := and ("OR" and)*
//	and        := unary ("AND" unary)*
//	unary      := "NOT" unary | "(" expr ")" | comparison
//	comparison := field ( "IS" ["NOT"] "NULL"
//	                    | op literal
//	                    | ["NOT"] "LIKE" string
//	                    | ["NOT"] "IN" "(" literal ("," literal)* ")" )

var whereLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:[^']|'')*'|"(?:[^"]|"")*"`},
	{Name: "Float", Pattern: `[-+]?(?:\d+\.\d*(?:[eE][-+]?\d+)?|\d+[eE][-+]?\d+)`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Keyword", Pattern: `(?i)\b(?:AND|OR|NOT|LIKE|IS|NULL|IN|TRUE|FALSE)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.$]*`},
	{Name: "Operator", Pattern: `<>|!=|<=|>=|=|<|>`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "whitespace", Pattern: `\s+`},
})

var whereParser = participle.MustBuild[WhereExpr](
	participle.Lexer(whereLexer),
	participle.CaseInsensitive("Keyword"),
	participle.Elide("whitespace"),
	participle.UseLookahead(2),
)

// WhereExpr is a parsed filter clause: a disjunction of conjunctions.
type WhereExpr struct {
	Or []*AndExpr `parser:"@@ ( 'OR' @@ )*"`
}

type AndExpr struct {
	And []*UnaryExpr `parser:"@@ ( 'AND' @@ )*"`
}

type UnaryExpr struct {
	Not        *UnaryExpr  `parser:"  'NOT' @@"`
	Sub        *WhereExpr  `parser:"| '(' @@ ')'"`
	Comparison *Comparison `parser:"| @@"`
}

type Comparison struct {
	Field string `parser:"@Ident"`

	IsNull *IsNullTest `parser:"(  @@"`
	Cmp    *BinaryTest `parser:" | @@"`
	Negate bool        `parser:" | @'NOT'?"`
	Like   *Quoted     `parser:"   ( 'LIKE' @String"`
	In     []*Literal  `parser:"   | 'IN' '(' @@ ( ',' @@ )* ')' ) )"`
}

type IsNullTest struct {
	Not bool `parser:"'IS' @'NOT'? 'NULL'"`
}

type BinaryTest struct {
	Op    string   `parser:"@Operator"`
	Value *Literal `parser:"@@"`
}

// Literal is a constant operand.
type Literal struct {
	Null  bool     `parser:"  @'NULL'"`
	Bool  *Boolean `parser:"| @( 'TRUE' | 'FALSE' )"`
	Float *float64 `parser:"| @Float"`
	Int   *int64   `parser:"| @Int"`
	Str   *Quoted  `parser:"| @String"`
}

// Boolean captures TRUE/FALSE keywords.
type Boolean bool

func (b *Boolean) Capture(values []string) error {
	*b = Boolean(strings.EqualFold(values[0], "TRUE"))
	return nil
}

// Quoted captures a quoted string token without its quotes.
type Quoted string

func (q *Quoted) Capture(values []string) error {
	s, _ := unquote(values[0])
	*q = Quoted(s)
	return nil
}

// Value converts the literal into a Value.
func (l *Literal) Value() Value {
	switch {
	case l == nil || l.Null:
		return Null()
	case l.Bool != nil:
		return Bool(bool(*l.Bool))
	case l.Float != nil:
		return Float(*l.Float)
	case l.Int != nil:
		return Int(*l.Int)
	case l.Str != nil:
		return Str(string(*l.Str))
	}
	return Null()
}

// ParseWhere parses a filter clause. Failures wrap ErrMalformedQuery.
func ParseWhere(clause string) (*WhereExpr, error) {
	q := strings.TrimSpace(clause)
	if q == "" {
		return nil, errors.Wrap(ErrMalformedQuery, "WHERE: empty clause")
	}
	expr, err := whereParser.ParseString("", q)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedQuery, "WHERE: %v", err)
	}
	return expr, nil
}

// MatchOptions control how string operands are compared.
type MatchOptions struct {
	CaseSensitive bool
	Trimmed       bool
}

// Match evaluates the clause against r. Comparisons on fields the row does
// not have are false.
func (e *WhereExpr) Match(r *Row, opts MatchOptions) bool {
	for _, and := range e.Or {
		if and.match(r, opts) {
			return true
		}
	}
	return false
}

func (a *AndExpr) match(r *Row, opts MatchOptions) bool {
	for _, u := range a.And {
		if !u.match(r, opts) {
			return false
		}
	}
	return true
}

func (u *UnaryExpr) match(r *Row, opts MatchOptions) bool {
	switch {
	case u.Not != nil:
		return !u.Not.match(r, opts)
	case u.Sub != nil:
		return u.Sub.Match(r, opts)
	case u.Comparison != nil:
		return u.Comparison.match(r, opts)
	}
	return false
}

func (c *Comparison) match(r *Row, opts MatchOptions) bool {
	f, ok := r.Field(c.Field)
	if !ok {
		return false
	}

	switch {
	case c.IsNull != nil:
		return f.IsNull() != c.IsNull.Not
	case c.Cmp != nil:
		lit := c.Cmp.Value.Value()
		if f.IsNull() || lit.IsNull() {
			return false
		}
		return applyOp(c.Cmp.Op, compareOperand(f, lit, opts))
	case c.Like != nil:
		if f.IsNull() {
			return false
		}
		s, p := normalize(f.String(), opts), normalize(string(*c.Like), opts)
		return likeMatch(s, p) != c.Negate
	case c.In != nil:
		if f.IsNull() {
			return false
		}
		found := false
		for _, l := range c.In {
			lit := l.Value()
			if !lit.IsNull() && compareOperand(f, lit, opts) == 0 {
				found = true
				break
			}
		}
		return found != c.Negate
	}
	return false
}

// compareOperand compares a field with a literal. Numbers compare
// numerically (numeric text included), everything else compares the field's
// formatted text with the literal's text under the string options.
func compareOperand(f *Field, lit Value, opts MatchOptions) int {
	v := f.Value
	if lit.IsNumber() {
		if n, ok := asNumber(v); ok {
			return compareNumbers(n, lit)
		}
	}
	if v.Kind == KindBool && lit.Kind == KindBool {
		return Compare(v, lit)
	}
	if v.IsNumber() && lit.Kind == KindString {
		if n, ok := asNumber(lit); ok {
			return compareNumbers(v, n)
		}
	}
	return strings.Compare(normalize(f.String(), opts), normalize(lit.String(), opts))
}

func normalize(s string, opts MatchOptions) string {
	if opts.Trimmed {
		s = strings.TrimSpace(s)
	}
	if !opts.CaseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

// likeMatch reports whether s matches a LIKE pattern where % matches any
// run of characters and _ matches exactly one.
func likeMatch(s, pattern string) bool {
	str, pat := []rune(s), []rune(pattern)
	si, pi := 0, 0
	star, mark := -1, 0
	for si < len(str) {
		switch {
		case pi < len(pat) && pat[pi] == '%':
			star = pi
			mark = si
			pi++
		case pi < len(pat) && (pat[pi] == '_' || pat[pi] == str[si]):
			si++
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}
	for pi < len(pat) && pat[pi] == '%' {
		pi++
	}
	return pi == len(pat)
}
