package index

import (
	"testing"

	"github.com/pkg/errors"

	"goRowSet/internal/sql"
)

type rows []*sql.Row

func (r rows) Len() int { return len(r) }
func (r rows) At(i int) *sql.Row { return r[i] }

func named(name string) *sql.Row {
	r := sql.NewRow()
	r.Set("name", sql.Str(name))
	return r
}

func TestBuild_RoundTrip(t *testing.T) {
	src := rows{named("a"), named("b"), named("c")}
	idx := Build(src)

	if idx.Len() != 3 {
		t.Fatalf("expected 3 keys, got %d", idx.Len())
	}
	for i, r := range src {
		if r.KeyString() == "" {
			t.Fatalf("row %d: expected derived key", i)
		}
		pos, err := idx.Lookup(r.KeyString())
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if pos != i {
			t.Fatalf("expected position %d, got %d", i, pos)
		}
	}
}

func TestBuild_DuplicateRows(t *testing.T) {
	src := rows{named("dup"), named("dup")}
	Build(src)

	k0, k1 := src[0].KeyString(), src[1].KeyString()
	if k0 == k1 {
		t.Fatalf("expected distinct keys for duplicate rows")
	}
	if k1 != k0+"-1" {
		t.Fatalf("expected %q, got %q", k0+"-1", k1)
	}
}

func TestBuild_KeepsExistingKeys(t *testing.T) {
	r := named("a")
	r.SetKeyString("K1")
	idx := Build(rows{named("x"), r})

	pos, err := idx.Lookup("K1")
	if err != nil || pos != 1 {
		t.Fatalf("expected K1 at 1, got %d, %v", pos, err)
	}
}

func TestLookup_NotFound(t *testing.T) {
	idx := Build(rows{named("a")})
	if _, err := idx.Lookup("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var none *Index
	if _, err := none.Lookup("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on nil index, got %v", err)
	}
}

func TestAppend(t *testing.T) {
	src := rows{named("a")}
	idx := Build(src)

	r := named("b")
	key := idx.Append(r, 1)
	pos, err := idx.Lookup(key)
	if err != nil || pos != 1 {
		t.Fatalf("expected appended row at 1, got %d, %v", pos, err)
	}
}

func TestContentKey_Stable(t *testing.T) {
	if ContentKey(named("a")) != ContentKey(named("a")) {
		t.Fatalf("expected stable content key")
	}
	if ContentKey(named("a")) == ContentKey(named("b")) {
		t.Fatalf("expected different content keys")
	}
}

func TestContentKey_HashesRowTextOnly(t *testing.T) {
	if got := ContentKey(named("a")); got != "a3749409-6063-3479-a651-411e389d894d" {
		t.Fatalf("unexpected key for {name=a}: %s", got)
	}
}
