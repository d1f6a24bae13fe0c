package sql

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

func TestRow_SetKeepsOrderAndType(t *testing.T) {
	r := NewRow()
	r.SetField("id", TypeBigInt, Int(1))
	r.Set("name", Str("X"))
	r.Set("id", Int(2))

	names := r.Names()
	if len(names) != 2 || names[0] != "id" || names[1] != "name" {
		t.Fatalf("unexpected names %v", names)
	}
	if r.Type("id") != TypeBigInt {
		t.Fatalf("expected id to keep BIGINT, got %v", r.Type("id"))
	}
	if r.Type("name") != TypeVarchar {
		t.Fatalf("expected inferred VARCHAR, got %v", r.Type("name"))
	}

	// a string does not fit an integer column, so the type follows the value
	r.Set("id", Str("two"))
	if r.Type("id") != TypeVarchar {
		t.Fatalf("expected id to become VARCHAR, got %v", r.Type("id"))
	}
}

func TestRow_CloneIsDeep(t *testing.T) {
	r := NewRow()
	r.SetID(7)
	r.Set("blob", Bytes([]byte("abc")))
	r.AppendKey([]byte{1, 2})
	if err := r.SetAttribute("blob", "label", "Blob"); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}

	c := r.Clone()
	if !c.Equal(r) || c.ID() != 7 || c.KeyString() != r.KeyString() {
		t.Fatalf("clone differs from original")
	}

	f, _ := c.Field("blob")
	f.Value.Raw[0] = 'z'
	f.SetAttribute("label", "changed")
	c.AppendKey([]byte{3})

	if r.Attribute("blob", "label") != "Blob" {
		t.Fatalf("attribute change leaked into original")
	}
	v, _ := r.Value("blob")
	if string(v.Raw) != "abc" {
		t.Fatalf("byte change leaked into original: %q", v.Raw)
	}
	if len(r.Key()) != 2 {
		t.Fatalf("key change leaked into original")
	}
}

func TestRow_Merge(t *testing.T) {
	target := NewRow()
	target.Set("id", Int(1))
	target.Set("name", Str("X"))

	src := NewRow()
	src.Set("id", Int(1))
	src.Set("name", Str("Y"))
	src.Set("extra", Int(5))

	keep := target.Clone()
	keep.Merge(src, false)
	if s, _ := keep.AsString("name"); s != "X" {
		t.Fatalf("expected name to stay X without overwrite, got %q", s)
	}

	target.Merge(src, true)
	if got := target.String(); got != "{id=1, name=Y, extra=5}" {
		t.Fatalf("unexpected merged row %s", got)
	}
}

func TestRow_EqualIgnoresOrderAndAttributes(t *testing.T) {
	a := NewRow()
	a.Set("x", Int(1))
	a.Set("y", Str("b"))

	b := NewRow()
	b.Set("y", Str("b"))
	b.Set("x", Int(1))
	_ = b.SetAttribute("x", "label", "X")

	if !a.Equal(b) {
		t.Fatalf("expected rows to be equal")
	}
	b.Set("x", Int(2))
	if a.Equal(b) {
		t.Fatalf("expected rows to differ")
	}
}

func TestRow_AsNumber(t *testing.T) {
	r := NewRow()
	r.Set("i", Int(3))
	r.Set("d", Dec(decimal.RequireFromString("2.5")))
	r.Set("s", Str(" 4.25 "))
	r.Set("bad", Str("abc"))
	r.Set("nil", Null())

	for name, want := range map[string]float64{"i": 3, "d": 2.5, "s": 4.25} {
		got, err := r.AsNumber(name)
		if err != nil {
			t.Fatalf("AsNumber(%s) failed: %v", name, err)
		}
		if got != want {
			t.Fatalf("AsNumber(%s): expected %v, got %v", name, want, got)
		}
	}

	if _, err := r.AsNumber("bad"); !errors.Is(err, ErrNotConvertible) {
		t.Fatalf("expected ErrNotConvertible, got %v", err)
	}
	if _, err := r.AsNumber("nil"); !errors.Is(err, ErrNotConvertible) {
		t.Fatalf("expected ErrNotConvertible for null, got %v", err)
	}
	if _, err := r.AsNumber("nope"); !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestRow_KeyString(t *testing.T) {
	r := NewRow()
	if r.KeyString() != "" {
		t.Fatalf("expected empty key string")
	}
	r.AppendKey([]byte{0xab, 0x01})
	if r.KeyString() != "ab01" {
		t.Fatalf("expected hex key, got %q", r.KeyString())
	}
	r.SetKeyString("custom")
	if r.KeyString() != "custom" {
		t.Fatalf("expected assigned key string, got %q", r.KeyString())
	}
}

func TestAttributes_Order(t *testing.T) {
	var a Attributes
	a.Set("b", "1")
	a.Set("a", "2")
	a.Set("b", "3")
	keys := a.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" || a.Get("b") != "3" {
		t.Fatalf("unexpected attributes %v", keys)
	}
	a.Delete("b")
	if a.Len() != 1 || a.Get("b") != "" {
		t.Fatalf("delete failed")
	}
}

func TestLookupType(t *testing.T) {
	tc, err := LookupType(12)
	if err != nil || tc != TypeVarchar || tc.Name() != "VARCHAR" {
		t.Fatalf("unexpected %v, %v", tc, err)
	}
	if _, err := LookupType(4242); !errors.Is(err, ErrUnknownColumnType) {
		t.Fatalf("expected ErrUnknownColumnType, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	if Compare(Null(), Int(1)) >= 0 {
		t.Fatalf("null must sort first")
	}
	if Compare(Int(9), Float(10.5)) >= 0 {
		t.Fatalf("expected numeric comparison")
	}
	if Compare(Dec(decimal.RequireFromString("1.10")), Int(1)) <= 0 {
		t.Fatalf("expected 1.10 > 1")
	}
	if Compare(Str("b"), Str("a")) <= 0 {
		t.Fatalf("expected b > a")
	}
}
