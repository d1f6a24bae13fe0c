package sql

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// GroupSentinel replaces group and label values that cannot be extracted.
const GroupSentinel = "(-)"

// Row is one record: an ordered mapping from field name to Field, plus the
// row id assigned by its container and an optional row key.
type Row struct {
	names  []string
	fields map[string]*Field

	id     int
	key    []byte
	keyStr string
}

// NewRow returns an empty row with no assigned id.
func NewRow() *Row {
	return &Row{fields: make(map[string]*Field), id: -1}
}

// ID returns the row identifier assigned on insertion, or -1.
func (r *Row) ID() int { return r.id }

// SetID sets the row identifier.
func (r *Row) SetID(id int) { r.id = id }

// Len returns the number of fields.
func (r *Row) Len() int { return len(r.names) }

// Names returns the field names in insertion order.
func (r *Row) Names() []string {
	return append([]string(nil), r.names...)
}

// Has reports whether the row has a field with the given name.
func (r *Row) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Field returns the named field.
func (r *Row) Field(name string) (*Field, bool) {
	f, ok := r.fields[name]
	return f, ok
}

// Value returns the value of the named field.
func (r *Row) Value(name string) (Value, error) {
	f, ok := r.fields[name]
	if !ok {
		return Value{}, errors.Wrapf(ErrFieldNotFound, "field %q", name)
	}
	return f.Value, nil
}

// Type returns the declared type of the named field, or TypeUnknown.
func (r *Row) Type(name string) TypeCode {
	if f, ok := r.fields[name]; ok {
		return f.Type
	}
	return TypeUnknown
}

// Set stores a value. A new field gets the default type for the value's
// kind; an existing field keeps its type if it can hold the value.
func (r *Row) Set(name string, v Value) {
	if f, ok := r.fields[name]; ok {
		if !f.Type.Accepts(v.Kind) {
			f.Type = DefaultType(v.Kind)
		}
		f.Value = v
		return
	}
	r.put(name, &Field{Type: DefaultType(v.Kind), Value: v})
}

// SetField stores a value with an explicit type. Existing attributes are kept.
func (r *Row) SetField(name string, t TypeCode, v Value) {
	if f, ok := r.fields[name]; ok {
		f.Type = t
		f.Value = v
		return
	}
	r.put(name, &Field{Type: t, Value: v})
}

// PutField stores f under name, replacing any existing field.
func (r *Row) PutField(name string, f *Field) {
	if _, ok := r.fields[name]; ok {
		r.fields[name] = f
		return
	}
	r.put(name, f)
}

func (r *Row) put(name string, f *Field) {
	if r.fields == nil {
		r.fields = make(map[string]*Field)
	}
	r.names = append(r.names, name)
	r.fields[name] = f
}

// Remove deletes a field. It is a no-op for unknown names.
func (r *Row) Remove(name string) {
	if _, ok := r.fields[name]; !ok {
		return
	}
	delete(r.fields, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
}

// Attribute returns a field attribute, or "" when the field or attribute is missing.
func (r *Row) Attribute(field, name string) string {
	f, ok := r.fields[field]
	if !ok {
		return ""
	}
	return f.Attribute(name)
}

// SetAttribute sets a field attribute.
func (r *Row) SetAttribute(field, name, value string) error {
	f, ok := r.fields[field]
	if !ok {
		return errors.Wrapf(ErrFieldNotFound, "set attribute %q on field %q", name, field)
	}
	f.SetAttribute(name, value)
	return nil
}

// Key returns the row key bytes.
func (r *Row) Key() []byte { return r.key }

// AppendKey appends key material to the row key. Existing key bytes are kept.
func (r *Row) AppendKey(b []byte) {
	if len(b) == 0 {
		return
	}
	r.key = append(r.key, b...)
}

// KeyString returns the string form of the row key: the externally assigned
// string if there is one, otherwise the hex form of the key bytes.
func (r *Row) KeyString() string {
	if r.keyStr != "" {
		return r.keyStr
	}
	if len(r.key) > 0 {
		return hex.EncodeToString(r.key)
	}
	return ""
}

// SetKeyString assigns the string form of the row key.
func (r *Row) SetKeyString(s string) { r.keyStr = s }

// Equal reports whether both rows have the same field names with equal
// types and values. Field order, ids and keys are ignored.
func (r *Row) Equal(o *Row) bool {
	if r == nil || o == nil {
		return r == o
	}
	if len(r.names) != len(o.names) {
		return false
	}
	for name, f := range r.fields {
		of, ok := o.fields[name]
		if !ok || !f.Equal(of) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy: values, attributes, id and key are duplicated.
func (r *Row) Clone() *Row {
	out := &Row{
		names:  append([]string(nil), r.names...),
		fields: make(map[string]*Field, len(r.fields)),
		id:     r.id,
		keyStr: r.keyStr,
	}
	if r.key != nil {
		out.key = append([]byte(nil), r.key...)
	}
	for name, f := range r.fields {
		out.fields[name] = f.Clone()
	}
	return out
}

// Merge copies the fields of o into r. Fields already present in r are only
// replaced when overwrite is true.
func (r *Row) Merge(o *Row, overwrite bool) {
	for _, name := range o.names {
		if r.Has(name) && !overwrite {
			continue
		}
		r.PutField(name, o.fields[name].Clone())
	}
}

// AsString returns the named field as text.
func (r *Row) AsString(name string) (string, error) {
	f, ok := r.fields[name]
	if !ok {
		return "", errors.Wrapf(ErrFieldNotFound, "field %q", name)
	}
	return f.String(), nil
}

// AsNumber coerces the named field to a float64.
func (r *Row) AsNumber(name string) (float64, error) {
	f, ok := r.fields[name]
	if !ok {
		return 0, errors.Wrapf(ErrFieldNotFound, "field %q", name)
	}
	switch f.Value.Kind {
	case KindNull:
		return 0, errors.Wrapf(ErrNotConvertible, "field %q is null", name)
	case KindDecimal:
		return f.Value.Dec.InexactFloat64(), nil
	case KindString:
		n, err := cast.ToFloat64E(strings.TrimSpace(f.Value.S))
		if err != nil {
			return 0, errors.Wrapf(ErrNotConvertible, "field %q: %v", name, err)
		}
		return n, nil
	}
	n, err := cast.ToFloat64E(f.Value.Native())
	if err != nil {
		return 0, errors.Wrapf(ErrNotConvertible, "field %q: %v", name, err)
	}
	return n, nil
}

// String renders the row as {name=value, ...} in field order. Nulls are
// written as "null" so they differ from empty strings.
func (r *Row) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		f := r.fields[name]
		sb.WriteString(name)
		sb.WriteByte('=')
		if f.IsNull() {
			sb.WriteString("null")
		} else {
			sb.WriteString(f.String())
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
