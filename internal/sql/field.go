package sql

// Attributes is an insertion-ordered set of string key/value pairs attached
// to a field or column (display label, editability flag, string format...).
type Attributes struct {
	keys   []string
	values map[string]string
}

// Get returns the attribute value, or "" when it is not set.
func (a *Attributes) Get(key string) string {
	if a == nil {
		return ""
	}
	return a.values[key]
}

// Lookup returns the attribute value and whether it is set.
func (a *Attributes) Lookup(key string) (string, bool) {
	if a == nil {
		return "", false
	}
	v, ok := a.values[key]
	return v, ok
}

// Set adds or replaces an attribute. New keys keep their insertion position.
func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Delete removes an attribute.
func (a *Attributes) Delete(key string) {
	if a == nil {
		return
	}
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the attribute names in insertion order.
func (a *Attributes) Keys() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.keys...)
}

func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Clone returns an independent copy.
func (a *Attributes) Clone() *Attributes {
	out := &Attributes{}
	if a == nil {
		return out
	}
	for _, k := range a.keys {
		out.Set(k, a.values[k])
	}
	return out
}

// Field is a single typed value plus its attributes.
type Field struct {
	Type  TypeCode
	Value Value

	attrs *Attributes
}

// NewField creates a field of the given type.
func NewField(t TypeCode, v Value) *Field {
	return &Field{Type: t, Value: v}
}

// Attributes returns the field's attribute set, creating it on first use.
func (f *Field) Attributes() *Attributes {
	if f.attrs == nil {
		f.attrs = &Attributes{}
	}
	return f.attrs
}

// Attribute returns a single attribute, or "" when it is not set.
func (f *Field) Attribute(name string) string {
	return f.attrs.Get(name)
}

// SetAttribute adds or replaces a single attribute.
func (f *Field) SetAttribute(name, value string) {
	f.Attributes().Set(name, value)
}

// IsNull reports whether the field holds no value.
func (f *Field) IsNull() bool { return f.Value.IsNull() }

// String returns the field value formatted for its type.
func (f *Field) String() string { return f.Value.Format(f.Type) }

// Equal reports type and value equality. Attributes are ignored.
func (f *Field) Equal(o *Field) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Type == o.Type && f.Value.Equal(o.Value)
}

// Clone deep-copies the value and the attributes.
func (f *Field) Clone() *Field {
	out := &Field{Type: f.Type, Value: f.Value.clone()}
	if f.attrs != nil {
		out.attrs = f.attrs.Clone()
	}
	return out
}
