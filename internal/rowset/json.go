package rowset

import (
	"bytes"
	"encoding/base64"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"goRowSet/internal/sql"
)

const (
	metaKey            = "meta"
	metaColumnType     = "ColumnType"
	metaColumnTypeName = "ColumnTypeName"
)

type jsonOptions struct {
	meta        bool
	indexColumn string
	trim        bool
}

// JSONOption configures ToJSON.
type JSONOption func(*jsonOptions)

// WithMeta adds a "meta" object to the first row describing every field's
// type and attributes, so FromJSON can restore them.
func WithMeta() JSONOption {
	return func(o *jsonOptions) { o.meta = true }
}

// WithIndexColumn builds the index and writes each row's key string as an
// extra field with the given name.
func WithIndexColumn(name string) JSONOption {
	return func(o *jsonOptions) { o.indexColumn = name }
}

// WithTrimmedStrings trims surrounding whitespace from text values.
func WithTrimmedStrings() JSONOption {
	return func(o *jsonOptions) { o.trim = true }
}

// ToJSON encodes the rows as an array of objects with fields in row order.
func (rs *RowSet) ToJSON(opts ...JSONOption) ([]byte, error) {
	var o jsonOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.indexColumn != "" {
		rs.BuildIndex()
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range rs.rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		var meta *RowSet
		if o.meta && i == 0 {
			meta = rs
		}
		if err := writeRow(&buf, r, meta, o); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writeRow(buf *bytes.Buffer, r *sql.Row, meta *RowSet, o jsonOptions) error {
	buf.WriteByte('{')
	for i, name := range r.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		f, _ := r.Field(name)
		writeString(buf, name)
		buf.WriteByte(':')
		if err := writeValue(buf, f.Type, f.Value, o); err != nil {
			return errors.Wrapf(err, "field %q", name)
		}
	}
	if o.indexColumn != "" {
		if r.Len() > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, o.indexColumn)
		buf.WriteByte(':')
		writeString(buf, r.KeyString())
	}
	if meta != nil {
		if r.Len() > 0 || o.indexColumn != "" {
			buf.WriteByte(',')
		}
		writeString(buf, metaKey)
		buf.WriteByte(':')
		writeMeta(buf, r, meta)
	}
	buf.WriteByte('}')
	return nil
}

func writeMeta(buf *bytes.Buffer, r *sql.Row, rs *RowSet) {
	buf.WriteByte('{')
	for i, name := range r.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		f, _ := r.Field(name)
		t := rs.columnType(name)
		if t == sql.TypeUnknown {
			t = f.Type
		}

		attrs := &sql.Attributes{}
		attrs.Set(metaColumnType, strconv.Itoa(int(t)))
		attrs.Set(metaColumnTypeName, t.Name())
		if c := rs.ColumnIndex(name); c >= 0 {
			for _, k := range rs.columns[c].Attributes.Keys() {
				attrs.Set(k, rs.columns[c].Attributes.Get(k))
			}
		}
		for _, k := range f.Attributes().Keys() {
			attrs.Set(k, f.Attribute(k))
		}

		writeString(buf, name)
		buf.WriteString(":{")
		for j, k := range attrs.Keys() {
			if j > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, k)
			buf.WriteByte(':')
			writeString(buf, attrs.Get(k))
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
}

func writeValue(buf *bytes.Buffer, t sql.TypeCode, v sql.Value, o jsonOptions) error {
	switch v.Kind {
	case sql.KindNull:
		buf.WriteString("null")
	case sql.KindString:
		s := v.S
		if o.trim {
			s = strings.TrimSpace(s)
		}
		writeString(buf, s)
	case sql.KindInt:
		buf.WriteString(strconv.FormatInt(v.I64, 10))
	case sql.KindFloat:
		if math.IsNaN(v.F64) || math.IsInf(v.F64, 0) {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(strconv.FormatFloat(v.F64, 'g', -1, 64))
	case sql.KindDecimal:
		buf.WriteString(v.Dec.String())
	case sql.KindBool:
		buf.WriteString(strconv.FormatBool(v.B))
	case sql.KindTime:
		writeString(buf, v.Format(t))
	case sql.KindBytes:
		writeString(buf, base64.StdEncoding.EncodeToString(v.Raw))
	case sql.KindRow:
		if v.Row == nil {
			buf.WriteString("null")
			return nil
		}
		return writeRow(buf, v.Row, nil, jsonOptions{trim: o.trim})
	case sql.KindTable:
		buf.WriteByte('[')
		if v.Table != nil {
			for i := 0; i < v.Table.Len(); i++ {
				if i > 0 {
					buf.WriteByte(',')
				}
				if err := writeRow(buf, v.Table.At(i), nil, jsonOptions{trim: o.trim}); err != nil {
					return err
				}
			}
		}
		buf.WriteByte(']')
	case sql.KindList:
		buf.WriteByte('[')
		for i, e := range v.List {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, sql.DefaultType(e.Kind), e, o); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return errors.Errorf("JSON: unsupported value kind %v", v.Kind)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

// node is a decoded JSON value with object key order preserved.
type node struct {
	obj    bool
	arr    bool
	keys   []string
	items  []*node
	scalar any
}

// FromJSON decodes an array of objects (or a single object) into a row set.
// Field order follows the input. A "meta" object in a row restores field
// types and attributes for that row and the rows after it; without one,
// types are inferred from the values.
func FromJSON(data []byte) (*RowSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(nil), nil
	}
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := readNode(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrap(err, "JSON")
	}

	rs := New(nil)
	switch {
	case root.arr:
		var meta *node
		for i, item := range root.items {
			if !item.obj {
				return nil, errors.Errorf("JSON: element %d is not an object", i)
			}
			r, m, err := rowFromNode(item, meta)
			if err != nil {
				return nil, err
			}
			meta = m
			rs.Add(r)
		}
	case root.obj:
		r, _, err := rowFromNode(root, nil)
		if err != nil {
			return nil, err
		}
		rs.Add(r)
	default:
		return nil, errors.New("JSON: expected an array of objects")
	}
	return rs, nil
}

func readNode(dec *json.Decoder) (*node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &node{obj: true}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, errors.Errorf("object key %v is not a string", kt)
				}
				child, err := readNode(dec)
				if err != nil {
					return nil, err
				}
				n.keys = append(n.keys, key)
				n.items = append(n.items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &node{arr: true}
			for dec.More() {
				child, err := readNode(dec)
				if err != nil {
					return nil, err
				}
				n.items = append(n.items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, errors.Errorf("unexpected delimiter %v", t)
	}
	return &node{scalar: tok}, nil
}

// rowFromNode decodes one object. The row's own "meta" object wins over
// the inherited one; the meta in effect is returned for the next row.
func rowFromNode(n *node, inherited *node) (*sql.Row, *node, error) {
	meta := inherited
	own := -1
	for i, k := range n.keys {
		if k == metaKey && n.items[i].obj {
			meta = n.items[i]
			own = i
		}
	}

	r := sql.NewRow()
	for i, name := range n.keys {
		child := n.items[i]
		if i == own {
			continue
		}

		fieldMeta := lookupMeta(meta, name)
		if fieldMeta == nil {
			t, v, err := inferValue(child)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "JSON: field %q", name)
			}
			r.SetField(name, t, v)
			continue
		}

		t := sql.TypeUnknown
		attrs := &sql.Attributes{}
		for j, k := range fieldMeta.keys {
			s := scalarString(fieldMeta.items[j])
			switch k {
			case metaColumnType:
				code, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil {
					return nil, nil, errors.Wrapf(sql.ErrUnknownColumnType, "JSON: field %q: %q", name, s)
				}
				if t, err = sql.LookupType(code); err != nil {
					return nil, nil, errors.Wrapf(err, "JSON: field %q", name)
				}
			case metaColumnTypeName:
			default:
				attrs.Set(k, s)
			}
		}

		v, err := typedValue(child, t)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "JSON: field %q", name)
		}
		f := sql.NewField(t, v)
		for _, k := range attrs.Keys() {
			f.SetAttribute(k, attrs.Get(k))
		}
		r.PutField(name, f)
	}
	return r, meta, nil
}

func lookupMeta(meta *node, name string) *node {
	if meta == nil {
		return nil
	}
	for i, k := range meta.keys {
		if k == name && meta.items[i].obj {
			return meta.items[i]
		}
	}
	return nil
}

func scalarString(n *node) string {
	if n.obj || n.arr || n.scalar == nil {
		return ""
	}
	switch s := n.scalar.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	}
	return cast.ToString(n.scalar)
}

// inferValue picks a type from the JSON value alone.
func inferValue(n *node) (sql.TypeCode, sql.Value, error) {
	switch {
	case n.obj:
		r, _, err := rowFromNode(n, nil)
		if err != nil {
			return sql.TypeUnknown, sql.Value{}, err
		}
		return sql.TypeNestedRow, sql.NestedRow(r), nil
	case n.arr:
		return inferArray(n)
	}

	switch s := n.scalar.(type) {
	case nil:
		return sql.TypeNull, sql.Null(), nil
	case string:
		return sql.TypeVarchar, sql.Str(s), nil
	case bool:
		return sql.TypeBoolean, sql.Bool(s), nil
	case json.Number:
		if i, err := s.Int64(); err == nil {
			return sql.TypeBigInt, sql.Int(i), nil
		}
		f, err := s.Float64()
		if err != nil {
			return sql.TypeUnknown, sql.Value{}, err
		}
		return sql.TypeDouble, sql.Float(f), nil
	}
	return sql.TypeUnknown, sql.Value{}, errors.Errorf("unsupported JSON value %v", n.scalar)
}

// inferArray turns arrays of objects into nested row sets and anything else
// into value lists.
func inferArray(n *node) (sql.TypeCode, sql.Value, error) {
	if len(n.items) > 0 && n.items[0].obj {
		t, err := tableFromNode(n)
		if err != nil {
			return sql.TypeUnknown, sql.Value{}, err
		}
		return sql.TypeNestedRowSet, sql.NestedTable(t), nil
	}
	list := make([]sql.Value, len(n.items))
	for i, item := range n.items {
		_, v, err := inferValue(item)
		if err != nil {
			return sql.TypeUnknown, sql.Value{}, err
		}
		list[i] = v
	}
	return sql.TypeValueList, sql.List(list...), nil
}

func tableFromNode(n *node) (*RowSet, error) {
	rs := New(nil)
	for _, item := range n.items {
		if !item.obj {
			return nil, errors.New("mixed array of objects and values")
		}
		r, _, err := rowFromNode(item, nil)
		if err != nil {
			return nil, err
		}
		rs.Add(r)
	}
	return rs, nil
}

// typedValue converts a JSON value to type t. An empty string for a
// numeric or boolean type is that type's zero value.
func typedValue(n *node, t sql.TypeCode) (sql.Value, error) {
	switch t {
	case sql.TypeNestedRow:
		if !n.obj {
			break
		}
		r, _, err := rowFromNode(n, nil)
		if err != nil {
			return sql.Value{}, err
		}
		return sql.NestedRow(r), nil
	case sql.TypeNestedRowSet:
		if !n.arr {
			break
		}
		rs, err := tableFromNode(n)
		if err != nil {
			return sql.Value{}, err
		}
		return sql.NestedTable(rs), nil
	case sql.TypeValueList, sql.TypeArray:
		if !n.arr {
			break
		}
		_, v, err := inferArray(n)
		return v, err
	}

	if n.obj || n.arr {
		_, v, err := inferValue(n)
		return v, err
	}
	if n.scalar == nil {
		return sql.Null(), nil
	}

	s := scalarString(n)
	switch {
	case t.IsText():
		return sql.Str(s), nil
	case t.IsBinary():
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return sql.Bytes([]byte(s)), nil
		}
		return sql.Bytes(raw), nil
	case s == "" && (t.IsNumeric() || t == sql.TypeBit || t == sql.TypeBoolean):
		return zeroValue(t), nil
	}
	return sql.ParseValue(s, t)
}

func zeroValue(t sql.TypeCode) sql.Value {
	switch {
	case t.IsInteger():
		return sql.Int(0)
	case t == sql.TypeDecimal || t == sql.TypeNumeric:
		return sql.Dec(decimal.Zero)
	case t == sql.TypeBit || t == sql.TypeBoolean:
		return sql.Bool(false)
	}
	return sql.Float(0)
}
