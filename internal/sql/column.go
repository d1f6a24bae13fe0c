package sql

// Nullability of a column.
const (
	NoNulls         = 0
	Nullable        = 1
	NullableUnknown = 2
)

// Column is the descriptor of one column of a row set.
type Column struct {
	Name     string
	Label    string
	Type     TypeCode
	TypeName string

	Precision   int
	Scale       int
	DisplaySize int
	Nullable    int

	AutoIncrement bool
	ReadOnly      bool
	Writable      bool
	IsKey         bool

	CatalogName string
	SchemaName  string
	TableName   string

	Attributes *Attributes
}

// NewColumn returns a nullable-unknown, writable column of type t.
func NewColumn(name string, t TypeCode) Column {
	return Column{
		Name:     name,
		Label:    name,
		Type:     t,
		TypeName: t.Name(),
		Nullable: NullableUnknown,
		Writable: true,
	}
}

// DisplayLabel returns the label, falling back to the name.
func (c Column) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

// Clone copies the descriptor including its attributes.
func (c Column) Clone() Column {
	if c.Attributes != nil {
		c.Attributes = c.Attributes.Clone()
	}
	return c
}
