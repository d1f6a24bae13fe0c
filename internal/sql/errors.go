package sql

import "github.com/pkg/errors"

var (
	// ErrUnknownColumnType is returned for type codes outside the TypeCode enumeration.
	ErrUnknownColumnType = errors.New("unknown column type")

	// ErrFieldNotFound is returned when a row has no field with the requested name.
	ErrFieldNotFound = errors.New("field not found")

	// ErrNotConvertible is returned when a field value cannot be coerced to the
	// requested representation.
	ErrNotConvertible = errors.New("value not convertible")

	// ErrMalformedQuery is returned when a query clause cannot be parsed.
	ErrMalformedQuery = errors.New("malformed query clause")

	// ErrMalformedCondition is returned when a "cond:" or "regex:" filter
	// expression cannot be parsed.
	ErrMalformedCondition = errors.New("malformed condition")
)
