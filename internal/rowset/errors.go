package rowset

import (
	"github.com/pkg/errors"

	"goRowSet/internal/sql"
)

var (
	// ErrNotIndexed is returned by key-based access before BuildIndex.
	ErrNotIndexed = errors.New("row set is not indexed")

	// ErrKeyNotFound is returned by key-based access for absent keys.
	ErrKeyNotFound = errors.New("entry not found")

	// ErrInvalidSortMode is returned for aggregation sort codes outside SortMode.
	ErrInvalidSortMode = errors.New("invalid sort mode")

	// ErrInvalidPrecisionScale is returned when precision would drop below scale.
	ErrInvalidPrecisionScale = errors.New("precision must not be smaller than scale")

	// ErrInvalidNullable is returned for nullability codes other than 0, 1 and 2.
	ErrInvalidNullable = errors.New("invalid nullable code")

	// ErrColumnNotFound is returned for unknown column names or indexes.
	ErrColumnNotFound = errors.New("column not found")

	// ErrOutOfRange is returned for row positions outside the row sequence.
	ErrOutOfRange = errors.New("row position out of range")

	// Re-exported from the value model so callers only need this package.
	ErrUnknownColumnType  = sql.ErrUnknownColumnType
	ErrMalformedQuery     = sql.ErrMalformedQuery
	ErrMalformedCondition = sql.ErrMalformedCondition
	ErrFieldNotFound      = sql.ErrFieldNotFound
)
