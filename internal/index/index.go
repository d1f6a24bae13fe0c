// Package index maps row key strings to positions in a row sequence.
//
// An Index is only valid for the sequence it was built from. It supports
// appends; any other change to the sequence requires a fresh Build.
package index

import (
	"crypto/md5"
	"strconv"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"goRowSet/internal/sql"
)

// ErrNotFound is returned by Lookup for keys that are not indexed.
var ErrNotFound = errors.New("key not found")

const (
	minEstimate       = 1024
	falsePositiveRate = 0.01
)

// Source is the row sequence an index is built over.
type Source interface {
	Len() int
	At(i int) *sql.Row
}

// Index is a key string to position mapping with a bloom filter in front
// of it for fast negative lookups.
type Index struct {
	positions map[string]int
	filter    *bloom.BloomFilter
}

// Build indexes every row of src in order. Rows without a key string get a
// content hash; a hash already present in the index is suffixed with
// "-<position>". Derived keys are stored on the rows.
func Build(src Source) *Index {
	n := src.Len()
	idx := &Index{
		positions: make(map[string]int, n),
		filter:    bloom.NewWithEstimates(uint(max(n*2, minEstimate)), falsePositiveRate),
	}
	for i := 0; i < n; i++ {
		idx.Append(src.At(i), i)
	}
	return idx
}

// Append indexes r at position pos, deriving its key as Build does.
// It returns the key used.
func (x *Index) Append(r *sql.Row, pos int) string {
	key := r.KeyString()
	if key == "" {
		key = ContentKey(r)
		if _, dup := x.positions[key]; dup {
			key += "-" + strconv.Itoa(pos)
		}
		r.SetKeyString(key)
	}
	x.positions[key] = pos
	x.filter.AddString(key)
	return key
}

// Lookup returns the position recorded for key.
func (x *Index) Lookup(key string) (int, error) {
	if x == nil {
		return -1, errors.Wrapf(ErrNotFound, "key %q", key)
	}
	if !x.filter.TestString(key) {
		return -1, errors.Wrapf(ErrNotFound, "key %q", key)
	}
	pos, ok := x.positions[key]
	if !ok {
		return -1, errors.Wrapf(ErrNotFound, "key %q", key)
	}
	return pos, nil
}

// Len returns the number of indexed keys.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.positions)
}

// ContentKey derives a key from the row's canonical string form as a
// name-based (version 3, MD5) UUID. The digest covers the row text alone,
// with no namespace prefix, so uuid.NewMD5 does not apply.
func ContentKey(r *sql.Row) string {
	sum := md5.Sum([]byte(r.String()))
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80
	return uuid.UUID(sum).String()
}
