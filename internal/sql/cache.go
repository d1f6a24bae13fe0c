package sql

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultClauseCacheSize is the number of parsed filter clauses kept by
// the shared cache.
const DefaultClauseCacheSize = 256

// ClauseCache keeps recently parsed filter clauses so repeated filters skip
// the parser. It is safe for concurrent use.
type ClauseCache struct {
	lru *lru.Cache[string, *WhereExpr]
}

// NewClauseCache returns a cache holding up to size clauses. Sizes below 1
// fall back to DefaultClauseCacheSize.
func NewClauseCache(size int) *ClauseCache {
	if size < 1 {
		size = DefaultClauseCacheSize
	}
	c, err := lru.New[string, *WhereExpr](size)
	if err != nil {
		// only returned for non-positive sizes
		panic(err)
	}
	return &ClauseCache{lru: c}
}

// Parse returns the cached parse of clause, parsing and storing it on a miss.
// Parse errors are not cached.
func (c *ClauseCache) Parse(clause string) (*WhereExpr, error) {
	if expr, ok := c.lru.Get(clause); ok {
		return expr, nil
	}
	expr, err := ParseWhere(clause)
	if err != nil {
		return nil, err
	}
	c.lru.Add(clause, expr)
	return expr, nil
}

// Len returns the number of cached clauses.
func (c *ClauseCache) Len() int { return c.lru.Len() }

// Purge drops every cached clause.
func (c *ClauseCache) Purge() { c.lru.Purge() }

var clauses = NewClauseCache(DefaultClauseCacheSize)

// ParseWhereCached parses clause through the shared clause cache.
func ParseWhereCached(clause string) (*WhereExpr, error) {
	return clauses.Parse(clause)
}

// SetClauseCacheSize replaces the shared clause cache with one of the given size.
func SetClauseCacheSize(size int) {
	clauses = NewClauseCache(size)
}
