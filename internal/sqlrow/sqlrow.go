// Package sqlrow provides a thin cursor abstraction over a driver
// result set, matching the original SQLRow/SQLResult contract: column
// access by index returning optional text, row iteration, and a
// stable total-rows count.
package sqlrow

import "strconv"

// Row is a single decoded row. Column access returns either the raw
// column text or reports the column as NULL.
type Row interface {
	// Col returns the column text at index, or ("", false) if NULL.
	Col(index int) (string, bool)
}

// Result is a result set: iterate with Next, access the total row
// count with NumRows (which may be computed lazily but must be
// stable once observed).
type Result interface {
	// Next returns the next row, or (nil, false) at end of set.
	Next() (Row, bool)
	// NumRows reports the total number of rows in the set.
	NumRows() uint64
	// Close releases resources held by the result set. Rows returned
	// by Next do not outlive Close.
	Close() error
}

// ColString returns the column value at index, or def if the column is
// NULL.
func ColString(r Row, index int, def string) string {
	v, ok := r.Col(index)
	if !ok {
		return def
	}
	return v
}

// ColInt returns the column value at index parsed as an int, or def if
// the column is NULL or not parseable.
func ColInt(r Row, index int, def int) int {
	v, ok := r.Col(index)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// ColBool returns the column value at index interpreted as a boolean
// ("1" is true, any other value is false, NULL is def).
func ColBool(r Row, index int, def bool) bool {
	v, ok := r.Col(index)
	if !ok {
		return def
	}
	return v == "1"
}

// ColIntPtr returns a pointer to the column value at index, or nil if
// the column is NULL. Used for nullable foreign keys like RefID.
func ColIntPtr(r Row, index int) *int {
	v, ok := r.Col(index)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
