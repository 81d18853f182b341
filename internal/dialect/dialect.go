// Package dialect provides the SQL-flavor-specific quoting and
// fragment-assembly contract the persistence core consumes. One
// codebase can target multiple SQL dialects by registering an
// implementation under a Type and looking it up through the registry,
// the way the teacher's migration generator registry works.
package dialect

import (
	"fmt"
	"sync"

	"github.com/TaniGit/gerbera/internal/search"
)

// Type identifies a supported SQL dialect.
type Type string

const (
	MySQL Type = "mysql"
)

// Quoter escapes and delimits literals and identifiers for inclusion
// in an assembled SQL statement.
type Quoter interface {
	// QuoteIdentifier wraps a column or table name in the dialect's
	// open/close quote characters.
	QuoteIdentifier(name string) string
	// QuoteString escapes and delimits a string literal.
	QuoteString(value string) string
	// QuoteInt renders an integer literal.
	QuoteInt(value int) string
	// QuoteBool renders a boolean as the dialect's canonical 0/1 form.
	QuoteBool(value bool) string
}

// Emitter builds the SQL fragments the object store and tree
// operations need for composite, multi-table reads: the browse query
// (object table joined with its reference-id self-join and the
// resource table), the search query, the metadata query, the resource
// query, and the autoscan query.
type Emitter interface {
	Quoter

	// BrowseByID returns a query that selects exactly one object row
	// (plus its reference-id self-join columns) by id.
	BrowseByID(objectID int) string

	// BrowseByServiceID returns a query that selects exactly one
	// object row by its service id secondary key.
	BrowseByServiceID(serviceID string) string

	// BrowseChildren returns a query that selects every direct child
	// of parentID, ordered for stable pagination.
	BrowseChildren(parentID int) string

	// SearchQuery walks a parsed search expression into a WHERE clause
	// (ordered by title when the expression is non-empty), escaping
	// every literal through QuoteString, and returns a query restricted
	// to the direct children of parentID; deeper descendants are not
	// searched.
	SearchQuery(parentID int, expr search.Expression) (string, error)

	// MetadataQuery returns a query that selects every (key, value)
	// metadata row for an object.
	MetadataQuery(objectID int) string

	// ResourceQuery returns a query that selects every resource row
	// for an object, ordered by ordinal.
	ResourceQuery(objectID int) string

	// AutoscanQuery returns a query that selects every autoscan row
	// for a scan mode, ordered by object id.
	AutoscanQuery(mode string) string

	// ChildCountQuery returns a query counting the direct children of
	// parentID, optionally restricted to containers-only or items-only.
	ChildCountQuery(parentID int, containers, items bool) string
}

// Dialect names and exposes one SQL flavor's Emitter.
type Dialect interface {
	Name() Type
	Emitter() Emitter
}

var (
	registryMu sync.RWMutex
	registry   = map[Type]func() Dialect{}
)

// Register adds a constructor for the given dialect type to the
// registry. Intended to be called from an implementation package's
// init().
func Register(t Type, ctor func() Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = ctor
}

// Get returns a freshly constructed Dialect for t, or an error if
// nothing registered under that type.
func Get(t Type) (Dialect, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ctor, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("dialect %q is not registered", t)
	}
	return ctor(), nil
}
