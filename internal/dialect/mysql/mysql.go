// Package mysql provides the MySQL dialect: identifier/literal quoting
// and the query-fragment Emitter the object store and tree operations
// assemble their statements through.
package mysql

import (
	"fmt"
	"strings"

	"github.com/TaniGit/gerbera/internal/core"
	"github.com/TaniGit/gerbera/internal/dialect"
	"github.com/TaniGit/gerbera/internal/search"
)

func init() {
	dialect.Register(dialect.MySQL, func() dialect.Dialect {
		return New(core.DefaultResourceAttributes())
	})
}

// Dialect is the MySQL SQL-flavor implementation.
type Dialect struct {
	emitter *Emitter
}

// New constructs a MySQL dialect whose resource query/emitter knows
// about the given set of resource attribute columns (the
// schema-evolvable column set §3 "Resource" describes).
func New(resourceAttrs []string) *Dialect {
	return &Dialect{emitter: NewEmitter(resourceAttrs)}
}

func (d *Dialect) Name() dialect.Type   { return dialect.MySQL }
func (d *Dialect) Emitter() dialect.Emitter { return d.emitter }

// Emitter is the stateless (aside from its fixed resource-attribute
// column list) MySQL query-fragment builder.
type Emitter struct {
	resourceAttrs []string
}

// NewEmitter constructs an Emitter bound to a fixed resource attribute
// column set, computed once at init from the Config collaborator's
// declared list and never mutated afterward.
func NewEmitter(resourceAttrs []string) *Emitter {
	cp := make([]string, len(resourceAttrs))
	copy(cp, resourceAttrs)
	return &Emitter{resourceAttrs: cp}
}

// QuoteIdentifier wraps name in backticks, doubling any embedded
// backtick.
func (e *Emitter) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "`", "``")
	return "`" + name + "`"
}

// QuoteString escapes value for inclusion as a MySQL string literal.
func (e *Emitter) QuoteString(value string) string {
	var b strings.Builder
	b.Grow(len(value) + len(value)/10 + 2)
	b.WriteByte('\'')
	for _, ch := range value {
		switch ch {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		case '\x00':
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(ch)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// QuoteInt renders an integer literal verbatim; integers need no
// escaping but routing them through the Quoter keeps every literal in
// an assembled statement going through one seam.
func (e *Emitter) QuoteInt(value int) string {
	return fmt.Sprintf("%d", value)
}

// QuoteBool renders a boolean as MySQL's canonical 0/1 form.
func (e *Emitter) QuoteBool(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

func (e *Emitter) objectColumns(alias string) []string {
	cols := []string{
		core.ColObjectID, core.ColObjectParentID, core.ColObjectRefID,
		core.ColObjectType, core.ColObjectUpnpClass, core.ColObjectTitle,
		core.ColObjectLocation, core.ColObjectMimeType, core.ColObjectUpdateID,
		core.ColObjectFlags, core.ColObjectServiceID,
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + e.QuoteIdentifier(c)
	}
	return out
}

// refJoinColumns are the columns pulled from the self-join against the
// referenced ("real") object when a row is a virtual alias.
func (e *Emitter) refJoinColumns(alias string) []string {
	cols := []string{
		core.ColObjectLocation, core.ColObjectMimeType, core.ColObjectUpnpClass,
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + e.QuoteIdentifier(c) + " AS ref_" + c
	}
	return out
}

func (e *Emitter) browseSelectBase() string {
	obj := core.ColObjectID
	t := e.QuoteIdentifier(core.TableObject)
	cols := append(e.objectColumns("o"), e.refJoinColumns("r")...)
	return fmt.Sprintf(
		"SELECT %s FROM %s AS o LEFT JOIN %s AS r ON o.%s = r.%s",
		strings.Join(cols, ", "), t, t,
		e.QuoteIdentifier(core.ColObjectRefID), e.QuoteIdentifier(obj),
	)
}

// BrowseByID returns a query restricted to a single object id.
func (e *Emitter) BrowseByID(objectID int) string {
	return fmt.Sprintf("%s WHERE o.%s = %s",
		e.browseSelectBase(), e.QuoteIdentifier(core.ColObjectID), e.QuoteInt(objectID))
}

// BrowseByServiceID returns a query restricted by the service id
// secondary key.
func (e *Emitter) BrowseByServiceID(serviceID string) string {
	return fmt.Sprintf("%s WHERE o.%s = %s",
		e.browseSelectBase(), e.QuoteIdentifier(core.ColObjectServiceID), e.QuoteString(serviceID))
}

// BrowseChildren returns a query listing the direct children of
// parentID, ordered for stable pagination (containers first, then by
// title).
func (e *Emitter) BrowseChildren(parentID int) string {
	return fmt.Sprintf("%s WHERE o.%s = %s ORDER BY (o.%s & %d) = 0, o.%s ASC",
		e.browseSelectBase(),
		e.QuoteIdentifier(core.ColObjectParentID), e.QuoteInt(parentID),
		e.QuoteIdentifier(core.ColObjectType), core.TypeContainer,
		e.QuoteIdentifier(core.ColObjectTitle))
}

// ChildCountQuery counts direct children of parentID, optionally
// restricted by object type.
func (e *Emitter) ChildCountQuery(parentID int, containers, items bool) string {
	where := fmt.Sprintf("%s = %s", e.QuoteIdentifier(core.ColObjectParentID), e.QuoteInt(parentID))
	if containers && !items {
		where += fmt.Sprintf(" AND (%s & %d) <> 0", e.QuoteIdentifier(core.ColObjectType), core.TypeContainer)
	} else if items && !containers {
		where += fmt.Sprintf(" AND (%s & %d) = 0", e.QuoteIdentifier(core.ColObjectType), core.TypeContainer)
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", e.QuoteIdentifier(core.TableObject), where)
}

// MetadataQuery returns every (key, value) metadata row for an object.
func (e *Emitter) MetadataQuery(objectID int) string {
	return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = %s",
		e.QuoteIdentifier(core.ColMetaKey), e.QuoteIdentifier(core.ColMetaValue),
		e.QuoteIdentifier(core.TableMetadata),
		e.QuoteIdentifier(core.ColMetaObjectID), e.QuoteInt(objectID))
}

// ResourceQuery returns every resource row for an object ordered by
// ordinal, selecting the full declared resource-attribute column set.
func (e *Emitter) ResourceQuery(objectID int) string {
	cols := append([]string{core.ColResID}, e.resourceAttrs...)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = e.QuoteIdentifier(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY %s ASC",
		strings.Join(quoted, ", "), e.QuoteIdentifier(core.TableResource),
		e.QuoteIdentifier(core.ColResObjectID), e.QuoteInt(objectID),
		e.QuoteIdentifier(core.ColResID))
}

// AutoscanQuery returns every autoscan row for a scan mode ordered by
// object id.
func (e *Emitter) AutoscanQuery(mode string) string {
	cols := []string{
		core.ColAutoscanObjectID, core.ColAutoscanMode, core.ColAutoscanLevel,
		core.ColAutoscanRecursive, core.ColAutoscanHidden, core.ColAutoscanInterval,
		core.ColAutoscanLastMod, core.ColAutoscanPersistent,
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = e.QuoteIdentifier(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY %s ASC",
		strings.Join(quoted, ", "), e.QuoteIdentifier(core.TableAutoscan),
		e.QuoteIdentifier(core.ColAutoscanMode), e.QuoteString(mode),
		e.QuoteIdentifier(core.ColAutoscanObjectID))
}

// SearchQuery walks a parsed search expression into a WHERE clause
// restricted to the direct children of parentID (deeper descendants
// are not searched), ordered by title when the expression is non-empty.
func (e *Emitter) SearchQuery(parentID int, expr search.Expression) (string, error) {
	where, err := e.walk(expr)
	if err != nil {
		return "", err
	}
	base := e.browseSelectBase()
	if where == "" {
		return fmt.Sprintf("%s WHERE o.%s = %s", base, e.QuoteIdentifier(core.ColObjectParentID), e.QuoteInt(parentID)), nil
	}
	return fmt.Sprintf("%s WHERE o.%s = %s AND (%s) ORDER BY o.%s ASC",
		base, e.QuoteIdentifier(core.ColObjectParentID), e.QuoteInt(parentID), where,
		e.QuoteIdentifier(core.ColObjectTitle)), nil
}

func (e *Emitter) walk(expr search.Expression) (string, error) {
	if expr == nil {
		return "", nil
	}
	switch n := expr.(type) {
	case search.Comparison:
		return e.walkComparison(n)
	case search.Exists:
		col := e.searchColumn(n.Property)
		if n.Want {
			return fmt.Sprintf("%s IS NOT NULL", col), nil
		}
		return fmt.Sprintf("%s IS NULL", col), nil
	case search.Not:
		inner, err := e.walk(n.Operand)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("NOT (%s)", inner), nil
	case search.Logical:
		return e.walkLogical(n)
	default:
		return "", fmt.Errorf("mysql: unsupported search expression %T", expr)
	}
}

func (e *Emitter) walkLogical(n search.Logical) (string, error) {
	parts := make([]string, 0, len(n.Operands))
	for _, op := range n.Operands {
		s, err := e.walk(op)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+s+")")
	}
	sep := " AND "
	if n.Op == search.LogicalOr {
		sep = " OR "
	}
	return strings.Join(parts, sep), nil
}

func (e *Emitter) walkComparison(n search.Comparison) (string, error) {
	col := e.searchColumn(n.Property)
	lit := e.QuoteString(n.Value)
	switch n.Op {
	case search.OpEqual:
		return fmt.Sprintf("%s = %s", col, lit), nil
	case search.OpNotEqual:
		return fmt.Sprintf("%s <> %s", col, lit), nil
	case search.OpLess:
		return fmt.Sprintf("%s < %s", col, lit), nil
	case search.OpLessOrEqual:
		return fmt.Sprintf("%s <= %s", col, lit), nil
	case search.OpGreater:
		return fmt.Sprintf("%s > %s", col, lit), nil
	case search.OpGreaterOrEqual:
		return fmt.Sprintf("%s >= %s", col, lit), nil
	case search.OpContains:
		return fmt.Sprintf("%s LIKE %s", col, e.QuoteString("%"+n.Value+"%")), nil
	case search.OpDoesNotContain:
		return fmt.Sprintf("%s NOT LIKE %s", col, e.QuoteString("%"+n.Value+"%")), nil
	case search.OpStartsWith:
		return fmt.Sprintf("%s LIKE %s", col, e.QuoteString(n.Value+"%")), nil
	case search.OpDerivedFrom:
		return fmt.Sprintf("%s LIKE %s", col, e.QuoteString(n.Value+"%")), nil
	default:
		return "", fmt.Errorf("mysql: unsupported comparison operator %q", n.Op)
	}
}

// searchColumn maps a search property name to a SQL column reference.
// upnp:class and dc:title address the object table directly; anything
// else is assumed to be a metadata key and is addressed through a
// correlated subquery against mt_metadata.
func (e *Emitter) searchColumn(property string) string {
	switch property {
	case "upnp:class":
		return "o." + e.QuoteIdentifier(core.ColObjectUpnpClass)
	case "dc:title":
		return "o." + e.QuoteIdentifier(core.ColObjectTitle)
	default:
		return fmt.Sprintf(
			"(SELECT %s FROM %s WHERE %s = o.%s AND %s = %s LIMIT 1)",
			e.QuoteIdentifier(core.ColMetaValue), e.QuoteIdentifier(core.TableMetadata),
			e.QuoteIdentifier(core.ColMetaObjectID), e.QuoteIdentifier(core.ColObjectID),
			e.QuoteIdentifier(core.ColMetaKey), e.QuoteString(property),
		)
	}
}
