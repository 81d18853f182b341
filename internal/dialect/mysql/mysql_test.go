package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TaniGit/gerbera/internal/dialect"
	"github.com/TaniGit/gerbera/internal/search"
)

func newTestEmitter() *Emitter {
	return NewEmitter([]string{"protocol_info", "size", "duration"})
}

func TestQuoteIdentifier(t *testing.T) {
	e := newTestEmitter()
	assert.Equal(t, "`title`", e.QuoteIdentifier("title"))
	assert.Equal(t, "`we``ird`", e.QuoteIdentifier("we`ird"))
}

func TestQuoteString(t *testing.T) {
	e := newTestEmitter()
	assert.Equal(t, `'it''s'`, e.QuoteString("it's"))
	assert.Equal(t, `'back\\slash'`, e.QuoteString(`back\slash`))
	assert.Equal(t, `'line\nbreak'`, e.QuoteString("line\nbreak"))
}

func TestQuoteIntAndBool(t *testing.T) {
	e := newTestEmitter()
	assert.Equal(t, "42", e.QuoteInt(42))
	assert.Equal(t, "1", e.QuoteBool(true))
	assert.Equal(t, "0", e.QuoteBool(false))
}

func TestBrowseByID(t *testing.T) {
	e := newTestEmitter()
	q := e.BrowseByID(7)
	assert.Contains(t, q, "o.`id` = 7")
	assert.Contains(t, q, "LEFT JOIN")
}

func TestBrowseChildren(t *testing.T) {
	e := newTestEmitter()
	q := e.BrowseChildren(3)
	assert.Contains(t, q, "o.`parent_id` = 3")
	assert.Contains(t, q, "ORDER BY")
}

func TestChildCountQuery(t *testing.T) {
	e := newTestEmitter()
	assert.Contains(t, e.ChildCountQuery(3, true, false), "<> 0")
	assert.Contains(t, e.ChildCountQuery(3, false, true), "= 0")
	q := e.ChildCountQuery(3, false, false)
	assert.NotContains(t, q, "object_type")
}

func TestResourceQueryUsesDeclaredAttrs(t *testing.T) {
	e := newTestEmitter()
	q := e.ResourceQuery(9)
	assert.Contains(t, q, "`protocol_info`")
	assert.Contains(t, q, "`size`")
	assert.Contains(t, q, "`duration`")
	assert.Contains(t, q, "ORDER BY `res_id` ASC")
}

func TestSearchQuerySimpleComparison(t *testing.T) {
	e := newTestEmitter()
	expr := search.Comparison{Property: "dc:title", Op: search.OpEqual, Value: "it's mine"}
	q, err := e.SearchQuery(5, expr)
	require.NoError(t, err)
	assert.Contains(t, q, "o.`title` = 'it''s mine'")
	assert.Contains(t, q, "o.`parent_id` = 5")
}

func TestSearchQueryMetadataProperty(t *testing.T) {
	e := newTestEmitter()
	expr := search.Comparison{Property: "dc:creator", Op: search.OpContains, Value: "ann"}
	q, err := e.SearchQuery(5, expr)
	require.NoError(t, err)
	assert.Contains(t, q, "mt_metadata")
	assert.Contains(t, q, "LIKE '%ann%'")
}

func TestSearchQueryLogicalAndNot(t *testing.T) {
	e := newTestEmitter()
	expr := search.Logical{
		Op: search.LogicalAnd,
		Operands: []search.Expression{
			search.Comparison{Property: "upnp:class", Op: search.OpDerivedFrom, Value: "object.item"},
			search.Not{Operand: search.Exists{Property: "dc:title", Want: true}},
		},
	}
	q, err := e.SearchQuery(0, expr)
	require.NoError(t, err)
	assert.Contains(t, q, "AND")
	assert.Contains(t, q, "NOT (")
}

func TestSearchQueryUnsupportedOperatorErrors(t *testing.T) {
	e := newTestEmitter()
	_, err := e.SearchQuery(0, search.Comparison{Property: "dc:title", Op: "bogus", Value: "x"})
	require.Error(t, err)
}

func TestRegistersUnderMySQLType(t *testing.T) {
	d, err := dialect.Get(dialect.MySQL)
	require.NoError(t, err)
	assert.Equal(t, dialect.MySQL, d.Name())
	assert.NotNil(t, d.Emitter())
}
