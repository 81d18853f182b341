// Package search defines the abstract syntax tree a parsed UPnP
// ContentDirectory SearchCriteria expression arrives as. The grammar
// itself belongs to the HTTP front end (out of scope for this module);
// only the node shapes the Emitter must be able to walk are specified
// here, the way a SQL dialect's WHERE-clause builder depends on an AST
// type without owning the parser that produces it.
package search

// Expression is any node in a search criteria tree.
type Expression interface {
	isExpression()
}

// CompareOp is a comparison operator in the UPnP search grammar.
type CompareOp string

const (
	OpEqual              CompareOp = "="
	OpNotEqual           CompareOp = "!="
	OpLess               CompareOp = "<"
	OpLessOrEqual        CompareOp = "<="
	OpGreater            CompareOp = ">"
	OpGreaterOrEqual     CompareOp = ">="
	OpContains           CompareOp = "contains"
	OpDoesNotContain     CompareOp = "doesNotContain"
	OpDerivedFrom        CompareOp = "derivedfrom"
	OpStartsWith         CompareOp = "startsWith"
)

// Comparison compares a named property (e.g. "dc:title",
// "upnp:class") against a literal value.
type Comparison struct {
	Property string
	Op       CompareOp
	Value    string
}

func (Comparison) isExpression() {}

// Exists tests whether a property is present (Want = true) or absent
// (Want = false) on a candidate object.
type Exists struct {
	Property string
	Want     bool
}

func (Exists) isExpression() {}

// LogicalOp combines two or more sub-expressions.
type LogicalOp string

const (
	LogicalAnd LogicalOp = "and"
	LogicalOr  LogicalOp = "or"
)

// Logical is an AND/OR of its operands.
type Logical struct {
	Op       LogicalOp
	Operands []Expression
}

func (Logical) isExpression() {}

// Not negates its operand.
type Not struct {
	Operand Expression
}

func (Not) isExpression() {}
