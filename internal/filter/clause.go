// Package filter holds the canonical filter tree consumed by the query compiler
// and the parser that normalizes wire payloads into it.
package filter

// Clause is one node of a filter tree: a *Group or a *Predicate.
type Clause interface {
	clause()
}

// Combinator joins the children of a Group.
type Combinator int

const (
	LogicalAnd Combinator = iota
	LogicalOr
)

// Keyword returns the SQL keyword for the combinator.
func (c Combinator) Keyword() string {
	if c == LogicalOr {
		return "OR"
	}
	return "AND"
}

func (c Combinator) String() string { return c.Keyword() }

// Group combines ordered child clauses with one combinator.
type Group struct {
	Combinator Combinator
	Children   []Clause
}

func (*Group) clause() {}

// Predicate tests one field. All tests are AND-combined.
type Predicate struct {
	Field string // logical (API) name
	Tests []Test
}

func (*Predicate) clause() {}

// Test is one operator applied to a field.
// Value is used by unary operators, Values by set operators; nullary operators use neither.
// A nil Value or empty Values makes the test a no-op.
type Test struct {
	Op     Operator
	Value  any
	Values []any
}

// And returns a LogicalAnd group.
func And(children ...Clause) *Group { return &Group{Combinator: LogicalAnd, Children: children} }

// Or returns a LogicalOr group.
func Or(children ...Clause) *Group { return &Group{Combinator: LogicalOr, Children: children} }

// Field returns a predicate on name with the given tests.
func Field(name string, tests ...Test) *Predicate { return &Predicate{Field: name, Tests: tests} }

// Is returns a test with a single operand.
func Is(op Operator, v any) Test { return Test{Op: op, Value: v} }

// In returns a set-membership test.
func In(op Operator, vs ...any) Test { return Test{Op: op, Values: vs} }

// Null returns a nullability test (OpIsNull or OpIsNotNull).
func Null(op Operator) Test { return Test{Op: op} }

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Order is one sort key.
type Order struct {
	Field string
	Dir   Direction
}

// Request is a fully parsed search: filter tree, sort keys and pagination.
// Offset and Limit of zero mean unset.
type Request struct {
	Where   Clause
	OrderBy []Order
	Offset  uint64
	Limit   uint64
}
