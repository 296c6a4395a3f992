package filter

// Operator is a field test kind. The set is closed.
type Operator int

const (
	OpEq Operator = iota
	OpNeq
	OpGt
	OpLt
	OpGte
	OpLte
	OpLike
	OpNlike
	OpIlike
	OpNilike
	OpIregex
	OpNiregex
	OpSimilar
	OpNsimilar
	OpIsIn
	OpIsNotIn
	OpIsNull
	OpIsNotNull
)

// Arity describes which operand slot of a Test an operator reads.
type Arity int

const (
	Nullary Arity = iota // no operand
	Unary                // Test.Value
	Variadic             // Test.Values
)

type opInfo struct {
	key     string
	sql     string
	arity   Arity
	pattern bool
}

var operators = [...]opInfo{
	OpEq:        {key: "eq", sql: "=", arity: Unary},
	OpNeq:       {key: "neq", sql: "!=", arity: Unary},
	OpGt:        {key: "gt", sql: ">", arity: Unary},
	OpLt:        {key: "lt", sql: "<", arity: Unary},
	OpGte:       {key: "gte", sql: ">=", arity: Unary},
	OpLte:       {key: "lte", sql: "<=", arity: Unary},
	OpLike:      {key: "like", sql: "LIKE", arity: Unary, pattern: true},
	OpNlike:     {key: "nlike", sql: "NOT LIKE", arity: Unary, pattern: true},
	OpIlike:     {key: "ilike", sql: "ILIKE", arity: Unary, pattern: true},
	OpNilike:    {key: "nilike", sql: "NOT ILIKE", arity: Unary, pattern: true},
	OpIregex:    {key: "iregex", sql: "~", arity: Unary, pattern: true},
	OpNiregex:   {key: "niregex", sql: "!~", arity: Unary, pattern: true},
	OpSimilar:   {key: "similar", sql: "SIMILAR TO", arity: Unary, pattern: true},
	OpNsimilar:  {key: "nsimilar", sql: "NOT SIMILAR TO", arity: Unary, pattern: true},
	OpIsIn:      {key: "is_in", sql: "IN", arity: Variadic},
	OpIsNotIn:   {key: "is_not_in", sql: "NOT IN", arity: Variadic},
	OpIsNull:    {key: "is_null", sql: "IS NULL", arity: Nullary},
	OpIsNotNull: {key: "is_not_null", sql: "IS NOT NULL", arity: Nullary},
}

var opsByKey = func() map[string]Operator {
	m := make(map[string]Operator, len(operators))
	for i, info := range operators {
		m[info.key] = Operator(i)
	}
	return m
}()

// ParseOperator returns the operator for a wire key such as "gte" or "is_not_in".
func ParseOperator(key string) (Operator, bool) {
	op, ok := opsByKey[key]
	return op, ok
}

// Valid reports whether op is one of the declared operators.
func (op Operator) Valid() bool {
	return op >= 0 && int(op) < len(operators)
}

// Key returns the wire name of the operator.
func (op Operator) Key() string {
	if !op.Valid() {
		return ""
	}
	return operators[op].key
}

// SQL returns the comparison keyword, or "" for an invalid operator.
func (op Operator) SQL() string {
	if !op.Valid() {
		return ""
	}
	return operators[op].sql
}

// Arity returns the operand shape of the operator.
func (op Operator) Arity() Arity {
	if !op.Valid() {
		return Nullary
	}
	return operators[op].arity
}

// Pattern reports whether the operator only applies to text fields.
func (op Operator) Pattern() bool {
	return op.Valid() && operators[op].pattern
}

func (op Operator) String() string { return op.Key() }
