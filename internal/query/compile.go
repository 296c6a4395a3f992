package query

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/atlekbai/wallet_search/internal/filter"
)

// compileClause returns the condition for a clause, or nil when it renders nothing.
// Unknown node types render nothing.
func (b *Builder) compileClause(c filter.Clause) sq.Sqlizer {
	switch n := c.(type) {
	case *filter.Group:
		if n == nil {
			return nil
		}
		return b.compileGroup(n)
	case *filter.Predicate:
		if n == nil {
			return nil
		}
		return compilePredicate(b.column(n.Field), n.Tests)
	default:
		return nil
	}
}

// column resolves a field and escapes "?" so squirrel keeps it as text.
func (b *Builder) column(field string) string {
	return strings.ReplaceAll(b.resolver.Resolve(field), "?", "??")
}

// compileGroup joins the non-empty children with the group combinator.
// squirrel wraps the joined result in parentheses.
func (b *Builder) compileGroup(g *filter.Group) sq.Sqlizer {
	var parts []sq.Sqlizer
	for _, child := range g.Children {
		if cond := b.compileClause(child); cond != nil {
			parts = append(parts, cond)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	if g.Combinator == filter.LogicalOr {
		return sq.Or(parts)
	}
	return sq.And(parts)
}

// compilePredicate ANDs the tests of one field.
func compilePredicate(col string, tests []filter.Test) sq.Sqlizer {
	var parts []sq.Sqlizer
	for _, t := range tests {
		if cond := compileTest(col, t); cond != nil {
			parts = append(parts, cond)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return sq.And(parts)
}

func compileTest(col string, t filter.Test) sq.Sqlizer {
	kw := t.Op.SQL()
	if kw == "" {
		return nil
	}

	switch t.Op.Arity() {
	case filter.Nullary:
		return sq.Expr(col + " " + kw)

	case filter.Variadic:
		if len(t.Values) == 0 {
			return nil
		}
		for _, v := range t.Values {
			if !bindable(v) {
				return nil
			}
		}
		return sq.Expr(col+" "+kw+" ("+placeholders(len(t.Values))+")", t.Values...)

	default:
		switch t.Value.(type) {
		case nil:
			return nil
		case bool:
			// A boolean operand means "no operand".
			return sq.Expr(col + " " + kw)
		}
		if !bindable(t.Value) {
			return nil
		}
		return sq.Expr(col+" "+kw+" ?", t.Value)
	}
}

// bindable rejects operands squirrel would splice into the SQL text instead of binding.
func bindable(v any) bool {
	_, isSQL := v.(sq.Sqlizer)
	return !isSQL
}

// placeholders returns n comma-separated "?".
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
