// Package query compiles canonical filter trees into parameterized SQL.
//
// A Builder holds only immutable configuration. Every Build call collects its own
// arguments and placeholder table, so one Builder can serve concurrent requests.
package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/atlekbai/wallet_search/internal/filter"
)

// Builder compiles filter requests against a fixed base statement.
type Builder struct {
	base     string
	resolver Resolver
	format   NamedFormat
}

type Option func(*Builder)

// WithResolver sets the field resolver. The default resolves every name to itself.
func WithResolver(r Resolver) Option {
	return func(b *Builder) { b.resolver = r }
}

// WithFormat sets the placeholder format. The default is Colon.
func WithFormat(f NamedFormat) Option {
	return func(b *Builder) { b.format = f }
}

// NewBuilder returns a builder appending clauses to base. A literal "?" in base must be written "??".
func NewBuilder(base string, opts ...Option) *Builder {
	b := &Builder{
		base:     base,
		resolver: Aliases(nil),
		format:   Colon,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build compiles the statement: base, then WHERE, ORDER BY, OFFSET and LIMIT when non-empty.
// It fails only when a value cannot be serialized into the placeholder table.
func (b *Builder) Build(where filter.Clause, orderBy []filter.Order, offset, limit uint64) (*Statement, error) {
	parts := []any{b.base}
	if cond := b.compileClause(where); cond != nil {
		parts = append(parts, " WHERE ", cond)
	}
	if order := b.compileOrderBy(orderBy); order != "" {
		parts = append(parts, " ORDER BY "+order)
	}
	parts = append(parts, paginate(offset, limit))

	raw, args, err := sq.ConcatExpr(parts...).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build statement: %w", err)
	}

	text, err := b.format.ReplacePlaceholders(raw)
	if err != nil {
		return nil, fmt.Errorf("replace placeholders: %w", err)
	}

	params, err := newParams(args)
	if err != nil {
		return nil, err
	}

	return &Statement{Text: text, Params: params, raw: raw}, nil
}

// BuildRequest compiles a parsed request.
func (b *Builder) BuildRequest(req *filter.Request) (*Statement, error) {
	if req == nil {
		return b.Build(nil, nil, 0, 0)
	}
	return b.Build(req.Where, req.OrderBy, req.Offset, req.Limit)
}

// Statement is a compiled query and its placeholder table.
type Statement struct {
	Text   string
	Params Params

	raw string // "?" placeholders
}

// Debug returns Text followed by one "name=literal" line per parameter, sorted by name.
func (s *Statement) Debug() string {
	return DebugText(s.Text, s.Params)
}

// DebugText renders text and a placeholder table in the Debug layout.
func DebugText(text string, params Params) string {
	var sb strings.Builder
	sb.WriteString(text)
	for _, p := range params.Sorted() {
		sb.WriteByte('\n')
		sb.WriteString(p.Name)
		sb.WriteByte('=')
		sb.WriteString(p.Literal)
	}
	return sb.String()
}

// Positional returns the statement with $1, $2, ... placeholders and its arguments.
func (s *Statement) Positional() (string, []any, error) {
	sql, err := sq.Dollar.ReplacePlaceholders(s.raw)
	if err != nil {
		return "", nil, err
	}
	return sql, s.Params.Args(), nil
}

// NamedArgs returns the placeholder table for binding a statement built with At.
func (s *Statement) NamedArgs() pgx.NamedArgs {
	return s.Params.NamedArgs()
}

// Inline returns the statement with values substituted, for logging only.
func (s *Statement) Inline() string {
	return sq.DebugSqlizer(sq.Expr(s.raw, s.Params.Args()...))
}
