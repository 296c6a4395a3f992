package query

import (
	"context"
	"slices"
	"testing"

	"github.com/atlekbai/wallet_search/internal/filter"
	"github.com/atlekbai/wallet_search/internal/schema"
)

func TestNamedFormat(t *testing.T) {
	tests := []struct {
		format NamedFormat
		in     string
		want   string
	}{
		{Colon, "a = ? AND b IN (?, ?)", "a = :v0 AND b IN (:v1, :v2)"},
		{At, "a = ? AND b IN (?, ?)", "a = @v0 AND b IN (@v1, @v2)"},
		{Colon, "data ?? 'k' AND a = ?", "data ? 'k' AND a = :v0"},
		{Colon, "no placeholders", "no placeholders"},
	}
	for _, tt := range tests {
		got, err := tt.format.ReplacePlaceholders(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("%q: got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatFor(t *testing.T) {
	for style, want := range map[string]NamedFormat{"": Colon, "colon": Colon, "at": At} {
		got, err := FormatFor(style)
		if err != nil || got != want {
			t.Errorf("style %q: got %v, %v", style, got, err)
		}
	}
	if _, err := FormatFor("dollar"); err == nil {
		t.Error("expected error for unknown style")
	}
}

func TestAliasesFor(t *testing.T) {
	aliases := AliasesFor(schema.Wallets())
	for name, want := range map[string]string{
		"wallet_id":   "id",
		"wallet_type": "type",
		"wallet_name": "wallet_name",
		"unknown":     "unknown",
	} {
		if got := aliases.Resolve(name); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNamedArgsMatchPositional(t *testing.T) {
	b := NewBuilder(testBase, WithResolver(WalletAliases), WithFormat(At))
	stmt, err := b.Build(filter.And(
		filter.Field("wallet_id", filter.In(filter.OpIsIn, uint64(4), uint64(5))),
		filter.Field("wallet_type", filter.Is(filter.OpEq, "public")),
	), nil, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	posSQL, posArgs, err := stmt.Positional()
	if err != nil {
		t.Fatal(err)
	}
	wantSQL := testBase + " WHERE ((id IN ($1, $2)) AND (type = $3))"
	if posSQL != wantSQL {
		t.Errorf("positional: got %q, want %q", posSQL, wantSQL)
	}

	// pgx rewrites @vN named args to the same positional form.
	rewritten, args, err := stmt.NamedArgs().RewriteQuery(context.Background(), nil, stmt.Text, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rewritten != posSQL {
		t.Errorf("pgx rewrite: got %q, want %q", rewritten, posSQL)
	}
	if !slices.Equal(args, posArgs) {
		t.Errorf("pgx args: got %v, want %v", args, posArgs)
	}
}
