package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ParamPrefix starts every generated placeholder name.
const ParamPrefix = "v"

// ParamName returns the name of the i-th allocated placeholder (v0, v1, ...).
func ParamName(i int) string {
	return ParamPrefix + strconv.Itoa(i)
}

// NamedFormat is a squirrel PlaceholderFormat that renders the i-th "?" as
// Marker + ParamName(i). "??" is an escaped literal "?".
type NamedFormat struct {
	Marker string
}

var (
	// Colon renders :v0, :v1, ...
	Colon = NamedFormat{Marker: ":"}
	// At renders @v0, @v1, ... as understood by pgx.NamedArgs.
	At = NamedFormat{Marker: "@"}
)

// FormatFor returns the format for a placeholder style name ("colon" or "at").
// The empty string selects Colon.
func FormatFor(style string) (NamedFormat, error) {
	switch style {
	case "", "colon":
		return Colon, nil
	case "at":
		return At, nil
	default:
		return NamedFormat{}, fmt.Errorf("unknown placeholder style %q", style)
	}
}

func (f NamedFormat) ReplacePlaceholders(sql string) (string, error) {
	var buf bytes.Buffer
	i := 0
	for {
		p := strings.IndexByte(sql, '?')
		if p == -1 {
			break
		}
		buf.WriteString(sql[:p])
		if strings.HasPrefix(sql[p:], "??") {
			buf.WriteByte('?')
			sql = sql[p+2:]
			continue
		}
		buf.WriteString(f.Marker)
		buf.WriteString(ParamName(i))
		i++
		sql = sql[p+1:]
	}
	buf.WriteString(sql)
	return buf.String(), nil
}

// Param is one entry of the placeholder table.
type Param struct {
	Name    string
	Value   any    // bindable value
	Literal string // JSON text of Value
}

// Params is the placeholder table of one compilation, in allocation order.
type Params []Param

// newParams allocates one placeholder per argument. The i-th argument of a
// squirrel ToSql result belongs to the i-th "?", so names line up with NamedFormat.
func newParams(args []any) (Params, error) {
	ps := make(Params, 0, len(args))
	for _, v := range args {
		lit, err := literal(v)
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", ParamName(len(ps)), err)
		}
		ps = append(ps, Param{Name: ParamName(len(ps)), Value: v, Literal: lit})
	}
	return ps, nil
}

// literal renders v as JSON text without HTML escaping, so patterns keep '<', '>' and '&'.
func literal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Sorted returns a copy ordered lexicographically by name (v0, v1, v10, v2, ...).
func (ps Params) Sorted() Params {
	out := slices.Clone(ps)
	slices.SortFunc(out, func(a, b Param) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Map returns name → literal.
func (ps Params) Map() map[string]string {
	m := make(map[string]string, len(ps))
	for _, p := range ps {
		m[p.Name] = p.Literal
	}
	return m
}

// Args returns the bindable values in allocation order.
func (ps Params) Args() []any {
	args := make([]any, len(ps))
	for i, p := range ps {
		args[i] = p.Value
	}
	return args
}

// NamedArgs returns the table as pgx named arguments, for statements built with At.
func (ps Params) NamedArgs() pgx.NamedArgs {
	na := make(pgx.NamedArgs, len(ps))
	for _, p := range ps {
		na[p.Name] = p.Value
	}
	return na
}
