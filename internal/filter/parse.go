package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/atlekbai/wallet_search/internal/schema"
)

// DefaultMaxDepth bounds and/or nesting in a where clause.
const DefaultMaxDepth = 32

// ErrInvalidRequest is wrapped by every error returned from parsing.
var ErrInvalidRequest = errors.New("invalid request")

// WireRequest is the JSON search payload.
type WireRequest struct {
	Where   json.RawMessage `json:"where_clause,omitempty"`
	OrderBy []WireOrder     `json:"order_by,omitempty"`
	Offset  *uint64         `json:"offset,omitempty"`
	Limit   *uint64         `json:"limit,omitempty"`
}

// WireOrder is one order_by entry.
type WireOrder struct {
	Field *string `json:"field"`
	Dir   *string `json:"dir,omitempty"`
}

// Decode unmarshals a search payload.
func Decode(data []byte) (*WireRequest, error) {
	var w WireRequest
	if len(bytes.TrimSpace(data)) == 0 {
		return &w, nil
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return &w, nil
}

// Parser normalizes wire payloads for one object into canonical requests.
type Parser struct {
	obj      *schema.ObjectDef
	maxDepth int
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(n int) ParserOption {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// NewParser returns a parser validating against obj.
func NewParser(obj *schema.ObjectDef, opts ...ParserOption) *Parser {
	p := &Parser{obj: obj, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse validates w and returns the canonical request.
func (p *Parser) Parse(w *WireRequest) (*Request, error) {
	req := &Request{}
	if w == nil {
		return req, nil
	}

	where, err := p.ParseClause(w.Where)
	if err != nil {
		return nil, err
	}
	req.Where = where

	for i, o := range w.OrderBy {
		order, err := p.parseOrder(o)
		if err != nil {
			return nil, fmt.Errorf("%w: order_by[%d]: %v", ErrInvalidRequest, i, err)
		}
		req.OrderBy = append(req.OrderBy, order)
	}

	if w.Offset != nil {
		req.Offset = *w.Offset
	}
	if w.Limit != nil {
		req.Limit = *w.Limit
	}
	return req, nil
}

// ParseClause parses a where_clause object. A missing or null clause yields nil.
func (p *Parser) ParseClause(raw json.RawMessage) (Clause, error) {
	if isNull(raw) {
		return nil, nil
	}
	g, err := p.parseGroup(raw, LogicalAnd, "where_clause", 1)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// parseGroup turns one clause object into a group. Keys are visited in lexicographic
// order; "and", "or" and "not" nest a child group, schema fields become predicates
// and anything else is ignored.
func (p *Parser) parseGroup(raw json.RawMessage, comb Combinator, path string, depth int) (*Group, error) {
	if depth > p.maxDepth {
		return nil, invalid(path, "nesting exceeds %d levels", p.maxDepth)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, invalid(path, "expected object")
	}

	g := &Group{Combinator: comb}
	for _, key := range slices.Sorted(maps.Keys(obj)) {
		val := obj[key]
		if isNull(val) {
			continue
		}
		child := path + "." + key

		switch key {
		case "and", "or", "not":
			// "not" has always combined its children with OR; it does not negate.
			nested := LogicalAnd
			if key != "and" {
				nested = LogicalOr
			}
			sub, err := p.parseGroup(val, nested, child, depth+1)
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, sub)
			continue
		}

		fd, ok := p.obj.FieldsByAPIName[key]
		if !ok {
			continue
		}
		pred, err := p.parsePredicate(fd, val, child)
		if err != nil {
			return nil, err
		}
		g.Children = append(g.Children, pred)
	}
	return g, nil
}

func (p *Parser) parsePredicate(fd *schema.FieldDef, raw json.RawMessage, path string) (*Predicate, error) {
	var ops map[string]json.RawMessage
	if err := json.Unmarshal(raw, &ops); err != nil {
		return nil, invalid(path, "expected operator object")
	}

	pred := &Predicate{Field: fd.APIName}
	for _, key := range slices.Sorted(maps.Keys(ops)) {
		op, ok := ParseOperator(key)
		if !ok || (op.Pattern() && !fd.IsText()) {
			continue
		}
		val := ops[key]
		if isNull(val) {
			continue
		}
		opPath := path + "." + key

		switch op.Arity() {
		case Nullary:
			var b bool
			if err := json.Unmarshal(val, &b); err != nil {
				return nil, invalid(opPath, "expected boolean")
			}
			// Any boolean selects the test; false does not invert it.
			pred.Tests = append(pred.Tests, Test{Op: op})

		case Unary:
			v, err := decodeScalar(fd, val)
			if err != nil {
				return nil, invalid(opPath, "%v", err)
			}
			pred.Tests = append(pred.Tests, Test{Op: op, Value: v})

		case Variadic:
			var elems []json.RawMessage
			if err := json.Unmarshal(val, &elems); err != nil {
				return nil, invalid(opPath, "expected array")
			}
			vs := make([]any, 0, len(elems))
			for i, e := range elems {
				v, err := decodeScalar(fd, e)
				if err != nil {
					return nil, invalid(fmt.Sprintf("%s[%d]", opPath, i), "%v", err)
				}
				vs = append(vs, v)
			}
			pred.Tests = append(pred.Tests, Test{Op: op, Values: vs})
		}
	}
	return pred, nil
}

func (p *Parser) parseOrder(o WireOrder) (Order, error) {
	if o.Field == nil {
		return Order{}, fmt.Errorf("field is required")
	}
	fd, ok := p.obj.FieldsByAPIName[*o.Field]
	if !ok || !fd.Sortable {
		return Order{}, fmt.Errorf("field %q is not sortable", *o.Field)
	}

	order := Order{Field: fd.APIName}
	if o.Dir != nil {
		switch *o.Dir {
		case "asc":
		case "desc":
			order.Dir = Desc
		default:
			return Order{}, fmt.Errorf("unknown direction %q", *o.Dir)
		}
	}
	return order, nil
}

// decodeScalar decodes one operand according to the field type.
func decodeScalar(fd *schema.FieldDef, raw json.RawMessage) (any, error) {
	switch fd.Type {
	case schema.FieldNumber:
		var n uint64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("expected non-negative integer")
		}
		return n, nil

	case schema.FieldChoice:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expected string")
		}
		if !fd.HasChoice(s) {
			return nil, fmt.Errorf("unknown variant %q, expected one of %v", s, fd.Choices)
		}
		return s, nil

	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expected string")
		}
		return s, nil
	}
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidRequest, path, fmt.Sprintf(format, args...))
}
