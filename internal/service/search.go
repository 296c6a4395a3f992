package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"go.alis.build/alog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"github.com/atlekbai/wallet_search/internal/cache"
	"github.com/atlekbai/wallet_search/internal/filter"
	"github.com/atlekbai/wallet_search/internal/query"
	"github.com/atlekbai/wallet_search/internal/schema"
	"github.com/atlekbai/wallet_search/internal/server"
)

const (
	// SearchServiceName is the connect path prefix of the search service.
	SearchServiceName = "/wallet.v1.SearchService/"
	// SearchProcedure compiles one search request.
	SearchProcedure = SearchServiceName + "Search"

	// DefaultObject is searched when a request names none.
	DefaultObject = "wallets"
)

var tracer = otel.Tracer("github.com/atlekbai/wallet_search/internal/service")

// SearchRequest is the body of a Search call. The filter fields are the
// same ones the REST endpoint accepts.
type SearchRequest struct {
	Object           string `json:"object,omitempty"`
	PlaceholderStyle string `json:"placeholder_style,omitempty"`
	filter.WireRequest
}

func (r *SearchRequest) Validate() error {
	if _, err := query.FormatFor(r.PlaceholderStyle); err != nil {
		return err
	}
	return nil
}

// Parameter is one placeholder table entry. Value is the JSON text of the bound value.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type SearchResponse struct {
	Statement  string      `json:"statement"`
	Parameters []Parameter `json:"parameters"`
}

// Text renders the response as the statement followed by name=value lines sorted by name.
func (r *SearchResponse) Text() string {
	params := make(query.Params, len(r.Parameters))
	for i, p := range r.Parameters {
		params[i] = query.Param{Name: p.Name, Literal: p.Value}
	}
	return query.DebugText(r.Statement, params)
}

// SearchService compiles search requests into SQL statements.
type SearchService struct {
	schemas  *schema.Cache
	store    cache.Store
	base     string
	style    string
	maxDepth int
	scope    string
}

type Option func(*SearchService)

// WithStore enables the compiled-statement cache.
func WithStore(store cache.Store) Option {
	return func(s *SearchService) { s.store = store }
}

// WithDefaultStyle sets the placeholder style used when a request names none.
func WithDefaultStyle(style string) Option {
	return func(s *SearchService) { s.style = style }
}

func WithMaxDepth(n int) Option {
	return func(s *SearchService) { s.maxDepth = n }
}

func NewSearchService(schemas *schema.Cache, base string, opts ...Option) *SearchService {
	s := &SearchService{
		schemas:  schemas,
		base:     base,
		style:    "colon",
		maxDepth: filter.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scope = cache.Scope(s.base, s.maxDepth)
	return s
}

func (s *SearchService) RegisterHandler(interceptors ...connect.Interceptor) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(SearchProcedure, connect.NewUnaryHandler(
		SearchProcedure,
		s.Search,
		server.WithJSON(interceptors...)...,
	))
	return SearchServiceName, mux
}

func (s *SearchService) Search(ctx context.Context, req *connect.Request[SearchRequest]) (*connect.Response[SearchResponse], error) {
	resp, err := s.Compile(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

// Compile parses and compiles req. Errors are connect errors: CodeNotFound for an
// unknown object, CodeInvalidArgument for a malformed request.
func (s *SearchService) Compile(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	ctx, span := tracer.Start(ctx, "SearchService.Compile")
	defer span.End()

	objectName := req.Object
	if objectName == "" {
		objectName = DefaultObject
	}
	style := req.PlaceholderStyle
	if style == "" {
		style = s.style
	}
	span.SetAttributes(
		attribute.String("search.object", objectName),
		attribute.String("search.placeholder_style", style),
	)

	obj := s.schemas.Get(objectName)
	if obj == nil {
		return nil, fail(span, connect.NewError(connect.CodeNotFound, fmt.Errorf("object %q not found", objectName)))
	}
	format, err := query.FormatFor(style)
	if err != nil {
		return nil, fail(span, connect.NewError(connect.CodeInvalidArgument, err))
	}

	key := s.cacheKey(ctx, objectName, style, &req.WireRequest)
	if key != "" {
		if resp := s.lookup(ctx, key); resp != nil {
			span.SetAttributes(attribute.Bool("search.cache_hit", true))
			return resp, nil
		}
	}

	parsed, err := filter.NewParser(obj, filter.WithMaxDepth(s.maxDepth)).Parse(&req.WireRequest)
	if err != nil {
		if errors.Is(err, filter.ErrInvalidRequest) {
			return nil, fail(span, connect.NewError(connect.CodeInvalidArgument, err))
		}
		return nil, fail(span, connect.NewError(connect.CodeInternal, err))
	}

	builder := query.NewBuilder(s.base,
		query.WithResolver(query.AliasesFor(obj)),
		query.WithFormat(format),
	)
	stmt, err := builder.BuildRequest(parsed)
	if err != nil {
		return nil, fail(span, connect.NewError(connect.CodeInternal, err))
	}
	alog.Debugf(ctx, "compiled %s: %s", objectName, stmt.Inline())
	span.SetAttributes(attribute.Int("search.parameters", len(stmt.Params)))

	resp := &SearchResponse{
		Statement:  stmt.Text,
		Parameters: make([]Parameter, len(stmt.Params)),
	}
	for i, p := range stmt.Params {
		resp.Parameters[i] = Parameter{Name: p.Name, Value: p.Literal}
	}

	if key != "" {
		s.remember(ctx, key, resp)
	}
	return resp, nil
}

func fail(span interface{ SetStatus(otelcodes.Code, string) }, err error) error {
	span.SetStatus(otelcodes.Error, err.Error())
	return err
}

func (s *SearchService) cacheKey(ctx context.Context, object, style string, w *filter.WireRequest) string {
	if s.store == nil {
		return ""
	}
	body, err := json.Marshal(w)
	if err != nil {
		alog.Warnf(ctx, "cache key: %v", err)
		return ""
	}
	key, err := cache.Key(s.scope, object, style, body)
	if err != nil {
		// Malformed bodies are reported by the parser.
		return ""
	}
	return key
}

func (s *SearchService) lookup(ctx context.Context, key string) *SearchResponse {
	e, err := s.store.Get(ctx, key)
	if err != nil {
		alog.Warnf(ctx, "cache get %s: %v", key, err)
		return nil
	}
	if e == nil {
		return nil
	}
	resp := &SearchResponse{
		Statement:  e.Statement,
		Parameters: make([]Parameter, len(e.Parameters)),
	}
	for i, p := range e.Parameters {
		resp.Parameters[i] = Parameter{Name: p.Name, Value: p.Value}
	}
	return resp
}

func (s *SearchService) remember(ctx context.Context, key string, resp *SearchResponse) {
	e := &cache.Entry{
		Statement:  resp.Statement,
		Parameters: make([]cache.Param, len(resp.Parameters)),
	}
	for i, p := range resp.Parameters {
		e.Parameters[i] = cache.Param{Name: p.Name, Value: p.Value}
	}
	if err := s.store.Set(ctx, key, e); err != nil {
		alog.Warnf(ctx, "cache set %s: %v", key, err)
	}
}
