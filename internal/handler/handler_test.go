package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/atlekbai/wallet_search/internal/schema"
	"github.com/atlekbai/wallet_search/internal/service"
)

const base = "SELECT c.data, c.id, c.type FROM c"

func newServer(t *testing.T, maxBody int64) *httptest.Server {
	t.Helper()
	svc := service.NewSearchService(schema.NewCacheFromObjects(schema.Wallets()), base)
	mux := http.NewServeMux()
	New(svc, maxBody).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(b)
}

func TestHello(t *testing.T) {
	srv := newServer(t, 1<<20)

	tests := []struct {
		path string
		want string
	}{
		{"/hello", "Hello World!"},
		{"/hello/alice", "Hello alice!"},
	}
	for _, tt := range tests {
		resp, body := do(t, http.MethodGet, srv.URL+tt.path, "")
		if resp.StatusCode != http.StatusOK || body != tt.want {
			t.Errorf("GET %s: got %d %q, want %q", tt.path, resp.StatusCode, body, tt.want)
		}
	}

	resp, _ := do(t, http.MethodPost, srv.URL+"/hello", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /hello: got %d", resp.StatusCode)
	}
}

func TestSearch(t *testing.T) {
	srv := newServer(t, 1<<20)

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "empty body",
			body: "",
			want: base,
		},
		{
			name: "pattern and order",
			body: `{"where_clause":{"wallet_name":{"like":"%x%"},"wallet_type":{"neq":"private"}},"order_by":[{"field":"wallet_type"}],"offset":20}`,
			want: base + ` WHERE ((wallet_name LIKE :v0) AND (type != :v1)) ORDER BY type ASC OFFSET 20` +
				"\nv0=\"%x%\"\nv1=\"private\"",
		},
		{
			name: "or group",
			body: `{"where_clause":{"or":{"wallet_id":{"lt":3},"wallet_name":{"is_not_null":true}}}}`,
			want: base + ` WHERE (((id < :v0) OR (wallet_name IS NOT NULL)))` + "\nv0=3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/search", tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status %d: %s", resp.StatusCode, body)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("content type: %s", ct)
			}
			if body != tt.want {
				t.Errorf("body:\n got %q\nwant %q", body, tt.want)
			}
		})
	}
}

func TestSearchErrors(t *testing.T) {
	srv := newServer(t, 64)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed", `{"where_clause":`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"type mismatch", `{"where_clause":{"wallet_id":{"eq":-1}}}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"too large", `{"where_clause":{"wallet_name":{"eq":"` + strings.Repeat("x", 64) + `"}}}`, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/search", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status: got %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			var er ErrorResponse
			if err := json.Unmarshal([]byte(body), &er); err != nil {
				t.Fatalf("error body %q: %v", body, err)
			}
			if er.Code != tt.code {
				t.Errorf("code: got %s, want %s", er.Code, tt.code)
			}
		})
	}
}

type stubCompiler struct{ err error }

func (s stubCompiler) Compile(context.Context, *service.SearchRequest) (*service.SearchResponse, error) {
	return nil, s.err
}

func TestSearchErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		details string
	}{
		{connect.NewError(connect.CodeNotFound, errors.New(`object "x" not found`)), http.StatusNotFound, `object "x" not found`},
		{connect.NewError(connect.CodeInternal, errors.New("boom")), http.StatusInternalServerError, ""},
		{errors.New("plain"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("{}"))
		New(stubCompiler{tt.err}, 1<<20).Search(rec, req)

		if rec.Code != tt.status {
			t.Errorf("%v: status %d, want %d", tt.err, rec.Code, tt.status)
		}
		var er ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
			t.Fatal(err)
		}
		if er.Details != tt.details {
			t.Errorf("%v: details %q, want %q", tt.err, er.Details, tt.details)
		}
	}
}
