package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.alis.build/alog"

	"github.com/atlekbai/wallet_search/internal/filter"
	"github.com/atlekbai/wallet_search/internal/service"
)

// Compiler compiles one search request.
type Compiler interface {
	Compile(ctx context.Context, req *service.SearchRequest) (*service.SearchResponse, error)
}

type Handler struct {
	compiler     Compiler
	maxBodyBytes int64
}

func New(compiler Compiler, maxBodyBytes int64) *Handler {
	return &Handler{compiler: compiler, maxBodyBytes: maxBodyBytes}
}

// Routes registers the REST endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /hello", h.Hello)
	mux.HandleFunc("GET /hello/{name}", h.Greet)
	mux.HandleFunc("POST /search", h.Search)
}

// Hello handles GET /hello
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Hello World!")
}

// Greet handles GET /hello/{name}
func (h *Handler) Greet(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Hello "+r.PathValue("name")+"!")
}

// Search handles POST /search. The body is a wallet search payload; the response is
// the compiled statement followed by its placeholder table, one name=value line each.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE",
				"Request body too large", "")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body", err.Error())
		return
	}

	wire, err := filter.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	resp, err := h.compiler.Compile(r.Context(), &service.SearchRequest{WireRequest: *wire})
	if err != nil {
		if status, _ := statusOf(err); status == http.StatusInternalServerError {
			alog.Errorf(r.Context(), "search: %v", err)
		}
		writeCompileError(w, err)
		return
	}

	writeText(w, http.StatusOK, resp.Text())
}
