package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"connectrpc.com/connect"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// statusOf maps a connect error to an HTTP status and an error code.
func statusOf(err error) (int, string) {
	switch connect.CodeOf(err) {
	case connect.CodeInvalidArgument:
		return http.StatusBadRequest, "INVALID_REQUEST"
	case connect.CodeNotFound:
		return http.StatusNotFound, "OBJECT_NOT_FOUND"
	case connect.CodeCanceled:
		return 499, "CANCELED"
	case connect.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout, "DEADLINE_EXCEEDED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func writeCompileError(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	message := http.StatusText(status)
	if status == 499 {
		message = "Client closed request"
	}

	details := err.Error()
	var ce *connect.Error
	if errors.As(err, &ce) {
		details = ce.Message()
	}
	if status == http.StatusInternalServerError {
		details = ""
	}
	writeError(w, status, code, message, details)
}
