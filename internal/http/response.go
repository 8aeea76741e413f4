package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"payplan/internal/core"
	applog "payplan/internal/log"
)

// JSONResponse is a small fluent builder for API responses.
type JSONResponse struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse starts a 200 response.
func NewJSONResponse() *JSONResponse {
	return &JSONResponse{statusCode: http.StatusOK, headers: make(map[string]string)}
}

func (b *JSONResponse) Status(code int) *JSONResponse {
	b.statusCode = code
	return b
}

func (b *JSONResponse) Header(name, value string) *JSONResponse {
	b.headers[name] = value
	return b
}

func (b *JSONResponse) Body(v any) *JSONResponse {
	b.body = v
	return b
}

// Write encodes the body before touching the response, so an encoding
// failure still produces a clean 500.
func (b *JSONResponse) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response","code":"internal"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	Step      string `json:"step,omitempty"`
	Retryable *bool  `json:"retryable,omitempty"`
}

// ErrorResponse builds the JSON error body used by every handler.
func ErrorResponse(status int, code, message string) *JSONResponse {
	return NewJSONResponse().Status(status).Body(ErrorBody{Error: message, Code: code})
}

// errorResponse maps a domain error onto a status code and body.
func errorResponse(err error) *JSONResponse {
	body := ErrorBody{Error: err.Error()}
	status := http.StatusInternalServerError

	var te *core.TransitionError
	if errors.As(err, &te) {
		retryable := te.Retryable()
		body.Step = string(te.Step)
		body.Retryable = &retryable
	}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}

	switch {
	case errors.Is(err, core.ErrValidation):
		status, body.Code = http.StatusBadRequest, "validation"
	case errors.Is(err, core.ErrNotFound):
		status, body.Code = http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrLinkExceedsExpense):
		status, body.Code = http.StatusConflict, "link_exceeds_expense"
	case errors.Is(err, core.ErrAlreadyLinked):
		status, body.Code = http.StatusConflict, "already_linked"
	case errors.Is(err, core.ErrDataUnavailable):
		status, body.Code = http.StatusServiceUnavailable, "data_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status, body.Code = http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, core.ErrTransition):
		body.Code = "transition_failed"
	default:
		body.Code = "internal"
		body.Error = "internal error"
	}
	return NewJSONResponse().Status(status).Body(body)
}

// writeError logs server-side failures and writes the mapped response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := errorResponse(err)
	if resp.statusCode >= http.StatusInternalServerError {
		ctx := r.Context()
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Request failed", err, op, nil)
	}
	resp.Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}
