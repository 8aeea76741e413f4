package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"payplan/internal/core"
)

// HeaderUserID carries the caller's identity. Authentication happens upstream.
const HeaderUserID = "X-User-ID"

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 16

var errMissingUser = errors.New("missing " + HeaderUserID + " header")

func userID(r *http.Request) (string, error) {
	id := sanitizeInput(r.Header.Get(HeaderUserID))
	if id == "" {
		return "", errMissingUser
	}
	return id, nil
}

// queryDate parses an ISO date query parameter.
func queryDate(r *http.Request, key string) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return core.Date{}, core.NewValidationError(key, v, "required")
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, core.NewValidationError(key, v, "expected YYYY-MM-DD")
	}
	return d, nil
}

// queryRange parses start and end and rejects inverted ranges.
func queryRange(r *http.Request) (core.Date, core.Date, error) {
	start, err := queryDate(r, "start")
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	end, err := queryDate(r, "end")
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	if end.Before(start) {
		return core.Date{}, core.Date{}, core.NewValidationError("end", end.String(), "before start")
	}
	return start, end, nil
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(name, raw, "expected a positive integer")
	}
	return id, nil
}

// decodeJSON reads a single JSON object into dst. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.NewValidationError("body", "", "empty request body")
		case errors.As(err, &maxErr):
			return core.NewValidationError("body", "", fmt.Sprintf("larger than %d bytes", maxErr.Limit))
		default:
			return core.NewValidationError("body", "", err.Error())
		}
	}
	if dec.More() {
		return core.NewValidationError("body", "", "trailing data after JSON object")
	}
	return nil
}

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s))
}
