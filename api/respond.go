package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/types"
)

// Response is the JSON envelope of every API response.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: msg})
}

// fail maps a ledger error onto a status code and writes it.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case haulage.IsNotFound(err):
		return http.StatusNotFound
	case haulage.IsValidation(err), errors.Is(err, haulage.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, haulage.ErrLockNotObtained), errors.Is(err, haulage.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, haulage.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) basicAuth(next http.Handler) http.Handler {
	if h.user == "" && h.pass == "" {
		h.logger.Warn("basic auth credentials not set, API is unauthenticated")
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), []byte(h.user)) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), []byte(h.pass)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="haulage"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return haulage.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// pathID parses the {id} URL parameter as an ID with prefix.
func pathID(r *http.Request, prefix id.Prefix) (id.ID, error) {
	return parseID(chi.URLParam(r, "id"), prefix, "id")
}

func parseID(s string, prefix id.Prefix, field string) (id.ID, error) {
	v, err := id.ParseWithPrefix(s, prefix)
	if err != nil {
		return id.ID{}, haulage.ValidationError{Field: field, Message: err.Error()}
	}
	return v, nil
}

// optionalID parses s when it is non-empty.
func optionalID(s string, prefix id.Prefix, field string) (id.ID, error) {
	if s == "" {
		return id.ID{}, nil
	}
	return parseID(s, prefix, field)
}

// parseDate accepts YYYY-MM-DD or RFC 3339. Empty gives the zero time.
func parseDate(s, field string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := types.ParseDate(s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, haulage.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%q is not a date (want YYYY-MM-DD)", s),
		}
	}
	return t, nil
}

// paging reads limit and offset from the query string.
func paging(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, haulage.ValidationError{Field: "limit", Message: "must be a non-negative integer"}
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, haulage.ValidationError{Field: "offset", Message: "must be a non-negative integer"}
		}
	}
	return limit, offset, nil
}

// dateRange reads from and to from the query string. to is inclusive of the
// whole day.
func dateRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	if from, err = parseDate(q.Get("from"), "from"); err != nil {
		return
	}
	if to, err = parseDate(q.Get("to"), "to"); err != nil {
		return
	}
	if !to.IsZero() {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}
