package sitecms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = sql.ErrNoRows
	// ErrInvalidPath is returned for content paths with empty segments.
	ErrInvalidPath = errors.New("invalid content path")
	// ErrUnauthorized is returned when a request carries no valid credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation wraps field validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrSaveFailed wraps persistence failures of staged content.
	ErrSaveFailed = errors.New("save failed")
	// ErrConflict is returned when a unique key such as a blog slug is taken.
	ErrConflict = errors.New("already exists")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v's struct tags and returns an ErrValidation listing the
// offending JSON fields.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, jsonFieldName(fe.Field())+" ("+fe.Tag()+")")
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
}

// jsonFieldName converts a Go field name like ImageURL into image_url.
func jsonFieldName(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HTTPErrorInfo is the status and client-facing message for an error.
type HTTPErrorInfo struct {
	Status  int
	Message string
}

type errorMapping struct {
	err     error
	status  int
	message string // empty means use err.Error()
}

// ErrorMapper maps domain errors to HTTP statuses using errors.Is.
type ErrorMapper struct {
	mappings       []errorMapping
	defaultStatus  int
	defaultMessage string
}

// NewErrorMapper creates a mapper that falls back to 500.
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
	}
}

// WithMapping maps err to status. An empty message exposes the wrapped
// error text, which is used for validation details.
func (m *ErrorMapper) WithMapping(err error, status int, message string) *ErrorMapper {
	m.mappings = append(m.mappings, errorMapping{err: err, status: status, message: message})
	return m
}

// Map converts err to an HTTP status and message.
func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPErrorInfo{Status: http.StatusGatewayTimeout, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled"}
	}
	for _, mp := range m.mappings {
		if errors.Is(err, mp.err) {
			msg := mp.message
			if msg == "" {
				msg = err.Error()
			}
			return HTTPErrorInfo{Status: mp.status, Message: msg}
		}
	}
	return HTTPErrorInfo{Status: m.defaultStatus, Message: m.defaultMessage}
}

// apiErrors is the mapper used by every /api handler.
var apiErrors = NewErrorMapper().
	WithMapping(ErrNotFound, http.StatusNotFound, "not found").
	WithMapping(ErrInvalidPath, http.StatusBadRequest, "").
	WithMapping(ErrValidation, http.StatusBadRequest, "").
	WithMapping(ErrUnauthorized, http.StatusUnauthorized, "unauthorized").
	WithMapping(ErrConflict, http.StatusConflict, "").
	WithMapping(ErrSaveFailed, http.StatusBadGateway, "")
