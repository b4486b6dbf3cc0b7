package sitecms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAPIErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", ErrNotFound, http.StatusNotFound, "not found"},
		{"wrapped not found", fmt.Errorf("post: %w", ErrNotFound), http.StatusNotFound, "not found"},
		{"invalid path", fmt.Errorf("%w: %q", ErrInvalidPath, "a..b"), http.StatusBadRequest, `invalid content path: "a..b"`},
		{"validation", fmt.Errorf("%w: title (required)", ErrValidation), http.StatusBadRequest, "validation failed: title (required)"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"conflict", fmt.Errorf("%w: slug %q", ErrConflict, "x"), http.StatusConflict, `already exists: slug "x"`},
		{"save failed", fmt.Errorf("%w: disk full", ErrSaveFailed), http.StatusBadGateway, "save failed: disk full"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "request timeout"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := apiErrors.Map(tt.err)
			if info.Status != tt.status || info.Message != tt.msg {
				t.Errorf("Map() = %d %q, want %d %q", info.Status, info.Message, tt.status, tt.msg)
			}
		})
	}
}

func TestJSONFieldName(t *testing.T) {
	tests := map[string]string{
		"ImageURL":  "image_url",
		"SortOrder": "sort_order",
		"ID":        "id",
		"Title":     "title",
	}
	for in, want := range tests {
		if got := jsonFieldName(in); got != want {
			t.Errorf("jsonFieldName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	err := Validate(ContactMessage{Email: "not-an-email"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate = %v, want ErrValidation", err)
	}
	for _, want := range []string{"name (required)", "email (email)", "message (required)"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}

	if err := Validate(ContactMessage{Name: "A", Email: "a@example.org", Message: "hi"}); err != nil {
		t.Errorf("valid message rejected: %v", err)
	}
	if err := Validate(ContactInfo{}); err != nil {
		t.Errorf("empty contact info should be valid: %v", err)
	}
}
