package sitecms

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIssueAndValidate(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Hour, "test")
	token, issued, err := ti.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := ti.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.SessionID == "" || claims.SessionID != issued.SessionID {
		t.Errorf("SessionID = %q, want %q", claims.SessionID, issued.SessionID)
	}
	if claims.Subject != adminSubject {
		t.Errorf("Subject = %q, want %q", claims.Subject, adminSubject)
	}
}

func TestTokenSessionsAreDistinct(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Hour, "test")
	_, a, _ := ti.Issue()
	_, b, _ := ti.Issue()
	if a.SessionID == b.SessionID {
		t.Errorf("two logins share session id %q", a.SessionID)
	}
}

func TestTokenExpired(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Minute, "test")
	token, _, err := ti.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	ti.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := ti.Validate(token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Validate expired = %v, want ErrUnauthorized", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenIssuer("secret", time.Hour, "test").Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewTokenIssuer("other", time.Hour, "test").Validate(token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Validate with wrong secret = %v, want ErrUnauthorized", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Hour, "test")
	for _, tok := range []string{"", "   ", "not.a.jwt", "abc"} {
		if _, err := ti.Validate(tok); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Validate(%q) = %v, want ErrUnauthorized", tok, err)
		}
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer   abc ", "abc"},
		{"Basic abc", ""},
		{"", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		if got := bearerToken(tt.header); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestTokenRevoke(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Hour, "test")
	token, claims, err := ti.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	other, _, _ := ti.Issue()
	ti.Revoke(claims)
	if _, err := ti.Validate(token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Validate revoked = %v, want ErrUnauthorized", err)
	}
	if _, err := ti.Validate(other); err != nil {
		t.Errorf("Validate other token: %v", err)
	}
}
