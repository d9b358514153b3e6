package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestUserinfoVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sub":"user-1","email":"me@example.com"}`))
		case "Bearer nosub":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"email":"me@example.com"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	v := NewUserinfoVerifier(srv.URL, 2*time.Second)
	ctx := context.Background()

	id, err := v.Verify(ctx, "good")
	if err != nil {
		t.Fatalf("Verify(good) error: %v", err)
	}
	if id.UserID != "user-1" || id.Email != "me@example.com" {
		t.Errorf("Verify(good) = %+v", id)
	}

	if _, err := v.Verify(ctx, "bad"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(bad) = %v, want ErrInvalidToken", err)
	}
	if _, err := v.Verify(ctx, ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(empty) = %v, want ErrInvalidToken", err)
	}
	if _, err := v.Verify(ctx, "nosub"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(nosub) = %v, want ErrInvalidToken", err)
	}
}

func TestLoadTokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.yaml")
	content := `tokens:
  - token: s3cret
    userId: user-1
    email: me@example.com
  - token: other
    userId: user-2
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write token file: %v", err)
	}

	v, err := LoadTokenFile(path)
	if err != nil {
		t.Fatalf("LoadTokenFile() error: %v", err)
	}

	id, err := v.Verify(context.Background(), "s3cret")
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if id.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", id.UserID)
	}

	if _, err := v.Verify(context.Background(), "unknown"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(unknown) = %v, want ErrInvalidToken", err)
	}
}

func TestLoadTokenFileRejectsIncompleteEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.yaml")
	if err := os.WriteFile(path, []byte("tokens:\n  - token: only-token\n"), 0o600); err != nil {
		t.Fatalf("failed to write token file: %v", err)
	}
	if _, err := LoadTokenFile(path); err == nil {
		t.Error("LoadTokenFile() accepted an entry without userId")
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := IdentityFrom(ctx); ok {
		t.Error("IdentityFrom(empty ctx) reported an identity")
	}

	ctx = WithIdentity(ctx, Identity{UserID: "user-1"})
	id, ok := IdentityFrom(ctx)
	if !ok || id.UserID != "user-1" {
		t.Errorf("IdentityFrom() = %+v, %v", id, ok)
	}
}
