package secrets

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	s := NewKeyringStore()

	if _, err := s.Get("registry", "token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set("registry", "token", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := s.Get("registry", "token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
	if err := s.Delete("registry", "token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete("registry", "token"); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
}
