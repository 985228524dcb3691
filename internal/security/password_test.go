package security_test

import (
	"testing"

	"github.com/teachme/platform/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if !security.CheckPassword("correct horse battery staple", hash) {
		t.Error("expected password to verify")
	}

	if security.CheckPassword("wrong password", hash) {
		t.Error("expected wrong password to fail verification")
	}
}
