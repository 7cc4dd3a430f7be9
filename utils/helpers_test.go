package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.co", true},
		{"first.last+tag@school.example.org", true},
		{"", false},
		{"plain", false},
		{"no-dot@domain", false},
		{"two@@signs.com", false},
		{"spa ce@x.io", false},
		{"@missing.local", false},
	}
	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	digest, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Verify("correct horse", digest) {
		t.Fatal("Verify rejected the right password")
	}
	if h.Verify("wrong horse", digest) {
		t.Fatal("Verify accepted a wrong password")
	}
	if h.Verify("correct horse", "not-a-digest") {
		t.Fatal("Verify accepted a malformed digest")
	}
}

func TestIsValidFileExtension(t *testing.T) {
	allowed := []string{"jpg", "PNG"}
	if !IsValidFileExtension("photo.JPG", allowed) {
		t.Error("upper-case extension should match")
	}
	if !IsValidFileExtension("photo.png", allowed) {
		t.Error("allowed list should be case-insensitive")
	}
	if IsValidFileExtension("archive.tar.gz", allowed) {
		t.Error("gz is not allowed")
	}
	if IsValidFileExtension("noext", allowed) {
		t.Error("missing extension should be rejected")
	}
}
