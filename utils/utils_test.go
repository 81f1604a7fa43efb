package utils

import (
	"errors"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct-horse" {
		t.Fatal("hash equals the password")
	}

	ok, err := CheckPasswordHash("correct-horse", hash)
	if err != nil || !ok {
		t.Errorf("matching password: ok = %v, err = %v", ok, err)
	}
	ok, err = CheckPasswordHash("battery-staple", hash)
	if err != nil || ok {
		t.Errorf("wrong password: ok = %v, err = %v", ok, err)
	}
	if _, err := CheckPasswordHash("correct-horse", "not-a-hash"); err == nil {
		t.Error("malformed hash must return an error")
	}

	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password: err = %v", err)
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"ana@padel.club", true},
		{"  Ana.Lopez@Padel.Club ", true},
		{"ana@", false},
		{"padel.club", false},
		{"", false},
		{"a b@padel.club", false},
	}
	for _, tt := range tests {
		if got := IsValidEmail(NormalizeEmail(tt.in)); got != tt.valid {
			t.Errorf("IsValidEmail(NormalizeEmail(%q)) = %v, want %v", tt.in, got, tt.valid)
		}
	}
	if got := NormalizeEmail("  Ana@Padel.CLUB "); got != "ana@padel.club" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
