package utils

import "testing"

func TestIsValidRUN(t *testing.T) {
	tests := []struct {
		run  string
		want bool
	}{
		{"12.345.678-5", true},
		{"12345678-5", true},
		{"9.876.543-K", true},
		{"9876543-k", true},
		{"12345678", false},
		{"12.345.678-55", false},
		{"abc-5", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidRUN(tt.run); got != tt.want {
			t.Errorf("IsValidRUN(%q) = %v, want %v", tt.run, got, tt.want)
		}
	}
}

func TestNormalizeRUN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.345.678-5", "12345678-5"},
		{" 9876543-k ", "9876543-K"},
		{"12345678-5", "12345678-5"},
	}
	for _, tt := range tests {
		if got := NormalizeRUN(tt.in); got != tt.want {
			t.Errorf("NormalizeRUN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+56912345678", true},
		{"912345678", true},
		{"123", false},
		{"+56 9 1234 5678", false},
	}
	for _, tt := range tests {
		if got := IsValidPhone(tt.phone); got != tt.want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPasswordHash("secret-password", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
}
