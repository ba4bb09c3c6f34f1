package utils

import "testing"

func TestFormatAccountNumber(t *testing.T) {
	tests := []struct {
		sequence int64
		want     string
	}{
		{42, "ACC0000042"},
		{1234567, "ACC1234567"},
		{0, "ACC0000000"},
		{1, "ACC0000001"},
	}
	for _, tt := range tests {
		if got := FormatAccountNumber(tt.sequence); got != tt.want {
			t.Errorf("FormatAccountNumber(%d) = %q, want %q", tt.sequence, got, tt.want)
		}
	}
}

func TestFormatAccountNumberIsDeterministic(t *testing.T) {
	if FormatAccountNumber(42) != FormatAccountNumber(42) {
		t.Fatal("expected the same sequence value to format identically")
	}
}

func TestValidateAccountNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ACC0000042", true},
		{"ACC12345678", true},
		{"ACC123456", false},
		{"ACC00000A2", false},
		{"0000000042", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateAccountNumber(tt.in); got != tt.want {
			t.Errorf("ValidateAccountNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGenerateIDHasPrefix(t *testing.T) {
	id := GenerateID("evt")
	if len(id) <= 4 || id[:4] != "evt-" {
		t.Fatalf("expected evt- prefix, got %q", id)
	}
}
