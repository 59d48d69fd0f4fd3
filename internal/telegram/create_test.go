package telegram

import "testing"

func TestLocalPartValidation(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"my-name.01", true},
		{"abc", true},
		{"a", true},
		{"user123", true},
		{"My Name!", false},
		{"UPPER", false},
		{"с-кириллицей", false},
		{"with space", false},
		{"", false},
		{"a@b", false},
		{"tooooooooooooooooooooooooooooolong33", false},
	}
	for _, tt := range tests {
		if got := localPartRegex.MatchString(tt.in); got != tt.valid {
			t.Errorf("localPartRegex.MatchString(%q) = %v, want %v", tt.in, got, tt.valid)
		}
	}
}
