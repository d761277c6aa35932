package util

import "testing"

func TestSanitizePostgresText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "clean text", in: "Hello world", want: "Hello world"},
		{name: "nul byte stripped", in: "Hello\x00world", want: "Helloworld"},
		{name: "invalid utf8 stripped", in: "Hello\xffworld", want: "Helloworld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePostgresText(tt.in); got != tt.want {
				t.Errorf("SanitizePostgresText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
