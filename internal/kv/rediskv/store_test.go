package rediskv

import "testing"

func TestEscapeGlob(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"authkit:lock_", "authkit:lock_"},
		{"a*b", `a\*b`},
		{"q?[x]", `q\?\[x\]`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := escapeGlob(tt.input); got != tt.want {
			t.Fatalf("escapeGlob(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
