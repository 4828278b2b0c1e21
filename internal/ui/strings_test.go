package ui

import "testing"

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"Morning Yoga", 20, "Morning Yoga"},
		{"Morning Yoga", 8, "Morni..."},
		{"  padded  ", 10, "padded"},
		{"abcdef", 3, "abc"},
		{"unbounded", 0, "unbounded"},
		{"Åsa Öberg", 6, "Åsa..."},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight longer = %q", got)
	}
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"ada@example.com": "a**@example.com",
		"a@example.com":   "a@example.com",
		"not-an-email":    "not-an-email",
	}
	for in, want := range cases {
		if got := maskEmail(in); got != want {
			t.Fatalf("maskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
