package repository

import "testing"

func TestIsValidWindow(t *testing.T) {
	for _, w := range []Window{WindowDay, WindowWeek, WindowMonth} {
		if !IsValidWindow(w) {
			t.Fatalf("expected %q valid", w)
		}
	}
	for _, w := range []Window{"", "year", "Day", "weeks"} {
		if IsValidWindow(w) {
			t.Fatalf("expected %q invalid", w)
		}
	}
}

func TestNormalizeWindow(t *testing.T) {
	cases := []struct {
		in   string
		want Window
	}{
		{"", WindowDay},
		{"day", WindowDay},
		{"week", WindowWeek},
		{"month", WindowMonth},
		{"bogus", WindowDay},
	}
	for _, c := range cases {
		if got := NormalizeWindow(c.in); got != c.want {
			t.Fatalf("NormalizeWindow(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}
