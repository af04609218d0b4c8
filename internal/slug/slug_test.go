package slug

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "2024 Retrospective", "2024-retrospective"},
		{"special characters stripped", "Go, Postgres & Redis!", "go-postgres-redis"},
		{"whitespace runs collapse", "a   b\t\tc", "a-b-c"},
		{"repeated hyphens collapse", "a -- b", "a-b"},
		{"leading and trailing trimmed", "  -- hello --  ", "hello"},
		{"already a slug", "already-a-slug", "already-a-slug"},
		{"unicode stripped", "café résumé", "caf-rsum"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.title); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	titles := []string{
		"2024 Retrospective",
		"Go, Postgres & Redis!",
		"  -- hello --  ",
		"A Very Long Title With Many Words",
		"",
	}
	for _, title := range titles {
		once := Normalize(title)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", title, once, twice)
		}
	}
}

func TestMatches(t *testing.T) {
	if !Matches("2024 Retrospective", "2024-retrospective") {
		t.Error("expected title to match its slug")
	}
	if Matches("2024 Retrospective", "something-else") {
		t.Error("expected mismatch")
	}
}
