package textsan

import (
	"strings"
	"testing"

	"alcyxob/workout-tracker/internal/domain"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain ascii", "Push Up", "Push Up"},
		{"em and en dash", "Squat — deep – slow", "Squat - deep - slow"},
		{"curly double quotes", "“slow” tempo", `"slow" tempo`},
		{"curly apostrophes", "don’t ‘lock’", "don't 'lock'"},
		{"ellipsis", "hold…", "hold..."},
		{"strips other non-ascii", "café \U0001F4AA reps", "caf  reps"},
		{"strips control characters", "a\tb\nc\x7f", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Bench — “pause”…",
		"½ rep × 3",
		"already clean - 10x",
		"\x00\x01mixed’…–",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Errorf("Truncate = %q, want abc", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("Truncate = %q, want abc", got)
	}
	if got := Truncate("héllo", 2); got != "hé" {
		t.Errorf("Truncate = %q, want hé", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Errorf("Truncate = %q, want empty", got)
	}
}

func TestSanitizeExercise(t *testing.T) {
	in := domain.Exercise{
		ExerciseOrder: 0,
		Name:          "…",
		Description:   strings.Repeat("d", 600),
		Reps:          "8–12",
		Rest:          "60s",
		Sets:          0,
		VideoURL:      "https://video/" + strings.Repeat("x", 600),
	}
	got := SanitizeExercise(in)

	if got.Name != "..." {
		t.Errorf("Name = %q, want ...", got.Name)
	}
	if len(got.Description) != domain.MaxDescriptionLen {
		t.Errorf("Description length = %d, want %d", len(got.Description), domain.MaxDescriptionLen)
	}
	if got.Reps != "8-12" {
		t.Errorf("Reps = %q, want 8-12", got.Reps)
	}
	if got.Sets != 1 || got.ExerciseOrder != 1 {
		t.Errorf("Sets/Order = %d/%d, want 1/1", got.Sets, got.ExerciseOrder)
	}
	if len(got.VideoURL) != domain.MaxVideoURLLen {
		t.Errorf("VideoURL length = %d, want %d", len(got.VideoURL), domain.MaxVideoURLLen)
	}

	blank := SanitizeExercise(domain.Exercise{Name: "\U0001F4AA"})
	if blank.Name != domain.DefaultExerciseName {
		t.Errorf("Name = %q, want %q", blank.Name, domain.DefaultExerciseName)
	}
}
