// Package textsan reduces free text to the character set the remote store
// accepts in its text columns: printable 7-bit ASCII, with common typographic
// punctuation folded to its plain equivalent first.
package textsan

import (
	"strings"
	"unicode/utf8"

	"alcyxob/workout-tracker/internal/domain"
)

var punctuation = strings.NewReplacer(
	"—", "-", // em dash
	"–", "-", // en dash
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"…", "...",
)

// Sanitize folds typographic punctuation and strips every character outside
// the printable ASCII range (0x20-0x7E). It never fails and is idempotent.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = punctuation.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c <= 0x7e {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// SanitizeExercise returns the canonical form of e: text fields sanitized and
// every field cut to its storage limit. The video URL is only truncated.
func SanitizeExercise(e domain.Exercise) domain.Exercise {
	e.Name = Truncate(Sanitize(e.Name), domain.MaxNameLen)
	if strings.TrimSpace(e.Name) == "" {
		e.Name = domain.DefaultExerciseName
	}
	e.Description = Truncate(Sanitize(e.Description), domain.MaxDescriptionLen)
	e.Reps = Truncate(Sanitize(e.Reps), domain.MaxRepsLen)
	e.Speed = Truncate(Sanitize(e.Speed), domain.MaxSpeedLen)
	e.Rest = Truncate(Sanitize(e.Rest), domain.MaxRestLen)
	e.VideoURL = Truncate(e.VideoURL, domain.MaxVideoURLLen)
	if e.Sets < 1 {
		e.Sets = 1
	}
	if e.ExerciseOrder < 1 {
		e.ExerciseOrder = 1
	}
	return e
}
