// Package restinterval turns the free-text rest column of a workout sheet
// ("90s", "1m30s", "2 min", "45") into whole seconds.
package restinterval

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type unit int

const (
	minutesSeconds unit = iota
	secondsOnly
	minutesOnly
)

// Patterns are tried in order against the normalized text.
var patterns = []struct {
	re   *regexp.Regexp
	kind unit
}{
	{regexp.MustCompile(`^(\d+)m(\d+)s?$`), minutesSeconds},   // 1m30s
	{regexp.MustCompile(`^(\d+)min(\d+)s?$`), minutesSeconds}, // 1min30s
	{regexp.MustCompile(`^(\d+)s(?:ec)?$`), secondsOnly},      // 60s, 60sec
	{regexp.MustCompile(`^(\d+)m(?:in)?$`), minutesOnly},      // 2m, 2min
	{regexp.MustCompile(`^(\d+)$`), secondsOnly},              // bare number
}

var firstDigits = regexp.MustCompile(`\d+`)

// ParseSeconds returns the rest interval described by text in seconds, or 0
// when text holds no number at all.
func ParseSeconds(text string) int {
	norm := normalize(text)
	if norm == "" {
		return 0
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		switch p.kind {
		case minutesSeconds:
			return minutes(m[1], atoi(m[2]))
		case minutesOnly:
			return minutes(m[1], 0)
		default:
			return atoi(m[1])
		}
	}

	if d := firstDigits.FindString(norm); d != "" {
		return atoi(d)
	}
	return 0
}

// normalize lower-cases text and keeps only ASCII letters and digits.
func normalize(text string) string {
	text = strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// atoi parses a digit run; values that overflow int count as 0.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// minutes converts a digit run of minutes plus extra seconds to seconds.
// Totals that would overflow int count as 0.
func minutes(mins string, secs int) int {
	n := atoi(mins)
	if n > (math.MaxInt-secs)/60 {
		return 0
	}
	return n*60 + secs
}

// Format renders a countdown value: "1:05" from a minute up, "45s" below.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	mins, secs := seconds/60, seconds%60
	if mins > 0 {
		return fmt.Sprintf("%d:%02d", mins, secs)
	}
	return fmt.Sprintf("%ds", secs)
}
