package domain

import (
	"sort"
	"time"
)

// SessionDateLayout is the canonical layout of a SessionDate.
const SessionDateLayout = "2006-01-02"

// SessionDate is the calendar day under which progress is grouped, in
// YYYY-MM-DD form. It is fixed when a workout is opened.
type SessionDate string

// DateOf returns the local calendar date of t.
func DateOf(t time.Time) SessionDate {
	return SessionDate(t.Local().Format(SessionDateLayout))
}

func (d SessionDate) String() string { return string(d) }

// ProgressEntry records the completed sets and notes of one exercise on one
// session date. (ExerciseID, SessionDate) is unique.
type ProgressEntry struct {
	ExerciseID    string      `bson:"exercise_id" json:"exercise_id"`
	SessionDate   SessionDate `bson:"session_date" json:"session_date"`
	CompletedSets []int       `bson:"completed_sets" json:"completed_sets"`
	Notes         string      `bson:"notes" json:"notes"`
}

// NewProgressEntry returns the empty entry for (exerciseID, date).
func NewProgressEntry(exerciseID string, date SessionDate) ProgressEntry {
	return ProgressEntry{
		ExerciseID:    exerciseID,
		SessionDate:   date,
		CompletedSets: []int{},
	}
}

// Has reports whether set index i is completed.
func (p ProgressEntry) Has(i int) bool {
	idx := sort.SearchInts(p.CompletedSets, i)
	return idx < len(p.CompletedSets) && p.CompletedSets[idx] == i
}

// Toggle returns a copy of p with membership of set index i flipped.
// CompletedSets stays sorted and free of duplicates.
func (p ProgressEntry) Toggle(i int) ProgressEntry {
	out := p.Clone()
	idx := sort.SearchInts(out.CompletedSets, i)
	if idx < len(out.CompletedSets) && out.CompletedSets[idx] == i {
		out.CompletedSets = append(out.CompletedSets[:idx], out.CompletedSets[idx+1:]...)
		return out
	}
	out.CompletedSets = append(out.CompletedSets, 0)
	copy(out.CompletedSets[idx+1:], out.CompletedSets[idx:])
	out.CompletedSets[idx] = i
	return out
}

// Clone returns a deep copy of p.
func (p ProgressEntry) Clone() ProgressEntry {
	out := p
	out.CompletedSets = make([]int, len(p.CompletedSets))
	copy(out.CompletedSets, p.CompletedSets)
	return out
}

// Normalize sorts CompletedSets and drops duplicates and negative indexes.
// Entries read back from a store go through it before use.
func (p ProgressEntry) Normalize() ProgressEntry {
	out := p.Clone()
	sort.Ints(out.CompletedSets)
	uniq := out.CompletedSets[:0]
	for _, v := range out.CompletedSets {
		if v < 0 || (len(uniq) > 0 && uniq[len(uniq)-1] == v) {
			continue
		}
		uniq = append(uniq, v)
	}
	out.CompletedSets = uniq
	return out
}
