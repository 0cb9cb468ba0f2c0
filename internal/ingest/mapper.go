package ingest

import (
	"strconv"
	"strings"

	"alcyxob/workout-tracker/internal/domain"
)

// Column positions of the workout sheet template:
//
//	# | Exercise | Reps | Speed | Rest | Sets | Notes | Video
const (
	colNumber = iota // ignored; order comes from ingestion position
	colTitle
	colReps
	colSpeed
	colRest
	colSets
	colNotes // ignored at mapping time
	colVideo

	columnCount
)

const titleSeparator = " - "

// Layout holds the template-specific parts of the mapping.
type Layout struct {
	// VideoLinkColumns are the column letters whose cell hyperlink is used,
	// in order, when the explicit video column is blank. Workbooks must be
	// ingested with WithLinkColumns for columns past H to be scanned.
	VideoLinkColumns []string
}

// DefaultLayout returns the layout of the stock template: the video column's
// own link first, then a link placed on the exercise title.
func DefaultLayout() Layout {
	return Layout{VideoLinkColumns: []string{"H", "B"}}
}

// DataRows drops the header row and every row whose exercise title is blank.
func DataRows(t *Table) []Row {
	if t == nil || len(t.Rows) < 2 {
		return nil
	}
	out := make([]Row, 0, len(t.Rows)-1)
	for _, r := range t.Rows[1:] {
		if strings.TrimSpace(r.Cells.Cell(colTitle)) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// MapTable maps every data row of t, numbering exercises from 1.
func MapTable(t *Table, layout Layout) []domain.Exercise {
	rows := DataRows(t)
	out := make([]domain.Exercise, 0, len(rows))
	for i, r := range rows {
		out = append(out, MapRow(r.Cells, r.Number, t.Hyperlinks, i, layout))
	}
	return out
}

// MapRow converts one data row into an unsaved, unsanitized Exercise.
// rowNumber is the row's 1-based position in the file and is only used to
// address hyperlinks. MapRow never fails: malformed fields fall back to
// defaults.
func MapRow(row RawRow, rowNumber int, links HyperlinkMap, outputIndex int, layout Layout) domain.Exercise {
	name, description := splitTitle(row.Cell(colTitle))
	if name == "" {
		name = "Exercise " + strconv.Itoa(outputIndex+1)
	}

	return domain.Exercise{
		ExerciseOrder: outputIndex + 1,
		Name:          name,
		Description:   description,
		Reps:          strings.TrimSpace(row.Cell(colReps)),
		Speed:         strings.TrimSpace(row.Cell(colSpeed)),
		Rest:          strings.TrimSpace(row.Cell(colRest)),
		Sets:          parseSets(row.Cell(colSets)),
		VideoURL:      videoURL(row, rowNumber, links, layout),
	}
}

func splitTitle(title string) (name, description string) {
	name, description, _ = strings.Cut(title, titleSeparator)
	return strings.TrimSpace(name), strings.TrimSpace(description)
}

func videoURL(row RawRow, rowNumber int, links HyperlinkMap, layout Layout) string {
	if v := strings.TrimSpace(row.Cell(colVideo)); v != "" {
		return v
	}
	for _, col := range layout.VideoLinkColumns {
		if v := links.Lookup(col, rowNumber); v != "" {
			return v
		}
	}
	return ""
}

// parseSets reads the leading integer of s ("3", "4 sets", " 2x"). Anything
// missing, unparsable or below one yields 1.
func parseSets(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
