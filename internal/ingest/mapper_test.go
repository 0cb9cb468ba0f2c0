package ingest

import (
	"reflect"
	"testing"

	"alcyxob/workout-tracker/internal/domain"
)

func TestMapTableScenario(t *testing.T) {
	tbl := &Table{
		Rows: []Row{
			{Number: 1, Cells: RawRow{"#", "Exercise", "Reps", "Speed", "Rest", "Sets", "Notes", "Video"}},
			{Number: 2, Cells: RawRow{"1", "Push Up - standard form", "10", "medium", "60s", "3", "", "https://video/pushup"}},
			{Number: 3, Cells: RawRow{"2", "Squat", "12", "slow", "2min", "4", "", ""}},
		},
	}

	got := MapTable(tbl, DefaultLayout())
	want := []domain.Exercise{
		{ExerciseOrder: 1, Name: "Push Up", Description: "standard form", Reps: "10", Speed: "medium", Rest: "60s", Sets: 3, VideoURL: "https://video/pushup"},
		{ExerciseOrder: 2, Name: "Squat", Description: "", Reps: "12", Speed: "slow", Rest: "2min", Sets: 4, VideoURL: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MapTable =\n%+v\nwant\n%+v", got, want)
	}
}

func TestDataRowsSkipsHeaderAndBlankTitles(t *testing.T) {
	tbl := &Table{Rows: []Row{
		{Number: 1, Cells: RawRow{"#", "Exercise"}},
		{Number: 2, Cells: RawRow{"1", "  "}},
		{Number: 3, Cells: RawRow{"2"}},
		{Number: 4, Cells: RawRow{"3", "Lunge"}},
	}}
	rows := DataRows(tbl)
	if len(rows) != 1 || rows[0].Number != 4 {
		t.Fatalf("DataRows = %+v, want only row 4", rows)
	}
	if DataRows(&Table{Rows: tbl.Rows[:1]}) != nil {
		t.Fatal("header-only table should yield no data rows")
	}
}

func TestMapRowOrderIgnoresNumberColumn(t *testing.T) {
	for i := 0; i < 5; i++ {
		ex := MapRow(RawRow{"99", "Row"}, 10, nil, i, DefaultLayout())
		if ex.ExerciseOrder != i+1 {
			t.Errorf("outputIndex %d: order = %d, want %d", i, ex.ExerciseOrder, i+1)
		}
	}
}

func TestMapRowTitleSplit(t *testing.T) {
	tests := []struct {
		title    string
		wantName string
		wantDesc string
	}{
		{"Plank", "Plank", ""},
		{"Plank - hold - breathe", "Plank", "hold - breathe"},
		{"Dead-bug", "Dead-bug", ""},
		{" - only description", "Exercise 1", "only description"},
	}
	for _, tt := range tests {
		ex := MapRow(RawRow{"", tt.title}, 2, nil, 0, DefaultLayout())
		if ex.Name != tt.wantName || ex.Description != tt.wantDesc {
			t.Errorf("title %q: got (%q, %q), want (%q, %q)", tt.title, ex.Name, ex.Description, tt.wantName, tt.wantDesc)
		}
	}
}

func TestMapRowSets(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3", 3},
		{" 4 sets", 4},
		{"", 1},
		{"three", 1},
		{"0", 1},
		{"-2", 1},
	}
	for _, tt := range tests {
		row := RawRow{"", "X", "", "", "", tt.in}
		if got := MapRow(row, 2, nil, 0, DefaultLayout()).Sets; got != tt.want {
			t.Errorf("sets %q = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := MapRow(RawRow{"", "X"}, 2, nil, 0, DefaultLayout()).Sets; got != 1 {
		t.Errorf("missing sets column = %d, want 1", got)
	}
}

func TestMapRowVideoFallback(t *testing.T) {
	links := HyperlinkMap{"H5": "https://h", "B5": "https://b", "B6": "https://b6"}
	tests := []struct {
		name   string
		row    RawRow
		number int
		layout Layout
		want   string
	}{
		{"explicit wins", RawRow{"", "X", "", "", "", "", "", " https://explicit "}, 5, DefaultLayout(), "https://explicit"},
		{"column H link", RawRow{"", "X", "", "", "", "", "", "  "}, 5, DefaultLayout(), "https://h"},
		{"column B link", RawRow{"", "X"}, 6, DefaultLayout(), "https://b6"},
		{"no link", RawRow{"", "X"}, 7, DefaultLayout(), ""},
		{"custom layout", RawRow{"", "X"}, 5, Layout{VideoLinkColumns: []string{"B"}}, "https://b"},
		{"no fallback columns", RawRow{"", "X"}, 5, Layout{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapRow(tt.row, tt.number, links, 0, tt.layout).VideoURL; got != tt.want {
				t.Errorf("VideoURL = %q, want %q", got, tt.want)
			}
		})
	}
}
