package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// readCSV returns every non-empty record verbatim. Delimited files never carry
// hyperlinks, so the map is always empty.
func readCSV(ctx context.Context, r io.Reader) (*Table, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	t := &Table{Hyperlinks: HyperlinkMap{}}
	for n := 0; ; n++ {
		if n%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		t.Rows = append(t.Rows, Row{Number: line, Cells: RawRow(rec)})
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// stripBOM drops a leading UTF-8 byte order mark, which spreadsheet exports
// commonly prepend.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return io.MultiReader(strings.NewReader(string(buf[:n])), r)
	}
	if buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf)), r)
}
