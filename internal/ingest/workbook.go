package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var errEmptyWorkbook = errors.New("workbook has no sheets")

// readWorkbook reads the first sheet of an OOXML workbook. Cell values come
// back as their formatted text; linked cells contribute to the hyperlink map.
// Links are looked up across the template columns, the row's values and
// linkColumns, whichever reaches furthest.
func readWorkbook(ctx context.Context, r io.Reader, linkColumns []string) (*Table, error) {
	minWidth := columnCount
	for _, col := range linkColumns {
		n, err := excelize.ColumnNameToNumber(strings.ToUpper(strings.TrimSpace(col)))
		if err != nil {
			return nil, fmt.Errorf("link column %q: %w", col, err)
		}
		if n > minWidth {
			minWidth = n
		}
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errEmptyWorkbook
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	t := &Table{Hyperlinks: HyperlinkMap{}}
	for ri, row := range rows {
		if ri%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		width := len(row)
		if width < minWidth {
			width = minWidth
		}
		for ci := 0; ci < width; ci++ {
			ref, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return nil, err
			}
			ok, target, err := f.GetCellHyperLink(sheet, ref)
			if err != nil {
				return nil, err
			}
			if ok && target != "" {
				t.Hyperlinks[ref] = target
			}
		}
		if isBlank(row) {
			continue
		}
		t.Rows = append(t.Rows, Row{Number: ri + 1, Cells: RawRow(row)})
	}
	return t, nil
}
