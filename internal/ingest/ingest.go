// Package ingest decodes workout spreadsheets into raw rows and maps those
// rows onto canonical Exercise records.
//
// Two formats are understood, chosen by file-name suffix: delimited text
// (.csv) and Office Open XML workbooks (.xlsx, .xlsm, .xltx, .xls). Workbooks
// additionally yield the hyperlink target of every linked cell, which the
// mapper uses as a fallback source for an exercise's video URL.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnsupportedFormat is wrapped by a ParseError when the file suffix does not
// name a known format.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseError reports a file the decoder could not interpret. Callers surface
// it to the importing user; it is never retried.
type ParseError struct {
	FileName string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.FileName, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RawRow is one decoded row, cell values in column order.
type RawRow []string

// Cell returns the value at column i, or "" when the row is shorter.
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// HyperlinkMap maps a cell reference such as "H3" to its link target.
type HyperlinkMap map[string]string

// Lookup returns the link at column col (letters) of 1-based row, or "".
func (h HyperlinkMap) Lookup(col string, row int) string {
	if h == nil {
		return ""
	}
	return h[strings.ToUpper(col)+strconv.Itoa(row)]
}

// Row is a RawRow together with its 1-based row number in the source file.
type Row struct {
	Number int
	Cells  RawRow
}

// Table is the decoded content of a file. Blank rows are not included.
type Table struct {
	Rows       []Row
	Hyperlinks HyperlinkMap
}

// Format identifies a supported file encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatWorkbook Format = "workbook"
)

// DetectFormat picks the decoder for fileName from its suffix.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm", ".xltx":
		return FormatWorkbook, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Option tunes Ingest.
type Option func(*options)

type options struct {
	linkColumns []string
}

// WithLinkColumns makes workbook decoding collect hyperlinks from the named
// columns on every row, including cells past the last value of a row.
func WithLinkColumns(cols ...string) Option {
	return func(o *options) {
		o.linkColumns = append(o.linkColumns, cols...)
	}
}

// Ingest decodes r according to the suffix of fileName.
func Ingest(ctx context.Context, fileName string, r io.Reader, opts ...Option) (*Table, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, &ParseError{FileName: fileName, Err: err}
	}

	var t *Table
	switch format {
	case FormatCSV:
		t, err = readCSV(ctx, r)
	case FormatWorkbook:
		t, err = readWorkbook(ctx, r, o.linkColumns)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &ParseError{FileName: fileName, Err: err}
	}
	return t, nil
}

// BaseName strips directories and the extension from fileName; the import
// flow uses it as the default workout name.
func BaseName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
