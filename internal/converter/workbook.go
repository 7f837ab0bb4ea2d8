package converter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/nconklindev/jsonxl/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	DefaultSheetName = "Sheet1"
	// WidthSampleRows bounds how many rows are measured when sizing columns.
	WidthSampleRows = 50
	maxColumnWidth  = 60
	cancelCheckRows = 1000
)

type WriteOptions struct {
	SheetName string
	// TempID names the temporary sibling file the workbook is written to
	// before it replaces the target.
	TempID string
}

// WriteWorkbook writes ds to path as an xlsx workbook: a bold header row of
// column names followed by one row per record. The workbook is written to a
// temporary file next to path and renamed over it, so a failed write never
// leaves a partial file at path.
func WriteWorkbook(ctx context.Context, ds *types.Dataset, path string, opts WriteOptions) error {
	if err := checkWritable(path); err != nil {
		return newError(KindWrite, "check output", err)
	}

	f, err := buildWorkbook(ctx, ds, opts.SheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	tmpPath := tempPath(path, opts.TempID)
	if err := saveTemp(f, tmpPath); err != nil {
		os.Remove(tmpPath)
		return newError(KindWrite, "write workbook", err)
	}

	if err := ctx.Err(); err != nil {
		os.Remove(tmpPath)
		return newError(KindWrite, "write workbook", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return newError(KindWrite, "replace output", err)
	}

	return nil
}

func buildWorkbook(ctx context.Context, ds *types.Dataset, sheetName string) (*excelize.File, error) {
	f := excelize.NewFile()

	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	if sheetName != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, sheetName); err != nil {
			f.Close()
			return nil, newError(KindWrite, "name sheet", err)
		}
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		f.Close()
		return nil, newError(KindWrite, "open sheet", err)
	}

	fail := func(op string, err error) (*excelize.File, error) {
		f.Close()
		return nil, newError(KindWrite, op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fail("style header", err)
	}

	// Widths must be set before the first row is streamed
	for i, width := range columnWidths(ds) {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return fail("size columns", err)
		}
	}

	header := make([]any, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fail("write header", err)
	}

	for i := range ds.Records {
		if i%cancelCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return fail("write rows", err)
			}
		}

		row := ds.Row(i)
		for j, v := range row {
			row[j] = cellValue(v)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fail("write rows", err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fail("write rows", err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fail("flush sheet", err)
	}

	return f, nil
}

// cellValue maps a flattened JSON scalar to the value excelize should store.
// Integers stay integers, other numbers become floats, and anything that does
// not fit is written as text.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case bool, string:
		return val
	}
	return fmt.Sprint(v)
}

func columnWidths(ds *types.Dataset) []float64 {
	widths := make([]float64, len(ds.Columns))
	for i, col := range ds.Columns {
		longest := utf8.RuneCountInString(col)
		for r := 0; r < len(ds.Records) && r < WidthSampleRows; r++ {
			if n := utf8.RuneCountInString(fmt.Sprint(displayValue(ds.Records[r][col]))); n > longest {
				longest = n
			}
		}
		w := float64(longest) + 2
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		widths[i] = w
	}
	return widths
}

func displayValue(v any) any {
	if v == nil {
		return ""
	}
	return v
}

// checkWritable fails when the target exists but cannot be opened for
// writing, which covers read-only files and files held open by another
// program on platforms that lock them.
func checkWritable(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory %s is not a directory", dir)
	}

	info, err = os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("output file is locked or read-only: %w", err)
	}
	return file.Close()
}

func tempPath(path, id string) string {
	if id == "" {
		id = "tmp"
	}
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+id+".part")
}

func saveTemp(f *excelize.File, tmpPath string) error {
	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.WriteTo(out); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
