package types

type ConversionRequest struct {
	URL        string
	OutputPath string
}

type ProgressEvent struct {
	Percent int
	Stage   string
}

type ConversionResult struct {
	URL        string
	OutputFile string
	Columns    []string
	Rows       int
}

// Outcome is the terminal result of one conversion. A nil Err means success.
type Outcome struct {
	Result *ConversionResult
	Err    error
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Dataset is a flattened JSON payload. Columns are kept in first-seen order
// and a record without a key renders as an empty cell.
type Dataset struct {
	Columns []string
	Records []map[string]any
}

// Row returns the record at i laid out in column order.
func (d *Dataset) Row(i int) []any {
	row := make([]any, len(d.Columns))
	for j, col := range d.Columns {
		row[j] = d.Records[i][col]
	}
	return row
}
