package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/Lumos-Labs-HQ/relgrid/internal/columns"
	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
)

// Filename names the download for one object's export.
func Filename(objectName string) string {
	return fmt.Sprintf("%s_export.csv", objectName)
}

// MarshalCSV serializes the currently displayed rows against the visible
// columns. The trailing actions column is excluded; the header row uses
// column labels; values containing the delimiter or quote character are
// quoted with embedded quotes doubled.
func MarshalCSV(cols []columns.Column, records []recordsvc.Record) ([]byte, error) {
	data := columns.DataColumns(cols)
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(data))
	for i, col := range data {
		header[i] = col.Label
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, len(data))
	for _, rec := range records {
		for i, col := range data {
			row[i] = formatValue(rec.Get(col.FieldName))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		// JSON numbers decode as float64; keep integers clean.
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
