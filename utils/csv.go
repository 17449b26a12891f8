// utils/csv.go
package utils

import (
	"bytes"
	"encoding/csv"
)

// BuildCSV renders a header row followed by rows. Fields containing commas,
// quotes or newlines are quoted.
func BuildCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
