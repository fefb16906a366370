package export

import (
	"fmt"
	"io"
	"strings"
)

// utf8BOM keeps Excel from mangling accented characters.
const utf8BOM = "\uFEFF"

// WriteCSV writes rows as comma-separated lines prefixed with a UTF-8
// BOM. Cells containing a comma, quote or newline are quoted with
// doubled inner quotes; everything else is written bare, matching what
// the accounting tools on the receiving end expect.
func WriteCSV(w io.Writer, rows [][]string) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = escapeCell(cell)
		}
		line := strings.Join(cells, ",")
		if i < len(rows)-1 {
			line += "\n"
		}
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return nil
}

func escapeCell(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
