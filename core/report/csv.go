package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grading"
)

// WriteCSV writes doc as comma-separated values with \r\n line endings.
// Summary rows follow a blank line, the classification value is always quoted.
func WriteCSV(w io.Writer, doc grading.Document) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(doc.Header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if err := cw.WriteAll(doc.Rows); err != nil { // flushes
		return errors.Wrap(err, "writing rows")
	}
	if len(doc.Summary) == 0 {
		return nil
	}

	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return errors.Wrap(err, "writing summary")
	}
	for _, row := range doc.Summary {
		value := row[1]
		if isClassification(row[0]) {
			value = `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
		}
		if _, err := fmt.Fprintf(w, "%s,%s\r\n", row[0], value); err != nil {
			return errors.Wrap(err, "writing summary")
		}
	}
	return nil
}
