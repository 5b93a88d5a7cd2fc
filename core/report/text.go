package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grading"
)

// WriteText writes a printable report: title, heading lines, the table, then the summary block.
func WriteText(w io.Writer, hdr Heading, doc grading.Document) error {
	ew := &errWriter{w: w}
	ew.printf("%s\n", doc.Title)
	for _, line := range hdr.Lines {
		ew.printf("%s: %s\n", line[0], line[1])
	}
	ew.printf("\n")
	if ew.err != nil {
		return errors.Wrap(ew.err, "writing heading")
	}

	table := tablewriter.NewWriter(ew)
	table.SetHeader(doc.Header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(doc.Rows)
	table.Render()
	if ew.err != nil {
		return errors.Wrap(ew.err, "writing table")
	}

	if len(doc.Summary) > 0 {
		ew.printf("\n")
		for _, row := range doc.Summary {
			ew.printf("%s: %s\n", row[0], row[1])
		}
	}
	return errors.Wrap(ew.err, "writing summary")
}

// errWriter keeps the first write error, tablewriter does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(ew, format, args...)
}
