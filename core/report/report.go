// Package report writes grading documents to files: CSV sheets and printable text reports.
package report

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grading"
)

// Supported export formats.
const (
	FormatCSV  = "csv"
	FormatText = "txt"
)

// ErrUnknownFormat is returned for export formats other than csv and txt.
var ErrUnknownFormat = errors.New("unknown export format")

// Heading holds the lines printed between the title and the table of a text report.
type Heading struct {
	Lines [][2]string // {label, value}
}

func (h *Heading) Add(label, value string) {
	h.Lines = append(h.Lines, [2]string{label, value})
}

// Write renders doc in the given format.
func Write(w io.Writer, format string, hdr Heading, doc grading.Document) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, doc)
	case FormatText:
		return WriteText(w, hdr, doc)
	}
	return ErrUnknownFormat
}

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Filename is the name of an exported result: <username>_<exam name>_result.<ext>.
func Filename(username, examName, format string) string {
	return username + "_" + examName + "_result." + format
}

// AnalyzerFilename is the name of an exported analyzer result.
func AnalyzerFilename(format string) string {
	return "SGPA_Analyzer_Result." + format
}

func isClassification(label string) bool {
	return strings.EqualFold(label, "Classification")
}
