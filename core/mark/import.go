package mark

import (
	"encoding/csv"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grading"
)

// ImportColumns is the header of the clean import record format.
var ImportColumns = []string{"username", "subject", "mse1", "mse2", "task1", "task2", "task3", "see"}

var requiredColumns = []string{"username", "subject"}

// Record is one parsed import line. Line is the 1-based line number in the file.
type Record struct {
	Line  int
	Input Input
}

// ParseImport reads CSV records with a header naming ImportColumns (any order, case-insensitive).
// Empty or non-numeric marks are unset, "A" in the see column is absent.
// Only a missing or malformed header, or a broken CSV stream, is an error.
func ParseImport(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, core.NewFieldValidationError("file", "file is empty")
	}
	if err != nil {
		return nil, core.NewFieldValidationError("file", errors.Wrap(err, "reading header").Error())
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, core.NewFieldValidationError("file", "missing column: "+name)
		}
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.NewFieldValidationError("file", errors.Wrap(err, "reading records").Error())
		}
		if isBlank(row) {
			continue
		}

		cell := func(name string) string {
			if i, ok := cols[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		line, _ := cr.FieldPos(0)
		records = append(records, Record{
			Line: line,
			Input: Input{
				Username: cell("username"),
				Subject:  cell("subject"),
				MSE1:     grading.ParseScore(cell("mse1")),
				MSE2:     grading.ParseScore(cell("mse2")),
				Task1:    grading.ParseScore(cell("task1")),
				Task2:    grading.ParseScore(cell("task2")),
				Task3:    grading.ParseScore(cell("task3")),
				SEE:      grading.ParseSEE(cell("see")),
			},
		})
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func joinMessages(msgs map[string]string) string {
	keys := make([]string, 0, len(msgs))
	for k := range msgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, msgs[k])
	}
	return strings.Join(parts, "; ")
}
