package grading

import (
	"fmt"
	"strconv"
)

// Default document titles.
const (
	TitleResult   = "Result Transcript"
	TitleAnalysis = "Simulated Result Transcript"
)

var (
	finalHeader   = []string{"Subject", "Credits", "CIE (50)", "SEE (50)", "Total (100)", "Grade", "GP"}
	pendingHeader = []string{"Subject", "Credits", "CIE (50)"}
)

// Document is a computed result laid out as a table, ready for a sink (CSV, text report, screen).
// Summary is only filled for final results.
type Document struct {
	Title   string      `json:"title"`
	Header  []string    `json:"header"`
	Rows    [][]string  `json:"rows"`
	Summary [][2]string `json:"summary"`
	Final   bool        `json:"final"`
}

type formatOptions struct {
	title string
	cgpa  *float64
}

// FormatOption customizes FormatForExport.
type FormatOption func(*formatOptions)

// WithCGPA adds a CGPA row to the summary of a final document.
func WithCGPA(cgpa float64) FormatOption {
	return func(o *formatOptions) { o.cgpa = &cgpa }
}

// WithTitle overrides the document title.
func WithTitle(title string) FormatOption {
	return func(o *formatOptions) { o.title = title }
}

// FormatForExport lays out an already computed result. It never recomputes grades.
func FormatForExport(result *SemesterResult, opts ...FormatOption) Document {
	o := formatOptions{title: TitleResult}
	for _, opt := range opts {
		opt(&o)
	}

	doc := Document{Title: o.title, Final: result.Final()}
	if result == nil {
		doc.Header = pendingHeader
		return doc
	}

	doc.Rows = make([][]string, 0, len(result.SubjectDetails))
	if !doc.Final {
		doc.Header = pendingHeader
		for _, d := range result.SubjectDetails {
			doc.Rows = append(doc.Rows, []string{d.Name, strconv.Itoa(d.Credits), strconv.Itoa(d.CIE)})
		}
		return doc
	}

	doc.Header = finalHeader
	for _, d := range result.SubjectDetails {
		doc.Rows = append(doc.Rows, []string{
			d.Name,
			strconv.Itoa(d.Credits),
			strconv.Itoa(d.CIE),
			formatSEE(d.SEE),
			FormatNumber(derefFloat(d.FinalPercentage)),
			d.Letter,
			strconv.Itoa(derefInt(d.GradePoint)),
		})
	}

	doc.Summary = append(doc.Summary, [2]string{"SGPA", FormatPoint(*result.SGPA)})
	if o.cgpa != nil {
		doc.Summary = append(doc.Summary, [2]string{"CGPA", FormatPoint(*o.cgpa)})
	}
	doc.Summary = append(doc.Summary, [2]string{"Classification", result.Classification})
	return doc
}

// FormatAnalysis lays out an analyzer result like any other semester result.
func FormatAnalysis(result *AnalyzerResult) Document {
	if result == nil {
		return FormatForExport(nil, WithTitle(TitleAnalysis))
	}
	return FormatForExport(&result.SemesterResult, WithTitle(TitleAnalysis))
}

// FormatNumber prints v without trailing zeros: 35, 35.5.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPoint prints a grade point average with 2 decimals.
func FormatPoint(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// halved SEE mark as blended into the final percentage
func formatSEE(see SEEMark) string {
	if see.IsAbsent() {
		return LetterAbsent
	}
	score, _ := see.Score()
	return FormatNumber(float64(score) / 2)
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
