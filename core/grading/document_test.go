package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForExport(t *testing.T) {
	exam := &Exam{ID: "e", Subjects: []Subject{{"Math", 4}, {"Physics", 3}}}
	final := ComputeSemester(exam, map[string]SubjectMarks{
		"Math":    mathMarks(Scored(71))["Math"],
		"Physics": {MSE1: intPtr(10), SEE: Absent()},
	})
	pending := ComputeSemester(exam, map[string]SubjectMarks{
		"Math": mathMarks(Scored(71))["Math"],
	})

	tests := []struct {
		name   string
		result *SemesterResult
		opts   []FormatOption
		want   Document
	}{
		{
			name:   "final",
			result: final,
			want: Document{
				Title:  TitleResult,
				Header: []string{"Subject", "Credits", "CIE (50)", "SEE (50)", "Total (100)", "Grade", "GP"},
				Rows: [][]string{
					{"Math", "4", "43", "35.5", "78.5", "A", "8"},
					{"Physics", "3", "10", "AB", "0", "AB", "0"},
				},
				Summary: [][2]string{
					{"SGPA", "4.57"},
					{"Classification", "Academic Probation / Non-compliance"},
				},
				Final: true,
			},
		},
		{
			name:   "final with CGPA and title",
			result: final,
			opts:   []FormatOption{WithCGPA(7.126), WithTitle("Semester 1")},
			want: Document{
				Title:  "Semester 1",
				Header: []string{"Subject", "Credits", "CIE (50)", "SEE (50)", "Total (100)", "Grade", "GP"},
				Rows: [][]string{
					{"Math", "4", "43", "35.5", "78.5", "A", "8"},
					{"Physics", "3", "10", "AB", "0", "AB", "0"},
				},
				Summary: [][2]string{
					{"SGPA", "4.57"},
					{"CGPA", "7.13"},
					{"Classification", "Academic Probation / Non-compliance"},
				},
				Final: true,
			},
		},
		{
			name:   "pending ignores CGPA",
			result: pending,
			opts:   []FormatOption{WithCGPA(8)},
			want: Document{
				Title:  TitleResult,
				Header: []string{"Subject", "Credits", "CIE (50)"},
				Rows:   [][]string{{"Math", "4", "43"}, {"Physics", "3", "0"}},
			},
		},
		{
			name:   "nil result",
			result: nil,
			want:   Document{Title: TitleResult, Header: []string{"Subject", "Credits", "CIE (50)"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatForExport(tt.result, tt.opts...))
		})
	}
}

func TestFormatForExport_doesNotRecompute(t *testing.T) {
	res := ComputeSemester(mathExam, mathMarks(Scored(70)))
	*res.SubjectDetails[0].GradePoint = 3 // tampered on purpose
	res.SubjectDetails[0].Letter = "Z"

	doc := FormatForExport(res)
	assert.Equal(t, []string{"Math", "4", "43", "35", "78", "Z", "3"}, doc.Rows[0])
}

func TestFormatAnalysis(t *testing.T) {
	res, err := Analyze(Simulation{Subjects: []SimulatedSubject{{Name: "Math", Credits: 4, Marks: mathMarks(Scored(70))["Math"]}}})
	assert.NoError(t, err)

	doc := FormatAnalysis(res)
	assert.Equal(t, TitleAnalysis, doc.Title)
	assert.True(t, doc.Final)
	assert.Equal(t, [][2]string{{"SGPA", "8.00"}, {"Classification", "First Class with Distinction"}}, doc.Summary)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "35", FormatNumber(35))
	assert.Equal(t, "35.5", FormatNumber(35.5))
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "8.00", FormatPoint(8))
	assert.Equal(t, "4.57", FormatPoint(32.0/7))
}
