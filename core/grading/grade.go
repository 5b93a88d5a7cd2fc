// Package grading computes subject grades, SGPA and CGPA from raw component marks.
//
// Every function in this package is pure: callers pass snapshots of exams and marks
// and get freshly computed results back. Nothing is cached or persisted here.
package grading

// Letter grades with a special meaning.
const (
	LetterAbsent  = "AB"
	LetterFail    = "F"
	LetterPending = "N/A"
)

type (
	// Grade is the outcome of resolving a final percentage against the grading table.
	Grade struct {
		GradePoint int    `json:"grade_point"`
		Letter     string `json:"letter"`
		Descriptor string `json:"descriptor"`
	}

	// GradeBand is one row of the grading table: percentages >= Min resolve to Grade.
	GradeBand struct {
		Min float64 `json:"min"`
		Grade
	}
)

var (
	absentGrade = Grade{GradePoint: 0, Letter: LetterAbsent, Descriptor: "Absent"}

	// sorted by descending Min, the last band must start at 0
	gradingTable = []GradeBand{
		{Min: 90, Grade: Grade{GradePoint: 10, Letter: "O", Descriptor: "Outstanding"}},
		{Min: 80, Grade: Grade{GradePoint: 9, Letter: "A+", Descriptor: "Excellent"}},
		{Min: 70, Grade: Grade{GradePoint: 8, Letter: "A", Descriptor: "Very Good"}},
		{Min: 60, Grade: Grade{GradePoint: 7, Letter: "B+", Descriptor: "Good"}},
		{Min: 55, Grade: Grade{GradePoint: 6, Letter: "B", Descriptor: "Above Average"}},
		{Min: 50, Grade: Grade{GradePoint: 5, Letter: "C", Descriptor: "Average"}},
		{Min: 40, Grade: Grade{GradePoint: 4, Letter: "P", Descriptor: "Pass"}},
		{Min: 0, Grade: Grade{GradePoint: 0, Letter: LetterFail, Descriptor: "Fails"}},
	}
)

// GradingTable returns a copy of the grading bands, highest first.
func GradingTable() []GradeBand {
	bands := make([]GradeBand, len(gradingTable))
	copy(bands, gradingTable)
	return bands
}

// ResolveGrade maps a final percentage to its grade.
// An absent student always gets the absent grade, whatever the percentage.
func ResolveGrade(percentage float64, absent bool) Grade {
	if absent {
		return absentGrade
	}
	for _, band := range gradingTable {
		if percentage >= band.Min {
			return band.Grade
		}
	}
	// negative percentages
	return gradingTable[len(gradingTable)-1].Grade
}
