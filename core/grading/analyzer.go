package grading

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

// The synthetic exam the analyzer grades. It is never persisted.
const (
	AnalyzerExamID   = "analyzer_exam"
	AnalyzerExamName = "Analyzer Simulation"
)

var errInvalidSimulation = errors.New("invalid simulation")

type (
	SimulatedSubject struct {
		Name    string       `json:"name"`
		Credits int          `json:"credits"`
		Marks   SubjectMarks `json:"marks"`
	}

	// Simulation is a "what-if" set of subjects and marks.
	Simulation struct {
		Subjects []SimulatedSubject `json:"subjects"`
	}

	// AnalyzerResult is a SemesterResult of the synthetic exam plus mark totals.
	// Totals are out of 100 per subject when final, out of 50 (CIE only) when pending.
	AnalyzerResult struct {
		SemesterResult
		TotalObtained float64 `json:"total_obtained"`
		TotalPossible float64 `json:"total_possible"`
		Average       float64 `json:"average"`
	}
)

// Exam returns the synthetic exam of the simulation and the marks keyed by subject name.
func (sim Simulation) Exam() (*Exam, map[string]SubjectMarks) {
	exam := &Exam{
		ID:       AnalyzerExamID,
		Name:     AnalyzerExamName,
		Subjects: make([]Subject, 0, len(sim.Subjects)),
	}
	marks := make(map[string]SubjectMarks, len(sim.Subjects))
	for _, s := range sim.Subjects {
		name := strings.TrimSpace(s.Name)
		exam.Subjects = append(exam.Subjects, Subject{Name: name, Credits: s.Credits})
		marks[name] = s.Marks
	}
	return exam, marks
}

// Validate checks the simulation: at least one subject, unique non-blank names,
// credits >= 1 and marks within range.
func (sim Simulation) Validate() error {
	if len(sim.Subjects) == 0 {
		return core.NewValidationError(errInvalidSimulation,
			core.FieldError{Field: "subjects", Error: "at least one subject is required"})
	}

	var fields []core.FieldError
	seen := make(map[string]bool, len(sim.Subjects))
	for i, s := range sim.Subjects {
		prefix := fmt.Sprintf("subjects[%d].", i)
		name := strings.TrimSpace(s.Name)
		switch {
		case name == "":
			fields = append(fields, core.FieldError{Field: prefix + "name", Error: "name is a required field"})
		case seen[strings.ToLower(name)]:
			fields = append(fields, core.FieldError{Field: prefix + "name", Error: "subject names must be unique"})
		}
		seen[strings.ToLower(name)] = true

		if s.Credits < 1 {
			fields = append(fields, core.FieldError{Field: prefix + "credits", Error: "credits must be 1 or greater"})
		}
		problems := s.Marks.Problems()
		keys := make([]string, 0, len(problems))
		for field := range problems {
			keys = append(keys, field)
		}
		sort.Strings(keys)
		for _, field := range keys {
			fields = append(fields, core.FieldError{Field: prefix + "marks." + field, Error: problems[field]})
		}
	}
	if len(fields) > 0 {
		return core.NewValidationError(errInvalidSimulation, fields...)
	}
	return nil
}

// Analyze grades a simulation through the same pipeline as real exams.
func Analyze(sim Simulation) (*AnalyzerResult, error) {
	if err := sim.Validate(); err != nil {
		return nil, err
	}

	res := ComputeSemester(sim.Exam())
	out := &AnalyzerResult{SemesterResult: *res}
	final := res.Final()
	for _, d := range res.SubjectDetails {
		if final {
			out.TotalObtained += *d.FinalPercentage
			out.TotalPossible += 100
		} else {
			out.TotalObtained += float64(d.CIE)
			out.TotalPossible += float64(MaxCIE)
		}
	}
	if out.TotalPossible > 0 {
		out.Average = out.TotalObtained / out.TotalPossible * 100
	}
	return out, nil
}
