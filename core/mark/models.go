package mark

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grading"
)

type (
	// Entry is the stored marks of one student for one subject of an exam.
	Entry struct {
		ExamID   string `json:"exam_id"`
		Username string `json:"username"`
		Subject  string `json:"subject"`
		grading.SubjectMarks
	}

	// SubjectMarks holds marks keyed by subject name.
	SubjectMarks map[string]grading.SubjectMarks

	// Sheet holds the marks of every student of an exam: {username: {subject: marks}}.
	Sheet map[string]SubjectMarks
)

// Input is one mark entry sent by a teacher. It replaces the stored entry.
type Input struct {
	Username string          `json:"username" validate:"required"`
	Subject  string          `json:"subject" validate:"required"`
	MSE1     *int            `json:"mse1" validate:"omitempty,min=0,max=20"`
	MSE2     *int            `json:"mse2" validate:"omitempty,min=0,max=20"`
	Task1    *int            `json:"task1" validate:"omitempty,min=0,max=4"`
	Task2    *int            `json:"task2" validate:"omitempty,min=0,max=4"`
	Task3    *int            `json:"task3" validate:"omitempty,min=0,max=2"`
	SEE      grading.SEEMark `json:"see" validate:"omitempty,see"`
}

func (in *Input) clean() {
	in.Username = core.CleanString(in.Username, true /* lower */)
	in.Subject = core.CleanString(in.Subject)
}

func (in Input) marks() grading.SubjectMarks {
	return grading.SubjectMarks{
		MSE1:  in.MSE1,
		MSE2:  in.MSE2,
		Task1: in.Task1,
		Task2: in.Task2,
		Task3: in.Task3,
		SEE:   in.SEE,
	}
}

// SaveMarks is a bulk upsert of mark entries for one exam.
type SaveMarks struct {
	Entries []Input `json:"entries" validate:"required,min=1,dive"`
}

func (sm *SaveMarks) Validate(validate *validator.Validate) error {
	for i := range sm.Entries {
		sm.Entries[i].clean()
	}
	return validate.Struct(sm)
}

// ImportIssue reports a skipped line of a marks import.
type ImportIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportReport sums up a marks import.
type ImportReport struct {
	Imported int           `json:"imported"`
	Skipped  []ImportIssue `json:"skipped"`
}
