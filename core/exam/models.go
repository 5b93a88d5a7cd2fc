package exam

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grading"
)

// Exam is a semester definition: its subjects, in authored order, with their credits.
// Position orders exams for listing and CGPA accumulation.
type Exam struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Subjects  []grading.Subject `json:"subjects"`
	Position  int               `json:"position"`
	CreatedAt time.Time         `json:"created_at"` // UTC
	UpdatedAt time.Time         `json:"updated_at"` // UTC
}

// Grading returns the engine's view of the exam.
func (e Exam) Grading() *grading.Exam {
	return &grading.Exam{ID: e.ID, Name: e.Name, Subjects: e.Subjects}
}

func (e Exam) HasSubject(name string) bool {
	for _, sub := range e.Subjects {
		if sub.Name == name {
			return true
		}
	}
	return false
}

type SubjectInput struct {
	Name    string `json:"name" validate:"required,notblank,max=100"`
	Credits int    `json:"credits" validate:"required,min=1,max=40"`
}

// NewExam contains information needed to create a new Exam.
type NewExam struct {
	Name     string         `json:"name" validate:"required,notblank,max=255"`
	Subjects []SubjectInput `json:"subjects" validate:"required,min=1,subjects,dive"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	cleanSubjects(ne.Subjects)
	return validate.Struct(ne)
}

// UpdateExam replaces the name and the subjects of an Exam.
// Stored marks are keyed by subject name: marks of removed subjects are kept but ignored.
// Use RenameSubject to rename a subject along with its marks; it replaces orphan marks under the new name.
type UpdateExam struct {
	Name     string         `json:"name" validate:"required,notblank,max=255"`
	Subjects []SubjectInput `json:"subjects" validate:"required,min=1,subjects,dive"`
}

func (ue *UpdateExam) Validate(validate *validator.Validate) error {
	ue.Name = core.CleanString(ue.Name)
	cleanSubjects(ue.Subjects)
	return validate.Struct(ue)
}

type RenameSubject struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required,notblank,max=100"`
}

func (rs *RenameSubject) Validate(ctx context.Context, id string, validate *validator.Validate, svc *Service) error {
	rs.From = core.CleanString(rs.From)
	rs.To = core.CleanString(rs.To)
	if err := validate.Struct(rs); err != nil {
		return err
	}

	ex, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ex.HasSubject(rs.From) {
		return core.NewFieldValidationError("from", "subject not found")
	}
	for _, sub := range ex.Subjects {
		if sub.Name != rs.From && strings.EqualFold(sub.Name, rs.To) {
			return core.NewFieldValidationError("to", errSubjectExists.Error())
		}
	}
	return nil
}

func cleanSubjects(subjects []SubjectInput) {
	for i := range subjects {
		subjects[i].Name = core.CleanString(subjects[i].Name)
	}
}

func toSubjects(inputs []SubjectInput) []grading.Subject {
	subjects := make([]grading.Subject, 0, len(inputs))
	for _, in := range inputs {
		subjects = append(subjects, grading.Subject{Name: in.Name, Credits: in.Credits})
	}
	return subjects
}
