package exam

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grading"
)

var (
	// errors
	ErrNotFound      = errors.New("exam not found")
	errSubjectExists = errors.New("a subject with this name already exists")
)

type (
	Repository interface {
		// CreateExam stores the exam after the last one (Position is assigned).
		CreateExam(ctx context.Context, ex Exam) (Exam, error)
		GetExam(ctx context.Context, id string) (Exam, error)
		// QueryExams returns all exams in authored order (Position).
		QueryExams(ctx context.Context) ([]Exam, error)
		// UpdateExam saves the name and subjects of the exam.
		UpdateExam(ctx context.Context, ex Exam) (Exam, error)
		// RenameSubject saves ex (whose subjects already carry the new name)
		// and moves the stored marks of subject `from` to `to`, atomically.
		// Orphan marks already stored under `to` are dropped.
		RenameSubject(ctx context.Context, ex Exam, from, to string) (Exam, error)
		// DeleteExam also deletes all the marks of the exam.
		DeleteExam(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewExam) (Exam, error) {
	now := time.Now().UTC()
	ex := Exam{
		ID:        uuid.New().String(),
		Name:      ne.Name,
		Subjects:  toSubjects(ne.Subjects),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateExam(ctx, ex)
}

func (svc *Service) Get(ctx context.Context, id string) (Exam, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Exam{}, ErrNotFound
	}
	return svc.repo.GetExam(ctx, id)
}

func (svc *Service) Query(ctx context.Context) ([]Exam, error) {
	return svc.repo.QueryExams(ctx)
}

func (svc *Service) Update(ctx context.Context, id string, ue UpdateExam) (Exam, error) {
	ex, err := svc.Get(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	ex.Name = ue.Name
	ex.Subjects = toSubjects(ue.Subjects)
	ex.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateExam(ctx, ex)
}

// RenameSubject renames a subject of the exam and migrates its marks to the new name.
func (svc *Service) RenameSubject(ctx context.Context, id string, rs RenameSubject) (Exam, error) {
	ex, err := svc.Get(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	if rs.From == rs.To {
		return ex, nil
	}

	subjects := make([]grading.Subject, len(ex.Subjects))
	copy(subjects, ex.Subjects)
	for i := range subjects {
		if subjects[i].Name == rs.From {
			subjects[i].Name = rs.To
		}
	}
	ex.Subjects = subjects
	ex.UpdatedAt = time.Now().UTC()
	return svc.repo.RenameSubject(ctx, ex, rs.From, rs.To)
}

// Delete removes the exam and all of its marks.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return svc.repo.DeleteExam(ctx, id)
}
