package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/gradebook/core/exam"
)

type examRepository struct {
	db *DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) exam.Repository {
	return &examRepository{db: db}
}

func (repo *examRepository) CreateExam(_ context.Context, ex exam.Exam) (exam.Exam, error) {
	repo.db.exam.Lock()
	defer repo.db.exam.Unlock()

	repo.db.exam.lastPos++
	ex.Position = repo.db.exam.lastPos
	ex.Subjects = copySubjects(ex.Subjects)
	repo.db.exam.table[ex.ID] = &ex
	return repo.clone(&ex), nil
}

func (repo *examRepository) clone(ex *exam.Exam) exam.Exam {
	cp := *ex
	cp.Subjects = copySubjects(ex.Subjects)
	return cp
}

func (repo *examRepository) GetExam(_ context.Context, id string) (exam.Exam, error) {
	repo.db.exam.RLock()
	defer repo.db.exam.RUnlock()

	if ex, ok := repo.db.exam.table[id]; ok {
		return repo.clone(ex), nil
	}
	return exam.Exam{}, exam.ErrNotFound
}

func (repo *examRepository) QueryExams(_ context.Context) ([]exam.Exam, error) {
	repo.db.exam.RLock()
	defer repo.db.exam.RUnlock()

	exams := make([]exam.Exam, 0, len(repo.db.exam.table))
	for _, ex := range repo.db.exam.table {
		exams = append(exams, repo.clone(ex))
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].Position < exams[j].Position })
	return exams, nil
}

func (repo *examRepository) update(ex exam.Exam) (exam.Exam, error) {
	orig, ok := repo.db.exam.table[ex.ID]
	if !ok {
		return exam.Exam{}, exam.ErrNotFound
	}
	orig.Name = ex.Name
	orig.Subjects = copySubjects(ex.Subjects)
	orig.UpdatedAt = ex.UpdatedAt
	return repo.clone(orig), nil
}

func (repo *examRepository) UpdateExam(_ context.Context, ex exam.Exam) (exam.Exam, error) {
	repo.db.exam.Lock()
	defer repo.db.exam.Unlock()
	return repo.update(ex)
}

func (repo *examRepository) RenameSubject(_ context.Context, ex exam.Exam, from, to string) (exam.Exam, error) {
	repo.db.exam.Lock()
	defer repo.db.exam.Unlock()
	repo.db.mark.Lock()
	defer repo.db.mark.Unlock()

	updated, err := repo.update(ex)
	if err != nil {
		return exam.Exam{}, err
	}
	// marks orphaned under the new name are replaced by the renamed ones
	for key := range repo.db.mark.table {
		if key.examID == ex.ID && key.subject == to {
			delete(repo.db.mark.table, key)
		}
	}
	for key, marks := range repo.db.mark.table {
		if key.examID == ex.ID && key.subject == from {
			delete(repo.db.mark.table, key)
			key.subject = to
			repo.db.mark.table[key] = marks
		}
	}
	return updated, nil
}

func (repo *examRepository) DeleteExam(_ context.Context, id string) error {
	repo.db.exam.Lock()
	defer repo.db.exam.Unlock()
	repo.db.mark.Lock()
	defer repo.db.mark.Unlock()

	if _, ok := repo.db.exam.table[id]; !ok {
		return exam.ErrNotFound
	}
	delete(repo.db.exam.table, id)
	for key := range repo.db.mark.table {
		if key.examID == id {
			delete(repo.db.mark.table, key)
		}
	}
	return nil
}
