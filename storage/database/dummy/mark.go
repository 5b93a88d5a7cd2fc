package dummydb

import (
	"context"

	"github.com/trezcool/gradebook/core/mark"
)

type markRepository struct {
	db *DB
}

var _ mark.Repository = (*markRepository)(nil) // interface compliance check

func NewMarkRepository(db *DB) mark.Repository {
	return &markRepository{db: db}
}

func (repo *markRepository) UpsertMarks(_ context.Context, entries []mark.Entry) error {
	repo.db.mark.Lock()
	defer repo.db.mark.Unlock()

	for _, e := range entries {
		repo.db.mark.table[markKey{examID: e.ExamID, username: e.Username, subject: e.Subject}] = e.SubjectMarks
	}
	return nil
}

func (repo *markRepository) QueryExamMarks(_ context.Context, examID string) (mark.Sheet, error) {
	repo.db.mark.RLock()
	defer repo.db.mark.RUnlock()

	sheet := make(mark.Sheet)
	for key, marks := range repo.db.mark.table {
		if key.examID != examID {
			continue
		}
		if sheet[key.username] == nil {
			sheet[key.username] = make(mark.SubjectMarks)
		}
		sheet[key.username][key.subject] = marks
	}
	return sheet, nil
}

func (repo *markRepository) QueryStudentMarks(_ context.Context, username string) (map[string]mark.SubjectMarks, error) {
	repo.db.mark.RLock()
	defer repo.db.mark.RUnlock()

	byExam := make(map[string]mark.SubjectMarks)
	for key, marks := range repo.db.mark.table {
		if key.username != username {
			continue
		}
		if byExam[key.examID] == nil {
			byExam[key.examID] = make(mark.SubjectMarks)
		}
		byExam[key.examID][key.subject] = marks
	}
	return byExam, nil
}
