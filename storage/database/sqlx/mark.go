package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/mark"
)

// markRow stores an absent SEE as grading.AbsentSentinel.
type markRow struct {
	ExamID   string   `db:"exam_id"`
	Username string   `db:"username"`
	Subject  string   `db:"subject"`
	MSE1     null.Int `db:"mse1"`
	MSE2     null.Int `db:"mse2"`
	Task1    null.Int `db:"task1"`
	Task2    null.Int `db:"task2"`
	Task3    null.Int `db:"task3"`
	SEE      null.Int `db:"see"`
}

func toMarkRow(e mark.Entry) markRow {
	return markRow{
		ExamID:   e.ExamID,
		Username: e.Username,
		Subject:  e.Subject,
		MSE1:     null.IntFromPtr(e.MSE1),
		MSE2:     null.IntFromPtr(e.MSE2),
		Task1:    null.IntFromPtr(e.Task1),
		Task2:    null.IntFromPtr(e.Task2),
		Task3:    null.IntFromPtr(e.Task3),
		SEE:      null.IntFromPtr(e.SEE.Int()),
	}
}

func (r markRow) marks() grading.SubjectMarks {
	return grading.SubjectMarks{
		MSE1:  r.MSE1.Ptr(),
		MSE2:  r.MSE2.Ptr(),
		Task1: r.Task1.Ptr(),
		Task2: r.Task2.Ptr(),
		Task3: r.Task3.Ptr(),
		SEE:   grading.SEEFromInt(r.SEE.Ptr()),
	}
}

const markColumns = "exam_id, username, subject, mse1, mse2, task1, task2, task3, see"

type markRepository struct {
	db *DB
}

var _ mark.Repository = (*markRepository)(nil) // interface compliance check

func NewMarkRepository(db *DB) mark.Repository {
	return &markRepository{db: db}
}

func (repo *markRepository) UpsertMarks(ctx context.Context, entries []mark.Entry) error {
	q := `INSERT INTO marks (` + markColumns + `)
		VALUES (:exam_id, :username, :subject, :mse1, :mse2, :task1, :task2, :task3, :see)
		ON CONFLICT (exam_id, username, subject) DO UPDATE SET
			mse1 = EXCLUDED.mse1, mse2 = EXCLUDED.mse2,
			task1 = EXCLUDED.task1, task2 = EXCLUDED.task2, task3 = EXCLUDED.task3,
			see = EXCLUDED.see`
	return repo.db.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, e := range entries {
			if _, err := tx.NamedExecContext(ctx, q, toMarkRow(e)); err != nil {
				return errors.Wrapf(err, "upserting marks of %s (%s)", e.Username, e.Subject)
			}
		}
		return nil
	})
}

func (repo *markRepository) QueryExamMarks(ctx context.Context, examID string) (mark.Sheet, error) {
	var rows []markRow
	q := `SELECT ` + markColumns + ` FROM marks WHERE exam_id = $1`
	if err := repo.db.SelectContext(ctx, &rows, q, examID); err != nil {
		return nil, errors.Wrap(err, "selecting exam marks")
	}
	sheet := make(mark.Sheet)
	for _, r := range rows {
		if sheet[r.Username] == nil {
			sheet[r.Username] = make(mark.SubjectMarks)
		}
		sheet[r.Username][r.Subject] = r.marks()
	}
	return sheet, nil
}

func (repo *markRepository) QueryStudentMarks(ctx context.Context, username string) (map[string]mark.SubjectMarks, error) {
	var rows []markRow
	q := `SELECT ` + markColumns + ` FROM marks WHERE username = $1`
	if err := repo.db.SelectContext(ctx, &rows, q, username); err != nil {
		return nil, errors.Wrap(err, "selecting student marks")
	}
	byExam := make(map[string]mark.SubjectMarks)
	for _, r := range rows {
		if byExam[r.ExamID] == nil {
			byExam[r.ExamID] = make(mark.SubjectMarks)
		}
		byExam[r.ExamID][r.Subject] = r.marks()
	}
	return byExam, nil
}
