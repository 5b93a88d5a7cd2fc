package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/grading"
)

type examRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type subjectRow struct {
	ExamID  string `db:"exam_id"`
	Name    string `db:"name"`
	Credits int    `db:"credits"`
}

func (r examRow) exam(subjects []grading.Subject) exam.Exam {
	return exam.Exam{
		ID:        r.ID,
		Name:      r.Name,
		Subjects:  subjects,
		Position:  r.Position,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type examRepository struct {
	db *DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) exam.Repository {
	return &examRepository{db: db}
}

func (repo *examRepository) insertSubjects(ctx context.Context, tx *sqlx.Tx, ex exam.Exam) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM exam_subjects WHERE exam_id = $1`, ex.ID); err != nil {
		return errors.Wrap(err, "deleting subjects")
	}
	for i, sub := range ex.Subjects {
		q := `INSERT INTO exam_subjects (exam_id, position, name, credits) VALUES ($1, $2, $3, $4)`
		if _, err := tx.ExecContext(ctx, q, ex.ID, i, sub.Name, sub.Credits); err != nil {
			return errors.Wrap(err, "inserting subject")
		}
	}
	return nil
}

func (repo *examRepository) CreateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	err := repo.db.inTx(ctx, func(tx *sqlx.Tx) error {
		// serializes position assignment
		if _, err := tx.ExecContext(ctx, `LOCK TABLE exams IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return errors.Wrap(err, "locking exams")
		}
		q := `INSERT INTO exams (id, name, position, created_at, updated_at)
			SELECT $1, $2, COALESCE(MAX(position), 0) + 1, $3, $4 FROM exams`
		if _, err := tx.ExecContext(ctx, q, ex.ID, ex.Name, ex.CreatedAt.UTC(), ex.UpdatedAt.UTC()); err != nil {
			return errors.Wrap(err, "inserting exam")
		}
		return repo.insertSubjects(ctx, tx, ex)
	})
	if err != nil {
		return exam.Exam{}, err
	}
	return repo.GetExam(ctx, ex.ID)
}

func (repo *examRepository) subjects(ctx context.Context, ids ...string) (map[string][]grading.Subject, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`SELECT exam_id, name, credits FROM exam_subjects WHERE exam_id IN (?) ORDER BY position`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building subjects query")
	}
	var rows []subjectRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	byExam := make(map[string][]grading.Subject, len(ids))
	for _, r := range rows {
		byExam[r.ExamID] = append(byExam[r.ExamID], grading.Subject{Name: r.Name, Credits: r.Credits})
	}
	return byExam, nil
}

func (repo *examRepository) GetExam(ctx context.Context, id string) (exam.Exam, error) {
	var row examRow
	q := `SELECT id, name, position, created_at, updated_at FROM exams WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return exam.Exam{}, trapNoRowsErr(err, exam.ErrNotFound, "selecting exam")
	}
	subjects, err := repo.subjects(ctx, id)
	if err != nil {
		return exam.Exam{}, err
	}
	return row.exam(subjects[id]), nil
}

func (repo *examRepository) QueryExams(ctx context.Context) ([]exam.Exam, error) {
	var rows []examRow
	q := `SELECT id, name, position, created_at, updated_at FROM exams ORDER BY position`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting exams")
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	subjects, err := repo.subjects(ctx, ids...)
	if err != nil {
		return nil, err
	}
	exams := make([]exam.Exam, 0, len(rows))
	for _, r := range rows {
		exams = append(exams, r.exam(subjects[r.ID]))
	}
	return exams, nil
}

func (repo *examRepository) update(ctx context.Context, tx *sqlx.Tx, ex exam.Exam) error {
	res, err := tx.ExecContext(ctx, `UPDATE exams SET name = $1, updated_at = $2 WHERE id = $3`, ex.Name, ex.UpdatedAt.UTC(), ex.ID)
	if err != nil {
		return errors.Wrap(err, "updating exam")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return exam.ErrNotFound
	}
	return repo.insertSubjects(ctx, tx, ex)
}

func (repo *examRepository) UpdateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	if err := repo.db.inTx(ctx, func(tx *sqlx.Tx) error { return repo.update(ctx, tx, ex) }); err != nil {
		return exam.Exam{}, err
	}
	return repo.GetExam(ctx, ex.ID)
}

func (repo *examRepository) RenameSubject(ctx context.Context, ex exam.Exam, from, to string) (exam.Exam, error) {
	err := repo.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := repo.update(ctx, tx, ex); err != nil {
			return err
		}
		// marks orphaned under the new name are replaced by the renamed ones
		if _, err := tx.ExecContext(ctx, `DELETE FROM marks WHERE exam_id = $1 AND subject = $2`, ex.ID, to); err != nil {
			return errors.Wrap(err, "deleting orphan marks")
		}
		q := `UPDATE marks SET subject = $1 WHERE exam_id = $2 AND subject = $3`
		if _, err := tx.ExecContext(ctx, q, to, ex.ID, from); err != nil {
			return errors.Wrap(err, "moving marks")
		}
		return nil
	})
	if err != nil {
		return exam.Exam{}, err
	}
	return repo.GetExam(ctx, ex.ID)
}

// DeleteExam relies on the foreign key cascades of exam_subjects and marks.
func (repo *examRepository) DeleteExam(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return exam.ErrNotFound
	}
	return nil
}
