package mark

import (
	"context"
	"fmt"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/user"
)

var (
	errUnknownStudent = errors.New("student not found")
	errUnknownSubject = errors.New("subject not found in exam")
)

type (
	Repository interface {
		// UpsertMarks creates or replaces the entries, keyed by (exam, student, subject).
		UpsertMarks(ctx context.Context, entries []Entry) error
		// QueryExamMarks returns the marks of every student of the exam.
		QueryExamMarks(ctx context.Context, examID string) (Sheet, error)
		// QueryStudentMarks returns the marks of the student per exam: {examID: {subject: marks}}.
		QueryStudentMarks(ctx context.Context, username string) (map[string]SubjectMarks, error)
	}

	// Notifier is told about the students whose result of an exam just became final.
	Notifier interface {
		NotifyPublished(ctx context.Context, ex exam.Exam, usernames []string)
	}

	Service struct {
		repo       Repository
		exams      exam.Repository
		users      user.Repository
		validate   *validator.Validate
		translator ut.Translator
		notifier   Notifier
	}
)

func NewService(
	repo Repository,
	exams exam.Repository,
	users user.Repository,
	validate *validator.Validate,
	translator ut.Translator,
	notifier Notifier,
) *Service {
	return &Service{
		repo:       repo,
		exams:      exams,
		users:      users,
		validate:   validate,
		translator: translator,
		notifier:   notifier,
	}
}

// Sheet returns the exam and the marks of every student for it.
func (svc *Service) Sheet(ctx context.Context, examID string) (exam.Exam, Sheet, error) {
	ex, err := svc.exams.GetExam(ctx, examID)
	if err != nil {
		return exam.Exam{}, nil, err
	}
	sheet, err := svc.repo.QueryExamMarks(ctx, ex.ID)
	if err != nil {
		return exam.Exam{}, nil, errors.Wrap(err, "querying exam marks")
	}
	return ex, sheet, nil
}

// Save upserts validated mark entries for an exam.
// Students and subjects must exist: the exam's subject names key the marks.
func (svc *Service) Save(ctx context.Context, examID string, data SaveMarks) error {
	ex, err := svc.exams.GetExam(ctx, examID)
	if err != nil {
		return err
	}

	var fields []core.FieldError
	for i, in := range data.Entries {
		if reason := svc.check(ctx, ex, in); reason != nil {
			field := fmt.Sprintf("entries[%d].", i)
			if reason == errUnknownSubject {
				field += "subject"
			} else if reason == errUnknownStudent {
				field += "username"
			} else {
				return reason
			}
			fields = append(fields, core.FieldError{Field: field, Error: reason.Error()})
		}
	}
	if len(fields) > 0 {
		return core.NewValidationError(errors.New("invalid mark entries"), fields...)
	}
	return svc.save(ctx, ex, data.Entries)
}

// check returns errUnknownStudent, errUnknownSubject or an unexpected error.
func (svc *Service) check(ctx context.Context, ex exam.Exam, in Input) error {
	if !ex.HasSubject(in.Subject) {
		return errUnknownSubject
	}
	usr, err := svc.users.GetUser(ctx, in.Username)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errUnknownStudent
		}
		return errors.Wrap(err, "finding student")
	}
	if !usr.IsStudent() {
		return errUnknownStudent
	}
	return nil
}

func (svc *Service) save(ctx context.Context, ex exam.Exam, inputs []Input) error {
	if len(inputs) == 0 {
		return nil
	}

	before, err := svc.repo.QueryExamMarks(ctx, ex.ID)
	if err != nil {
		return errors.Wrap(err, "querying exam marks")
	}

	entries := make([]Entry, 0, len(inputs))
	for _, in := range inputs {
		entries = append(entries, Entry{
			ExamID:       ex.ID,
			Username:     in.Username,
			Subject:      in.Subject,
			SubjectMarks: in.marks(),
		})
	}
	if err = svc.repo.UpsertMarks(ctx, entries); err != nil {
		return errors.Wrap(err, "upserting marks")
	}

	if svc.notifier == nil {
		return nil
	}
	after, err := svc.repo.QueryExamMarks(ctx, ex.ID)
	if err != nil {
		return errors.Wrap(err, "querying exam marks")
	}
	if published := publishedStudents(ex, before, after); len(published) > 0 {
		svc.notifier.NotifyPublished(ctx, ex, published)
	}
	return nil
}

// publishedStudents returns the students whose result went from pending (or none) to final.
func publishedStudents(ex exam.Exam, before, after Sheet) []string {
	gEx := ex.Grading()
	var published []string
	for uname, marks := range after {
		if !grading.ComputeSemester(gEx, marks).Final() {
			continue
		}
		if prev, ok := before[uname]; ok && grading.ComputeSemester(gEx, prev).Final() {
			continue
		}
		published = append(published, uname)
	}
	return published
}

// Import reads marks in the clean record format (see ParseImport) and saves the valid lines.
// Lines with unknown students or subjects, or out of range marks, are skipped and reported.
func (svc *Service) Import(ctx context.Context, examID string, r io.Reader) (ImportReport, error) {
	ex, err := svc.exams.GetExam(ctx, examID)
	if err != nil {
		return ImportReport{}, err
	}

	records, err := ParseImport(r)
	if err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{Skipped: make([]ImportIssue, 0)}
	inputs := make([]Input, 0, len(records))
	for _, rec := range records {
		in := rec.Input
		in.clean()
		if err := svc.validate.Struct(in); err != nil {
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				return ImportReport{}, errors.Wrap(err, "validating import line")
			}
			report.Skipped = append(report.Skipped, ImportIssue{Line: rec.Line, Reason: joinMessages(core.TranslateValidationErrors(vErrs, svc.translator))})
			continue
		}
		if reason := svc.check(ctx, ex, in); reason != nil {
			if reason != errUnknownStudent && reason != errUnknownSubject {
				return ImportReport{}, reason
			}
			report.Skipped = append(report.Skipped, ImportIssue{Line: rec.Line, Reason: fmt.Sprintf("%s: %q", reason, pick(reason, in))})
			continue
		}
		inputs = append(inputs, in)
	}

	if err = svc.save(ctx, ex, inputs); err != nil {
		return ImportReport{}, err
	}
	report.Imported = len(inputs)
	return report, nil
}

func pick(reason error, in Input) string {
	if reason == errUnknownSubject {
		return in.Subject
	}
	return in.Username
}
