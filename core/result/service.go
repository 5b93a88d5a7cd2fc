package result

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/mark"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/user"
)

var (
	// errors
	ErrIncompleteResults = errors.New("cannot export incomplete results")
	ErrNoResults         = errors.New("no results for this exam")
)

type (
	// StudentResult is the computed result of one exam for one student.
	// CGPA covers the completed exams up to and including this one, nil while pending.
	StudentResult struct {
		Exam   exam.Exam               `json:"exam"`
		Result *grading.SemesterResult `json:"result"`
		CGPA   *float64                `json:"cgpa"`
	}

	// ExamResult is the computed result of one student for an exam.
	ExamResult struct {
		Student user.User               `json:"student"`
		Result  *grading.SemesterResult `json:"result"`
	}

	// Export is an exported result file.
	Export struct {
		Filename    string
		ContentType string
		Content     []byte
	}

	Service struct {
		exams   exam.Repository
		marks   mark.Repository
		users   user.Repository
		mailSvc core.EmailService
		logger  core.Logger
		conf    *core.Config
	}
)

var _ mark.Notifier = (*Service)(nil)

func NewService(
	conf *core.Config,
	logger core.Logger,
	exams exam.Repository,
	marks mark.Repository,
	users user.Repository,
	mailSvc core.EmailService,
) *Service {
	return &Service{
		exams:   exams,
		marks:   marks,
		users:   users,
		mailSvc: mailSvc,
		logger:  logger,
		conf:    conf,
	}
}

// StudentResults computes the student's result of every exam they have marks for, in authored order.
// Results are recomputed on every call.
func (svc *Service) StudentResults(ctx context.Context, username string) ([]StudentResult, error) {
	exams, err := svc.exams.QueryExams(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	studentMarks, err := svc.marks.QueryStudentMarks(ctx, username)
	if err != nil {
		return nil, errors.Wrap(err, "querying student marks")
	}

	results := make([]StudentResult, 0, len(exams))
	semesters := make([]*grading.SemesterResult, 0, len(exams))
	for _, ex := range exams {
		marks, ok := studentMarks[ex.ID]
		if !ok {
			continue
		}
		res := grading.ComputeSemester(ex.Grading(), marks)
		semesters = append(semesters, res)
		results = append(results, StudentResult{Exam: ex, Result: res})
	}
	for i := range results {
		results[i].CGPA = grading.CGPA(semesters, results[i].Exam.ID)
	}
	return results, nil
}

// StudentResult returns the student's result of one exam.
func (svc *Service) StudentResult(ctx context.Context, username, examID string) (StudentResult, error) {
	if _, err := svc.exams.GetExam(ctx, examID); err != nil {
		return StudentResult{}, err
	}
	results, err := svc.StudentResults(ctx, username)
	if err != nil {
		return StudentResult{}, err
	}
	for _, res := range results {
		if res.Exam.ID == examID {
			return res, nil
		}
	}
	return StudentResult{}, ErrNoResults
}

// ExamResults computes the result of every student of the roster for an exam.
// Students without marks get a nil result.
func (svc *Service) ExamResults(ctx context.Context, examID string) ([]ExamResult, error) {
	ex, err := svc.exams.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	sheet, err := svc.marks.QueryExamMarks(ctx, ex.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying exam marks")
	}
	students, err := svc.users.QueryUsers(ctx, user.QueryFilter{Role: user.RoleStudent}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	results := make([]ExamResult, 0, len(students))
	gEx := ex.Grading()
	for _, st := range students {
		results = append(results, ExamResult{Student: st, Result: grading.ComputeSemester(gEx, sheet[st.Username])})
	}
	return results, nil
}

// Export renders the student's final result of an exam, with its CGPA.
func (svc *Service) Export(ctx context.Context, username, examID, format string) (Export, error) {
	usr, err := svc.users.GetUser(ctx, username)
	if err != nil {
		return Export{}, err
	}
	res, err := svc.StudentResult(ctx, usr.Username, examID)
	if err != nil {
		return Export{}, err
	}
	return render(usr, res, format)
}

func render(usr user.User, res StudentResult, format string) (Export, error) {
	if !res.Result.Final() {
		return Export{}, ErrIncompleteResults
	}

	hdr, doc := document(usr, res)
	var buf bytes.Buffer
	if err := report.Write(&buf, format, hdr, doc); err != nil {
		return Export{}, errors.Wrap(err, "writing report")
	}
	return Export{
		Filename:    report.Filename(usr.Username, res.Exam.Name, format),
		ContentType: report.ContentType(format),
		Content:     buf.Bytes(),
	}, nil
}

// WriteText prints the student's result of an exam as a text report, pending results included.
func WriteText(w io.Writer, usr user.User, res StudentResult) error {
	hdr, doc := document(usr, res)
	return report.WriteText(w, hdr, doc)
}

func document(usr user.User, res StudentResult) (report.Heading, grading.Document) {
	var opts []grading.FormatOption
	if res.CGPA != nil {
		opts = append(opts, grading.WithCGPA(*res.CGPA))
	}

	var hdr report.Heading
	hdr.Add("Student", fmt.Sprintf("%s (%s)", usr.Name, usr.Username))
	hdr.Add("Exam", res.Exam.Name)
	return hdr, grading.FormatForExport(res.Result, opts...)
}

// Analyze runs a what-if simulation. Nothing is stored.
func (svc *Service) Analyze(sim grading.Simulation) (*grading.AnalyzerResult, error) {
	return grading.Analyze(sim)
}

// ExportAnalysis renders a simulation. Pending simulations can be exported.
func (svc *Service) ExportAnalysis(sim grading.Simulation, format string) (Export, error) {
	res, err := grading.Analyze(sim)
	if err != nil {
		return Export{}, err
	}

	var hdr report.Heading
	hdr.Add("Total Marks", fmt.Sprintf("%.2f / %s", res.TotalObtained, grading.FormatNumber(res.TotalPossible)))
	hdr.Add("Average", fmt.Sprintf("%.2f%%", res.Average))

	var buf bytes.Buffer
	if err = report.Write(&buf, format, hdr, grading.FormatAnalysis(res)); err != nil {
		return Export{}, errors.Wrap(err, "writing report")
	}
	return Export{
		Filename:    report.AnalyzerFilename(format),
		ContentType: report.ContentType(format),
		Content:     buf.Bytes(),
	}, nil
}

// NotifyPublished emails the students their newly final result, the CSV export attached.
// Students without an email address are skipped.
func (svc *Service) NotifyPublished(ctx context.Context, ex exam.Exam, usernames []string) {
	messages := make([]*core.EmailMessage, 0, len(usernames))
	for _, uname := range usernames {
		msg, err := svc.publishedMessage(ctx, ex, uname)
		if err != nil {
			svc.logger.Error(fmt.Sprintf("preparing results email for %q: %v", uname, err), err)
			continue
		}
		if msg != nil {
			messages = append(messages, msg)
		}
	}
	if len(messages) > 0 {
		svc.mailSvc.SendMessages(messages...)
	}
}

func (svc *Service) publishedMessage(ctx context.Context, ex exam.Exam, uname string) (*core.EmailMessage, error) {
	usr, err := svc.users.GetUser(ctx, uname)
	if err != nil {
		return nil, errors.Wrap(err, "finding student")
	}
	if usr.Email == "" {
		return nil, nil
	}

	res, err := svc.StudentResult(ctx, uname, ex.ID)
	if err != nil {
		return nil, errors.Wrap(err, "computing result")
	}
	export, err := render(usr, res, report.FormatCSV)
	if err != nil {
		return nil, errors.Wrap(err, "exporting result")
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      ex.Name + " results published",
		TemplateName: "results_published",
		TemplateData: map[string]string{
			"StudentName":    usr.Name,
			"ExamName":       ex.Name,
			"SGPA":           grading.FormatPoint(*res.Result.SGPA),
			"Classification": res.Result.Classification,
		},
		FrontendBaseURL: svc.conf.FrontendBaseURL,
	}
	if err = msg.Attach(bytes.NewReader(export.Content), export.Filename, report.ContentType(report.FormatCSV)); err != nil {
		return nil, errors.Wrap(err, "attaching result")
	}
	return msg, nil
}
