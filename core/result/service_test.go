package result_test

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/result"
	"github.com/trezcool/gradebook/core/user"
	emailsvc "github.com/trezcool/gradebook/services/email"
	logsvc "github.com/trezcool/gradebook/services/logger"
	dummydb "github.com/trezcool/gradebook/storage/database/dummy"
	testutil "github.com/trezcool/gradebook/tests"
)

type fixture struct {
	svc              *result.Service
	mailSvc          *emailsvc.ConsoleServiceMock
	bob              user.User
	sem1, sem2, sem3 exam.Exam
}

// setup gives bob a final first exam, a final second exam (one subject absent) and a pending third one.
func setup(t *testing.T) fixture {
	conf := core.NewTestConfig()
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))

	db := dummydb.Open()
	usrRepo := dummydb.NewUserRepository(db)
	examRepo := dummydb.NewExamRepository(db)
	markRepo := dummydb.NewMarkRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	f := fixture{
		svc:     result.NewService(conf, logger, examRepo, markRepo, usrRepo, mailSvc),
		mailSvc: mailSvc,
		bob:     testutil.CreateStudent(t, usrRepo, "bob", "Bob"),
		sem1:    testutil.CreateExam(t, examRepo, "Semester 1", grading.Subject{Name: "Mathematics", Credits: 4}),
		sem2: testutil.CreateExam(t, examRepo, "Semester 2",
			grading.Subject{Name: "Physics", Credits: 3},
			grading.Subject{Name: "Chemistry", Credits: 2},
		),
		sem3: testutil.CreateExam(t, examRepo, "Semester 3", grading.Subject{Name: "Biology", Credits: 2}),
	}
	testutil.CreateStudent(t, usrRepo, "alice", "Alice")
	testutil.CreateUser(t, usrRepo, "Carol", "carol", "", "student", user.RoleStudent, true)

	testutil.SaveMarks(t, markRepo, f.sem1.ID, "bob", "Mathematics", testutil.FullMarks(grading.Scored(90)))
	testutil.SaveMarks(t, markRepo, f.sem2.ID, "bob", "Physics", testutil.FullMarks(grading.Scored(30)))
	testutil.SaveMarks(t, markRepo, f.sem2.ID, "bob", "Chemistry", testutil.FullMarks(grading.Absent()))
	testutil.SaveMarks(t, markRepo, f.sem3.ID, "bob", "Biology", testutil.FullMarks(grading.Unset()))
	testutil.SaveMarks(t, markRepo, f.sem1.ID, "carol", "Mathematics", testutil.FullMarks(grading.Scored(50)))
	return f
}

func TestService_StudentResults(t *testing.T) {
	f := setup(t)

	results, err := f.svc.StudentResults(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, f.sem1.ID, results[0].Exam.ID)
	require.NotNil(t, results[0].CGPA)
	assert.Equal(t, 10.0, *results[0].CGPA)

	// SGPA counts the absent subject, CGPA leaves it out: (4*10 + 3*7) / 7
	assert.Equal(t, f.sem2.ID, results[1].Exam.ID)
	require.True(t, results[1].Result.Final())
	assert.InDelta(t, 4.2, *results[1].Result.SGPA, 1e-9)
	assert.Equal(t, grading.Classify(4.2), results[1].Result.Classification)
	require.NotNil(t, results[1].CGPA)
	assert.InDelta(t, 61.0/7, *results[1].CGPA, 1e-9)

	assert.Equal(t, f.sem3.ID, results[2].Exam.ID)
	assert.False(t, results[2].Result.Final())
	assert.Nil(t, results[2].CGPA)

	t.Run("no marks", func(t *testing.T) {
		results, err := f.svc.StudentResults(context.Background(), "alice")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestService_StudentResult(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.StudentResult(ctx, "bob", f.sem2.ID)
	require.NoError(t, err)
	assert.Equal(t, f.sem2.ID, res.Exam.ID)

	_, err = f.svc.StudentResult(ctx, "alice", f.sem1.ID)
	assert.Equal(t, result.ErrNoResults, err)

	_, err = f.svc.StudentResult(ctx, "bob", "3f1c3b0e-5d48-4d4c-8d43-0b2d4ad9f0aa")
	assert.Equal(t, exam.ErrNotFound, err)
}

func TestService_ExamResults(t *testing.T) {
	f := setup(t)

	results, err := f.svc.ExamResults(context.Background(), f.sem1.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	unames := make([]string, 0, len(results))
	for _, res := range results {
		unames = append(unames, res.Student.Username)
	}
	assert.Equal(t, []string{"alice", "bob", "carol"}, unames)
	assert.Nil(t, results[0].Result)
	assert.True(t, results[1].Result.Final())
	assert.True(t, results[2].Result.Final())
}

func TestService_Export(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		examID  string
		format  string
		wantErr error
	}{
		{name: "pending", examID: f.sem3.ID, format: report.FormatCSV, wantErr: result.ErrIncompleteResults},
		{name: "unknown format", examID: f.sem1.ID, format: "pdf", wantErr: report.ErrUnknownFormat},
		{name: "csv", examID: f.sem2.ID, format: report.FormatCSV},
		{name: "text", examID: f.sem2.ID, format: report.FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			export, err := f.svc.Export(ctx, "bob", tt.examID, tt.format)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "bob_Semester 2_result."+tt.format, export.Filename)
			assert.Equal(t, report.ContentType(tt.format), export.ContentType)

			content := string(export.Content)
			assert.Contains(t, content, "Chemistry")
			assert.Contains(t, content, "4.20")
			assert.Contains(t, content, "8.71")
		})
	}
}

func TestWriteText(t *testing.T) {
	f := setup(t)

	res, err := f.svc.StudentResult(context.Background(), "bob", f.sem3.ID)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, result.WriteText(&buf, f.bob, res))
	assert.Contains(t, buf.String(), "Bob (bob)")
	assert.Contains(t, buf.String(), "Biology")
	assert.Contains(t, buf.String(), "CIE (50)")
	assert.NotContains(t, buf.String(), "SGPA")
}

func TestService_ExportAnalysis(t *testing.T) {
	f := setup(t)

	sim := grading.Simulation{Subjects: []grading.SimulatedSubject{
		{Name: "Mathematics", Credits: 4, Marks: testutil.FullMarks(grading.Unset())},
	}}
	export, err := f.svc.ExportAnalysis(sim, report.FormatText)
	require.NoError(t, err)
	assert.Equal(t, "SGPA_Analyzer_Result.txt", export.Filename)
	assert.Contains(t, string(export.Content), "Average: 100.00%")

	_, err = f.svc.ExportAnalysis(grading.Simulation{}, report.FormatCSV)
	var vErr *core.ValidationError
	assert.True(t, errors.As(err, &vErr), "got %v", err)
}

func TestService_NotifyPublished(t *testing.T) {
	f := setup(t)

	f.svc.NotifyPublished(context.Background(), f.sem1, []string{"bob", "carol", "nobody"})

	sent := f.mailSvc.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "bob@example.com", msg.To[0].Address)
	assert.Equal(t, "Semester 1 results published", msg.Subject)
	assert.Contains(t, msg.TextContent, "10.00")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "bob_Semester 1_result.csv", msg.Attachments[0].Filename)
}
