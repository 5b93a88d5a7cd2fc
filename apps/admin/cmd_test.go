package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"log"
	"strconv"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/mark"
	"github.com/trezcool/gradebook/core/result"
	"github.com/trezcool/gradebook/core/user"
	emailsvc "github.com/trezcool/gradebook/services/email"
	logsvc "github.com/trezcool/gradebook/services/logger"
	dummydb "github.com/trezcool/gradebook/storage/database/dummy"
	testutil "github.com/trezcool/gradebook/tests"
)

type testCLI struct {
	*commandLine
	usrRepo  user.Repository
	examRepo exam.Repository
	markRepo mark.Repository
	out      *bytes.Buffer
}

func setup(t *testing.T) *testCLI {
	conf := core.NewTestConfig()
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))

	db := dummydb.Open()
	usrRepo := dummydb.NewUserRepository(db)
	examRepo := dummydb.NewExamRepository(db)
	markRepo := dummydb.NewMarkRepository(db)

	out := new(bytes.Buffer)
	return &testCLI{
		commandLine: &commandLine{
			usrSvc:    user.NewService(usrRepo),
			resultSvc: result.NewService(conf, logger, examRepo, markRepo, usrRepo, emailsvc.NewConsoleServiceMock(conf, logger)),
			out:       out,
		},
		usrRepo:  usrRepo,
		examRepo: examRepo,
		markRepo: markRepo,
		out:      out,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"report", "-lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	t.Run("in-memory storage", func(t *testing.T) {
		assert.Equal(t, errNoDatabase, cli.run([]string{"admin", "migrate", "up"}))
	})

	db, err := sql.Open("postgres", "postgres://localhost/gradebook_test?sslmode=disable") // never connects
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cli.db = db

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		if _, err := fs.Stat(fsys, dir+"/00001_init.sql"); err != nil {
			return err
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "0"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "attendance", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no name", args: []string{"adduser", "-username", "bob"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-username", "bob", "-name", "Bob"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword("")
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	t.Run("create student", func(t *testing.T) {
		mockPassword("s3cret")
		require.NoError(t, cli.run([]string{"admin", "adduser", "-username", " Bob ", "-name", "Bob", "-email", "bob@example.com"}))

		usr, err := cli.usrRepo.GetUser(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, user.RoleStudent, usr.Role)
		assert.Equal(t, "bob@example.com", usr.Email)
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword("s3cret"))
	})

	t.Run("update to teacher", func(t *testing.T) {
		mockPassword("n3w")
		require.NoError(t, cli.run([]string{"admin", "adduser", "-username", "bob", "-name", "Robert", "-teacher"}))

		usr, err := cli.usrRepo.GetUser(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, user.RoleTeacher, usr.Role)
		assert.Equal(t, "Robert", usr.Name)
		assert.Equal(t, "bob@example.com", usr.Email)
		assert.NoError(t, usr.CheckPassword("n3w"))
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, cli.usrRepo, "User", "awe", "awe@test.cd", "mdr", user.RoleTeacher, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pwd string
			if e, ok := tt.extra.(extra); ok {
				pwd = e.pwd
			}
			mockPassword(pwd)

			err := cli.run(append([]string{"admin"}, tt.args...))
			tt.check(t, err)
			if err == nil {
				refreshedUsr, err := cli.usrRepo.GetUser(context.Background(), usr.Username)
				require.NoError(t, err)
				assert.NoError(t, refreshedUsr.CheckPassword(pwd))
			}
		})
	}
}

func Test_commandLine_report(t *testing.T) {
	cli := setup(t)
	testutil.CreateStudent(t, cli.usrRepo, "bob", "Bob")
	sem1 := testutil.CreateExam(t, cli.examRepo, "Semester 1", grading.Subject{Name: "Mathematics", Credits: 4})
	sem2 := testutil.CreateExam(t, cli.examRepo, "Semester 2", grading.Subject{Name: "Physics", Credits: 3})
	testutil.SaveMarks(t, cli.markRepo, sem1.ID, "bob", "Mathematics", testutil.FullMarks(grading.Scored(90)))
	testutil.SaveMarks(t, cli.markRepo, sem2.ID, "bob", "Physics", testutil.FullMarks(grading.Unset()))

	tests := []cliTest{
		{name: "no args", args: []string{"report"}, wantErr: errHelp},
		{name: "not a student", args: []string{"report", "-username", "carol"}, wantErr: user.ErrNotFound},
		{name: "unknown exam", args: []string{"report", "-username", "bob", "-exam", "lol"}, wantErr: exam.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	read := func(t *testing.T, args ...string) string {
		cli.out.Reset()
		require.NoError(t, cli.run(append([]string{"admin", "report"}, args...)))
		out, err := io.ReadAll(cli.out)
		require.NoError(t, err)
		return string(out)
	}

	t.Run("all exams", func(t *testing.T) {
		out := read(t, "-username", "bob")
		assert.Contains(t, out, "Semester 1")
		assert.Contains(t, out, "SGPA 10.00, First Class with Distinction")
		assert.Contains(t, out, "Semester 2")
		assert.Contains(t, out, grading.ClassificationPending)
		assert.Contains(t, out, "Bob (bob)")
	})

	t.Run("one exam", func(t *testing.T) {
		out := read(t, "-username", "bob", "-exam", sem2.ID)
		assert.NotContains(t, out, "Semester 1")
		assert.Contains(t, out, "Physics")
	})
}
