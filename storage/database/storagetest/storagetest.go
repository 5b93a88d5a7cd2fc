// Package storagetest holds the behaviour every storage engine must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/mark"
	"github.com/trezcool/gradebook/core/user"
	testutil "github.com/trezcool/gradebook/tests"
)

// Repositories of one storage engine. Reset empties the storage.
type Repositories struct {
	Users user.Repository
	Exams exam.Repository
	Marks mark.Repository
	Reset func(t *testing.T)
}

// Run checks the repositories against the behaviour the services rely on.
func Run(t *testing.T, repos Repositories) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repos Repositories)
	}{
		{"users", testUsers},
		{"user uniqueness", testUserUniqueness},
		{"exams order", testExamsOrder},
		{"exam update", testExamUpdate},
		{"subject rename", testRenameSubject},
		{"subject rename over orphan marks", testRenameSubjectOverOrphans},
		{"marks upsert", testMarksUpsert},
		{"exam delete cascades", testDeleteExam},
		{"user delete cascades", testDeleteUser},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repos.Reset(t)
			tc.fn(t, repos)
		})
	}
}

var (
	maths   = grading.Subject{Name: "Mathematics", Credits: 4}
	physics = grading.Subject{Name: "Physics", Credits: 3}
)

func testUsers(t *testing.T, repos Repositories) {
	ctx := context.Background()
	testutil.CreateUser(t, repos.Users, "Teacher", "teach", "teach@example.com", "secret", user.RoleTeacher, true)
	bob := testutil.CreateStudent(t, repos.Users, "bob", "Bob Marley")
	testutil.CreateStudent(t, repos.Users, "alice", "Alice Smith")
	testutil.CreateUser(t, repos.Users, "Gone", "gone", "", "secret", user.RoleStudent, false)

	got, err := repos.Users.GetUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.Name, got.Name)
	assert.Equal(t, bob.Email, got.Email)
	assert.NoError(t, got.CheckPassword("student"))

	_, err = repos.Users.GetUser(ctx, "nobody")
	assert.Equal(t, user.ErrNotFound, err)

	isActive := true
	filters := []struct {
		name   string
		filter user.QueryFilter
		want   []string
	}{
		{"all", user.QueryFilter{}, []string{"alice", "bob", "gone", "teach"}},
		{"role", user.QueryFilter{Role: user.RoleStudent}, []string{"alice", "bob", "gone"}},
		{"active students", user.QueryFilter{Role: user.RoleStudent, IsActive: &isActive}, []string{"alice", "bob"}},
		{"search", user.QueryFilter{Search: "MARLEY"}, []string{"bob"}},
		{"search email", user.QueryFilter{Search: "teach@"}, []string{"teach"}},
	}
	for _, tc := range filters {
		t.Run(tc.name, func(t *testing.T) {
			users, err := repos.Users.QueryUsers(ctx, tc.filter, nil)
			require.NoError(t, err)
			got := make([]string, 0, len(users))
			for _, u := range users {
				got = append(got, u.Username)
			}
			assert.Equal(t, tc.want, got)
		})
	}

	users, err := repos.Users.QueryUsers(ctx, user.QueryFilter{}, []core.DBOrdering{{Field: "username", Ascending: false}})
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.Equal(t, "teach", users[0].Username)

	bob.Name = "Robert Marley"
	bob.LastLogin = time.Now().UTC()
	updated, err := repos.Users.UpdateUser(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, "Robert Marley", updated.Name)
	assert.False(t, updated.LastLogin.IsZero())

	_, err = repos.Users.UpdateUser(ctx, user.User{Username: "nobody"})
	assert.Equal(t, user.ErrNotFound, err)
}

func testUserUniqueness(t *testing.T, repos Repositories) {
	ctx := context.Background()
	testutil.CreateStudent(t, repos.Users, "bob", "Bob")

	tests := []struct {
		name            string
		username, email string
		excluded        string
		wantErr         error
	}{
		{"free", "alice", "alice@example.com", "", nil},
		{"username taken", "bob", "other@example.com", "", user.ErrUsernameExists},
		{"email taken", "alice", "bob@example.com", "", user.ErrEmailExists},
		{"empty email", "alice", "", "", nil},
		{"excluded self", "bob", "bob@example.com", "bob", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := repos.Users.CheckUniqueness(ctx, tc.username, tc.email, tc.excluded)
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func testExamsOrder(t *testing.T, repos Repositories) {
	ctx := context.Background()
	sem2 := testutil.CreateExam(t, repos.Exams, "Semester 2", physics)
	sem1 := testutil.CreateExam(t, repos.Exams, "Semester 1", maths, physics)

	assert.Less(t, sem2.Position, sem1.Position)

	exams, err := repos.Exams.QueryExams(ctx)
	require.NoError(t, err)
	require.Len(t, exams, 2)
	assert.Equal(t, sem2.ID, exams[0].ID)
	assert.Equal(t, sem1.ID, exams[1].ID)
	assert.Equal(t, []grading.Subject{maths, physics}, exams[1].Subjects)

	got, err := repos.Exams.GetExam(ctx, sem1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Semester 1", got.Name)
	assert.Equal(t, []grading.Subject{maths, physics}, got.Subjects)
}

func testExamUpdate(t *testing.T, repos Repositories) {
	ctx := context.Background()
	ex := testutil.CreateExam(t, repos.Exams, "Semester 1", maths)

	ex.Name = "Semester I"
	ex.Subjects = []grading.Subject{physics, {Name: "Mathematics", Credits: 5}}
	updated, err := repos.Exams.UpdateExam(ctx, ex)
	require.NoError(t, err)
	assert.Equal(t, "Semester I", updated.Name)
	assert.Equal(t, ex.Position, updated.Position)
	assert.Equal(t, ex.Subjects, updated.Subjects)

	ex.ID = "00000000-0000-0000-0000-000000000000"
	_, err = repos.Exams.UpdateExam(ctx, ex)
	assert.Equal(t, exam.ErrNotFound, err)
}

func testRenameSubject(t *testing.T, repos Repositories) {
	ctx := context.Background()
	bob := testutil.CreateStudent(t, repos.Users, "bob", "Bob")
	ex := testutil.CreateExam(t, repos.Exams, "Semester 1", maths, physics)
	other := testutil.CreateExam(t, repos.Exams, "Semester 2", maths)
	testutil.SaveMarks(t, repos.Marks, ex.ID, bob.Username, "Mathematics", testutil.FullMarks(grading.Scored(80)))
	testutil.SaveMarks(t, repos.Marks, other.ID, bob.Username, "Mathematics", testutil.FullMarks(grading.Absent()))

	ex.Subjects = []grading.Subject{{Name: "Maths", Credits: 4}, physics}
	renamed, err := repos.Exams.RenameSubject(ctx, ex, "Mathematics", "Maths")
	require.NoError(t, err)
	assert.Equal(t, ex.Subjects, renamed.Subjects)

	sheet, err := repos.Marks.QueryExamMarks(ctx, ex.ID)
	require.NoError(t, err)
	assert.NotContains(t, sheet[bob.Username], "Mathematics")
	if assert.Contains(t, sheet[bob.Username], "Maths") {
		assert.Equal(t, grading.Scored(80), sheet[bob.Username]["Maths"].SEE)
	}

	// other exams keep their subject names
	sheet, err = repos.Marks.QueryExamMarks(ctx, other.ID)
	require.NoError(t, err)
	assert.Contains(t, sheet[bob.Username], "Mathematics")
}

func testRenameSubjectOverOrphans(t *testing.T, repos Repositories) {
	ctx := context.Background()
	bob := testutil.CreateStudent(t, repos.Users, "bob", "Bob")
	alice := testutil.CreateStudent(t, repos.Users, "alice", "Alice")
	ex := testutil.CreateExam(t, repos.Exams, "Semester 1", maths, physics)
	testutil.SaveMarks(t, repos.Marks, ex.ID, bob.Username, "Mathematics", testutil.FullMarks(grading.Scored(80)))
	testutil.SaveMarks(t, repos.Marks, ex.ID, bob.Username, "Physics", testutil.FullMarks(grading.Scored(30)))
	testutil.SaveMarks(t, repos.Marks, ex.ID, alice.Username, "Physics", testutil.FullMarks(grading.Absent()))

	// dropping Physics leaves its marks behind
	ex.Subjects = []grading.Subject{maths}
	ex, err := repos.Exams.UpdateExam(ctx, ex)
	require.NoError(t, err)

	ex.Subjects = []grading.Subject{{Name: "Physics", Credits: 4}}
	renamed, err := repos.Exams.RenameSubject(ctx, ex, "Mathematics", "Physics")
	require.NoError(t, err)
	assert.Equal(t, ex.Subjects, renamed.Subjects)

	sheet, err := repos.Marks.QueryExamMarks(ctx, ex.ID)
	require.NoError(t, err)
	assert.NotContains(t, sheet[bob.Username], "Mathematics")
	if assert.Contains(t, sheet[bob.Username], "Physics") {
		assert.Equal(t, grading.Scored(80), sheet[bob.Username]["Physics"].SEE)
	}
	assert.NotContains(t, sheet, alice.Username)
}

func testMarksUpsert(t *testing.T, repos Repositories) {
	ctx := context.Background()
	bob := testutil.CreateStudent(t, repos.Users, "bob", "Bob")
	alice := testutil.CreateStudent(t, repos.Users, "alice", "Alice")
	sem1 := testutil.CreateExam(t, repos.Exams, "Semester 1", maths, physics)
	sem2 := testutil.CreateExam(t, repos.Exams, "Semester 2", maths)

	partial := grading.SubjectMarks{MSE1: testutil.IntPtr(12), Task3: testutil.IntPtr(0)}
	testutil.SaveMarks(t, repos.Marks, sem1.ID, bob.Username, "Mathematics", partial)
	testutil.SaveMarks(t, repos.Marks, sem1.ID, bob.Username, "Physics", testutil.FullMarks(grading.Absent()))
	testutil.SaveMarks(t, repos.Marks, sem1.ID, alice.Username, "Mathematics", testutil.FullMarks(grading.Scored(0)))
	testutil.SaveMarks(t, repos.Marks, sem2.ID, bob.Username, "Mathematics", testutil.FullMarks(grading.Scored(90)))

	sheet, err := repos.Marks.QueryExamMarks(ctx, sem1.ID)
	require.NoError(t, err)
	assert.Len(t, sheet, 2)
	assert.Equal(t, partial, sheet[bob.Username]["Mathematics"])
	assert.True(t, sheet[bob.Username]["Physics"].SEE.IsAbsent())
	assert.Equal(t, grading.Scored(0), sheet[alice.Username]["Mathematics"].SEE)

	// upsert replaces the whole entry
	testutil.SaveMarks(t, repos.Marks, sem1.ID, bob.Username, "Mathematics", testutil.FullMarks(grading.Scored(70)))
	sheet, err = repos.Marks.QueryExamMarks(ctx, sem1.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.FullMarks(grading.Scored(70)), sheet[bob.Username]["Mathematics"])

	byExam, err := repos.Marks.QueryStudentMarks(ctx, bob.Username)
	require.NoError(t, err)
	assert.Len(t, byExam, 2)
	assert.Len(t, byExam[sem1.ID], 2)
	assert.Equal(t, grading.Scored(90), byExam[sem2.ID]["Mathematics"].SEE)

	sheet, err = repos.Marks.QueryExamMarks(ctx, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Empty(t, sheet)
}

func testDeleteExam(t *testing.T, repos Repositories) {
	ctx := context.Background()
	bob := testutil.CreateStudent(t, repos.Users, "bob", "Bob")
	sem1 := testutil.CreateExam(t, repos.Exams, "Semester 1", maths)
	sem2 := testutil.CreateExam(t, repos.Exams, "Semester 2", maths)
	testutil.SaveMarks(t, repos.Marks, sem1.ID, bob.Username, "Mathematics", testutil.FullMarks(grading.Scored(80)))
	testutil.SaveMarks(t, repos.Marks, sem2.ID, bob.Username, "Mathematics", testutil.FullMarks(grading.Scored(80)))

	require.NoError(t, repos.Exams.DeleteExam(ctx, sem1.ID))
	_, err := repos.Exams.GetExam(ctx, sem1.ID)
	assert.Equal(t, exam.ErrNotFound, err)
	assert.Equal(t, exam.ErrNotFound, repos.Exams.DeleteExam(ctx, sem1.ID))

	byExam, err := repos.Marks.QueryStudentMarks(ctx, bob.Username)
	require.NoError(t, err)
	assert.NotContains(t, byExam, sem1.ID)
	assert.Contains(t, byExam, sem2.ID)
}

func testDeleteUser(t *testing.T, repos Repositories) {
	ctx := context.Background()
	bob := testutil.CreateStudent(t, repos.Users, "bob", "Bob")
	alice := testutil.CreateStudent(t, repos.Users, "alice", "Alice")
	ex := testutil.CreateExam(t, repos.Exams, "Semester 1", maths)
	testutil.SaveMarks(t, repos.Marks, ex.ID, bob.Username, "Mathematics", testutil.FullMarks(grading.Scored(80)))
	testutil.SaveMarks(t, repos.Marks, ex.ID, alice.Username, "Mathematics", testutil.FullMarks(grading.Scored(80)))

	require.NoError(t, repos.Users.DeleteUser(ctx, bob.Username))
	assert.Equal(t, user.ErrNotFound, repos.Users.DeleteUser(ctx, bob.Username))

	sheet, err := repos.Marks.QueryExamMarks(ctx, ex.ID)
	require.NoError(t, err)
	assert.NotContains(t, sheet, bob.Username)
	assert.Contains(t, sheet, alice.Username)
}
