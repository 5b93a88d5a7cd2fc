package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/mark"
	"github.com/trezcool/gradebook/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateStudent creates an active student whose password is "student".
func CreateStudent(t *testing.T, repo user.Repository, uname, name string) user.User {
	return CreateUser(t, repo, name, uname, uname+"@example.com", "student", user.RoleStudent, true)
}

func CreateExam(t *testing.T, repo exam.Repository, name string, subjects ...grading.Subject) exam.Exam {
	now := time.Now().UTC()
	ex, err := repo.CreateExam(context.Background(), exam.Exam{
		ID:        uuid.New().String(),
		Name:      name,
		Subjects:  subjects,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createExam() failed: %v", err)
	}
	return ex
}

func SaveMarks(t *testing.T, repo mark.Repository, examID, uname, subject string, marks grading.SubjectMarks) {
	err := repo.UpsertMarks(context.Background(), []mark.Entry{
		{ExamID: examID, Username: uname, Subject: subject, SubjectMarks: marks},
	})
	if err != nil {
		t.Fatalf("saveMarks() failed: %v", err)
	}
}

// FullMarks returns marks worth 50 CIE and the given SEE.
func FullMarks(see grading.SEEMark) grading.SubjectMarks {
	return grading.SubjectMarks{
		MSE1:  IntPtr(20),
		MSE2:  IntPtr(20),
		Task1: IntPtr(4),
		Task2: IntPtr(4),
		Task3: IntPtr(2),
		SEE:   see,
	}
}

func IntPtr(v int) *int {
	return &v
}
