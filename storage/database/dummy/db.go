// Package dummydb is an in-memory storage for tests and the "memory" storage engine.
package dummydb

import (
	"sync"

	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/user"
)

type (
	// DB holds the tables. Operations touching several tables lock them
	// in declaration order: user, exam, mark.
	DB struct {
		user *userTable
		exam *examTable
		mark *markTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User // {username: user}
	}

	examTable struct {
		sync.RWMutex
		table   map[string]*exam.Exam // {id: exam}
		lastPos int
	}

	markKey struct {
		examID, username, subject string
	}

	markTable struct {
		sync.RWMutex
		table map[markKey]grading.SubjectMarks
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
		exam: &examTable{table: make(map[string]*exam.Exam)},
		mark: &markTable{table: make(map[markKey]grading.SubjectMarks)},
	}
}

// Reset empties all the tables.
func (db *DB) Reset() {
	db.user.Lock()
	defer db.user.Unlock()
	db.exam.Lock()
	defer db.exam.Unlock()
	db.mark.Lock()
	defer db.mark.Unlock()

	db.user.table = make(map[string]*user.User)
	db.exam.table = make(map[string]*exam.Exam)
	db.exam.lastPos = 0
	db.mark.table = make(map[markKey]grading.SubjectMarks)
}

func copySubjects(subjects []grading.Subject) []grading.Subject {
	if subjects == nil {
		return nil
	}
	cp := make([]grading.Subject, len(subjects))
	copy(cp, subjects)
	return cp
}
