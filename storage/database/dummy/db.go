package dummydb

import (
	"sync"

	"github.com/tmwangi/elimu/core/comment"
	"github.com/tmwangi/elimu/core/course"
	"github.com/tmwangi/elimu/core/track"
	"github.com/tmwangi/elimu/core/user"
)

type (
	DB struct {
		user       *userTable
		course     *courseTable
		comment    *commentTable
		completion *completionTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		courses  map[string]*course.Course
		contents map[string]*course.Content
		members  map[string]*course.Member
	}

	commentTable struct {
		sync.RWMutex
		table map[string]*comment.Comment
	}

	completionTable struct {
		sync.RWMutex
		table map[string]*track.Completion
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		course: &courseTable{
			courses:  make(map[string]*course.Course),
			contents: make(map[string]*course.Content),
			members:  make(map[string]*course.Member),
		},
		comment:    &commentTable{table: make(map[string]*comment.Comment)},
		completion: &completionTable{table: make(map[string]*track.Completion)},
	}
	return db, nil
}
