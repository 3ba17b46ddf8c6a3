// Package inmem provides in-memory repositories backing tests and local
// development without a database server.
package inmem

import (
	"sync"

	"github.com/progressiveschool/progressive/core/bulletin"
	"github.com/progressiveschool/progressive/core/result"
	"github.com/progressiveschool/progressive/core/school"
	"github.com/progressiveschool/progressive/core/user"
)

type (
	DB struct {
		user     *userTable
		school   *schoolTables
		result   *markTable
		bulletin *bulletinTables
	}

	userTable struct {
		sync.RWMutex
		table   map[uint]*user.User
		pkCount uint
	}

	schoolTables struct {
		sync.RWMutex
		departments map[uint]*school.Department
		courses     map[uint]*school.Course
		subjects    map[uint]*school.Subject
		classes     map[uint]*school.SchoolClass
		semesters   map[uint]*school.Semester
		assignments map[uint]*school.TeacherSubject
		pkCount     uint
	}

	markTable struct {
		sync.RWMutex
		table   map[uint]*result.Mark
		pkCount uint
	}

	bulletinTables struct {
		sync.RWMutex
		announcements map[uint]*bulletin.Announcement
		events        map[uint]*bulletin.Event
		pkCount       uint
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[uint]*user.User)},
		school: &schoolTables{
			departments: make(map[uint]*school.Department),
			courses:     make(map[uint]*school.Course),
			subjects:    make(map[uint]*school.Subject),
			classes:     make(map[uint]*school.SchoolClass),
			semesters:   make(map[uint]*school.Semester),
			assignments: make(map[uint]*school.TeacherSubject),
		},
		result: &markTable{table: make(map[uint]*result.Mark)},
		bulletin: &bulletinTables{
			announcements: make(map[uint]*bulletin.Announcement),
			events:        make(map[uint]*bulletin.Event),
		},
	}
	return db, nil
}
