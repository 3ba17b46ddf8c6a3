package result

import (
	"context"
	"errors"
	"time"

	"github.com/progressiveschool/progressive/core/school"
	"github.com/progressiveschool/progressive/core/user"
)

var (
	// errors
	ErrNotFound    = errors.New("mark not found")
	ErrNotAssigned = errors.New("teacher is not assigned to this subject for this class and semester")
)

type (
	Repository interface {
		// UpsertMark inserts the mark or, when the (student, subject, class,
		// semester) tuple exists, overwrites its score, grade and teacher.
		UpsertMark(ctx context.Context, mrk Mark) (Mark, error)
		GetMarkByID(ctx context.Context, id uint) (Mark, error)
		// FilterMarks applies AND on set QueryFilter fields after narrowing to
		// the scope. Default order is recorded-at descending.
		FilterMarks(ctx context.Context, filter QueryFilter, scope Scope) ([]Row, error)
		DeleteMarksByID(ctx context.Context, ids ...uint) error
		CountMarks(ctx context.Context) (int64, error)
	}

	// AssignmentDirectory answers who may record what. Satisfied by
	// school.Service.
	AssignmentDirectory interface {
		IsAssigned(ctx context.Context, teacherID, subjectID, classID, semesterID uint) (bool, error)
		QueryAssignments(ctx context.Context, filter school.AssignmentFilter) ([]school.AssignmentRow, error)
	}

	// StudentDirectory resolves students. Satisfied by user.Service.
	StudentDirectory interface {
		GetStudent(ctx context.Context, id uint) (user.User, error)
	}

	Service struct {
		repo        Repository
		assignments AssignmentDirectory
		students    StudentDirectory
	}
)

func NewService(repo Repository, assignments AssignmentDirectory, students StudentDirectory) *Service {
	return &Service{
		repo:        repo,
		assignments: assignments,
		students:    students,
	}
}

// actingTeacher resolves whose assignment gates the write: admins may record
// on a teacher's behalf, teachers only for themselves.
func actingTeacher(actor user.User, teacherID uint) uint {
	if actor.IsAdmin() && teacherID != 0 {
		return teacherID
	}
	return actor.ID
}

// Record upserts a mark. The acting teacher must hold the matching
// (subject, class, semester) assignment; recording the same tuple twice
// leaves exactly one row with the latest score.
func (svc *Service) Record(ctx context.Context, actor user.User, nm NewMark) (Mark, error) {
	teacherID := actingTeacher(actor, nm.TeacherID)

	assigned, err := svc.assignments.IsAssigned(ctx, teacherID, nm.SubjectID, nm.ClassID, nm.SemesterID)
	if err != nil {
		return Mark{}, err
	}
	if !assigned {
		return Mark{}, ErrNotAssigned
	}
	if _, err := svc.students.GetStudent(ctx, nm.StudentID); err != nil {
		return Mark{}, err
	}

	grade, _ := GradeFor(nm.Score)
	now := time.Now().UTC()
	return svc.repo.UpsertMark(ctx, Mark{
		StudentID:  nm.StudentID,
		SubjectID:  nm.SubjectID,
		ClassID:    nm.ClassID,
		SemesterID: nm.SemesterID,
		TeacherID:  teacherID,
		Score:      nm.Score,
		Grade:      grade,
		RecordedAt: now,
		UpdatedAt:  now,
	})
}

// RecordBatch uploads a class sheet. The assignment is checked once; every
// row is validated before any row is written.
func (svc *Service) RecordBatch(ctx context.Context, actor user.User, nb NewMarkBatch) ([]Mark, error) {
	teacherID := actingTeacher(actor, nb.TeacherID)

	assigned, err := svc.assignments.IsAssigned(ctx, teacherID, nb.SubjectID, nb.ClassID, nb.SemesterID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, ErrNotAssigned
	}
	for _, sc := range nb.Scores {
		if _, err := svc.students.GetStudent(ctx, sc.StudentID); err != nil {
			return nil, err
		}
	}

	marks := make([]Mark, 0, len(nb.Scores))
	now := time.Now().UTC()
	for _, sc := range nb.Scores {
		grade, _ := GradeFor(sc.Score)
		mrk, err := svc.repo.UpsertMark(ctx, Mark{
			StudentID:  sc.StudentID,
			SubjectID:  nb.SubjectID,
			ClassID:    nb.ClassID,
			SemesterID: nb.SemesterID,
			TeacherID:  teacherID,
			Score:      sc.Score,
			Grade:      grade,
			RecordedAt: now,
			UpdatedAt:  now,
		})
		if err != nil {
			return nil, err
		}
		marks = append(marks, mrk)
	}
	return marks, nil
}

// scopeFor narrows queries by role: students to their own rows, teachers to
// their assigned tuples, admins to everything.
func (svc *Service) scopeFor(ctx context.Context, actor user.User) (Scope, error) {
	switch {
	case actor.IsAdmin():
		return Scope{Unrestricted: true}, nil
	case actor.IsStudent():
		return Scope{StudentID: actor.ID}, nil
	default: // teacher
		rows, err := svc.assignments.QueryAssignments(ctx, school.AssignmentFilter{TeacherID: actor.ID})
		if err != nil {
			return Scope{}, err
		}
		keys := make([]AssignmentKey, 0, len(rows))
		for _, row := range rows {
			keys = append(keys, AssignmentKey{
				SubjectID:  row.SubjectID,
				ClassID:    row.ClassID,
				SemesterID: row.SemesterID,
			})
		}
		return Scope{Keys: keys}, nil
	}
}

// Query lists marks matching the filter, narrowed to what the actor may see.
func (svc *Service) Query(ctx context.Context, actor user.User, filter QueryFilter) ([]Row, error) {
	scope, err := svc.scopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	return svc.repo.FilterMarks(ctx, filter, scope)
}

// QueryForStudent lists a specific student's rows; students may only request
// their own.
func (svc *Service) QueryForStudent(ctx context.Context, actor user.User, studentID uint, filter QueryFilter) ([]Row, error) {
	if actor.IsStudent() && actor.ID != studentID {
		return nil, user.ErrNotFound
	}
	if _, err := svc.students.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	filter.StudentID = studentID
	return svc.repo.FilterMarks(ctx, filter, Scope{Unrestricted: true})
}

// Stats aggregates the actor-visible rows matching the filter.
func (svc *Service) Stats(ctx context.Context, actor user.User, filter QueryFilter, topN int) (Stats, error) {
	rows, err := svc.Query(ctx, actor, filter)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(rows, topN), nil
}

// Delete removes a mark; a teacher may only remove marks within their own
// assignments.
func (svc *Service) Delete(ctx context.Context, actor user.User, id uint) error {
	mrk, err := svc.repo.GetMarkByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		assigned, err := svc.assignments.IsAssigned(ctx, actor.ID, mrk.SubjectID, mrk.ClassID, mrk.SemesterID)
		if err != nil {
			return err
		}
		if !assigned {
			return ErrNotAssigned
		}
	}
	return svc.repo.DeleteMarksByID(ctx, id)
}

func (svc *Service) Count(ctx context.Context) (int64, error) {
	return svc.repo.CountMarks(ctx)
}
