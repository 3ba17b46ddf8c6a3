package result_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/result"
	"github.com/progressiveschool/progressive/core/school"
	"github.com/progressiveschool/progressive/core/user"
	emailsvc "github.com/progressiveschool/progressive/services/email"
	"github.com/progressiveschool/progressive/storage/database/inmem"
)

type testEnv struct {
	usrSvc    *user.Service
	schoolSvc *school.Service
	svc       *result.Service

	teacher user.User
	other   user.User
	admin   user.User
	student user.User

	subject  school.Subject
	class    school.SchoolClass
	semester school.Semester
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	conf := core.NewTestConfig()

	db, err := inmem.Open()
	require.NoError(t, err)

	usrSvc := user.NewService(conf, inmem.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf))
	schoolSvc := school.NewService(inmem.NewSchoolRepository(db))
	svc := result.NewService(inmem.NewMarkRepository(db), schoolSvc, usrSvc)

	env := &testEnv{usrSvc: usrSvc, schoolSvc: schoolSvc, svc: svc}

	env.teacher, err = usrSvc.RegisterTeacher(ctx, user.NewTeacher{FirstName: "Grace", LastName: "Hopper"})
	require.NoError(t, err)
	env.other, err = usrSvc.RegisterTeacher(ctx, user.NewTeacher{FirstName: "Alan", LastName: "Kay"})
	require.NoError(t, err)
	env.admin = user.User{ID: 999, Role: user.RoleAdmin}

	dep, err := schoolSvc.CreateDepartment(ctx, school.NewDepartment{Name: "Sciences"})
	require.NoError(t, err)
	crs, err := schoolSvc.CreateCourse(ctx, school.NewCourse{Name: "Computer Science", DepartmentID: dep.ID})
	require.NoError(t, err)
	env.subject, err = schoolSvc.CreateSubject(ctx, school.NewSubject{Name: "Algorithms", CourseID: crs.ID})
	require.NoError(t, err)
	env.class, err = schoolSvc.CreateClass(ctx, school.NewSchoolClass{Name: "CS-1A", CourseID: crs.ID})
	require.NoError(t, err)
	env.semester, err = schoolSvc.CreateSemester(ctx, school.NewSemester{
		Name:      "Fall 2026",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	env.student, err = usrSvc.RegisterStudent(ctx, user.NewStudent{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		DepartmentID: dep.ID,
		CourseID:     crs.ID,
		ClassID:      env.class.ID,
		SemesterID:   env.semester.ID,
	})
	require.NoError(t, err)

	_, err = schoolSvc.CreateAssignment(ctx, school.NewAssignment{
		TeacherID:  env.teacher.ID,
		SubjectID:  env.subject.ID,
		ClassID:    env.class.ID,
		SemesterID: env.semester.ID,
	})
	require.NoError(t, err)

	return env
}

func (env *testEnv) newMark(score float64) result.NewMark {
	return result.NewMark{
		StudentID:  env.student.ID,
		SubjectID:  env.subject.ID,
		ClassID:    env.class.ID,
		SemesterID: env.semester.ID,
		Score:      score,
	}
}

func TestService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("unassigned teacher is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Record(ctx, env.other, env.newMark(75))
		assert.Equal(t, result.ErrNotAssigned, err)
	})

	t.Run("assigned teacher records with derived grade", func(t *testing.T) {
		env := newTestEnv(t)
		mrk, err := env.svc.Record(ctx, env.teacher, env.newMark(85))
		require.NoError(t, err)
		assert.Equal(t, 85.0, mrk.Score)
		assert.Equal(t, "B", mrk.Grade)
		assert.Equal(t, env.teacher.ID, mrk.TeacherID)
	})

	t.Run("re-recording overwrites instead of duplicating", func(t *testing.T) {
		env := newTestEnv(t)
		first, err := env.svc.Record(ctx, env.teacher, env.newMark(55))
		require.NoError(t, err)
		second, err := env.svc.Record(ctx, env.teacher, env.newMark(92))
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "A", second.Grade)

		rows, err := env.svc.Query(ctx, env.admin, result.QueryFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 92.0, rows[0].Score)
	})

	t.Run("admin records on a teacher's behalf", func(t *testing.T) {
		env := newTestEnv(t)
		nm := env.newMark(70)
		nm.TeacherID = env.teacher.ID
		mrk, err := env.svc.Record(ctx, env.admin, nm)
		require.NoError(t, err)
		assert.Equal(t, env.teacher.ID, mrk.TeacherID)
	})

	t.Run("unknown student is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		nm := env.newMark(70)
		nm.StudentID = 12345
		_, err := env.svc.Record(ctx, env.teacher, nm)
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestService_RecordBatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	marks, err := env.svc.RecordBatch(ctx, env.teacher, result.NewMarkBatch{
		SubjectID:  env.subject.ID,
		ClassID:    env.class.ID,
		SemesterID: env.semester.ID,
		Scores:     []result.StudentScore{{StudentID: env.student.ID, Score: 64}},
	})
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.Equal(t, "D", marks[0].Grade)

	_, err = env.svc.RecordBatch(ctx, env.other, result.NewMarkBatch{
		SubjectID:  env.subject.ID,
		ClassID:    env.class.ID,
		SemesterID: env.semester.ID,
		Scores:     []result.StudentScore{{StudentID: env.student.ID, Score: 64}},
	})
	assert.Equal(t, result.ErrNotAssigned, err)
}

func TestService_Query_scoping(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.Record(ctx, env.teacher, env.newMark(88))
	require.NoError(t, err)

	t.Run("student sees own rows only", func(t *testing.T) {
		rows, err := env.svc.Query(ctx, env.student, result.QueryFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, env.student.ID, rows[0].StudentID)

		otherStudent := user.User{ID: env.student.ID + 100, Role: user.RoleStudent}
		rows, err = env.svc.Query(ctx, otherStudent, result.QueryFilter{})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("teacher sees assigned tuples only", func(t *testing.T) {
		rows, err := env.svc.Query(ctx, env.teacher, result.QueryFilter{})
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		rows, err = env.svc.Query(ctx, env.other, result.QueryFilter{})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("student cannot request another student's rows", func(t *testing.T) {
		_, err := env.svc.QueryForStudent(ctx, env.student, env.student.ID+100, result.QueryFilter{})
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.Record(ctx, env.teacher, env.newMark(80))
	require.NoError(t, err)

	stats, err := env.svc.Stats(ctx, env.admin, result.QueryFilter{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
	if assert.NotNil(t, stats.Mean) {
		assert.Equal(t, 80.0, *stats.Mean)
	}
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	mrk, err := env.svc.Record(ctx, env.teacher, env.newMark(80))
	require.NoError(t, err)

	err = env.svc.Delete(ctx, env.other, mrk.ID)
	assert.Equal(t, result.ErrNotAssigned, err)

	require.NoError(t, env.svc.Delete(ctx, env.teacher, mrk.ID))
	err = env.svc.Delete(ctx, env.teacher, mrk.ID)
	assert.Equal(t, result.ErrNotFound, err)
}
