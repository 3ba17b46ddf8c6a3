package school_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/school"
	"github.com/progressiveschool/progressive/storage/database/inmem"
)

func newService(t *testing.T) *school.Service {
	t.Helper()
	db, err := inmem.Open()
	require.NoError(t, err)
	return school.NewService(inmem.NewSchoolRepository(db))
}

func TestService_CreateDepartment(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.CreateDepartment(ctx, school.NewDepartment{Name: "Sciences"})
	require.NoError(t, err)

	_, err = svc.CreateDepartment(ctx, school.NewDepartment{Name: "Sciences"})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, school.ErrDepartmentExists, vErr.Err)
}

func TestService_CreateAssignment(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	dep, err := svc.CreateDepartment(ctx, school.NewDepartment{Name: "Sciences"})
	require.NoError(t, err)
	crs, err := svc.CreateCourse(ctx, school.NewCourse{Name: "Mathematics", DepartmentID: dep.ID})
	require.NoError(t, err)
	sub, err := svc.CreateSubject(ctx, school.NewSubject{Name: "Calculus", CourseID: crs.ID})
	require.NoError(t, err)
	cls, err := svc.CreateClass(ctx, school.NewSchoolClass{Name: "MATH-1A", CourseID: crs.ID})
	require.NoError(t, err)
	sem, err := svc.CreateSemester(ctx, school.NewSemester{
		Name:      "Fall 2026",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	na := school.NewAssignment{TeacherID: 7, SubjectID: sub.ID, ClassID: cls.ID, SemesterID: sem.ID}

	ts, err := svc.CreateAssignment(ctx, na)
	require.NoError(t, err)
	assert.NotZero(t, ts.ID)

	// exact duplicate is rejected
	_, err = svc.CreateAssignment(ctx, na)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, school.ErrAssignmentExists, vErr.Err)

	// another teacher may hold the same tuple
	na.TeacherID = 8
	_, err = svc.CreateAssignment(ctx, na)
	assert.NoError(t, err)

	// unknown subject is rejected
	_, err = svc.CreateAssignment(ctx, school.NewAssignment{TeacherID: 7, SubjectID: 999, ClassID: cls.ID, SemesterID: sem.ID})
	assert.Equal(t, school.ErrNotFound, err)

	// the marks gate follows assignments
	assigned, err := svc.IsAssigned(ctx, 7, sub.ID, cls.ID, sem.ID)
	require.NoError(t, err)
	assert.True(t, assigned)
	assigned, err = svc.IsAssigned(ctx, 9, sub.ID, cls.ID, sem.ID)
	require.NoError(t, err)
	assert.False(t, assigned)
}

func TestService_DeleteAssignment(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	dep, err := svc.CreateDepartment(ctx, school.NewDepartment{Name: "Arts"})
	require.NoError(t, err)
	crs, err := svc.CreateCourse(ctx, school.NewCourse{Name: "History", DepartmentID: dep.ID})
	require.NoError(t, err)
	sub, err := svc.CreateSubject(ctx, school.NewSubject{Name: "World History", CourseID: crs.ID})
	require.NoError(t, err)
	cls, err := svc.CreateClass(ctx, school.NewSchoolClass{Name: "HIS-1A", CourseID: crs.ID})
	require.NoError(t, err)
	sem, err := svc.CreateSemester(ctx, school.NewSemester{
		Name:      "Spring 2027",
		StartDate: time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 6, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	ts, err := svc.CreateAssignment(ctx, school.NewAssignment{TeacherID: 7, SubjectID: sub.ID, ClassID: cls.ID, SemesterID: sem.ID})
	require.NoError(t, err)

	// another teacher cannot delete it
	err = svc.DeleteAssignment(ctx, 8, ts.ID)
	assert.Equal(t, school.ErrNotFound, err)

	require.NoError(t, svc.DeleteAssignment(ctx, 7, ts.ID))
	err = svc.DeleteAssignment(ctx, 7, ts.ID)
	assert.Equal(t, school.ErrNotFound, err)
}
