package school

import (
	"context"
	"errors"
	"time"

	"github.com/progressiveschool/progressive/core"
)

var (
	// errors
	ErrNotFound         = errors.New("record not found")
	ErrDepartmentExists = errors.New("a department with this name already exists")
	ErrSubjectExists    = errors.New("a subject with this name already exists for this course")
	ErrAssignmentExists = errors.New("this teaching assignment already exists")
)

type (
	Repository interface {
		CreateDepartment(ctx context.Context, dep Department) (Department, error)
		QueryDepartments(ctx context.Context) ([]Department, error)
		GetDepartmentByID(ctx context.Context, id uint) (Department, error)
		UpdateDepartment(ctx context.Context, dep Department) (Department, error)
		DeleteDepartmentsByID(ctx context.Context, ids ...uint) error
		// DepartmentNameTaken reports whether another department uses the name.
		DepartmentNameTaken(ctx context.Context, name string, excludedID uint) (bool, error)

		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id uint) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...uint) error

		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		QuerySubjects(ctx context.Context) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id uint) (Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubjectsByID(ctx context.Context, ids ...uint) error
		SubjectNameTaken(ctx context.Context, name string, courseID, excludedID uint) (bool, error)

		CreateClass(ctx context.Context, cls SchoolClass) (SchoolClass, error)
		QueryClasses(ctx context.Context) ([]SchoolClass, error)
		GetClassByID(ctx context.Context, id uint) (SchoolClass, error)
		UpdateClass(ctx context.Context, cls SchoolClass) (SchoolClass, error)
		DeleteClassesByID(ctx context.Context, ids ...uint) error

		CreateSemester(ctx context.Context, sem Semester) (Semester, error)
		// QuerySemesters returns semesters ordered by start date ascending.
		QuerySemesters(ctx context.Context) ([]Semester, error)
		GetSemesterByID(ctx context.Context, id uint) (Semester, error)
		UpdateSemester(ctx context.Context, sem Semester) (Semester, error)
		DeleteSemestersByID(ctx context.Context, ids ...uint) error

		CreateAssignment(ctx context.Context, ts TeacherSubject) (TeacherSubject, error)
		QueryAssignments(ctx context.Context, filter AssignmentFilter) ([]AssignmentRow, error)
		GetAssignmentByID(ctx context.Context, id uint) (TeacherSubject, error)
		DeleteAssignmentsByID(ctx context.Context, ids ...uint) error
		AssignmentExists(ctx context.Context, teacherID, subjectID, classID, semesterID uint) (bool, error)

		CountAll(ctx context.Context) (Counts, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Departments

func (svc *Service) CreateDepartment(ctx context.Context, nd NewDepartment) (Department, error) {
	taken, err := svc.repo.DepartmentNameTaken(ctx, nd.Name, 0)
	if err != nil {
		return Department{}, err
	}
	if taken {
		return Department{}, core.NewValidationError(ErrDepartmentExists,
			core.FieldError{Field: "name", Error: ErrDepartmentExists.Error()})
	}
	now := time.Now().UTC()
	return svc.repo.CreateDepartment(ctx, Department{Name: nd.Name, CreatedAt: now, UpdatedAt: now})
}

func (svc *Service) QueryDepartments(ctx context.Context) ([]Department, error) {
	return svc.repo.QueryDepartments(ctx)
}

func (svc *Service) GetDepartmentByID(ctx context.Context, id uint) (Department, error) {
	return svc.repo.GetDepartmentByID(ctx, id)
}

func (svc *Service) UpdateDepartment(ctx context.Context, id uint, nd NewDepartment) (Department, error) {
	dep, err := svc.repo.GetDepartmentByID(ctx, id)
	if err != nil {
		return Department{}, err
	}
	taken, err := svc.repo.DepartmentNameTaken(ctx, nd.Name, id)
	if err != nil {
		return Department{}, err
	}
	if taken {
		return Department{}, core.NewValidationError(ErrDepartmentExists,
			core.FieldError{Field: "name", Error: ErrDepartmentExists.Error()})
	}
	dep.Name = nd.Name
	dep.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDepartment(ctx, dep)
}

func (svc *Service) DeleteDepartments(ctx context.Context, ids ...uint) error {
	return svc.repo.DeleteDepartmentsByID(ctx, ids...)
}

// Courses

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	if _, err := svc.repo.GetDepartmentByID(ctx, nc.DepartmentID); err != nil {
		return Course{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		Name: nc.Name, DepartmentID: nc.DepartmentID, CreatedAt: now, UpdatedAt: now,
	})
}

func (svc *Service) QueryCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx)
}

func (svc *Service) GetCourseByID(ctx context.Context, id uint) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) UpdateCourse(ctx context.Context, id uint, nc NewCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if _, err := svc.repo.GetDepartmentByID(ctx, nc.DepartmentID); err != nil {
		return Course{}, err
	}
	crs.Name = nc.Name
	crs.DepartmentID = nc.DepartmentID
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) DeleteCourses(ctx context.Context, ids ...uint) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}

// Subjects

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	if _, err := svc.repo.GetCourseByID(ctx, ns.CourseID); err != nil {
		return Subject{}, err
	}
	taken, err := svc.repo.SubjectNameTaken(ctx, ns.Name, ns.CourseID, 0)
	if err != nil {
		return Subject{}, err
	}
	if taken {
		return Subject{}, core.NewValidationError(ErrSubjectExists,
			core.FieldError{Field: "name", Error: ErrSubjectExists.Error()})
	}
	now := time.Now().UTC()
	return svc.repo.CreateSubject(ctx, Subject{
		Name: ns.Name, Code: ns.Code, CourseID: ns.CourseID, CreatedAt: now, UpdatedAt: now,
	})
}

func (svc *Service) QuerySubjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

func (svc *Service) GetSubjectByID(ctx context.Context, id uint) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) UpdateSubject(ctx context.Context, id uint, ns NewSubject) (Subject, error) {
	sub, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	taken, err := svc.repo.SubjectNameTaken(ctx, ns.Name, ns.CourseID, id)
	if err != nil {
		return Subject{}, err
	}
	if taken {
		return Subject{}, core.NewValidationError(ErrSubjectExists,
			core.FieldError{Field: "name", Error: ErrSubjectExists.Error()})
	}
	sub.Name = ns.Name
	sub.Code = ns.Code
	sub.CourseID = ns.CourseID
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc *Service) DeleteSubjects(ctx context.Context, ids ...uint) error {
	return svc.repo.DeleteSubjectsByID(ctx, ids...)
}

// Classes

func (svc *Service) CreateClass(ctx context.Context, nc NewSchoolClass) (SchoolClass, error) {
	if _, err := svc.repo.GetCourseByID(ctx, nc.CourseID); err != nil {
		return SchoolClass{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateClass(ctx, SchoolClass{
		Name: nc.Name, CourseID: nc.CourseID, CreatedAt: now, UpdatedAt: now,
	})
}

func (svc *Service) QueryClasses(ctx context.Context) ([]SchoolClass, error) {
	return svc.repo.QueryClasses(ctx)
}

func (svc *Service) GetClassByID(ctx context.Context, id uint) (SchoolClass, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) UpdateClass(ctx context.Context, id uint, nc NewSchoolClass) (SchoolClass, error) {
	cls, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return SchoolClass{}, err
	}
	cls.Name = nc.Name
	cls.CourseID = nc.CourseID
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *Service) DeleteClasses(ctx context.Context, ids ...uint) error {
	return svc.repo.DeleteClassesByID(ctx, ids...)
}

// Semesters

func (svc *Service) CreateSemester(ctx context.Context, ns NewSemester) (Semester, error) {
	now := time.Now().UTC()
	return svc.repo.CreateSemester(ctx, Semester{
		Name: ns.Name, StartDate: ns.StartDate, EndDate: ns.EndDate, CreatedAt: now, UpdatedAt: now,
	})
}

func (svc *Service) QuerySemesters(ctx context.Context) ([]Semester, error) {
	return svc.repo.QuerySemesters(ctx)
}

func (svc *Service) GetSemesterByID(ctx context.Context, id uint) (Semester, error) {
	return svc.repo.GetSemesterByID(ctx, id)
}

func (svc *Service) UpdateSemester(ctx context.Context, id uint, ns NewSemester) (Semester, error) {
	sem, err := svc.repo.GetSemesterByID(ctx, id)
	if err != nil {
		return Semester{}, err
	}
	sem.Name = ns.Name
	sem.StartDate = ns.StartDate
	sem.EndDate = ns.EndDate
	sem.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSemester(ctx, sem)
}

func (svc *Service) DeleteSemesters(ctx context.Context, ids ...uint) error {
	return svc.repo.DeleteSemestersByID(ctx, ids...)
}

// Assignments

// CreateAssignment registers a teaching assignment. A duplicate
// (subject, class, semester) for the same teacher is a validation error.
func (svc *Service) CreateAssignment(ctx context.Context, na NewAssignment) (TeacherSubject, error) {
	if _, err := svc.repo.GetSubjectByID(ctx, na.SubjectID); err != nil {
		return TeacherSubject{}, err
	}
	if _, err := svc.repo.GetClassByID(ctx, na.ClassID); err != nil {
		return TeacherSubject{}, err
	}
	if _, err := svc.repo.GetSemesterByID(ctx, na.SemesterID); err != nil {
		return TeacherSubject{}, err
	}

	exists, err := svc.repo.AssignmentExists(ctx, na.TeacherID, na.SubjectID, na.ClassID, na.SemesterID)
	if err != nil {
		return TeacherSubject{}, err
	}
	if exists {
		return TeacherSubject{}, core.NewValidationError(ErrAssignmentExists)
	}

	return svc.repo.CreateAssignment(ctx, TeacherSubject{
		TeacherID:  na.TeacherID,
		SubjectID:  na.SubjectID,
		ClassID:    na.ClassID,
		SemesterID: na.SemesterID,
		CreatedAt:  time.Now().UTC(),
	})
}

func (svc *Service) QueryAssignments(ctx context.Context, filter AssignmentFilter) ([]AssignmentRow, error) {
	return svc.repo.QueryAssignments(ctx, filter)
}

// DeleteAssignment removes an assignment owned by the given teacher; an
// assignment belonging to another teacher is reported as not found.
func (svc *Service) DeleteAssignment(ctx context.Context, teacherID, id uint) error {
	ts, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return err
	}
	if teacherID != 0 && ts.TeacherID != teacherID {
		return ErrNotFound
	}
	return svc.repo.DeleteAssignmentsByID(ctx, id)
}

// IsAssigned reports whether the teacher holds the (subject, class, semester)
// assignment. The marks recorder gates on this.
func (svc *Service) IsAssigned(ctx context.Context, teacherID, subjectID, classID, semesterID uint) (bool, error) {
	return svc.repo.AssignmentExists(ctx, teacherID, subjectID, classID, semesterID)
}

func (svc *Service) Counts(ctx context.Context) (Counts, error) {
	return svc.repo.CountAll(ctx)
}
