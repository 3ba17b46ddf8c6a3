package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/progressiveschool/progressive/core/school"
)

type schoolRepository struct {
	db    *schoolTables
	users *userTable
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db.school, users: db.user}
}

func (repo *schoolRepository) nextPK() uint {
	repo.db.pkCount++
	return repo.db.pkCount
}

// Departments

func (repo *schoolRepository) CreateDepartment(ctx context.Context, dep school.Department) (school.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	dep.ID = repo.nextPK()
	repo.db.departments[dep.ID] = &dep
	return dep, nil
}

func (repo *schoolRepository) QueryDepartments(ctx context.Context) ([]school.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	deps := make([]school.Department, 0, len(repo.db.departments))
	for _, dep := range repo.db.departments {
		deps = append(deps, *dep)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].ID < deps[j].ID })
	return deps, nil
}

func (repo *schoolRepository) GetDepartmentByID(ctx context.Context, id uint) (school.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if dep, ok := repo.db.departments[id]; ok {
		return *dep, nil
	}
	return school.Department{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateDepartment(ctx context.Context, dep school.Department) (school.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.departments[dep.ID]; !ok {
		return school.Department{}, school.ErrNotFound
	}
	repo.db.departments[dep.ID] = &dep
	return dep, nil
}

func (repo *schoolRepository) DeleteDepartmentsByID(ctx context.Context, ids ...uint) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.departments, id)
	}
	return nil
}

func (repo *schoolRepository) DepartmentNameTaken(ctx context.Context, name string, excludedID uint) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	for _, dep := range repo.db.departments {
		if dep.ID != excludedID && strings.EqualFold(dep.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// Courses

func (repo *schoolRepository) CreateCourse(ctx context.Context, crs school.Course) (school.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	crs.ID = repo.nextPK()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *schoolRepository) QueryCourses(ctx context.Context) ([]school.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	courses := make([]school.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *schoolRepository) GetCourseByID(ctx context.Context, id uint) (school.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return school.Course{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateCourse(ctx context.Context, crs school.Course) (school.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.courses[crs.ID]; !ok {
		return school.Course{}, school.ErrNotFound
	}
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *schoolRepository) DeleteCoursesByID(ctx context.Context, ids ...uint) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.courses, id)
	}
	return nil
}

// Subjects

func (repo *schoolRepository) CreateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	sub.ID = repo.nextPK()
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *schoolRepository) QuerySubjects(ctx context.Context) ([]school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	subs := make([]school.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		subs = append(subs, *sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (repo *schoolRepository) GetSubjectByID(ctx context.Context, id uint) (school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if sub, ok := repo.db.subjects[id]; ok {
		return *sub, nil
	}
	return school.Subject{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.subjects[sub.ID]; !ok {
		return school.Subject{}, school.ErrNotFound
	}
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *schoolRepository) DeleteSubjectsByID(ctx context.Context, ids ...uint) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.subjects, id)
	}
	return nil
}

func (repo *schoolRepository) SubjectNameTaken(ctx context.Context, name string, courseID, excludedID uint) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	for _, sub := range repo.db.subjects {
		if sub.ID != excludedID && sub.CourseID == courseID && strings.EqualFold(sub.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// Classes

func (repo *schoolRepository) CreateClass(ctx context.Context, cls school.SchoolClass) (school.SchoolClass, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	cls.ID = repo.nextPK()
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) QueryClasses(ctx context.Context) ([]school.SchoolClass, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	classes := make([]school.SchoolClass, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		classes = append(classes, *cls)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *schoolRepository) GetClassByID(ctx context.Context, id uint) (school.SchoolClass, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return school.SchoolClass{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateClass(ctx context.Context, cls school.SchoolClass) (school.SchoolClass, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.classes[cls.ID]; !ok {
		return school.SchoolClass{}, school.ErrNotFound
	}
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) DeleteClassesByID(ctx context.Context, ids ...uint) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.classes, id)
	}
	return nil
}

// Semesters

func (repo *schoolRepository) CreateSemester(ctx context.Context, sem school.Semester) (school.Semester, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	sem.ID = repo.nextPK()
	repo.db.semesters[sem.ID] = &sem
	return sem, nil
}

func (repo *schoolRepository) QuerySemesters(ctx context.Context) ([]school.Semester, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	sems := make([]school.Semester, 0, len(repo.db.semesters))
	for _, sem := range repo.db.semesters {
		sems = append(sems, *sem)
	}
	sort.Slice(sems, func(i, j int) bool {
		if !sems[i].StartDate.Equal(sems[j].StartDate) {
			return sems[i].StartDate.Before(sems[j].StartDate)
		}
		return sems[i].ID < sems[j].ID
	})
	return sems, nil
}

func (repo *schoolRepository) GetSemesterByID(ctx context.Context, id uint) (school.Semester, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if sem, ok := repo.db.semesters[id]; ok {
		return *sem, nil
	}
	return school.Semester{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateSemester(ctx context.Context, sem school.Semester) (school.Semester, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.semesters[sem.ID]; !ok {
		return school.Semester{}, school.ErrNotFound
	}
	repo.db.semesters[sem.ID] = &sem
	return sem, nil
}

func (repo *schoolRepository) DeleteSemestersByID(ctx context.Context, ids ...uint) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.semesters, id)
	}
	return nil
}

// Assignments

func (repo *schoolRepository) CreateAssignment(ctx context.Context, ts school.TeacherSubject) (school.TeacherSubject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	ts.ID = repo.nextPK()
	repo.db.assignments[ts.ID] = &ts
	return ts, nil
}

func (repo *schoolRepository) QueryAssignments(ctx context.Context, filter school.AssignmentFilter) ([]school.AssignmentRow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rows []school.AssignmentRow
	for _, ts := range repo.db.assignments {
		if filter.TeacherID != 0 && ts.TeacherID != filter.TeacherID {
			continue
		}
		if filter.SubjectID != 0 && ts.SubjectID != filter.SubjectID {
			continue
		}
		if filter.ClassID != 0 && ts.ClassID != filter.ClassID {
			continue
		}
		if filter.SemesterID != 0 && ts.SemesterID != filter.SemesterID {
			continue
		}
		rows = append(rows, repo.assignmentRow(*ts))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (repo *schoolRepository) assignmentRow(ts school.TeacherSubject) school.AssignmentRow {
	row := school.AssignmentRow{TeacherSubject: ts}
	if sub, ok := repo.db.subjects[ts.SubjectID]; ok {
		row.SubjectName = sub.Name
	}
	if cls, ok := repo.db.classes[ts.ClassID]; ok {
		row.ClassName = cls.Name
	}
	if sem, ok := repo.db.semesters[ts.SemesterID]; ok {
		row.SemesterName = sem.Name
	}
	row.TeacherName = repo.userName(ts.TeacherID)
	return row
}

func (repo *schoolRepository) userName(id uint) string {
	repo.users.RLock()
	defer repo.users.RUnlock()
	if usr, ok := repo.users.table[id]; ok {
		return usr.Name()
	}
	return ""
}

func (repo *schoolRepository) GetAssignmentByID(ctx context.Context, id uint) (school.TeacherSubject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if ts, ok := repo.db.assignments[id]; ok {
		return *ts, nil
	}
	return school.TeacherSubject{}, school.ErrNotFound
}

func (repo *schoolRepository) DeleteAssignmentsByID(ctx context.Context, ids ...uint) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.assignments, id)
	}
	return nil
}

func (repo *schoolRepository) AssignmentExists(ctx context.Context, teacherID, subjectID, classID, semesterID uint) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	for _, ts := range repo.db.assignments {
		if ts.TeacherID == teacherID && ts.SubjectID == subjectID &&
			ts.ClassID == classID && ts.SemesterID == semesterID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *schoolRepository) CountAll(ctx context.Context) (school.Counts, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return school.Counts{
		Departments: int64(len(repo.db.departments)),
		Courses:     int64(len(repo.db.courses)),
		Classes:     int64(len(repo.db.classes)),
		Subjects:    int64(len(repo.db.subjects)),
		Semesters:   int64(len(repo.db.semesters)),
		Assignments: int64(len(repo.db.assignments)),
	}, nil
}
