package gormrepos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/progressiveschool/progressive/core/school"
)

type schoolRepository struct {
	db *gorm.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *gorm.DB) school.Repository {
	return &schoolRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return school.ErrNotFound
	}
	return err
}

// Departments

func (repo *schoolRepository) CreateDepartment(ctx context.Context, dep school.Department) (school.Department, error) {
	if err := repo.db.WithContext(ctx).Create(&dep).Error; err != nil {
		return school.Department{}, err
	}
	return dep, nil
}

func (repo *schoolRepository) QueryDepartments(ctx context.Context) ([]school.Department, error) {
	var deps []school.Department
	if err := repo.db.WithContext(ctx).Order("id").Find(&deps).Error; err != nil {
		return nil, err
	}
	return deps, nil
}

func (repo *schoolRepository) GetDepartmentByID(ctx context.Context, id uint) (school.Department, error) {
	var dep school.Department
	if err := repo.db.WithContext(ctx).First(&dep, id).Error; err != nil {
		return school.Department{}, notFound(err)
	}
	return dep, nil
}

func (repo *schoolRepository) UpdateDepartment(ctx context.Context, dep school.Department) (school.Department, error) {
	if err := repo.db.WithContext(ctx).Save(&dep).Error; err != nil {
		return school.Department{}, err
	}
	return dep, nil
}

func (repo *schoolRepository) DeleteDepartmentsByID(ctx context.Context, ids ...uint) error {
	return repo.db.WithContext(ctx).Delete(&school.Department{}, ids).Error
}

func (repo *schoolRepository) DepartmentNameTaken(ctx context.Context, name string, excludedID uint) (bool, error) {
	var n int64
	err := repo.db.WithContext(ctx).
		Model(&school.Department{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, excludedID).
		Count(&n).Error
	return n > 0, err
}

// Courses

func (repo *schoolRepository) CreateCourse(ctx context.Context, crs school.Course) (school.Course, error) {
	if err := repo.db.WithContext(ctx).Create(&crs).Error; err != nil {
		return school.Course{}, err
	}
	return crs, nil
}

func (repo *schoolRepository) QueryCourses(ctx context.Context) ([]school.Course, error) {
	var courses []school.Course
	if err := repo.db.WithContext(ctx).Order("id").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (repo *schoolRepository) GetCourseByID(ctx context.Context, id uint) (school.Course, error) {
	var crs school.Course
	if err := repo.db.WithContext(ctx).First(&crs, id).Error; err != nil {
		return school.Course{}, notFound(err)
	}
	return crs, nil
}

func (repo *schoolRepository) UpdateCourse(ctx context.Context, crs school.Course) (school.Course, error) {
	if err := repo.db.WithContext(ctx).Save(&crs).Error; err != nil {
		return school.Course{}, err
	}
	return crs, nil
}

func (repo *schoolRepository) DeleteCoursesByID(ctx context.Context, ids ...uint) error {
	return repo.db.WithContext(ctx).Delete(&school.Course{}, ids).Error
}

// Subjects

func (repo *schoolRepository) CreateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	if err := repo.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return school.Subject{}, err
	}
	return sub, nil
}

func (repo *schoolRepository) QuerySubjects(ctx context.Context) ([]school.Subject, error) {
	var subs []school.Subject
	if err := repo.db.WithContext(ctx).Order("id").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (repo *schoolRepository) GetSubjectByID(ctx context.Context, id uint) (school.Subject, error) {
	var sub school.Subject
	if err := repo.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return school.Subject{}, notFound(err)
	}
	return sub, nil
}

func (repo *schoolRepository) UpdateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	if err := repo.db.WithContext(ctx).Save(&sub).Error; err != nil {
		return school.Subject{}, err
	}
	return sub, nil
}

func (repo *schoolRepository) DeleteSubjectsByID(ctx context.Context, ids ...uint) error {
	return repo.db.WithContext(ctx).Delete(&school.Subject{}, ids).Error
}

func (repo *schoolRepository) SubjectNameTaken(ctx context.Context, name string, courseID, excludedID uint) (bool, error) {
	var n int64
	err := repo.db.WithContext(ctx).
		Model(&school.Subject{}).
		Where("LOWER(name) = LOWER(?) AND course_id = ? AND id <> ?", name, courseID, excludedID).
		Count(&n).Error
	return n > 0, err
}

// Classes

func (repo *schoolRepository) CreateClass(ctx context.Context, cls school.SchoolClass) (school.SchoolClass, error) {
	if err := repo.db.WithContext(ctx).Create(&cls).Error; err != nil {
		return school.SchoolClass{}, err
	}
	return cls, nil
}

func (repo *schoolRepository) QueryClasses(ctx context.Context) ([]school.SchoolClass, error) {
	var classes []school.SchoolClass
	if err := repo.db.WithContext(ctx).Order("id").Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (repo *schoolRepository) GetClassByID(ctx context.Context, id uint) (school.SchoolClass, error) {
	var cls school.SchoolClass
	if err := repo.db.WithContext(ctx).First(&cls, id).Error; err != nil {
		return school.SchoolClass{}, notFound(err)
	}
	return cls, nil
}

func (repo *schoolRepository) UpdateClass(ctx context.Context, cls school.SchoolClass) (school.SchoolClass, error) {
	if err := repo.db.WithContext(ctx).Save(&cls).Error; err != nil {
		return school.SchoolClass{}, err
	}
	return cls, nil
}

func (repo *schoolRepository) DeleteClassesByID(ctx context.Context, ids ...uint) error {
	return repo.db.WithContext(ctx).Delete(&school.SchoolClass{}, ids).Error
}

// Semesters

func (repo *schoolRepository) CreateSemester(ctx context.Context, sem school.Semester) (school.Semester, error) {
	if err := repo.db.WithContext(ctx).Create(&sem).Error; err != nil {
		return school.Semester{}, err
	}
	return sem, nil
}

func (repo *schoolRepository) QuerySemesters(ctx context.Context) ([]school.Semester, error) {
	var sems []school.Semester
	if err := repo.db.WithContext(ctx).Order("start_date, id").Find(&sems).Error; err != nil {
		return nil, err
	}
	return sems, nil
}

func (repo *schoolRepository) GetSemesterByID(ctx context.Context, id uint) (school.Semester, error) {
	var sem school.Semester
	if err := repo.db.WithContext(ctx).First(&sem, id).Error; err != nil {
		return school.Semester{}, notFound(err)
	}
	return sem, nil
}

func (repo *schoolRepository) UpdateSemester(ctx context.Context, sem school.Semester) (school.Semester, error) {
	if err := repo.db.WithContext(ctx).Save(&sem).Error; err != nil {
		return school.Semester{}, err
	}
	return sem, nil
}

func (repo *schoolRepository) DeleteSemestersByID(ctx context.Context, ids ...uint) error {
	return repo.db.WithContext(ctx).Delete(&school.Semester{}, ids).Error
}

// Assignments

func (repo *schoolRepository) CreateAssignment(ctx context.Context, ts school.TeacherSubject) (school.TeacherSubject, error) {
	if err := repo.db.WithContext(ctx).Create(&ts).Error; err != nil {
		return school.TeacherSubject{}, err
	}
	return ts, nil
}

func (repo *schoolRepository) QueryAssignments(ctx context.Context, filter school.AssignmentFilter) ([]school.AssignmentRow, error) {
	query := repo.db.WithContext(ctx).
		Table("teacher_subjects AS ts").
		Select(`ts.*,
			t.first_name || ' ' || t.last_name AS teacher_name,
			sub.name AS subject_name,
			cls.name AS class_name,
			sem.name AS semester_name`).
		Joins("LEFT JOIN users t ON t.id = ts.teacher_id").
		Joins("LEFT JOIN subjects sub ON sub.id = ts.subject_id").
		Joins("LEFT JOIN school_classes cls ON cls.id = ts.class_id").
		Joins("LEFT JOIN semesters sem ON sem.id = ts.semester_id")

	if filter.TeacherID != 0 {
		query = query.Where("ts.teacher_id = ?", filter.TeacherID)
	}
	if filter.SubjectID != 0 {
		query = query.Where("ts.subject_id = ?", filter.SubjectID)
	}
	if filter.ClassID != 0 {
		query = query.Where("ts.class_id = ?", filter.ClassID)
	}
	if filter.SemesterID != 0 {
		query = query.Where("ts.semester_id = ?", filter.SemesterID)
	}

	var rows []school.AssignmentRow
	if err := query.Order("ts.id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *schoolRepository) GetAssignmentByID(ctx context.Context, id uint) (school.TeacherSubject, error) {
	var ts school.TeacherSubject
	if err := repo.db.WithContext(ctx).First(&ts, id).Error; err != nil {
		return school.TeacherSubject{}, notFound(err)
	}
	return ts, nil
}

func (repo *schoolRepository) DeleteAssignmentsByID(ctx context.Context, ids ...uint) error {
	return repo.db.WithContext(ctx).Delete(&school.TeacherSubject{}, ids).Error
}

func (repo *schoolRepository) AssignmentExists(ctx context.Context, teacherID, subjectID, classID, semesterID uint) (bool, error) {
	var n int64
	err := repo.db.WithContext(ctx).
		Model(&school.TeacherSubject{}).
		Where("teacher_id = ? AND subject_id = ? AND class_id = ? AND semester_id = ?",
			teacherID, subjectID, classID, semesterID).
		Count(&n).Error
	return n > 0, err
}

func (repo *schoolRepository) CountAll(ctx context.Context) (school.Counts, error) {
	var counts school.Counts
	db := repo.db.WithContext(ctx)

	pairs := []struct {
		model interface{}
		dst   *int64
	}{
		{&school.Department{}, &counts.Departments},
		{&school.Course{}, &counts.Courses},
		{&school.SchoolClass{}, &counts.Classes},
		{&school.Subject{}, &counts.Subjects},
		{&school.Semester{}, &counts.Semesters},
		{&school.TeacherSubject{}, &counts.Assignments},
	}
	for _, p := range pairs {
		if err := db.Model(p.model).Count(p.dst).Error; err != nil {
			return school.Counts{}, err
		}
	}
	return counts, nil
}
