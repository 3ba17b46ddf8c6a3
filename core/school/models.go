package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/progressiveschool/progressive/core"
)

type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Course struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100" json:"name"`
	DepartmentID uint      `gorm:"index" json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Subject struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;index" json:"name"`
	Code      string    `gorm:"size:20" json:"code"`
	CourseID  uint      `gorm:"index" json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SchoolClass struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100" json:"name"`
	CourseID  uint      `gorm:"index" json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Semester struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50" json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeacherSubject binds a teacher to a (subject, class, semester) tuple and
// authorizes mark entry for it.
type TeacherSubject struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TeacherID  uint      `gorm:"index" json:"teacher_id"`
	SubjectID  uint      `gorm:"index" json:"subject_id"`
	ClassID    uint      `gorm:"index" json:"class_id"`
	SemesterID uint      `gorm:"index" json:"semester_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// AssignmentRow is a TeacherSubject enriched with display names for listings.
type AssignmentRow struct {
	TeacherSubject
	TeacherName  string `json:"teacher_name"`
	SubjectName  string `json:"subject_name"`
	ClassName    string `json:"class_name"`
	SemesterName string `json:"semester_name"`
}

type AssignmentFilter struct {
	TeacherID  uint `query:"teacher"`
	SubjectID  uint `query:"subject"`
	ClassID    uint `query:"class"`
	SemesterID uint `query:"semester"`
}

// Counts holds the catalog entity counts shown on the admin dashboard.
type Counts struct {
	Departments int64 `json:"departments"`
	Courses     int64 `json:"courses"`
	Classes     int64 `json:"classes"`
	Subjects    int64 `json:"subjects"`
	Semesters   int64 `json:"semesters"`
	Assignments int64 `json:"assignments"`
}

// Inputs

type NewDepartment struct {
	Name string `json:"name" validate:"required"`
}

func (nd *NewDepartment) Validate(validate *validator.Validate) error {
	nd.Name = core.CleanString(nd.Name)
	return validate.Struct(nd)
}

type NewCourse struct {
	Name         string `json:"name" validate:"required"`
	DepartmentID uint   `json:"department_id" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type NewSubject struct {
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code" validate:"omitempty,alphanum_"`
	CourseID uint   `json:"course_id" validate:"required"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code, true /* lower */)
	return validate.Struct(ns)
}

type NewSchoolClass struct {
	Name     string `json:"name" validate:"required"`
	CourseID uint   `json:"course_id" validate:"required"`
}

func (nc *NewSchoolClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type NewSemester struct {
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

func (ns *NewSemester) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	if ns.StartDate.After(ns.EndDate) {
		return core.NewValidationError(nil, core.FieldError{
			Field: "start_date", Error: "start date cannot be after end date",
		})
	}
	return nil
}

type NewAssignment struct {
	// TeacherID may only be set by an admin; teachers assign themselves.
	TeacherID  uint `json:"teacher_id"`
	SubjectID  uint `json:"subject_id" validate:"required"`
	ClassID    uint `json:"class_id" validate:"required"`
	SemesterID uint `json:"semester_id" validate:"required"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}
