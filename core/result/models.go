package result

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Mark is one recorded evaluation. A (student, subject, class, semester)
// tuple holds at most one row; recording again overwrites the score.
type Mark struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"uniqueIndex:idx_marks_key" json:"student_id"`
	SubjectID  uint      `gorm:"uniqueIndex:idx_marks_key" json:"subject_id"`
	ClassID    uint      `gorm:"uniqueIndex:idx_marks_key" json:"class_id"`
	SemesterID uint      `gorm:"uniqueIndex:idx_marks_key" json:"semester_id"`
	TeacherID  uint      `gorm:"index" json:"teacher_id"`
	Score      float64   `json:"score"`
	Grade      string    `gorm:"size:2" json:"grade"`
	RecordedAt time.Time `json:"recorded_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"`  // UTC
}

// Row is a Mark enriched with display fields for listings and exports.
type Row struct {
	Mark
	StudentName     string    `json:"student_name"`
	AdmissionNumber string    `json:"admission_number"`
	SubjectName     string    `json:"subject_name"`
	ClassName       string    `json:"class_name"`
	SemesterName    string    `json:"semester_name"`
	SemesterStart   time.Time `json:"-"`
	TeacherName     string    `json:"teacher_name"`
}

// GradeFor derives the letter grade and GPA points for a score.
func GradeFor(score float64) (string, float64) {
	switch {
	case score >= 90:
		return "A", 4.0
	case score >= 80:
		return "B", 3.0
	case score >= 70:
		return "C", 2.0
	case score >= 60:
		return "D", 1.0
	default:
		return "F", 0.0
	}
}

// NewMark contains information needed to record a single mark.
type NewMark struct {
	// TeacherID may only be set by an admin recording on a teacher's behalf.
	TeacherID  uint    `json:"teacher_id"`
	StudentID  uint    `json:"student_id" validate:"required"`
	SubjectID  uint    `json:"subject_id" validate:"required"`
	ClassID    uint    `json:"class_id" validate:"required"`
	SemesterID uint    `json:"semester_id" validate:"required"`
	Score      float64 `json:"score" validate:"score"`
}

func (nm *NewMark) Validate(validate *validator.Validate) error {
	return validate.Struct(nm)
}

// StudentScore is one entry of a batch upload.
type StudentScore struct {
	StudentID uint    `json:"student_id" validate:"required"`
	Score     float64 `json:"score" validate:"score"`
}

// NewMarkBatch records a whole class sheet for one subject and semester.
type NewMarkBatch struct {
	TeacherID  uint           `json:"teacher_id"`
	SubjectID  uint           `json:"subject_id" validate:"required"`
	ClassID    uint           `json:"class_id" validate:"required"`
	SemesterID uint           `json:"semester_id" validate:"required"`
	Scores     []StudentScore `json:"scores" validate:"required,min=1,dive"`
}

func (nb *NewMarkBatch) Validate(validate *validator.Validate) error {
	return validate.Struct(nb)
}

// Sort keys accepted by QueryFilter.Sort. The default order is
// recorded-at descending.
const (
	SortScore   = "score"
	SortStudent = "student"
)

type QueryFilter struct {
	SubjectID  uint   `query:"subject"`
	ClassID    uint   `query:"class"`
	SemesterID uint   `query:"semester"`
	StudentID  uint   `query:"student"`
	Sort       string `query:"sort"`
	Limit      int    `query:"-"`
}

// AssignmentKey identifies the (subject, class, semester) tuple an
// assignment covers.
type AssignmentKey struct {
	SubjectID  uint
	ClassID    uint
	SemesterID uint
}

// Scope restricts a query to what the caller may see. The zero value means
// nothing is visible; admins get Unrestricted.
type Scope struct {
	Unrestricted bool
	StudentID    uint            // student: own rows only
	Keys         []AssignmentKey // teacher: assigned tuples only
}
