package bulletin

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/progressiveschool/progressive/core"
)

// Audiences an announcement or event can target.
const (
	AudienceAll      = "all"
	AudienceTeachers = "teachers"
	AudienceStudents = "students"
)

type Announcement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200" json:"title"`
	Body      string    `json:"body"`
	Audience  string    `gorm:"size:10;index" json:"audience"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200" json:"title"`
	Location  string    `gorm:"size:200" json:"location"`
	Audience  string    `gorm:"size:10;index" json:"audience"`
	StartsAt  time.Time `gorm:"index" json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Inputs

type NewAnnouncement struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	Audience string `json:"audience" validate:"required,oneof=all teachers students"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Audience = core.CleanString(na.Audience, true /* lower */)
	return validate.Struct(na)
}

type NewEvent struct {
	Title    string    `json:"title" validate:"required"`
	Location string    `json:"location"`
	Audience string    `json:"audience" validate:"required,oneof=all teachers students"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Audience = core.CleanString(ne.Audience, true /* lower */)
	if err := validate.Struct(ne); err != nil {
		return err
	}
	if ne.StartsAt.After(ne.EndsAt) {
		return core.NewValidationError(nil, core.FieldError{
			Field: "starts_at", Error: "event cannot start after it ends",
		})
	}
	return nil
}
