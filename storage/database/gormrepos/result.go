package gormrepos

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/progressiveschool/progressive/core/result"
)

type markRepository struct {
	db *gorm.DB
}

var _ result.Repository = (*markRepository)(nil) // interface compliance check

func NewMarkRepository(db *gorm.DB) result.Repository {
	return &markRepository{db: db}
}

func (repo *markRepository) UpsertMark(ctx context.Context, mrk result.Mark) (result.Mark, error) {
	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"}, {Name: "subject_id"}, {Name: "class_id"}, {Name: "semester_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"teacher_id", "score", "grade", "updated_at"}),
		}).
		Create(&mrk).Error
	if err != nil {
		return result.Mark{}, err
	}
	return mrk, nil
}

func (repo *markRepository) GetMarkByID(ctx context.Context, id uint) (result.Mark, error) {
	var mrk result.Mark
	if err := repo.db.WithContext(ctx).First(&mrk, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result.Mark{}, result.ErrNotFound
		}
		return result.Mark{}, err
	}
	return mrk, nil
}

func (repo *markRepository) FilterMarks(ctx context.Context, filter result.QueryFilter, scope result.Scope) ([]result.Row, error) {
	query := repo.db.WithContext(ctx).
		Table("marks AS m").
		Select(`m.*,
			s.first_name || ' ' || s.last_name AS student_name,
			s.admission_number,
			t.first_name || ' ' || t.last_name AS teacher_name,
			sub.name AS subject_name,
			cls.name AS class_name,
			sem.name AS semester_name,
			sem.start_date AS semester_start`).
		Joins("LEFT JOIN users s ON s.id = m.student_id").
		Joins("LEFT JOIN users t ON t.id = m.teacher_id").
		Joins("LEFT JOIN subjects sub ON sub.id = m.subject_id").
		Joins("LEFT JOIN school_classes cls ON cls.id = m.class_id").
		Joins("LEFT JOIN semesters sem ON sem.id = m.semester_id")

	switch {
	case scope.Unrestricted:
	case scope.StudentID != 0:
		query = query.Where("m.student_id = ?", scope.StudentID)
	case len(scope.Keys) > 0:
		placeholders := make([]string, 0, len(scope.Keys))
		args := make([]interface{}, 0, len(scope.Keys)*3)
		for _, key := range scope.Keys {
			placeholders = append(placeholders, "(?, ?, ?)")
			args = append(args, key.SubjectID, key.ClassID, key.SemesterID)
		}
		query = query.Where(
			"(m.subject_id, m.class_id, m.semester_id) IN ("+strings.Join(placeholders, ", ")+")",
			args...,
		)
	default:
		// empty scope sees nothing
		query = query.Where("1 = 0")
	}

	if filter.SubjectID != 0 {
		query = query.Where("m.subject_id = ?", filter.SubjectID)
	}
	if filter.ClassID != 0 {
		query = query.Where("m.class_id = ?", filter.ClassID)
	}
	if filter.SemesterID != 0 {
		query = query.Where("m.semester_id = ?", filter.SemesterID)
	}
	if filter.StudentID != 0 {
		query = query.Where("m.student_id = ?", filter.StudentID)
	}

	switch filter.Sort {
	case result.SortScore:
		query = query.Order("m.score DESC, m.id")
	case result.SortStudent:
		query = query.Order("student_name, m.id")
	default:
		query = query.Order("m.recorded_at DESC, m.id DESC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []result.Row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *markRepository) DeleteMarksByID(ctx context.Context, ids ...uint) error {
	return repo.db.WithContext(ctx).Delete(&result.Mark{}, ids).Error
}

func (repo *markRepository) CountMarks(ctx context.Context) (int64, error) {
	var n int64
	err := repo.db.WithContext(ctx).Model(&result.Mark{}).Count(&n).Error
	return n, err
}
