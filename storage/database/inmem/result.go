package inmem

import (
	"context"
	"sort"

	"github.com/progressiveschool/progressive/core/result"
)

type markRepository struct {
	db     *markTable
	school *schoolTables
	users  *userTable
}

var _ result.Repository = (*markRepository)(nil) // interface compliance check

func NewMarkRepository(db *DB) result.Repository {
	return &markRepository{db: db.result, school: db.school, users: db.user}
}

func (repo *markRepository) UpsertMark(ctx context.Context, mrk result.Mark) (result.Mark, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.StudentID == mrk.StudentID && existing.SubjectID == mrk.SubjectID &&
			existing.ClassID == mrk.ClassID && existing.SemesterID == mrk.SemesterID {
			existing.TeacherID = mrk.TeacherID
			existing.Score = mrk.Score
			existing.Grade = mrk.Grade
			existing.UpdatedAt = mrk.UpdatedAt
			return *existing, nil
		}
	}

	repo.db.pkCount++
	mrk.ID = repo.db.pkCount
	repo.db.table[mrk.ID] = &mrk
	return mrk, nil
}

func (repo *markRepository) GetMarkByID(ctx context.Context, id uint) (result.Mark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mrk, ok := repo.db.table[id]; ok {
		return *mrk, nil
	}
	return result.Mark{}, result.ErrNotFound
}

func inScope(mrk result.Mark, scope result.Scope) bool {
	if scope.Unrestricted {
		return true
	}
	if scope.StudentID != 0 {
		return mrk.StudentID == scope.StudentID
	}
	for _, key := range scope.Keys {
		if mrk.SubjectID == key.SubjectID && mrk.ClassID == key.ClassID && mrk.SemesterID == key.SemesterID {
			return true
		}
	}
	return false
}

func (repo *markRepository) FilterMarks(ctx context.Context, filter result.QueryFilter, scope result.Scope) ([]result.Row, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rows []result.Row
	for _, mrk := range repo.db.table {
		if !inScope(*mrk, scope) {
			continue
		}
		if filter.SubjectID != 0 && mrk.SubjectID != filter.SubjectID {
			continue
		}
		if filter.ClassID != 0 && mrk.ClassID != filter.ClassID {
			continue
		}
		if filter.SemesterID != 0 && mrk.SemesterID != filter.SemesterID {
			continue
		}
		if filter.StudentID != 0 && mrk.StudentID != filter.StudentID {
			continue
		}
		rows = append(rows, repo.row(*mrk))
	}

	switch filter.Sort {
	case result.SortScore:
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Score != rows[j].Score {
				return rows[i].Score > rows[j].Score
			}
			return rows[i].ID < rows[j].ID
		})
	case result.SortStudent:
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].StudentName != rows[j].StudentName {
				return rows[i].StudentName < rows[j].StudentName
			}
			return rows[i].ID < rows[j].ID
		})
	default: // newest first
		sort.Slice(rows, func(i, j int) bool {
			if !rows[i].RecordedAt.Equal(rows[j].RecordedAt) {
				return rows[i].RecordedAt.After(rows[j].RecordedAt)
			}
			return rows[i].ID > rows[j].ID
		})
	}

	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	return rows, nil
}

func (repo *markRepository) row(mrk result.Mark) result.Row {
	row := result.Row{Mark: mrk}

	repo.users.RLock()
	if usr, ok := repo.users.table[mrk.StudentID]; ok {
		row.StudentName = usr.Name()
		row.AdmissionNumber = usr.AdmissionNumber
	}
	if usr, ok := repo.users.table[mrk.TeacherID]; ok {
		row.TeacherName = usr.Name()
	}
	repo.users.RUnlock()

	repo.school.RLock()
	if sub, ok := repo.school.subjects[mrk.SubjectID]; ok {
		row.SubjectName = sub.Name
	}
	if cls, ok := repo.school.classes[mrk.ClassID]; ok {
		row.ClassName = cls.Name
	}
	if sem, ok := repo.school.semesters[mrk.SemesterID]; ok {
		row.SemesterName = sem.Name
		row.SemesterStart = sem.StartDate
	}
	repo.school.RUnlock()

	return row
}

func (repo *markRepository) DeleteMarksByID(ctx context.Context, ids ...uint) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *markRepository) CountMarks(ctx context.Context) (int64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return int64(len(repo.db.table)), nil
}
