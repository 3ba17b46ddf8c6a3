package result

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func row(studentID uint, student string, semesterID uint, semester string, start time.Time, score float64) Row {
	return Row{
		Mark: Mark{
			StudentID:  studentID,
			SemesterID: semesterID,
			Score:      score,
		},
		StudentName:   student,
		SemesterName:  semester,
		SemesterStart: start,
	}
}

func TestAggregate(t *testing.T) {
	sem1 := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	sem2 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty set has no mean", func(t *testing.T) {
		stats := Aggregate(nil, 0)
		assert.Equal(t, 0, stats.Count)
		assert.Nil(t, stats.Mean)
		assert.Empty(t, stats.BySemester)
		assert.Empty(t, stats.Trend)
		assert.Empty(t, stats.Top)
	})

	t.Run("single semester has no trend", func(t *testing.T) {
		stats := Aggregate([]Row{
			row(1, "Jane Doe", 1, "Fall 2025", sem1, 80),
			row(2, "John Doe", 1, "Fall 2025", sem1, 90),
		}, 0)
		assert.Equal(t, 2, stats.Count)
		if assert.NotNil(t, stats.Mean) {
			assert.Equal(t, 85.0, *stats.Mean)
		}
		assert.Len(t, stats.BySemester, 1)
		assert.Empty(t, stats.Trend)
	})

	t.Run("trend reads chronological semester order", func(t *testing.T) {
		// rows arrive newest first; the trend must still compare by start date
		stats := Aggregate([]Row{
			row(1, "Jane Doe", 2, "Spring 2026", sem2, 70),
			row(1, "Jane Doe", 1, "Fall 2025", sem1, 90),
		}, 0)
		assert.Equal(t, []uint{1, 2}, []uint{stats.BySemester[0].SemesterID, stats.BySemester[1].SemesterID})
		assert.Equal(t, TrendDown, stats.Trend)

		stats = Aggregate([]Row{
			row(1, "Jane Doe", 2, "Spring 2026", sem2, 90),
			row(1, "Jane Doe", 1, "Fall 2025", sem1, 70),
		}, 0)
		assert.Equal(t, TrendUp, stats.Trend)

		stats = Aggregate([]Row{
			row(1, "Jane Doe", 2, "Spring 2026", sem2, 80),
			row(1, "Jane Doe", 1, "Fall 2025", sem1, 80),
		}, 0)
		assert.Equal(t, TrendFlat, stats.Trend)
	})

	t.Run("top performers rank by mean with stable ties", func(t *testing.T) {
		stats := Aggregate([]Row{
			row(3, "Carol", 1, "Fall 2025", sem1, 85),
			row(1, "Alice", 1, "Fall 2025", sem1, 85),
			row(2, "Bob", 1, "Fall 2025", sem1, 95),
			row(2, "Bob", 1, "Fall 2025", sem1, 95), // same mean, two rows
		}, 2)
		assert.Len(t, stats.Top, 2)
		assert.Equal(t, uint(2), stats.Top[0].StudentID)
		assert.Equal(t, 95.0, stats.Top[0].Mean)
		// tie between 1 and 3 resolves to the lower id
		assert.Equal(t, uint(1), stats.Top[1].StudentID)
	})
}
