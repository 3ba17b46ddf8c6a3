package result

import (
	"sort"
	"time"
)

// Trend directions, comparing the two most recent semester means.
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

const DefaultTopN = 5

type (
	SemesterMean struct {
		SemesterID uint      `json:"semester_id"`
		Semester   string    `json:"semester"`
		StartDate  time.Time `json:"start_date"`
		Mean       float64   `json:"mean"`
		Count      int       `json:"count"`
	}

	Performer struct {
		StudentID       uint    `json:"student_id"`
		Student         string  `json:"student"`
		AdmissionNumber string  `json:"admission_number"`
		Mean            float64 `json:"mean"`
		Count           int     `json:"count"`
	}

	Stats struct {
		Count int `json:"count"`
		// Mean is absent when the result set is empty ("no data").
		Mean       *float64       `json:"mean,omitempty"`
		BySemester []SemesterMean `json:"by_semester"`
		Trend      string         `json:"trend,omitempty"`
		Top        []Performer    `json:"top_performers"`
	}
)

// Aggregate computes statistics over a filtered result set. It is a pure
// function of its input; an empty set yields Count 0 and no mean.
func Aggregate(rows []Row, topN int) Stats {
	if topN <= 0 {
		topN = DefaultTopN
	}

	stats := Stats{Count: len(rows)}
	if len(rows) == 0 {
		return stats
	}

	var total float64
	semesters := make(map[uint]*SemesterMean)
	students := make(map[uint]*Performer)

	for _, row := range rows {
		total += row.Score

		sem, ok := semesters[row.SemesterID]
		if !ok {
			sem = &SemesterMean{
				SemesterID: row.SemesterID,
				Semester:   row.SemesterName,
				StartDate:  row.SemesterStart,
			}
			semesters[row.SemesterID] = sem
		}
		sem.Mean += row.Score // running sum until the final division
		sem.Count++

		st, ok := students[row.StudentID]
		if !ok {
			st = &Performer{
				StudentID:       row.StudentID,
				Student:         row.StudentName,
				AdmissionNumber: row.AdmissionNumber,
			}
			students[row.StudentID] = st
		}
		st.Mean += row.Score
		st.Count++
	}

	mean := total / float64(len(rows))
	stats.Mean = &mean

	stats.BySemester = make([]SemesterMean, 0, len(semesters))
	for _, sem := range semesters {
		sem.Mean /= float64(sem.Count)
		stats.BySemester = append(stats.BySemester, *sem)
	}
	// trend is read off semesters in chronological order
	sort.Slice(stats.BySemester, func(i, j int) bool {
		si, sj := stats.BySemester[i], stats.BySemester[j]
		if !si.StartDate.Equal(sj.StartDate) {
			return si.StartDate.Before(sj.StartDate)
		}
		return si.SemesterID < sj.SemesterID
	})
	if n := len(stats.BySemester); n >= 2 {
		prev, last := stats.BySemester[n-2].Mean, stats.BySemester[n-1].Mean
		switch {
		case last > prev:
			stats.Trend = TrendUp
		case last < prev:
			stats.Trend = TrendDown
		default:
			stats.Trend = TrendFlat
		}
	}

	top := make([]Performer, 0, len(students))
	for _, st := range students {
		st.Mean /= float64(st.Count)
		top = append(top, *st)
	}
	// score descending, ties broken by student identity order
	sort.Slice(top, func(i, j int) bool {
		if top[i].Mean != top[j].Mean {
			return top[i].Mean > top[j].Mean
		}
		return top[i].StudentID < top[j].StudentID
	})
	if len(top) > topN {
		top = top[:topN]
	}
	stats.Top = top

	return stats
}
