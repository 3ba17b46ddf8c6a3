package exportsvc

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/result"
	"github.com/progressiveschool/progressive/core/user"
)

func sampleRows() []result.Row {
	return []result.Row{
		{
			Mark: result.Mark{
				ID: 1, StudentID: 1, SubjectID: 1, ClassID: 1, SemesterID: 1,
				Score: 91, Grade: "A", RecordedAt: time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC),
			},
			StudentName:     "Ada Lovelace",
			AdmissionNumber: "prog0001",
			SubjectName:     "Algorithms",
			ClassName:       "CS-1A",
			SemesterName:    "Fall 2026",
			TeacherName:     "Grace Hopper",
		},
		{
			Mark: result.Mark{
				ID: 2, StudentID: 1, SubjectID: 2, ClassID: 1, SemesterID: 1,
				Score: 74, Grade: "C", RecordedAt: time.Date(2026, 10, 6, 9, 0, 0, 0, time.UTC),
			},
			StudentName:     "Ada Lovelace",
			AdmissionNumber: "prog0001",
			SubjectName:     "Databases",
			ClassName:       "CS-1A",
			SemesterName:    "Fall 2026",
			TeacherName:     "Grace Hopper",
		},
	}
}

func TestPDFService_WriteResults(t *testing.T) {
	svc := NewPDFService(core.NewTestConfig())

	var buf bytes.Buffer
	require.NoError(t, svc.WriteResults(&buf, sampleRows()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	buf.Reset()
	require.NoError(t, svc.WriteResults(&buf, nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestPDFService_WriteReportCard(t *testing.T) {
	svc := NewPDFService(core.NewTestConfig())
	student := user.User{FirstName: "Ada", LastName: "Lovelace", AdmissionNumber: "prog0001", Role: user.RoleStudent}

	var buf bytes.Buffer
	require.NoError(t, svc.WriteReportCard(&buf, student, sampleRows()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestXLSXService_WriteResults(t *testing.T) {
	svc := NewXLSXService()

	var buf bytes.Buffer
	require.NoError(t, svc.WriteResults(&buf, sampleRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 rows
	assert.Equal(t, "prog0001", rows[1][0])
	assert.Equal(t, "Databases", rows[2][2])
}
