package exportsvc

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/result"
)

type XLSXService struct{}

func NewXLSXService() *XLSXService {
	return &XLSXService{}
}

// WriteResults renders the rows as a single-sheet workbook.
func (svc *XLSXService) WriteResults(w io.Writer, rows []result.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return core.NewRenderingError(err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Admission No", "Student", "Subject", "Class", "Semester", "Score", "Grade", "Teacher", "Recorded At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return core.NewRenderingError(err)
		}
		if err = f.SetCellValue(sheet, cell, header); err != nil {
			return core.NewRenderingError(err)
		}
	}

	for i, row := range rows {
		n := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", n), row.AdmissionNumber)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", n), row.StudentName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", n), row.SubjectName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", n), row.ClassName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", n), row.SemesterName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", n), row.Score)
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", n), row.Grade)
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", n), row.TeacherName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", n), row.RecordedAt.Format("2006-01-02 15:04"))
	}

	if err := f.Write(w); err != nil {
		return core.NewRenderingError(err)
	}
	return nil
}
