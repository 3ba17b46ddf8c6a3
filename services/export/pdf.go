// Package exportsvc renders result listings and report cards as
// downloadable documents.
package exportsvc

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/result"
	"github.com/progressiveschool/progressive/core/user"
)

type PDFService struct {
	appName string
}

func NewPDFService(conf *core.Config) *PDFService {
	return &PDFService{appName: conf.AppName}
}

func (svc *PDFService) newDoc(title string) *gofpdf.Fpdf {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, false)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, svc.appName, "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 12)
	doc.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "I", 9)
	doc.CellFormat(0, 6, "Generated "+time.Now().UTC().Format("Jan 2, 2006 15:04 MST"), "", 1, "C", false, 0, "")
	doc.Ln(4)
	return doc
}

func (svc *PDFService) table(doc *gofpdf.Fpdf, headers []string, widths []float64, body [][]string) {
	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(230, 230, 230)
	for i, h := range headers {
		doc.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	for _, row := range body {
		for i, cell := range row {
			doc.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
}

// WriteResults renders the rows the caller was allowed to query. The PDF
// carries exactly the given rows.
func (svc *PDFService) WriteResults(w io.Writer, rows []result.Row) error {
	doc := svc.newDoc("Results")

	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		body = append(body, []string{
			row.AdmissionNumber,
			row.StudentName,
			row.SubjectName,
			row.ClassName,
			row.SemesterName,
			fmt.Sprintf("%.1f", row.Score),
			row.Grade,
		})
	}
	svc.table(doc,
		[]string{"Adm No", "Student", "Subject", "Class", "Semester", "Score", "Grade"},
		[]float64{22, 38, 35, 25, 30, 20, 20},
		body,
	)
	if len(rows) == 0 {
		doc.SetFont("Helvetica", "I", 10)
		doc.CellFormat(0, 10, "No results found.", "", 1, "C", false, 0, "")
	}

	if err := doc.Output(w); err != nil {
		return core.NewRenderingError(err)
	}
	return nil
}

// WriteReportCard renders a single student's report card with the per-subject
// grades and the aggregate GPA.
func (svc *PDFService) WriteReportCard(w io.Writer, student user.User, rows []result.Row) error {
	doc := svc.newDoc("Report Card")

	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 7, "Student: "+student.Name(), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 7, "Admission No: "+student.AdmissionNumber, "", 1, "L", false, 0, "")
	doc.Ln(3)

	var points float64
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		_, gpa := result.GradeFor(row.Score)
		points += gpa
		body = append(body, []string{
			row.SubjectName,
			row.SemesterName,
			fmt.Sprintf("%.1f", row.Score),
			row.Grade,
			fmt.Sprintf("%.1f", gpa),
		})
	}
	svc.table(doc,
		[]string{"Subject", "Semester", "Score", "Grade", "Points"},
		[]float64{55, 45, 30, 30, 30},
		body,
	)

	doc.Ln(4)
	doc.SetFont("Helvetica", "B", 11)
	if len(rows) > 0 {
		doc.CellFormat(0, 8, fmt.Sprintf("GPA: %.2f", points/float64(len(rows))), "", 1, "L", false, 0, "")
	} else {
		doc.CellFormat(0, 8, "No results recorded yet.", "", 1, "L", false, 0, "")
	}

	if err := doc.Output(w); err != nil {
		return core.NewRenderingError(err)
	}
	return nil
}
