package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/careloop/visitcare-api/internal/model"
)

// renderMonthlyPDF lays the report out as a title, the narrative summary, a
// visit table and the full text of each care record.
func renderMonthlyPDF(client *model.Client, month time.Time, visits []*model.Visit, records []*model.VisitRecord, summary string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Monthly Care Report - %s", month.Format("January 2006")), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Client: %s", client.Name), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, summary, "", "", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Visits", "", 1, "", false, 0, "")

	headers := []string{"Date", "Time", "Staff", "Status"}
	widths := []float64{40, 40, 60, 40}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, v := range visits {
		pdf.CellFormat(widths[0], 7, v.VisitDate.Format("2006-01-02"), "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%s - %s", v.StartTime, v.EndTime), "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[2], 7, v.StaffName, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[3], 7, string(v.Status), "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}
	if len(visits) == 0 {
		pdf.CellFormat(180, 7, "No visits this month", "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Care Records", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, r := range records {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(0, 6, r.RecordedAt.Format("2006-01-02 15:04"), "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, r.Body, "", "", false)
		if r.VitalsNote != "" {
			pdf.MultiCell(0, 5, "Vitals: "+r.VitalsNote, "", "", false)
		}
		pdf.Ln(2)
	}
	if len(records) == 0 {
		pdf.CellFormat(0, 6, "No records filed this month", "", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
