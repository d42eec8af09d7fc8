// Package report renders a filtered set of incidents into a paginated A4
// PDF table, one row per report.
package report

import (
	"fmt"
	"io"
	"strconv"

	"waterline/pkg/types"

	"github.com/go-pdf/fpdf"
)

var columns = []struct {
	header string
	width  float64 // mm
}{
	{"Issue Type", 32},
	{"Description", 65},
	{"Status", 23},
	{"Created At", 32},
	{"Latitude", 17},
	{"Longitude", 17},
}

const (
	lineHeight = 4.5
	cellPad    = 1.5
)

// RenderPDF writes the incident table to w, newest first in the order the
// caller supplied.
func RenderPDF(w io.Writer, incidents []*types.Incident) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 15, 12)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Water Incident Reports", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	drawHeader(pdf)

	pdf.SetFont("Helvetica", "", 8)
	for _, incident := range incidents {
		cells := []string{
			incident.IssueType.Label(),
			incident.Description,
			incident.Status.Label(),
			incident.CreatedAt.Format("2006-01-02 15:04"),
			coordinate(incident.Latitude),
			coordinate(incident.Longitude),
		}

		rowHeight := lineHeight + 2*cellPad
		for i, cell := range cells {
			lines := pdf.SplitText(cell, columns[i].width-2*cellPad)
			if h := float64(len(lines))*lineHeight + 2*cellPad; h > rowHeight {
				rowHeight = h
			}
		}

		// Repeat the header after every page break.
		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottomMargin := pdf.GetMargins()
		if pdf.GetY()+rowHeight > pageHeight-bottomMargin {
			pdf.AddPage()
			drawHeader(pdf)
			pdf.SetFont("Helvetica", "", 8)
		}

		x := pdf.GetX()
		y := pdf.GetY()
		for i, cell := range cells {
			pdf.Rect(x, y, columns[i].width, rowHeight, "D")
			pdf.SetXY(x+cellPad, y+cellPad)
			pdf.MultiCell(columns[i].width-2*cellPad, lineHeight, cell, "", "L", false)
			x += columns[i].width
		}
		pdf.SetXY(12, y+rowHeight)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render incident report pdf: %w", err)
	}

	return nil
}

func drawHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(173, 216, 230)
	for _, col := range columns {
		pdf.CellFormat(col.width, lineHeight+2*cellPad, col.header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func coordinate(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
