package report

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

// Positions in millimetres on an A4 portrait page.
const (
	marginLeft    = 20.0
	marginTop     = 20.0
	marginBottom  = 20.0
	titleY        = 30.0
	timeframeY    = 45.0
	generatedY    = 55.0
	firstHeadingY = 75.0
	firstTableY   = 80.0
	headingOffset = 20.0
	tableOffset   = 25.0
	rowHeight     = 8.0
	fontFamily    = "Helvetica"
	titleFontSize = 20
	labelFontSize = 12
	headFontSize  = 16
	tableFontSize = 10
)

// Render draws the layout as a PDF document.
func Render(l Layout) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(l.Title, false)
	pdf.AddPage()
	// Core fonts are cp1252 encoded.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(fontFamily, "", titleFontSize)
	pdf.Text(marginLeft, titleY, tr(l.Title))
	pdf.SetFont(fontFamily, "", labelFontSize)
	pdf.Text(marginLeft, timeframeY, tr(l.Timeframe))
	pdf.Text(marginLeft, generatedY, tr(l.GeneratedOn))

	headingY, tableY := firstHeadingY, firstTableY
	for _, sec := range l.Sections {
		pdf.SetFont(fontFamily, "", headFontSize)
		pdf.Text(marginLeft, headingY, tr(sec.Heading))
		end := drawTable(pdf, tr, tableY, sec)
		headingY, tableY = end+headingOffset, end+tableOffset
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// drawTable draws a grid table starting at y and returns its final y. Rows
// that do not fit continue on a new page under a repeated header row.
func drawTable(pdf *gofpdf.Fpdf, tr func(string) string, y float64, sec Section) float64 {
	pageW, pageH := pdf.GetPageSize()
	width := (pageW - 2*marginLeft) / float64(len(sec.Columns))
	limit := pageH - marginBottom

	if y+2*rowHeight > limit {
		pdf.AddPage()
		y = marginTop
	}
	pdf.SetXY(marginLeft, y)
	drawHeader(pdf, tr, sec.Columns, width)

	pdf.SetFont(fontFamily, "", tableFontSize)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range sec.Rows {
		if pdf.GetY()+rowHeight > limit {
			pdf.AddPage()
			pdf.SetXY(marginLeft, marginTop)
			drawHeader(pdf, tr, sec.Columns, width)
			pdf.SetFont(fontFamily, "", tableFontSize)
			pdf.SetTextColor(0, 0, 0)
		}
		for i, cell := range row {
			pdf.CellFormat(width, rowHeight, tr(cell), "1", 0, "L", false, 0, "")
			if i == len(row)-1 {
				pdf.Ln(rowHeight)
			}
		}
	}
	return pdf.GetY()
}

// drawHeader draws a grid-theme header row.
func drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, columns []string, width float64) {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(fontFamily, "B", tableFontSize)
	for _, col := range columns {
		pdf.CellFormat(width, rowHeight, tr(col), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(rowHeight)
}
