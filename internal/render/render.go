// Package render draws a derived grid layout onto a single-page vector PDF.
package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/treychaffin/TargetGenerator/internal/domain"
)

const (
	captionFontSize   = 12
	quadrantFontSize  = 72
	gridLineWidth     = 1
	quadrantLineWidth = 5
)

// creationDate is fixed so that identical inputs produce byte-identical
// documents.
var creationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Render paints spec onto a fresh single-page canvas and returns the PDF
// bytes. Any failure reported by the drawing backend is returned as a
// domain.ErrRenderFailure.
func Render(spec *domain.GridSpec) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: spec.PageWidth, Ht: spec.PageHeight},
	})
	pdf.SetCreationDate(creationDate)
	pdf.SetTitle(fmt.Sprintf("Target - %g %s - %g MOA per click", spec.Distance, spec.Unit, spec.MOA), false)
	pdf.AddPage()

	pdf.SetLineCapStyle("square")
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetTextColor(0, 0, 0)

	drawCaption(pdf, spec)

	if spec.QuadrantLabels {
		// Divider lines split the grid into the four adjustment quadrants.
		pdf.SetDrawColor(128, 128, 128)
		pdf.SetLineWidth(quadrantLineWidth)
		pdf.Line(spec.CenterX, spec.GridTop, spec.CenterX, spec.GridBottom)
		pdf.Line(spec.GridLeft, spec.CenterY, spec.GridRight, spec.CenterY)
		pdf.SetDrawColor(0, 0, 0)
	}

	pdf.SetLineWidth(gridLineWidth)
	for _, y := range spec.YTicks {
		pdf.Line(spec.GridLeft, y, spec.GridRight, y)
	}
	for _, x := range spec.XTicks {
		pdf.Line(x, spec.GridTop, x, spec.GridBottom)
	}

	if spec.DiagonalWidth > 0 {
		pdf.SetLineWidth(spec.DiagonalWidth)
		pdf.Line(spec.GridLeft, spec.GridTop, spec.GridRight, spec.GridBottom)
		pdf.Line(spec.GridRight, spec.GridTop, spec.GridLeft, spec.GridBottom)
	}

	if spec.QuadrantLabels {
		drawQuadrantLabels(pdf, spec)
	}

	if len(spec.RingRadii) > 0 {
		pdf.SetLineWidth(gridLineWidth)
		for _, r := range spec.RingRadii {
			pdf.Circle(spec.CenterX, spec.CenterY, r, "D")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}

func drawCaption(pdf *gofpdf.Fpdf, spec *domain.GridSpec) {
	caption := fmt.Sprintf("%g MOA grid (%.3f in) at %g %s", spec.MOA, spec.TickInches, spec.Distance, spec.Unit)
	if spec.Clamped {
		caption += " (minimum spacing)"
	}
	drawCenteredText(pdf, caption, captionFontSize, spec.CenterX, spec.PageHeight-spec.Margin)
}

// drawQuadrantLabels writes the scope-adjustment hints into the quadrant
// the shot group would land in: hits low-left mean the scope moves
// right and up, and so on.
func drawQuadrantLabels(pdf *gofpdf.Fpdf, spec *domain.GridSpec) {
	quarter := (spec.GridBottom - spec.GridTop) / 4
	pdf.SetTextColor(128, 128, 128)
	drawCenteredText(pdf, "R/U", quadrantFontSize, spec.CenterX-quarter, spec.CenterY+quarter)
	drawCenteredText(pdf, "R/D", quadrantFontSize, spec.CenterX-quarter, spec.CenterY-quarter)
	drawCenteredText(pdf, "L/U", quadrantFontSize, spec.CenterX+quarter, spec.CenterY+quarter)
	drawCenteredText(pdf, "L/D", quadrantFontSize, spec.CenterX+quarter, spec.CenterY-quarter)
	pdf.SetTextColor(0, 0, 0)
}

// drawCenteredText centers txt around (x, y), approximating the glyph
// height with the font size.
func drawCenteredText(pdf *gofpdf.Fpdf, txt string, size float64, x, y float64) {
	pdf.SetFont("Helvetica", "", size)
	w := pdf.GetStringWidth(txt)
	pdf.Text(x-w/2, y+size/3, txt)
}
