package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// creationDate is stamped into every report so equal layouts render to
// equal bytes.
var creationDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Renderer turns a layout into PDF bytes.
type Renderer interface {
	Render(l Layout) ([]byte, error)
}

// CoreFontRenderer uses the built-in Helvetica font. Text outside
// cp1252 is approximated.
type CoreFontRenderer struct{}

func NewCoreFontRenderer() *CoreFontRenderer {
	return &CoreFontRenderer{}
}

func (r *CoreFontRenderer) Render(l Layout) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(creationDate)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(Title, false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range l.Pages {
		pdf.AddPage()
		for _, line := range page.Lines {
			style := ""
			if line.Style.Italic() {
				style = "I"
			}
			pdf.SetFont("Helvetica", style, line.Style.Size())
			pdf.Text(line.X, line.Y, tr(line.Text))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
