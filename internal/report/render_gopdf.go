package report

import (
	"bytes"
	"fmt"
	"os"

	"github.com/signintech/gopdf"
)

const ttfFamily = "DejaVu"

// fontPaths are the usual DejaVuSans locations on Alpine and Debian.
var fontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// TrueTypeRenderer embeds a TTF font so narrative text in any script
// survives. Italic styling is dropped since only one face is loaded.
type TrueTypeRenderer struct {
	fontPath string
}

func NewTrueTypeRenderer(fontPath string) *TrueTypeRenderer {
	return &TrueTypeRenderer{fontPath: fontPath}
}

func (r *TrueTypeRenderer) Render(l Layout) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4, Unit: gopdf.UnitMM})
	pdf.SetInfo(gopdf.PdfInfo{Title: Title, CreationDate: creationDate})

	if err := pdf.AddTTFFont(ttfFamily, r.fontPath); err != nil {
		return nil, fmt.Errorf("failed to load font %s: %w", r.fontPath, err)
	}

	for _, page := range l.Pages {
		pdf.AddPage()
		for _, line := range page.Lines {
			if err := pdf.SetFont(ttfFamily, "", line.Style.Size()); err != nil {
				return nil, err
			}
			pdf.SetXY(line.X, line.Y)
			if err := pdf.Text(line.Text); err != nil {
				return nil, fmt.Errorf("writing line %q: %w", line.Text, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// NewRenderer picks the TrueType renderer when fontPath is set or a
// DejaVu font is installed, and the core-font renderer otherwise.
func NewRenderer(fontPath string) Renderer {
	if fontPath != "" {
		return NewTrueTypeRenderer(fontPath)
	}
	for _, path := range fontPaths {
		if _, err := os.Stat(path); err == nil {
			return NewTrueTypeRenderer(path)
		}
	}
	return NewCoreFontRenderer()
}
