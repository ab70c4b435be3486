// Package pdftest builds small PDF fixtures whose pages can be told apart by width.
package pdftest

import (
	"bytes"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"
)

const (
	baseWidthMM = 100.0
	stepMM      = 10.0
	heightMM    = 297.0
)

// Pages returns an n-page PDF where page i (0-based) is 100+10*(i+offset) mm wide.
func Pages(n, offset int) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 0; i < n; i++ {
		doc.AddPageFormat("P", gofpdf.SizeType{Wd: WidthMM(i + offset), Ht: heightMM})
		doc.Text(10, 20, fmt.Sprintf("Seite %d", i+offset+1))
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WidthMM is the width given to page i.
func WidthMM(i int) float64 {
	return baseWidthMM + stepMM*float64(i)
}

// PageIndex maps a page width in PDF points back to the fixture page index.
func PageIndex(widthPt float64) int {
	mm := widthPt * 25.4 / 72
	return int(math.Round((mm - baseWidthMM) / stepMM))
}
