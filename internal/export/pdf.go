// Package export renders optimization solutions to shareable file
// formats: PDF layout diagrams, QR part labels, and XLSX cut lists.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/CutFlow/internal/service"
)

// tileColor represents an RGB color for a placed tile.
type tileColor struct {
	R, G, B int
}

var tileColors = []tileColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// PDF generates a document with one page per sheet layout followed by a
// summary page per material.
func PDF(path string, sol *service.Solution) error {
	if sol == nil || len(sol.Materials) == 0 {
		return fmt.Errorf("no solution to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	sheetNum := 0
	for _, mat := range sol.Materials {
		for _, sheet := range mat.Sheets {
			sheetNum++
			pdf.AddPage()
			renderSheetPage(pdf, sheet, sheetNum)
		}
	}
	for _, mat := range sol.Materials {
		pdf.AddPage()
		renderSummaryPage(pdf, mat)
	}

	return pdf.OutputFileAndClose(path)
}

// renderSheetPage draws a single sheet layout on the current PDF page.
func renderSheetPage(pdf *fpdf.Fpdf, sheet service.SheetReport, sheetNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sheet %d: %s (%.1f x %.1f)", sheetNum, sheet.Label, sheet.Width, sheet.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	totalArea := sheet.Width * sheet.Height
	efficiency := 0.0
	if totalArea > 0 {
		efficiency = sheet.UsedArea / totalArea * 100
	}
	stats := fmt.Sprintf("Tiles: %d | Cuts: %d | Used: %.0f | Wasted: %.0f | Efficiency: %.1f%%",
		len(sheet.Placements), len(sheet.Cuts), sheet.UsedArea, sheet.WastedArea, efficiency)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/sheet.Width, drawHeight/sheet.Height)
	canvasW := sheet.Width * scale
	canvasH := sheet.Height * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Stock sheet background (wood color)
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for i, p := range sheet.Placements {
		col := tileColors[i%len(tileColors)]
		px := offsetX + p.X*scale
		py := offsetY + p.Y*scale
		pw := p.Width * scale
		ph := p.Height * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := p.Label
			if label == "" {
				label = fmt.Sprintf("#%d", p.ID)
			}
			dims := fmt.Sprintf("%.1fx%.1f", p.Width, p.Height)
			if p.Rotated {
				dims += " R"
			}

			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)
			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	// Saw lines on top of the tiles
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.2)
	for _, c := range sheet.Cuts {
		pdf.Line(offsetX+c.X1*scale, offsetY+c.Y1*scale, offsetX+c.X2*scale, offsetY+c.Y2*scale)
	}

	drawDimensionAnnotations(pdf, sheet, scale, offsetX, offsetY, canvasW, canvasH)
}

// drawDimensionAnnotations adds width and height labels outside the
// sheet rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, sheet service.SheetReport, scale, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f", sheet.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.1f", sheet.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// renderSummaryPage draws one material's statistics and sheet breakdown.
func renderSummaryPage(pdf *fpdf.Fpdf, mat service.MaterialSolution) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	name := mat.Material
	if name == "" {
		name = "Default"
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cut Optimization Summary - "+name, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	placed := 0
	for _, s := range mat.Sheets {
		placed += len(s.Placements)
	}
	summaryItems := []struct {
		label string
		value string
	}{
		{"Sheets Used", fmt.Sprintf("%d", len(mat.Sheets))},
		{"Utilization", fmt.Sprintf("%.1f%%", mat.Utilization*100)},
		{"Tiles Placed", fmt.Sprintf("%d", placed)},
		{"Unplaced Tiles", fmt.Sprintf("%d", len(mat.NoFit))},
		{"Used Area", fmt.Sprintf("%.0f", mat.UsedArea)},
		{"Wasted Area", fmt.Sprintf("%.0f", mat.WastedArea)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Sheet Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 60, 50, 30, 30, 35}
	headers := []string{"Sheet", "Stock", "Dimensions", "Tiles", "Cuts", "Efficiency"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, sheet := range mat.Sheets {
		xPos = marginLeft
		totalArea := sheet.Width * sheet.Height
		efficiency := 0.0
		if totalArea > 0 {
			efficiency = sheet.UsedArea / totalArea * 100
		}
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			sheet.Label,
			fmt.Sprintf("%.1f x %.1f", sheet.Width, sheet.Height),
			fmt.Sprintf("%d", len(sheet.Placements)),
			fmt.Sprintf("%d", len(sheet.Cuts)),
			fmt.Sprintf("%.1f%%", efficiency),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(mat.NoFit) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Tiles", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, tile := range mat.NoFit {
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s: %.1f x %.1f", tile.Label, tile.Width, tile.Height)
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by CutFlow - Cut List Optimizer", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size for a tile rectangle.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
