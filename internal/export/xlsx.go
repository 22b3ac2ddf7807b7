package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/CutFlow/internal/service"
)

// XLSX writes the solution as a workbook: a summary sheet plus one sheet
// per material listing every placement and cut.
func XLSX(path string, sol *service.Solution) error {
	if sol == nil || len(sol.Materials) == 0 {
		return fmt.Errorf("no solution to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	f.SetSheetName("Sheet1", summary)
	headers := []string{"Material", "Sheets", "Tiles Placed", "Unplaced", "Used Area", "Wasted Area", "Utilization %"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(summary, cell, h)
	}
	for row, mat := range sol.Materials {
		placed := 0
		for _, s := range mat.Sheets {
			placed += len(s.Placements)
		}
		name := mat.Material
		if name == "" {
			name = "Default"
		}
		values := []interface{}{
			name, len(mat.Sheets), placed, len(mat.NoFit),
			mat.UsedArea, mat.WastedArea, mat.Utilization * 100,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(summary, cell, v)
		}
	}

	for _, mat := range sol.Materials {
		if err := writeMaterialSheet(f, mat); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeMaterialSheet(f *excelize.File, mat service.MaterialSolution) error {
	name := mat.Material
	if name == "" {
		name = "Default"
	}
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}

	row := 1
	setRow := func(values ...interface{}) {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(name, cell, v)
		}
		row++
	}

	for i, sheet := range mat.Sheets {
		setRow(fmt.Sprintf("Sheet %d", i+1), sheet.Label,
			fmt.Sprintf("%.1f x %.1f", sheet.Width, sheet.Height))
		setRow("Tile", "Label", "X", "Y", "Width", "Height", "Rotated")
		for _, p := range sheet.Placements {
			setRow(p.ID, p.Label, p.X, p.Y, p.Width, p.Height, p.Rotated)
		}
		setRow("Cut", "Orientation", "X1", "Y1", "X2", "Y2")
		for ci, c := range sheet.Cuts {
			orientation := "vertical"
			if c.Horizontal {
				orientation = "horizontal"
			}
			setRow(ci+1, orientation, c.X1, c.Y1, c.X2, c.Y2)
		}
		row++ // blank separator row
	}

	if len(mat.NoFit) > 0 {
		setRow("Unplaced tiles")
		setRow("Tile", "Label", "Width", "Height")
		for _, t := range mat.NoFit {
			setRow(t.ID, t.Label, t.Width, t.Height)
		}
	}
	return nil
}
