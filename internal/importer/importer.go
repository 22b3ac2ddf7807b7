// Package importer reads panel lists from CSV, Excel and DXF files.
// CSV import detects the delimiter automatically and maps columns by
// case-insensitive header names.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/CutFlow/internal/model"
	"github.com/piwi3910/CutFlow/internal/optimizer"
)

// ImportResult holds the panels produced by an import plus any per-row
// errors and warnings.
type ImportResult struct {
	Panels   []optimizer.PanelSpec
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	Width    int
	Height   int
	Count    int
	Material int
	Grain    int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "part", "part name", "panel", "description", "desc", "piece", "item"},
	"width":    {"width", "w", "length", "len", "x"},
	"height":   {"height", "h", "depth", "d", "y"},
	"count":    {"count", "quantity", "qty", "num", "amount", "pcs", "pieces"},
	"material": {"material", "mat", "board", "stock type"},
	"grain":    {"grain", "grain direction", "direction", "grain dir", "orientation"},
}

// DetectCSVDelimiter determines the most likely CSV delimiter by trying
// comma, semicolon, tab and pipe. The delimiter producing the most
// consistent multi-column row shape wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was recognized, or a default
// positional mapping and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Label:    -1,
		Width:    -1,
		Height:   -1,
		Count:    -1,
		Material: -1,
		Grain:    -1,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "label":
					if mapping.Label == -1 {
						mapping.Label = i
					}
				case "width":
					if mapping.Width == -1 {
						mapping.Width = i
					}
				case "height":
					if mapping.Height == -1 {
						mapping.Height = i
					}
				case "count":
					if mapping.Count == -1 {
						mapping.Count = i
					}
				case "material":
					if mapping.Material == -1 {
						mapping.Material = i
					}
				case "grain":
					if mapping.Grain == -1 {
						mapping.Grain = i
					}
				}
			}
		}
	}

	if !isHeader {
		// Positional fallback: Label, Width, Height, Count, Material, Grain
		return ColumnMapping{
			Label:    0,
			Width:    1,
			Height:   2,
			Count:    3,
			Material: 4,
			Grain:    5,
		}, false
	}

	return mapping, true
}

func parseGrain(s string) (model.Grain, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return model.GrainHorizontal, true
	case "vertical", "v":
		return model.GrainVertical, true
	case "", "none", "n", "-":
		return model.GrainNone, true
	default:
		return model.GrainNone, false
	}
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a PanelSpec from a row using the given column mapping.
// Dimensions are kept as decimal strings so the optimizer can scale them
// without float drift. Returns the panel, any error message and any warning.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, panelCount int) (optimizer.PanelSpec, string, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Panel %d", panelCount+1)
	}

	widthStr := getCell(row, mapping.Width)
	if widthStr == "" {
		return optimizer.PanelSpec{}, fmt.Sprintf("%s: Missing width value", rowLabel), ""
	}
	if w, err := strconv.ParseFloat(widthStr, 64); err != nil || w <= 0 {
		return optimizer.PanelSpec{}, fmt.Sprintf("%s: Invalid width '%s'", rowLabel, widthStr), ""
	}

	heightStr := getCell(row, mapping.Height)
	if heightStr == "" {
		return optimizer.PanelSpec{}, fmt.Sprintf("%s: Missing height value", rowLabel), ""
	}
	if h, err := strconv.ParseFloat(heightStr, 64); err != nil || h <= 0 {
		return optimizer.PanelSpec{}, fmt.Sprintf("%s: Invalid height '%s'", rowLabel, heightStr), ""
	}

	count := 1
	countStr := getCell(row, mapping.Count)
	if countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil || n <= 0 {
			return optimizer.PanelSpec{}, fmt.Sprintf("%s: Invalid count '%s'", rowLabel, countStr), ""
		}
		count = n
	}

	panel := optimizer.PanelSpec{
		Width:    widthStr,
		Height:   heightStr,
		Count:    count,
		Label:    label,
		Material: getCell(row, mapping.Material),
	}

	var warning string
	grainStr := getCell(row, mapping.Grain)
	if grainStr != "" {
		grain, ok := parseGrain(grainStr)
		if ok {
			panel.Grain = grain
		} else {
			warning = fmt.Sprintf("%s: Unknown grain direction '%s', defaulting to None", rowLabel, grainStr)
		}
	}

	return panel, "", warning
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports panels from a CSV file. It detects the delimiter
// automatically and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	warnings := result.Warnings
	result = importFromRows(records, "Line")
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// ImportCSVFromReader imports panels from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line")
}

// ImportExcel imports panels from the first sheet of an .xlsx file.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row")
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string) ImportResult {
	result := ImportResult{}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			// Unrecognized header row: skip it but keep positional mapping.
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		panel, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Panels))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Panels = append(result.Panels, panel)
	}

	return result
}
