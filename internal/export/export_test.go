package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/CutFlow/internal/service"
)

// testSolution builds a hand-assembled two-material solution with placements,
// cuts and an unplaced tile, enough to drive every export path.
func testSolution() *service.Solution {
	return &service.Solution{
		Materials: []service.MaterialSolution{
			{
				Material:    "oak",
				PercentDone: 100,
				Sheets: []service.SheetReport{
					{
						Label:  "2440x1220",
						Width:  2440,
						Height: 1220,
						Placements: []service.TileReport{
							{ID: 1, Label: "side left", X: 0, Y: 0, Width: 600, Height: 400},
							{ID: 2, Label: "side right", X: 0, Y: 403.2, Width: 400, Height: 600, Rotated: true},
						},
						Cuts: []service.CutReport{
							{X1: 0, Y1: 400, X2: 2440, Y2: 400, Horizontal: true},
							{X1: 600, Y1: 0, X2: 600, Y2: 400, Horizontal: false},
						},
						UsedArea:   480000,
						WastedArea: 2496800,
					},
				},
				NoFit: []service.TileReport{
					{ID: 3, Label: "oversized top", Width: 3000, Height: 1500},
				},
				UsedArea:    480000,
				WastedArea:  2496800,
				Utilization: 0.1612,
			},
			{
				Material:    "",
				PercentDone: 100,
				Sheets: []service.SheetReport{
					{
						Label:  "1000x1000",
						Width:  1000,
						Height: 1000,
						Placements: []service.TileReport{
							{ID: 4, Label: "shelf", X: 0, Y: 0, Width: 1000, Height: 1000},
						},
						UsedArea: 1000000,
					},
				},
				UsedArea:    1000000,
				Utilization: 1,
			},
		},
	}
}

func requireNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPDF_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.pdf")
	require.NoError(t, PDF(path, testSolution()))
	requireNonEmptyFile(t, path)
}

func TestPDF_RejectsEmptySolution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.pdf")
	assert.Error(t, PDF(path, nil))
	assert.Error(t, PDF(path, &service.Solution{}))
}

func TestXLSX_WritesReadableWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.xlsx")
	require.NoError(t, XLSX(path, testSolution()))
	requireNonEmptyFile(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "oak")
	assert.Contains(t, sheets, "Default", "unnamed material falls back to Default")

	material, err := f.GetCellValue("Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "oak", material)
}

func TestXLSX_RejectsEmptySolution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.xlsx")
	assert.Error(t, XLSX(path, nil))
	assert.Error(t, XLSX(path, &service.Solution{}))
}

func TestLabels_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	require.NoError(t, Labels(path, testSolution()))
	requireNonEmptyFile(t, path)
}

func TestLabels_RejectsSolutionWithoutPlacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	err := Labels(path, &service.Solution{
		Materials: []service.MaterialSolution{{Material: "oak"}},
	})
	assert.Error(t, err)
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(testSolution())
	require.Len(t, labels, 3)

	assert.Equal(t, "side left", labels[0].TileLabel)
	assert.Equal(t, 1, labels[0].SheetIndex)
	assert.Equal(t, "oak", labels[0].Material)
	assert.False(t, labels[0].Rotated)

	assert.Equal(t, "side right", labels[1].TileLabel)
	assert.True(t, labels[1].Rotated)
	assert.InDelta(t, 403.2, labels[1].Y, 1e-9)

	// Sheet numbering carries across materials.
	assert.Equal(t, "shelf", labels[2].TileLabel)
	assert.Equal(t, 2, labels[2].SheetIndex)

	assert.Nil(t, CollectLabelInfos(nil))
}
