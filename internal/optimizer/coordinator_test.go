package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CutFlow/internal/job"
	"github.com/piwi3910/CutFlow/internal/model"
	"github.com/piwi3910/CutFlow/internal/stock"
)

func TestGroupByMaterial_NoMaterialsSingleGroup(t *testing.T) {
	tiles := []model.Tile{{ID: 1, Width: 10, Height: 10}}
	units := []model.StockUnit{{Width: 100, Height: 100}}
	groups := groupByMaterial(tiles, units)
	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].material)
	assert.Len(t, groups[0].tiles, 1)
	assert.Len(t, groups[0].stock, 1)
}

func TestGroupByMaterial_SplitsAndSharesUniversalStock(t *testing.T) {
	tiles := []model.Tile{
		{ID: 1, Material: "oak"},
		{ID: 2, Material: "pine"},
		{ID: 3}, // universal
	}
	units := []model.StockUnit{
		{Width: 100, Height: 100, Material: "oak"},
		{Width: 100, Height: 100, Material: "pine"},
		{Width: 100, Height: 100}, // universal
	}
	groups := groupByMaterial(tiles, units)
	require.Len(t, groups, 3)

	assert.Equal(t, "oak", groups[0].material)
	assert.Len(t, groups[0].tiles, 1)
	assert.Len(t, groups[0].stock, 2, "own stock plus the universal sheet")

	assert.Equal(t, "pine", groups[1].material)
	assert.Len(t, groups[1].stock, 2)

	assert.Empty(t, groups[2].material, "universal tiles form their own group")
	assert.Len(t, groups[2].tiles, 1)
	assert.Len(t, groups[2].stock, 3, "universal tiles may land on any stock")
}

func TestBeamWidth(t *testing.T) {
	cfg := model.DefaultConfiguration()
	cfg.OptimizationFactor = 0.5
	assert.Equal(t, 50, beamWidth(cfg, 10))

	cfg.OptimizationFactor = 0
	assert.Equal(t, 1, beamWidth(cfg, 10), "beam never collapses to zero")

	// Past the large-job threshold the beam narrows proportionally.
	cfg.OptimizationFactor = 0.5
	cfg.Performance.LargeJobTileThreshold = 100
	assert.Equal(t, 25, beamWidth(cfg, 200))
	assert.Equal(t, 1, beamWidth(cfg, 100000))
}

func TestStrategiesFor(t *testing.T) {
	assert.Equal(t,
		[]model.CutDirection{model.CutBoth, model.CutHorizontalFirst, model.CutVerticalFirst},
		strategiesFor(model.PreferBoth))
	assert.Equal(t,
		[]model.CutDirection{model.CutBoth, model.CutHorizontalFirst},
		strategiesFor(model.PreferHorizontal))
	assert.Equal(t,
		[]model.CutDirection{model.CutBoth, model.CutVerticalFirst},
		strategiesFor(model.PreferVertical))
}

func runCoordinator(t *testing.T, panels []PanelSpec, stocks []StockSpec) *job.Job {
	t.Helper()
	cfg := model.DefaultConfiguration()
	cfg.CutThickness = 0
	cfg.Performance.MaxStockIterations = 50
	j := job.New("test-task", cfg, job.ClientInfo{ID: "tester"}, nil)
	require.NoError(t, j.Queue())
	require.NoError(t, j.SetRunning())

	c := NewCoordinator(j, nil)
	require.NoError(t, c.Run(panels, stocks))
	return j
}

func TestCoordinator_EndToEnd_TwoHalves(t *testing.T) {
	j := runCoordinator(t,
		[]PanelSpec{{Width: "100", Height: "50", Count: 2}},
		[]StockSpec{{Width: "100", Height: "100", Count: 1}},
	)

	assert.Equal(t, job.StatusFinished, j.Status())
	assert.Equal(t, 100, j.OverallProgress())

	best := j.BestCandidate("")
	require.NotNil(t, best)
	assert.True(t, best.AllFit())
	assert.Equal(t, 0, best.TotalWastedArea())
	require.Len(t, best.Sheets, 1)
	assert.Equal(t, 1, best.CutCount())
}

func TestCoordinator_EndToEnd_PerMaterial(t *testing.T) {
	j := runCoordinator(t,
		[]PanelSpec{
			{Width: "100", Height: "100", Count: 1, Material: "oak"},
			{Width: "50", Height: "50", Count: 1, Material: "pine"},
		},
		[]StockSpec{
			{Width: "100", Height: "100", Count: 1, Material: "oak"},
			{Width: "50", Height: "50", Count: 1, Material: "pine"},
		},
	)

	assert.Equal(t, job.StatusFinished, j.Status())
	require.NotNil(t, j.BestCandidate("oak"))
	require.NotNil(t, j.BestCandidate("pine"))
	assert.True(t, j.BestCandidate("oak").AllFit())
	assert.True(t, j.BestCandidate("pine").AllFit())
}

func TestCoordinator_NoSolutionIsError(t *testing.T) {
	cfg := model.DefaultConfiguration()
	j := job.New("test-task", cfg, job.ClientInfo{ID: "tester"}, nil)
	require.NoError(t, j.Queue())
	require.NoError(t, j.SetRunning())

	c := NewCoordinator(j, nil)
	// Zero-width stock fails normalization before any run starts.
	err := c.Run(
		[]PanelSpec{{Width: "10", Height: "10", Count: 1}},
		[]StockSpec{{Width: "0", Height: "100", Count: 1}},
	)
	require.Error(t, err)
	assert.Equal(t, job.StatusError, j.Status())
}

func TestRunSearch_CancelledRunDoesNotPolluteRankings(t *testing.T) {
	cfg := model.DefaultConfiguration()
	cfg.CutThickness = 0
	cfg.MinTrimDimension = 0
	j := job.New("test-task", cfg, job.ClientInfo{ID: "tester"}, nil)
	require.NoError(t, j.Queue())
	require.NoError(t, j.SetRunning())
	j.InitMaterial("")

	c := NewCoordinator(j, nil)
	perm := []model.Tile{
		{ID: 1, Width: 100, Height: 50},
		{ID: 2, Width: 100, Height: 50},
	}
	comb := stock.Combination{Units: []model.StockUnit{{Width: 100, Height: 100}}, TotalArea: 10000}

	c.runSearch("", perm, comb, model.CutBoth, 10, 0, 0, 1, c.Log)
	best := j.BestCandidate("")
	require.NotNil(t, best)
	require.True(t, best.AllFit())
	assert.Equal(t, 2, best.PlacedCount())

	// A run cancelled before placing any tile yields a prefix result;
	// merging it would let an empty candidate outrank the complete one.
	require.NoError(t, j.Stop())
	c.runSearch("", perm, comb, model.CutBoth, 10, 0, 0, 1, c.Log)

	best = j.BestCandidate("")
	require.NotNil(t, best)
	assert.True(t, best.AllFit(), "the complete solution survives a cancelled run")
	assert.Equal(t, 2, best.PlacedCount())
}

func TestSearchHandle_FoldsTileProgressIntoMaterial(t *testing.T) {
	j := job.New("test-task", model.DefaultConfiguration(), job.ClientInfo{ID: "tester"}, nil)
	j.InitMaterial("oak")

	// Second of four permutations, one of two tiles done: the material
	// sits halfway through the 25-50% band.
	h := searchHandle{job: j, material: "oak", permIdx: 1, totalPerms: 4}
	h.ReportProgress(1, 2)
	assert.Equal(t, 37, j.MaterialProgress("oak"))

	h.ReportProgress(2, 2)
	assert.Equal(t, 50, j.MaterialProgress("oak"))

	// An earlier permutation reporting late never regresses the figure.
	late := searchHandle{job: j, material: "oak", permIdx: 0, totalPerms: 4}
	late.ReportProgress(2, 2)
	assert.Equal(t, 50, j.MaterialProgress("oak"))

	// Degenerate inputs are ignored rather than dividing by zero.
	searchHandle{job: j, material: "oak"}.ReportProgress(1, 0)
	assert.Equal(t, 50, j.MaterialProgress("oak"))
}

func TestCoordinator_OversizedTileStillReportsNoFit(t *testing.T) {
	j := runCoordinator(t,
		[]PanelSpec{
			{Width: "100", Height: "100", Count: 1},
			{Width: "900", Height: "900", Count: 1},
		},
		[]StockSpec{{Width: "100", Height: "100", Count: 2}},
	)

	best := j.BestCandidate("")
	require.NotNil(t, best)
	assert.False(t, best.AllFit())
	assert.Len(t, best.NoFit, 1)
}
