package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CutFlow/internal/model"
	"github.com/piwi3910/CutFlow/internal/stock"
)

func testCombination(units ...model.StockUnit) stock.Combination {
	c := stock.Combination{Units: units}
	for _, u := range units {
		c.TotalArea += u.Area()
	}
	return c
}

func testTiles(dims ...[2]int) []model.Tile {
	tiles := make([]model.Tile, len(dims))
	for i, d := range dims {
		tiles[i] = model.Tile{ID: i + 1, Width: d[0], Height: d[1]}
	}
	return tiles
}

// stoppedHandle cancels the run after a fixed number of liveness checks.
type stoppedHandle struct {
	remaining int
}

func (h *stoppedHandle) IsRunning() bool {
	h.remaining--
	return h.remaining >= 0
}

func (h *stoppedHandle) ReportProgress(done, total int) {}

func TestSearch_TwoHalvesOneSheet(t *testing.T) {
	s := &Search{
		Tiles:       testTiles([2]int{100, 50}, [2]int{100, 50}),
		Combination: testCombination(model.StockUnit{Width: 100, Height: 100}),
		Direction:   model.CutBoth,
		BeamWidth:   10,
	}
	result, err := s.Run()
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)
	assert.False(t, result.Partial)

	best := result.Candidates[0]
	require.True(t, best.AllFit())
	require.Len(t, best.Sheets, 1)
	assert.Equal(t, 10000, best.TotalUsedArea())
	assert.Equal(t, 0, best.TotalWastedArea())
	require.Equal(t, 1, best.CutCount())
	assert.True(t, best.Sheets[0].Cuts[0].Horizontal)
	assert.Equal(t, 50, best.Sheets[0].Cuts[0].Y1)
}

func TestSearch_RotationUsed(t *testing.T) {
	s := &Search{
		Tiles:       testTiles([2]int{50, 100}),
		Combination: testCombination(model.StockUnit{Width: 100, Height: 50}),
		Direction:   model.CutBoth,
		BeamWidth:   5,
	}
	result, err := s.Run()
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)

	best := result.Candidates[0]
	require.True(t, best.AllFit())
	placed := best.Sheets[0].PlacedTiles()
	require.Len(t, placed, 1)
	assert.True(t, placed[0].IsRotated())
}

func TestSearch_GrainForbidsRotation(t *testing.T) {
	tiles := testTiles([2]int{50, 100})
	tiles[0].Grain = model.GrainVertical
	s := &Search{
		Tiles:         tiles,
		Combination:   testCombination(model.StockUnit{Width: 100, Height: 50}),
		Direction:     model.CutBoth,
		ConsiderGrain: true,
		BeamWidth:     5,
	}
	result, err := s.Run()
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)
	assert.False(t, result.Candidates[0].AllFit(), "the only fit would need a forbidden rotation")
	assert.Len(t, result.Candidates[0].NoFit, 1)
}

func TestSearch_KerfSwallowsMarginStillFits(t *testing.T) {
	// The 3 unit margin disappears into the kerf; the tile must place.
	for _, height := range []int{53, 52} {
		s := &Search{
			Tiles:       testTiles([2]int{100, 50}),
			Combination: testCombination(model.StockUnit{Width: 100, Height: height}),
			Direction:   model.CutBoth,
			Kerf:        3,
			BeamWidth:   5,
		}
		result, err := s.Run()
		require.NoError(t, err)
		require.NotEmpty(t, result.Candidates)
		assert.True(t, result.Candidates[0].AllFit(), "stock height %d", height)
	}
}

func TestSearch_SecondSheetOpensWhenNeeded(t *testing.T) {
	s := &Search{
		Tiles: testTiles([2]int{100, 100}, [2]int{100, 100}),
		Combination: testCombination(
			model.StockUnit{Width: 100, Height: 100},
			model.StockUnit{Width: 100, Height: 100},
		),
		Direction: model.CutBoth,
		BeamWidth: 5,
	}
	result, err := s.Run()
	require.NoError(t, err)
	best := result.Candidates[0]
	require.True(t, best.AllFit())
	assert.Len(t, best.Sheets, 2)
	assert.Empty(t, best.UnusedStock)
}

func TestSearch_NoFitKeepsAccounting(t *testing.T) {
	s := &Search{
		Tiles:       testTiles([2]int{100, 100}, [2]int{200, 200}),
		Combination: testCombination(model.StockUnit{Width: 100, Height: 100}),
		Direction:   model.CutBoth,
		BeamWidth:   5,
	}
	result, err := s.Run()
	require.NoError(t, err)
	for _, c := range result.Candidates {
		assert.Equal(t, 2, c.PlacedCount()+len(c.NoFit), "every tile is placed or reported")
	}
	best := result.Candidates[0]
	assert.Len(t, best.NoFit, 1)
	assert.Equal(t, 2, best.NoFit[0].ID)
}

func TestSearch_TrimInfluencedFlag(t *testing.T) {
	s := &Search{
		Tiles:       testTiles([2]int{95, 100}),
		Combination: testCombination(model.StockUnit{Width: 100, Height: 100}),
		Direction:   model.CutBoth,
		MinTrim:     20,
		BeamWidth:   5,
	}
	result, err := s.Run()
	require.NoError(t, err)
	assert.True(t, result.TrimInfluenced)
	assert.Len(t, result.Candidates[0].NoFit, 1)
}

func TestSearch_Deterministic(t *testing.T) {
	run := func() string {
		s := &Search{
			Tiles: testTiles([2]int{60, 40}, [2]int{40, 40}, [2]int{60, 60}),
			Combination: testCombination(
				model.StockUnit{Width: 120, Height: 120},
			),
			Direction: model.CutBoth,
			BeamWidth: 8,
		}
		result, err := s.Run()
		require.NoError(t, err)
		require.NotEmpty(t, result.Candidates)
		return result.Candidates[0].Signature()
	}
	first := run()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, run())
	}
}

func TestSearch_InvalidInput(t *testing.T) {
	s := &Search{Tiles: testTiles([2]int{10, 10}), BeamWidth: 5}
	_, err := s.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	s = &Search{
		Tiles:       testTiles([2]int{10, 10}),
		Combination: testCombination(model.StockUnit{Width: 100, Height: 100}),
		BeamWidth:   0,
	}
	_, err = s.Run()
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSearch_CancelledMidRun(t *testing.T) {
	s := &Search{
		Tiles:       testTiles([2]int{10, 10}, [2]int{10, 10}, [2]int{10, 10}, [2]int{10, 10}),
		Combination: testCombination(model.StockUnit{Width: 100, Height: 100}),
		Direction:   model.CutBoth,
		BeamWidth:   5,
		Handle:      &stoppedHandle{remaining: 2},
	}
	result, err := s.Run()
	require.NoError(t, err)
	assert.True(t, result.Partial)
	for _, c := range result.Candidates {
		assert.Equal(t, 2, c.PlacedCount()+len(c.NoFit), "prefix accounting still holds")
	}
}

func TestDedupBySignature(t *testing.T) {
	a := SeedCandidate(testCombination(model.StockUnit{Width: 100, Height: 100}))
	branchesA, _ := a.tryPlace(model.Tile{ID: 1, Width: 100, Height: 50}, placementParams{direction: model.CutBoth})
	require.Len(t, branchesA, 4, "two orientations times two biases")

	// The bias variants of each orientation coincide geometrically, so only
	// the two orientations survive.
	deduped := DedupBySignature(branchesA)
	assert.Len(t, deduped, 2)
}

func TestLess_NoFitDominates(t *testing.T) {
	snug := layoutWithTile(t, 100, 100, 100, 100)
	wasteful := layoutWithTile(t, 200, 200, 100, 100)

	allFit := &Candidate{Sheets: []*SheetLayout{wasteful}}
	partial := &Candidate{
		Sheets: []*SheetLayout{snug},
		NoFit:  []model.Tile{{ID: 2, Width: 300, Height: 300}},
	}

	assert.True(t, Less(allFit, partial, model.PriorityLeastWastedArea),
		"fewer unplaced tiles beats less waste")
}

func TestLess_WasteBeforeCutsUnderAreaPriority(t *testing.T) {
	snug := &Candidate{Sheets: []*SheetLayout{layoutWithTile(t, 100, 100, 100, 100)}}
	wasteful := &Candidate{Sheets: []*SheetLayout{layoutWithTile(t, 200, 200, 100, 100)}}

	assert.True(t, Less(snug, wasteful, model.PriorityLeastWastedArea))
	assert.False(t, Less(wasteful, snug, model.PriorityLeastWastedArea))
	// Under the cuts priority the snug layout still wins: zero cuts versus two.
	assert.True(t, Less(snug, wasteful, model.PriorityLeastCuts))
}

// layoutWithTile opens a stockW x stockH sheet and places one tile on it.
func layoutWithTile(t *testing.T, stockW, stockH, tileW, tileH int) *SheetLayout {
	t.Helper()
	s := NewSheetLayout(model.StockUnit{Width: stockW, Height: stockH})
	ok, _ := s.PlaceTile(0, 1, tileW, tileH, false, 0, 0, true)
	require.True(t, ok)
	return s
}
