package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CutFlow/internal/model"
)

func unit(w, h int) model.StockUnit {
	return model.StockUnit{Width: w, Height: h}
}

func drain(g *Generator, max int) []Combination {
	var out []Combination
	for i := 0; i < max; i++ {
		c, ok := g.Next()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

func TestGroupTypes_CollapsesByMaterialAndSize(t *testing.T) {
	units := []model.StockUnit{
		unit(100, 50), unit(100, 50),
		unit(200, 100),
		{Width: 100, Height: 50, Material: "oak"},
	}
	types := GroupTypes(units)
	require.Len(t, types, 3)
	assert.Equal(t, 2, types[0].Max)
	assert.Equal(t, 1, types[1].Max)
	assert.Equal(t, "oak", types[2].Unit.Material)
}

func TestGenerator_SingleType_CountsUp(t *testing.T) {
	g := NewGenerator([]TypeCount{{Unit: unit(100, 100), Max: 3}}, 0)
	combos := drain(g, 10)
	require.Len(t, combos, 3)
	assert.Len(t, combos[0].Units, 1)
	assert.Len(t, combos[1].Units, 2)
	assert.Len(t, combos[2].Units, 3)
	assert.Equal(t, 30000, combos[2].TotalArea)
}

func TestGenerator_SkipsTooSmallCombinations(t *testing.T) {
	g := NewGenerator([]TypeCount{{Unit: unit(100, 100), Max: 3}}, 25000)
	combos := drain(g, 10)
	require.Len(t, combos, 1, "only the three-sheet combination covers the area")
	assert.Len(t, combos[0].Units, 3)
}

func TestGenerator_Exhausts(t *testing.T) {
	g := NewGenerator([]TypeCount{{Unit: unit(10, 10), Max: 1}}, 0)
	_, ok := g.Next()
	require.True(t, ok)
	_, ok = g.Next()
	assert.False(t, ok)
	_, ok = g.Next()
	assert.False(t, ok, "exhaustion is stable")
}

func TestGenerator_FallsBackToFullStock(t *testing.T) {
	// Required area beyond the whole inventory still yields one combination
	// holding everything.
	g := NewGenerator([]TypeCount{
		{Unit: unit(100, 100), Max: 2},
		{Unit: unit(50, 50), Max: 1},
	}, 1_000_000)
	combos := drain(g, 10)
	require.Len(t, combos, 1)
	assert.Len(t, combos[0].Units, 3)
	assert.Equal(t, 22500, combos[0].TotalArea)
}

func TestGenerator_NoTypes(t *testing.T) {
	g := NewGenerator(nil, 100)
	_, ok := g.Next()
	assert.False(t, ok)
}

func TestGenerator_Deterministic(t *testing.T) {
	types := []TypeCount{
		{Unit: unit(100, 100), Max: 2},
		{Unit: unit(200, 100), Max: 1},
	}
	a := drain(NewGenerator(types, 0), 20)
	b := drain(NewGenerator(types, 0), 20)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].TotalArea, b[i].TotalArea)
		assert.Equal(t, len(a[i].Units), len(b[i].Units))
	}
}

func TestGenerator_DuplicateSizeEmitsSortedVariant(t *testing.T) {
	// Two identical small sheets plus one big sheet: the combination
	// [50x50 50x50 100x100] gains a big-sheets-first variant.
	types := []TypeCount{
		{Unit: unit(50, 50), Max: 2},
		{Unit: unit(100, 100), Max: 1},
	}
	g := NewGenerator(types, 15000)
	combos := drain(g, 10)
	require.Len(t, combos, 2)
	assert.Equal(t, combos[0].TotalArea, combos[1].TotalArea)
	require.Len(t, combos[1].Units, 3)
	assert.Equal(t, unit(100, 100), combos[1].Units[0], "the variant leads with the big sheet")
	assert.Equal(t, unit(50, 50), combos[0].Units[0], "input order unchanged")
}

func TestGenerator_EqualAreaDifferentSizeIsNotDuplicate(t *testing.T) {
	// 100x100 and 50x200 share an area but not a size; no variant.
	types := []TypeCount{
		{Unit: unit(100, 100), Max: 1},
		{Unit: unit(50, 200), Max: 1},
	}
	g := NewGenerator(types, 15000)
	combos := drain(g, 10)
	require.Len(t, combos, 1)
	assert.Len(t, combos[0].Units, 2)
}

func TestGenerator_SameTypeRepeatsSkipRedundantVariant(t *testing.T) {
	// Three identical sheets reorder to themselves; every combination is
	// emitted exactly once.
	g := NewGenerator([]TypeCount{{Unit: unit(100, 100), Max: 3}}, 0)
	combos := drain(g, 20)
	assert.Len(t, combos, 3)
}

func TestSortedByAreaDesc(t *testing.T) {
	comb := Combination{
		Units:     []model.StockUnit{unit(10, 10), unit(30, 30), unit(20, 20)},
		TotalArea: 1400,
	}
	sorted := sortedByAreaDesc(comb)
	assert.Equal(t, 900, sorted.Units[0].Area())
	assert.Equal(t, 400, sorted.Units[1].Area())
	assert.Equal(t, 100, sorted.Units[2].Area())
	assert.Equal(t, 100, comb.Units[0].Area(), "input order unchanged")
}
