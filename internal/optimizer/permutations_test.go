package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CutFlow/internal/model"
)

func tilesOf(dims ...[2]int) []model.Tile {
	tiles := make([]model.Tile, len(dims))
	for i, d := range dims {
		tiles[i] = model.Tile{ID: i + 1, Width: d[0], Height: d[1]}
	}
	return tiles
}

func TestPermutations_DistinctGroupsFactorial(t *testing.T) {
	tiles := tilesOf([2]int{300, 200}, [2]int{200, 100}, [2]int{100, 50})
	perms := Permutations(tiles, 7)
	assert.Len(t, perms, 6, "three distinct sizes permute fully")
	for _, p := range perms {
		assert.Len(t, p, 3)
	}
}

func TestPermutations_IdenticalTilesCollapse(t *testing.T) {
	// Five identical tiles are one group: a single ordering.
	tiles := tilesOf([2]int{100, 50}, [2]int{100, 50}, [2]int{100, 50}, [2]int{100, 50}, [2]int{100, 50})
	perms := Permutations(tiles, 7)
	require.Len(t, perms, 1)
	assert.Len(t, perms[0], 5)
}

func TestPermutations_TailStaysFixed(t *testing.T) {
	// Nine distinct sizes with maxGroups 2: only the two largest permute,
	// giving 2 orderings instead of 9!.
	var dims [][2]int
	for i := 0; i < 9; i++ {
		dims = append(dims, [2]int{100 + i*10, 50})
	}
	tiles := tilesOf(dims...)
	perms := Permutations(tiles, 2)
	require.Len(t, perms, 2)

	// The tail (everything after the two largest) is identical across
	// orderings.
	tailA := perms[0][2:]
	tailB := perms[1][2:]
	require.Equal(t, len(tailA), len(tailB))
	for i := range tailA {
		assert.Equal(t, tailA[i].ID, tailB[i].ID)
	}
}

func TestPermutations_LargestGroupFirst(t *testing.T) {
	tiles := tilesOf([2]int{10, 10}, [2]int{500, 400})
	perms := Permutations(tiles, 7)
	require.NotEmpty(t, perms)
	assert.Equal(t, 2, perms[0][0].ID, "the large tile leads the first ordering")
}

func TestPermutations_GrainSplitsGroups(t *testing.T) {
	tiles := tilesOf([2]int{100, 50}, [2]int{100, 50})
	tiles[1].Grain = model.GrainVertical
	perms := Permutations(tiles, 7)
	assert.Len(t, perms, 2, "equal dimensions with different grain are distinct groups")
}

func TestPermutations_Empty(t *testing.T) {
	assert.Nil(t, Permutations(nil, 7))
}
