package optimizer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/piwi3910/CutFlow/internal/model"
)

// tileGroup bundles tiles of identical dimensions; permutation happens at
// group granularity to keep the factorial bounded.
type tileGroup struct {
	key   string
	area  int
	tiles []model.Tile
}

// groupTiles buckets identical-dimension tiles, preserving first-seen
// order within a group, then sorts distinct groups by descending area.
func groupTiles(tiles []model.Tile) []tileGroup {
	var groups []tileGroup
	index := make(map[string]int)
	for _, t := range tiles {
		key := fmt.Sprintf("%dx%d|%d", t.Width, t.Height, t.Grain)
		if i, ok := index[key]; ok {
			groups[i].tiles = append(groups[i].tiles, t)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, tileGroup{key: key, area: t.Area(), tiles: []model.Tile{t}})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].area > groups[j].area
	})
	return groups
}

// Permutations builds the tile orderings a job explores: the maxGroups
// largest distinct-dimension groups are permuted fully, the remaining
// groups follow every permutation unpermuted in area order. Orderings
// whose expanded tile-id sequence repeats are dropped.
func Permutations(tiles []model.Tile, maxGroups int) [][]model.Tile {
	groups := groupTiles(tiles)
	if len(groups) == 0 {
		return nil
	}
	head := groups
	var tail []tileGroup
	if len(groups) > maxGroups {
		head = groups[:maxGroups]
		tail = groups[maxGroups:]
	}

	var result [][]model.Tile
	seen := make(map[string]struct{})
	permuteGroups(head, 0, func(perm []tileGroup) {
		seq := make([]model.Tile, 0, len(tiles))
		for _, g := range perm {
			seq = append(seq, g.tiles...)
		}
		for _, g := range tail {
			seq = append(seq, g.tiles...)
		}
		key := idSequence(seq)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		cp := make([]model.Tile, len(seq))
		copy(cp, seq)
		result = append(result, cp)
	})
	return result
}

// permuteGroups runs Heap's algorithm over the group slice in place,
// invoking emit for every arrangement.
func permuteGroups(groups []tileGroup, k int, emit func([]tileGroup)) {
	if k == len(groups) {
		emit(groups)
		return
	}
	for i := k; i < len(groups); i++ {
		groups[k], groups[i] = groups[i], groups[k]
		permuteGroups(groups, k+1, emit)
		groups[k], groups[i] = groups[i], groups[k]
	}
}

func idSequence(tiles []model.Tile) string {
	var sb strings.Builder
	for i, t := range tiles {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(t.ID))
	}
	return sb.String()
}
