// Package stock enumerates combinations of stock sheets whose total area
// can cover a required tile area, and feeds them to search runs through a
// background-filled, index-addressable supplier.
package stock

import (
	"fmt"

	"github.com/piwi3910/CutFlow/internal/model"
)

// Combination is one concrete multiset of stock sheets considered
// together as the pool for one search run.
type Combination struct {
	Units     []model.StockUnit
	TotalArea int
}

// TypeCount is a distinct stock size with the number of physical sheets
// available.
type TypeCount struct {
	Unit model.StockUnit
	Max  int
}

// Generator enumerates combinations deterministically: per-type repeat
// counts advance as a mixed-radix counter, each position bounded by the
// sheets available of that type. Combinations whose total area falls
// short of the required area are skipped. When a combination holds two or
// more sheets of the same width and height, a second variant ordered by
// descending area is produced as well, biasing placement toward the big
// sheets first; a variant identical to its source is not repeated. If no
// combination reaches the required area the full stock is emitted once as
// a fallback.
type Generator struct {
	types    []TypeCount
	required int
	counts   []int
	done     bool
	emitted  bool
	pending  []Combination
}

func NewGenerator(types []TypeCount, requiredArea int) *Generator {
	return &Generator{
		types:    types,
		required: requiredArea,
		counts:   make([]int, len(types)),
		done:     len(types) == 0,
	}
}

// Next returns the next combination, or ok=false once the counter has
// exhausted every per-type count.
func (g *Generator) Next() (Combination, bool) {
	if len(g.pending) > 0 {
		c := g.pending[0]
		g.pending = g.pending[1:]
		return c, true
	}
	for !g.done {
		if !g.advance() {
			g.done = true
			break
		}
		comb := g.build()
		if comb.TotalArea < g.required {
			continue
		}
		if hasDuplicateSize(comb.Units) {
			if variant := sortedByAreaDesc(comb); !sameUnitOrder(variant.Units, comb.Units) {
				g.pending = append(g.pending, variant)
			}
		}
		g.emitted = true
		return comb, true
	}
	// When even the full stock falls short of the required area, runs still
	// happen against everything available so oversized tiles surface as
	// no-fit instead of an empty job.
	if !g.emitted && len(g.types) > 0 {
		g.emitted = true
		for i := range g.counts {
			g.counts[i] = g.types[i].Max
		}
		return g.build(), true
	}
	return Combination{}, false
}

// advance increments the mixed-radix counter, carrying into the next type
// when a position passes its cap. Returns false on overflow.
func (g *Generator) advance() bool {
	for i := range g.counts {
		if g.counts[i] < g.types[i].Max {
			g.counts[i]++
			return true
		}
		g.counts[i] = 0
	}
	return false
}

func (g *Generator) build() Combination {
	var comb Combination
	for i, n := range g.counts {
		for j := 0; j < n; j++ {
			comb.Units = append(comb.Units, g.types[i].Unit)
			comb.TotalArea += g.types[i].Unit.Area()
		}
	}
	return comb
}

// hasDuplicateSize reports whether two sheets share the same width and
// height. Equal areas with different dimensions do not count.
func hasDuplicateSize(units []model.StockUnit) bool {
	seen := make(map[[2]int]struct{}, len(units))
	for _, u := range units {
		dims := [2]int{u.Width, u.Height}
		if _, dup := seen[dims]; dup {
			return true
		}
		seen[dims] = struct{}{}
	}
	return false
}

// sameUnitOrder reports whether two unit slices list identical sheets in
// the same positions. A reordered variant equal to its source would only
// repeat the same run.
func sameUnitOrder(a, b []model.StockUnit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedByAreaDesc(comb Combination) Combination {
	cp := Combination{TotalArea: comb.TotalArea}
	cp.Units = make([]model.StockUnit, len(comb.Units))
	copy(cp.Units, comb.Units)
	// Stable insertion sort, descending by area.
	for i := 1; i < len(cp.Units); i++ {
		for j := i; j > 0 && cp.Units[j].Area() > cp.Units[j-1].Area(); j-- {
			cp.Units[j], cp.Units[j-1] = cp.Units[j-1], cp.Units[j]
		}
	}
	return cp
}

// GroupTypes collapses expanded stock units into distinct types with
// caps, preserving first-seen order so enumeration stays deterministic.
func GroupTypes(units []model.StockUnit) []TypeCount {
	var types []TypeCount
	index := make(map[string]int)
	for _, u := range units {
		key := fmt.Sprintf("%s|%dx%d", u.Material, u.Width, u.Height)
		if i, seen := index[key]; seen {
			types[i].Max++
			continue
		}
		index[key] = len(types)
		types = append(types, TypeCount{Unit: u, Max: 1})
	}
	return types
}
