package engine

import (
	"strings"

	"github.com/piwi3910/CutFlow/internal/model"
	"github.com/piwi3910/CutFlow/internal/stock"
)

// Candidate is one in-progress packing attempt: the sheets opened so far,
// the stock still untouched, and the tiles that found no home. Candidates
// are beam elements; tryPlace branches into new candidates and never
// mutates the receiver.
type Candidate struct {
	Sheets      []*SheetLayout
	UnusedStock []model.StockUnit
	NoFit       []model.Tile

	// Strategy and Aux label the run that produced the candidate, for
	// downstream strategy ranking.
	Strategy string
	Aux      string
}

// SeedCandidate starts a run: every stock unit of the combination unused,
// no sheets, no failures.
func SeedCandidate(comb stock.Combination) *Candidate {
	unused := make([]model.StockUnit, len(comb.Units))
	copy(unused, comb.Units)
	return &Candidate{UnusedStock: unused}
}

// shallowClone copies the candidate sharing all sheet pointers. Callers
// replace or append sheets afterwards; shared sheets are never mutated.
func (c *Candidate) shallowClone() *Candidate {
	cp := &Candidate{Strategy: c.Strategy, Aux: c.Aux}
	cp.Sheets = make([]*SheetLayout, len(c.Sheets))
	copy(cp.Sheets, c.Sheets)
	cp.UnusedStock = make([]model.StockUnit, len(c.UnusedStock))
	copy(cp.UnusedStock, c.UnusedStock)
	cp.NoFit = make([]model.Tile, len(c.NoFit))
	copy(cp.NoFit, c.NoFit)
	return cp
}

// placementParams bundles the per-run settings tryPlace needs.
type placementParams struct {
	kerf          int
	minTrim       int
	considerGrain bool
	direction     model.CutDirection
}

func (p placementParams) biases() []bool {
	switch p.direction {
	case model.CutHorizontalFirst:
		return []bool{true}
	case model.CutVerticalFirst:
		return []bool{false}
	default:
		return []bool{true, false}
	}
}

// orientations returns the width/height pairs to try for the tile.
func orientations(tile model.Tile, considerGrain bool) [][2]int {
	out := [][2]int{{tile.Width, tile.Height}}
	if tile.CanRotate(considerGrain) {
		out = append(out, [2]int{tile.Height, tile.Width})
	}
	return out
}

// tryPlace attempts the tile on every open leaf of every compatible sheet,
// in both permitted orientations and under each bias the run's direction
// allows, then falls back to opening a fresh sheet from the first unused
// stock unit that fits. Every viable placement becomes a new candidate.
// When nothing works the tile goes onto a clone's no-fit list, so the set
// partition (placed + no-fit == processed) always holds.
func (c *Candidate) tryPlace(tile model.Tile, p placementParams) (results []*Candidate, trimHit bool) {
	for si, sheet := range c.Sheets {
		if sheet.Material != "" && tile.Material != "" && sheet.Material != tile.Material {
			continue
		}
		for _, wh := range orientations(tile, p.considerGrain) {
			w, h := wh[0], wh[1]
			rotated := w != tile.Width
			leaves := sheet.root.collectLeaves(w, h, nil)
			for _, leaf := range leaves {
				exact := leaf.rect.Width() == w && leaf.rect.Height() == h
				biases := p.biases()
				if exact {
					biases = biases[:1] // no cuts needed, variants coincide
				}
				for _, hf := range biases {
					cp := sheet.Copy()
					ok, hit := cp.PlaceTile(leaf.id, tile.ID, w, h, rotated, p.kerf, p.minTrim, hf)
					trimHit = trimHit || hit
					if !ok {
						continue
					}
					branch := c.shallowClone()
					branch.Sheets[si] = cp
					results = append(results, branch)
				}
			}
		}
	}

	if len(results) == 0 {
		fresh, hit := c.openFreshSheet(tile, p)
		trimHit = trimHit || hit
		results = append(results, fresh...)
	}

	if len(results) == 0 {
		branch := c.shallowClone()
		branch.NoFit = append(branch.NoFit, tile)
		results = append(results, branch)
	}
	return results, trimHit
}

// openFreshSheet starts a new layout from the first unused stock unit the
// tile fits on, yielding one candidate per viable placement variant.
func (c *Candidate) openFreshSheet(tile model.Tile, p placementParams) ([]*Candidate, bool) {
	trimHit := false
	for i, unit := range c.UnusedStock {
		if unit.Material != "" && tile.Material != "" && unit.Material != tile.Material {
			continue
		}
		if !unit.FitsTile(tile, p.considerGrain) {
			continue
		}
		var results []*Candidate
		for _, wh := range orientations(tile, p.considerGrain) {
			w, h := wh[0], wh[1]
			rotated := w != tile.Width
			if !unit.Rect().Fits(w, h) {
				continue
			}
			exact := unit.Width == w && unit.Height == h
			biases := p.biases()
			if exact {
				biases = biases[:1]
			}
			for _, hf := range biases {
				layout := NewSheetLayout(unit)
				ok, hit := layout.PlaceTile(0, tile.ID, w, h, rotated, p.kerf, p.minTrim, hf)
				trimHit = trimHit || hit
				if !ok {
					continue
				}
				branch := c.shallowClone()
				branch.Sheets = append(branch.Sheets, layout)
				branch.UnusedStock = append(branch.UnusedStock[:i:i], branch.UnusedStock[i+1:]...)
				results = append(results, branch)
			}
		}
		// Only the first fitting unit is considered.
		return results, trimHit
	}
	return nil, trimHit
}

// Signature concatenates each sheet's structural identifier in order. Two
// candidates with equal signatures are interchangeable.
func (c *Candidate) Signature() string {
	var sb strings.Builder
	for _, s := range c.Sheets {
		s.root.writeSignature(&sb)
	}
	return sb.String()
}

// TotalUsedArea sums placed-tile area across all sheets.
func (c *Candidate) TotalUsedArea() int {
	total := 0
	for _, s := range c.Sheets {
		total += s.UsedArea()
	}
	return total
}

// TotalWastedArea sums non-tile area (open leaves and kerf) across sheets.
func (c *Candidate) TotalWastedArea() int {
	total := 0
	for _, s := range c.Sheets {
		total += s.WastedArea()
	}
	return total
}

// TotalStockArea sums the stock area of the sheets actually opened.
func (c *Candidate) TotalStockArea() int {
	total := 0
	for _, s := range c.Sheets {
		total += s.Stock.Area()
	}
	return total
}

// TotalCutLength sums cut length across sheets.
func (c *Candidate) TotalCutLength() int {
	total := 0
	for _, s := range c.Sheets {
		total += s.CutLength()
	}
	return total
}

// CutCount counts cuts across sheets.
func (c *Candidate) CutCount() int {
	total := 0
	for _, s := range c.Sheets {
		total += len(s.Cuts)
	}
	return total
}

// PlacedCount counts placed tiles across sheets.
func (c *Candidate) PlacedCount() int {
	total := 0
	for _, s := range c.Sheets {
		total += s.TileCount()
	}
	return total
}

// BiggestOpenArea is the largest open leaf across all sheets.
func (c *Candidate) BiggestOpenArea() int {
	best := 0
	for _, s := range c.Sheets {
		if a := s.BiggestOpenArea(); a > best {
			best = a
		}
	}
	return best
}

// AllFit reports whether every processed tile found a place.
func (c *Candidate) AllFit() bool {
	return len(c.NoFit) == 0
}
