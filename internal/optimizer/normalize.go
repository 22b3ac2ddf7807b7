// Package optimizer turns a validated calculation request into
// permutations, stock combinations, and cut-direction strategies, and
// coordinates the concurrent search runs that explore them.
package optimizer

import (
	"fmt"

	"github.com/piwi3910/CutFlow/internal/model"
)

// PanelSpec is one required-panel entry as the request carries it:
// decimal dimension strings plus a count to expand.
type PanelSpec struct {
	Width    string      `json:"width"`
	Height   string      `json:"height"`
	Count    int         `json:"count"`
	Label    string      `json:"label"`
	Material string      `json:"material"`
	Grain    model.Grain `json:"grain"`
}

// StockSpec is one available-stock entry.
type StockSpec struct {
	Width    string `json:"width"`
	Height   string `json:"height"`
	Count    int    `json:"count"`
	Label    string `json:"label"`
	Material string `json:"material"`
}

// Normalize derives the minimal integer scaling factor from the decimal
// places across every dimension, then expands panel and stock entries
// (count > 1) into individual units at scaled integer dimensions.
func Normalize(panels []PanelSpec, stocks []StockSpec) (factor int, tiles []model.Tile, units []model.StockUnit, err error) {
	var dims []string
	for _, p := range panels {
		dims = append(dims, p.Width, p.Height)
	}
	for _, s := range stocks {
		dims = append(dims, s.Width, s.Height)
	}
	factor = model.ScaleFactor(dims...)

	nextID := 1
	for i, p := range panels {
		w, werr := model.ScaleValue(p.Width, factor)
		h, herr := model.ScaleValue(p.Height, factor)
		if werr != nil || herr != nil || w <= 0 || h <= 0 {
			return 0, nil, nil, fmt.Errorf("panel %d: invalid dimensions %q x %q", i, p.Width, p.Height)
		}
		for n := 0; n < p.Count; n++ {
			tiles = append(tiles, model.Tile{
				ID:           nextID,
				RequestIndex: i,
				Width:        w,
				Height:       h,
				Material:     p.Material,
				Label:        p.Label,
				Grain:        p.Grain,
			})
			nextID++
		}
	}
	for i, s := range stocks {
		w, werr := model.ScaleValue(s.Width, factor)
		h, herr := model.ScaleValue(s.Height, factor)
		if werr != nil || herr != nil || w <= 0 || h <= 0 {
			return 0, nil, nil, fmt.Errorf("stock %d: invalid dimensions %q x %q", i, s.Width, s.Height)
		}
		for n := 0; n < s.Count; n++ {
			units = append(units, model.StockUnit{
				TypeIndex: i,
				Width:     w,
				Height:    h,
				Material:  s.Material,
				Label:     s.Label,
			})
		}
	}
	return factor, tiles, units, nil
}
