package service

import (
	"github.com/piwi3910/CutFlow/internal/engine"
	"github.com/piwi3910/CutFlow/internal/job"
)

// TaskStatus is the polling response: job state plus the best solution
// assembled so far.
type TaskStatus struct {
	TaskID      string    `json:"task_id"`
	Status      string    `json:"status"`
	PercentDone int       `json:"percent_done"`
	ElapsedMs   int64     `json:"elapsed_ms"`
	Solution    *Solution `json:"solution,omitempty"`
}

// Solution is the assembled result across materials.
type Solution struct {
	Materials      []MaterialSolution `json:"materials"`
	TrimInfluenced bool               `json:"trim_influenced,omitempty"`
}

// MaterialSolution is the best candidate of one material rendered into
// sheet-by-sheet cut lists. For every sheet used + wasted area equals the
// sheet's stock area, and placed + no-fit counts equal the requested tile
// units of the material.
type MaterialSolution struct {
	Material    string       `json:"material"`
	PercentDone int          `json:"percent_done"`
	Sheets      []SheetReport `json:"sheets"`
	NoFit       []TileReport  `json:"no_fit,omitempty"`
	UsedArea    float64      `json:"used_area"`
	WastedArea  float64      `json:"wasted_area"`
	Utilization float64      `json:"utilization"` // used / total stock, 0..1
}

// SheetReport is one stock sheet with its placements and cuts.
type SheetReport struct {
	Label      string       `json:"label"`
	Material   string       `json:"material"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Placements []TileReport `json:"placements"`
	Cuts       []CutReport  `json:"cuts"`
	UsedArea   float64      `json:"used_area"`
	WastedArea float64      `json:"wasted_area"`
}

// TileReport is one placed (or unplaced) tile in request units.
type TileReport struct {
	ID      int     `json:"id"`
	Label   string  `json:"label"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Rotated bool    `json:"rotated"`
}

// CutReport is one saw line in request units.
type CutReport struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Horizontal bool    `json:"horizontal"`
}

func buildTaskStatus(j *job.Job) *TaskStatus {
	ts := &TaskStatus{
		TaskID:      j.ID,
		Status:      j.Status().String(),
		PercentDone: j.OverallProgress(),
		ElapsedMs:   j.Elapsed().Milliseconds(),
	}
	sol := buildSolution(j)
	if len(sol.Materials) > 0 {
		ts.Solution = sol
	}
	return ts
}

func buildSolution(j *job.Job) *Solution {
	scale := float64(j.ScaleFactor())
	sol := &Solution{TrimInfluenced: j.TrimInfluenced()}
	for _, material := range j.Materials() {
		best := j.BestCandidate(material)
		if best == nil {
			continue
		}
		sol.Materials = append(sol.Materials, buildMaterialSolution(j, material, best, scale))
	}
	return sol
}

func buildMaterialSolution(j *job.Job, material string, c *engine.Candidate, scale float64) MaterialSolution {
	ms := MaterialSolution{
		Material:    material,
		PercentDone: j.MaterialProgress(material),
	}
	usedScaled, totalScaled := 0, 0
	for _, sheet := range c.Sheets {
		report := SheetReport{
			Label:      sheet.Stock.Label,
			Material:   sheet.Material,
			Width:      float64(sheet.Stock.Width) / scale,
			Height:     float64(sheet.Stock.Height) / scale,
			UsedArea:   float64(sheet.UsedArea()) / (scale * scale),
			WastedArea: float64(sheet.WastedArea()) / (scale * scale),
		}
		for _, leaf := range sheet.PlacedTiles() {
			r := leaf.Rect()
			tr := TileReport{
				ID:      leaf.TileID(),
				X:       float64(r.X1) / scale,
				Y:       float64(r.Y1) / scale,
				Width:   float64(r.Width()) / scale,
				Height:  float64(r.Height()) / scale,
				Rotated: leaf.IsRotated(),
			}
			if tile, ok := j.TileByID(leaf.TileID()); ok {
				tr.Label = tile.Label
			}
			report.Placements = append(report.Placements, tr)
		}
		for _, cut := range sheet.Cuts {
			report.Cuts = append(report.Cuts, CutReport{
				X1:         float64(cut.X1) / scale,
				Y1:         float64(cut.Y1) / scale,
				X2:         float64(cut.X2) / scale,
				Y2:         float64(cut.Y2) / scale,
				Horizontal: cut.Horizontal,
			})
		}
		ms.Sheets = append(ms.Sheets, report)
		usedScaled += sheet.UsedArea()
		totalScaled += sheet.Stock.Area()
	}
	for _, tile := range c.NoFit {
		ms.NoFit = append(ms.NoFit, TileReport{
			ID:     tile.ID,
			Label:  tile.Label,
			Width:  float64(tile.Width) / scale,
			Height: float64(tile.Height) / scale,
		})
	}
	ms.UsedArea = float64(usedScaled) / (scale * scale)
	ms.WastedArea = float64(totalScaled-usedScaled) / (scale * scale)
	if totalScaled > 0 {
		ms.Utilization = float64(usedScaled) / float64(totalScaled)
	}
	return ms
}
