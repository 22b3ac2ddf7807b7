package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/piwi3910/CutFlow/internal/model"
	"github.com/piwi3910/CutFlow/internal/stock"
)

// ErrInvalidInput flags precondition failures such as a missing stock
// combination. Genuine "no placement possible" outcomes are not errors.
var ErrInvalidInput = errors.New("invalid input")

// progressCadence is how many tiles pass between progress reports.
const progressCadence = 3

// RunHandle is the slice of job state a search run needs: cooperative
// cancellation and progress reporting. The coordinator wraps the job in
// a per-run implementation.
type RunHandle interface {
	IsRunning() bool
	ReportProgress(tilesDone, tilesTotal int)
}

// Search is one beam-search run: one tile permutation packed onto one
// stock combination under one cut-direction bias.
type Search struct {
	Tiles         []model.Tile
	Combination   stock.Combination
	Direction     model.CutDirection
	Kerf          int
	MinTrim       int
	ConsiderGrain bool
	BeamWidth     int
	Priority      model.OptimizationPriority
	Strategy      string // strategy name tagged onto every result
	Aux           string // permutation/stock identifiers for ranking

	Handle RunHandle
	Log    *zap.Logger
}

// Result is the pruned, ranked candidate set a run produced. Partial is
// set when the run was cancelled mid-permutation; the candidates are
// still consistent, just built from a prefix of the tiles.
type Result struct {
	Candidates     []*Candidate
	Partial        bool
	TrimInfluenced bool
}

// Run executes the beam search. The beam starts from a single seeded
// candidate; every tile expands each beam element into all viable
// placements, then the beam is deduplicated, ranked, and truncated.
func (s *Search) Run() (*Result, error) {
	if len(s.Combination.Units) == 0 {
		return nil, fmt.Errorf("%w: empty stock combination", ErrInvalidInput)
	}
	if s.BeamWidth < 1 {
		return nil, fmt.Errorf("%w: beam width %d", ErrInvalidInput, s.BeamWidth)
	}
	if s.Log == nil {
		s.Log = zap.NewNop()
	}

	params := placementParams{
		kerf:          s.Kerf,
		minTrim:       s.MinTrim,
		considerGrain: s.ConsiderGrain,
		direction:     s.Direction,
	}

	beam := []*Candidate{SeedCandidate(s.Combination)}
	result := &Result{}

	for i, tile := range s.Tiles {
		if s.Handle != nil && !s.Handle.IsRunning() {
			s.Log.Debug("search cancelled",
				zap.String("strategy", s.Strategy),
				zap.Int("tiles_done", i),
				zap.Int("tiles_total", len(s.Tiles)))
			result.Partial = true
			break
		}

		var next []*Candidate
		for _, cand := range beam {
			branches, trimHit := cand.tryPlace(tile, params)
			result.TrimInfluenced = result.TrimInfluenced || trimHit
			next = append(next, branches...)
		}
		next = DedupBySignature(next)
		SortCandidates(next, s.Priority)
		if len(next) > s.BeamWidth {
			next = next[:s.BeamWidth]
		}
		beam = next

		if s.Handle != nil && (i%progressCadence == progressCadence-1 || i == len(s.Tiles)-1) {
			s.Handle.ReportProgress(i+1, len(s.Tiles))
		}
	}

	for _, c := range beam {
		c.Strategy = s.Strategy
		c.Aux = s.Aux
	}
	result.Candidates = beam
	return result, nil
}
