package job

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/piwi3910/CutFlow/internal/engine"
	"github.com/piwi3910/CutFlow/internal/model"
)

// ClientInfo identifies the submitter. Running requires it; the admission
// limit is enforced per client id by the service layer.
type ClientInfo struct {
	ID string `json:"id"`
}

// Job is the shared state of one end-to-end optimization request. ID,
// Config, and Client are fixed at construction; every mutable section is
// guarded by mu and each exported mutating method is one atomic
// read-modify-write.
type Job struct {
	ID     string
	Config model.Configuration
	Client ClientInfo

	log *zap.Logger

	mu          sync.Mutex
	scale       int          // decimal scaling factor applied to the request
	tiles       []model.Tile // normalized tile units, set once before runs start
	status      Status
	pools       map[string][]*engine.Candidate
	progress    map[string]int
	rankings    map[string]map[model.CutDirection]int
	trimHit     bool
	startedAt   time.Time
	endedAt     time.Time
	lastQueried time.Time
}

func New(id string, cfg model.Configuration, client ClientInfo, log *zap.Logger) *Job {
	if log == nil {
		log = zap.NewNop()
	}
	return &Job{
		ID:       id,
		Config:   cfg,
		Client:   client,
		scale:    1,
		log:      log,
		status:   StatusIdle,
		pools:    make(map[string][]*engine.Candidate),
		progress: make(map[string]int),
		rankings: make(map[string]map[model.CutDirection]int),
	}
}

// SetNormalized records the request's scaling factor and expanded tile
// units, once, before any run starts.
func (j *Job) SetNormalized(scale int, tiles []model.Tile) {
	j.mu.Lock()
	j.scale = scale
	j.tiles = tiles
	j.mu.Unlock()
}

// ScaleFactor returns the decimal scaling factor for descaling results.
func (j *Job) ScaleFactor() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.scale
}

// Tiles returns the normalized tile units of the request.
func (j *Job) Tiles() []model.Tile {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]model.Tile, len(j.tiles))
	copy(out, j.tiles)
	return out
}

// TileByID maps a tile unit id back to its tile.
func (j *Job) TileByID(id int) (model.Tile, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, t := range j.tiles {
		if t.ID == id {
			return t, true
		}
	}
	return model.Tile{}, false
}

// transitionLocked applies a status change or fails with
// InvalidTransitionError. Callers hold mu.
func (j *Job) transitionLocked(next Status) error {
	if !j.status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: j.status, To: next}
	}
	j.status = next
	return nil
}

func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Queue moves the job into the queue.
func (j *Job) Queue() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.transitionLocked(StatusQueued)
}

// SetRunning starts the clock. A client identity is required to run.
func (j *Job) SetRunning() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Client.ID == "" {
		return fmt.Errorf("job %s: running requires a client identity", j.ID)
	}
	if err := j.transitionLocked(StatusRunning); err != nil {
		return err
	}
	j.startedAt = time.Now()
	return nil
}

// Finish marks the job done. It refuses to finish without any aggregated
// solution: an all-empty job is an error, not a success.
func (j *Job) Finish() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	empty := true
	for _, pool := range j.pools {
		if len(pool) > 0 {
			empty = false
			break
		}
	}
	if empty {
		return fmt.Errorf("job %s: cannot finish without a solution", j.ID)
	}
	if err := j.transitionLocked(StatusFinished); err != nil {
		return err
	}
	j.endedAt = time.Now()
	return nil
}

// Stop requests a cooperative stop; running work drains at its next
// cancellation check.
func (j *Job) Stop() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transitionLocked(StatusStopped); err != nil {
		return err
	}
	j.endedAt = time.Now()
	return nil
}

// Terminate force-ends the job (external monitor eviction).
func (j *Job) Terminate() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transitionLocked(StatusTerminated); err != nil {
		return err
	}
	j.endedAt = time.Now()
	return nil
}

// TerminateError moves the job to Error from any state.
func (j *Job) TerminateError() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transitionLocked(StatusError); err != nil {
		return err
	}
	j.endedAt = time.Now()
	return nil
}

// IsRunning is the cooperative cancellation check consulted by every
// search run and supplier at tile and iteration granularity.
func (j *Job) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status == StatusRunning
}

// RaiseMaterialProgress lifts a material's percentage to pct when that is
// higher than the recorded value. Concurrent permutation runs report out
// of order; the displayed figure never moves backwards.
func (j *Job) RaiseMaterialProgress(material string, pct int) {
	if pct > 100 {
		pct = 100
	}
	j.mu.Lock()
	if pct > j.progress[material] {
		j.progress[material] = pct
	}
	j.mu.Unlock()
}

// SetMaterialProgress records the percentage done for one material.
func (j *Job) SetMaterialProgress(material string, pct int) {
	if pct > 100 {
		pct = 100
	}
	j.mu.Lock()
	j.progress[material] = pct
	j.mu.Unlock()
}

// MaterialProgress returns the percentage done for one material.
func (j *Job) MaterialProgress(material string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress[material]
}

// OverallProgress averages material progress.
func (j *Job) OverallProgress() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.progress) == 0 {
		return 0
	}
	total := 0
	for _, p := range j.progress {
		total += p
	}
	return total / len(j.progress)
}

// Materials lists the materials the job tracks, in no particular order.
func (j *Job) Materials() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.progress))
	for m := range j.progress {
		out = append(out, m)
	}
	return out
}

// InitMaterial registers a material so progress and rankings exist before
// the first run reports in.
func (j *Job) InitMaterial(material string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.progress[material]; !ok {
		j.progress[material] = 0
	}
	if _, ok := j.rankings[material]; !ok {
		j.rankings[material] = make(map[model.CutDirection]int)
	}
}

// poolLimit is the per-material candidate pool size.
func (j *Job) poolLimit() int {
	limit := int(j.Config.OptimizationFactor * 100)
	if limit < 10 {
		limit = 10
	}
	return limit
}

// MergeResults folds one run's candidates into the material pool as a
// single atomic update: append, dedup, re-rank, truncate, then bump the
// run's strategy ranking by how many of its top candidates survived.
// Returns the number of survivors counted toward the ranking.
func (j *Job) MergeResults(material string, direction model.CutDirection, cands []*engine.Candidate) int {
	if len(cands) == 0 {
		return 0
	}
	window := j.Config.Performance.RankingWindow
	if window > len(cands) {
		window = len(cands)
	}
	top := cands[:window]

	j.mu.Lock()
	defer j.mu.Unlock()

	merged := append(j.pools[material], cands...)
	merged = engine.DedupBySignature(merged)
	engine.SortCandidates(merged, j.Config.Priority)
	if limit := j.poolLimit(); len(merged) > limit {
		merged = merged[:limit]
	}
	j.pools[material] = merged

	survivors := 0
	for _, c := range top {
		for _, kept := range merged {
			if kept == c {
				survivors++
				break
			}
		}
	}
	if j.rankings[material] == nil {
		j.rankings[material] = make(map[model.CutDirection]int)
	}
	j.rankings[material][direction] += survivors
	return survivors
}

// StrategyEligible implements adaptive strategy selection: a strategy
// keeps running only while its cumulative ranking exceeds one fifth of
// the rankings summed across strategies. With no data yet every strategy
// is eligible.
func (j *Job) StrategyEligible(material string, direction model.CutDirection) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	ranks := j.rankings[material]
	total := 0
	for _, r := range ranks {
		total += r
	}
	if total == 0 {
		return true
	}
	return ranks[direction] > total/5
}

// StrategyRanking returns the current ranking counter, for observability.
func (j *Job) StrategyRanking(material string, direction model.CutDirection) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rankings[material][direction]
}

// BestCandidate returns the top-ranked candidate for a material, or nil.
func (j *Job) BestCandidate(material string) *engine.Candidate {
	j.mu.Lock()
	defer j.mu.Unlock()
	pool := j.pools[material]
	if len(pool) == 0 {
		return nil
	}
	return pool[0]
}

// Candidates returns a snapshot of the material pool.
func (j *Job) Candidates(material string) []*engine.Candidate {
	j.mu.Lock()
	defer j.mu.Unlock()
	pool := j.pools[material]
	out := make([]*engine.Candidate, len(pool))
	copy(out, pool)
	return out
}

// HasAllFitSolution reports whether the material's pool already holds a
// candidate that placed every tile. Consulted by the stock supplier to
// stop enumerating ever larger combinations.
func (j *Job) HasAllFitSolution(material string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range j.pools[material] {
		if c.AllFit() {
			return true
		}
	}
	return false
}

// BestAllFitStockArea returns the total stock area of the best all-fit
// candidate, or -1 when none exists. Larger combinations cannot beat it.
func (j *Job) BestAllFitStockArea(material string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range j.pools[material] {
		if c.AllFit() {
			return c.TotalStockArea()
		}
	}
	return -1
}

// MarkTrimInfluenced records that at least one placement was rejected by
// the min-trim rule. Diagnostic only.
func (j *Job) MarkTrimInfluenced() {
	j.mu.Lock()
	j.trimHit = true
	j.mu.Unlock()
}

func (j *Job) TrimInfluenced() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.trimHit
}

// Elapsed returns how long the job has run (or ran).
func (j *Job) Elapsed() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.startedAt.IsZero() {
		return 0
	}
	if j.endedAt.IsZero() {
		return time.Since(j.startedAt)
	}
	return j.endedAt.Sub(j.startedAt)
}

// TouchQueried stamps the last poll time; the external monitor evicts
// jobs nobody asks about.
func (j *Job) TouchQueried() {
	j.mu.Lock()
	j.lastQueried = time.Now()
	j.mu.Unlock()
}

func (j *Job) LastQueried() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastQueried
}
