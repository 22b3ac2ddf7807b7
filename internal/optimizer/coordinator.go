package optimizer

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/CutFlow/internal/engine"
	"github.com/piwi3910/CutFlow/internal/job"
	"github.com/piwi3910/CutFlow/internal/model"
	"github.com/piwi3910/CutFlow/internal/stock"
)

// Coordinator drives one job end to end: normalization, material
// grouping, permutation x stock-combination x strategy fan-out, and the
// merge of every run's results back into the job.
type Coordinator struct {
	Job *job.Job
	Log *zap.Logger
}

func NewCoordinator(j *job.Job, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{Job: j, Log: log}
}

// materialGroup pairs the tiles and stock of one material. Tiles without
// a material are universal and form their own group over all stock;
// stock without a material joins every group.
type materialGroup struct {
	material string
	tiles    []model.Tile
	stock    []model.StockUnit
}

// groupByMaterial splits tiles and stock into per-material groups.
func groupByMaterial(tiles []model.Tile, units []model.StockUnit) []materialGroup {
	materialSet := make(map[string]bool)
	for _, t := range tiles {
		if t.Material != "" {
			materialSet[t.Material] = true
		}
	}
	if len(materialSet) == 0 {
		return []materialGroup{{tiles: tiles, stock: units}}
	}

	materials := make([]string, 0, len(materialSet))
	for m := range materialSet {
		materials = append(materials, m)
	}
	sort.Strings(materials)

	var universalTiles []model.Tile
	var universalStock []model.StockUnit
	for _, t := range tiles {
		if t.Material == "" {
			universalTiles = append(universalTiles, t)
		}
	}
	for _, u := range units {
		if u.Material == "" {
			universalStock = append(universalStock, u)
		}
	}

	var groups []materialGroup
	for _, mat := range materials {
		g := materialGroup{material: mat}
		for _, t := range tiles {
			if t.Material == mat {
				g.tiles = append(g.tiles, t)
			}
		}
		for _, u := range units {
			if u.Material == mat {
				g.stock = append(g.stock, u)
			}
		}
		g.stock = append(g.stock, universalStock...)
		groups = append(groups, g)
	}
	if len(universalTiles) > 0 {
		g := materialGroup{tiles: universalTiles}
		g.stock = append(g.stock, units...)
		groups = append(groups, g)
	}
	return groups
}

// beamWidth derives the per-run beam width from the optimization factor,
// narrowed proportionally once the tile count passes the large-job
// threshold so per-round cost stays bounded.
func beamWidth(cfg model.Configuration, tileCount int) int {
	bw := int(math.Round(cfg.OptimizationFactor * 100))
	if bw < 1 {
		bw = 1
	}
	if threshold := cfg.Performance.LargeJobTileThreshold; tileCount > threshold && threshold > 0 {
		bw = bw * threshold / tileCount
		if bw < 1 {
			bw = 1
		}
	}
	return bw
}

// strategiesFor maps the orientation preference onto the cut-direction
// strategies a job may run: Both enables all three, a fixed preference
// keeps Both plus the matching single-direction strategy.
func strategiesFor(pref model.OrientationPreference) []model.CutDirection {
	switch pref {
	case model.PreferHorizontal:
		return []model.CutDirection{model.CutBoth, model.CutHorizontalFirst}
	case model.PreferVertical:
		return []model.CutDirection{model.CutBoth, model.CutVerticalFirst}
	default:
		return []model.CutDirection{model.CutBoth, model.CutHorizontalFirst, model.CutVerticalFirst}
	}
}

// Run executes the whole job. The job must already be Running; Run moves
// it to Finished (or Error when no material produced any candidate).
func (c *Coordinator) Run(panels []PanelSpec, stockPanels []StockSpec) error {
	cfg := c.Job.Config
	factor, tiles, units, err := Normalize(panels, stockPanels)
	if err != nil {
		if terr := c.Job.TerminateError(); terr != nil {
			c.Log.Warn("job error transition failed", zap.Error(terr))
		}
		return err
	}
	c.Job.SetNormalized(factor, tiles)

	groups := groupByMaterial(tiles, units)
	for _, g := range groups {
		c.Job.InitMaterial(g.material)
	}
	for _, g := range groups {
		if !c.Job.IsRunning() {
			break
		}
		c.optimizeMaterial(g, cfg)
	}

	empty := true
	for _, g := range groups {
		if len(c.Job.Candidates(g.material)) > 0 {
			empty = false
			break
		}
	}
	if empty {
		// A stop or terminate request may have drained the job before any
		// run reported in; that outcome keeps its status.
		if !c.Job.IsRunning() {
			return nil
		}
		if terr := c.Job.TerminateError(); terr != nil {
			c.Log.Warn("job error transition failed", zap.Error(terr))
		}
		return fmt.Errorf("job %s: no material produced a solution", c.Job.ID)
	}
	if c.Job.IsRunning() {
		if err := c.Job.Finish(); err != nil {
			return err
		}
	}
	return nil
}

// optimizeMaterial fans a material's permutations, stock combinations,
// and eligible strategies out over the worker pool.
func (c *Coordinator) optimizeMaterial(g materialGroup, cfg model.Configuration) {
	log := c.Log.With(zap.String("job", c.Job.ID), zap.String("material", g.material))

	requiredArea := 0
	for _, t := range g.tiles {
		requiredArea += t.Area()
	}
	gen := stock.NewGenerator(stock.GroupTypes(g.stock), requiredArea)
	sup := stock.NewSupplier(gen, c.Job, g.material, log)
	sup.Start()
	defer sup.Stop()

	perms := Permutations(g.tiles, cfg.Performance.MaxPermutationGroups)
	bw := beamWidth(cfg, len(g.tiles))
	log.Info("material optimization starting",
		zap.Int("tiles", len(g.tiles)),
		zap.Int("stock_units", len(g.stock)),
		zap.Int("permutations", len(perms)),
		zap.Int("beam_width", bw))

	var eg errgroup.Group
	eg.SetLimit(cfg.Performance.WorkerCount)

	for pi, perm := range perms {
		if !c.Job.IsRunning() {
			break
		}
		for ci := 0; ci < cfg.Performance.MaxStockIterations; ci++ {
			if !c.Job.IsRunning() {
				break
			}
			comb, ok := sup.Get(ci)
			if !ok {
				break
			}
			// A combination at least as large as an existing all-fit
			// solution cannot improve on it.
			if best := c.Job.BestAllFitStockArea(g.material); best >= 0 && best <= comb.TotalArea {
				continue
			}
			for _, dir := range strategiesFor(cfg.OrientationPref) {
				if !c.Job.StrategyEligible(g.material, dir) {
					continue
				}
				perm, comb, dir, pi, ci := perm, comb, dir, pi, ci
				eg.Go(func() error {
					c.runSearch(g.material, perm, comb, dir, bw, pi, ci, len(perms), log)
					return nil
				})
			}
		}
		c.Job.RaiseMaterialProgress(g.material, (pi+1)*100/len(perms))
	}
	if err := eg.Wait(); err != nil {
		log.Warn("search group ended with error", zap.Error(err))
	}
	if c.Job.IsRunning() {
		c.Job.SetMaterialProgress(g.material, 100)
	}
}

// searchHandle scopes a single run's cancellation and progress onto the
// job. Tile progress interpolates within the permutation's share of the
// material, reported as a raise so concurrent runs cannot regress it.
type searchHandle struct {
	job        *job.Job
	material   string
	permIdx    int
	totalPerms int
}

func (h searchHandle) IsRunning() bool { return h.job.IsRunning() }

func (h searchHandle) ReportProgress(tilesDone, tilesTotal int) {
	if h.totalPerms < 1 || tilesTotal < 1 {
		return
	}
	pct := (h.permIdx*100 + tilesDone*100/tilesTotal) / h.totalPerms
	h.job.RaiseMaterialProgress(h.material, pct)
}

// runSearch executes a single beam-search run and merges its results.
// Run-level failures abort only this run.
func (c *Coordinator) runSearch(material string, perm []model.Tile, comb stock.Combination, dir model.CutDirection, bw, permIdx, combIdx, totalPerms int, log *zap.Logger) {
	cfg := c.Job.Config
	s := &engine.Search{
		Tiles:         perm,
		Combination:   comb,
		Direction:     dir,
		Kerf:          model.ScaleFloat(cfg.CutThickness, c.Job.ScaleFactor()),
		MinTrim:       model.ScaleFloat(cfg.MinTrimDimension, c.Job.ScaleFactor()),
		ConsiderGrain: cfg.ConsiderGrain,
		BeamWidth:     bw,
		Priority:      cfg.Priority,
		Strategy:      dir.String(),
		Aux:           fmt.Sprintf("perm=%d stock=%d strategy=%s", permIdx, combIdx, dir),
		Handle:        searchHandle{job: c.Job, material: material, permIdx: permIdx, totalPerms: totalPerms},
		Log:           log,
	}
	result, err := s.Run()
	if err != nil {
		log.Warn("search run failed",
			zap.Int("permutation", permIdx),
			zap.Int("combination", combIdx),
			zap.Stringer("strategy", dir),
			zap.Error(err))
		return
	}
	if result.TrimInfluenced {
		c.Job.MarkTrimInfluenced()
	}
	if result.Partial {
		// A cancelled run packed only a prefix of the tiles; its candidates
		// would outrank complete ones on the no-fit count.
		log.Debug("search run cancelled, result discarded",
			zap.Int("permutation", permIdx),
			zap.Int("combination", combIdx),
			zap.Stringer("strategy", dir))
		return
	}
	survivors := c.Job.MergeResults(material, dir, result.Candidates)
	log.Debug("search run merged",
		zap.Int("permutation", permIdx),
		zap.Int("combination", combIdx),
		zap.Stringer("strategy", dir),
		zap.Int("candidates", len(result.Candidates)),
		zap.Int("survivors", survivors))
}
