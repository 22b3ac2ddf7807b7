package model

// OrientationPreference restricts which cut-direction strategies a job may
// run. The numeric values are part of the request contract.
type OrientationPreference int

const (
	PreferBoth       OrientationPreference = 0
	PreferHorizontal OrientationPreference = 1
	PreferVertical   OrientationPreference = 2
)

func (o OrientationPreference) String() string {
	switch o {
	case PreferHorizontal:
		return "Horizontal"
	case PreferVertical:
		return "Vertical"
	default:
		return "Both"
	}
}

// CutDirection is the split bias a single placement-search run operates
// under. Both tries horizontal-first and vertical-first variants at every
// oversized leaf; the other two commit to one order.
type CutDirection int

const (
	CutBoth CutDirection = iota
	CutHorizontalFirst
	CutVerticalFirst
)

func (c CutDirection) String() string {
	switch c {
	case CutHorizontalFirst:
		return "HorizontalFirst"
	case CutVerticalFirst:
		return "VerticalFirst"
	default:
		return "Both"
	}
}

// OptimizationPriority selects the leading key of the candidate
// comparator: favor raw material yield or fewer, simpler cuts.
type OptimizationPriority int

const (
	PriorityLeastWastedArea OptimizationPriority = iota
	PriorityLeastCuts
)

func (p OptimizationPriority) String() string {
	if p == PriorityLeastCuts {
		return "LeastCuts"
	}
	return "LeastWastedArea"
}

// Configuration holds the per-request optimizer settings. Dimension-like
// fields (CutThickness, MinTrimDimension) are decimal values in the
// request's unit and are scaled to integers together with the panel
// dimensions before a job starts.
type Configuration struct {
	CutThickness       float64               `json:"cut_thickness"`        // Blade kerf
	MinTrimDimension   float64               `json:"min_trim_dimension"`   // Smallest usable leftover strip
	OrientationPref    OrientationPreference `json:"orientation_pref"`     // Allowed cut-direction strategies
	ConsiderGrain      bool                  `json:"consider_grain"`       // Honor tile grain constraints
	OptimizationFactor float64               `json:"optimization_factor"`  // 0.0..1.0, scales the search beam width
	Priority           OptimizationPriority  `json:"optimization_priority"`
	Performance        PerformanceThresholds `json:"performance"`
}

// PerformanceThresholds bounds the combinatorial search. The defaults
// reproduce the tuning the optimizer shipped with; they are configuration,
// not algorithm.
type PerformanceThresholds struct {
	MaxPermutationGroups  int `json:"max_permutation_groups"`  // Largest-N tile groups to permute fully
	MaxStockIterations    int `json:"max_stock_iterations"`    // Stock combinations tried per permutation
	RankingWindow         int `json:"ranking_window"`          // Top-N survivors that bump a strategy ranking
	LargeJobTileThreshold int `json:"large_job_tile_threshold"` // Tile count past which the beam narrows
	WorkerCount           int `json:"worker_count"`            // Parallel search runs
	MaxPanels             int `json:"max_panels"`              // Submission hard cap on tile units
	MaxStockPanels        int `json:"max_stock_panels"`        // Submission hard cap on stock units
	MaxClientJobs         int `json:"max_client_jobs"`         // Concurrent jobs per client
}

func DefaultPerformanceThresholds() PerformanceThresholds {
	return PerformanceThresholds{
		MaxPermutationGroups:  7,
		MaxStockIterations:    1000,
		RankingWindow:         5,
		LargeJobTileThreshold: 100,
		WorkerCount:           4,
		MaxPanels:             5000,
		MaxStockPanels:        5000,
		MaxClientJobs:         2,
	}
}

func DefaultConfiguration() Configuration {
	return Configuration{
		CutThickness:       3.2,
		MinTrimDimension:   0,
		OrientationPref:    PreferBoth,
		ConsiderGrain:      false,
		OptimizationFactor: 0.5,
		Priority:           PriorityLeastWastedArea,
		Performance:        DefaultPerformanceThresholds(),
	}
}
