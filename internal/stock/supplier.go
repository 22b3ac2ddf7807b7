package stock

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// pollInterval is how long Get waits between checks for a not-yet
	// generated index.
	pollInterval = 20 * time.Millisecond
	// aheadWindow is how far the producer may run past the highest index
	// any consumer has asked for before throttling.
	aheadWindow = 200
	// enoughBuffered is the buffer size past which the producer stops
	// once the job already holds a solution that fits every tile. Further
	// combinations would only grow the stock pool.
	enoughBuffered = 500
)

// JobState is the job-side view the supplier consults to decide when to
// keep producing. The status may change between any two calls.
type JobState interface {
	IsRunning() bool
	HasAllFitSolution(material string) bool
}

// Supplier caches generator output on a background goroutine and serves
// it by index to concurrently running search runs.
type Supplier struct {
	gen      *Generator
	job      JobState
	material string
	log      *zap.Logger

	mu        sync.Mutex
	combos    []Combination
	maxServed int
	finished  bool
	stopped   bool

	wg sync.WaitGroup
}

func NewSupplier(gen *Generator, job JobState, material string, log *zap.Logger) *Supplier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Supplier{gen: gen, job: job, material: material, log: log, maxServed: -1}
}

// Start launches the producer goroutine.
func (s *Supplier) Start() {
	s.wg.Add(1)
	go s.produce()
}

// Stop asks the producer to quit and blocks until it has. Safe to call
// while consumers are still draining; Get keeps serving the cache.
func (s *Supplier) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Supplier) produce() {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.finished = true
		s.mu.Unlock()
	}()

	produced := 0
	for {
		s.mu.Lock()
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return
		}
		if !s.job.IsRunning() {
			s.log.Debug("supplier stopping, job no longer running",
				zap.String("material", s.material), zap.Int("produced", produced))
			return
		}

		s.mu.Lock()
		buffered := len(s.combos)
		served := s.maxServed
		s.mu.Unlock()

		if buffered >= enoughBuffered && s.job.HasAllFitSolution(s.material) {
			s.log.Debug("supplier stopping, all-fit solution exists",
				zap.String("material", s.material), zap.Int("produced", produced))
			return
		}
		if buffered > served+aheadWindow {
			time.Sleep(pollInterval)
			continue
		}

		comb, ok := s.gen.Next()
		if !ok {
			s.log.Debug("supplier exhausted generator",
				zap.String("material", s.material), zap.Int("produced", produced))
			return
		}
		s.mu.Lock()
		s.combos = append(s.combos, comb)
		s.mu.Unlock()
		produced++
	}
}

// Get blocks until the combination at index exists, returning ok=false
// once the producer has finished without ever reaching that index.
func (s *Supplier) Get(index int) (Combination, bool) {
	for {
		s.mu.Lock()
		if index > s.maxServed {
			s.maxServed = index
		}
		if index < len(s.combos) {
			c := s.combos[index]
			s.mu.Unlock()
			return c, true
		}
		finished := s.finished
		s.mu.Unlock()
		if finished {
			return Combination{}, false
		}
		time.Sleep(pollInterval)
	}
}
