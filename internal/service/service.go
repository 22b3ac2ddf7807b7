// Package service is the core-facing surface of the optimizer: it
// validates calculation requests, admits them as jobs, runs the
// coordinator, and assembles best-so-far solutions for polling clients.
package service

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/piwi3910/CutFlow/internal/job"
	"github.com/piwi3910/CutFlow/internal/model"
	"github.com/piwi3910/CutFlow/internal/optimizer"
)

// CalculationRequest is a full optimization request as submitted.
type CalculationRequest struct {
	Panels        []optimizer.PanelSpec `json:"panels"`
	StockPanels   []optimizer.StockSpec `json:"stock_panels"`
	Configuration model.Configuration   `json:"configuration"`
	Client        job.ClientInfo        `json:"client"`
}

// Service owns the in-memory task registry. Background eviction of old
// tasks is an external concern; the registry here only keeps what a
// running process needs.
type Service struct {
	log *zap.Logger

	mu        sync.Mutex
	tasks     map[string]*job.Job
	accepting bool
}

func New(log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{log: log, tasks: make(map[string]*job.Job), accepting: true}
}

// Shutdown stops admitting new work; submissions return
// ServerUnavailable.
func (s *Service) Shutdown() {
	s.mu.Lock()
	s.accepting = false
	s.mu.Unlock()
}

// positiveDecimal reports whether the string parses to a value > 0.
func positiveDecimal(v string) bool {
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && f > 0
}

// validate runs the synchronous submission checks. Invalid requests are
// rejected with a status code and no job is created.
func (s *Service) validate(req *CalculationRequest) model.StatusCode {
	perf := req.Configuration.Performance

	tileUnits := 0
	for _, p := range req.Panels {
		if p.Count <= 0 || !positiveDecimal(p.Width) || !positiveDecimal(p.Height) {
			return model.StatusInvalidTiles
		}
		tileUnits += p.Count
	}
	if tileUnits == 0 {
		return model.StatusInvalidTiles
	}
	if req.Configuration.OptimizationFactor < 0 || req.Configuration.OptimizationFactor > 1 {
		return model.StatusInvalidTiles
	}

	stockUnits := 0
	for _, p := range req.StockPanels {
		if p.Count <= 0 || !positiveDecimal(p.Width) || !positiveDecimal(p.Height) {
			return model.StatusInvalidStockTiles
		}
		stockUnits += p.Count
	}
	if stockUnits == 0 {
		return model.StatusInvalidStockTiles
	}

	if perf.MaxPanels > 0 && tileUnits > perf.MaxPanels {
		return model.StatusTooManyPanels
	}
	if perf.MaxStockPanels > 0 && stockUnits > perf.MaxStockPanels {
		return model.StatusTooManyStockPanels
	}
	return model.StatusOk
}

// clientJobCountLocked counts queued or running jobs for a client.
func (s *Service) clientJobCountLocked(clientID string) int {
	count := 0
	for _, j := range s.tasks {
		if j.Client.ID != clientID {
			continue
		}
		switch j.Status() {
		case job.StatusQueued, job.StatusRunning:
			count++
		}
	}
	return count
}

// Submit validates the request and, when accepted, creates and starts a
// job. The returned status code is the synchronous verdict; the task id
// is empty unless the code is Ok.
func (s *Service) Submit(req *CalculationRequest) (string, model.StatusCode) {
	s.mu.Lock()
	accepting := s.accepting
	s.mu.Unlock()
	if !accepting {
		return "", model.StatusServerUnavailable
	}
	if code := s.validate(req); code != model.StatusOk {
		return "", code
	}

	s.mu.Lock()
	if limit := req.Configuration.Performance.MaxClientJobs; limit > 0 &&
		s.clientJobCountLocked(req.Client.ID) >= limit {
		s.mu.Unlock()
		return "", model.StatusTaskAlreadyRunning
	}
	taskID := uuid.New().String()
	j := job.New(taskID, req.Configuration, req.Client, s.log)
	s.tasks[taskID] = j
	s.mu.Unlock()

	if err := j.Queue(); err != nil {
		// A fresh job can always queue; anything else is a programming error.
		s.log.Error("queueing fresh job failed", zap.String("task", taskID), zap.Error(err))
		return "", model.StatusServerUnavailable
	}

	go s.run(j, req)
	return taskID, model.StatusOk
}

// run drives one accepted job to a terminal state.
func (s *Service) run(j *job.Job, req *CalculationRequest) {
	if err := j.SetRunning(); err != nil {
		s.log.Warn("job could not start", zap.String("task", j.ID), zap.Error(err))
		return
	}
	coord := optimizer.NewCoordinator(j, s.log)
	if err := coord.Run(req.Panels, req.StockPanels); err != nil {
		s.log.Warn("job ended with error",
			zap.String("task", j.ID),
			zap.String("status", j.Status().String()),
			zap.Error(err))
		return
	}
	s.log.Info("job finished",
		zap.String("task", j.ID),
		zap.Duration("elapsed", j.Elapsed()))
}

func (s *Service) task(taskID string) (*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("unknown task %s", taskID)
	}
	return j, nil
}

// Status reports the job's state and best-so-far solution, even
// mid-search. Polling stamps the last-queried time the external monitor
// watches.
func (s *Service) Status(taskID string) (*TaskStatus, error) {
	j, err := s.task(taskID)
	if err != nil {
		return nil, err
	}
	j.TouchQueried()
	return buildTaskStatus(j), nil
}

// Stop requests a cooperative stop.
func (s *Service) Stop(taskID string) error {
	j, err := s.task(taskID)
	if err != nil {
		return err
	}
	return j.Stop()
}

// Terminate force-ends a job.
func (s *Service) Terminate(taskID string) error {
	j, err := s.task(taskID)
	if err != nil {
		return err
	}
	return j.Terminate()
}

// TerminateError marks a job failed from outside.
func (s *Service) TerminateError(taskID string) error {
	j, err := s.task(taskID)
	if err != nil {
		return err
	}
	return j.TerminateError()
}
