package etl

import (
	"context"
	"errors"
	"sync"
	"time"

	"bankscap/internal/domain"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultRunInterval = time.Hour

var ErrSchedulerStopped = errors.New("scheduler is not running")

// RunStatus describes the last finished scheduled run.
type RunStatus struct {
	ExecID     string       `json:"exec_id"`
	State      domain.State `json:"state"`
	Rows       int          `json:"rows"`
	Error      string       `json:"error,omitempty"`
	FinishedAt time.Time    `json:"finished_at"`
}

// PipelineFactory builds a fresh pipeline for every execution.
type PipelineFactory func() *Pipeline

// Scheduler re-runs the pipeline on a fixed interval. Runs never overlap.
type Scheduler struct {
	newPipeline PipelineFactory
	interval    time.Duration
	// -----
	sched gocron.Scheduler
	job   gocron.Job

	mu   sync.RWMutex
	last *RunStatus
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()

	job, err := scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.runOnce),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.job = job
	s.mu.Unlock()

	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	execID := uuid.NewString()
	log := logrus.WithField("execID", execID)
	log.Info("Starting scheduled ETL run")

	p := s.newPipeline()
	err := p.Run(ctx)

	status := RunStatus{ExecID: execID, State: p.State(), FinishedAt: time.Now().UTC()}
	if t := p.Table(); t != nil {
		status.Rows = t.Len()
	}
	if err != nil {
		status.Error = err.Error()
		log.WithError(err).Error("Scheduled ETL run failed")
	} else {
		log.WithField("rows", status.Rows).Info("Scheduled ETL run finished")
	}

	s.mu.Lock()
	s.last = &status
	s.mu.Unlock()
}

// LastRun reports false until the first run has finished.
func (s *Scheduler) LastRun() (RunStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return RunStatus{}, false
	}
	return *s.last, true
}

// Trigger asks for an extra run now. A run already in progress is not
// interrupted; the extra one is rescheduled.
func (s *Scheduler) Trigger() error {
	s.mu.RLock()
	job := s.job
	s.mu.RUnlock()
	if job == nil {
		return ErrSchedulerStopped
	}
	return job.RunNow()
}

func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	sched := s.sched
	s.sched = nil
	s.job = nil
	s.mu.Unlock()

	if sched == nil {
		return nil
	}
	return sched.Shutdown()
}

func NewScheduler(newPipeline PipelineFactory, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultRunInterval
	}
	return &Scheduler{newPipeline: newPipeline, interval: interval}
}
