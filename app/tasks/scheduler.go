package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/kent-tracker/app/database"
)

var ErrRunQueued = errors.New("a run is already queued")

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs the pipeline at start-up, every interval and on demand.
// A single worker drains the queue, so runs never overlap.
type Scheduler struct {
	pipeline  *Pipeline
	interval  time.Duration
	timeout   time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface

	mu      sync.RWMutex
	lastRun *database.Run
}

func NewScheduler(pipeline *Pipeline, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		pipeline:  pipeline,
		interval:  interval,
		timeout:   30 * time.Minute,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 1),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueRun("startup")

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueRun("interval")
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Trigger queues an on-demand run.
func (s *Scheduler) Trigger() error {
	return s.EnqueueTask(NewRunTask(s.pipeline))
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return ErrRunQueued
	}
}

func (s *Scheduler) LastRun() *database.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

func (s *Scheduler) enqueueRun(trigger string) {
	if err := s.Trigger(); err != nil {
		slog.Debug("Run not enqueued", "trigger", trigger, "error", err)
		return
	}
	slog.Debug("Run enqueued", "trigger", trigger)
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "error", err)
		return
	}

	if run, ok := task.(*RunTask); ok && run.Result != nil {
		s.mu.Lock()
		s.lastRun = run.Result
		s.mu.Unlock()
	}
}
