package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ExportEnqueuer queues a catalog snapshot into dir.
type ExportEnqueuer interface {
	EnqueueExport(ctx context.Context, dir string) (string, error)
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// NextRunAfter returns the first activation of schedule after t.
func NextRunAfter(schedule string, t time.Time) (time.Time, error) {
	sched, err := scheduleParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(t), nil
}

// ExportScheduler periodically enqueues catalog export tasks.
type ExportScheduler struct {
	queue    ExportEnqueuer
	schedule string
	dir      string
	logger   *zap.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewExportScheduler(queue ExportEnqueuer, schedule, dir string, logger *zap.Logger) *ExportScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportScheduler{
		queue:    queue,
		schedule: schedule,
		dir:      dir,
		logger:   logger.Named("export_scheduler"),
		cron:     cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start registers the export job and starts the cron loop. The scheduler
// stops itself when ctx is cancelled.
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.dir == "" {
		return fmt.Errorf("export directory not configured")
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueue(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunAfter(s.schedule, time.Now())
	s.logger.Info("export scheduler started",
		zap.String("schedule", s.schedule),
		zap.String("dir", s.dir),
		zap.Time("next_run", next))

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *ExportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	s.logger.Info("export scheduler stopped")
}

// RunNow enqueues an export immediately, outside the schedule.
func (s *ExportScheduler) RunNow(ctx context.Context) (string, error) {
	return s.queue.EnqueueExport(ctx, s.dir)
}

func (s *ExportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next export is due, or nil when stopped.
func (s *ExportScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	return &t
}

func (s *ExportScheduler) enqueue(ctx context.Context) {
	id, err := s.queue.EnqueueExport(ctx, s.dir)
	if err != nil {
		s.logger.Error("failed to enqueue scheduled export", zap.Error(err))
		return
	}
	s.logger.Info("scheduled export enqueued", zap.String("task_id", id))
}
