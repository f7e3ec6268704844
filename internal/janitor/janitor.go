// Package janitor periodically removes expired credentials.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const runTimeout = 2 * time.Minute

// Task is one cleanup step; it reports how many entries it removed.
type Task struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

type Janitor struct {
	cron   *cron.Cron
	tasks  []Task
	logger *slog.Logger
}

// New schedules tasks on schedule, a standard five-field cron expression or a descriptor like "@every 10m".
// Overlapping runs are skipped.
func New(schedule string, logger *slog.Logger, tasks ...Task) (*Janitor, error) {
	j := &Janitor{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		tasks:  tasks,
		logger: logger,
	}
	if _, err := j.cron.AddFunc(schedule, j.runScheduled); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.logger.Info("janitor started", "tasks", len(j.tasks))
	j.cron.Start()
}

// Stop waits for a running pass to finish or ctx to expire.
func (j *Janitor) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (j *Janitor) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	j.RunOnce(ctx)
}

// RunOnce runs every task; a failing task does not stop the others.
func (j *Janitor) RunOnce(ctx context.Context) {
	for _, task := range j.tasks {
		start := time.Now()
		n, err := task.Run(ctx)
		if err != nil {
			j.logger.ErrorContext(ctx, "janitor task failed", "task", task.Name, "error", err)
			continue
		}
		if n > 0 {
			j.logger.InfoContext(ctx, "janitor task removed entries", "task", task.Name, "removed", n, "duration", time.Since(start))
		}
	}
}
