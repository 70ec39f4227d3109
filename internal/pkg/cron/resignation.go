package cron

import (
	"context"
	"log/slog"
	"time"
)

type ResignationSweeper interface {
	SweepResignations(ctx context.Context) (int, error)
}

// ResignationJobs processes accepted resignations whose effective date has come.
type ResignationJobs struct {
	sweeper  ResignationSweeper
	interval time.Duration
}

func NewResignationJobs(sweeper ResignationSweeper, interval time.Duration) *ResignationJobs {
	return &ResignationJobs{sweeper: sweeper, interval: interval}
}

func (j *ResignationJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("resignation_sweep", j.interval, j.Sweep)
}

func (j *ResignationJobs) Sweep(ctx context.Context) error {
	processed, err := j.sweeper.SweepResignations(ctx)
	if processed > 0 {
		slog.Info("resignations processed", "count", processed)
	}
	return err
}
