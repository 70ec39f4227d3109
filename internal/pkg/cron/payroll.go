package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/payroll"
	payrollsvc "github.com/joaquinkuster/rrhh-sub000/internal/service/payroll"
)

type BatchGenerator interface {
	GenerateBatch(ctx context.Context, req payroll.PreviewBatchRequest) (payrollsvc.CommitResult, error)
}

// PayrollJobs liquidates the current period once a month on the configured day.
type PayrollJobs struct {
	generator BatchGenerator
	day       int
	interval  time.Duration
	now       func() time.Time
}

func NewPayrollJobs(generator BatchGenerator, day int, interval time.Duration) *PayrollJobs {
	return &PayrollJobs{generator: generator, day: day, interval: interval, now: time.Now}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("payroll_batch", j.interval, j.GenerateMonthly)
}

// GenerateMonthly is a no-op except on the batch day. Running it twice on that
// day only skips the contracts already liquidated.
func (j *PayrollJobs) GenerateMonthly(ctx context.Context) error {
	today := j.now()
	if today.Day() != j.day {
		return nil
	}

	period := payroll.PeriodOf(today).String()
	slog.Info("starting payroll batch", "period", period)

	result, err := j.generator.GenerateBatch(ctx, payroll.PreviewBatchRequest{Period: period})
	if err != nil {
		slog.Error("payroll batch finished with failures",
			"period", period,
			"created", len(result.Created),
			"skipped", result.Skipped,
			"error", err,
		)
		return err
	}
	slog.Info("payroll batch finished",
		"period", period,
		"created", len(result.Created),
		"skipped", result.Skipped,
	)
	return nil
}
