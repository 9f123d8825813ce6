package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/cleanline/opsdesk/internal/jobs"
	"github.com/cleanline/opsdesk/internal/pricing"
	"github.com/cleanline/opsdesk/internal/workshop"
)

// StaleLister lists workshop jobs waiting longer than a given age.
type StaleLister interface {
	Stale(ctx context.Context, olderThan time.Duration) ([]workshop.Job, error)
}

// OrderPricer prices a backend order.
type OrderPricer interface {
	Order(ctx context.Context, orderID string, customerGroupID int) (pricing.Quote, error)
}

// StaleScanJob reports jobs parked in waiting statuses together with the
// value of their attached orders.
type StaleScanJob struct {
	Jobs       StaleLister
	Pricer     OrderPricer
	DefaultAge time.Duration
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
	// Parallel bounds concurrent order lookups.
	Parallel int
}

// StaleReport is one stale job with its order value when known.
type StaleReport struct {
	Job      workshop.Job
	Waiting  time.Duration
	OrderInc float64
	Priced   bool
}

// Handle processes TaskWorkshopStaleScan tasks.
func (j *StaleScanJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Jobs == nil {
		return errors.New("stale scan: handler not configured")
	}
	var payload StaleScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.OlderThan <= 0 {
		payload.OlderThan = j.DefaultAge
	}
	if payload.OlderThan <= 0 {
		payload.OlderThan = 72 * time.Hour
	}

	tracker := j.Metrics.Track(TaskWorkshopStaleScan)
	defer func() {
		err = tracker.End(err)
	}()

	start := time.Now()
	reports, err := j.Scan(ctx, payload.OlderThan, start)
	if err != nil {
		j.logger().Error("stale scan failed", slog.Any("error", err))
		return err
	}

	counts := make(map[string]int)
	for _, r := range reports {
		counts[string(r.Job.Status)]++
		attrs := []any{
			slog.String("job_id", r.Job.ID.String()),
			slog.String("customer", r.Job.CustomerName),
			slog.String("status", string(r.Job.Status)),
			slog.Duration("waiting", r.Waiting),
		}
		if r.Priced {
			attrs = append(attrs, slog.String("order_value", pricing.FormatMoney(r.OrderInc)))
		}
		j.logger().Warn("stale workshop job", attrs...)
	}
	statuses := make([]string, 0, len(workshop.WaitingStatuses))
	for _, s := range workshop.WaitingStatuses {
		statuses = append(statuses, string(s))
	}
	j.Metrics.SetStaleJobs(statuses, counts)

	j.logger().Info("completed stale scan",
		slog.Int("stale", len(reports)),
		slog.Duration("older_than", payload.OlderThan),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// Scan lists stale jobs and prices attached orders concurrently with each
// job's customer group. Pricing failures are logged and leave the report
// unpriced.
func (j *StaleScanJob) Scan(ctx context.Context, olderThan time.Duration, now time.Time) ([]StaleReport, error) {
	staleJobs, err := j.Jobs.Stale(ctx, olderThan)
	if err != nil {
		return nil, err
	}
	reports := make([]StaleReport, len(staleJobs))
	for i, job := range staleJobs {
		reports[i] = StaleReport{Job: job, Waiting: now.Sub(job.UpdatedAt)}
	}
	if j.Pricer == nil {
		return reports, nil
	}

	limit := j.Parallel
	if limit <= 0 {
		limit = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range reports {
		orderID := reports[i].Job.OrderID
		if orderID == nil || *orderID == "" {
			continue
		}
		id, group := *orderID, reports[i].Job.CustomerGroupID
		g.Go(func() error {
			quote, err := j.Pricer.Order(gctx, id, group)
			if err != nil {
				j.logger().Warn("price stale job order", slog.String("order_id", id), slog.Any("error", err))
				return nil
			}
			reports[i].OrderInc = quote.Summary.TotalIncGST
			reports[i].Priced = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (j *StaleScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
