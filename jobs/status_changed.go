package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/cleanline/opsdesk/internal/jobs"
	"github.com/cleanline/opsdesk/internal/workshop"
)

// DocketRenderer produces the PDF docket of a job.
type DocketRenderer interface {
	DocketPDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// StatusChangedJob follows up a workshop transition. Jobs reaching
// docket_ready get their docket PDF archived to StorageDir.
type StatusChangedJob struct {
	Dockets    DocketRenderer
	StorageDir string
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// Handle processes TaskWorkshopStatusChanged tasks.
func (j *StatusChangedJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil {
		return errors.New("status changed: handler not configured")
	}
	var payload StatusChangedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.JobID == uuid.Nil {
		return asynq.SkipRetry
	}
	tracker := j.Metrics.Track(TaskWorkshopStatusChanged)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(
		slog.String("job_id", payload.JobID.String()),
		slog.String("from", payload.From),
		slog.String("to", payload.To),
		slog.String("changed_by", payload.ChangedBy),
	)
	logger.Info("workshop status changed")

	if workshop.Status(payload.To) != workshop.StatusDocketReady || j.Dockets == nil || j.StorageDir == "" {
		return nil
	}
	path, err := j.archiveDocket(ctx, payload.JobID)
	if errors.Is(err, workshop.ErrDocketUnavailable) {
		logger.Warn("docket rendering unavailable, skipping archive")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("docket archived", slog.String("path", path))
	return nil
}

func (j *StatusChangedJob) archiveDocket(ctx context.Context, id uuid.UUID) (string, error) {
	pdf, err := j.Dockets.DocketPDF(ctx, id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(j.StorageDir, 0o755); err != nil {
		return "", fmt.Errorf("create docket dir: %w", err)
	}
	path := filepath.Join(j.StorageDir, "docket-"+id.String()+".pdf")
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", fmt.Errorf("write docket: %w", err)
	}
	return path, nil
}

func (j *StatusChangedJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
