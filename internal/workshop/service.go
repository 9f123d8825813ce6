package workshop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Notifier publishes status transitions to background processing.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, ev StatusEvent) error
}

// TransitionRecorder counts lifecycle transitions.
type TransitionRecorder interface {
	RecordTransition(from, to string)
}

// TemplateRenderer renders a named template to a string.
type TemplateRenderer interface {
	RenderString(name string, data any) (string, error)
}

// PDFRenderer converts HTML into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// ServiceConfig carries the optional collaborators of Service.
type ServiceConfig struct {
	Notifier  Notifier
	Metrics   TransitionRecorder
	Templates TemplateRenderer
	PDF       PDFRenderer
	Logger    *slog.Logger
	Now       func() time.Time
}

// Service implements workshop job operations.
type Service struct {
	repo      Repository
	validate  *validator.Validate
	notifier  Notifier
	metrics   TransitionRecorder
	templates TemplateRenderer
	pdf       PDFRenderer
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs the workshop service.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:      repo,
		validate:  validator.New(),
		notifier:  cfg.Notifier,
		metrics:   cfg.Metrics,
		templates: cfg.Templates,
		pdf:       cfg.PDF,
		logger:    logger,
		now:       now,
	}
}

// Create stores a new job in status new.
func (s *Service) Create(ctx context.Context, req CreateJobRequest, actor string) (*JobWithStatus, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	now := s.now().UTC()
	job := Job{
		ID:               uuid.New(),
		CustomerName:     req.CustomerName,
		ContactName:      req.ContactName,
		ContactEmail:     req.ContactEmail,
		ContactPhone:     req.ContactPhone,
		MachineMake:      req.MachineMake,
		MachineModel:     req.MachineModel,
		SerialNumber:     req.SerialNumber,
		FaultDescription: req.FaultDescription,
		LocationOfRepair: req.LocationOfRepair,
		SiteLocation:     req.SiteLocation,
		QuoteOrRepair:    req.QuoteOrRepair,
		Action:           req.Action,
		CustomerGroupID:  req.CustomerGroupID,
		Status:           StatusNew,
		CreatedBy:        actor,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create workshop job: %w", err)
	}
	return &JobWithStatus{Job: job, Evaluation: Evaluate(job.StatusContext())}, nil
}

// Get loads a job with its evaluation and history.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*JobWithStatus, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	return &JobWithStatus{Job: *job, Evaluation: Evaluate(job.StatusContext()), History: history}, nil
}

// List returns a page of jobs.
func (s *Service) List(ctx context.Context, req ListJobsRequest) ([]JobWithStatus, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	jobs, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	out := make([]JobWithStatus, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, JobWithStatus{Job: job, Evaluation: Evaluate(job.StatusContext())})
	}
	return out, total, nil
}

// Evaluate returns the status result of a stored job.
func (s *Service) Evaluate(ctx context.Context, id uuid.UUID) (StatusResult, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return StatusResult{}, err
	}
	return Evaluate(job.StatusContext()), nil
}

// Update edits form sections the job's status leaves editable.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateJobRequest) (*JobWithStatus, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		job, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		res := Evaluate(job.StatusContext())
		switch {
		case req.touchesMachine() && !res.CanEditMachineInfo:
			return fmt.Errorf("%w: machine info", ErrLocked)
		case req.touchesUser() && !res.CanEditUserInfo:
			return fmt.Errorf("%w: user info", ErrLocked)
		case req.touchesContacts() && !res.CanEditContacts:
			return fmt.Errorf("%w: contacts", ErrLocked)
		}
		return tx.Update(ctx, id, req.columns())
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Advance moves the job to its next lifecycle status and records the event.
func (s *Service) Advance(ctx context.Context, id uuid.UUID, actor string) (*JobWithStatus, error) {
	var event StatusEvent
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		job, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		to, err := Next(job.Status, job.QuoteOrRepair)
		if err != nil {
			return err
		}
		if err := tx.UpdateStatus(ctx, id, job.Status, to); err != nil {
			return err
		}
		event = StatusEvent{
			ID:        uuid.New(),
			JobID:     id,
			From:      job.Status,
			To:        to,
			ChangedBy: actor,
			ChangedAt: s.now().UTC(),
		}
		return tx.InsertEvent(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTransition(string(event.From), string(event.To))
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyStatusChange(ctx, event); err != nil {
			s.logger.Warn("notify status change", slog.String("job_id", id.String()), slog.Any("error", err))
		}
	}
	s.logger.Info("workshop job advanced",
		slog.String("job_id", id.String()),
		slog.String("from", string(event.From)),
		slog.String("to", string(event.To)),
	)
	return s.Get(ctx, id)
}

// AttachOrder links a sales order to the job when order creation is allowed.
func (s *Service) AttachOrder(ctx context.Context, id uuid.UUID, req AttachOrderRequest) (*JobWithStatus, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		job, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !Evaluate(job.StatusContext()).CanCreateOrder {
			return ErrOrderNotAllowed
		}
		return tx.SetOrder(ctx, id, req.OrderID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// WaitingStatuses are the statuses in which a job waits on the customer or
// a supplier rather than the workshop.
var WaitingStatuses = []Status{StatusQuoted, StatusWaitingApprovalPO, StatusWaitingForParts}

// Stale lists jobs parked in waiting states for longer than the given age.
func (s *Service) Stale(ctx context.Context, olderThan time.Duration) ([]Job, error) {
	if olderThan <= 0 {
		return nil, fmt.Errorf("%w: stale age must be positive", ErrValidation)
	}
	return s.repo.ListStale(ctx, WaitingStatuses, olderThan)
}

func (r UpdateJobRequest) columns() map[string]any {
	cols := map[string]any{}
	set := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	set("machine_make", r.MachineMake)
	set("machine_model", r.MachineModel)
	set("serial_number", r.SerialNumber)
	set("fault_description", r.FaultDescription)
	set("customer_name", r.CustomerName)
	set("location_of_repair", r.LocationOfRepair)
	set("site_location", r.SiteLocation)
	set("quote_or_repair", r.QuoteOrRepair)
	set("action", r.Action)
	set("contact_name", r.ContactName)
	set("contact_email", r.ContactEmail)
	set("contact_phone", r.ContactPhone)
	return cols
}
