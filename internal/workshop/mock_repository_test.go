package workshop

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	mu     sync.Mutex
	jobs   map[uuid.UUID]*Job
	events map[uuid.UUID][]StatusEvent

	lastStaleAge time.Duration

	// Error injection
	txError     error
	createError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		jobs:   make(map[uuid.UUID]*Job),
		events: make(map[uuid.UUID][]StatusEvent),
	}
}

func (m *mockRepository) seed(job Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = &job
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, m)
}

func (m *mockRepository) Create(ctx context.Context, job Job) error {
	if m.createError != nil {
		return m.createError
	}
	m.seed(job)
	return nil
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *mockRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*Job, error) {
	return m.Get(ctx, id)
}

func (m *mockRepository) List(ctx context.Context, req ListJobsRequest) ([]Job, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Job{}
	for _, job := range m.jobs {
		if req.Status != nil && job.Status != *req.Status {
			continue
		}
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	fields := map[string]*string{
		"customer_name": &job.CustomerName, "contact_name": &job.ContactName,
		"contact_email": &job.ContactEmail, "contact_phone": &job.ContactPhone,
		"machine_make": &job.MachineMake, "machine_model": &job.MachineModel,
		"serial_number": &job.SerialNumber, "fault_description": &job.FaultDescription,
		"location_of_repair": &job.LocationOfRepair, "site_location": &job.SiteLocation,
		"quote_or_repair": &job.QuoteOrRepair, "action": &job.Action,
	}
	for k, v := range updates {
		if dst, ok := fields[k]; ok {
			*dst = v.(string)
		}
	}
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status != from {
		return ErrConflict
	}
	job.Status = to
	return nil
}

func (m *mockRepository) SetOrder(ctx context.Context, id uuid.UUID, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.OrderID != nil {
		return ErrConflict
	}
	job.OrderID = &orderID
	return nil
}

func (m *mockRepository) InsertEvent(ctx context.Context, ev StatusEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.JobID] = append(m.events[ev.JobID], ev)
	return nil
}

func (m *mockRepository) ListEvents(ctx context.Context, jobID uuid.UUID) ([]StatusEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StatusEvent(nil), m.events[jobID]...), nil
}

func (m *mockRepository) ListStale(ctx context.Context, statuses []Status, olderThan time.Duration) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastStaleAge = olderThan
	cutoff := time.Now().Add(-olderThan)
	want := map[Status]bool{}
	for _, s := range statuses {
		want[s] = true
	}
	out := []Job{}
	for _, job := range m.jobs {
		if want[job.Status] && job.UpdatedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}
