package workshop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []StatusEvent
	err    error
}

func (n *recordingNotifier) NotifyStatusChange(ctx context.Context, ev StatusEvent) error {
	n.events = append(n.events, ev)
	return n.err
}

type recordingMetrics struct {
	transitions []string
}

func (m *recordingMetrics) RecordTransition(from, to string) {
	m.transitions = append(m.transitions, from+"->"+to)
}

type stubTemplates struct {
	lastName string
	lastData any
}

func (s *stubTemplates) RenderString(name string, data any) (string, error) {
	s.lastName = name
	s.lastData = data
	return "<html>docket</html>", nil
}

type stubPDF struct {
	html string
}

func (s *stubPDF) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	s.html = html
	return []byte("%PDF-1.7"), nil
}

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepository) (*Service, *recordingNotifier, *recordingMetrics) {
	notifier := &recordingNotifier{}
	metrics := &recordingMetrics{}
	svc := NewService(repo, ServiceConfig{
		Notifier: notifier,
		Metrics:  metrics,
		Now:      func() time.Time { return fixedNow },
	})
	return svc, notifier, metrics
}

func validCreateRequest() CreateJobRequest {
	return CreateJobRequest{
		CustomerName:     "Harbour Cafe",
		ContactName:      "Sam Lee",
		ContactEmail:     "sam@harbourcafe.example",
		MachineMake:      "Nilfisk",
		MachineModel:     "SC351",
		SerialNumber:     "NF-22931",
		FaultDescription: "Brush motor not spinning",
		LocationOfRepair: LocationWorkshop,
		QuoteOrRepair:    ModeQuote,
		Action:           ActionPickup,
		CustomerGroupID:  2,
	}
}

func seedJob(repo *mockRepository, status Status) Job {
	job := Job{
		ID:               uuid.New(),
		CustomerName:     "Harbour Cafe",
		LocationOfRepair: LocationWorkshop,
		QuoteOrRepair:    ModeQuote,
		Action:           ActionPickup,
		Status:           status,
		CreatedAt:        fixedNow,
		UpdatedAt:        fixedNow,
	}
	repo.seed(job)
	return job
}

func TestServiceCreate(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)

	job, err := svc.Create(context.Background(), validCreateRequest(), "alex")
	require.NoError(t, err)
	assert.Equal(t, StatusNew, job.Status)
	assert.Equal(t, "alex", job.CreatedBy)
	assert.Equal(t, fixedNow, job.CreatedAt)
	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.True(t, job.Evaluation.CanPickup)
	assert.Equal(t, "Schedule Pickup", job.Evaluation.ButtonText)

	stored, err := repo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nilfisk", stored.MachineMake)
	assert.Equal(t, 2, stored.CustomerGroupID)
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(newMockRepository())

	req := validCreateRequest()
	req.CustomerName = ""
	_, err := svc.Create(context.Background(), req, "alex")
	assert.ErrorIs(t, err, ErrValidation)

	req = validCreateRequest()
	req.LocationOfRepair = "Garage"
	_, err = svc.Create(context.Background(), req, "alex")
	assert.ErrorIs(t, err, ErrValidation)

	req = validCreateRequest()
	req.CustomerGroupID = -1
	_, err = svc.Create(context.Background(), req, "alex")
	assert.ErrorIs(t, err, ErrValidation)

	req = validCreateRequest()
	req.Action = ActionDeliverToWorkshop
	_, err = svc.Create(context.Background(), req, "alex")
	assert.NoError(t, err)
}

func TestServiceCreateRepositoryError(t *testing.T) {
	repo := newMockRepository()
	repo.createError = errors.New("db down")
	svc, _, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), validCreateRequest(), "alex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestServiceAdvanceRecordsEvent(t *testing.T) {
	repo := newMockRepository()
	svc, notifier, metrics := newTestService(repo)
	job := seedJob(repo, StatusNew)

	got, err := svc.Advance(context.Background(), job.ID, "alex")
	require.NoError(t, err)
	assert.Equal(t, StatusPickup, got.Status)
	assert.Equal(t, "Pickup Delivered", got.Evaluation.ButtonText)
	require.Len(t, got.History, 1)
	assert.Equal(t, StatusNew, got.History[0].From)
	assert.Equal(t, StatusPickup, got.History[0].To)
	assert.Equal(t, "alex", got.History[0].ChangedBy)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, job.ID, notifier.events[0].JobID)
	assert.Equal(t, []string{"new->pickup"}, metrics.transitions)
}

func TestServiceAdvanceThroughQuotePath(t *testing.T) {
	repo := newMockRepository()
	svc, _, metrics := newTestService(repo)
	job := seedJob(repo, StatusNew)

	want := []Status{
		StatusPickup, StatusToBeQuoted, StatusDocketReady, StatusQuoted,
		StatusWaitingApprovalPO, StatusWaitingForParts, StatusBookedInForRepair,
		StatusRepaired, StatusCompleted,
	}
	for _, status := range want {
		got, err := svc.Advance(context.Background(), job.ID, "alex")
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}
	assert.Len(t, metrics.transitions, len(want))

	_, err := svc.Advance(context.Background(), job.ID, "alex")
	assert.ErrorIs(t, err, ErrTerminalStatus)
}

func TestServiceAdvanceNotifierFailureDoesNotFail(t *testing.T) {
	repo := newMockRepository()
	svc, notifier, _ := newTestService(repo)
	notifier.err = errors.New("queue offline")
	job := seedJob(repo, StatusPickup)

	got, err := svc.Advance(context.Background(), job.ID, "alex")
	require.NoError(t, err)
	assert.Equal(t, StatusToBeQuoted, got.Status)
}

func TestServiceAdvanceUnknownJob(t *testing.T) {
	svc, _, _ := newTestService(newMockRepository())
	_, err := svc.Advance(context.Background(), uuid.New(), "alex")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceUpdateRespectsLocks(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)
	brand := "Karcher"

	open := seedJob(repo, StatusToBeQuoted)
	got, err := svc.Update(context.Background(), open.ID, UpdateJobRequest{MachineMake: &brand})
	require.NoError(t, err)
	assert.Equal(t, "Karcher", got.MachineMake)

	locked := seedJob(repo, StatusWaitingForParts)
	_, err = svc.Update(context.Background(), locked.ID, UpdateJobRequest{MachineMake: &brand})
	assert.ErrorIs(t, err, ErrLocked)

	phone := "0400 000 000"
	_, err = svc.Update(context.Background(), locked.ID, UpdateJobRequest{ContactPhone: &phone})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestServiceUpdateValidation(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)
	job := seedJob(repo, StatusNew)

	bad := "not-an-email"
	_, err := svc.Update(context.Background(), job.ID, UpdateJobRequest{ContactEmail: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestServiceAttachOrder(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)
	job := seedJob(repo, StatusToBeQuoted)

	got, err := svc.AttachOrder(context.Background(), job.ID, AttachOrderRequest{OrderID: "SO-5512"})
	require.NoError(t, err)
	require.NotNil(t, got.OrderID)
	assert.Equal(t, "SO-5512", *got.OrderID)
	assert.False(t, got.Evaluation.CanCreateOrder)

	_, err = svc.AttachOrder(context.Background(), job.ID, AttachOrderRequest{OrderID: "SO-5513"})
	assert.ErrorIs(t, err, ErrOrderNotAllowed)

	quoted := seedJob(repo, StatusQuoted)
	_, err = svc.AttachOrder(context.Background(), quoted.ID, AttachOrderRequest{OrderID: "SO-1"})
	assert.ErrorIs(t, err, ErrOrderNotAllowed)
}

func TestServiceListEvaluatesEachJob(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)
	seedJob(repo, StatusNew)
	seedJob(repo, StatusCompleted)

	status := StatusCompleted
	jobs, total, err := svc.List(context.Background(), ListJobsRequest{Status: &status, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Job Completed", jobs[0].Evaluation.ButtonText)

	_, _, err = svc.List(context.Background(), ListJobsRequest{Limit: 10000})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestServiceStale(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)
	seedJob(repo, StatusWaitingForParts)
	seedJob(repo, StatusNew)

	jobs, err := svc.Stale(context.Background(), 72*time.Hour)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, StatusWaitingForParts, jobs[0].Status)
}

func TestServiceStaleKeepsSubDayAge(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)
	recent := seedJob(repo, StatusWaitingApprovalPO)
	recent.UpdatedAt = time.Now().Add(-30 * time.Hour)
	repo.seed(recent)

	jobs, err := svc.Stale(context.Background(), 47*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, 47*time.Hour, repo.lastStaleAge)

	jobs, err = svc.Stale(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, recent.ID, jobs[0].ID)

	_, err = svc.Stale(context.Background(), 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestServiceDocket(t *testing.T) {
	repo := newMockRepository()
	templates := &stubTemplates{}
	pdf := &stubPDF{}
	svc := NewService(repo, ServiceConfig{Templates: templates, PDF: pdf})
	job := seedJob(repo, StatusDocketReady)

	out, err := svc.DocketPDF(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), out)
	assert.Equal(t, "<html>docket</html>", pdf.html)
	assert.Equal(t, docketTemplate, templates.lastName)
	view, ok := templates.lastData.(DocketView)
	require.True(t, ok)
	assert.Equal(t, "Quote Docket", view.Title)
	assert.Equal(t, "Quoted", view.Evaluation.ButtonText)
}

func TestServiceDocketUnavailable(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestService(repo)
	job := seedJob(repo, StatusNew)

	_, err := svc.Docket(context.Background(), job.ID)
	assert.ErrorIs(t, err, ErrDocketUnavailable)
	_, err = svc.DocketPDF(context.Background(), job.ID)
	assert.ErrorIs(t, err, ErrDocketUnavailable)
}
