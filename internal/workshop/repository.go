package workshop

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cleanline/opsdesk/internal/platform/db"
)

// Repository persists workshop jobs and their status history.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, id uuid.UUID) (*Job, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Job, error)
	List(ctx context.Context, req ListJobsRequest) ([]Job, int, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	SetOrder(ctx context.Context, id uuid.UUID, orderID string) error
	InsertEvent(ctx context.Context, ev StatusEvent) error
	ListEvents(ctx context.Context, jobID uuid.UUID) ([]StatusEvent, error)
	ListStale(ctx context.Context, statuses []Status, olderThan time.Duration) ([]Job, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const jobColumns = `id, customer_name, contact_name, contact_email, contact_phone,
	machine_make, machine_model, serial_number, fault_description,
	location_of_repair, site_location, quote_or_repair, action, status,
	order_id, created_by, created_at, updated_at, customer_group_id`

// updatable maps request fields onto columns; anything else is rejected.
var updatable = map[string]struct{}{
	"customer_name": {}, "contact_name": {}, "contact_email": {}, "contact_phone": {},
	"machine_make": {}, "machine_model": {}, "serial_number": {}, "fault_description": {},
	"location_of_repair": {}, "site_location": {}, "quote_or_repair": {}, "action": {},
}

func (r *repository) Create(ctx context.Context, job Job) error {
	const q = `INSERT INTO workshop_jobs (` + jobColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`
	_, err := r.db.Exec(ctx, q,
		job.ID, job.CustomerName, job.ContactName, job.ContactEmail, job.ContactPhone,
		job.MachineMake, job.MachineModel, job.SerialNumber, job.FaultDescription,
		job.LocationOfRepair, job.SiteLocation, job.QuoteOrRepair, job.Action, string(job.Status),
		job.OrderID, job.CreatedBy, job.CreatedAt, job.UpdatedAt, job.CustomerGroupID,
	)
	if err != nil {
		return fmt.Errorf("insert workshop job: %w", db.MapError(err))
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	return r.get(ctx, `SELECT `+jobColumns+` FROM workshop_jobs WHERE id = $1`, id)
}

func (r *repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*Job, error) {
	return r.get(ctx, `SELECT `+jobColumns+` FROM workshop_jobs WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) get(ctx context.Context, q string, id uuid.UUID) (*Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workshop job: %w", err)
	}
	return job, nil
}

func (r *repository) List(ctx context.Context, req ListJobsRequest) ([]Job, int, error) {
	where := ""
	args := []any{}
	if req.Status != nil {
		args = append(args, string(*req.Status))
		where = " WHERE status = $1"
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM workshop_jobs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count workshop jobs: %w", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, req.Offset)
	q := fmt.Sprintf(`SELECT %s FROM workshop_jobs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list workshop jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan workshop job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		if _, ok := updatable[k]; !ok {
			return fmt.Errorf("update workshop job: column %q not updatable", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		sets = append(sets, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, updates[k])
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE workshop_jobs SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update workshop job: %w", db.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	const q = `UPDATE workshop_jobs SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	tag, err := r.db.Exec(ctx, q, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("update workshop status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (r *repository) SetOrder(ctx context.Context, id uuid.UUID, orderID string) error {
	const q = `UPDATE workshop_jobs SET order_id = $1, updated_at = NOW() WHERE id = $2 AND order_id IS NULL`
	tag, err := r.db.Exec(ctx, q, orderID, id)
	if err != nil {
		return fmt.Errorf("set workshop order: %w", db.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (r *repository) InsertEvent(ctx context.Context, ev StatusEvent) error {
	const q = `INSERT INTO workshop_status_events (id, job_id, from_status, to_status, changed_by, changed_at)
		VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := r.db.Exec(ctx, q, ev.ID, ev.JobID, string(ev.From), string(ev.To), ev.ChangedBy, ev.ChangedAt); err != nil {
		return fmt.Errorf("insert status event: %w", err)
	}
	return nil
}

func (r *repository) ListEvents(ctx context.Context, jobID uuid.UUID) ([]StatusEvent, error) {
	const q = `SELECT id, job_id, from_status, to_status, changed_by, changed_at
		FROM workshop_status_events WHERE job_id = $1 ORDER BY changed_at`
	rows, err := r.db.Query(ctx, q, jobID)
	if err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}
	defer rows.Close()

	events := []StatusEvent{}
	for rows.Next() {
		var ev StatusEvent
		var from, to string
		if err := rows.Scan(&ev.ID, &ev.JobID, &from, &to, &ev.ChangedBy, &ev.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		ev.From, ev.To = Status(from), Status(to)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *repository) ListStale(ctx context.Context, statuses []Status, olderThan time.Duration) ([]Job, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	q := `SELECT ` + jobColumns + ` FROM workshop_jobs
		WHERE status = ANY($1) AND updated_at < NOW() - ($2::float8 * INTERVAL '1 second')
		ORDER BY updated_at`
	rows, err := r.db.Query(ctx, q, names, olderThan.Seconds())
	if err != nil {
		return nil, fmt.Errorf("list stale workshop jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workshop job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*Job, error) {
	var job Job
	var status string
	err := row.Scan(
		&job.ID, &job.CustomerName, &job.ContactName, &job.ContactEmail, &job.ContactPhone,
		&job.MachineMake, &job.MachineModel, &job.SerialNumber, &job.FaultDescription,
		&job.LocationOfRepair, &job.SiteLocation, &job.QuoteOrRepair, &job.Action, &status,
		&job.OrderID, &job.CreatedBy, &job.CreatedAt, &job.UpdatedAt, &job.CustomerGroupID,
	)
	if err != nil {
		return nil, err
	}
	job.Status = Status(status)
	return &job, nil
}
