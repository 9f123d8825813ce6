package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanline/opsdesk/internal/pricing"
	"github.com/cleanline/opsdesk/internal/workshop"
	"github.com/cleanline/opsdesk/jobs"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEvaluateCommandPickupLocksForm(t *testing.T) {
	out, err := run(t, EvaluateCmd(), "--id", "42", "--status", "pickup", "--action", "Deliver")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:   Pickup")
	assert.Contains(t, out, "Priority: 1")
	assert.Contains(t, out, "machine info  no")
}

func TestEvaluateCommandJSON(t *testing.T) {
	out, err := run(t, EvaluateCmd(), "--status", "new", "--action", "Pickup", "--json")
	require.NoError(t, err)

	var result workshop.StatusResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.CanPickup)
	assert.Equal(t, workshop.Evaluate(workshop.StatusContext{WorkshopStatus: workshop.StatusNew, Action: "Pickup"}), result)
}

func TestNextCommand(t *testing.T) {
	out, err := run(t, NextCmd(), "--status", "docket_ready", "--quote-or-repair", "Quote")
	require.NoError(t, err)
	assert.Equal(t, "quoted\n", out)

	_, err = run(t, NextCmd(), "--status", "completed")
	assert.ErrorIs(t, err, workshop.ErrTerminalStatus)

	_, err = run(t, NextCmd())
	assert.Error(t, err)
}

func TestPriceCommand(t *testing.T) {
	out, err := run(t, PriceCmd(), "--unit", "100", "--cost", "85", "--discount", "10", "--qty", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Discounted price: 90.000")
	assert.Contains(t, out, "GPP ex GST:       5.556%")
	assert.Contains(t, out, "Total ex GST:     $180.00")
	assert.Contains(t, out, "Off RRP:          N/A")
	assert.Contains(t, out, "Highlight:        LOW GPP")
}

func TestPriceCommandShowsRRPComparison(t *testing.T) {
	out, err := run(t, PriceCmd(), "--unit", "10", "--cost", "5", "--discount", "33.333", "--rrp", "11")
	require.NoError(t, err)
	assert.Contains(t, out, "Discounted price: 6.667")
	assert.Contains(t, out, "Off RRP:          33.33%")
}

func TestPriceCommandCommitClampsDiscount(t *testing.T) {
	out, err := run(t, PriceCmd(), "--unit", "50", "--cost", "10", "--discount", "150", "--commit", "--json")
	require.NoError(t, err)

	var line pricing.Line
	require.NoError(t, json.Unmarshal([]byte(out), &line))
	assert.Equal(t, 100.0, line.PercentDiscount)
	assert.Equal(t, 0.0, line.UnitPriceDiscounted)
}

type fakeQueue struct {
	tasks  []*asynq.Task
	closed bool
}

func (f *fakeQueue) Enqueue(ctx context.Context, task *asynq.Task) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t-1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (f *fakeQueue) Close() error {
	f.closed = true
	return nil
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) { return f.info, f.err }

func (f fakeInspector) Close() error { return nil }

func TestJobsTrigger(t *testing.T) {
	queue := &fakeQueue{}
	open := func() (*JobsCLI, error) { return &JobsCLI{queue: queue, inspector: fakeInspector{}}, nil }

	out, err := run(t, JobsCmd(open), "trigger", jobs.TaskWorkshopStaleScan, "--older-than", "96h")
	require.NoError(t, err)
	assert.Contains(t, out, "enqueued workshop:stale_scan (t-1) on default")
	assert.True(t, queue.closed)

	require.Len(t, queue.tasks, 1)
	var payload jobs.StaleScanPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
	assert.Equal(t, 96*time.Hour, payload.OlderThan)

	_, err = run(t, JobsCmd(open), "trigger", "mail:send")
	assert.ErrorIs(t, err, jobs.ErrUnknownTask)
}

func TestJobsStats(t *testing.T) {
	open := func() (*JobsCLI, error) {
		return &JobsCLI{inspector: fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 4, Archived: 2}}}, nil
	}
	out, err := run(t, JobsCmd(open), "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending:   4")
	assert.Contains(t, out, "Archived:  2")

	open = func() (*JobsCLI, error) {
		return &JobsCLI{inspector: fakeInspector{err: errors.New("redis down")}}, nil
	}
	_, err = run(t, JobsCmd(open), "stats")
	assert.Error(t, err)
}
