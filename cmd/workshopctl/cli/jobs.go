package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/cleanline/opsdesk/jobs"
)

type taskQueue interface {
	Enqueue(ctx context.Context, task *asynq.Task) (*asynq.TaskInfo, error)
	Close() error
}

type queueInspector interface {
	jobs.QueueInspector
	Close() error
}

// JobsCLI wraps manual management helpers for asynq jobs.
type JobsCLI struct {
	queue     taskQueue
	inspector queueInspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client, err := jobs.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &JobsCLI{queue: client, inspector: asynq.NewInspector(opts)}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var errs []error
	if c.inspector != nil {
		errs = append(errs, c.inspector.Close())
	}
	if c.queue != nil {
		errs = append(errs, c.queue.Close())
	}
	return errors.Join(errs...)
}

// Trigger enqueues a supported job by name with default payload.
func (c *JobsCLI) Trigger(ctx context.Context, name string, staleAfter time.Duration) (*asynq.TaskInfo, error) {
	if c == nil || c.queue == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	task, err := jobs.NewTaskByName(name, staleAfter)
	if err != nil {
		return nil, fmt.Errorf("jobs cli: %s: %w", name, err)
	}
	return c.queue.Enqueue(ctx, task)
}

// InspectQueue reports the metrics of the default queue.
func (c *JobsCLI) InspectQueue() (jobs.QueueStats, error) {
	if c == nil || c.inspector == nil {
		return jobs.QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	return jobs.Stats(c.inspector)
}

// JobsCmd returns the jobs command group. open is called lazily so that
// commands which fail flag parsing never dial Redis.
func JobsCmd(open func() (*JobsCLI, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger and inspect background jobs",
	}
	cmd.AddCommand(jobsTriggerCmd(open))
	cmd.AddCommand(jobsStatsCmd(open))
	return cmd
}

func jobsTriggerCmd(open func() (*JobsCLI, error)) *cobra.Command {
	var staleAfter time.Duration
	cmd := &cobra.Command{
		Use:     "trigger <name>",
		Short:   "Enqueue a job now",
		Example: "  workshopctl jobs trigger " + jobs.TaskWorkshopStaleScan + " --older-than 96h",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open()
			if err != nil {
				return err
			}
			defer c.Close()
			info, err := c.Trigger(cmd.Context(), args[0], staleAfter)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s (%s) on %s\n", info.Type, info.ID, info.Queue)
			return nil
		},
	}
	cmd.Flags().DurationVar(&staleAfter, "older-than", 72*time.Hour, "stale scan age")
	return cmd
}

func jobsStatsCmd(open func() (*JobsCLI, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show default queue statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open()
			if err != nil {
				return err
			}
			defer c.Close()
			stats, err := c.InspectQueue()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Queue:     %s\n", stats.Queue)
			fmt.Fprintf(out, "Pending:   %d\n", stats.Pending)
			fmt.Fprintf(out, "Active:    %d\n", stats.Active)
			fmt.Fprintf(out, "Scheduled: %d\n", stats.Scheduled)
			fmt.Fprintf(out, "Retry:     %d\n", stats.Retry)
			fmt.Fprintf(out, "Archived:  %d\n", stats.Archived)
			return nil
		},
	}
}
