package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/conferia/conferia/internal/jobs"
)

// OverdueScanJob finds pending contribution cells whose period deadline has
// passed and queues a reminder notification per organizer.
type OverdueScanJob struct {
	Pool    *pgxpool.Pool
	Client  *Client
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewOverdueScanJob initialises the deadline scan handler.
func NewOverdueScanJob(pool *pgxpool.Pool, client *Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Pool:    pool,
		Client:  client,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type overdueRow struct {
	OrganizerID string
	PeriodID    string
	Deadline    time.Time
}

// Handle executes the overdue scan logic.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.GraceDays < 0 {
		payload.GraceDays = 0
	}

	start := j.now()
	tracker := j.metrics().Track(TaskTypeOverdueScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("grace_days", payload.GraceDays))
	logger.Info("starting overdue scan")

	cutoff := start.AddDate(0, 0, -payload.GraceDays)
	rows, err := j.scan(ctx, cutoff)
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}

	perOrganizer := make(map[string]int)
	for _, row := range rows {
		logger.Warn("overdue contribution",
			slog.String("organizer", row.OrganizerID),
			slog.String("period", row.PeriodID),
			slog.Time("deadline", row.Deadline),
		)
		perOrganizer[row.OrganizerID]++
	}
	j.metrics().AddOverdue(len(rows))

	if j.Client != nil {
		for organizerID, count := range perOrganizer {
			_, err := j.Client.EnqueueNotify(ctx, NotifyPayload{
				Event:       "contribution.overdue",
				OrganizerID: organizerID,
				Detail:      "overdue periods: " + itoa(count),
			})
			if err != nil {
				logger.Warn("enqueue reminder", slog.Any("error", err), slog.String("organizer", organizerID))
			}
		}
	}

	logger.Info("completed overdue scan",
		slog.Int("overdue_cells", len(rows)),
		slog.Int("organizers", len(perOrganizer)),
		slog.Duration("duration", j.now().Sub(start)),
	)
	return resultErr
}

func (j *OverdueScanJob) scan(ctx context.Context, cutoff time.Time) ([]overdueRow, error) {
	if j.Pool == nil {
		return nil, errors.New("overdue scan: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `SELECT c.organizer_id, c.period_id, p.deadline
FROM contribution_cells c
JOIN contribution_periods p ON p.id = c.period_id
WHERE c.state = 'PENDING' AND p.deadline < $1
ORDER BY c.organizer_id, c.period_id`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []overdueRow
	for rows.Next() {
		var row overdueRow
		if err := rows.Scan(&row.OrganizerID, &row.PeriodID, &row.Deadline); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock == nil {
		return time.Now().UTC()
	}
	return j.clock()
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}

func (j *OverdueScanJob) metrics() *jobmetrics.Metrics {
	return j.Metrics
}
