package jobqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueue(t *testing.T) {
	tests := []struct {
		name            string
		workers         int
		expectedWorkers int
	}{
		{"Valid worker count", 5, 5},
		{"Zero workers", 0, 3},
		{"Negative workers", -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := newQueue(nil, tt.workers)

			assert.Equal(t, tt.expectedWorkers, queue.workers)
			assert.False(t, queue.Running())
			assert.Contains(t, queue.handlers, JobTypeReportNotification)
		})
	}
}

func TestQueue_StopWithoutStart(t *testing.T) {
	q := newQueue(nil, 1)
	q.Stop()
	assert.False(t, q.Running())
}

func TestQueue_RunCompletesJob(t *testing.T) {
	client := newIsolatedRedisClient(t)
	q := newQueue(client, 1)
	ctx := context.Background()

	var seen string
	q.Handle("test", func(_ context.Context, job *Job) error {
		seen = job.Payload["zone"].(string)
		return nil
	})
	job, err := q.EnqueueJob("test", map[string]interface{}{"zone": "harbour"})
	require.NoError(t, err)

	next, err := q.next(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.ID, next.ID)
	q.run(ctx, next)

	assert.Equal(t, "harbour", seen)
	assert.Zero(t, client.LLen(ctx, JobProcessingKey).Val())
	assert.Zero(t, client.Exists(ctx, JobKeyPrefix+job.ID).Val())
	assert.Equal(t, "1", client.HGet(ctx, JobStatsKey, string(JobStatusCompleted)).Val())
}

func TestQueue_FailedJobIsDelayedThenPromoted(t *testing.T) {
	client := newIsolatedRedisClient(t)
	q := newQueue(client, 1)
	ctx := context.Background()

	q.Handle("flaky", func(context.Context, *Job) error { return errors.New("smtp timeout") })
	job, err := q.EnqueueJob("flaky", nil)
	require.NoError(t, err)

	next, err := q.next(ctx)
	require.NoError(t, err)
	q.run(ctx, next)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusRetrying, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Equal(t, "smtp timeout", stored.ErrorMsg)
	assert.Equal(t, int64(1), client.ZCard(ctx, JobDelayedKey).Val())

	q.promoteDelayed(ctx, time.Now())
	size, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, size, "retry is not due yet")

	q.promoteDelayed(ctx, time.Now().Add(2*retryBackoff))
	size, err = q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
	assert.Zero(t, client.ZCard(ctx, JobDelayedKey).Val())
}

func TestQueue_FailsPermanently(t *testing.T) {
	client := newIsolatedRedisClient(t)
	q := newQueue(client, 1)
	ctx := context.Background()

	job, err := q.EnqueueJob("unknown", nil)
	require.NoError(t, err)
	for i := 0; i < DefaultMaxRetries; i++ {
		next, err := q.next(ctx)
		require.NoError(t, err)
		q.run(ctx, next)
		q.promoteDelayed(ctx, time.Now().Add(time.Hour))
	}

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, stored.Status)
	assert.Equal(t, DefaultMaxRetries, stored.RetryCount)
	assert.Equal(t, "1", client.HGet(ctx, JobStatsKey, string(JobStatusFailed)).Val())
}

func TestQueue_RecoverStuck(t *testing.T) {
	client := newIsolatedRedisClient(t)
	q := newQueue(client, 1)
	ctx := context.Background()

	job, err := q.EnqueueJob("test", nil)
	require.NoError(t, err)
	next, err := q.next(ctx)
	require.NoError(t, err)
	next.MarkAsProcessing()
	require.NoError(t, q.save(ctx, client, next))
	require.NoError(t, client.LPush(ctx, JobProcessingKey, "ghost").Err())

	q.recoverStuck(ctx, time.Now())
	assert.Equal(t, int64(1), client.LLen(ctx, JobProcessingKey).Val(), "fresh job stays, ghost is dropped")

	q.recoverStuck(ctx, time.Now().Add(stuckAfter+time.Minute))
	assert.Zero(t, client.LLen(ctx, JobProcessingKey).Val())
	ids := client.LRange(ctx, JobQueueKey, 0, -1).Val()
	assert.Equal(t, []string{job.ID}, ids)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, stored.Status)
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "job:", JobKeyPrefix)
	assert.Equal(t, "job_queue", JobQueueKey)
	assert.Equal(t, "job_processing", JobProcessingKey)
	assert.Equal(t, "job_stats", JobStatsKey)
	assert.Equal(t, 3, DefaultMaxRetries)
	assert.Equal(t, 24*time.Hour, JobTTL)
}
