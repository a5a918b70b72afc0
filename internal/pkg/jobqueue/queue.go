package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/CleanCity/app/repository"
	"github.com/ManuelReschke/CleanCity/internal/pkg/cache"
)

const (
	JobKeyPrefix     = "job:"
	JobQueueKey      = "job_queue"
	JobProcessingKey = "job_processing"
	JobDelayedKey    = "job_delayed" // sorted set, score = unix time the retry becomes due
	JobStatsKey      = "job_stats"

	DefaultMaxRetries = 3
	JobTTL            = 24 * time.Hour

	statEnqueued  = "enqueued"
	retryBackoff  = time.Minute
	stuckAfter    = 10 * time.Minute
	sweepInterval = 30 * time.Second
	popTimeout    = time.Second
)

var errCorruptJob = errors.New("corrupt job data")

// Handler runs a single job. A returned error schedules a retry until the
// job runs out of attempts.
type Handler func(ctx context.Context, job *Job) error

// Queue is a redis backed work queue with a fixed number of workers.
type Queue struct {
	client  *redis.Client
	workers int

	mu       sync.Mutex
	handlers map[JobType]Handler
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	notifications repository.NotificationRepository
	wantsReview   func(userID uint) bool
}

// NewQueue creates a queue on the shared cache client.
func NewQueue(workers int) *Queue {
	return newQueue(cache.GetClient(), workers)
}

func newQueue(client *redis.Client, workers int) *Queue {
	if workers <= 0 {
		workers = 3
	}
	q := &Queue{
		client:   client,
		workers:  workers,
		handlers: map[JobType]Handler{},
	}
	q.Handle(JobTypeReportNotification, q.processReportNotificationJob)
	return q
}

// Handle registers the handler for a job type, replacing any previous one.
func (q *Queue) Handle(jobType JobType, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobType] = h
}

// Running reports whether workers are active.
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancel != nil
}

// Start launches the workers and the sweeper. Calling it twice is a no-op.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	log.Infof("[JobQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx, i)
	}
	q.wg.Add(1)
	go q.sweep(ctx)
}

// Stop cancels the workers and waits for running jobs to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	cancel := q.cancel
	q.cancel = nil
	q.mu.Unlock()
	if cancel == nil {
		return
	}

	log.Info("[JobQueue] Stopping workers...")
	cancel()
	q.wg.Wait()
	log.Info("[JobQueue] All workers stopped")
}

func (q *Queue) work(ctx context.Context, id int) {
	defer q.wg.Done()
	for ctx.Err() == nil {
		job, err := q.next(ctx)
		switch {
		case err == nil:
			q.run(ctx, job)
		case errors.Is(err, redis.Nil), ctx.Err() != nil:
			// idle or shutting down
		default:
			log.Errorf("[JobQueue] Worker %d: %v", id, err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
	log.Debugf("[JobQueue] Worker %d stopped", id)
}

// EnqueueJob stores a job and appends it to the pending list.
func (q *Queue) EnqueueJob(jobType JobType, payload map[string]interface{}) (*Job, error) {
	now := time.Now()
	job := &Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    payload,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: DefaultMaxRetries,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	ctx := context.Background()
	pipe := q.client.TxPipeline()
	pipe.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL)
	pipe.LPush(ctx, JobQueueKey, job.ID)
	pipe.HIncrBy(ctx, JobStatsKey, statEnqueued, 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}
	log.Debugf("[JobQueue] Enqueued job %s (%s)", job.ID, job.Type)
	return job, nil
}

// next moves the oldest pending job to the processing list and loads it.
func (q *Queue) next(ctx context.Context) (*Job, error) {
	id, err := q.client.BRPopLPush(ctx, JobQueueKey, JobProcessingKey, popTimeout).Result()
	if err != nil {
		return nil, err
	}
	job, err := q.GetJob(ctx, id)
	if err != nil {
		q.client.LRem(ctx, JobProcessingKey, 1, id)
		return nil, fmt.Errorf("job %s dropped: %w", id, err)
	}
	return job, nil
}

func (q *Queue) run(ctx context.Context, job *Job) {
	job.MarkAsProcessing()
	if err := q.save(ctx, q.client, job); err != nil {
		log.Errorf("[JobQueue] Failed to mark job %s as processing: %v", job.ID, err)
	}

	q.mu.Lock()
	h := q.handlers[job.Type]
	q.mu.Unlock()

	var err error
	if h == nil {
		err = fmt.Errorf("no handler for job type %s", job.Type)
	} else {
		err = h(ctx, job)
	}

	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, JobProcessingKey, 1, job.ID)
	switch {
	case err == nil:
		job.MarkAsCompleted()
		pipe.Del(ctx, JobKeyPrefix+job.ID)
		pipe.HIncrBy(ctx, JobStatsKey, string(JobStatusCompleted), 1)
	default:
		job.MarkAsFailed(err.Error())
		if job.IsRetryable() {
			job.MarkAsRetrying()
			due := time.Now().Add(time.Duration(job.RetryCount) * retryBackoff)
			pipe.ZAdd(ctx, JobDelayedKey, redis.Z{Score: float64(due.Unix()), Member: job.ID})
			log.Warnf("[JobQueue] Job %s failed, retry %d/%d at %s: %v", job.ID, job.RetryCount, job.MaxRetries, due.Format(time.RFC3339), err)
		} else {
			pipe.HIncrBy(ctx, JobStatsKey, string(JobStatusFailed), 1)
			log.Errorf("[JobQueue] Job %s failed permanently after %d attempts: %v", job.ID, job.RetryCount, err)
		}
		if serr := q.save(ctx, pipe, job); serr != nil {
			log.Errorf("[JobQueue] Failed to store job %s: %v", job.ID, serr)
		}
	}
	if _, perr := pipe.Exec(ctx); perr != nil {
		log.Errorf("[JobQueue] Failed to finish job %s: %v", job.ID, perr)
	}
}

func (q *Queue) save(ctx context.Context, c redis.Cmdable, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return c.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL).Err()
}

// sweep promotes due retries and requeues jobs whose worker died.
func (q *Queue) sweep(ctx context.Context) {
	defer q.wg.Done()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			q.promoteDelayed(ctx, now)
			q.recoverStuck(ctx, now)
		}
	}
}

func (q *Queue) promoteDelayed(ctx context.Context, now time.Time) {
	ids, err := q.client.ZRangeByScore(ctx, JobDelayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		log.Errorf("[JobQueue] Failed to read delayed jobs: %v", err)
		return
	}
	for _, id := range ids {
		// ZRem decides which instance promotes the job.
		if n, err := q.client.ZRem(ctx, JobDelayedKey, id).Result(); err != nil || n == 0 {
			continue
		}
		if err := q.client.LPush(ctx, JobQueueKey, id).Err(); err != nil {
			log.Errorf("[JobQueue] Failed to requeue job %s: %v", id, err)
		}
	}
}

func (q *Queue) recoverStuck(ctx context.Context, now time.Time) {
	ids, err := q.client.LRange(ctx, JobProcessingKey, 0, -1).Result()
	if err != nil {
		log.Errorf("[JobQueue] Failed to read processing list: %v", err)
		return
	}
	for _, id := range ids {
		job, err := q.GetJob(ctx, id)
		if errors.Is(err, redis.Nil) || errors.Is(err, errCorruptJob) {
			q.client.LRem(ctx, JobProcessingKey, 1, id)
			continue
		}
		if err != nil {
			log.Errorf("[JobQueue] Failed to load job %s: %v", id, err)
			continue
		}

		since := job.UpdatedAt
		if job.ProcessedAt != nil {
			since = *job.ProcessedAt
		}
		if now.Sub(since) < stuckAfter {
			continue
		}

		log.Warnf("[JobQueue] Requeueing job %s (%s), processing since %s", job.ID, job.Type, since.Format(time.RFC3339))
		job.Status = JobStatusPending
		job.ErrorMsg = "recovered after worker stopped"
		job.UpdatedAt = now
		pipe := q.client.TxPipeline()
		if err := q.save(ctx, pipe, job); err != nil {
			continue
		}
		pipe.LRem(ctx, JobProcessingKey, 1, id)
		pipe.RPush(ctx, JobQueueKey, id)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Errorf("[JobQueue] Failed to requeue job %s: %v", id, err)
		}
	}
}

// GetJob loads a job by ID. A missing job returns redis.Nil.
func (q *Queue) GetJob(ctx context.Context, id string) (*Job, error) {
	data, err := q.client.Get(ctx, JobKeyPrefix+id).Bytes()
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptJob, err)
	}
	return &job, nil
}

// GetQueueSize returns the number of pending jobs.
func (q *Queue) GetQueueSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobQueueKey).Result()
}
