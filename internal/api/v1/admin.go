package apiv1

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CleanCity/internal/pkg/jobqueue"
)

// GetStats returns the cached dashboard.
func (s *APIServer) GetStats(c *fiber.Ctx) error {
	d, err := s.Stats.Get()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(d)
}

// GetQueueStatus reports the depth of the notification job queue.
func (s *APIServer) GetQueueStatus(c *fiber.Ctx) error {
	if s.Queue == nil {
		return fail(c, fiber.StatusServiceUnavailable, "unavailable", "job queue is not configured")
	}
	pending, err := s.Queue.GetListLength(jobqueue.JobQueueKey)
	if err != nil {
		return respondError(c, err)
	}
	processing, err := s.Queue.GetListLength(jobqueue.JobProcessingKey)
	if err != nil {
		return respondError(c, err)
	}
	keys, err := s.Queue.FindKeysByPatterns([]string{jobqueue.JobKeyPrefix + "*"})
	if err != nil {
		return respondError(c, err)
	}
	stats, err := s.Queue.GetHashCounts(jobqueue.JobStatsKey)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(QueueStatus{Pending: pending, Processing: processing, StoredJobs: len(keys), Stats: stats})
}

// DeleteQueueJob drops a stored job record by its ID.
func (s *APIServer) DeleteQueueJob(c *fiber.Ctx) error {
	if s.Queue == nil {
		return fail(c, fiber.StatusServiceUnavailable, "unavailable", "job queue is not configured")
	}
	id := strings.TrimSpace(c.Params("job"))
	if id == "" || strings.ContainsAny(id, "*?[") {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid job id")
	}
	n, err := s.Queue.DeleteKeys([]string{jobqueue.JobKeyPrefix + id})
	if err != nil {
		return respondError(c, err)
	}
	if n == 0 {
		return fail(c, fiber.StatusNotFound, "not_found", "job not found")
	}
	log.Infof("[JobQueue] Job %s deleted by admin", id)
	return c.SendStatus(fiber.StatusNoContent)
}
