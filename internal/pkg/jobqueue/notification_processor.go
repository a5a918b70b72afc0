package jobqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/app/repository"
)

// ErrNoNotificationStore is returned when a notification job runs before
// SetNotificationStore was called.
var ErrNoNotificationStore = errors.New("notification store not configured")

// SetNotificationStore wires the repository notification jobs write into.
// wantsReview may be nil, in which case every user is notified.
func (q *Queue) SetNotificationStore(repo repository.NotificationRepository, wantsReview func(userID uint) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notifications = repo
	q.wantsReview = wantsReview
}

// NotifyReport enqueues an in-app notification for a committed report transition.
func (q *Queue) NotifyReport(userID, reportID uint, kind string, points int) error {
	payload := ReportNotificationJobPayload{
		UserID:   userID,
		ReportID: reportID,
		Kind:     kind,
		Points:   points,
	}
	_, err := q.EnqueueJob(JobTypeReportNotification, payload.ToMap())
	return err
}

func (q *Queue) processReportNotificationJob(_ context.Context, job *Job) error {
	payload, err := ReportNotificationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}

	q.mu.Lock()
	repo, wants := q.notifications, q.wantsReview
	q.mu.Unlock()
	if repo == nil {
		return ErrNoNotificationStore
	}
	if wants != nil && !wants(payload.UserID) {
		log.Debugf("[JobQueue] User %d opted out of review notifications", payload.UserID)
		return nil
	}

	n := BuildNotification(payload)
	if err := repo.Create(n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// BuildNotification renders the in-app message for a payload.
func BuildNotification(p *ReportNotificationJobPayload) *models.Notification {
	var content string
	switch p.Kind {
	case models.NotificationReportVerified:
		content = fmt.Sprintf("Your report #%d was verified. You earned %d points.", p.ReportID, p.Points)
	case models.NotificationReportRejected:
		content = fmt.Sprintf("Your report #%d was rejected.", p.ReportID)
	case models.NotificationReportResolved:
		content = fmt.Sprintf("Your report #%d was resolved. Thank you!", p.ReportID)
	case models.NotificationLevelUp:
		content = "You reached a new level."
	default:
		content = fmt.Sprintf("Your report #%d was updated.", p.ReportID)
	}
	return &models.Notification{
		UserID:      p.UserID,
		Type:        p.Kind,
		Content:     content,
		ReferenceID: p.ReportID,
	}
}
