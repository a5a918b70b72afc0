package jobqueue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected string
	}{
		{"Pending", JobStatusPending, "pending"},
		{"Processing", JobStatusProcessing, "processing"},
		{"Completed", JobStatusCompleted, "completed"},
		{"Failed", JobStatusFailed, "failed"},
		{"Retrying", JobStatusRetrying, "retrying"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.status))
		})
	}
	assert.Equal(t, "report_notification", string(JobTypeReportNotification))
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{"Failed job with retries remaining", &Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 3}, true},
		{"Failed job with no retries remaining", &Job{Status: JobStatusFailed, RetryCount: 3, MaxRetries: 3}, false},
		{"Completed job", &Job{Status: JobStatusCompleted, RetryCount: 1, MaxRetries: 3}, false},
		{"Pending job", &Job{Status: JobStatusPending, MaxRetries: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_StatusTransitions(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: 3}
	before := time.Now()

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)
	assert.False(t, job.UpdatedAt.Before(before))

	job.MarkAsFailed("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)
}

func TestReportNotificationPayload_FromStoredJob(t *testing.T) {
	payload := ReportNotificationJobPayload{UserID: 7, ReportID: 42, Kind: "report_verified", Points: 30}
	job := &Job{ID: "job-1", Type: JobTypeReportNotification, Payload: payload.ToMap()}

	// Jobs live in redis as JSON, so numbers come back as float64.
	raw, err := json.Marshal(job)
	require.NoError(t, err)
	var stored Job
	require.NoError(t, json.Unmarshal(raw, &stored))

	got, err := ReportNotificationJobPayloadFromMap(stored.Payload)
	require.NoError(t, err)
	assert.Equal(t, &payload, got)
}

func TestReportNotificationPayloadFromMap_InvalidData(t *testing.T) {
	payload, err := ReportNotificationJobPayloadFromMap(map[string]interface{}{"invalid": make(chan int)})
	assert.Error(t, err)
	assert.Nil(t, payload)

	_, err = ReportNotificationJobPayloadFromMap(map[string]interface{}{"user_id": "not-a-number"})
	assert.Error(t, err)
}
