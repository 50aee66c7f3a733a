package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type TaskType string

const (
	TaskTypeRedditPosts     TaskType = "reddit_posts"
	TaskTypeTwitterTrends   TaskType = "twitter_trends"
	TaskTypeRegionDiscovery TaskType = "region_discovery"
	TaskTypeSubredditSync   TaskType = "subreddit_sync"
)

const (
	DefaultMaxRetries = 3
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetJobName() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
	Report() Report
}

type Task struct {
	ID         string
	Type       TaskType
	JobName    string
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time

	report Report
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetJobName() string {
	return t.JobName
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
	t.report = Report{
		Job:       t.JobName,
		Stage:     StagePending,
		StartedAt: now.UTC(),
	}
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func (t *Task) Report() Report {
	return t.report
}

func (t *Task) setStage(stage Stage) {
	t.report.Stage = stage
}

func (t *Task) recordWrites(written, dropped int, droppedKeys []string) {
	t.report.Written += written
	t.report.Dropped += dropped
	t.report.DroppedKeys = append(t.report.DroppedKeys, droppedKeys...)
}

func (t *Task) finishCompleted() {
	now := time.Now().UTC()
	t.report.Stage = StageCompleted
	t.report.FinishedAt = &now
}

func (t *Task) finishFailed(err error) error {
	now := time.Now().UTC()
	t.report.Stage = StageFailed
	t.report.FinishedAt = &now
	if err != nil {
		t.report.Error = err.Error()
	}
	return err
}

func NewTask(taskType TaskType, jobName string) Task {
	uniqueID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:         uniqueID,
		Type:       taskType,
		JobName:    jobName,
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}
}
