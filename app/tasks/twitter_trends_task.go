package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/velkozz/social-ingest/app/database"
	"github.com/velkozz/social-ingest/app/twitter"
)

// TwitterTrendsTask ingests the current trending topics for every
// discovered region and upserts them by (region, name, as_of).
type TwitterTrendsTask struct {
	Task
	accountRepo database.AccountRepository
	regionRepo  database.RegionRepository
	topicRepo   database.TopicRepository
	newClient   func(account *database.DeveloperAccount) TwitterAPI
}

func NewTwitterTrendsTask(jobName string, accountRepo database.AccountRepository,
	regionRepo database.RegionRepository, topicRepo database.TopicRepository,
	newClient func(account *database.DeveloperAccount) TwitterAPI) *TwitterTrendsTask {
	return &TwitterTrendsTask{
		Task:        NewTask(TaskTypeTwitterTrends, jobName),
		accountRepo: accountRepo,
		regionRepo:  regionRepo,
		topicRepo:   topicRepo,
		newClient:   newClient,
	}
}

func (t *TwitterTrendsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.setStage(StageAuthenticating)

	account, err := t.accountRepo.GetActiveAccount(database.ServiceTwitter)
	if err != nil {
		return t.finishFailed(fmt.Errorf("twitter credentials unavailable: %w", err))
	}

	client := t.newClient(account)

	regions, err := t.regionRepo.ListRegions()
	if err != nil {
		return t.finishFailed(fmt.Errorf("failed to list regions: %w", err))
	}
	if len(regions) == 0 {
		slog.Debug("No regions discovered yet, nothing to ingest", "job", t.JobName)
		t.finishCompleted()
		return nil
	}

	t.setStage(StageExtracting)

	var topics []database.TrendingTopic
	for _, region := range regions {
		envelopes, err := client.PlaceTrends(ctx, region.WOEID)
		if err != nil {
			if errors.Is(err, twitter.ErrAuthentication) {
				t.setStage(StageAuthenticating)
			}
			return t.finishFailed(fmt.Errorf("failed to extract trends for woeid %d: %w", region.WOEID, err))
		}

		for _, envelope := range envelopes {
			topics = append(topics, twitter.ExtractTopics(envelope, region.WOEID)...)
		}
	}

	t.setStage(StageWriting)

	result, err := t.topicRepo.UpsertTopics(topics)
	t.recordWrites(result.Written, result.Dropped, result.DroppedKeys)
	if err != nil {
		return t.finishFailed(fmt.Errorf("failed to write topics: %w", err))
	}

	if result.Dropped > 0 {
		slog.Warn("Topics dropped for unknown regions", "job", t.JobName, "dropped", result.Dropped, "keys", result.DroppedKeys)
	}

	t.finishCompleted()

	slog.Info("Task completed",
		"type", "TwitterTrends",
		"job", t.JobName,
		"duration", t.GetDuration(),
		"regions", len(regions),
		"written", result.Written,
		"dropped", result.Dropped)

	return nil
}
