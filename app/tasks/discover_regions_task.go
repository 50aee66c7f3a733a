package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/velkozz/social-ingest/app/database"
	"github.com/velkozz/social-ingest/app/twitter"
)

// DiscoverRegionsTask syncs the set of trend locations the Twitter API
// can report on. It is the only job allowed to create region scope
// entities; trend ingestion merely references them.
type DiscoverRegionsTask struct {
	Task
	accountRepo database.AccountRepository
	regionRepo  database.RegionRepository
	newClient   func(account *database.DeveloperAccount) TwitterAPI
}

func NewDiscoverRegionsTask(jobName string, accountRepo database.AccountRepository,
	regionRepo database.RegionRepository,
	newClient func(account *database.DeveloperAccount) TwitterAPI) *DiscoverRegionsTask {
	return &DiscoverRegionsTask{
		Task:        NewTask(TaskTypeRegionDiscovery, jobName),
		accountRepo: accountRepo,
		regionRepo:  regionRepo,
		newClient:   newClient,
	}
}

func (t *DiscoverRegionsTask) Execute(ctx context.Context) error {

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

	t.setStage(StageExtracting)

	locations, err := client.AvailableTrends(ctx)
	if err != nil {
		return t.finishFailed(fmt.Errorf("failed to extract available regions: %w", err))
	}

	regions := twitter.ExtractRegions(locations)

	t.setStage(StageWriting)

	written := 0
	for _, region := range regions {
		if err := t.regionRepo.UpsertRegion(region); err != nil {
			t.recordWrites(written, 0, nil)
			return t.finishFailed(fmt.Errorf("failed to write region %d: %w", region.WOEID, err))
		}
		written++
	}
	t.recordWrites(written, 0, nil)

	t.finishCompleted()

	slog.Info("Task completed",
		"type", "RegionDiscovery",
		"job", t.JobName,
		"duration", t.GetDuration(),
		"regions", written)

	return nil
}
