package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/velkozz/social-ingest/app/database"
)

// SyncSubredditsTask registers the configured subreddit list as polling
// scopes, enriching each with its public description when a Reddit
// account is available. This is the only job allowed to create
// subreddit scope entities.
type SyncSubredditsTask struct {
	Task
	accountRepo   database.AccountRepository
	subredditRepo database.SubredditRepository
	newClient     func(account *database.DeveloperAccount) RedditAPI
	subreddits    []string
}

func NewSyncSubredditsTask(jobName string, accountRepo database.AccountRepository,
	subredditRepo database.SubredditRepository,
	newClient func(account *database.DeveloperAccount) RedditAPI, subreddits []string) *SyncSubredditsTask {
	return &SyncSubredditsTask{
		Task:          NewTask(TaskTypeSubredditSync, jobName),
		accountRepo:   accountRepo,
		subredditRepo: subredditRepo,
		newClient:     newClient,
		subreddits:    subreddits,
	}
}

func (t *SyncSubredditsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if len(t.subreddits) == 0 {
		slog.Debug("No subreddits configured", "job", t.JobName)
		t.finishCompleted()
		return nil
	}

	t.setStage(StageAuthenticating)

	// Description enrichment is best-effort; the sync itself only
	// needs the configured names.
	var client RedditAPI
	if account, err := t.accountRepo.GetActiveAccount(database.ServiceReddit); err == nil {
		client = t.newClient(account)
	} else {
		slog.Debug("No reddit account for description enrichment", "job", t.JobName, "error", err)
	}

	t.setStage(StageWriting)

	written := 0
	for _, name := range t.subreddits {
		description := ""
		if client != nil {
			if about, err := client.AboutSubreddit(ctx, name); err == nil && about.Description != nil {
				description = *about.Description
			} else if err != nil {
				slog.Debug("Subreddit about lookup failed", "subreddit", name, "error", err)
			}
		}

		if err := t.subredditRepo.UpsertSubreddit(name, description); err != nil {
			t.recordWrites(written, 0, nil)
			return t.finishFailed(fmt.Errorf("failed to sync subreddit %q: %w", name, err))
		}
		written++
	}
	t.recordWrites(written, 0, nil)

	t.finishCompleted()

	slog.Info("Task completed",
		"type", "SubredditSync",
		"job", t.JobName,
		"duration", t.GetDuration(),
		"subreddits", written)

	return nil
}
