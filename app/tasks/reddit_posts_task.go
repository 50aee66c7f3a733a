package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/velkozz/social-ingest/app/database"
	"github.com/velkozz/social-ingest/app/reddit"
)

// RedditPostsTask ingests the daily top and current hot posts for every
// registered subreddit and upserts them by post id.
type RedditPostsTask struct {
	Task
	accountRepo   database.AccountRepository
	subredditRepo database.SubredditRepository
	postRepo      database.PostRepository
	newClient     func(account *database.DeveloperAccount) RedditAPI
	postLimit     int
}

func NewRedditPostsTask(jobName string, accountRepo database.AccountRepository,
	subredditRepo database.SubredditRepository, postRepo database.PostRepository,
	newClient func(account *database.DeveloperAccount) RedditAPI, postLimit int) *RedditPostsTask {
	return &RedditPostsTask{
		Task:          NewTask(TaskTypeRedditPosts, jobName),
		accountRepo:   accountRepo,
		subredditRepo: subredditRepo,
		postRepo:      postRepo,
		newClient:     newClient,
		postLimit:     postLimit,
	}
}

func (t *RedditPostsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.setStage(StageAuthenticating)

	account, err := t.accountRepo.GetActiveAccount(database.ServiceReddit)
	if err != nil {
		return t.finishFailed(fmt.Errorf("reddit credentials unavailable: %w", err))
	}

	client := t.newClient(account)

	subreddits, err := t.subredditRepo.ListSubreddits()
	if err != nil {
		return t.finishFailed(fmt.Errorf("failed to list subreddits: %w", err))
	}
	if len(subreddits) == 0 {
		slog.Debug("No subreddits registered, nothing to ingest", "job", t.JobName)
		t.finishCompleted()
		return nil
	}

	t.setStage(StageExtracting)

	var posts []database.RedditPost
	for _, subreddit := range subreddits {
		for _, listing := range []string{reddit.ListingTop, reddit.ListingHot} {
			items, err := client.ListPosts(ctx, subreddit.Name, listing, t.postLimit)
			if err != nil {
				if errors.Is(err, reddit.ErrAuthentication) {
					t.setStage(StageAuthenticating)
				}
				return t.finishFailed(fmt.Errorf("failed to extract %s/%s: %w", subreddit.Name, listing, err))
			}

			posts = append(posts, reddit.ExtractPosts(ctx, items, subreddit.Name, client)...)
		}
	}

	t.setStage(StageWriting)

	result, err := t.postRepo.UpsertPosts(posts)
	t.recordWrites(result.Written, result.Dropped, result.DroppedKeys)
	if err != nil {
		return t.finishFailed(fmt.Errorf("failed to write posts: %w", err))
	}

	if result.Dropped > 0 {
		slog.Warn("Posts dropped for unknown subreddits", "job", t.JobName, "dropped", result.Dropped, "keys", result.DroppedKeys)
	}

	t.finishCompleted()

	slog.Info("Task completed",
		"type", "RedditPosts",
		"job", t.JobName,
		"duration", t.GetDuration(),
		"subreddits", len(subreddits),
		"written", result.Written,
		"dropped", result.Dropped)

	return nil
}
