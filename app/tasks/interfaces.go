package tasks

import (
	"context"

	"github.com/velkozz/social-ingest/app/reddit"
	"github.com/velkozz/social-ingest/app/twitter"
)

// TaskSchedulerInterface is the scheduler surface consumed by the main
// application and the operator API.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	TriggerJob(name string) error
	Reports() map[string]Report
	JobNames() []string
}

// RedditAPI is the client surface the Reddit tasks depend on. A fresh
// client is built per job run from the active developer account.
type RedditAPI interface {
	ListPosts(ctx context.Context, subreddit, listing string, limit int) ([]reddit.Thing, error)
	AboutSubreddit(ctx context.Context, name string) (*reddit.ItemData, error)
	AboutUser(ctx context.Context, username string) (*reddit.UserAbout, error)
}

var _ RedditAPI = (*reddit.Client)(nil)

// TwitterAPI is the client surface the Twitter tasks depend on.
type TwitterAPI interface {
	AvailableTrends(ctx context.Context) ([]twitter.RawLocation, error)
	PlaceTrends(ctx context.Context, woeid int64) ([]twitter.TrendsEnvelope, error)
}

var _ TwitterAPI = (*twitter.Client)(nil)
