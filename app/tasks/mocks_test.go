package tasks

import (
	"context"
	"errors"

	"github.com/velkozz/social-ingest/app/database"
	"github.com/velkozz/social-ingest/app/reddit"
	"github.com/velkozz/social-ingest/app/twitter"
)

type mockAccountRepo struct {
	account *database.DeveloperAccount
	err     error
}

func (m *mockAccountRepo) GetActiveAccount(service database.Service) (*database.DeveloperAccount, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.account, nil
}

type mockSubredditRepo struct {
	subreddits []database.Subreddit
	listErr    error
	upsertErr  error
	upserted   map[string]string
}

func (m *mockSubredditRepo) GetSubreddit(name string) (*database.Subreddit, error) {
	for _, s := range m.subreddits {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *mockSubredditRepo) ListSubreddits() ([]database.Subreddit, error) {
	return m.subreddits, m.listErr
}

func (m *mockSubredditRepo) UpsertSubreddit(name, description string) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.upserted == nil {
		m.upserted = make(map[string]string)
	}
	m.upserted[name] = description
	return nil
}

func (m *mockSubredditRepo) GetSubredditCount() (int, error) {
	return len(m.subreddits), nil
}

type mockRegionRepo struct {
	regions  []database.TwitterRegion
	listErr  error
	upserted []database.TwitterRegion
}

func (m *mockRegionRepo) ListRegions() ([]database.TwitterRegion, error) {
	return m.regions, m.listErr
}

func (m *mockRegionRepo) UpsertRegion(region database.TwitterRegion) error {
	m.upserted = append(m.upserted, region)
	return nil
}

func (m *mockRegionRepo) GetRegionCount() (int, error) {
	return len(m.regions), nil
}

type mockPostRepo struct {
	result   database.WriteResult
	err      error
	received []database.RedditPost
}

func (m *mockPostRepo) UpsertPosts(posts []database.RedditPost) (database.WriteResult, error) {
	m.received = posts
	return m.result, m.err
}

func (m *mockPostRepo) GetPostCount() (int, error) {
	return len(m.received), nil
}

type mockTopicRepo struct {
	result   database.WriteResult
	err      error
	received []database.TrendingTopic
}

func (m *mockTopicRepo) UpsertTopics(topics []database.TrendingTopic) (database.WriteResult, error) {
	m.received = topics
	return m.result, m.err
}

func (m *mockTopicRepo) GetTopicCount() (int, error) {
	return len(m.received), nil
}

// mockRedditAPI serves canned listings keyed by listing kind.
type mockRedditAPI struct {
	itemsByListing map[string][]reddit.Thing
	listErr        error
	about          *reddit.ItemData
	aboutErr       error
	listCalls      int
}

func (m *mockRedditAPI) ListPosts(ctx context.Context, subreddit, listing string, limit int) ([]reddit.Thing, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.itemsByListing[listing], nil
}

func (m *mockRedditAPI) AboutSubreddit(ctx context.Context, name string) (*reddit.ItemData, error) {
	if m.aboutErr != nil {
		return nil, m.aboutErr
	}
	if m.about != nil {
		return m.about, nil
	}
	return nil, errors.New("no such subreddit")
}

func (m *mockRedditAPI) AboutUser(ctx context.Context, username string) (*reddit.UserAbout, error) {
	return nil, errors.New("no such user")
}

type mockTwitterAPI struct {
	locations []twitter.RawLocation
	envelopes []twitter.TrendsEnvelope
	err       error
}

func (m *mockTwitterAPI) AvailableTrends(ctx context.Context) ([]twitter.RawLocation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.locations, nil
}

func (m *mockTwitterAPI) PlaceTrends(ctx context.Context, woeid int64) ([]twitter.TrendsEnvelope, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.envelopes, nil
}
