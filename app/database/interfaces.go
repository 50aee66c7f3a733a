package database

import "errors"

// ErrNotFound is returned when a lookup by natural key matches no row.
var ErrNotFound = errors.New("database: not found")

type AccountRepository interface {
	GetActiveAccount(service Service) (*DeveloperAccount, error)
}

type SubredditRepository interface {
	GetSubreddit(name string) (*Subreddit, error)
	ListSubreddits() ([]Subreddit, error)
	UpsertSubreddit(name, description string) error
	GetSubredditCount() (int, error)
}

type RegionRepository interface {
	ListRegions() ([]TwitterRegion, error)
	UpsertRegion(region TwitterRegion) error
	GetRegionCount() (int, error)
}

type PostRepository interface {
	UpsertPosts(posts []RedditPost) (WriteResult, error)
	GetPostCount() (int, error)
}

type TopicRepository interface {
	UpsertTopics(topics []TrendingTopic) (WriteResult, error)
	GetTopicCount() (int, error)
}
