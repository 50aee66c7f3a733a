package database

import (
	"time"
)

type Service string

const (
	ServiceReddit  Service = "reddit"
	ServiceTwitter Service = "twitter"
)

// DeveloperAccount holds the API credentials for one external service.
// Read-only to the pipeline; rows are managed by an administrator.
type DeveloperAccount struct {
	ID                string
	Service           Service
	ClientID          string
	ClientSecret      string
	UserAgent         string
	APIKey            string
	APISecretKey      string
	BearerToken       string
	AccessToken       string
	AccessTokenSecret string
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Subreddit is a Reddit polling scope. Posts referencing an unknown
// subreddit are dropped by the writer, never auto-created.
type Subreddit struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TwitterRegion is a Twitter trend location keyed by Yahoo WOEID,
// discovered by the region discovery job.
type TwitterRegion struct {
	ID           string
	WOEID        int64
	Name         string
	LocationType string
	ParentWOEID  *int64
	Country      string
	CountryCode  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RedditPost is a normalized subreddit post. The natural key is the
// Reddit base36 post id. All fields except the key, the scope reference
// and the post timestamp are nullable: a field the remote API omitted is
// stored as NULL rather than discarding the record.
type RedditPost struct {
	ID                     string
	Subreddit              string
	Title                  *string
	Content                *string
	UpvoteRatio            *float64
	Score                  *int
	NumComments            *int
	PostedAt               time.Time
	Stickied               *bool
	Over18                 *bool
	Spoiler                *bool
	Permalink              *string
	Author                 *string
	AuthorIsGold           *bool
	AuthorMod              *bool
	AuthorHasVerifiedEmail *bool
	AuthorCreatedAt        *time.Time
	CommentKarma           *int
}

// TrendingTopic is a normalized Twitter trending topic. Trends carry no
// stable id upstream, so the natural key is (region_woeid, name, as_of).
type TrendingTopic struct {
	RegionWOEID     int64
	Name            string
	URL             *string
	PromotedContent *bool
	TopicQuery      *string
	TweetVolume     *int
	AsOf            time.Time
}

// WriteResult reports the outcome of an upsert batch. Dropped records
// referenced a scope entity that has not been discovered yet.
type WriteResult struct {
	Written     int
	Dropped     int
	DroppedKeys []string
}
