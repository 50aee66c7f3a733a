package reddit

// Listing is the envelope Reddit wraps around paginated results.
type Listing struct {
	Data ListingData `json:"data"`
}

type ListingData struct {
	After    string  `json:"after"`
	Children []Thing `json:"children"`
}

type Thing struct {
	Kind string   `json:"kind"`
	Data ItemData `json:"data"`
}

// ItemData carries the fields extracted from a post. Everything except
// the id uses pointers so absent or null JSON values survive decoding as
// nil instead of zero values.
type ItemData struct {
	ID          string   `json:"id"`
	Subreddit   string   `json:"subreddit"`
	Title       *string  `json:"title"`
	Selftext    *string  `json:"selftext"`
	UpvoteRatio *float64 `json:"upvote_ratio"`
	Score       *int     `json:"score"`
	NumComments *int     `json:"num_comments"`
	CreatedUTC  *float64 `json:"created_utc"`
	Stickied    *bool    `json:"stickied"`
	Over18      *bool    `json:"over_18"`
	Spoiler     *bool    `json:"spoiler"`
	Permalink   *string  `json:"permalink"`
	Author      *string  `json:"author"`

	// Subreddit about endpoint
	Description *string `json:"public_description"`
}

// UserAbout is the payload of /user/<name>/about.json, used for the
// best-effort author enrichment of posts.
type UserAbout struct {
	IsGold           *bool    `json:"is_gold"`
	IsMod            *bool    `json:"is_mod"`
	HasVerifiedEmail *bool    `json:"has_verified_email"`
	CreatedUTC       *float64 `json:"created_utc"`
	CommentKarma     *int     `json:"comment_karma"`
}

type userEnvelope struct {
	Data UserAbout `json:"data"`
}

// Listing filters matching the original ingestion cadence: top posts of
// the day and current hot posts.
const (
	ListingTop = "top"
	ListingHot = "hot"
)
