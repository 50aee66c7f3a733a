package reddit

import (
	"context"
	"log/slog"
	"time"

	"github.com/velkozz/social-ingest/app/database"
)

// UserLookup is the secondary author lookup used for best-effort post
// enrichment. A nil lookup disables enrichment entirely.
type UserLookup interface {
	AboutUser(ctx context.Context, username string) (*UserAbout, error)
}

var _ UserLookup = (*Client)(nil)

// ExtractPosts normalizes one batch of raw listing items. The output
// count always equals the input count: a missing or malformed field
// becomes a null value, never a discarded record. Author metadata is
// resolved through the lookup and each author field is independently
// nullable.
func ExtractPosts(ctx context.Context, items []Thing, subreddit string, users UserLookup) []database.RedditPost {
	posts := make([]database.RedditPost, 0, len(items))

	for _, item := range items {
		raw := item.Data

		post := database.RedditPost{
			ID:          raw.ID,
			Subreddit:   subreddit,
			Title:       raw.Title,
			Content:     raw.Selftext,
			UpvoteRatio: raw.UpvoteRatio,
			Score:       raw.Score,
			NumComments: raw.NumComments,
			PostedAt:    epochToTime(raw.CreatedUTC),
			Stickied:    raw.Stickied,
			Over18:      raw.Over18,
			Spoiler:     raw.Spoiler,
			Permalink:   raw.Permalink,
			Author:      raw.Author,
		}

		if users != nil && raw.Author != nil && *raw.Author != "" && *raw.Author != "[deleted]" {
			enrichAuthor(ctx, &post, *raw.Author, users)
		}

		posts = append(posts, post)
	}

	return posts
}

// enrichAuthor fills the author fields from /user/<name>/about.json.
// Any failure leaves all author fields null and the post intact.
func enrichAuthor(ctx context.Context, post *database.RedditPost, username string, users UserLookup) {
	about, err := users.AboutUser(ctx, username)
	if err != nil {
		slog.Debug("Author lookup failed, leaving author fields null",
			"post", post.ID, "author", username, "error", err)
		return
	}

	post.AuthorIsGold = about.IsGold
	post.AuthorMod = about.IsMod
	post.AuthorHasVerifiedEmail = about.HasVerifiedEmail
	post.CommentKarma = about.CommentKarma

	if about.CreatedUTC != nil {
		created := time.Unix(int64(*about.CreatedUTC), 0).UTC()
		post.AuthorCreatedAt = &created
	}
}

// epochToTime converts the source's unix-epoch float to UTC. A missing
// timestamp falls back to the ingestion time so the NOT NULL posted_at
// column is always satisfied.
func epochToTime(epoch *float64) time.Time {
	if epoch == nil {
		return time.Now().UTC()
	}
	return time.Unix(int64(*epoch), 0).UTC()
}
