package database

import (
	"database/sql"
	"fmt"
)

// PostRepo persists normalized Reddit posts with at-most-one-row-per-id
// semantics. Posts are applied one statement at a time in input order so
// the stored row always reflects the most recent poll.
type PostRepo struct {
	db *DB
}

var _ PostRepository = (*PostRepo)(nil)

func NewPostRepository(db *DB) *PostRepo {
	return &PostRepo{db: db}
}

// UpsertPosts writes a batch of posts. A post referencing a subreddit
// that has not been registered is dropped and counted; the writer never
// creates scope entities as a side effect of ingestion.
func (r *PostRepo) UpsertPosts(posts []RedditPost) (WriteResult, error) {
	var result WriteResult

	// Subreddit ids resolved once per batch; a nil entry marks a
	// scope that is known to be missing.
	scopeIDs := make(map[string]*string)

	for _, post := range posts {
		scopeID, ok := scopeIDs[post.Subreddit]
		if !ok {
			id, err := r.lookupSubredditID(post.Subreddit)
			if err != nil {
				return result, err
			}
			scopeID = id
			scopeIDs[post.Subreddit] = scopeID
		}

		if scopeID == nil {
			result.Dropped++
			result.DroppedKeys = append(result.DroppedKeys, post.ID)
			continue
		}

		if err := r.upsertPost(*scopeID, post); err != nil {
			return result, err
		}
		result.Written++
	}

	return result, nil
}

func (r *PostRepo) lookupSubredditID(name string) (*string, error) {
	var id string
	err := r.db.QueryRow("SELECT id FROM subreddits WHERE name = $1", name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve subreddit %q: %w", name, err)
	}
	return &id, nil
}

func (r *PostRepo) upsertPost(subredditID string, post RedditPost) error {
	_, err := r.db.Exec(`
		INSERT INTO reddit_posts (
			id, subreddit_id, title, content, upvote_ratio, score,
			num_comments, posted_at, stickied, over_18, spoiler, permalink,
			author, author_is_gold, author_mod, author_has_verified_email,
			author_created_at, comment_karma
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			subreddit_id = EXCLUDED.subreddit_id,
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			upvote_ratio = EXCLUDED.upvote_ratio,
			score = EXCLUDED.score,
			num_comments = EXCLUDED.num_comments,
			stickied = EXCLUDED.stickied,
			over_18 = EXCLUDED.over_18,
			spoiler = EXCLUDED.spoiler,
			author_is_gold = EXCLUDED.author_is_gold,
			author_mod = EXCLUDED.author_mod,
			author_has_verified_email = EXCLUDED.author_has_verified_email,
			author_created_at = EXCLUDED.author_created_at,
			comment_karma = EXCLUDED.comment_karma,
			updated_at = NOW()
	`, post.ID, subredditID, post.Title, post.Content, post.UpvoteRatio, post.Score,
		post.NumComments, post.PostedAt, post.Stickied, post.Over18, post.Spoiler,
		post.Permalink, post.Author, post.AuthorIsGold, post.AuthorMod,
		post.AuthorHasVerifiedEmail, post.AuthorCreatedAt, post.CommentKarma)

	if err != nil {
		return fmt.Errorf("failed to upsert post %s: %w", post.ID, err)
	}

	return nil
}

func (r *PostRepo) GetPostCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM reddit_posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}
