package database

import (
	"database/sql"
	"fmt"
)

// TopicRepo persists normalized trending topics. Trends have no stable
// upstream id, so rows are keyed by (region_woeid, name, as_of); a retry
// that re-reports the same topic at the same polling tick updates the
// existing row instead of inserting a duplicate.
type TopicRepo struct {
	db *DB
}

var _ TopicRepository = (*TopicRepo)(nil)

func NewTopicRepository(db *DB) *TopicRepo {
	return &TopicRepo{db: db}
}

// UpsertTopics writes a batch of topics in input order. Topics for a
// WOEID that has not been discovered are dropped and counted.
func (r *TopicRepo) UpsertTopics(topics []TrendingTopic) (WriteResult, error) {
	var result WriteResult

	knownRegions := make(map[int64]*bool)

	for _, topic := range topics {
		known, ok := knownRegions[topic.RegionWOEID]
		if !ok {
			exists, err := r.regionExists(topic.RegionWOEID)
			if err != nil {
				return result, err
			}
			known = &exists
			knownRegions[topic.RegionWOEID] = known
		}

		if !*known {
			result.Dropped++
			result.DroppedKeys = append(result.DroppedKeys,
				fmt.Sprintf("%d/%s", topic.RegionWOEID, topic.Name))
			continue
		}

		if err := r.upsertTopic(topic); err != nil {
			return result, err
		}
		result.Written++
	}

	return result, nil
}

func (r *TopicRepo) regionExists(woeid int64) (bool, error) {
	var found int64
	err := r.db.QueryRow("SELECT woeid FROM twitter_regions WHERE woeid = $1", woeid).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to resolve region %d: %w", woeid, err)
	}
	return true, nil
}

func (r *TopicRepo) upsertTopic(topic TrendingTopic) error {
	_, err := r.db.Exec(`
		INSERT INTO trending_topics (
			region_woeid, name, url, promoted_content, topic_query, tweet_volume, as_of
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (region_woeid, name, as_of) DO UPDATE SET
			url = EXCLUDED.url,
			promoted_content = EXCLUDED.promoted_content,
			topic_query = EXCLUDED.topic_query,
			tweet_volume = EXCLUDED.tweet_volume,
			updated_at = NOW()
	`, topic.RegionWOEID, topic.Name, topic.URL, topic.PromotedContent,
		topic.TopicQuery, topic.TweetVolume, topic.AsOf)

	if err != nil {
		return fmt.Errorf("failed to upsert topic %q for region %d: %w", topic.Name, topic.RegionWOEID, err)
	}

	return nil
}

func (r *TopicRepo) GetTopicCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM trending_topics").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get topic count: %w", err)
	}
	return count, nil
}
