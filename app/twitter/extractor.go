package twitter

import (
	"log/slog"
	"time"

	"github.com/velkozz/social-ingest/app/database"
)

// ExtractTopics normalizes one trends envelope into topic records. The
// output count equals the trend count of the envelope; optional fields
// that the API omitted stay null. The envelope timestamp and location
// are shared by every topic and form part of the natural key.
func ExtractTopics(envelope TrendsEnvelope, woeid int64) []database.TrendingTopic {
	asOf := parseEnvelopeTime(envelope)

	// The envelope's own location is authoritative when present.
	if len(envelope.Locations) > 0 && envelope.Locations[0].WOEID != 0 {
		woeid = envelope.Locations[0].WOEID
	}

	topics := make([]database.TrendingTopic, 0, len(envelope.Trends))
	for _, trend := range envelope.Trends {
		topics = append(topics, database.TrendingTopic{
			RegionWOEID:     woeid,
			Name:            trend.Name,
			URL:             trend.URL,
			PromotedContent: trend.PromotedContent,
			TopicQuery:      trend.Query,
			TweetVolume:     trend.TweetVolume,
			AsOf:            asOf,
		})
	}

	return topics
}

// ExtractRegions normalizes the available-trends listing into region
// records, one per raw location.
func ExtractRegions(locations []RawLocation) []database.TwitterRegion {
	regions := make([]database.TwitterRegion, 0, len(locations))

	for _, loc := range locations {
		region := database.TwitterRegion{
			WOEID:       loc.WOEID,
			Name:        loc.Name,
			ParentWOEID: loc.ParentID,
		}
		if loc.PlaceType.Name != nil {
			region.LocationType = *loc.PlaceType.Name
		}
		if loc.Country != nil {
			region.Country = *loc.Country
		}
		if loc.CountryCode != nil {
			region.CountryCode = *loc.CountryCode
		}
		regions = append(regions, region)
	}

	return regions
}

// parseEnvelopeTime reads the polling timestamp from as_of, falling back
// to created_at and finally the ingestion time. Both fields are RFC3339
// upstream.
func parseEnvelopeTime(envelope TrendsEnvelope) time.Time {
	for _, raw := range []string{envelope.AsOf, envelope.CreatedAt} {
		if raw == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts.UTC()
		}
		slog.Debug("Unparseable trends timestamp", "value", raw)
	}
	return time.Now().UTC()
}
