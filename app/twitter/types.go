package twitter

// RawLocation is one entry of trends/available.json.
type RawLocation struct {
	Name        string  `json:"name"`
	WOEID       int64   `json:"woeid"`
	ParentID    *int64  `json:"parentid"`
	Country     *string `json:"country"`
	CountryCode *string `json:"countryCode"`
	PlaceType   struct {
		Code *int    `json:"code"`
		Name *string `json:"name"`
	} `json:"placeType"`
}

// TrendsEnvelope is one entry of the trends/place.json response array.
// The API reports location and timestamps once per envelope, not per
// trend.
type TrendsEnvelope struct {
	Trends    []RawTrend `json:"trends"`
	AsOf      string     `json:"as_of"`
	CreatedAt string     `json:"created_at"`
	Locations []struct {
		Name  string `json:"name"`
		WOEID int64  `json:"woeid"`
	} `json:"locations"`
}

// RawTrend keeps optional fields as pointers; promoted_content and
// tweet_volume are frequently null upstream.
type RawTrend struct {
	Name            string  `json:"name"`
	URL             *string `json:"url"`
	PromotedContent *bool   `json:"promoted_content"`
	Query           *string `json:"query"`
	TweetVolume     *int    `json:"tweet_volume"`
}
