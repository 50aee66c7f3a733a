package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Ingestion configuration
	Subreddits           []string
	RedditPostLimit      int
	RedditPostsInterval  int
	TwitterTrendInterval int
	RegionSyncInterval   int
	RequestDelay         int
	JobTimeout           int

	// Application configuration
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
