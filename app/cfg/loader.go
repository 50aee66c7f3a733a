package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/subosito/gotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"ingest_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"ingest_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"social_ingest" description:"Database name"`

	// Ingestion configuration
	Subreddits           string `long:"subreddits" env:"SUBREDDITS" description:"Comma-separated list of subreddits to poll"`
	RedditPostLimit      int    `long:"reddit-post-limit" env:"REDDIT_POST_LIMIT" default:"25" description:"Posts fetched per subreddit per listing"`
	RedditPostsInterval  int    `long:"reddit-posts-interval" env:"REDDIT_POSTS_INTERVAL" default:"3600" description:"Reddit post ingestion interval in seconds"`
	TwitterTrendInterval int    `long:"twitter-trend-interval" env:"TWITTER_TREND_INTERVAL" default:"3600" description:"Twitter trending topic ingestion interval in seconds"`
	RegionSyncInterval   int    `long:"region-sync-interval" env:"REGION_SYNC_INTERVAL" default:"86400" description:"Twitter region discovery interval in seconds"`
	RequestDelay         int    `long:"request-delay" env:"REQUEST_DELAY" default:"500" description:"Courtesy delay between external API requests in milliseconds"`
	JobTimeout           int    `long:"job-timeout" env:"JOB_TIMEOUT" default:"600" description:"Per-job run timeout in seconds"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for ingestion jobs"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler tick interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for operator endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"social-ingest/1.0" description:"User agent string for external API requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	// Optional .env file, the OS environment is authoritative
	_ = gotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:               raw.DBHost,
		DBPort:               raw.DBPort,
		DBUser:               raw.DBUser,
		DBPassword:           raw.DBPassword,
		DBName:               raw.DBName,
		Subreddits:           splitList(raw.Subreddits),
		RedditPostLimit:      raw.RedditPostLimit,
		RedditPostsInterval:  raw.RedditPostsInterval,
		TwitterTrendInterval: raw.TwitterTrendInterval,
		RegionSyncInterval:   raw.RegionSyncInterval,
		RequestDelay:         raw.RequestDelay,
		JobTimeout:           raw.JobTimeout,
		Port:                 raw.Port,
		WorkerCount:          raw.WorkerCount,
		SchedulerInterval:    raw.SchedulerInterval,
		APIAccessKey:         raw.APIAccessKey,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
