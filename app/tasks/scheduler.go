package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/velkozz/social-ingest/app/cfg"
	"github.com/velkozz/social-ingest/app/database"
	"github.com/velkozz/social-ingest/app/reddit"
	"github.com/velkozz/social-ingest/app/twitter"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Job names double as single-flight keys: at most one run of a named
// job is in progress at any time.
const (
	JobRedditPosts    = "reddit_posts"
	JobTwitterTrends  = "twitter_trends"
	JobTwitterRegions = "twitter_regions"
	JobSubredditSync  = "sync_subreddits"
)

type jobSpec struct {
	name     string
	interval time.Duration
	build    func() TaskInterface
}

type Scheduler struct {
	jobs        []jobSpec
	interval    time.Duration
	workerCount int
	jobTimeout  time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface

	mu          sync.Mutex
	running     map[string]bool
	nextRuns    map[string]time.Time
	lastReports map[string]Report
}

func NewScheduler(accountRepo database.AccountRepository, subredditRepo database.SubredditRepository,
	regionRepo database.RegionRepository, postRepo database.PostRepository,
	topicRepo database.TopicRepository) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	requestDelay := time.Duration(cfg.RequestDelay) * time.Millisecond
	userAgent := cfg.UserAgent

	newRedditClient := func(account *database.DeveloperAccount) RedditAPI {
		return reddit.NewClient(account, requestDelay)
	}
	newTwitterClient := func(account *database.DeveloperAccount) TwitterAPI {
		return twitter.NewClient(account, userAgent, requestDelay)
	}

	s := &Scheduler{
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		jobTimeout:  time.Duration(cfg.JobTimeout) * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
		running:     make(map[string]bool),
		nextRuns:    make(map[string]time.Time),
		lastReports: make(map[string]Report),
	}

	s.jobs = []jobSpec{
		{
			name:     JobSubredditSync,
			interval: 0, // startup and manual trigger only
			build: func() TaskInterface {
				return NewSyncSubredditsTask(JobSubredditSync, accountRepo, subredditRepo, newRedditClient, cfg.Subreddits)
			},
		},
		{
			name:     JobTwitterRegions,
			interval: time.Duration(cfg.RegionSyncInterval) * time.Second,
			build: func() TaskInterface {
				return NewDiscoverRegionsTask(JobTwitterRegions, accountRepo, regionRepo, newTwitterClient)
			},
		},
		{
			name:     JobRedditPosts,
			interval: time.Duration(cfg.RedditPostsInterval) * time.Second,
			build: func() TaskInterface {
				return NewRedditPostsTask(JobRedditPosts, accountRepo, subredditRepo, postRepo, newRedditClient, cfg.RedditPostLimit)
			},
		},
		{
			name:     JobTwitterTrends,
			interval: time.Duration(cfg.TwitterTrendInterval) * time.Second,
			build: func() TaskInterface {
				return NewTwitterTrendsTask(JobTwitterTrends, accountRepo, regionRepo, topicRepo, newTwitterClient)
			},
		},
	}

	return s
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// TriggerJob enqueues one named job out of schedule. The single-flight
// guard still applies at execution time.
func (s *Scheduler) TriggerJob(name string) error {
	for _, job := range s.jobs {
		if job.name == name {
			return s.EnqueueTask(job.build())
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

func (s *Scheduler) JobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for _, job := range s.jobs {
		names = append(names, job.name)
	}
	return names
}

// Reports returns the last run report of every job that has run.
func (s *Scheduler) Reports() map[string]Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports := make(map[string]Report, len(s.lastReports))
	for name, report := range s.lastReports {
		reports[name] = report
	}
	return reports
}

// enqueueStartupTasks runs every job once at boot. Discovery jobs are
// listed before ingestion jobs so a fresh database has its scope
// entities in place before the first ingestion runs.
func (s *Scheduler) enqueueStartupTasks() {
	now := time.Now()

	for _, job := range s.jobs {
		if err := s.EnqueueTask(job.build()); err != nil {
			slog.Warn("Failed to enqueue startup task", "job", job.name, "error", err)
			continue
		}
		if job.interval > 0 {
			s.setNextRun(job.name, now.Add(job.interval))
		}
	}
}

func (s *Scheduler) enqueueDueTasks() {
	now := time.Now()

	for _, job := range s.jobs {
		if job.interval <= 0 {
			continue
		}

		s.mu.Lock()
		next, ok := s.nextRuns[job.name]
		s.mu.Unlock()

		if ok && next.After(now) {
			continue
		}

		if err := s.EnqueueTask(job.build()); err != nil {
			slog.Warn("Failed to enqueue task", "job", job.name, "error", err)
			continue
		}
		s.setNextRun(job.name, now.Add(job.interval))
	}
}

func (s *Scheduler) setNextRun(name string, next time.Time) {
	s.mu.Lock()
	s.nextRuns[name] = next
	s.mu.Unlock()
}

// tryAcquire claims the single-flight slot for a named job.
func (s *Scheduler) tryAcquire(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	delete(s.running, name)
	s.mu.Unlock()
}

func (s *Scheduler) storeReport(report Report) {
	s.mu.Lock()
	s.lastReports[report.Job] = report
	s.mu.Unlock()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	if !s.tryAcquire(task.GetJobName()) {
		slog.Warn("Job already running, skipping overlapping trigger",
			"job", task.GetJobName(), "type", string(task.GetType()), "id", task.GetID())
		return
	}
	defer s.release(task.GetJobName())

	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, s.jobTimeout)
	defer cancel()

	err := task.Execute(taskCtx)

	s.storeReport(task.Report())

	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	// Credential failures are surfaced to operators, never retried;
	// the run waits for its next scheduled tick.
	if errors.Is(err, reddit.ErrAuthentication) || errors.Is(err, twitter.ErrAuthentication) || errors.Is(err, database.ErrNotFound) {
		slog.Error("Authentication failure, not retrying", "job", task.GetJobName(), "error", err)
		return
	}

	if task.CanRetry() {
		task.IncrementRetryCount()
		retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}

		slog.Warn("Task retry scheduled", "type", string(task.GetType()), "job", task.GetJobName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

		go func() {
			time.Sleep(retryDelay)
			select {
			case <-s.ctx.Done():
				slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
				return
			default:
				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}
		}()
	} else {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
	}
}
