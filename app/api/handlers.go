package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/velkozz/social-ingest/app/database"
	"github.com/velkozz/social-ingest/app/tasks"
)

func NewHandler(subredditRepo database.SubredditRepository, regionRepo database.RegionRepository,
	postRepo database.PostRepository, topicRepo database.TopicRepository,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		subredditRepo: subredditRepo,
		regionRepo:    regionRepo,
		postRepo:      postRepo,
		topicRepo:     topicRepo,
		scheduler:     scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.subredditRepo.GetSubredditCount(); err == nil {
		health["subreddits"] = count
	}
	if count, err := h.regionRepo.GetRegionCount(); err == nil {
		health["regions"] = count
	}
	if count, err := h.postRepo.GetPostCount(); err == nil {
		health["posts"] = count
	}
	if count, err := h.topicRepo.GetTopicCount(); err == nil {
		health["topics"] = count
	}

	c.JSON(http.StatusOK, health)
}

// GetStatus reports the last run of every scheduled job.
func (h *Handler) GetStatus(c *gin.Context) {
	reports := h.scheduler.Reports()

	jobs := make([]map[string]interface{}, 0, len(reports))
	for _, name := range h.scheduler.JobNames() {
		info := map[string]interface{}{
			"job": name,
		}
		if report, ok := reports[name]; ok {
			info["stage"] = report.Stage
			info["started_at"] = report.StartedAt
			info["finished_at"] = report.FinishedAt
			info["written"] = report.Written
			info["dropped"] = report.Dropped
			if report.Error != "" {
				info["error"] = report.Error
			}
		}
		jobs = append(jobs, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// APITriggerJob enqueues one named job out of schedule; overlapping
// triggers for a running job are skipped by the scheduler.
func (h *Handler) APITriggerJob(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing job name parameter"})
		return
	}

	if err := h.scheduler.TriggerJob(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job":    name,
		"status": "enqueued",
	})
}
