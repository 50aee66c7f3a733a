package api

import (
	"github.com/velkozz/social-ingest/app/database"
	"github.com/velkozz/social-ingest/app/tasks"
)

type Handler struct {
	subredditRepo database.SubredditRepository
	regionRepo    database.RegionRepository
	postRepo      database.PostRepository
	topicRepo     database.TopicRepository
	scheduler     tasks.TaskSchedulerInterface
}
