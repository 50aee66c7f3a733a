package tasks

import "time"

// Stage tracks where a job run is in its lifecycle. A failed run keeps
// the error; nothing is resumed, the job simply runs again at its next
// scheduled tick.
type Stage string

const (
	StagePending        Stage = "pending"
	StageAuthenticating Stage = "authenticating"
	StageExtracting     Stage = "extracting"
	StageWriting        Stage = "writing"
	StageCompleted      Stage = "completed"
	StageFailed         Stage = "failed"
)

// Report is the operator-visible outcome of one job run.
type Report struct {
	Job         string     `json:"job"`
	Stage       Stage      `json:"stage"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Written     int        `json:"written"`
	Dropped     int        `json:"dropped"`
	DroppedKeys []string   `json:"dropped_keys,omitempty"`
	Error       string     `json:"error,omitempty"`
}
