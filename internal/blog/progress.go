package blog

import (
	"math"

	"github.com/google/uuid"
)

// Progress is the client-facing progress snapshot for a job.
type Progress struct {
	JobID      uuid.UUID `json:"job_id"`
	Status     Status    `json:"status"`
	Message    string    `json:"message"`
	Percentage int       `json:"progress_percentage"`
}

var statusMessages = map[Status]string{
	StatusPending:         "Initializing blog creation...",
	StatusTopicGeneration: "Generating trending topics...",
	StatusContentPlanning: "Creating detailed content plan...",
	StatusWriting:         "Writing blog content...",
	StatusEditing:         "Editing and refining content...",
	StatusSEOOptimization: "Optimizing for SEO...",
	StatusCompleted:       "Blog creation completed!",
	StatusFailed:          "Blog creation failed",
	StatusPaused:          "Pipeline was paused",
}

// StatusMessage returns the fixed user-facing message for a status,
// defaulting to a generic message for unrecognized values.
func StatusMessage(s Status) string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return "Processing..."
}

// ComputeProgress derives the progress snapshot for a job. The primary
// path uses the completion flags: round(100 * done / 5). When the completion
// map is absent or missing keys it falls back to the status ordinal over the
// seven main-path statuses; failed and paused have no ordinal and report 0
// on that path.
func ComputeProgress(j *Job) Progress {
	return Progress{
		JobID:      j.ID,
		Status:     j.Status,
		Message:    StatusMessage(j.Status),
		Percentage: percentage(j),
	}
}

func percentage(j *Job) int {
	if j.StepTracked() {
		return int(math.Round(float64(j.CompletedSteps()) / 5.0 * 100.0))
	}
	idx, ok := j.Status.Ordinal()
	if !ok {
		return 0
	}
	return int(math.Round(float64(idx) / 6.0 * 100.0))
}
