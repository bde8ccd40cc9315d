package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marcus/blog-pipeline/internal/blog"
)

// jobID parses the {id} path value.
func jobID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// loadJob fetches the job, writing the error response when it cannot be
// served. Returns nil when a response was already written.
func (s *Server) loadJob(w http.ResponseWriter, r *http.Request) *blog.Job {
	id, ok := jobID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "invalid job ID")
		return nil
	}

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		log.Printf("[SERVER] failed to load job %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to load job")
		return nil
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return nil
	}
	return job
}

// handleCreateJob creates a job record and initializes its workflow
// bookkeeping.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.CreateJob(r.Context())
	if err != nil {
		log.Printf("[SERVER] failed to create job: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	if started := s.orch.Start(r.Context(), job.ID); started != nil {
		job = started
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleListJobs returns all jobs, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListJobs(r.Context())
	if err != nil {
		log.Printf("[SERVER] failed to list jobs: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// handleGetJob returns one job.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleDeleteJob removes a job and drops the orchestrator's caches for it.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "invalid job ID")
		return
	}

	deleted, err := s.store.DeleteJob(r.Context(), id)
	if err != nil {
		log.Printf("[SERVER] failed to delete job %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to delete job")
		return
	}
	if !deleted {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}

	s.orch.Forget(id)
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Blog deleted successfully"})
}

// handleProgress returns a point-in-time progress snapshot.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}
	s.jsonResponse(w, http.StatusOK, blog.ComputeProgress(job))
}

// handleGenerateTopics (re)generates the topic list for a job.
func (s *Server) handleGenerateTopics(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "invalid job ID")
		return
	}

	list, err := s.orch.GenerateTopics(r.Context(), id)
	if err != nil {
		log.Printf("[SERVER] topic generation failed for job %s: %v", id, err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"topics": list,
		"count":  len(list),
	})
}

type selectTopicRequest struct {
	TopicSelection *int `json:"topic_selection"`
}

// handleSelectTopic resolves the numbered choice and kicks off the
// continuation.
func (s *Server) handleSelectTopic(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}

	var req selectTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TopicSelection == nil {
		s.errorResponse(w, http.StatusBadRequest, "topic_selection is required")
		return
	}

	ok, err := s.orch.SelectTopic(r.Context(), job.ID, *req.TopicSelection)
	if err != nil {
		log.Printf("[SERVER] topic selection failed for job %s: %v", job.ID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to select topic")
		return
	}
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "invalid topic selection")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message":         "Topic selected, blog generation started",
		"topic_selection": *req.TopicSelection,
	})
}

type updateContentRequest struct {
	Content string `json:"content"`
}

// handleUpdateContent manually overrides the SEO-stage artifact.
func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}

	var req updateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		s.errorResponse(w, http.StatusBadRequest, "content is required")
		return
	}

	updated, err := s.store.UpdateJob(r.Context(), job.ID, blog.JobPatch{
		SEOOutput: &req.Content,
	})
	if err != nil || updated == nil {
		log.Printf("[SERVER] failed to update content for job %s: %v", job.ID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to update content")
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

// handleResume restarts a stopped pipeline.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}
	if job.Status == blog.StatusCompleted {
		s.errorResponse(w, http.StatusBadRequest, "Blog already completed")
		return
	}

	ok, err := s.orch.Resume(r.Context(), job.ID)
	if err != nil {
		log.Printf("[SERVER] resume failed for job %s: %v", job.ID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to resume")
		return
	}
	if !ok {
		decision, derr := s.orch.CanResume(r.Context(), job.ID)
		if derr != nil || decision.Reason == "" {
			s.errorResponse(w, http.StatusBadRequest, "cannot resume pipeline")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, decision.Reason)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Pipeline resumed"})
}

// handlePause cancels a running continuation.
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}

	switch job.Status {
	case blog.StatusCompleted, blog.StatusPending, blog.StatusTopicGeneration:
		s.errorResponse(w, http.StatusBadRequest, "cannot pause job in status "+string(job.Status))
		return
	}

	ok, err := s.orch.Pause(r.Context(), job.ID)
	if err != nil {
		log.Printf("[SERVER] pause failed for job %s: %v", job.ID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to pause")
		return
	}
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "no active pipeline run for this job")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Pipeline paused"})
}

// handleResumeStatus reports the CanResume classification.
func (s *Server) handleResumeStatus(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}

	decision, err := s.orch.CanResume(r.Context(), job.ID)
	if err != nil {
		log.Printf("[SERVER] resume status failed for job %s: %v", job.ID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to check resume status")
		return
	}
	s.jsonResponse(w, http.StatusOK, decision)
}

// handleProcessStatus returns the full diagnostic snapshot for a job.
func (s *Server) handleProcessStatus(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}

	decision, err := s.orch.CanResume(r.Context(), job.ID)
	if err != nil {
		log.Printf("[SERVER] process status failed for job %s: %v", job.ID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to check process status")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"job_id":          job.ID,
		"status":          job.Status,
		"is_active":       s.orch.IsActive(r.Context(), job.ID),
		"is_paused":       job.IsPaused,
		"retry_count":     job.RetryCount,
		"step_completion": job.StepCompletion,
		"error_message":   job.ErrorMessage,
		"started_at":      job.StartedAt,
		"last_activity":   job.LastActivity,
		"resume_info":     decision,
	})
}

// handleCleanup sweeps jobs that never produced topics.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	report, err := s.orch.CleanupAbandoned(r.Context())
	if err != nil {
		log.Printf("[SERVER] cleanup failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "cleanup failed")
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// streamPollInterval is how often the SSE stream re-reads job progress.
var streamPollInterval = time.Second

// handleProgressStream streams progress events until the job reaches a
// resting status or the client disconnects.
func (s *Server) handleProgressStream(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}

	stream, err := newProgressStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	for {
		if err := stream.Progress(blog.ComputeProgress(job)); err != nil {
			return
		}

		if job.Status == blog.StatusCompleted || job.Status == blog.StatusFailed || job.Status == blog.StatusPaused {
			stream.Done(job)
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-time.After(streamPollInterval):
		}

		job, err = s.store.GetJob(r.Context(), job.ID)
		if err != nil || job == nil {
			stream.Lost()
			return
		}
	}
}
