package pipeline

import (
	"context"
	"strings"

	"github.com/marcus/blog-pipeline/internal/blog"
	"github.com/marcus/blog-pipeline/internal/topics"
)

// StepFunctions is the set of generation steps the orchestrator drives.
// Implemented by the agents package; tests substitute fakes.
type StepFunctions interface {
	GenerateTopics(ctx context.Context) (string, error)
	PlanContent(ctx context.Context, topicDetails string) (string, error)
	WriteDraft(ctx context.Context, plan string) (string, error)
	EditDraft(ctx context.Context, draft string) (string, error)
	OptimizeSEO(ctx context.Context, edited string) (string, error)
}

// stepDef describes one continuation step: the status it runs under, the
// status that follows it, how to recognize its artifact on the job record,
// how to compute the artifact, and where to persist it.
type stepDef struct {
	Name       string
	Status     blog.Status
	Next       blog.Status
	IsComplete func(job *blog.Job) bool
	Run        func(ctx context.Context, fns StepFunctions, job *blog.Job, sel *topics.Selection) (string, error)
	Assign     func(patch *blog.JobPatch, artifact string)
}

// continuationSteps is the fixed order the run loop iterates after topic
// selection. Artifact presence, not the completion flag, decides skipping.
func continuationSteps() []stepDef {
	return []stepDef{
		{
			Name:       blog.StepContentPlanning,
			Status:     blog.StatusContentPlanning,
			Next:       blog.StatusWriting,
			IsComplete: func(job *blog.Job) bool { return hasText(job.ContentPlan) },
			Run: func(ctx context.Context, fns StepFunctions, _ *blog.Job, sel *topics.Selection) (string, error) {
				return fns.PlanContent(ctx, sel.Text())
			},
			Assign: func(patch *blog.JobPatch, artifact string) { patch.ContentPlan = &artifact },
		},
		{
			Name:       blog.StepWriting,
			Status:     blog.StatusWriting,
			Next:       blog.StatusEditing,
			IsComplete: func(job *blog.Job) bool { return hasText(job.Draft) },
			Run: func(ctx context.Context, fns StepFunctions, job *blog.Job, _ *topics.Selection) (string, error) {
				return fns.WriteDraft(ctx, text(job.ContentPlan))
			},
			Assign: func(patch *blog.JobPatch, artifact string) { patch.Draft = &artifact },
		},
		{
			Name:       blog.StepEditing,
			Status:     blog.StatusEditing,
			Next:       blog.StatusSEOOptimization,
			IsComplete: func(job *blog.Job) bool { return hasText(job.Edited) },
			Run: func(ctx context.Context, fns StepFunctions, job *blog.Job, _ *topics.Selection) (string, error) {
				return fns.EditDraft(ctx, text(job.Draft))
			},
			Assign: func(patch *blog.JobPatch, artifact string) { patch.Edited = &artifact },
		},
		{
			Name:       blog.StepSEOOptimization,
			Status:     blog.StatusSEOOptimization,
			Next:       blog.StatusCompleted,
			IsComplete: func(job *blog.Job) bool { return hasText(job.SEOOutput) },
			Run: func(ctx context.Context, fns StepFunctions, job *blog.Job, _ *topics.Selection) (string, error) {
				return fns.OptimizeSEO(ctx, text(job.Edited))
			},
			Assign: func(patch *blog.JobPatch, artifact string) { patch.SEOOutput = &artifact },
		},
	}
}

func hasText(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}

func text(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
