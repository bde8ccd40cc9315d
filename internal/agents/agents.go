// Package agents holds the five pipeline step functions: thin
// prompt-building adapters over the LLM client. Each takes its upstream
// text artifact and produces the next one; all orchestration concerns
// (skipping, persistence, status) live in the pipeline package.
package agents

import (
	"context"
	"fmt"

	"github.com/marcus/blog-pipeline/internal/llm"
	"github.com/marcus/blog-pipeline/internal/prompts"
)

// Researcher supplies the raw source material for topic generation.
type Researcher interface {
	Research(ctx context.Context) (string, error)
}

// Agents implements the five step functions over one LLM client.
type Agents struct {
	client     llm.Client
	researcher Researcher
	retry      RetryPolicy
}

// Option configures Agents.
type Option func(*Agents)

// WithRetryPolicy overrides the call-level retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(a *Agents) { a.retry = p }
}

// New creates the step functions. researcher may be nil, in which case
// topic generation runs on the prompt alone without research material.
func New(client llm.Client, researcher Researcher, opts ...Option) *Agents {
	a := &Agents{
		client:     client,
		researcher: researcher,
		retry:      DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GenerateTopics gathers research material and produces the raw topic-list
// text: ~15 ideas across three bracketed categories.
func (a *Agents) GenerateTopics(ctx context.Context) (string, error) {
	research := ""
	if a.researcher != nil {
		material, err := a.researcher.Research(ctx)
		if err != nil {
			return "", fmt.Errorf("topic research failed: %w", err)
		}
		research = material
	}

	template, err := prompts.Get("topic_generation")
	if err != nil {
		return "", err
	}
	prompt := prompts.Format(template, map[string]string{"Research": research})

	out, err := a.generateWithRetry(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", fmt.Errorf("topic generation failed: %w", err)
	}
	return out, nil
}

// PlanContent turns the selected topic's detail text into a content plan.
func (a *Agents) PlanContent(ctx context.Context, topicDetails string) (string, error) {
	template, err := prompts.Get("content_planning")
	if err != nil {
		return "", err
	}
	prompt := prompts.Format(template, map[string]string{"Details": topicDetails})

	out, err := a.generateWithRetry(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", fmt.Errorf("content planning failed: %w", err)
	}
	return out, nil
}

// WriteDraft produces the 3000-3500 word draft from the content plan.
func (a *Agents) WriteDraft(ctx context.Context, plan string) (string, error) {
	template, err := prompts.Get("writing")
	if err != nil {
		return "", err
	}
	prompt := prompts.Format(template, map[string]string{"Plan": plan})

	out, err := a.generateWithRetry(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return "", fmt.Errorf("draft writing failed: %w", err)
	}
	return llm.CleanFencedBlock(out), nil
}

// EditDraft polishes the draft down to 2000-2500 words.
func (a *Agents) EditDraft(ctx context.Context, draft string) (string, error) {
	template, err := prompts.Get("editing")
	if err != nil {
		return "", err
	}
	prompt := prompts.Format(template, map[string]string{"Draft": draft})

	out, err := a.generateWithRetry(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", fmt.Errorf("editing failed: %w", err)
	}
	return llm.CleanFencedBlock(out), nil
}

// OptimizeSEO produces the final publication markdown with FAQs and
// references.
func (a *Agents) OptimizeSEO(ctx context.Context, edited string) (string, error) {
	template, err := prompts.Get("seo_optimization")
	if err != nil {
		return "", err
	}
	prompt := prompts.Format(template, map[string]string{"Edited": edited})

	out, err := a.generateWithRetry(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return "", fmt.Errorf("SEO optimization failed: %w", err)
	}
	return llm.CleanFencedBlock(out), nil
}
