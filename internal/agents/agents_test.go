package agents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/marcus/blog-pipeline/internal/llm"
)

// fakeClient records prompts and serves scripted responses or errors.
type fakeClient struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
	tiers     []llm.ModelTier
}

func (c *fakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	i := c.calls
	c.calls++
	c.prompts = append(c.prompts, prompt)
	c.tiers = append(c.tiers, tier)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "generated", nil
}

func (c *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }
func (c *fakeClient) Close() error                  { return nil }

type fixedResearcher struct {
	material string
	err      error
}

func (r fixedResearcher) Research(context.Context) (string, error) {
	return r.material, r.err
}

func fastRetry() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}
}

func TestGenerateTopicsEmbedsResearch(t *testing.T) {
	client := &fakeClient{responses: []string{"**[Trending Now]**\n1. Topic"}}
	a := New(client, fixedResearcher{material: "Search: q\nTitle: t"}, WithRetryPolicy(fastRetry()))

	out, err := a.GenerateTopics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "**[Trending Now]**\n1. Topic", out)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Search: q")
	assert.Contains(t, client.prompts[0], "15 high-quality blog or whitepaper topic ideas")
	assert.Equal(t, llm.TierStandard, client.tiers[0])
}

func TestGenerateTopicsWithoutResearcher(t *testing.T) {
	client := &fakeClient{responses: []string{"topics"}}
	a := New(client, nil, WithRetryPolicy(fastRetry()))

	out, err := a.GenerateTopics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "topics", out)
}

func TestStepFunctionsBuildPromptsFromUpstream(t *testing.T) {
	tests := []struct {
		name     string
		call     func(a *Agents, ctx context.Context) (string, error)
		upstream string
		tier     llm.ModelTier
	}{
		{
			name: "plan from topic details",
			call: func(a *Agents, ctx context.Context) (string, error) {
				return a.PlanContent(ctx, "topic details here")
			},
			upstream: "topic details here",
			tier:     llm.TierStandard,
		},
		{
			name: "draft from plan",
			call: func(a *Agents, ctx context.Context) (string, error) {
				return a.WriteDraft(ctx, "the content plan")
			},
			upstream: "the content plan",
			tier:     llm.TierAdvanced,
		},
		{
			name: "edit from draft",
			call: func(a *Agents, ctx context.Context) (string, error) {
				return a.EditDraft(ctx, "the raw draft")
			},
			upstream: "the raw draft",
			tier:     llm.TierStandard,
		},
		{
			name: "seo from edited",
			call: func(a *Agents, ctx context.Context) (string, error) {
				return a.OptimizeSEO(ctx, "the edited post")
			},
			upstream: "the edited post",
			tier:     llm.TierAdvanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{responses: []string{"output"}}
			a := New(client, nil, WithRetryPolicy(fastRetry()))

			out, err := tt.call(a, context.Background())
			require.NoError(t, err)
			assert.Equal(t, "output", out)
			require.Len(t, client.prompts, 1)
			assert.Contains(t, client.prompts[0], tt.upstream)
			assert.Equal(t, tt.tier, client.tiers[0])
		})
	}
}

func TestWriteDraftStripsWrappingFence(t *testing.T) {
	client := &fakeClient{responses: []string{"```markdown\n# Post\nbody\n```"}}
	a := New(client, nil, WithRetryPolicy(fastRetry()))

	out, err := a.WriteDraft(context.Background(), "plan")
	require.NoError(t, err)
	assert.Equal(t, "# Post\nbody", out)
}

func TestRetryOnTransientErrors(t *testing.T) {
	rateLimited := &googleapi.Error{Code: 429, Message: "rate limited"}
	client := &fakeClient{
		errs:      []error{rateLimited, rateLimited, nil},
		responses: []string{"", "", "third time lucky"},
	}
	a := New(client, nil, WithRetryPolicy(fastRetry()))

	out, err := a.EditDraft(context.Background(), "draft")
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", out)
	assert.Equal(t, 3, client.calls)
}

func TestNoRetryOnPermanentError(t *testing.T) {
	badRequest := &googleapi.Error{Code: 400, Message: "bad request"}
	client := &fakeClient{errs: []error{badRequest}}
	a := New(client, nil, WithRetryPolicy(fastRetry()))

	_, err := a.PlanContent(context.Background(), "details")
	require.Error(t, err)
	assert.Equal(t, 1, client.calls)
}

func TestRetryExhaustionReturnsLastError(t *testing.T) {
	serverErr := &googleapi.Error{Code: 503, Message: "unavailable"}
	client := &fakeClient{errs: []error{serverErr, serverErr, serverErr}}
	a := New(client, nil, WithRetryPolicy(fastRetry()))

	_, err := a.OptimizeSEO(context.Background(), "edited")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unavailable")
	assert.Equal(t, 3, client.calls)
}

func TestResearchFailureAbortsTopicGeneration(t *testing.T) {
	client := &fakeClient{}
	a := New(client, fixedResearcher{err: fmt.Errorf("context canceled")}, WithRetryPolicy(fastRetry()))

	_, err := a.GenerateTopics(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, client.calls)
}
