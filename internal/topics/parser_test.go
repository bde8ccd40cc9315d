package topics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGeneration = `Here are this week's blog post candidates:

**[Trending Now]**

1. **Title:** "Edge Inference Goes Mainstream"
Major cloud vendors shipped on-device inference kits this quarter.
Suggested angle: cost comparison against hosted endpoints.
Intended audience: platform engineers.

2. **Small Language Models in Production**
Why sub-billion parameter models are displacing larger ones for routine tasks.

**[Needs Explanation]**

3. **Title**: Mixture-of-Experts, Plainly
A walkthrough of sparse routing for readers who know transformers.

4. "Quantization Without Tears"
What int8 and int4 actually do to accuracy.

**[Thought Leadership]**

5. **Title: The End of Prompt Engineering**
An argument that structured tool use replaces prompt craft.
`

func TestParseSampleGeneration(t *testing.T) {
	list := Parse(sampleGeneration)
	require.Len(t, list, 5)

	assert.Equal(t, "Edge Inference Goes Mainstream", list[0].Title)
	assert.Equal(t, "Trending Now", list[0].Category)
	assert.Equal(t, 1, list[0].Number)
	require.Len(t, list[0].Details, 3)
	assert.Equal(t, "Major cloud vendors shipped on-device inference kits this quarter.", list[0].Details[0])

	assert.Equal(t, "Small Language Models in Production", list[1].Title)
	assert.Equal(t, "Trending Now", list[1].Category)

	assert.Equal(t, "Mixture-of-Experts, Plainly", list[2].Title)
	assert.Equal(t, "Needs Explanation", list[2].Category)

	assert.Equal(t, "Quantization Without Tears", list[3].Title)
	assert.Equal(t, "Needs Explanation", list[3].Category)

	assert.Equal(t, "The End of Prompt Engineering", list[4].Title)
	assert.Equal(t, "Thought Leadership", list[4].Category)
	require.Len(t, list[4].Details, 1)
}

func TestParseRenumbersByAppearance(t *testing.T) {
	content := `**[Trending Now]**
7. First entry
9. Second entry
7. Third entry`

	list := Parse(content)
	require.Len(t, list, 3)
	assert.Equal(t, 1, list[0].Number)
	assert.Equal(t, 2, list[1].Number)
	assert.Equal(t, 3, list[2].Number)
	assert.Equal(t, "First entry", list[0].Title)
	assert.Equal(t, "Third entry", list[2].Title)
}

func TestParseTitleStripping(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "bold label with colon inside", line: `1. **Title:** Practical RAG`, want: "Practical RAG"},
		{name: "bold label colon outside", line: `1. **Title**: Practical RAG`, want: "Practical RAG"},
		{name: "unterminated bold label", line: `1. **Title: Practical RAG**`, want: "Practical RAG"},
		{name: "straight quotes", line: `1. "Practical RAG"`, want: "Practical RAG"},
		{name: "curly quotes", line: "1. “Practical RAG”", want: "Practical RAG"},
		{name: "nested quotes", line: "1. \"“Practical RAG”\"", want: "Practical RAG"},
		{name: "bare bold", line: `1. **Practical RAG**`, want: "Practical RAG"},
		{name: "plain", line: `1. Practical RAG`, want: "Practical RAG"},
		{name: "no title falls back to raw line", line: `3.`, want: "3."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := Parse(tt.line)
			require.Len(t, list, 1)
			assert.Equal(t, tt.want, list[0].Title)
		})
	}
}

func TestParseSkipsPreambleAndBlankLines(t *testing.T) {
	content := "Intro chatter that mentions nothing numbered.\n\n**[Trending Now]**\n\n1. Topic one\n\ndetail after a blank line\n"
	list := Parse(content)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"detail after a blank line"}, list[0].Details)
}

func TestParseCategoryMarkerClosesTopic(t *testing.T) {
	content := `**[Trending Now]**
1. Topic one
detail for one
**[Needs Explanation]**
stray line outside any topic
2. Topic two`

	list := Parse(content)
	require.Len(t, list, 2)
	assert.Equal(t, "Trending Now", list[0].Category)
	assert.Equal(t, []string{"detail for one"}, list[0].Details)
	assert.Equal(t, "Needs Explanation", list[1].Category)
	assert.Empty(t, list[1].Details)
}

func TestParseEmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("no numbered lines here\njust prose"))
}

func TestSelectByNumberRoundTrip(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("**[Trending Now]**\n")
	for i := 1; i <= 15; i++ {
		if i == 6 {
			sb.WriteString("**[Needs Explanation]**\n")
		}
		if i == 11 {
			sb.WriteString("**[Thought Leadership]**\n")
		}
		fmt.Fprintf(&sb, "%d. **Title:** \"Topic number %d\"\nDetail line for %d.\n", i, i, i)
	}

	list := Parse(sb.String())
	require.Len(t, list, 15)

	for k := 1; k <= 15; k++ {
		sel := SelectByNumber(list, k)
		require.NotNil(t, sel, "selection %d", k)
		assert.Equal(t, fmt.Sprintf("Topic number %d", k), sel.Title)
		assert.Equal(t, fmt.Sprintf("Detail line for %d.", k), sel.Details)
	}

	assert.Nil(t, SelectByNumber(list, 0))
	assert.Nil(t, SelectByNumber(list, 16))
	assert.Nil(t, SelectByNumber(nil, 1))
}

func TestSelectionTextRoundTrip(t *testing.T) {
	sel := &Selection{
		Title:   "Edge Inference Goes Mainstream",
		Details: "Line one.\nLine two.",
	}

	rebuilt := ParseSelection(sel.Text())
	assert.Equal(t, sel.Title, rebuilt.Title)
	assert.Equal(t, sel.Details, rebuilt.Details)

	bare := ParseSelection("Just a title")
	assert.Equal(t, "Just a title", bare.Title)
	assert.Equal(t, "", bare.Details)
}
