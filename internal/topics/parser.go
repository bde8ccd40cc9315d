// Package topics turns unstructured topic-generation output into a
// structured, numbered list of candidate topics and resolves a user's
// numeric choice against it. Parsing is best-effort: malformed lines
// degrade to raw text rather than failing the generation step.
package topics

import (
	"regexp"
	"strings"
)

// Topic is one parsed candidate. Number is assigned by order of appearance
// in the source text, regardless of the numbering the generator emitted.
type Topic struct {
	Number   int      `json:"number"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Details  []string `json:"details"`
}

// Selection is a chosen topic with its detail lines joined for persistence
// and prompt building.
type Selection struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Details  string `json:"details"`
}

var (
	numberedLine = regexp.MustCompile(`^\d+\.`)
	titleCapture = regexp.MustCompile(`^\d+\.\s*(.*)$`)

	// Generators label titles inconsistently; strip the common variants.
	titlePrefixes = []*regexp.Regexp{
		regexp.MustCompile(`^\*\*Title:\*\*\s*`),
		regexp.MustCompile(`^\*\*Title:\s*`),
		regexp.MustCompile(`^\*\*Title\*\*:\s*`),
	}

	surroundingQuotes = regexp.MustCompile(`^["“”](.*?)["“”]$`)
	leadingBold       = regexp.MustCompile(`^\*\*`)
	trailingBold      = regexp.MustCompile(`\*\*$`)
)

// Parse scans generated text for category markers (a bolded bracketed label
// on its own line, e.g. **[Trending Now]**) and numbered entries. A numbered
// line starts a new topic under the current category; following non-empty
// lines accumulate as its detail lines until the next numbered line or
// marker. Topics are renumbered by appearance order.
func Parse(content string) []Topic {
	var parsed []Topic
	var current *Topic
	category := ""

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "**[") && strings.HasSuffix(line, "]**") {
			if current != nil {
				parsed = append(parsed, *current)
				current = nil
			}
			category = strings.Trim(line, "*[]")
			continue
		}

		if numberedLine.MatchString(line) {
			if current != nil {
				parsed = append(parsed, *current)
			}
			current = &Topic{
				Number:   len(parsed) + 1,
				Title:    extractTitle(line),
				Category: category,
				Details:  []string{},
			}
			continue
		}

		if current != nil {
			current.Details = append(current.Details, line)
		}
	}

	if current != nil {
		parsed = append(parsed, *current)
	}
	return parsed
}

// extractTitle strips the numbering, label prefixes, and surrounding
// quote/bold markup. A line with nothing left after stripping falls back
// to the raw trimmed line.
func extractTitle(line string) string {
	m := titleCapture.FindStringSubmatch(line)
	if m == nil {
		return line
	}

	title := m[1]
	for _, prefix := range titlePrefixes {
		title = prefix.ReplaceAllString(title, "")
	}
	// Twice: generated titles occasionally nest quote styles.
	title = surroundingQuotes.ReplaceAllString(title, "$1")
	title = surroundingQuotes.ReplaceAllString(title, "$1")
	title = leadingBold.ReplaceAllString(title, "")
	title = trailingBold.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)

	if title == "" {
		return line
	}
	return title
}

// SelectByNumber resolves a 1-based selection against the parsed list.
// Out-of-range selections return nil rather than an error; the caller
// treats that as an invalid selection.
func SelectByNumber(list []Topic, selection int) *Selection {
	if selection < 1 || selection > len(list) {
		return nil
	}
	chosen := list[selection-1]
	return &Selection{
		Title:    strings.TrimSpace(chosen.Title),
		Category: chosen.Category,
		Details:  strings.TrimSpace(strings.Join(chosen.Details, "\n")),
	}
}

// Text renders a selection the way it is persisted on the job record:
// title on the first line, detail text after.
func (s *Selection) Text() string {
	return s.Title + "\n" + s.Details
}

// ParseSelection rebuilds a Selection from the persisted text form. Used on
// resume, since the structured topic is not separately persisted.
func ParseSelection(text string) *Selection {
	lines := strings.Split(text, "\n")
	sel := &Selection{Title: lines[0]}
	if len(lines) > 1 {
		sel.Details = strings.Join(lines[1:], "\n")
	}
	return sel
}
