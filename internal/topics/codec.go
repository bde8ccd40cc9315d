package topics

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed topics.schema.json
var topicListSchema string

// Encode serializes a topic list for persistence on the job record.
func Encode(list []Topic) (string, error) {
	raw, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode topic list: %w", err)
	}
	return string(raw), nil
}

// Decode validates a persisted topic list against the embedded schema and
// unmarshals it. Any failure means the stored list cannot be trusted; the
// caller falls back to its in-memory cache, exactly as for absent topics.
func Decode(raw string) ([]Topic, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("topic list is empty")
	}

	if err := validateTopicList(raw); err != nil {
		return nil, err
	}

	var list []Topic
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to decode topic list: %w", err)
	}
	return list, nil
}

func validateTopicList(raw string) error {
	schemaLoader := gojsonschema.NewStringLoader(topicListSchema)
	documentLoader := gojsonschema.NewStringLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("topic list is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("topic list failed validation:")
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		fmt.Fprintf(&sb, " %s: %s;", field, desc.Description())
	}
	return fmt.Errorf("%s", strings.TrimSuffix(sb.String(), ";"))
}
