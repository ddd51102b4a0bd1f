package nlq

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/fleetmon/fleetmon/internal/llm"
)

// Generator turns a natural-language question into a candidate SQL statement
// with a single completion call. It never touches the datastore.
type Generator struct {
	client llm.Client
}

func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Generate(ctx context.Context, question string) (string, error) {
	content, err := g.client.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(sqlGenerationSystemPrompt, DatabaseSchema)},
		{Role: llm.RoleUser, Content: question},
	})
	if err != nil {
		return "", &PipelineError{Kind: FailureGeneration, Err: err}
	}

	candidate := stripFormattingFences(content)
	if candidate == "" {
		return "", &PipelineError{Kind: FailureGeneration, Err: fmt.Errorf("model returned no SQL payload")}
	}
	return candidate, nil
}

var fenceLine = regexp.MustCompile("^```[a-zA-Z0-9]*$")

// stripFormattingFences removes code-fence markers the model may wrap its
// output in, however many fenced blocks appear, and trims surrounding
// whitespace. Only fence lines are dropped; the SQL payload is untouched.
func stripFormattingFences(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if fenceLine.MatchString(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
