package nlq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fleetmon/fleetmon/internal/llm"
)

// DefaultPreviewRows bounds how many result rows are forwarded to the
// summarization prompt, independent of the executor's own cap.
const DefaultPreviewRows = 5

// Summarizer turns the question and a bounded preview of the result set into
// a natural-language explanation with one completion call.
type Summarizer struct {
	client      llm.Client
	previewRows int
}

func NewSummarizer(client llm.Client, previewRows int) *Summarizer {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	return &Summarizer{client: client, previewRows: previewRows}
}

func (s *Summarizer) PreviewRows() int {
	return s.previewRows
}

func (s *Summarizer) Summarize(ctx context.Context, question string, results ResultSet) (string, error) {
	preview := results.Rows
	if len(preview) > s.previewRows {
		preview = preview[:s.previewRows]
	}
	previewJSON, err := json.Marshal(preview)
	if err != nil {
		return "", &PipelineError{Kind: FailureSummary, Err: fmt.Errorf("encode result preview: %w", err)}
	}

	content, err := s.client.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(responseFormattingPrompt, question, string(previewJSON))},
	})
	if err != nil {
		return "", &PipelineError{Kind: FailureSummary, Err: err}
	}
	return strings.TrimSpace(content), nil
}
