package nlq

import (
	"context"
	"fmt"
	"strings"

	"github.com/fleetmon/fleetmon/internal/llm"
)

// SemanticValidator asks a reviewer-role model for a second opinion on the
// candidate statement. It catches obfuscated or structurally-valid-but-unsafe
// constructs that token matching cannot, and complements the static check
// rather than replacing it.
type SemanticValidator struct {
	client llm.Client
}

func NewSemanticValidator(client llm.Client) *SemanticValidator {
	return &SemanticValidator{client: client}
}

func (v *SemanticValidator) Check(ctx context.Context, statement string) (Verdict, error) {
	content, err := v.client.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(sqlValidationPrompt, statement)},
	})
	if err != nil {
		// Infrastructure failure, not a policy rejection.
		return Verdict{}, &PipelineError{Kind: FailureValidation, Err: err}
	}

	verdict := strings.TrimSpace(content)
	if strings.HasPrefix(verdict, "SAFE") {
		return Accept(), nil
	}
	return Reject(ReasonReviewerUnsafe, verdict), nil
}
