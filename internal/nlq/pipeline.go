package nlq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fleetmon/fleetmon/internal/observability"
)

type SQLGenerator interface {
	Generate(ctx context.Context, question string) (string, error)
}

type QueryExecutor interface {
	Execute(ctx context.Context, statement string) (ResultSet, error)
}

type ResponseSummarizer interface {
	Summarize(ctx context.Context, question string, results ResultSet) (string, error)
}

// fallbackExplanation replaces the narrative when summarization fails after a
// successful execution. The rows were already paid for; the request degrades
// instead of failing.
const fallbackExplanation = "A natural-language summary is unavailable for this query; the raw results are returned below."

// Pipeline sequences generation, both validations, execution, and
// summarization for one question. Each run holds only its own inputs and
// per-stage outputs, so concurrent runs share nothing mutable. A statement
// advances only when the current stage succeeds; it reaches the executor only
// after both validators accept it.
type Pipeline struct {
	Generator   SQLGenerator
	Static      Validator
	Semantic    Validator
	Executor    QueryExecutor
	Summarizer  ResponseSummarizer
	PreviewRows int
	Logger      *slog.Logger
}

func (p *Pipeline) Ask(ctx context.Context, question string) (Response, error) {
	observability.IncrementAskRequest()

	statement, err := p.generate(ctx, question)
	if err != nil {
		return Response{}, p.fail(ctx, err)
	}

	if err := p.validate(ctx, "static_validate", p.Static, statement); err != nil {
		return Response{}, p.fail(ctx, err)
	}
	if err := p.validate(ctx, "semantic_validate", p.Semantic, statement); err != nil {
		return Response{}, p.fail(ctx, err)
	}

	results, err := p.execute(ctx, statement)
	if err != nil {
		return Response{}, p.fail(ctx, err)
	}

	explanation := p.summarize(ctx, question, results)

	previewRows := p.PreviewRows
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	if len(results.Rows) > previewRows {
		// Appended here, not by the model, so the note is always present and
		// accurate when the summary covers a subset.
		explanation += fmt.Sprintf("\n\nNote: Showing summary of %d total results.", len(results.Rows))
	}

	return Response{
		Query:       question,
		SQL:         statement,
		ResultCount: len(results.Rows),
		Results:     results.Rows,
		Explanation: explanation,
	}, nil
}

func (p *Pipeline) generate(ctx context.Context, question string) (string, error) {
	start := time.Now()
	statement, err := p.Generator.Generate(ctx, question)
	observability.ObserveAskStage("generate", time.Since(start))
	return statement, err
}

func (p *Pipeline) validate(ctx context.Context, stage string, validator Validator, statement string) error {
	start := time.Now()
	verdict, err := validator.Check(ctx, statement)
	observability.ObserveAskStage(stage, time.Since(start))
	if err != nil {
		return err
	}
	if !verdict.Accepted {
		observability.IncrementAskRejection(string(verdict.Reason))
		return &PipelineError{Kind: FailureRejection, Reason: verdict.Reason, Detail: verdict.Detail, SQL: statement}
	}
	return nil
}

func (p *Pipeline) execute(ctx context.Context, statement string) (ResultSet, error) {
	start := time.Now()
	results, err := p.Executor.Execute(ctx, statement)
	observability.ObserveAskStage("execute", time.Since(start))
	return results, err
}

func (p *Pipeline) summarize(ctx context.Context, question string, results ResultSet) string {
	start := time.Now()
	explanation, err := p.Summarizer.Summarize(ctx, question, results)
	observability.ObserveAskStage("summarize", time.Since(start))
	if err != nil {
		observability.IncrementAskFailure(string(FailureSummary))
		if p.Logger != nil {
			p.Logger.WarnContext(ctx, "summarization failed, returning raw results", slog.Any("error", err))
		}
		return fallbackExplanation
	}
	return explanation
}

func (p *Pipeline) fail(ctx context.Context, err error) error {
	kind := FailureKind("unknown")
	if perr, ok := err.(*PipelineError); ok {
		kind = perr.Kind
	}
	observability.IncrementAskFailure(string(kind))
	if p.Logger != nil {
		p.Logger.ErrorContext(ctx, "ask pipeline halted",
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
	}
	return err
}
