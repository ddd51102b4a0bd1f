// Package nlq turns a free-text question about the device fleet into a
// vetted, read-only SQL statement, executes it, and summarizes the result.
// A candidate statement is never executed before both the static and the
// semantic validator accept it.
package nlq

import (
	"context"
	"errors"
	"fmt"
)

// Row maps result-column names to scalar values for one result row.
type Row map[string]any

// ResultSet is the ordered outcome of one executed statement. Columns
// preserves the column order of the statement; Rows preserves row order.
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// Response is the caller-facing outcome of one pipeline run. It is assembled
// once per request and never persisted.
type Response struct {
	Query       string `json:"query"`
	SQL         string `json:"sql"`
	ResultCount int    `json:"result_count"`
	Results     []Row  `json:"results"`
	Explanation string `json:"explanation"`
}

type RejectReason string

const (
	ReasonDangerousKeyword RejectReason = "dangerous_keyword"
	ReasonNotASelect       RejectReason = "not_a_select"
	ReasonReviewerUnsafe   RejectReason = "reviewer_unsafe"
)

// Verdict is one validator's accept/reject outcome.
type Verdict struct {
	Accepted bool
	Reason   RejectReason
	Detail   string
}

func Accept() Verdict {
	return Verdict{Accepted: true}
}

func Reject(reason RejectReason, detail string) Verdict {
	return Verdict{Reason: reason, Detail: detail}
}

// Validator checks one candidate statement against the read-only policy.
// A rejected Verdict is a policy decision; a non-nil error means the check
// itself could not be performed.
type Validator interface {
	Check(ctx context.Context, statement string) (Verdict, error)
}

type FailureKind string

const (
	FailureGeneration FailureKind = "generation"
	FailureRejection  FailureKind = "rejection"
	FailureValidation FailureKind = "validation"
	FailureExecution  FailureKind = "execution"
	FailureSummary    FailureKind = "summary"
)

// PipelineError classifies a halted pipeline run. Kind FailureRejection is a
// deliberate policy rejection; every other kind is a processing failure.
type PipelineError struct {
	Kind   FailureKind
	Reason RejectReason
	Detail string
	SQL    string
	Err    error
}

func (e *PipelineError) Error() string {
	switch e.Kind {
	case FailureRejection:
		return fmt.Sprintf("statement rejected (%s): %s", e.Reason, e.Detail)
	case FailureGeneration:
		return fmt.Sprintf("sql generation failed: %v", e.Err)
	case FailureValidation:
		return fmt.Sprintf("semantic validation failed: %v", e.Err)
	case FailureExecution:
		return fmt.Sprintf("query execution failed: %v", e.Err)
	case FailureSummary:
		return fmt.Sprintf("result summarization failed: %v", e.Err)
	default:
		return fmt.Sprintf("pipeline failed: %v", e.Err)
	}
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRejection reports whether err represents a policy rejection rather than
// an infrastructure failure. Callers map rejections to client errors.
func IsRejection(err error) bool {
	var perr *PipelineError
	return errors.As(err, &perr) && perr.Kind == FailureRejection
}
