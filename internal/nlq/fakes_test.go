package nlq

import (
	"context"
	"errors"

	"github.com/fleetmon/fleetmon/internal/llm"
)

type fakeLLM struct {
	response string
	err      error
	calls    []([]llm.Message)
}

func (f *fakeLLM) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) lastContent() string {
	if len(f.calls) == 0 {
		return ""
	}
	last := f.calls[len(f.calls)-1]
	return last[len(last)-1].Content
}

type fakeExecutor struct {
	result ResultSet
	err    error
	calls  int
}

func (f *fakeExecutor) Execute(context.Context, string) (ResultSet, error) {
	f.calls++
	if f.err != nil {
		return ResultSet{}, f.err
	}
	return f.result, nil
}

type fakeValidator struct {
	verdict Verdict
	err     error
}

func (f *fakeValidator) Check(context.Context, string) (Verdict, error) {
	if f.err != nil {
		return Verdict{}, f.err
	}
	return f.verdict, nil
}

type fakeSummarizer struct {
	explanation string
	err         error
	received    ResultSet
	calls       int
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string, results ResultSet) (string, error) {
	f.calls++
	f.received = results
	if f.err != nil {
		return "", f.err
	}
	return f.explanation, nil
}

var errUpstream = errors.New("upstream unavailable")
