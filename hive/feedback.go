package hive

import "context"

// FeedbackGate escalates a question to a human and blocks until an answer
// arrives. No timeout is modeled at this layer; an implementation that adds
// one should treat expiry as an empty answer so the mission continues.
type FeedbackGate interface {
	Ask(ctx context.Context, question string) (string, error)
}

// FeedbackFunc adapts a plain function to the FeedbackGate interface.
type FeedbackFunc func(ctx context.Context, question string) (string, error)

// Ask invokes the wrapped function.
func (f FeedbackFunc) Ask(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

// StaticFeedback answers every question with the same text. Used by tests
// and headless runs where no operator is present.
type StaticFeedback string

// Ask returns the canned answer.
func (s StaticFeedback) Ask(context.Context, string) (string, error) {
	return string(s), nil
}
