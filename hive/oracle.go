package hive

import (
	"context"
	"strings"
)

// StepSpec is the wire form of a planned step as produced by the planner or
// by a replan verdict. Ids are taken verbatim from the oracle; no
// re-sequencing or collision checking is performed.
type StepSpec struct {
	StepID     int            `json:"step_id"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning"`
}

// Steps materializes a spec list into pending mission steps.
func Steps(specs []StepSpec) []*MissionStep {
	steps := make([]*MissionStep, 0, len(specs))
	for _, spec := range specs {
		steps = append(steps, NewMissionStep(spec.StepID, spec.Action, spec.Parameters, spec.Reasoning))
	}
	return steps
}

// Planner is the external planning oracle. An error, or an empty step list,
// aborts the mission before anything is persisted; it is the only
// mission-fatal condition in the engine.
type Planner interface {
	Plan(ctx context.Context, goal string, catalog Catalog) ([]StepSpec, error)
}

// NextAction enumerates the reflection verdict vocabulary.
type NextAction string

const (
	NextActionContinue NextAction = "continue"
	NextActionRetry    NextAction = "retry"
	NextActionReplan   NextAction = "replan"
	NextActionFeedback NextAction = "request_human_feedback"
)

// Verdict is the reflection oracle's structured answer to a failed step.
type Verdict struct {
	Success     bool       `json:"success"`
	RootCause   string     `json:"root_cause,omitempty"`
	NextAction  NextAction `json:"next_action"`
	RevisedPlan []StepSpec `json:"revised_plan,omitempty"`
	Question    string     `json:"question,omitempty"`
}

// ReflectionRequest carries the failure context sent to the reflector.
type ReflectionRequest struct {
	Goal        string         `json:"goal"`
	StepID      int            `json:"step_id"`
	Action      string         `json:"action"`
	Parameters  map[string]any `json:"parameters"`
	Observation string         `json:"observation"`
}

// Reflector is the external reflection oracle consulted when a step fails.
type Reflector interface {
	Reflect(ctx context.Context, req ReflectionRequest) (Verdict, error)
}

// ExtractJSONObject returns the outermost JSON object inside a raw model
// response, tolerating prose and markdown fences around it. When no braces
// are present it returns an empty object so unmarshalling still proceeds.
func ExtractJSONObject(raw string) string {
	raw = stripFences(raw)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end >= start {
		return raw[start : end+1]
	}
	return "{}"
}

// ExtractJSONArray returns the outermost JSON array inside a raw model
// response, or an empty array when no brackets are present.
func ExtractJSONArray(raw string) string {
	raw = stripFences(raw)
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end >= start {
		return raw[start : end+1]
	}
	return "[]"
}

func stripFences(raw string) string {
	if idx := strings.Index(raw, "```json"); idx >= 0 {
		raw = raw[idx+len("```json"):]
		if end := strings.Index(raw, "```"); end >= 0 {
			raw = raw[:end]
		}
		return strings.TrimSpace(raw)
	}
	if idx := strings.Index(raw, "```"); idx >= 0 {
		raw = raw[idx+len("```"):]
		if end := strings.Index(raw, "```"); end >= 0 {
			raw = raw[:end]
		}
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(raw)
}
