package hive

import (
	"context"
	"fmt"
	"sync"
)

// stubCapability routes every Execute call through fn.
type stubCapability struct {
	name string
	fn   func(ctx context.Context, method string, params map[string]any) (Outcome, error)
}

func (c stubCapability) Name() string          { return c.name }
func (c stubCapability) Description() string   { return "stub" }
func (c stubCapability) Actions() []ActionSpec { return nil }

func (c stubCapability) Execute(ctx context.Context, method string, params map[string]any) (Outcome, error) {
	return c.fn(ctx, method, params)
}

func echoCapability() Capability {
	return stubCapability{name: "Echo", fn: func(_ context.Context, method string, params map[string]any) (Outcome, error) {
		if method != "say" {
			return FailureOutcome(fmt.Sprintf("unsupported action: %s", method), nil), nil
		}
		text := fmt.Sprint(params["text"])
		return SuccessOutcome(text, map[string]any{"text": text}), nil
	}}
}

type stubPlanner struct {
	specs []StepSpec
	err   error
}

func (p stubPlanner) Plan(context.Context, string, Catalog) ([]StepSpec, error) {
	return p.specs, p.err
}

type stubReflector struct {
	verdicts []Verdict
	err      error
	calls    int
}

func (r *stubReflector) Reflect(context.Context, ReflectionRequest) (Verdict, error) {
	verdict := Verdict{NextAction: NextActionContinue}
	if r.calls < len(r.verdicts) {
		verdict = r.verdicts[r.calls]
	}
	r.calls++
	return verdict, r.err
}

// memStore records appended missions in memory.
type memStore struct {
	mu       sync.Mutex
	missions []Mission
	err      error
}

func (s *memStore) Append(_ context.Context, mission *Mission) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	mission.ID = int64(len(s.missions) + 1)
	s.missions = append(s.missions, *mission)
	return mission.ID, nil
}

func (s *memStore) History(_ context.Context, limit int) ([]Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.missions) {
		limit = len(s.missions)
	}
	out := make([]Mission, limit)
	copy(out, s.missions[len(s.missions)-limit:])
	return out, nil
}

// captureTelemetry records emitted events for assertions.
type captureTelemetry struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureTelemetry) Emit(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureTelemetry) ofType(eventType EventType) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
