package hive

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// EventType categorizes telemetry events emitted by the engine.
type EventType string

const (
	EventMissionStart  EventType = "mission_start"
	EventPlanReady     EventType = "plan_ready"
	EventStepStart     EventType = "step_start"
	EventStepFinish    EventType = "step_finish"
	EventReflection    EventType = "reflection"
	EventReplan        EventType = "replan"
	EventRetry         EventType = "retry"
	EventHumanFeedback EventType = "human_feedback"
	EventMissionFinish EventType = "mission_finish"
	EventMessageSent   EventType = "message_sent"
	EventMailboxDrain  EventType = "mailbox_drain"
)

// Event captures structured telemetry data for one engine transition.
type Event struct {
	Type      EventType      `json:"type"`
	AgentID   string         `json:"agent_id,omitempty"`
	Goal      string         `json:"goal,omitempty"`
	StepID    int            `json:"step_id,omitempty"`
	Action    string         `json:"action,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Telemetry receives execution traces from orchestrators. The orchestrator
// never writes to stdout itself; sinks decide how progress is surfaced.
type Telemetry interface {
	Emit(event Event)
}

// MultiplexTelemetry broadcasts events to multiple sinks.
type MultiplexTelemetry struct {
	Sinks []Telemetry
}

// Emit forwards the event to every sink.
func (m MultiplexTelemetry) Emit(event Event) {
	for _, sink := range m.Sinks {
		sink.Emit(event)
	}
}

// LoggerTelemetry writes events through the standard logger. Tiny but
// immensely helpful when debugging missions locally.
type LoggerTelemetry struct {
	Logger *log.Logger
}

// Emit logs the event.
func (t LoggerTelemetry) Emit(event Event) {
	logger := t.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("[%s] agent=%s step=%d action=%s msg=%s meta=%v\n",
		event.Type, event.AgentID, event.StepID, event.Action, event.Message, event.Metadata)
}

// JSONFileTelemetry writes events as newline-delimited JSON so external
// tools can tail the mission stream in real time.
type JSONFileTelemetry struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewJSONFileTelemetry opens (or creates) the log file in append mode.
func NewJSONFileTelemetry(path string) (*JSONFileTelemetry, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONFileTelemetry{file: f, enc: json.NewEncoder(f)}, nil
}

// Emit writes the JSON record.
func (j *JSONFileTelemetry) Emit(event Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = j.enc.Encode(event)
}

// Close releases the file handle.
func (j *JSONFileTelemetry) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file != nil {
		return j.file.Close()
	}
	return nil
}

// NopTelemetry discards every event. Useful default so callers never need
// nil checks.
type NopTelemetry struct{}

// Emit drops the event.
func (NopTelemetry) Emit(Event) {}
