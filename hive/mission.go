package hive

import "time"

// StepStatus tracks the lifecycle of a single mission step. Transitions are
// one-directional: pending moves to completed or failed exactly once and a
// terminal step is never reopened.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// MissionStatus tracks the mission lifecycle. There is no failed terminal
// state for the mission itself; only planning can abort a mission.
type MissionStatus string

const (
	MissionStatusPlanning  MissionStatus = "planning"
	MissionStatusExecuting MissionStatus = "executing"
	MissionStatusCompleted MissionStatus = "completed"
)

// MissionStep is the persisted unit of work. Action is a two-token
// "<target>.<method>" reference resolved by the dispatcher; Reasoning is
// free text and never interpreted programmatically. Status, Observation and
// Result are mutated only by the StepDispatcher during the step's single
// execution attempt.
type MissionStep struct {
	StepID      int            `json:"step_id"`
	Action      string         `json:"action"`
	Parameters  map[string]any `json:"parameters"`
	Reasoning   string         `json:"reasoning"`
	Status      StepStatus     `json:"status"`
	Observation string         `json:"observation,omitempty"`
	Result      any            `json:"result,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// NewMissionStep builds a pending step stamped with the current time.
func NewMissionStep(id int, action string, parameters map[string]any, reasoning string) *MissionStep {
	if parameters == nil {
		parameters = map[string]any{}
	}
	return &MissionStep{
		StepID:     id,
		Action:     action,
		Parameters: parameters,
		Reasoning:  reasoning,
		Status:     StepStatusPending,
		Timestamp:  time.Now().UTC(),
	}
}

// MarkCompleted records a successful execution.
func (s *MissionStep) MarkCompleted(observation string, data any) {
	s.Status = StepStatusCompleted
	s.Observation = observation
	s.Result = data
}

// MarkFailed records a failed execution. Details travel in an error payload
// so diagnostic context survives persistence alongside the observation.
func (s *MissionStep) MarkFailed(observation string, details any) {
	s.Status = StepStatusFailed
	s.Observation = observation
	s.Result = map[string]any{"error": details}
}

// Clone returns a fresh pending copy of the step, keeping the original id
// and inputs. Used by the retry verdict, which must not reopen a terminal
// step.
func (s *MissionStep) Clone() *MissionStep {
	params := make(map[string]any, len(s.Parameters))
	for k, v := range s.Parameters {
		params[k] = v
	}
	return NewMissionStep(s.StepID, s.Action, params, s.Reasoning)
}

// MissionResult aggregates step outcomes at mission completion.
type MissionResult struct {
	TotalSteps      int `json:"total_steps"`
	SuccessfulSteps int `json:"successful_steps"`
	FailedSteps     int `json:"failed_steps"`
}

// Mission is the container driven to completion by the orchestrator. ID is
// assigned by the persistence store at append time. Steps at or before the
// execution cursor are immutable history; a replan event may replace only
// the unexecuted suffix.
type Mission struct {
	ID        int64          `json:"id"`
	Goal      string         `json:"goal"`
	Status    MissionStatus  `json:"status"`
	Steps     []*MissionStep `json:"steps"`
	Result    *MissionResult `json:"result,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewMission starts a mission in the planning state.
func NewMission(goal string) *Mission {
	return &Mission{
		Goal:      goal,
		Status:    MissionStatusPlanning,
		Timestamp: time.Now().UTC(),
	}
}

// Tally computes the aggregate result over the current step list.
func (m *Mission) Tally() *MissionResult {
	result := &MissionResult{TotalSteps: len(m.Steps)}
	for _, step := range m.Steps {
		if step.Status == StepStatusCompleted {
			result.SuccessfulSteps++
		} else {
			result.FailedSteps++
		}
	}
	return result
}
