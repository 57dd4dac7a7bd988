package hive

import (
	"context"
	"errors"
	"fmt"
)

// MailboxGoal is the reserved goal that makes an orchestrator drain its own
// mailbox and act on the first message instead of consulting the planner.
const MailboxGoal = "check mailbox and execute tasks"

// ErrPlanningFailed is the only error the orchestrator's public entry point
// can return. Every other failure is captured into step or mission state.
var ErrPlanningFailed = errors.New("planning failed")

// MissionStore persists completed missions. Append assigns the sequential
// mission id and timestamp; History returns the most recent records in
// chronological order.
type MissionStore interface {
	Append(ctx context.Context, mission *Mission) (int64, error)
	History(ctx context.Context, limit int) ([]Mission, error)
}

// MissionReport is what a mission run hands back to the caller: overall
// success, the mission record, and the full step trace for diagnosis.
type MissionReport struct {
	Success bool           `json:"success"`
	Mission *Mission       `json:"mission"`
	Steps   []*MissionStep `json:"steps"`
}

// OrchestratorOptions wires the collaborators an orchestrator needs. All
// shared state (registries, bus, store) is passed in explicitly; there are
// no process-wide singletons.
type OrchestratorOptions struct {
	Planner      Planner
	Reflector    Reflector
	Capabilities *CapabilityRegistry
	Agents       *AgentRegistry
	Bus          *MessageBus
	Store        MissionStore
	Feedback     FeedbackGate
	Telemetry    Telemetry
	// TaskRoutes maps mailbox task names to dispatchable actions for the
	// reserved mailbox goal. Defaults to DefaultTaskRoutes when empty.
	TaskRoutes map[string]string
}

// DefaultTaskRoutes lists the mailbox task names an orchestrator recognizes
// out of the box.
func DefaultTaskRoutes() map[string]string {
	return map[string]string{
		"echo": "Echo.say",
		"note": "Notebook.append",
	}
}

// Orchestrator drives one mission at a time through the planning, executing
// and completed states. Execution is strictly sequential: one monotonically
// increasing cursor, no parallelism, no skipping. A step failure never
// aborts the mission; it only redirects the remaining plan through the
// reflection verdict.
type Orchestrator struct {
	id         string
	planner    Planner
	reflection *ReflectionEngine
	dispatcher *StepDispatcher
	bus        *MessageBus
	store      MissionStore
	feedback   FeedbackGate
	telemetry  Telemetry
	routes     map[string]string
}

// NewOrchestrator builds an orchestrator from explicit collaborators.
func NewOrchestrator(id string, opts OrchestratorOptions) *Orchestrator {
	if opts.Capabilities == nil {
		opts.Capabilities = NewCapabilityRegistry()
	}
	if opts.Agents == nil {
		opts.Agents = NewAgentRegistry()
	}
	if opts.Bus == nil {
		opts.Bus = NewMessageBus()
	}
	if opts.Telemetry == nil {
		opts.Telemetry = NopTelemetry{}
	}
	if len(opts.TaskRoutes) == 0 {
		opts.TaskRoutes = DefaultTaskRoutes()
	}
	return &Orchestrator{
		id:         id,
		planner:    opts.Planner,
		reflection: NewReflectionEngine(opts.Reflector, opts.Telemetry),
		dispatcher: NewStepDispatcher(opts.Capabilities, opts.Agents),
		bus:        opts.Bus,
		store:      opts.Store,
		feedback:   opts.Feedback,
		telemetry:  opts.Telemetry,
		routes:     opts.TaskRoutes,
	}
}

// ID returns the agent id this orchestrator is addressable under.
func (o *Orchestrator) ID() string { return o.id }

// Catalog returns the planner-facing snapshot: capabilities plus the agent
// ids sharing the dispatch namespace.
func (o *Orchestrator) Catalog() Catalog {
	catalog := o.dispatcher.Capabilities.Snapshot()
	catalog.Agents = o.dispatcher.Agents.IDs()
	return catalog
}

// ExecuteMission drives a goal to completion. The returned error is non-nil
// only when planning fails, in which case nothing is persisted. Otherwise
// the report always carries the full step trace, with Success true only
// when every step completed.
func (o *Orchestrator) ExecuteMission(ctx context.Context, goal string) (*MissionReport, error) {
	mission := NewMission(goal)
	o.emit(Event{Type: EventMissionStart, AgentID: o.id, Goal: goal})

	specs, err := o.plan(ctx, goal)
	if err != nil || len(specs) == 0 {
		if err == nil {
			err = errors.New("planner returned no steps")
		}
		return &MissionReport{Success: false, Mission: mission},
			fmt.Errorf("%w: %v", ErrPlanningFailed, err)
	}

	mission.Steps = Steps(specs)
	mission.Status = MissionStatusExecuting
	o.emit(Event{Type: EventPlanReady, AgentID: o.id, Goal: goal, Metadata: map[string]any{"steps": len(mission.Steps)}})

	retried := make(map[int]bool)
	for cursor := 0; cursor < len(mission.Steps); cursor++ {
		step := mission.Steps[cursor]
		o.emit(Event{Type: EventStepStart, AgentID: o.id, StepID: step.StepID, Action: step.Action, Message: step.Reasoning})
		o.dispatcher.Dispatch(ctx, step)
		o.emit(Event{Type: EventStepFinish, AgentID: o.id, StepID: step.StepID, Action: step.Action, Message: step.Observation, Metadata: map[string]any{"status": string(step.Status)}})

		if step.Status != StepStatusFailed {
			continue
		}
		verdict := o.reflection.ReflectOnFailure(ctx, goal, step)
		o.applyVerdict(ctx, mission, cursor, step, verdict, retried)
	}

	mission.Status = MissionStatusCompleted
	mission.Result = mission.Tally()
	o.persist(ctx, mission)
	o.emit(Event{Type: EventMissionFinish, AgentID: o.id, Goal: goal, Metadata: map[string]any{
		"total":      mission.Result.TotalSteps,
		"successful": mission.Result.SuccessfulSteps,
		"failed":     mission.Result.FailedSteps,
	}})

	return &MissionReport{
		Success: mission.Result.FailedSteps == 0,
		Mission: mission,
		Steps:   mission.Steps,
	}, nil
}

// applyVerdict mutates the unexecuted suffix of the plan according to the
// reflection verdict. Steps at or before the cursor are never touched.
func (o *Orchestrator) applyVerdict(ctx context.Context, mission *Mission, cursor int, step *MissionStep, verdict Verdict, retried map[int]bool) {
	switch verdict.NextAction {
	case NextActionRetry:
		// One bounded re-dispatch per step id: splice a fresh pending copy
		// right after the cursor. Further retry verdicts for the same id
		// degrade to continue.
		if retried[step.StepID] {
			return
		}
		retried[step.StepID] = true
		tail := append([]*MissionStep{step.Clone()}, mission.Steps[cursor+1:]...)
		mission.Steps = append(mission.Steps[:cursor+1:cursor+1], tail...)
		o.emit(Event{Type: EventRetry, AgentID: o.id, StepID: step.StepID, Action: step.Action})

	case NextActionReplan:
		if len(verdict.RevisedPlan) == 0 {
			return
		}
		mission.Steps = append(mission.Steps[:cursor+1:cursor+1], Steps(verdict.RevisedPlan)...)
		o.emit(Event{Type: EventReplan, AgentID: o.id, StepID: step.StepID, Metadata: map[string]any{
			"revised_steps": len(verdict.RevisedPlan),
			"root_cause":    verdict.RootCause,
		}})

	case NextActionFeedback:
		question := verdict.Question
		if question == "" {
			question = "How should I proceed?"
		}
		answer := o.askHuman(ctx, question)
		// The answer is recorded for diagnosis but deliberately not fed
		// back into the plan or the step outcome.
		if payload, ok := step.Result.(map[string]any); ok {
			payload["human_feedback"] = answer
		} else {
			step.Result = map[string]any{"error": step.Result, "human_feedback": answer}
		}
		o.emit(Event{Type: EventHumanFeedback, AgentID: o.id, StepID: step.StepID, Message: question, Metadata: map[string]any{"answer": answer}})
	}
}

func (o *Orchestrator) askHuman(ctx context.Context, question string) string {
	if o.feedback == nil {
		return ""
	}
	answer, err := o.feedback.Ask(ctx, question)
	if err != nil {
		return ""
	}
	return answer
}

func (o *Orchestrator) plan(ctx context.Context, goal string) ([]StepSpec, error) {
	if goal == MailboxGoal {
		return o.planFromMailbox(), nil
	}
	if o.planner == nil {
		return nil, errors.New("no planner configured")
	}
	return o.planner.Plan(ctx, goal, o.Catalog())
}

// persist appends the completed mission exactly once. A store failure is
// surfaced through telemetry but never propagates; partial persistence must
// not fail an otherwise finished mission.
func (o *Orchestrator) persist(ctx context.Context, mission *Mission) {
	if o.store == nil {
		return
	}
	if _, err := o.store.Append(ctx, mission); err != nil {
		o.emit(Event{Type: EventMissionFinish, AgentID: o.id, Goal: mission.Goal, Message: "mission persistence failed", Metadata: map[string]any{"error": err.Error()}})
	}
}

// History returns the most recent persisted missions.
func (o *Orchestrator) History(ctx context.Context, limit int) ([]Mission, error) {
	if o.store == nil {
		return nil, nil
	}
	return o.store.History(ctx, limit)
}

func (o *Orchestrator) emit(event Event) {
	o.telemetry.Emit(event)
}
