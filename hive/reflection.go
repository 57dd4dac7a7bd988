package hive

import "context"

// ReflectionEngine wraps the reflector oracle call made on step failure.
// The engine fails open: an oracle error or an unusable verdict resolves to
// a continue verdict so reflection can never become mission-fatal.
type ReflectionEngine struct {
	Reflector Reflector
	Telemetry Telemetry
}

// NewReflectionEngine builds the engine around a reflector oracle.
func NewReflectionEngine(reflector Reflector, telemetry Telemetry) *ReflectionEngine {
	return &ReflectionEngine{Reflector: reflector, Telemetry: telemetry}
}

var continueVerdict = Verdict{NextAction: NextActionContinue}

// ReflectOnFailure consults the oracle about a failed step and returns the
// verdict to apply.
func (e *ReflectionEngine) ReflectOnFailure(ctx context.Context, goal string, step *MissionStep) Verdict {
	if e == nil || e.Reflector == nil {
		return continueVerdict
	}
	req := ReflectionRequest{
		Goal:        goal,
		StepID:      step.StepID,
		Action:      step.Action,
		Parameters:  step.Parameters,
		Observation: step.Observation,
	}
	verdict, err := e.Reflector.Reflect(ctx, req)
	if err != nil {
		e.emit(EventReflection, step, map[string]any{"fallback": "continue", "error": err.Error()})
		return continueVerdict
	}
	if !validNextAction(verdict.NextAction) {
		e.emit(EventReflection, step, map[string]any{"fallback": "continue", "next_action": string(verdict.NextAction)})
		return continueVerdict
	}
	e.emit(EventReflection, step, map[string]any{"next_action": string(verdict.NextAction), "root_cause": verdict.RootCause})
	return verdict
}

func (e *ReflectionEngine) emit(eventType EventType, step *MissionStep, metadata map[string]any) {
	if e.Telemetry == nil {
		return
	}
	e.Telemetry.Emit(Event{Type: eventType, StepID: step.StepID, Action: step.Action, Metadata: metadata})
}

func validNextAction(action NextAction) bool {
	switch action {
	case NextActionContinue, NextActionRetry, NextActionReplan, NextActionFeedback:
		return true
	}
	return false
}
