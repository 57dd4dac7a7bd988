package hive

import (
	"context"
	"fmt"
	"strings"
)

// StepDispatcher resolves a step's action reference and invokes the target,
// normalizing every outcome into step status. Its external contract is
// "never throws": parse failures, unknown targets, returned errors and
// recovered panics all become a failed step, never an error to the caller.
//
// The target token is resolved against the agent registry first, then the
// capability registry, matching the reference behavior.
type StepDispatcher struct {
	Capabilities *CapabilityRegistry
	Agents       *AgentRegistry
}

// NewStepDispatcher builds a dispatcher over the two registries. Either
// registry may be nil, in which case its namespace simply never matches.
func NewStepDispatcher(capabilities *CapabilityRegistry, agents *AgentRegistry) *StepDispatcher {
	return &StepDispatcher{Capabilities: capabilities, Agents: agents}
}

// Dispatch executes one pending step and marks it completed or failed.
func (d *StepDispatcher) Dispatch(ctx context.Context, step *MissionStep) {
	target, method, ok := splitAction(step.Action)
	if !ok {
		step.MarkFailed(fmt.Sprintf("invalid action format: %s", step.Action), nil)
		return
	}

	execute, found := d.resolve(target)
	if !found {
		step.MarkFailed(fmt.Sprintf("no agent or capability named %s", target), nil)
		return
	}

	outcome, err := safeExecute(ctx, execute, method, step.Parameters)
	if err != nil {
		step.MarkFailed(fmt.Sprintf("execution error: %v", err), err.Error())
		return
	}

	switch {
	case outcome.Success:
		observation := outcome.Message
		if observation == "" {
			observation = "Action completed successfully"
		}
		step.MarkCompleted(observation, outcome.Data)
	case outcome.Error != "":
		step.MarkFailed(fmt.Sprintf("Error: %s", outcome.Error), outcome.Details)
	default:
		step.MarkFailed("malformed capability response", nil)
	}
}

type executeFunc func(ctx context.Context, method string, params map[string]any) (Outcome, error)

func (d *StepDispatcher) resolve(target string) (executeFunc, bool) {
	if d.Agents != nil {
		if agent, ok := d.Agents.Get(target); ok {
			return agent.Execute, true
		}
	}
	if d.Capabilities != nil {
		if capability, ok := d.Capabilities.Get(target); ok {
			return capability.Execute, true
		}
	}
	return nil, false
}

// safeExecute shields the dispatcher from panicking targets.
func safeExecute(ctx context.Context, execute executeFunc, method string, params map[string]any) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("capability panic: %v", r)
		}
	}()
	return execute(ctx, method, params)
}

// splitAction parses "<target>.<method>" into its two tokens. Anything other
// than exactly two non-empty tokens is rejected.
func splitAction(action string) (target, method string, ok bool) {
	parts := strings.Split(action, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
