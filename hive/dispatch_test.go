package hive

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func dispatchStep(t *testing.T, d *StepDispatcher, action string, params map[string]any) *MissionStep {
	t.Helper()
	step := NewMissionStep(1, action, params, "")
	d.Dispatch(context.Background(), step)
	return step
}

func TestDispatchInvalidActionFormat(t *testing.T) {
	d := NewStepDispatcher(NewCapabilityRegistry(), NewAgentRegistry())
	for _, action := range []string{"", "Echo", "Echo.say.extra", ".say", "Echo."} {
		step := dispatchStep(t, d, action, nil)
		require.Equal(t, StepStatusFailed, step.Status, "action %q", action)
		require.Equal(t, "invalid action format: "+action, step.Observation)
	}
}

func TestDispatchUnknownTarget(t *testing.T) {
	d := NewStepDispatcher(NewCapabilityRegistry(), NewAgentRegistry())
	step := dispatchStep(t, d, "Ghost.say", nil)
	require.Equal(t, StepStatusFailed, step.Status)
	require.Equal(t, "no agent or capability named Ghost", step.Observation)
}

func TestDispatchSuccess(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.Register(echoCapability())
	d := NewStepDispatcher(registry, nil)

	step := dispatchStep(t, d, "Echo.say", map[string]any{"text": "hello"})
	require.Equal(t, StepStatusCompleted, step.Status)
	require.Equal(t, "hello", step.Observation)
	data, ok := step.Result.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "hello", data["text"])
}

func TestDispatchSuccessWithoutMessage(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.Register(stubCapability{name: "Quiet", fn: func(context.Context, string, map[string]any) (Outcome, error) {
		return Outcome{Success: true}, nil
	}})
	d := NewStepDispatcher(registry, nil)

	step := dispatchStep(t, d, "Quiet.run", nil)
	require.Equal(t, StepStatusCompleted, step.Status)
	require.Equal(t, "Action completed successfully", step.Observation)
}

func TestDispatchFailureOutcome(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.Register(stubCapability{name: "Flaky", fn: func(context.Context, string, map[string]any) (Outcome, error) {
		return FailureOutcome("boom", map[string]any{"code": 7}), nil
	}})
	d := NewStepDispatcher(registry, nil)

	step := dispatchStep(t, d, "Flaky.run", nil)
	require.Equal(t, StepStatusFailed, step.Status)
	require.Equal(t, "Error: boom", step.Observation)
	payload, ok := step.Result.(map[string]any)
	require.True(t, ok)
	require.Equal(t, map[string]any{"code": 7}, payload["error"])
}

func TestDispatchExecuteError(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.Register(stubCapability{name: "Broken", fn: func(context.Context, string, map[string]any) (Outcome, error) {
		return Outcome{}, errors.New("wire cut")
	}})
	d := NewStepDispatcher(registry, nil)

	step := dispatchStep(t, d, "Broken.run", nil)
	require.Equal(t, StepStatusFailed, step.Status)
	require.Equal(t, "execution error: wire cut", step.Observation)
}

func TestDispatchRecoversPanic(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.Register(stubCapability{name: "Panicky", fn: func(context.Context, string, map[string]any) (Outcome, error) {
		panic("kaboom")
	}})
	d := NewStepDispatcher(registry, nil)

	step := dispatchStep(t, d, "Panicky.run", nil)
	require.Equal(t, StepStatusFailed, step.Status)
	require.Equal(t, "execution error: capability panic: kaboom", step.Observation)
}

func TestDispatchMalformedResponse(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.Register(stubCapability{name: "Mute", fn: func(context.Context, string, map[string]any) (Outcome, error) {
		return Outcome{}, nil
	}})
	d := NewStepDispatcher(registry, nil)

	step := dispatchStep(t, d, "Mute.run", nil)
	require.Equal(t, StepStatusFailed, step.Status)
	require.Equal(t, "malformed capability response", step.Observation)
}

func TestDispatchAgentShadowsCapability(t *testing.T) {
	capabilities := NewCapabilityRegistry()
	capabilities.Register(stubCapability{name: "queen", fn: func(context.Context, string, map[string]any) (Outcome, error) {
		return FailureOutcome("capability should not win", nil), nil
	}})
	agents := NewAgentRegistry()
	orch := NewOrchestrator("queen", OrchestratorOptions{})
	agents.Register("queen", orch)
	d := NewStepDispatcher(capabilities, agents)

	step := dispatchStep(t, d, "queen.check_mailbox", nil)
	require.Equal(t, StepStatusCompleted, step.Status)
	require.Equal(t, "Drained 0 message(s)", step.Observation)
}
