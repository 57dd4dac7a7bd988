package hive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapabilityRegistryNamespaces(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.Register(echoCapability())
	registry.RegisterTool("notes", &struct{}{})

	_, ok := registry.Get("Echo")
	require.True(t, ok)

	// Tools never resolve as capabilities and vice versa.
	_, ok = registry.Get("notes")
	require.False(t, ok)
	_, ok = registry.Tool("Echo")
	require.False(t, ok)
	_, ok = registry.Tool("notes")
	require.True(t, ok)
}

func TestCapabilityRegistryLastWins(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.Register(stubCapability{name: "Echo", fn: func(context.Context, string, map[string]any) (Outcome, error) {
		return FailureOutcome("old", nil), nil
	}})
	registry.Register(echoCapability())

	c, ok := registry.Get("Echo")
	require.True(t, ok)
	outcome, err := c.Execute(context.Background(), "say", map[string]any{"text": "hi"})
	require.NoError(t, err)
	require.True(t, outcome.Success)
}

func TestCapabilityRegistrySnapshot(t *testing.T) {
	registry := NewCapabilityRegistry()
	registry.Register(echoCapability())
	registry.RegisterTool("zeta", &struct{}{})
	registry.RegisterTool("alpha", &struct{}{})

	catalog := registry.Snapshot()
	require.Contains(t, catalog.Capabilities, "Echo")
	require.Equal(t, []string{"alpha", "zeta"}, catalog.Tools)
}

func TestValidateParams(t *testing.T) {
	require.Empty(t, ValidateParams(map[string]any{"text": "hi"}, "text"))
	require.Equal(t, "missing required parameters: text", ValidateParams(nil, "text"))
	require.Equal(t, "missing required parameters: a, b", ValidateParams(map[string]any{}, "a", "b"))
}

func TestAgentRegistry(t *testing.T) {
	registry := NewAgentRegistry()
	orch := NewOrchestrator("queen", OrchestratorOptions{})
	registry.Register("queen", orch)
	registry.Register("drone", NewOrchestrator("drone", OrchestratorOptions{}))

	peer, ok := registry.Get("queen")
	require.True(t, ok)
	require.NotNil(t, peer)
	_, ok = registry.Get("missing")
	require.False(t, ok)
	require.Equal(t, []string{"drone", "queen"}, registry.IDs())
}
