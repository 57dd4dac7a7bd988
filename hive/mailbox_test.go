package hive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newMailboxOrchestrator(t *testing.T) (*Orchestrator, *MessageBus, *memStore) {
	t.Helper()
	bus := NewMessageBus()
	store := &memStore{}
	capabilities := NewCapabilityRegistry()
	capabilities.Register(echoCapability())
	agents := NewAgentRegistry()
	orch := NewOrchestrator("queen", OrchestratorOptions{
		Capabilities: capabilities,
		Agents:       agents,
		Bus:          bus,
		Store:        store,
	})
	agents.Register("queen", orch)
	return orch, bus, store
}

func TestMailboxGoalEmptyMailbox(t *testing.T) {
	orch, bus, _ := newMailboxOrchestrator(t)

	report, err := orch.ExecuteMission(context.Background(), MailboxGoal)
	require.NoError(t, err)
	require.True(t, report.Success)
	require.Len(t, report.Steps, 1)

	// The self-reply lands back in the queen's own mailbox.
	messages := bus.Receive("queen")
	require.Len(t, messages, 1)
	require.Equal(t, "No new messages in mailbox.", messages[0].Payload["details"])
}

func TestMailboxGoalKnownTask(t *testing.T) {
	orch, bus, store := newMailboxOrchestrator(t)
	bus.Send("queen", "worker", map[string]any{
		"task":   "echo",
		"params": map[string]any{"text": "relay this"},
	})

	report, err := orch.ExecuteMission(context.Background(), MailboxGoal)
	require.NoError(t, err)
	require.True(t, report.Success)
	require.Len(t, report.Steps, 2)
	require.Equal(t, "Echo.say", report.Steps[0].Action)
	require.Equal(t, "relay this", report.Steps[0].Observation)

	// Completion reply goes to the original sender.
	replies := bus.Receive("worker")
	require.Len(t, replies, 1)
	require.Equal(t, "completed", replies[0].Payload["status"])
	require.Equal(t, "echo", replies[0].Payload["task"])

	require.Len(t, store.missions, 1)
}

func TestMailboxGoalUnknownTask(t *testing.T) {
	orch, bus, _ := newMailboxOrchestrator(t)
	bus.Send("queen", "worker", map[string]any{"task": "unknown_task"})

	report, err := orch.ExecuteMission(context.Background(), MailboxGoal)
	require.NoError(t, err)
	require.True(t, report.Success)
	require.Len(t, report.Steps, 1)

	replies := bus.Receive("worker")
	require.Len(t, replies, 1)
	require.Equal(t, "failed", replies[0].Payload["status"])
	require.Equal(t, "Unknown task: unknown_task", replies[0].Payload["details"])
	original, ok := replies[0].Payload["original_message"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "unknown_task", original["task"])
}

func TestMailboxGoalMalformedTask(t *testing.T) {
	orch, bus, _ := newMailboxOrchestrator(t)
	bus.Send("queen", "worker", map[string]any{"note": "no task field"})

	report, err := orch.ExecuteMission(context.Background(), MailboxGoal)
	require.NoError(t, err)
	require.True(t, report.Success)

	replies := bus.Receive("worker")
	require.Len(t, replies, 1)
	require.Equal(t, "Received empty or malformed task message", replies[0].Payload["details"])
}

func TestMailboxGoalOnlyFirstMessageActedOn(t *testing.T) {
	orch, bus, _ := newMailboxOrchestrator(t)
	bus.Send("queen", "worker", map[string]any{"task": "echo", "params": map[string]any{"text": "one"}})
	bus.Send("queen", "worker", map[string]any{"task": "echo", "params": map[string]any{"text": "two"}})

	report, err := orch.ExecuteMission(context.Background(), MailboxGoal)
	require.NoError(t, err)
	require.Equal(t, "one", report.Steps[0].Observation)

	// The drain consumed everything; the second message is dropped.
	require.Equal(t, 0, bus.Pending("queen"))
}

func TestPeerSendMessage(t *testing.T) {
	orch, bus, _ := newMailboxOrchestrator(t)

	outcome, err := orch.Execute(context.Background(), ActionSendMessage, map[string]any{
		"recipient_id": "drone",
		"message":      map[string]any{"task": "echo"},
	})
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Equal(t, 1, bus.Pending("drone"))

	messages := bus.Receive("drone")
	require.Equal(t, "queen", messages[0].SenderID)
}

func TestPeerSendMessageMissingParams(t *testing.T) {
	orch, _, _ := newMailboxOrchestrator(t)
	outcome, err := orch.Execute(context.Background(), ActionSendMessage, map[string]any{})
	require.NoError(t, err)
	require.False(t, outcome.Success)
	require.Equal(t, "missing 'recipient_id' or 'message' parameter", outcome.Error)
}

func TestPeerCheckMailbox(t *testing.T) {
	orch, bus, _ := newMailboxOrchestrator(t)
	bus.Send("queen", "worker", map[string]any{"task": "echo"})

	outcome, err := orch.Execute(context.Background(), ActionCheckMailbox, nil)
	require.NoError(t, err)
	require.True(t, outcome.Success)
	messages, ok := outcome.Data.([]Message)
	require.True(t, ok)
	require.Len(t, messages, 1)
}

func TestPeerUnknownMethodWithoutGoal(t *testing.T) {
	orch, _, _ := newMailboxOrchestrator(t)
	outcome, err := orch.Execute(context.Background(), "do_something", nil)
	require.NoError(t, err)
	require.False(t, outcome.Success)
}

func TestPeerNestedMission(t *testing.T) {
	orch, bus, store := newMailboxOrchestrator(t)

	// A nested mission driven through the peer contract: the mailbox goal
	// resolves against the caller's own mailbox.
	bus.Send("queen", "worker", map[string]any{"task": "echo", "params": map[string]any{"text": "nested"}})
	outcome, err := orch.Execute(context.Background(), "run", map[string]any{"goal": MailboxGoal})
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Len(t, store.missions, 1)
}
