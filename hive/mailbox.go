package hive

import (
	"context"
	"fmt"
)

// Actions advertised by every orchestrator when addressed as a peer agent.
const (
	ActionSendMessage  = "send_message"
	ActionCheckMailbox = "check_mailbox"
)

// PeerActions describes the methods peers can invoke on an orchestrator, in
// the same advisory form capabilities use.
func PeerActions() []ActionSpec {
	return []ActionSpec{
		{
			Name:        ActionSendMessage,
			Description: "Sends a message to another agent's mailbox.",
			Params: []ParamSpec{
				{Name: "recipient_id", Type: "string", Description: "Agent id of the recipient.", Required: true},
				{Name: "message", Type: "object", Description: "The message payload.", Required: true},
			},
		},
		{
			Name:        ActionCheckMailbox,
			Description: "Drains and returns the agent's pending messages.",
		},
	}
}

// Execute lets one orchestrator address another (or itself) as a dispatch
// target. Unknown methods fall back to running a nested mission when a goal
// parameter is present, mirroring the step vocabulary used for ordinary
// capability invocation.
func (o *Orchestrator) Execute(ctx context.Context, method string, params map[string]any) (Outcome, error) {
	switch method {
	case ActionSendMessage:
		return o.sendMessage(params), nil
	case ActionCheckMailbox:
		messages := o.bus.Receive(o.id)
		o.emit(Event{Type: EventMailboxDrain, AgentID: o.id, Metadata: map[string]any{"messages": len(messages)}})
		return SuccessOutcome(fmt.Sprintf("Drained %d message(s)", len(messages)), messages), nil
	default:
		goal, ok := params["goal"].(string)
		if !ok || goal == "" {
			return FailureOutcome(fmt.Sprintf("unsupported method %q and no goal parameter", method), nil), nil
		}
		report, err := o.ExecuteMission(ctx, goal)
		if err != nil {
			return FailureOutcome(err.Error(), nil), nil
		}
		return SuccessOutcome(fmt.Sprintf("Mission finished: %d/%d steps succeeded",
			report.Mission.Result.SuccessfulSteps, report.Mission.Result.TotalSteps), report), nil
	}
}

func (o *Orchestrator) sendMessage(params map[string]any) Outcome {
	recipient, _ := params["recipient_id"].(string)
	message, _ := params["message"].(map[string]any)
	if recipient == "" || message == nil {
		return FailureOutcome("missing 'recipient_id' or 'message' parameter", nil)
	}
	o.bus.Send(recipient, o.id, message)
	o.emit(Event{Type: EventMessageSent, AgentID: o.id, Metadata: map[string]any{"recipient": recipient}})
	return SuccessOutcome(fmt.Sprintf("Message sent to %s.", recipient), nil)
}

// planFromMailbox implements the reserved mailbox goal: drain the mailbox
// and synthesize a deterministic plan from the first message instead of
// consulting the planner oracle. An empty mailbox is not an error; it yields
// an informational self-reply.
func (o *Orchestrator) planFromMailbox() []StepSpec {
	messages := o.bus.Receive(o.id)
	o.emit(Event{Type: EventMailboxDrain, AgentID: o.id, Metadata: map[string]any{"messages": len(messages)}})

	if len(messages) == 0 {
		return []StepSpec{{
			StepID: 1,
			Action: o.id + "." + ActionSendMessage,
			Parameters: map[string]any{
				"recipient_id": o.id,
				"message":      map[string]any{"status": "completed", "details": "No new messages in mailbox."},
			},
			Reasoning: "Mailbox is empty, no tasks to execute.",
		}}
	}

	// Only the first message is acted on; later messages were already
	// drained and are dropped, consistent with at-most-once delivery.
	msg := messages[0]
	sender := msg.SenderID
	if sender == "" {
		sender = o.id
	}

	taskName, _ := msg.Payload["task"].(string)
	if taskName == "" {
		return o.replyPlan(sender, map[string]any{
			"status":           "failed",
			"details":          "Received empty or malformed task message",
			"original_message": msg.Payload,
		}, "Report malformed message back to sender")
	}

	action, known := o.routes[taskName]
	if !known {
		return o.replyPlan(sender, map[string]any{
			"status":           "failed",
			"details":          fmt.Sprintf("Unknown task: %s", taskName),
			"original_message": msg.Payload,
		}, "Report unknown task back to sender")
	}

	taskParams, _ := msg.Payload["params"].(map[string]any)
	return []StepSpec{
		{
			StepID:     1,
			Action:     action,
			Parameters: taskParams,
			Reasoning:  fmt.Sprintf("Execute %s as requested by %s", taskName, sender),
		},
		{
			StepID: 2,
			Action: o.id + "." + ActionSendMessage,
			Parameters: map[string]any{
				"recipient_id": sender,
				"message":      map[string]any{"status": "completed", "task": taskName},
			},
			Reasoning: fmt.Sprintf("Report %s completion to %s", taskName, sender),
		},
	}
}

func (o *Orchestrator) replyPlan(recipient string, message map[string]any, reasoning string) []StepSpec {
	return []StepSpec{{
		StepID: 1,
		Action: o.id + "." + ActionSendMessage,
		Parameters: map[string]any{
			"recipient_id": recipient,
			"message":      message,
		},
		Reasoning: reasoning,
	}}
}
