package hive

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is one mailbox entry. Ownership passes to the recipient mailbox on
// send and ends the instant the mailbox is drained.
type Message struct {
	ID       string         `json:"id"`
	SenderID string         `json:"sender_id"`
	Payload  map[string]any `json:"payload"`
	SentAt   time.Time      `json:"sent_at"`
}

// MessageBus holds one mailbox per agent id. Delivery is at-most-once per
// read: a message sent but never drained before process exit is lost, which
// is acceptable. Queues are unbounded with no backpressure or acks.
//
// Receive is the one place in the engine where true thread-safety is
// mandatory: concurrent drains of the same mailbox must never double-deliver
// or drop messages, so every access goes through the mutex.
type MessageBus struct {
	mu        sync.Mutex
	mailboxes map[string][]Message
}

// NewMessageBus builds an empty bus.
func NewMessageBus() *MessageBus {
	return &MessageBus{mailboxes: make(map[string][]Message)}
}

// Send appends the payload, tagged with the sender id, to the recipient's
// queue.
func (b *MessageBus) Send(recipientID, senderID string, payload map[string]any) Message {
	msg := Message{
		ID:       uuid.New().String(),
		SenderID: senderID,
		Payload:  payload,
		SentAt:   time.Now().UTC(),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mailboxes[recipientID] = append(b.mailboxes[recipientID], msg)
	return msg
}

// Receive atomically reads and clears the entire queue for the given id.
// Draining an empty or unknown mailbox returns nil, and a second drain with
// no intervening send always returns nil.
func (b *MessageBus) Receive(agentID string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	messages := b.mailboxes[agentID]
	if len(messages) == 0 {
		return nil
	}
	delete(b.mailboxes, agentID)
	return messages
}

// Pending reports the number of queued messages without draining them.
func (b *MessageBus) Pending(agentID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.mailboxes[agentID])
}
