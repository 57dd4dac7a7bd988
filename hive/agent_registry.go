package hive

import (
	"context"
	"sort"
	"sync"
)

// Peer is an independently addressable orchestrator instance. It exposes the
// same execute contract as a capability so a plan step can target a peer
// agent with the identical "<target>.<method>" vocabulary used for tools.
type Peer interface {
	Execute(ctx context.Context, method string, params map[string]any) (Outcome, error)
}

// AgentRegistry maps agent ids to running orchestrator instances. It is
// structurally a sibling of CapabilityRegistry and shares the dispatch
// namespace with it; the dispatcher checks agents first.
type AgentRegistry struct {
	mu     sync.RWMutex
	agents map[string]Peer
}

// NewAgentRegistry builds an empty registry.
func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{agents: make(map[string]Peer)}
}

// Register adds an agent, silently overwriting any previous registration
// under the same id.
func (r *AgentRegistry) Register(id string, agent Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[id] = agent
}

// Get fetches an agent by id.
func (r *AgentRegistry) Get(id string) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[id]
	return agent, ok
}

// IDs returns the registered agent ids in sorted order.
func (r *AgentRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
