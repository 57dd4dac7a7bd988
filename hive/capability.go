package hive

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Outcome is the uniform response shape every capability invocation returns.
// Success responses carry Message/Data, failure responses carry
// Error/Details. The dispatcher treats anything else as malformed.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// SuccessOutcome builds a success response.
func SuccessOutcome(message string, data any) Outcome {
	return Outcome{Success: true, Message: message, Data: data}
}

// FailureOutcome builds a failure response.
func FailureOutcome(err string, details any) Outcome {
	return Outcome{Success: false, Error: err, Details: details}
}

// ParamSpec describes one parameter of an advertised action.
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// ActionSpec describes one invocable method of a capability. The metadata is
// advisory: it is surfaced to the planner oracle but never enforced at
// dispatch time beyond the response-shape contract.
type ActionSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Params      []ParamSpec `json:"params,omitempty"`
}

// Descriptor is the serializable catalog entry for a capability.
type Descriptor struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Actions     []ActionSpec `json:"actions"`
}

// Capability is a named unit invocable through the "<target>.<method>" step
// vocabulary. Implementations map the method string to concrete behavior
// themselves; there is no reflective attribute lookup.
type Capability interface {
	Name() string
	Description() string
	Actions() []ActionSpec
	Execute(ctx context.Context, method string, params map[string]any) (Outcome, error)
}

// Describe builds the catalog descriptor for a capability.
func Describe(c Capability) Descriptor {
	return Descriptor{
		Name:        c.Name(),
		Description: c.Description(),
		Actions:     c.Actions(),
	}
}

// Catalog is the snapshot handed to the planner oracle. Tool names appear so
// the oracle knows what backs the capabilities, but tools are never dispatch
// targets.
type Catalog struct {
	Capabilities map[string]Descriptor `json:"capabilities"`
	Agents       []string              `json:"agents,omitempty"`
	Tools        []string              `json:"tools,omitempty"`
}

// CapabilityRegistry maps capability names to handles and, in an independent
// namespace, holds tool providers consumed by capabilities at construction
// time. Registration is last-wins; no uniqueness is enforced.
type CapabilityRegistry struct {
	mu           sync.RWMutex
	capabilities map[string]Capability
	tools        map[string]any
}

// NewCapabilityRegistry builds an empty registry.
func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{
		capabilities: make(map[string]Capability),
		tools:        make(map[string]any),
	}
}

// Register adds a capability, silently overwriting a previous registration
// under the same name.
func (r *CapabilityRegistry) Register(c Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[c.Name()] = c
}

// Get fetches a capability by name.
func (r *CapabilityRegistry) Get(name string) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.capabilities[name]
	return c, ok
}

// RegisterTool adds a tool provider. Tools live in their own namespace and
// are never resolvable as dispatch targets.
func (r *CapabilityRegistry) RegisterTool(name string, tool any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = tool
}

// Tool fetches a tool provider by name.
func (r *CapabilityRegistry) Tool(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Snapshot returns the serializable capability catalog used to build planner
// prompts. Names are sorted so prompts stay deterministic across runs.
func (r *CapabilityRegistry) Snapshot() Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	catalog := Catalog{Capabilities: make(map[string]Descriptor, len(r.capabilities))}
	for name, c := range r.capabilities {
		catalog.Capabilities[name] = Describe(c)
	}
	for name := range r.tools {
		catalog.Tools = append(catalog.Tools, name)
	}
	sort.Strings(catalog.Tools)
	return catalog
}

// ValidateParams reports the missing required parameters, formatted the way
// capability failure responses expect. An empty string means all present.
func ValidateParams(params map[string]any, required ...string) string {
	var missing []string
	for _, name := range required {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf("missing required parameters: %s", strings.Join(missing, ", "))
}
