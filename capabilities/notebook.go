package capabilities

import (
	"context"
	"fmt"
	"sync"

	"github.com/lexcodex/hivemind/hive"
)

// NotesToolName is the key the notes provider is registered under in the
// tool namespace.
const NotesToolName = "notes"

// Notes is a shared in-memory note sink. It lives in the registry's tool
// namespace, not the capability namespace: plans can never target it
// directly, only the Notebook capability consumes it.
type Notes struct {
	mu      sync.Mutex
	entries []string
}

// Append adds a note.
func (n *Notes) Append(entry string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, entry)
}

// All returns a copy of the recorded notes.
func (n *Notes) All() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.entries))
	copy(out, n.entries)
	return out
}

// Notebook records and reads back notes through the Notes tool provider
// obtained from the registry at construction time.
type Notebook struct {
	notes *Notes
}

// NewNotebook wires the capability to the notes tool registered in the
// given registry, or to a private sink when none is registered.
func NewNotebook(registry *hive.CapabilityRegistry) *Notebook {
	if tool, ok := registry.Tool(NotesToolName); ok {
		if notes, ok := tool.(*Notes); ok {
			return &Notebook{notes: notes}
		}
	}
	return &Notebook{notes: &Notes{}}
}

func (*Notebook) Name() string        { return "Notebook" }
func (*Notebook) Description() string { return "Appends to and reads a shared mission notebook." }

func (*Notebook) Actions() []hive.ActionSpec {
	return []hive.ActionSpec{
		{
			Name:        "append",
			Description: "Records a note.",
			Params: []hive.ParamSpec{
				{Name: "note", Type: "string", Description: "Note text to record.", Required: true},
			},
		},
		{
			Name:        "read",
			Description: "Returns all recorded notes.",
		},
	}
}

// Execute handles the append and read actions.
func (c *Notebook) Execute(ctx context.Context, method string, params map[string]any) (hive.Outcome, error) {
	switch method {
	case "append":
		if missing := hive.ValidateParams(params, "note"); missing != "" {
			return hive.FailureOutcome(missing, nil), nil
		}
		note := fmt.Sprint(params["note"])
		c.notes.Append(note)
		return hive.SuccessOutcome("Note recorded", map[string]any{"note": note}), nil
	case "read":
		notes := c.notes.All()
		return hive.SuccessOutcome(fmt.Sprintf("%d note(s) recorded", len(notes)), map[string]any{"notes": notes}), nil
	default:
		return hive.FailureOutcome(fmt.Sprintf("unsupported action: %s", method), nil), nil
	}
}

// Install registers the built-in tool providers and capabilities into the
// registry. The notes tool is registered first so the notebook can find it.
func Install(registry *hive.CapabilityRegistry) {
	registry.RegisterTool(NotesToolName, &Notes{})
	registry.Register(Echo{})
	registry.Register(NewNotebook(registry))
}
