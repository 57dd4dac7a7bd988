package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lexcodex/hivemind/hive"
)

// OraclePlanner implements hive.Planner by prompting the chat model with the
// goal and capability catalog and parsing the returned JSON step array.
type OraclePlanner struct {
	Client  *Client
	Options *Options
}

// NewOraclePlanner builds a planner over the shared client.
func NewOraclePlanner(client *Client) *OraclePlanner {
	return &OraclePlanner{Client: client}
}

// Plan requests an ordered step list for the goal.
func (p *OraclePlanner) Plan(ctx context.Context, goal string, catalog hive.Catalog) ([]hive.StepSpec, error) {
	catalogJSON, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(planPromptTemplate, goal, catalogJSON)
	raw, err := p.Client.Complete(ctx, systemPrompt, prompt, p.Options)
	if err != nil {
		return nil, fmt.Errorf("planner oracle: %w", err)
	}
	return ParseStepSpecs(raw)
}

// ParseStepSpecs decodes a model response into step specs, tolerating code
// fences and surrounding prose.
func ParseStepSpecs(raw string) ([]hive.StepSpec, error) {
	var specs []hive.StepSpec
	if err := json.Unmarshal([]byte(hive.ExtractJSONArray(raw)), &specs); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	return specs, nil
}
