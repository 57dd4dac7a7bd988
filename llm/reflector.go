package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lexcodex/hivemind/hive"
)

// OracleReflector implements hive.Reflector by prompting the chat model with
// the failure context and parsing its structured verdict. Parse failures are
// returned as errors; the reflection engine upstream converts them into a
// continue verdict, so nothing here can become mission-fatal.
type OracleReflector struct {
	Client  *Client
	Options *Options
}

// NewOracleReflector builds a reflector over the shared client.
func NewOracleReflector(client *Client) *OracleReflector {
	return &OracleReflector{Client: client}
}

// Reflect asks the oracle what to do about a failed step.
func (r *OracleReflector) Reflect(ctx context.Context, req hive.ReflectionRequest) (hive.Verdict, error) {
	params, err := json.Marshal(req.Parameters)
	if err != nil {
		return hive.Verdict{}, err
	}
	observation := req.Observation
	if observation == "" {
		observation = "No observation"
	}
	prompt := fmt.Sprintf(reflectionPromptTemplate, req.Goal, req.StepID, req.Action, params, observation)
	raw, err := r.Client.Complete(ctx, systemPrompt, prompt, r.Options)
	if err != nil {
		return hive.Verdict{}, fmt.Errorf("reflector oracle: %w", err)
	}
	return ParseVerdict(raw)
}

// ParseVerdict decodes a model response into a verdict, tolerating code
// fences and surrounding prose.
func ParseVerdict(raw string) (hive.Verdict, error) {
	var verdict hive.Verdict
	if err := json.Unmarshal([]byte(hive.ExtractJSONObject(raw)), &verdict); err != nil {
		return hive.Verdict{}, fmt.Errorf("parse verdict: %w", err)
	}
	return verdict, nil
}
