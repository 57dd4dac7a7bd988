// Package capabilities provides the built-in capabilities shipped with the
// engine. They are deliberately small: real deployments register their own
// capability implementations, while these give demos and tests concrete
// dispatch targets that honor the outcome contract.
package capabilities

import (
	"context"
	"fmt"

	"github.com/lexcodex/hivemind/hive"
)

// Echo replies with whatever it is told to say. It is the canonical
// always-succeeds target used by smoke missions.
type Echo struct{}

func (Echo) Name() string        { return "Echo" }
func (Echo) Description() string { return "Repeats the provided text back as an observation." }

func (Echo) Actions() []hive.ActionSpec {
	return []hive.ActionSpec{
		{
			Name:        "say",
			Description: "Returns the given text.",
			Params: []hive.ParamSpec{
				{Name: "text", Type: "string", Description: "Text to repeat.", Required: true},
			},
		},
	}
}

// Execute handles the say action.
func (Echo) Execute(ctx context.Context, method string, params map[string]any) (hive.Outcome, error) {
	if method != "say" {
		return hive.FailureOutcome(fmt.Sprintf("unsupported action: %s", method), nil), nil
	}
	if missing := hive.ValidateParams(params, "text"); missing != "" {
		return hive.FailureOutcome(missing, nil), nil
	}
	text := fmt.Sprint(params["text"])
	return hive.SuccessOutcome(text, map[string]any{"text": text}), nil
}
