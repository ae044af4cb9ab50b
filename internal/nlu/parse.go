package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/bnema/fileassist/internal/domain"
)

// Failure kinds, used as nlu_method of a failed result.
const (
	ErrorInvalidJSON   = "error_invalid_json"
	ErrorMissingKeys   = "error_missing_keys"
	ErrorUnknownAction = "error_unknown_action"
	ErrorTimeout       = "error_timeout"
	ErrorTransport     = "error_transport"
)

// ParseIntent turns a raw model response into an NLUResult. Any problem
// yields the single-unknown-action failure result.
func ParseIntent(raw string, method string) domain.NLUResult {
	payload := ExtractJSON(raw)
	if payload == "" {
		return domain.NLUFailure(ErrorInvalidJSON, "the model returned an empty response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return domain.NLUFailure(ErrorInvalidJSON, fmt.Sprintf("the model response is not a JSON object: %v", err))
	}

	result := domain.NLUResult{Method: method}

	if rawCoT, ok := fields["chain_of_thought"]; ok {
		_ = json.Unmarshal(rawCoT, &result.ChainOfThought)
	}
	if rawClarify, ok := fields["clarification_needed"]; ok {
		result.ClarificationNeeded = parseBool(rawClarify)
	}
	if rawQuestion, ok := fields["suggested_question"]; ok {
		_ = json.Unmarshal(rawQuestion, &result.SuggestedQuestion)
	}

	actions, err := parseActions(fields)
	if err != nil {
		return domain.NLUFailure(ErrorMissingKeys, err.Error())
	}

	for _, step := range actions {
		if !step.Name.Known() {
			return domain.NLUFailure(ErrorUnknownAction, fmt.Sprintf("the model proposed an unknown action %q", step.Name))
		}
	}

	if len(actions) == 0 && !result.ClarificationNeeded {
		return domain.NLUFailure(ErrorMissingKeys, "the model returned no actions and no clarification request")
	}
	if result.ClarificationNeeded && strings.TrimSpace(result.SuggestedQuestion) == "" {
		result.SuggestedQuestion = "Could you tell me more precisely what you want to do?"
	}

	result.Actions = actions
	return result
}

type rawStep struct {
	ActionName  string         `json:"action_name"`
	Action      string         `json:"action"`
	Parameters  map[string]any `json:"parameters"`
	Description string         `json:"step_description"`
}

// parseActions accepts "actions" as a list of steps or the legacy single
// "action" with top-level "parameters".
func parseActions(fields map[string]json.RawMessage) ([]domain.ActionStep, error) {
	if rawActions, ok := fields["actions"]; ok {
		var steps []rawStep
		if err := json.Unmarshal(rawActions, &steps); err != nil {
			var single rawStep
			if singleErr := json.Unmarshal(rawActions, &single); singleErr != nil {
				return nil, fmt.Errorf("the model returned malformed actions: %v", err)
			}
			steps = []rawStep{single}
		}

		out := make([]domain.ActionStep, 0, len(steps))
		for i, step := range steps {
			name := strings.TrimSpace(step.ActionName)
			if name == "" {
				name = strings.TrimSpace(step.Action)
			}
			if name == "" {
				return nil, fmt.Errorf("action %d has no action_name", i+1)
			}
			out = append(out, domain.ActionStep{
				Name:        domain.ActionName(name),
				Parameters:  normalizeParams(step.Parameters),
				Description: step.Description,
			})
		}
		return out, nil
	}

	rawAction, ok := fields["action"]
	if !ok {
		return nil, errors.New("the model response has neither \"actions\" nor \"action\"")
	}

	var name string
	if err := json.Unmarshal(rawAction, &name); err != nil || strings.TrimSpace(name) == "" {
		return nil, errors.New("the model response has an empty \"action\"")
	}

	var params map[string]any
	if rawParams, ok := fields["parameters"]; ok {
		_ = json.Unmarshal(rawParams, &params)
	}

	var description string
	if rawDescription, ok := fields["step_description"]; ok {
		_ = json.Unmarshal(rawDescription, &description)
	}

	return []domain.ActionStep{{
		Name:        domain.ActionName(strings.TrimSpace(name)),
		Parameters:  normalizeParams(params),
		Description: description,
	}}, nil
}

func normalizeParams(params map[string]any) domain.Params {
	out := make(domain.Params, len(params))
	for key, value := range params {
		out[strings.TrimSpace(key)] = value
	}
	return out
}

func parseBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(strings.TrimSpace(s), "true")
	}
	return false
}

// TransportFailure classifies a provider call error.
func TransportFailure(err error) domain.NLUResult {
	if IsTimeout(err) {
		return domain.NLUFailure(ErrorTimeout, fmt.Sprintf("the model did not answer in time: %v", err))
	}
	return domain.NLUFailure(ErrorTransport, fmt.Sprintf("the model could not be reached: %v", err))
}

func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ParsePlan decodes an organization plan. The root must be a JSON array.
func ParsePlan(raw string) ([]domain.OrganizationAction, error) {
	payload := stripFences(raw)
	if array, ok := extractBalanced(payload, '[', ']'); ok {
		if object, objOK := extractBalanced(payload, '{', '}'); !objOK || strings.Index(payload, array) < strings.Index(payload, object) {
			payload = array
		}
	}

	if !strings.HasPrefix(strings.TrimSpace(payload), "[") {
		return nil, fmt.Errorf("%w: the plan is not a JSON array", domain.ErrInvalidPlan)
	}

	var actions []domain.OrganizationAction
	if err := json.Unmarshal([]byte(payload), &actions); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPlan, err)
	}

	for i := range actions {
		actions[i].Type = domain.OrganizationActionType(strings.ToUpper(strings.TrimSpace(string(actions[i].Type))))
	}

	return actions, nil
}

// ParseYesNo is true only for a literal YES.
func ParseYesNo(raw string) bool {
	return strings.ToUpper(strings.TrimSpace(raw)) == "YES"
}
