package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type ActionName string

const (
	ActionSummarizeFile        ActionName = "summarize_file"
	ActionAskQuestionAboutFile ActionName = "ask_question_about_file"
	ActionListFolderContents   ActionName = "list_folder_contents"
	ActionMoveItem             ActionName = "move_item"
	ActionSearchFiles          ActionName = "search_files"
	ActionShowActivityLog      ActionName = "show_activity_log"
	ActionRedoActivity         ActionName = "redo_activity"
	ActionGeneralChat          ActionName = "general_chat"
	ActionOrganize             ActionName = "propose_and_execute_organization"
	ActionUnknown              ActionName = "unknown"
	ActionMultiStepPlan        ActionName = "multi_step_plan"
	ActionClarification        ActionName = "clarification"
	ActionExecOrgCreateFolder  ActionName = "exec_org_create_folder"
	ActionExecOrgMoveItem      ActionName = "exec_org_move_item"
	ActionExecOrgPlan          ActionName = "execute_organization_plan"
)

// KnownActions lists the actions the NLU layer may emit.
var KnownActions = []ActionName{
	ActionSummarizeFile,
	ActionAskQuestionAboutFile,
	ActionListFolderContents,
	ActionMoveItem,
	ActionSearchFiles,
	ActionShowActivityLog,
	ActionRedoActivity,
	ActionGeneralChat,
	ActionOrganize,
}

func (a ActionName) Known() bool {
	for _, known := range KnownActions {
		if a == known {
			return true
		}
	}
	return a == ActionUnknown
}

// Parameter keys used across actions.
const (
	ParamFilePath           = "file_path"
	ParamQuestionText       = "question_text"
	ParamFolderPath         = "folder_path"
	ParamSourcePath         = "source_path"
	ParamDestinationPath    = "destination_path"
	ParamSearchCriteria     = "search_criteria"
	ParamSearchPath         = "search_path"
	ParamCount              = "count"
	ParamActivityIdentifier = "activity_identifier"
	ParamOriginalRequest    = "original_request"
	ParamTargetPath         = "target_path_or_context"
	ParamOrganizationGoal   = "organization_goal"
	ParamErrorReason        = "error_reason"
)

type Params map[string]any

func (p Params) Clone() Params {
	if p == nil {
		return nil
	}

	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String returns the parameter rendered as a trimmed string; absent or null
// values are "".
func (p Params) String(key string) string {
	value, ok := p[key]
	if !ok || value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Int parses the parameter as an integer, returning fallback when absent or
// unparseable.
func (p Params) Int(key string, fallback int) int {
	raw := p.String(key)
	if raw == "" {
		return fallback
	}

	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return fallback
}

type ActionStep struct {
	Name        ActionName `json:"action_name"`
	Parameters  Params     `json:"parameters"`
	Description string     `json:"step_description,omitempty"`
}

type NLUResult struct {
	ChainOfThought      string       `json:"chain_of_thought"`
	Actions             []ActionStep `json:"actions"`
	ClarificationNeeded bool         `json:"clarification_needed"`
	SuggestedQuestion   string       `json:"suggested_question,omitempty"`
	Method              string       `json:"nlu_method"`
}

// NLUFailure builds the result used for every NLU error: a single unknown
// action carrying the reason.
func NLUFailure(method, reason string) NLUResult {
	return NLUResult{
		Actions: []ActionStep{{
			Name:       ActionUnknown,
			Parameters: Params{ParamErrorReason: reason},
		}},
		Method: method,
	}
}

// ErrorReason returns the error_reason of a failed result, or "".
func (r NLUResult) ErrorReason() string {
	if len(r.Actions) != 1 || r.Actions[0].Name != ActionUnknown {
		return ""
	}
	return r.Actions[0].Parameters.String(ParamErrorReason)
}
