package domain

import "strings"

type Status string

const (
	StatusPendingExecution        Status = "pending_execution"
	StatusSuccess                 Status = "success"
	StatusPartialSuccess          Status = "partial_success"
	StatusFailed                  Status = "failed"
	StatusExecutionException      Status = "execution_exception"
	StatusPlanReceived            Status = "plan_received"
	StatusUnknown                 Status = "unknown"
	StatusPathValidationFailed    Status = "path_validation_failed"
	StatusParameterMissingNoUI    Status = "parameter_missing_no_ui"
	StatusCancelledPathPrompt     Status = "user_cancelled_path_prompt"
	StatusCancelledQuestionPrompt Status = "user_cancelled_question_prompt"
	StatusCancelledCriteriaPrompt Status = "user_cancelled_criteria_prompt"
	StatusCancelledConfirmation   Status = "user_cancelled_confirmation"
	StatusCancelledClarification  Status = "user_cancelled_clarification"
	StatusClarificationFailed     Status = "clarification_failed_max_attempts"
	StatusErrorNLU                Status = "error_nlu"
)

// Terminal reports whether a resolution status stops execution of the step
// and the rest of its chain.
func (s Status) Terminal() bool {
	switch s {
	case StatusPathValidationFailed, StatusParameterMissingNoUI, StatusUnknown, StatusClarificationFailed:
		return true
	}
	value := string(s)
	return strings.HasPrefix(value, "user_cancelled_") || strings.HasPrefix(value, "error_")
}

func (s Status) Cancelled() bool {
	return strings.HasPrefix(string(s), "user_cancelled_")
}

type OutcomeKind string

const (
	OutcomeOK        OutcomeKind = "ok"
	OutcomePartial   OutcomeKind = "partial"
	OutcomeCancelled OutcomeKind = "cancelled"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome is what every action handler returns.
type Outcome struct {
	Kind    OutcomeKind
	Status  Status
	Message string
	Data    map[string]any
}

func OK(message string, data map[string]any) Outcome {
	return Outcome{Kind: OutcomeOK, Status: StatusSuccess, Message: message, Data: data}
}

func Partial(message string, data map[string]any) Outcome {
	return Outcome{Kind: OutcomePartial, Status: StatusPartialSuccess, Message: message, Data: data}
}

func Cancelled(status Status, message string) Outcome {
	return Outcome{Kind: OutcomeCancelled, Status: status, Message: message}
}

func Failed(message string) Outcome {
	return Outcome{Kind: OutcomeFailed, Status: StatusFailed, Message: message}
}

// Continues reports whether the chain may proceed past this outcome.
func (o Outcome) Continues() bool {
	return o.Kind == OutcomeOK || o.Kind == OutcomePartial
}
