package application

import (
	"context"
	"fmt"

	"github.com/bnema/fileassist/internal/domain"
	"go.uber.org/zap"
)

// MaxClarificationAttempts is the number of clarified NLU requests allowed
// after the first one.
const MaxClarificationAttempts = 2

func composeClarified(original, question, answer string) string {
	return fmt.Sprintf("Original request: %s. Question: %s. Clarifying answer: %s", original, question, answer)
}

// understand runs intent extraction, asking the user for clarification while
// the model requests it. A non-empty status means the command ends here and
// has already been reported and logged.
func (a *Assistant) understand(ctx context.Context, input string) (domain.NLUResult, domain.Status) {
	text := input
	for attempt := 0; ; attempt++ {
		result := a.extractIntent(ctx, text)
		if !result.ClarificationNeeded {
			return result, ""
		}

		question := result.SuggestedQuestion
		if attempt >= a.opts.MaxClarificationAttempts {
			details := fmt.Sprintf("still ambiguous after %d clarification attempts", attempt)
			a.ui.Error("Clarification failed", fmt.Sprintf("I still could not work out what to do (%s). Please rephrase the request.", details))
			a.failWithoutStep(domain.ActionClarification, domain.Params{
				domain.ParamOriginalRequest: input,
				"last_question":             question,
			}, domain.StatusClarificationFailed, details, result)
			return result, domain.StatusClarificationFailed
		}

		a.ui.Panel("Clarification needed", question)
		if a.opts.NoPrompt {
			a.failWithoutStep(domain.ActionClarification, domain.Params{
				domain.ParamOriginalRequest: input,
				"last_question":             question,
			}, domain.StatusParameterMissingNoUI, "clarification required but prompting is disabled", result)
			return result, domain.StatusParameterMissingNoUI
		}

		answer, err := a.ui.Prompt("Your answer: ")
		if err != nil || answer == "" {
			if err != nil {
				a.logger.Debug("clarification prompt closed", zap.Error(err))
			}
			a.ui.Warn("Clarification cancelled.")
			a.failWithoutStep(domain.ActionClarification, domain.Params{
				domain.ParamOriginalRequest: input,
				"last_question":             question,
			}, domain.StatusCancelledClarification, "user gave no clarifying answer", result)
			return result, domain.StatusCancelledClarification
		}

		text = composeClarified(input, question, answer)
	}
}

func (a *Assistant) extractIntent(ctx context.Context, text string) domain.NLUResult {
	var result domain.NLUResult
	_ = a.ui.Spin(ctx, "Thinking...", func(ctx context.Context) error {
		result = a.llm.ExtractIntent(ctx, text, a.session)
		return nil
	})
	return result
}

// failWithoutStep records a command that ended before any action step ran.
func (a *Assistant) failWithoutStep(action domain.ActionName, params domain.Params, status domain.Status, details string, result domain.NLUResult) {
	a.log.Append(domain.ActivityEntry{
		Action:         action,
		Parameters:     params,
		Status:         status,
		Details:        details,
		ChainOfThought: result.ChainOfThought,
		NLUMethod:      result.Method,
	})
	a.recordStep(action, params, status, details)
}
