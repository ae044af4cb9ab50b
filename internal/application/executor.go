package application

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/bnema/fileassist/internal/domain"
	"go.uber.org/zap"
)

const stackSummaryLines = 12

// handler runs one resolved action step. ref is the step's own activity
// record.
type handler func(ctx context.Context, params domain.Params, ref domain.EntryRef) domain.Outcome

// ChainResult summarizes one executed plan.
type ChainResult struct {
	Planned   int
	Completed int
	Status    domain.Status
}

// Execute understands one line of user input and runs the resulting plan.
func (a *Assistant) Execute(ctx context.Context, input string) ChainResult {
	input = strings.TrimSpace(input)

	result, status := a.understand(ctx, input)
	if status != "" {
		return ChainResult{Status: status}
	}

	if reason := result.ErrorReason(); reason != "" || len(result.Actions) == 0 {
		if reason == "" {
			reason = "the model returned no actions"
		}
		a.ui.Error("Could not understand the request", reason)
		a.failWithoutStep(domain.ActionUnknown, domain.Params{
			domain.ParamOriginalRequest: input,
			domain.ParamErrorReason:     reason,
		}, domain.StatusErrorNLU, reason, result)
		return ChainResult{Planned: len(result.Actions), Status: domain.StatusErrorNLU}
	}

	return a.runPlan(ctx, input, result)
}

func (a *Assistant) runPlan(ctx context.Context, input string, result domain.NLUResult) ChainResult {
	steps := make([]domain.ActionStep, len(result.Actions))
	copy(steps, result.Actions)

	var indexNote string
	if len(steps) > 0 {
		indexNote = a.applyIndexedReference(input, &steps[0])
	}

	var parent domain.EntryRef
	if len(steps) > 1 {
		parent = a.log.Append(domain.ActivityEntry{
			Action: domain.ActionMultiStepPlan,
			Parameters: domain.Params{
				domain.ParamOriginalRequest: input,
				"steps":                     stepNames(steps),
			},
			Status:            domain.StatusPlanReceived,
			Details:           fmt.Sprintf("%d steps planned", len(steps)),
			ChainOfThought:    result.ChainOfThought,
			NLUMethod:         result.Method,
			IsMultiStepParent: true,
		})
		a.ui.Info(fmt.Sprintf("Plan with %d steps:", len(steps)))
		for i, step := range steps {
			a.ui.Info(fmt.Sprintf("  %d. %s", i+1, describeStep(step)))
		}
	}

	chain := ChainResult{Planned: len(steps), Status: domain.StatusSuccess}
	for i, step := range steps {
		notes := []string(nil)
		if i == 0 && indexNote != "" {
			notes = append(notes, indexNote)
		}

		status := a.runStep(ctx, input, step, result, notes, i == 0)
		if status == domain.StatusSuccess || status == domain.StatusPartialSuccess {
			chain.Completed++
			if status == domain.StatusPartialSuccess {
				chain.Status = domain.StatusPartialSuccess
			}
			continue
		}

		chain.Status = status
		if remaining := len(steps) - i - 1; remaining > 0 {
			a.ui.Warn(fmt.Sprintf("Skipping the remaining %d step(s).", remaining))
		}
		break
	}

	if parent.Valid() {
		a.log.Update(parent, chain.Status, fmt.Sprintf("%d of %d steps completed", chain.Completed, chain.Planned), map[string]any{
			"completed": chain.Completed,
			"planned":   chain.Planned,
		})
	}

	return chain
}

// runStep resolves, logs and dispatches one step, returning its final status.
func (a *Assistant) runStep(ctx context.Context, input string, step domain.ActionStep, result domain.NLUResult, notes []string, first bool) domain.Status {
	res := a.resolve(step, input)
	notes = append(notes, res.Notes...)

	a.session.AddHistory(domain.HistoryEntry{
		Timestamp:  a.clock.Now().UTC(),
		Action:     step.Name,
		Parameters: res.Params.Clone(),
		NLUNotes:   strings.Join(notes, "; "),
	})

	entry := domain.ActivityEntry{
		Action:     step.Name,
		Parameters: res.Params,
		NLUMethod:  result.Method,
	}
	if first {
		entry.ChainOfThought = result.ChainOfThought
	}

	if !res.ok() {
		entry.Status = res.Status
		entry.Details = res.Message
		a.log.Append(entry)
		a.recordStep(step.Name, res.Params, res.Status, res.Message)

		if res.Status.Cancelled() {
			a.ui.Warn(fmt.Sprintf("Cancelled: %s", res.Message))
		} else {
			a.ui.Error(fmt.Sprintf("Cannot run %s", step.Name), res.Message)
		}
		return res.Status
	}

	entry.Status = domain.StatusPendingExecution
	entry.Details = describeStep(step)
	ref := a.log.Append(entry)

	outcome := a.dispatch(ctx, step.Name, res.Params, ref)

	a.log.Update(ref, outcome.Status, outcome.Message, outcome.Data)
	a.recordStep(step.Name, res.Params, outcome.Status, outcome.Message)

	switch outcome.Kind {
	case domain.OutcomeFailed:
		a.ui.Error(fmt.Sprintf("%s failed", step.Name), outcome.Message)
	case domain.OutcomeCancelled:
		a.ui.Warn(outcome.Message)
	}

	return outcome.Status
}

// dispatch calls the handler for name, turning a panic into an
// execution_exception outcome.
func (a *Assistant) dispatch(ctx context.Context, name domain.ActionName, params domain.Params, ref domain.EntryRef) (outcome domain.Outcome) {
	h, ok := a.handlers[name]
	if !ok {
		return domain.Failed(fmt.Sprintf("no handler for action %q", name))
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			stack := stackSummary(debug.Stack())
			a.logger.Error("handler panicked",
				zap.String("action", string(name)),
				zap.Any("panic", recovered),
				zap.String("stack", stack),
			)
			outcome = domain.Outcome{
				Kind:    domain.OutcomeFailed,
				Status:  domain.StatusExecutionException,
				Message: fmt.Sprintf("unexpected error: %v\n%s", recovered, stack),
			}
		}
	}()

	return h(ctx, params, ref)
}

func stackSummary(stack []byte) string {
	lines := strings.Split(strings.TrimSpace(string(stack)), "\n")
	if len(lines) > stackSummaryLines {
		lines = append(lines[:stackSummaryLines], "...")
	}
	return strings.Join(lines, "\n")
}

func stepNames(steps []domain.ActionStep) []string {
	names := make([]string, 0, len(steps))
	for _, step := range steps {
		names = append(names, string(step.Name))
	}
	return names
}

func describeStep(step domain.ActionStep) string {
	if step.Description != "" {
		return step.Description
	}
	return string(step.Name)
}
