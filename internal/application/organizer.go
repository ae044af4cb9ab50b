package application

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/fileassist/internal/domain"
)

const organizationSummaryItems = 50

// organize asks the model for a folder plan, shows it with invalid rows
// marked and runs the valid actions in order once confirmed.
func (a *Assistant) organize(ctx context.Context, params domain.Params, _ domain.EntryRef) domain.Outcome {
	base := filepath.Clean(params.String(domain.ParamTargetPath))
	goal := params.String(domain.ParamOrganizationGoal)
	if goal == "" {
		goal = domain.DefaultOrganizationGoal
		params[domain.ParamOrganizationGoal] = goal
	}

	items, err := a.organizationItems(base)
	if err != nil {
		return domain.Failed(fmt.Sprintf("Could not list %s: %v", base, err))
	}
	if len(items) == 0 {
		a.ui.Info(fmt.Sprintf("%s is empty; there is nothing to organize.", base))
		return domain.OK("Nothing to organize", map[string]any{"base_path": base})
	}

	var plan []domain.OrganizationAction
	err = a.ui.Spin(ctx, "Planning...", func(ctx context.Context) error {
		var err error
		plan, err = a.llm.GenerateOrganizationPlan(ctx, summarizeItems(items, base), goal, base)
		return err
	})
	if err != nil {
		return domain.Failed(fmt.Sprintf("Could not get an organization plan: %v", err))
	}
	if len(plan) == 0 {
		a.ui.Info("The model proposed no changes.")
		return domain.OK("No changes proposed", map[string]any{"base_path": base})
	}

	validated := domain.ValidatePlan(plan, base)
	valid := 0
	for _, action := range validated {
		if action.Valid() {
			valid++
		}
	}

	a.ui.Table(fmt.Sprintf("Proposed plan for %s", base), []string{"#", "Action", "Details", "Check"}, planRows(validated, base))
	if valid == 0 {
		return domain.Failed("None of the proposed actions passed validation.")
	}
	if invalid := len(validated) - valid; invalid > 0 {
		a.ui.Warn(fmt.Sprintf("%d invalid action(s) will be skipped.", invalid))
	}

	if a.opts.NoPrompt {
		return domain.Cancelled(domain.StatusParameterMissingNoUI, "Organizing requires confirmation.")
	}
	confirmed, err := a.ui.Confirm(fmt.Sprintf("Execute %d action(s)?", valid))
	if err != nil || !confirmed {
		return domain.Cancelled(domain.StatusCancelledConfirmation, "Organization cancelled.")
	}

	counts := a.executePlan(validated)
	a.session.ClearFoci()

	summary := counts.summary()
	status := domain.StatusSuccess
	switch {
	case counts.Failed > 0 && counts.succeeded() == 0:
		status = domain.StatusFailed
	case counts.Failed > 0:
		status = domain.StatusPartialSuccess
	}

	a.log.Append(domain.ActivityEntry{
		Action:     domain.ActionExecOrgPlan,
		Parameters: domain.Params{domain.ParamTargetPath: base, domain.ParamOrganizationGoal: goal},
		Status:     status,
		Details:    summary,
		ResultData: counts.data(),
	})

	data := counts.data()
	data["base_path"] = base
	switch status {
	case domain.StatusFailed:
		return domain.Failed(summary)
	case domain.StatusPartialSuccess:
		a.ui.Warn(summary)
		return domain.Partial(summary, data)
	default:
		a.ui.Success(summary)
		return domain.OK(summary, data)
	}
}

// organizationItems reuses the last results when they are exactly the
// children of base, and lists base afresh otherwise.
func (a *Assistant) organizationItems(base string) ([]domain.ResultItem, error) {
	cached := a.session.LastSearchResults
	if len(cached) > 0 {
		direct := true
		for _, item := range cached {
			if filepath.Dir(filepath.Clean(item.Path)) != base {
				direct = false
				break
			}
		}
		if direct {
			return cached, nil
		}
	}

	return a.fs.ListFolder(base)
}

func summarizeItems(items []domain.ResultItem, base string) string {
	var b strings.Builder
	for i, item := range items {
		if i == organizationSummaryItems {
			fmt.Fprintf(&b, "... and %d more item(s) not shown\n", len(items)-organizationSummaryItems)
			break
		}
		name := item.Name
		if rel, err := filepath.Rel(base, item.Path); err == nil {
			name = rel
		}
		fmt.Fprintf(&b, "- %s (%s)\n", name, item.Type)
	}
	return b.String()
}

func planRows(validated []domain.ValidatedAction, base string) [][]string {
	rel := func(path string) string {
		if r, err := filepath.Rel(base, path); err == nil && filepath.IsAbs(path) && !strings.HasPrefix(r, "..") {
			return r
		}
		return path
	}

	rows := make([][]string, 0, len(validated))
	for i, v := range validated {
		var details string
		switch v.Action.Type {
		case domain.OrgCreateFolder:
			details = rel(v.Action.Path)
		case domain.OrgMoveItem:
			details = fmt.Sprintf("%s -> %s", rel(v.Action.Source), rel(v.Action.Destination))
		default:
			details = strings.TrimSpace(strings.Join([]string{v.Action.Path, v.Action.Source, v.Action.Destination}, " "))
		}

		check := "ok"
		if !v.Valid() {
			check = "INVALID: " + v.Err.Error()
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), string(v.Action.Type), details, check})
	}
	return rows
}

type planCounts struct {
	Created  int
	Existing int
	Moved    int
	Failed   int
	Skipped  int
}

func (c planCounts) succeeded() int {
	return c.Created + c.Existing + c.Moved
}

func (c planCounts) summary() string {
	return fmt.Sprintf("Organization finished: %d folder(s) created, %d already existed, %d item(s) moved, %d failed, %d invalid skipped",
		c.Created, c.Existing, c.Moved, c.Failed, c.Skipped)
}

func (c planCounts) data() map[string]any {
	return map[string]any{
		"created":  c.Created,
		"existing": c.Existing,
		"moved":    c.Moved,
		"failed":   c.Failed,
		"skipped":  c.Skipped,
	}
}

// executePlan runs the valid actions in order, logging each one as its own
// activity record. A failed action does not stop the rest.
func (a *Assistant) executePlan(validated []domain.ValidatedAction) planCounts {
	var counts planCounts
	for _, v := range validated {
		if !v.Valid() {
			counts.Skipped++
			continue
		}

		action := v.Action
		switch action.Type {
		case domain.OrgCreateFolder:
			ref := a.log.Append(domain.ActivityEntry{
				Action:     domain.ActionExecOrgCreateFolder,
				Parameters: domain.Params{"path": action.Path},
				Status:     domain.StatusPendingExecution,
			})
			created, err := a.fs.CreateFolder(action.Path)
			switch {
			case err != nil:
				counts.Failed++
				a.log.Update(ref, domain.StatusFailed, err.Error(), nil)
				a.ui.Warn(fmt.Sprintf("Could not create %s: %v", action.Path, err))
			case created:
				counts.Created++
				a.log.Update(ref, domain.StatusSuccess, "created", nil)
			default:
				counts.Existing++
				a.log.Update(ref, domain.StatusSuccess, "already exists", nil)
			}
		case domain.OrgMoveItem:
			ref := a.log.Append(domain.ActivityEntry{
				Action:     domain.ActionExecOrgMoveItem,
				Parameters: domain.Params{"source": action.Source, "destination": action.Destination},
				Status:     domain.StatusPendingExecution,
			})
			target, err := a.fs.Move(action.Source, action.Destination)
			if err != nil {
				counts.Failed++
				a.log.Update(ref, domain.StatusFailed, err.Error(), nil)
				a.ui.Warn(fmt.Sprintf("Could not move %s: %v", action.Source, err))
				continue
			}
			counts.Moved++
			a.log.Update(ref, domain.StatusSuccess, "moved to "+target, map[string]any{"target": target})
		}
	}
	return counts
}
