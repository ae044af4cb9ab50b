package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/fileassist/internal/domain"
	"github.com/dustin/go-humanize"
)

const (
	defaultActivityCount = 10
	maxActivityCount     = 50
	folderSummaryItems   = 15
	detailsColumnWidth   = 60
)

const (
	summarizeInstruction = "Summarize the following content concisely. Focus on the main points and keep it under 200 words. Use Markdown."
	questionInstruction  = "Answer the user's question using only the content below. If the answer is not in the content, say so. Use Markdown.\n\nQuestion: %s"
	chatInstruction      = "You are a helpful file management assistant running in a terminal. Reply briefly and helpfully to the user's message. Use Markdown."
)

func (a *Assistant) handlerMap() map[domain.ActionName]handler {
	return map[domain.ActionName]handler{
		domain.ActionSummarizeFile:        a.summarizeFile,
		domain.ActionAskQuestionAboutFile: a.askQuestionAboutFile,
		domain.ActionListFolderContents:   a.listFolderContents,
		domain.ActionMoveItem:             a.moveItem,
		domain.ActionSearchFiles:          a.searchFiles,
		domain.ActionShowActivityLog:      a.showActivityLog,
		domain.ActionRedoActivity:         a.redoActivity,
		domain.ActionGeneralChat:          a.generalChat,
		domain.ActionOrganize:             a.organize,
	}
}

func (a *Assistant) generate(ctx context.Context, label, instruction, content string) (string, error) {
	var text string
	err := a.ui.Spin(ctx, label, func(ctx context.Context) error {
		var err error
		text, err = a.llm.InvokeForContent(ctx, instruction, content)
		return err
	})
	return text, err
}

func (a *Assistant) summarizeFile(ctx context.Context, params domain.Params, _ domain.EntryRef) domain.Outcome {
	path := params.String(domain.ParamFilePath)

	content, err := a.fs.ContentForSummary(path)
	if err != nil {
		return domain.Failed(fmt.Sprintf("Could not read %s: %v", path, err))
	}
	a.update(domain.KeyLastReferencedFilePath, path)

	if domain.IsPDFStub(content) {
		a.ui.Warn("Only limited information is available for PDF files.")
		a.ui.Panel("About "+filepath.Base(path), content)
		return domain.Partial(fmt.Sprintf("PDF text is not available for %s", path), map[string]any{"file_path": path})
	}

	summary, err := a.generate(ctx, "Summarizing...", summarizeInstruction, content)
	if err != nil {
		return domain.Failed(fmt.Sprintf("Could not summarize %s: %v", path, err))
	}

	a.ui.Markdown("Summary of "+filepath.Base(path), summary)
	return domain.OK(fmt.Sprintf("Summarized %s", path), map[string]any{
		"file_path": path,
		"summary":   summary,
	})
}

func (a *Assistant) askQuestionAboutFile(ctx context.Context, params domain.Params, _ domain.EntryRef) domain.Outcome {
	path := params.String(domain.ParamFilePath)

	question := params.String(domain.ParamQuestionText)
	if question == "" {
		if a.opts.NoPrompt {
			return domain.Cancelled(domain.StatusParameterMissingNoUI, "No question was given.")
		}
		answer, err := a.ui.Prompt("What would you like to know? ")
		if err != nil || answer == "" {
			return domain.Cancelled(domain.StatusCancelledQuestionPrompt, "No question was given.")
		}
		question = answer
		params[domain.ParamQuestionText] = question
	}

	var content string
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		items, err := a.fs.ListFolder(path)
		if err != nil {
			return domain.Failed(fmt.Sprintf("Could not list %s: %v", path, err))
		}
		content = folderSummary(path, items)
		a.update(domain.KeyLastFolderListedPath, path)
	} else {
		text, err := a.fs.ContentForSummary(path)
		if err != nil {
			return domain.Failed(fmt.Sprintf("Could not read %s: %v", path, err))
		}
		a.update(domain.KeyLastReferencedFilePath, path)
		if domain.IsPDFStub(text) {
			a.ui.Warn("Only limited information is available for PDF files.")
			a.ui.Panel("About "+filepath.Base(path), text)
			return domain.Partial(fmt.Sprintf("PDF text is not available for %s", path), map[string]any{"file_path": path})
		}
		content = text
	}

	answer, err := a.generate(ctx, "Reading...", fmt.Sprintf(questionInstruction, question), content)
	if err != nil {
		return domain.Failed(fmt.Sprintf("Could not answer the question about %s: %v", path, err))
	}

	a.ui.Markdown("Answer", answer)
	return domain.OK(fmt.Sprintf("Answered a question about %s", path), map[string]any{
		"file_path": path,
		"answer":    answer,
	})
}

// folderSummary describes a folder for the model, capped to
// folderSummaryItems entries.
func folderSummary(path string, items []domain.ResultItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Folder %s contains %d item(s):\n", path, len(items))
	for i, item := range items {
		if i == folderSummaryItems {
			fmt.Fprintf(&b, "... and %d more\n", len(items)-folderSummaryItems)
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", item.Name, item.Type)
	}
	return b.String()
}

func (a *Assistant) listFolderContents(_ context.Context, params domain.Params, _ domain.EntryRef) domain.Outcome {
	path := params.String(domain.ParamFolderPath)

	items, err := a.fs.ListFolder(path)
	if err != nil {
		return domain.Failed(fmt.Sprintf("Could not list %s: %v", path, err))
	}

	a.update(domain.KeyLastFolderListedPath, path)
	a.update(domain.KeyLastSearchResults, items)

	if len(items) == 0 {
		a.ui.Info(fmt.Sprintf("%s is empty.", path))
	} else {
		a.ui.Table("Contents of "+path, []string{"#", "Name", "Type", "Size"}, itemRows(items, ""))
	}

	return domain.OK(fmt.Sprintf("Listed %d item(s) in %s", len(items), path), map[string]any{
		"folder_path": path,
		"count":       len(items),
	})
}

// itemRows renders results; names are shown relative to base when set.
func itemRows(items []domain.ResultItem, base string) [][]string {
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		name := item.Name
		if base != "" {
			if rel, err := filepath.Rel(base, item.Path); err == nil {
				name = rel
			}
		}
		size := ""
		if item.Type == domain.ItemTypeFile {
			size = humanize.IBytes(uint64(item.Size))
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), name, string(item.Type), size})
	}
	return rows
}

func (a *Assistant) moveItem(_ context.Context, params domain.Params, _ domain.EntryRef) domain.Outcome {
	source := params.String(domain.ParamSourcePath)
	destination := params.String(domain.ParamDestinationPath)

	if a.opts.NoPrompt {
		return domain.Cancelled(domain.StatusParameterMissingNoUI, "Moving requires confirmation.")
	}
	confirmed, err := a.ui.Confirm(fmt.Sprintf("Move %s to %s?", source, destination))
	if err != nil || !confirmed {
		return domain.Cancelled(domain.StatusCancelledConfirmation, "Move cancelled.")
	}

	target, err := a.fs.Move(source, destination)
	if err != nil {
		return domain.Failed(fmt.Sprintf("Could not move %s to %s: %v", source, destination, err))
	}

	a.update(domain.KeyLastReferencedFilePath, "")
	a.update(domain.KeyLastSearchResults, nil)

	a.ui.Success(fmt.Sprintf("Moved %s to %s", source, target))
	return domain.OK(fmt.Sprintf("Moved %s to %s", source, target), map[string]any{
		"source":      source,
		"destination": target,
	})
}

func (a *Assistant) searchFiles(ctx context.Context, params domain.Params, _ domain.EntryRef) domain.Outcome {
	root := params.String(domain.ParamSearchPath)

	criteria := params.String(domain.ParamSearchCriteria)
	if criteria == "" {
		if a.opts.NoPrompt {
			return domain.Cancelled(domain.StatusParameterMissingNoUI, "No search criteria were given.")
		}
		answer, err := a.ui.Prompt("What should I search for? ")
		if err != nil || answer == "" {
			return domain.Cancelled(domain.StatusCancelledCriteriaPrompt, "No search criteria were given.")
		}
		criteria = answer
		params[domain.ParamSearchCriteria] = criteria
	}

	var results []domain.ResultItem
	err := a.ui.Spin(ctx, "Searching...", func(ctx context.Context) error {
		var err error
		results, err = a.fs.Search(ctx, root, criteria, a.llm)
		return err
	})
	if err != nil {
		return domain.Failed(fmt.Sprintf("Search in %s failed: %v", root, err))
	}
	if results == nil {
		results = []domain.ResultItem{}
	}

	a.update(domain.KeyLastFolderListedPath, root)
	a.update(domain.KeyLastSearchResults, results)

	if len(results) == 0 {
		a.ui.Info(fmt.Sprintf("No files in %s match %q.", root, criteria))
	} else {
		a.ui.Table(fmt.Sprintf("Results for %q", criteria), []string{"#", "Path", "Type", "Size"}, itemRows(results, root))
	}

	return domain.OK(fmt.Sprintf("Found %d item(s) matching %q in %s", len(results), criteria, root), map[string]any{
		"search_path": root,
		"count":       len(results),
	})
}

func clampCount(count int) int {
	if count < 1 {
		return 1
	}
	if count > maxActivityCount {
		return maxActivityCount
	}
	return count
}

func (a *Assistant) showActivityLog(_ context.Context, params domain.Params, ref domain.EntryRef) domain.Outcome {
	count := clampCount(params.Int(domain.ParamCount, defaultActivityCount))

	// One extra so this request's own record can be left out.
	entries := a.log.Recent(count + 1)
	filtered := make([]domain.ActivityEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ID != ref.ID {
			filtered = append(filtered, entry)
		}
	}
	if len(filtered) > count {
		filtered = filtered[len(filtered)-count:]
	}

	if len(filtered) == 0 {
		a.ui.Info("No activity has been recorded yet.")
		return domain.OK("No activity recorded", map[string]any{"count": 0})
	}

	rows := make([][]string, 0, len(filtered))
	for i := len(filtered) - 1; i >= 0; i-- {
		entry := filtered[i]
		rows = append(rows, []string{
			strconv.Itoa(len(filtered) - i),
			humanize.Time(entry.Timestamp),
			string(entry.Action),
			string(entry.Status),
			truncate(entry.Details, detailsColumnWidth),
		})
	}
	a.ui.Table(fmt.Sprintf("Last %d activities", len(filtered)), []string{"#", "When", "Action", "Status", "Details"}, rows)

	return domain.OK(fmt.Sprintf("Showed %d activities", len(filtered)), map[string]any{"count": len(filtered)})
}

func truncate(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}

func (a *Assistant) redoActivity(ctx context.Context, params domain.Params, ref domain.EntryRef) domain.Outcome {
	identifier := params.String(domain.ParamActivityIdentifier)
	if identifier == "" {
		identifier = "last"
	}

	entry, err := a.log.Lookup(identifier, ref.ID)
	if err != nil {
		if errors.Is(err, domain.ErrActivityNotFound) {
			return domain.Failed(fmt.Sprintf("No activity matches %q.", identifier))
		}
		return domain.Failed(fmt.Sprintf("Could not look up %q: %v", identifier, err))
	}

	if entry.Action == domain.ActionRedoActivity {
		return domain.Failed("Redoing a redo is not supported.")
	}
	if _, ok := a.handlers[entry.Action]; !ok {
		return domain.Failed(fmt.Sprintf("Activity %q cannot be redone.", entry.Action))
	}

	encoded, err := json.MarshalIndent(entry.Parameters, "", "  ")
	if err != nil {
		encoded = []byte(fmt.Sprint(entry.Parameters))
	}
	a.ui.Panel("Redo "+string(entry.Action), fmt.Sprintf("Recorded %s (%s)\nParameters:\n%s",
		entry.Timestamp.Local().Format("2006-01-02 15:04:05"), entry.Status, encoded))

	if a.opts.NoPrompt {
		return domain.Cancelled(domain.StatusParameterMissingNoUI, "Redo requires confirmation.")
	}
	confirmed, err := a.ui.Confirm("Run this action again?")
	if err != nil || !confirmed {
		return domain.Cancelled(domain.StatusCancelledConfirmation, "Redo cancelled.")
	}

	outcome := a.dispatch(ctx, entry.Action, entry.Parameters.Clone(), ref)
	if outcome.Data == nil {
		outcome.Data = map[string]any{}
	}
	outcome.Data["redone_activity_id"] = entry.ID
	outcome.Data["redone_action"] = string(entry.Action)
	outcome.Message = fmt.Sprintf("Redo of %s: %s", entry.Action, outcome.Message)
	return outcome
}

func (a *Assistant) generalChat(ctx context.Context, params domain.Params, _ domain.EntryRef) domain.Outcome {
	request := params.String(domain.ParamOriginalRequest)
	if request == "" {
		return domain.Failed("There was nothing to reply to.")
	}

	reply, err := a.generate(ctx, "Thinking...", chatInstruction, request)
	if err != nil {
		return domain.Failed(fmt.Sprintf("Could not get a reply: %v", err))
	}

	a.ui.Markdown("", reply)
	return domain.OK("Replied", map[string]any{"reply": reply})
}
