package nlu

import (
	"fmt"
	"strings"

	"github.com/bnema/fileassist/internal/domain"
)

const (
	maxContextResults = 10
	maxContextHistory = 3
)

const systemDescription = `You are the command interpreter of a file-management assistant running in a terminal.
Translate the user's request into an ordered list of actions. Never invent file names or paths:
use a path only when the user wrote it, or use a placeholder.
Placeholders for path parameters:
- "__FROM_CONTEXT__": the user refers to something from the session context ("it", "this file", "that folder", "here").
- "__CURRENT_DIR__": the user means the current working directory (".", "current folder").
- "__MISSING__": a required path is needed but the user did not give one and the context cannot supply it.
If the request is ambiguous, set clarification_needed to true and ask one short suggested_question.`

type actionSchema struct {
	name        domain.ActionName
	params      []string
	description string
}

var actionSchemas = []actionSchema{
	{domain.ActionSummarizeFile, []string{domain.ParamFilePath}, "summarize the content of one file"},
	{domain.ActionAskQuestionAboutFile, []string{domain.ParamFilePath, domain.ParamQuestionText}, "answer a question about a file or a folder"},
	{domain.ActionListFolderContents, []string{domain.ParamFolderPath}, "list the items of a folder"},
	{domain.ActionMoveItem, []string{domain.ParamSourcePath, domain.ParamDestinationPath}, "move or rename a file or folder"},
	{domain.ActionSearchFiles, []string{domain.ParamSearchCriteria, domain.ParamSearchPath}, "search recursively; criteria may use containing '<text>', about '<topic>', named '<text>' and type words like images or documents"},
	{domain.ActionShowActivityLog, []string{domain.ParamCount}, "show recent activity (count defaults to 10)"},
	{domain.ActionRedoActivity, []string{domain.ParamActivityIdentifier}, "repeat a logged activity: \"last\", a recency index, or a timestamp"},
	{domain.ActionGeneralChat, []string{domain.ParamOriginalRequest}, "anything that is not a file operation"},
	{domain.ActionOrganize, []string{domain.ParamTargetPath, domain.ParamOrganizationGoal}, "propose and, after confirmation, apply a reorganization of a folder"},
	{domain.ActionUnknown, []string{domain.ParamErrorReason}, "the request cannot be mapped to any action"},
}

const examples = `Example: "what is in the reports folder?"
{"chain_of_thought": "The user wants the items of a named folder.", "actions": [{"action_name": "list_folder_contents", "parameters": {"folder_path": "reports"}, "step_description": "List reports"}], "clarification_needed": false, "suggested_question": ""}

Example: "summarize it" (a file was referenced before)
{"chain_of_thought": "'it' refers to the last referenced file.", "actions": [{"action_name": "summarize_file", "parameters": {"file_path": "__FROM_CONTEXT__"}, "step_description": "Summarize the file in context"}], "clarification_needed": false, "suggested_question": ""}

Example: "find pdfs about 'taxes' here and then list this folder"
{"chain_of_thought": "Two steps: a semantic search in the current directory, then a listing of it.", "actions": [{"action_name": "search_files", "parameters": {"search_criteria": "pdf documents about 'taxes'", "search_path": "__CURRENT_DIR__"}, "step_description": "Search PDFs about taxes"}, {"action_name": "list_folder_contents", "parameters": {"folder_path": "__CURRENT_DIR__"}, "step_description": "List the current folder"}], "clarification_needed": false, "suggested_question": ""}

Example: "move the file"
{"chain_of_thought": "The destination is unknown and the file is not clear.", "actions": [], "clarification_needed": true, "suggested_question": "Which file should I move, and where to?"}`

const responseFormat = `Respond with exactly one JSON object and nothing else:
{"chain_of_thought": "<short reasoning>", "actions": [{"action_name": "<one of the actions>", "parameters": {...}, "step_description": "<short>"}], "clarification_needed": false, "suggested_question": ""}`

// BuildIntentPrompt assembles the intent-extraction prompt for one user line.
func BuildIntentPrompt(userText string, session *domain.SessionContext) string {
	var builder strings.Builder

	builder.WriteString(systemDescription)
	builder.WriteString("\n\nPermitted actions:\n")
	for _, schema := range actionSchemas {
		fmt.Fprintf(&builder, "- %s(%s): %s\n", schema.name, strings.Join(schema.params, ", "), schema.description)
	}

	builder.WriteString("\n")
	builder.WriteString(examples)

	builder.WriteString("\n\nSession context:\n")
	for _, line := range ContextLines(session) {
		builder.WriteString("- " + line + "\n")
	}

	builder.WriteString("\nUser input:\n")
	builder.WriteString(strings.TrimSpace(userText))
	builder.WriteString("\n\n")
	builder.WriteString(responseFormat)
	builder.WriteString("\n")

	return builder.String()
}

// ContextLines summarizes the session as short bullet lines.
func ContextLines(session *domain.SessionContext) []string {
	if session == nil {
		return []string{"No session context."}
	}

	lines := []string{"Current directory: " + session.CurrentDirectory()}
	lines = append(lines, "Last referenced file: "+orNone(session.LastReferencedFilePath))
	lines = append(lines, "Last listed folder: "+orNone(session.LastFolderListedPath))

	if count := len(session.LastSearchResults); count == 0 {
		lines = append(lines, "Last search results: none")
	} else {
		shown := session.LastSearchResults
		if len(shown) > maxContextResults {
			shown = shown[:maxContextResults]
		}
		parts := make([]string, 0, len(shown))
		for i, item := range shown {
			parts = append(parts, fmt.Sprintf("%d. %s (%s)", i+1, item.Name, item.Type))
		}
		suffix := ""
		if count > len(shown) {
			suffix = fmt.Sprintf(" ... and %d more", count-len(shown))
		}
		lines = append(lines, fmt.Sprintf("Last search results (%d): %s%s", count, strings.Join(parts, "; "), suffix))
	}

	if session.LastAction != "" {
		lines = append(lines, fmt.Sprintf("Last action: %s (%s)", session.LastAction, orNone(string(session.LastCommandStatus))))
	}

	history := session.CommandHistory
	if len(history) > maxContextHistory {
		history = history[len(history)-maxContextHistory:]
	}
	for _, entry := range history {
		request := entry.Parameters.String(domain.ParamOriginalRequest)
		if request == "" {
			lines = append(lines, fmt.Sprintf("Earlier: %s", entry.Action))
			continue
		}
		lines = append(lines, fmt.Sprintf("Earlier: %s (%q)", entry.Action, request))
	}

	return lines
}

// BuildOrganizationPrompt asks for a JSON array of CREATE_FOLDER and
// MOVE_ITEM operations with absolute paths under basePath.
func BuildOrganizationPrompt(itemsSummary string, goal string, basePath string) string {
	var builder strings.Builder

	builder.WriteString("You reorganize one folder. Propose a plan as a JSON array and nothing else.\n")
	builder.WriteString("Each element is either {\"action_type\": \"CREATE_FOLDER\", \"path\": \"<absolute path>\"}\n")
	builder.WriteString("or {\"action_type\": \"MOVE_ITEM\", \"source\": \"<absolute path>\", \"destination\": \"<absolute path>\"}.\n")
	builder.WriteString("Every path must be absolute and inside the base path. Create folders before moving items into them.\n")
	builder.WriteString("Do not delete anything. Return [] when no change is useful.\n\n")
	fmt.Fprintf(&builder, "Base path: %s\n", basePath)
	fmt.Fprintf(&builder, "Goal: %s\n\n", goal)
	builder.WriteString("Items (relative to the base path):\n")
	builder.WriteString(strings.TrimSpace(itemsSummary))
	builder.WriteString("\n")

	return builder.String()
}

// BuildContentMatchPrompt asks for a single YES or NO.
func BuildContentMatchPrompt(content string, criteria string) string {
	var builder strings.Builder

	builder.WriteString("Does the following content match this description?\n")
	fmt.Fprintf(&builder, "Description: %s\n\n", criteria)
	builder.WriteString("Content:\n")
	builder.WriteString(content)
	builder.WriteString("\n\nAnswer with exactly one word: YES or NO.\n")

	return builder.String()
}

// BuildContentPrompt joins a free-form instruction with optional content.
func BuildContentPrompt(instruction string, content string) string {
	if strings.TrimSpace(content) == "" {
		return instruction
	}

	return instruction + "\n\n---\n" + content + "\n---\n"
}

func orNone(value string) string {
	if value == "" {
		return "none"
	}
	return value
}
