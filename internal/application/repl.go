package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const helpText = `Describe what you want in plain language, for example:

  list contents of "./docs"
  search images in .
  search files containing 'budget' in ~/Documents
  summarize item 2
  ask "notes.md" what the deadlines are
  move "x.txt" to "archive/"
  organize this folder by name
  show the last 5 activities
  redo last

Paths in quotes are taken literally. "item N", "#N" or "the second one" refer
to the last listing or search results.

Commands: help, quit (also exit, bye, q).`

var quitCommands = map[string]struct{}{
	"quit": {},
	"exit": {},
	"bye":  {},
	"q":    {},
}

type lineKind int

const (
	lineEmpty lineKind = iota
	lineQuit
	lineHelp
	lineCommand
)

func classifyLine(line string) lineKind {
	trimmed := strings.ToLower(strings.TrimSpace(line))
	if trimmed == "" {
		return lineEmpty
	}
	if _, ok := quitCommands[trimmed]; ok {
		return lineQuit
	}
	if trimmed == "help" {
		return lineHelp
	}
	return lineCommand
}

// HandleLine processes one line of input and reports whether the user asked
// to leave.
func (a *Assistant) HandleLine(ctx context.Context, line string) bool {
	switch classifyLine(line) {
	case lineEmpty:
		return false
	case lineQuit:
		return true
	case lineHelp:
		a.ui.Panel("Help", helpText)
		return false
	}

	result := a.Execute(ctx, line)
	a.logger.Debug("command finished",
		zap.String("status", string(result.Status)),
		zap.Int("planned", result.Planned),
		zap.Int("completed", result.Completed),
	)

	if err := a.SaveSession(ctx); err != nil {
		a.logger.Warn("session context not saved", zap.Error(err))
	}
	return false
}

// Run is the read-eval loop. It returns nil on quit or end of input.
func (a *Assistant) Run(ctx context.Context) error {
	a.ui.Panel("File assistant", fmt.Sprintf("Connected to %s. Type 'help' for examples or 'quit' to leave.", a.llm.Name()))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := a.ui.Prompt("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		if a.HandleLine(ctx, line) {
			a.ui.Info("Goodbye.")
			return nil
		}
	}
}
