package ports

import "context"

// Presenter is the terminal surface. Prompt returns "" with a nil error when
// the user submits nothing; io.EOF is reported as an error.
type Presenter interface {
	Info(message string)
	Warn(message string)
	Success(message string)
	Error(title string, message string)
	Panel(title string, body string)
	Markdown(title string, markdown string)
	Table(title string, headers []string, rows [][]string)
	Prompt(label string) (string, error)
	Confirm(question string) (bool, error)
	Spin(ctx context.Context, label string, fn func(ctx context.Context) error) error
}
