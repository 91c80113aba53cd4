package prompt

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
)

// ErrCancelled is returned when the user aborts input with Ctrl+C or Ctrl+D.
var ErrCancelled = errors.New("cancelled by user")

// Prompter interface wraps basic prompting functionality for testability
type Prompter interface {
	Prompt(string) (string, error)
	AppendHistory(string)
	Close() error
}

// Candidates returns the words that may follow the already complete fields.
type Candidates func(fields []string) []string

// LinerPrompter wraps liner.State to implement Prompter interface
type LinerPrompter struct {
	*liner.State
}

// NewLinerPrompter creates a liner-based prompter completing with candidates.
func NewLinerPrompter(candidates Candidates) *LinerPrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if candidates != nil {
		line.SetCompleter(Completer(candidates))
	}
	return &LinerPrompter{State: line}
}

// ReadLine prompts once with a colored prompt and records non-empty input in
// the prompter's history.
func ReadLine(prompter Prompter, prompt string) (string, error) {
	result, err := prompter.Prompt(color.CyanString(prompt + " "))
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("text input failed: %w", err)
	}

	result = strings.TrimSpace(result)
	if result != "" {
		prompter.AppendHistory(result)
	}
	return result, nil
}

// Completer turns candidates into a liner completer. The word under the
// cursor is completed case-insensitively.
func Completer(candidates Candidates) liner.Completer {
	return func(line string) []string {
		fields := strings.Fields(line)
		partial := ""
		if len(fields) > 0 && !strings.HasSuffix(line, " ") {
			partial = fields[len(fields)-1]
			fields = fields[:len(fields)-1]
		}

		prefix := strings.Join(fields, " ")
		if prefix != "" {
			prefix += " "
		}

		var out []string
		for _, word := range candidates(fields) {
			if strings.HasPrefix(strings.ToLower(word), strings.ToLower(partial)) {
				out = append(out, prefix+word)
			}
		}
		sort.Strings(out)
		return out
	}
}
