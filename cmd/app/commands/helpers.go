// Package commands contains CLI command implementations for the application.
package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/allisson/keyvault/internal/app"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// prompter reads answers line by line from one buffered reader so consecutive
// prompts do not lose buffered input.
type prompter struct {
	io     IOTuple
	reader *bufio.Reader
}

func newPrompter(io IOTuple) *prompter {
	return &prompter{io: io, reader: bufio.NewReader(io.Reader)}
}

// ask prints question and returns the trimmed answer.
func (p *prompter) ask(question string) (string, error) {
	_, _ = fmt.Fprint(p.io.Writer, question)
	answer, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || answer == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// askHidden reads a line without echo when the reader is a terminal.
func (p *prompter) askHidden(question string) (string, error) {
	if f, ok := p.io.Reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(p.io.Writer, question)
		value, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(p.io.Writer)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(string(value)), nil
	}
	return p.ask(question)
}

// confirm asks a yes/no question. Only "y" and "yes" confirm.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question + " (y/n): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// maskValue hides all but the last four characters of value.
func maskValue(value string) string {
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}

// writeJSON writes result as indented JSON.
func writeJSON(writer io.Writer, result any) error {
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
