package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/guidectx/internal/guideline"
	"github.com/roach88/guidectx/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Request rejected (unknown guideline, pending version exists, etc.)
	ExitCommandError = 2 // Command error (bad flags, unreadable config, database unavailable)
)

// CLI error codes for failures that are not guideline errors.
const (
	ErrCodeStorage       = "E001" // Database unavailable or query failed
	ErrCodeInput         = "E002" // Unreadable input file or malformed argument
	ErrCodeNotFound      = "E003" // Repository or context not found
	ErrCodeAlreadyExists = "E004" // Repository or context name taken
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set once the error has been written through an
	// OutputFormatter, so Execute does not print it a second time.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // guideline error code or "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Result outputs data as JSON, or calls text to render it for humans.
func (f *OutputFormatter) Result(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return f.Success(data)
	}
	text(f.Writer)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err through the formatter and returns the ExitError the
// command should return. Guideline rejections exit with ExitFailure;
// storage and other errors exit with ExitCommandError.
func (f *OutputFormatter) Fail(err error) error {
	code, exit, details := classify(err)

	message := err.Error()
	var ge *guideline.Error
	if errors.As(err, &ge) {
		message = ge.Message
	}

	_ = f.Error(code, message, details)
	return &ExitError{Code: exit, Message: message, Err: err, Reported: true}
}

func classify(err error) (code string, exit int, details any) {
	var ge *guideline.Error
	if errors.As(err, &ge) {
		d := map[string]any{}
		if ge.ContextID != 0 {
			d["context_id"] = ge.ContextID
		}
		if ge.Content != "" {
			d["content"] = ge.Content
		}
		if len(d) == 0 {
			return string(ge.Code), ExitFailure, nil
		}
		return string(ge.Code), ExitFailure, d
	}

	var exitErr *ExitError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound, ExitFailure, nil
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrCodeAlreadyExists, ExitFailure, nil
	case errors.Is(err, store.ErrInvalidName):
		return ErrCodeInput, ExitFailure, nil
	case errors.As(err, &exitErr):
		return ErrCodeInput, exitErr.Code, nil
	}
	return ErrCodeStorage, ExitCommandError, nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
