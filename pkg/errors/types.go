// Package errors provides typed errors for the floyd project.
//
// Each subsystem (config, process execution, branch validation, git context,
// AI generation, forge) has its own error type carrying structured fields.
// All error types implement the standard error interface and support
// errors.Is() and errors.As() from the standard library and cockroachdb/errors.
package errors

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Field   string // Which config field has the issue
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	}
	return "config error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with an underlying cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// ExecError represents a failed external process invocation.
// NotFound is set when the executable could not be located at all.
type ExecError struct {
	Tool     string
	Detail   string
	NotFound bool
	ExitCode int
	Cause    error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("tool %q not found", e.Tool)
	}
	return fmt.Sprintf("%s failed: %s", e.Tool, e.Detail)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ExecError) Unwrap() error {
	return e.Cause
}

// NewExecutionFailed creates an ExecError for a process that exited unsuccessfully.
func NewExecutionFailed(tool, detail string, exitCode int, cause error) *ExecError {
	return &ExecError{Tool: tool, Detail: detail, ExitCode: exitCode, Cause: cause}
}

// NewToolNotFound creates an ExecError for a missing executable.
func NewToolNotFound(tool string, cause error) *ExecError {
	return &ExecError{Tool: tool, NotFound: true, ExitCode: -1, Cause: cause}
}

// ValidationKind identifies why branch validation rejected a run.
type ValidationKind string

const (
	KindNotRepository   ValidationKind = "not_repository"
	KindInvalidBranch   ValidationKind = "invalid_branch"
	KindBranchNotFound  ValidationKind = "branch_not_found"
	KindPRAlreadyExists ValidationKind = "pr_already_exists"
)

// ValidationError represents a precondition failure detected before any
// context is gathered. Head and Base are set for KindPRAlreadyExists,
// Branch for KindBranchNotFound.
type ValidationError struct {
	Kind    ValidationKind
	Branch  string
	Head    string
	Base    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindBranchNotFound:
		return fmt.Sprintf("branch %q not found", e.Branch)
	case KindPRAlreadyExists:
		return fmt.Sprintf("a pull request already exists for %q -> %q", e.Head, e.Base)
	}
	if e.Message != "" {
		return e.Message
	}
	return "validation failed: " + string(e.Kind)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewNotRepository creates a ValidationError for a directory outside a git work tree.
func NewNotRepository() *ValidationError {
	return &ValidationError{Kind: KindNotRepository, Message: "this directory is not a git repository"}
}

// NewInvalidBranch creates a ValidationError for an unusable branch pair or name.
func NewInvalidBranch(message string) *ValidationError {
	return &ValidationError{Kind: KindInvalidBranch, Message: message}
}

// NewBranchNotFound creates a ValidationError for an unresolvable branch.
func NewBranchNotFound(branch string) *ValidationError {
	return &ValidationError{Kind: KindBranchNotFound, Branch: branch}
}

// NewPRAlreadyExists creates a ValidationError for an existing open pull request.
func NewPRAlreadyExists(head, base string) *ValidationError {
	return &ValidationError{Kind: KindPRAlreadyExists, Head: head, Base: base}
}

// ContextError represents a failure to assemble the git context of a run,
// including the case where there is nothing to propose.
type ContextError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ContextError) Error() string {
	return "git context: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ContextError) Unwrap() error {
	return e.Cause
}

// ErrNoChanges is the message used when the diff against the target is empty.
const ErrNoChanges = "no changes found to create a pull request"

// NewNoChanges creates a ContextError for an empty diff.
func NewNoChanges() *ContextError {
	return &ContextError{Message: ErrNoChanges}
}

// NewContextErrorWithCause creates a ContextError with an underlying cause.
func NewContextErrorWithCause(message string, cause error) *ContextError {
	return &ContextError{Message: message, Cause: cause}
}

// ParseError is returned when an AI reply cannot be turned into a draft.
type ParseError struct {
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return "could not parse AI response: " + e.Reason
}

// NewParseError creates a new ParseError.
func NewParseError(reason string) *ParseError {
	return &ParseError{Reason: reason}
}

// GenerationError represents a failed draft generation, either because the
// provider CLI failed or because its reply could not be parsed.
type GenerationError struct {
	Provider string // e.g., "claude", "gemini"
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("ai %s generation failed: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(provider, message string) *GenerationError {
	return &GenerationError{Provider: provider, Message: message}
}

// NewGenerationErrorWithCause creates a new GenerationError with an underlying cause.
func NewGenerationErrorWithCause(provider, message string, cause error) *GenerationError {
	return &GenerationError{Provider: provider, Message: message, Cause: cause}
}

// ForgeError represents a failed forge CLI query.
type ForgeError struct {
	Operation string // e.g., "ListPRs", "Auth"
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *ForgeError) Error() string {
	return fmt.Sprintf("forge %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ForgeError) Unwrap() error {
	return e.Cause
}

// NewForgeError creates a new ForgeError.
func NewForgeError(operation, message string) *ForgeError {
	return &ForgeError{Operation: operation, Message: message}
}

// NewForgeErrorWithCause creates a new ForgeError with an underlying cause.
func NewForgeErrorWithCause(operation, message string, cause error) *ForgeError {
	return &ForgeError{Operation: operation, Message: message, Cause: cause}
}

// CreationError represents a failure to submit the pull request.
type CreationError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CreationError) Error() string {
	return "pull request creation failed: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *CreationError) Unwrap() error {
	return e.Cause
}

// NewCreationError creates a new CreationError.
func NewCreationError(message string) *CreationError {
	return &CreationError{Message: message}
}

// NewCreationErrorWithCause creates a new CreationError with an underlying cause.
func NewCreationErrorWithCause(message string, cause error) *CreationError {
	return &CreationError{Message: message, Cause: cause}
}

// IsConfigError checks if an error or any error in its chain is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsExecError checks if an error or any error in its chain is an ExecError.
func IsExecError(err error) bool {
	var execErr *ExecError
	return errors.As(err, &execErr)
}

// IsToolNotFound checks if an error chain contains an ExecError for a missing executable.
func IsToolNotFound(err error) bool {
	var execErr *ExecError
	return errors.As(err, &execErr) && execErr.NotFound
}

// IsValidationError checks if an error or any error in its chain is a ValidationError.
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// ValidationKindOf returns the kind of the first ValidationError in the chain, or "".
func ValidationKindOf(err error) ValidationKind {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Kind
	}
	return ""
}

// IsContextError checks if an error or any error in its chain is a ContextError.
func IsContextError(err error) bool {
	var ctxErr *ContextError
	return errors.As(err, &ctxErr)
}

// IsGenerationError checks if an error or any error in its chain is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsParseError checks if an error or any error in its chain is a ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsForgeError checks if an error or any error in its chain is a ForgeError.
func IsForgeError(err error) bool {
	var forgeErr *ForgeError
	return errors.As(err, &forgeErr)
}

// IsCreationError checks if an error or any error in its chain is a CreationError.
func IsCreationError(err error) bool {
	var createErr *CreationError
	return errors.As(err, &createErr)
}

// IsCancelled reports whether err stems from a cancelled context.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// ExitCode maps a workflow error to the process exit status.
// Success and user cancellation exit 0, everything else exits 1.
func ExitCode(err error) int {
	if err == nil || IsCancelled(err) {
		return 0
	}
	return 1
}

// Re-export commonly used functions from cockroachdb/errors for convenience.
// This allows consumers to use floyderrors.Wrap() instead of importing two packages.
var (
	// New creates a new error with the given message.
	New = errors.New

	// Newf creates a new error with formatted message.
	Newf = errors.Newf

	// Wrap wraps an error with additional context.
	Wrap = errors.Wrap

	// Wrapf wraps an error with formatted additional context.
	Wrapf = errors.Wrapf

	// Is reports whether any error in err's chain matches target.
	Is = errors.Is

	// As finds the first error in err's chain that matches target.
	As = errors.As

	// Cause returns the root cause of an error.
	Cause = errors.Cause
)
