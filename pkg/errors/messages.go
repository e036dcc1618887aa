package errors

import (
	"fmt"
	"strings"
)

// FormatUserError returns a user-friendly error message with actionable guidance.
// It examines the error chain and provides context-appropriate help text.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	if IsCancelled(err) {
		return "Operation cancelled."
	}

	var configErr *ConfigError
	if As(err, &configErr) {
		return formatConfigError(configErr)
	}

	var valErr *ValidationError
	if As(err, &valErr) {
		return formatValidationError(valErr)
	}

	var ctxErr *ContextError
	if As(err, &ctxErr) {
		return formatContextError(ctxErr)
	}

	var genErr *GenerationError
	if As(err, &genErr) {
		return formatGenerationError(genErr)
	}

	var createErr *CreationError
	if As(err, &createErr) {
		return formatCreationError(createErr)
	}

	var forgeErr *ForgeError
	if As(err, &forgeErr) {
		return formatForgeError(forgeErr)
	}

	var execErr *ExecError
	if As(err, &execErr) {
		return formatExecError(execErr)
	}

	// Default: return the error message as-is
	return err.Error()
}

// formatConfigError formats a ConfigError with actionable guidance.
func formatConfigError(err *ConfigError) string {
	var b strings.Builder

	if err.Field != "" {
		fmt.Fprintf(&b, "Configuration error in '%s': %s\n", err.Field, err.Message)
	} else {
		fmt.Fprintf(&b, "Configuration error: %s\n", err.Message)
	}

	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Check your config file (run 'floyd config show' to see the effective settings)\n")
	b.WriteString("  • Run 'floyd config init' to write a fresh default config\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatValidationError formats a ValidationError. These are expected user
// situations, so the guidance is short.
func formatValidationError(err *ValidationError) string {
	switch err.Kind {
	case KindNotRepository:
		return "Error: This directory is not a git repository."
	case KindBranchNotFound:
		return fmt.Sprintf("Error: The branch '%s' does not exist on origin or locally.\n\nTo fix this:\n  • Check the spelling of the target branch\n  • Run 'git fetch' to update remote-tracking branches", err.Branch)
	case KindPRAlreadyExists:
		return fmt.Sprintf("An open PR already exists for '%s' -> '%s'", err.Head, err.Base)
	default:
		return err.Error()
	}
}

// formatContextError formats a ContextError.
func formatContextError(err *ContextError) string {
	if err.Message == ErrNoChanges {
		return "No changes found to create a PR."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Failed to read git state: %s\n", err.Message)
	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Check your git repository is in a clean state\n")
	b.WriteString("  • Run with --verbose for more details\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatGenerationError formats a GenerationError with guidance that depends
// on whether the provider CLI failed or its reply was unusable.
func formatGenerationError(err *GenerationError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Failed to generate PR (%s): %s\n", err.Provider, err.Message)

	switch {
	case IsToolNotFound(err.Cause):
		fmt.Fprintf(&b, "\nThe %s CLI is not installed. To fix this:\n", err.Provider)
		b.WriteString("  • Install the CLI and make sure it is on your PATH\n")
		b.WriteString("  • Or choose another provider with --provider or ai.provider\n")
	case IsParseError(err.Cause):
		b.WriteString("\nThe AI reply did not follow the TITLE:/BODY: format. To fix this:\n")
		b.WriteString("  • Run the command again\n")
		b.WriteString("  • Review ai.instructions for anything that changes the output format\n")
	default:
		b.WriteString("\nTo fix this:\n")
		fmt.Fprintf(&b, "  • Check that the %s CLI is authenticated and works on its own\n", err.Provider)
		b.WriteString("  • Run with --verbose for more details\n")
	}

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatCreationError formats a CreationError.
func formatCreationError(err *CreationError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Failed to create PR: %s\n", err.Message)
	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Run 'gh auth status' to confirm you are logged in\n")
	b.WriteString("  • Make sure the current branch has been pushed\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatForgeError formats a ForgeError.
func formatForgeError(err *ForgeError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "GitHub CLI error during %s: %s\n", err.Operation, err.Message)
	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Run 'gh auth login' if you are not authenticated\n")
	b.WriteString("  • Verify the repository has a GitHub remote\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatExecError formats an ExecError that escaped without a domain wrapper.
func formatExecError(err *ExecError) string {
	if err.NotFound {
		return fmt.Sprintf("The tool '%s' was not found. Please ensure it is installed.", err.Tool)
	}
	return fmt.Sprintf("%s error: %s", err.Tool, err.Detail)
}
