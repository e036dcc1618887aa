package ai

import (
	"fmt"
	"strings"

	"thoreinstein.com/floyd/pkg/config"
	floyderrors "thoreinstein.com/floyd/pkg/errors"
	"thoreinstein.com/floyd/pkg/git"
)

// Response markers. The format section of the prompt and ParseResponse
// must agree on these.
const (
	titleMarker = "TITLE:"
	bodyMarker  = "BODY:"
)

// TruncationMarker follows a diff that was cut to the configured limit.
const TruncationMarker = "\n\n[... diff truncated ...]"

// TruncateDiff cuts diff to limit characters and appends TruncationMarker.
// A negative limit, or a diff within the limit, is returned unchanged.
func TruncateDiff(diff string, limit int) string {
	if limit < 0 {
		return diff
	}
	runes := []rune(diff)
	if len(runes) <= limit {
		return diff
	}
	return string(runes[:limit]) + TruncationMarker
}

// BuildPrompt assembles the generation prompt for a branch. feedback is the
// latest refinement note and is omitted when empty.
func BuildPrompt(bc git.BranchContext, cfg config.AIConfig, feedback string) string {
	var sb strings.Builder

	sb.WriteString("You are writing a GitHub pull request for the changes below.\n\n")

	sb.WriteString("## Branches\n\n")
	fmt.Fprintf(&sb, "- Current branch: %s\n", bc.Current.Name())
	fmt.Fprintf(&sb, "- Target branch: %s\n\n", bc.Target.Name())

	sb.WriteString("## Commits\n\n")
	writeBlock(&sb, bc.Commits, "(no commits)")

	sb.WriteString("## Files Changed\n\n")
	writeBlock(&sb, bc.DiffStat, "(no summary)")

	sb.WriteString("## Task\n\n")
	sb.WriteString("Write a pull request title and description for these changes.\n")
	sb.WriteString("- The title must follow Conventional Commits (e.g. \"feat: add login\", \"fix(api): handle timeout\").\n")
	sb.WriteString("- Keep the title under 72 characters.\n")
	sb.WriteString("- The description should explain what changed and why, in Markdown.\n\n")

	if instructions := strings.TrimSpace(cfg.Instructions); instructions != "" {
		sb.WriteString("## Additional Instructions\n\n")
		sb.WriteString(instructions)
		sb.WriteString("\n\n")
	}

	if feedback = strings.TrimSpace(feedback); feedback != "" {
		sb.WriteString("## Feedback\n\n")
		sb.WriteString("A previous draft was rejected. Revise it according to this feedback:\n")
		sb.WriteString(feedback)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Rules\n\n")
	sb.WriteString("- Do not add any signature, footer or attribution mentioning an AI, assistant or tool.\n")
	sb.WriteString("- Do not wrap the answer in code fences.\n\n")

	sb.WriteString("## Output Format\n\n")
	sb.WriteString("Respond with exactly this format and nothing else:\n\n")
	sb.WriteString(titleMarker + " <title>\n")
	sb.WriteString(bodyMarker + " <description>\n\n")

	sb.WriteString("## Diff\n\n")
	sb.WriteString(TruncateDiff(bc.Diff, cfg.DiffLimit))
	sb.WriteString("\n")

	return sb.String()
}

func writeBlock(sb *strings.Builder, text, empty string) {
	if strings.TrimSpace(text) == "" {
		text = empty
	}
	sb.WriteString(text)
	sb.WriteString("\n\n")
}

// ParseResponse extracts a draft from a raw AI reply. The title is the text
// between the first TITLE: and the first BODY: marker; the body is everything
// after the first BODY: marker. Any other shape yields a ParseError.
func ParseResponse(raw string) (*Draft, error) {
	titleIdx := strings.Index(raw, titleMarker)
	if titleIdx < 0 {
		return nil, floyderrors.NewParseError("response has no " + titleMarker + " marker")
	}
	bodyIdx := strings.Index(raw, bodyMarker)
	if bodyIdx < 0 {
		return nil, floyderrors.NewParseError("response has no " + bodyMarker + " marker")
	}

	titleStart := titleIdx + len(titleMarker)
	if bodyIdx < titleStart {
		return nil, floyderrors.NewParseError(bodyMarker + " appears before " + titleMarker)
	}

	title := strings.TrimSpace(raw[titleStart:bodyIdx])
	body := strings.TrimSpace(raw[bodyIdx+len(bodyMarker):])

	if title == "" {
		return nil, floyderrors.NewParseError("title is empty")
	}
	if body == "" {
		return nil, floyderrors.NewParseError("body is empty")
	}

	return NewDraft(title, body)
}
