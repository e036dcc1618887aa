// Package github provides the forge integration used to submit pull requests.
//
// The Client interface is implemented by CLIClient, which drives the gh CLI
// so that authentication stays with the user's existing gh login.
package github

// PRInfo represents pull request information.
type PRInfo struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	State      string `json:"state"`       // "OPEN", "CLOSED", "MERGED"
	Draft      bool   `json:"isDraft"`     // gh CLI uses isDraft
	HeadBranch string `json:"headRefName"` // gh CLI uses headRefName
	BaseBranch string `json:"baseRefName"` // gh CLI uses baseRefName
}

// CreatePROptions holds options for creating a pull request.
type CreatePROptions struct {
	Title      string   // PR title (required)
	Body       string   // PR body/description
	HeadBranch string   // Source branch (defaults to current branch)
	BaseBranch string   // Target branch (required)
	Draft      bool     // Create as draft PR
	Reviewers  []string // Requested reviewers
}

// ListPRsOptions filters a pull request listing.
type ListPRsOptions struct {
	HeadBranch string
	BaseBranch string
	State      string // "open", "closed", "merged", "all"; empty means open
	Limit      int
}

// ghPRResponse represents the JSON response from gh pr list.
// Used internally for JSON parsing before converting to PRInfo.
type ghPRResponse struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	State       string `json:"state"`
	IsDraft     bool   `json:"isDraft"`
	HeadRefName string `json:"headRefName"`
	BaseRefName string `json:"baseRefName"`
}

// toPRInfo converts a ghPRResponse to PRInfo.
func (r *ghPRResponse) toPRInfo() PRInfo {
	return PRInfo{
		Number:     r.Number,
		Title:      r.Title,
		URL:        r.URL,
		State:      r.State,
		Draft:      r.IsDraft,
		HeadBranch: r.HeadRefName,
		BaseBranch: r.BaseRefName,
	}
}

// prJSONFields returns the list of fields to request from gh pr list.
func prJSONFields() []string {
	return []string{
		"number",
		"title",
		"url",
		"state",
		"isDraft",
		"headRefName",
		"baseRefName",
	}
}
