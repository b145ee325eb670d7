package models

type GitHubUser struct {
	Login string `json:"login"`
}

type PullRequest struct {
	Merged  bool       `json:"merged"`
	HTMLURL string     `json:"html_url"`
	User    GitHubUser `json:"user"`
}

type PullRequestEvent struct {
	Action      string       `json:"action"` // e.g., "closed"
	Number      int          `json:"number"`
	PullRequest *PullRequest `json:"pull_request"`
}
