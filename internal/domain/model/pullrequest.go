package model

// PullRequestInfo carries the pull-request-only fields of an Issue snapshot.
type PullRequestInfo struct {
	IsDraft  bool
	HeadRef  string
	HeadSHA  string // Current head commit SHA.
	BaseRef  string
	BaseSHA  string
	BaseRepo string // "owner/repo" of the base repository.
}
