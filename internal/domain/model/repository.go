package model

// IssueRef is a lightweight issue index entry used for completion.
type IssueRef struct {
	Number int
	Title  string
}
