package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
	"github.com/ericfisherdev/ghdoc/internal/domain/port/driven"
)

// OpKind tags a remote operation produced by Plan.
type OpKind int

const (
	OpUpdateIssue OpKind = iota + 1
	OpUpdatePullRequest
	OpCreateIssueComment
	OpUpdateIssueComment
	OpUpdateReview
	OpUpdateReviewComment
	OpReplyReviewComment
)

var opKindNames = map[OpKind]string{
	OpUpdateIssue:         "update issue",
	OpUpdatePullRequest:   "update pull request",
	OpCreateIssueComment:  "create issue comment",
	OpUpdateIssueComment:  "update issue comment",
	OpUpdateReview:        "update review",
	OpUpdateReviewComment: "update review comment",
	OpReplyReviewComment:  "reply to review comment",
}

func (k OpKind) String() string {
	if s, ok := opKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Operation is one remote mutation required by a save.
type Operation struct {
	Kind OpKind
	// Slot is the comment slot the result commits into. Unused for issue updates.
	Slot int
	// CommentID is the remote target of an update: a comment or review ID.
	CommentID int64
	// InReplyTo is the thread's first comment for replies.
	InReplyTo int64
	Title     string
	Body      string
}

// Plan returns the operations needed to save every dirty field and comment.
// Title and description come first and are validated together: an invalid
// title drops that step only. Comments follow in document order. Rejected
// steps are reported in the returned error while the remaining operations
// are still returned.
func (d *Document) Plan() ([]Operation, error) {
	var ops []Operation
	var errs []error

	if d.title.Dirty() || d.description.Dirty() {
		if err := validateTitle(d.title.Body); err != nil {
			errs = append(errs, err)
		} else {
			kind := OpUpdateIssue
			if d.issue.IsPullRequest() {
				kind = OpUpdatePullRequest
			}
			ops = append(ops, Operation{
				Kind:  kind,
				Slot:  -1,
				Title: d.title.Body,
				Body:  d.description.Body,
			})
		}
	}

	for _, slot := range d.commentOrder() {
		c := d.comments[slot]
		if !c.Dirty() {
			continue
		}
		op, err := commentOperation(slot, c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ops = append(ops, op)
	}

	return ops, errors.Join(errs...)
}

func commentOperation(slot int, c Comment) (Operation, error) {
	op := Operation{Slot: slot, Body: c.Body}

	if c.IsPlaceholder() {
		switch c.Kind {
		case model.CommentKindIssue:
			op.Kind = OpCreateIssueComment
		case model.CommentKindReviewComment:
			op.Kind = OpReplyReviewComment
			op.InReplyTo = c.ReplyTo
		default:
			return Operation{}, fmt.Errorf("%w: slot %d", ErrReviewCreate, slot)
		}
		return op, nil
	}

	op.CommentID = c.ID
	switch c.Kind {
	case model.CommentKindIssue:
		op.Kind = OpUpdateIssueComment
	case model.CommentKindReview:
		op.Kind = OpUpdateReview
	case model.CommentKindReviewComment:
		op.Kind = OpUpdateReviewComment
	default:
		return Operation{}, fmt.Errorf("unknown comment kind %q in slot %d", c.Kind, slot)
	}
	return op, nil
}

func validateTitle(title string) error {
	if strings.ContainsAny(title, "\r\n") {
		return &ValidationError{Field: "title", Reason: "must be a single line"}
	}
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return nil
}

// CommitIssue applies the response of an issue or pull request update sent
// as op. Each field commits the value that was sent if the trimmed response
// equals it; otherwise the field keeps its saved value and
// ErrReconciliationMismatch is returned. Edits made while the call was in
// flight stay dirty.
func (d *Document) CommitIssue(op Operation, res driven.IssueResult) error {
	var mismatched []string

	if sameContent(res.Title, op.Title) {
		d.title.SavedBody = op.Title
	} else {
		mismatched = append(mismatched, "title")
	}

	if sameContent(res.Body, op.Body) {
		d.description.SavedBody = op.Body
	} else {
		mismatched = append(mismatched, "description")
	}

	if len(mismatched) > 0 {
		return fmt.Errorf("%w: %s", ErrReconciliationMismatch, strings.Join(mismatched, ", "))
	}
	return nil
}

// CommitComment applies the response of a comment create or update. If the
// trimmed response body equals the trimmed body that was sent, the server ID
// replaces a placeholder and the sent body becomes the saved body. Text typed
// while the call was in flight stays dirty and saves as an update. A mismatch
// leaves the comment untouched.
func (d *Document) CommitComment(op Operation, res driven.CommentResult) error {
	return d.commitComment(op, res.ID, res.Body)
}

// CommitReview applies the response of a review body update.
func (d *Document) CommitReview(op Operation, res driven.ReviewResult) error {
	return d.commitComment(op, res.ID, res.Body)
}

func (d *Document) commitComment(op Operation, id int64, body string) error {
	c, ok := d.Comment(op.Slot)
	if !ok {
		return fmt.Errorf("%w: slot %d", ErrUnknownSlot, op.Slot)
	}

	creating := op.Kind == OpCreateIssueComment || op.Kind == OpReplyReviewComment
	if creating && !c.IsPlaceholder() {
		return fmt.Errorf("%w: slot %d was already created as %d", ErrReconciliationMismatch, op.Slot, c.ID)
	}
	if !creating && c.ID != op.CommentID {
		return fmt.Errorf("%w: slot %d holds %d, not %d", ErrUnknownSlot, op.Slot, c.ID, op.CommentID)
	}

	if !sameContent(body, op.Body) {
		return fmt.Errorf("%w: slot %d", ErrReconciliationMismatch, op.Slot)
	}

	d.updateComment(op.Slot, func(c *Comment) {
		if creating {
			c.ID = id
		}
		c.SavedBody = op.Body
	})
	return nil
}

func sameContent(remote, sent string) bool {
	return strings.TrimSpace(normalizeNewlines(remote)) == strings.TrimSpace(normalizeNewlines(sent))
}
