package document

import "github.com/ericfisherdev/ghdoc/internal/domain/model"

const newCommentHeader = "New comment"

// AddIssueComment appends an empty placeholder issue comment at the end of
// the document and returns its body region. Only one new issue comment may
// be pending at a time.
func (d *Document) AddIssueComment() (Region, error) {
	for _, c := range d.comments {
		if c.IsPlaceholder() && c.Kind == model.CommentKindIssue {
			return Region{}, ErrPendingComment
		}
	}

	at := d.surface.LineCount()
	d.insert(at, 0, []string{newCommentHeader, MaskPrefix, ""})
	return d.addPlaceholder(at+1, Comment{
		ID:   PlaceholderID,
		Kind: model.CommentKindIssue,
	}), nil
}

// AddThreadReply appends an empty placeholder reply to the review thread
// under line and returns its body region. Only one reply may be pending per
// thread.
func (d *Document) AddThreadReply(line int) (Region, error) {
	thread, ok := d.index.Innermost(line, func(r Region) bool { return r.Ref.Kind == RegionThread })
	if !ok {
		return Region{}, ErrNoThread
	}
	entry, ok := d.threadMap.Lookup(thread.Handle)
	if !ok {
		return Region{}, ErrNoThread
	}

	for _, c := range d.comments {
		if c.IsPlaceholder() && c.ThreadID == entry.ThreadID {
			return Region{}, ErrPendingComment
		}
	}

	var reviewID int64
	if thread.Ref.Slot < len(d.threads) {
		reviewID = d.threads[thread.Ref.Slot].ReviewID
	}

	at := thread.End
	d.insert(at, thread.Handle, []string{newCommentHeader, MaskPrefix})
	return d.addPlaceholder(at+1, Comment{
		ID:       PlaceholderID,
		Kind:     model.CommentKindReviewComment,
		ReviewID: reviewID,
		ThreadID: entry.ThreadID,
		ReplyTo:  entry.FirstCommentID,
	}), nil
}

// insert writes lines at the given position and shifts regions, letting
// owner absorb the insertion.
func (d *Document) insert(at int, owner Handle, lines []string) {
	d.surface.SetLines(at, at, lines)
	d.index.ApplyEdit(at, at, at+len(lines), owner)
}

func (d *Document) addPlaceholder(line int, c Comment) Region {
	slot := len(d.comments)
	// A one-line range directly after freshly inserted chrome cannot overlap.
	h, _ := d.index.Add(line, line+1, Ref{Kind: RegionComment, Slot: slot})
	c.Region = h

	next := make([]Comment, len(d.comments), len(d.comments)+1)
	copy(next, d.comments)
	d.comments = append(next, c)
	d.folds = append(d.folds, fold{region: h, lead: 1, open: true})

	r, _ := d.index.Get(h)
	return r
}
