package document

import (
	"slices"
	"strconv"
	"time"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
)

// State projects the document onto its persisted form. taggable and issues
// are the surface's completion caches, which live outside the document.
func (d *Document) State(taggable []string, issues []model.IssueRef, now time.Time) model.SurfaceState {
	issue := d.issue

	s := model.SurfaceState{
		Surface:         d.name.String(),
		ID:              issue.ID,
		Number:          issue.Number,
		Repo:            issue.RepoFullName,
		Kind:            issue.Kind,
		State:           issue.State,
		Labels:          nonNil(issue.Labels),
		Assignees:       nonNil(issue.Assignees),
		Milestone:       issue.Milestone,
		Cards:           []string{},
		Title:           fieldState(d.title),
		Description:     fieldState(d.description),
		Comments:        make([]model.CommentState, 0, len(d.comments)),
		PullRequest:     issue.PullRequest,
		ReviewThreadMap: make(map[string]model.ThreadMapState, d.threadMap.Len()),
		TaggableUsers:   nonNil(slices.Clone(taggable)),
		Issues:          slices.Clone(issues),
		UpdatedAt:       now.UTC(),
	}
	if s.Issues == nil {
		s.Issues = []model.IssueRef{}
	}

	for _, slot := range d.commentOrder() {
		c := d.comments[slot]
		cs := model.CommentState{
			ID:        c.ID,
			Kind:      c.Kind,
			Author:    c.Author,
			Body:      c.Body,
			SavedBody: c.SavedBody,
			Dirty:     c.Dirty(),
			ReviewID:  c.ReviewID,
			ThreadID:  c.ThreadID,
			ReplyTo:   c.ReplyTo,
		}
		if r, ok := d.index.Get(c.Region); ok {
			cs.StartLine, cs.EndLine = r.Start, r.End
		}
		s.Comments = append(s.Comments, cs)
	}

	for h, e := range d.threadMap.entries {
		s.ReviewThreadMap[strconv.Itoa(int(h))] = model.ThreadMapState{
			ThreadID:       e.ThreadID,
			FirstCommentID: e.FirstCommentID,
		}
	}

	return s
}

func fieldState(f Field) model.FieldState {
	return model.FieldState{Body: f.Body, SavedBody: f.SavedBody, Dirty: f.Dirty()}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
