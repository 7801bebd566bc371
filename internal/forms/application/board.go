package application

import (
	"context"
	"sync"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/forms/domain"
)

// ConfirmFunc asks the operator a yes/no question.
type ConfirmFunc func(prompt string) bool

// RowState is the per-submission progress of a board action.
type RowState struct {
	Saving      bool
	Deleting    bool
	StatusError string
	DeleteError string
}

// ReviewBoard holds the listing and detail view an admin works on. Failures
// are scoped to the row they happened on.
type ReviewBoard struct {
	reviews *ReviewService
	confirm ConfirmFunc

	mu       sync.Mutex
	slug     string
	rows     []domain.Submission
	state    map[string]RowState
	selected *SubmissionView
}

func NewReviewBoard(reviews *ReviewService, confirm ConfirmFunc) *ReviewBoard {
	return &ReviewBoard{
		reviews: reviews,
		confirm: confirm,
		state:   map[string]RowState{},
	}
}

// Load replaces the listing with the submissions of slug.
func (b *ReviewBoard) Load(ctx context.Context, slug string) error {
	rows, err := b.reviews.List(ctx, slug)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slug = domain.RouteSlug(slug)
	b.rows = rows
	b.state = map[string]RowState{}
	if b.selected != nil && b.indexOf(b.selected.Submission.ID) < 0 {
		b.selected = nil
	}
	return nil
}

// Slug is the form the listing was loaded for.
func (b *ReviewBoard) Slug() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slug
}

// Rows returns a copy of the current listing.
func (b *ReviewBoard) Rows() []domain.Submission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Submission(nil), b.rows...)
}

// State returns the action state of row id.
func (b *ReviewBoard) State(id string) RowState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state[id]
}

// Selected returns the open detail view, or nil.
func (b *ReviewBoard) Selected() *SubmissionView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// Open loads the detail view of id.
func (b *ReviewBoard) Open(ctx context.Context, id string) (*SubmissionView, error) {
	view, err := b.reviews.View(ctx, id)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.selected = view
	b.mu.Unlock()
	return view, nil
}

// Close dismisses the detail view.
func (b *ReviewBoard) Close() {
	b.mu.Lock()
	b.selected = nil
	b.mu.Unlock()
}

// SetStatus applies next to row id locally, writes it, and rolls the row
// back if the write fails. The error is also kept on the row.
func (b *ReviewBoard) SetStatus(ctx context.Context, id, next, reviewer string) error {
	status, ok := domain.ParseStatus(next)
	if !ok {
		b.setState(id, func(s *RowState) { s.StatusError = MessageInvalidStatus })
		return apperr.Validation("update status", MessageInvalidStatus)
	}
	if reviewer == "" {
		reviewer = DefaultReviewer
	}

	b.mu.Lock()
	i := b.indexOf(id)
	var previous domain.Submission
	if i >= 0 {
		previous = b.rows[i]
		b.rows[i].Status = status
		b.rows[i].StatusUpdatedBy = reviewer
	}
	b.state[id] = RowState{Saving: true}
	b.mu.Unlock()

	_, err := b.reviews.UpdateStatus(ctx, id, string(status), reviewer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		if j := b.indexOf(id); j >= 0 && i >= 0 {
			b.rows[j] = previous
		}
		b.state[id] = RowState{StatusError: apperr.MessageOf(err, StatusErrorMessage(apperr.KindOf(err)))}
		return err
	}
	b.state[id] = RowState{}
	if b.selected != nil && b.selected.Submission.ID == id {
		b.selected.Submission.Status = status
		b.selected.Submission.StatusUpdatedBy = reviewer
	}
	return nil
}

// Delete asks for confirmation and removes row id. It reports whether the
// submission was deleted; declining the prompt is not an error.
func (b *ReviewBoard) Delete(ctx context.Context, id string) (bool, error) {
	if b.confirm == nil || !b.confirm(DeletePrompt) {
		return false, nil
	}
	b.setState(id, func(s *RowState) { *s = RowState{Deleting: true} })

	if err := b.reviews.Delete(ctx, id, true); err != nil {
		b.setState(id, func(s *RowState) {
			*s = RowState{DeleteError: apperr.MessageOf(err, MessageDeleteFailed)}
		})
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 {
		b.rows = append(b.rows[:i:i], b.rows[i+1:]...)
	}
	delete(b.state, id)
	if b.selected != nil && b.selected.Submission.ID == id {
		b.selected = nil
	}
	return true, nil
}

func (b *ReviewBoard) setState(id string, fn func(*RowState)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.state[id]
	fn(&s)
	b.state[id] = s
}

// indexOf must be called with mu held.
func (b *ReviewBoard) indexOf(id string) int {
	for i, row := range b.rows {
		if row.ID == id {
			return i
		}
	}
	return -1
}
