package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/forms/domain"
)

func loadedBoard(t *testing.T, subs *memSubmissions, confirm ConfirmFunc) *ReviewBoard {
	t.Helper()
	board := NewReviewBoard(NewReviewService(subs, newMemBlobs(), nil), confirm)
	require.NoError(t, board.Load(context.Background(), "stengeskjema"))
	return board
}

func TestBoardSetStatusUpdatesRow(t *testing.T) {
	subs := seededSubmissions()
	board := loadedBoard(t, subs, nil)

	require.NoError(t, board.SetStatus(context.Background(), "old", "completed", "kari@crust.no"))
	for _, row := range board.Rows() {
		if row.ID == "old" {
			assert.Equal(t, domain.StatusCompleted, row.Status)
			assert.Equal(t, "kari@crust.no", row.StatusUpdatedBy)
		}
	}
	assert.Equal(t, RowState{}, board.State("old"))
}

func TestBoardSetStatusRollsBackAndScopesErrorToRow(t *testing.T) {
	subs := seededSubmissions()
	board := loadedBoard(t, subs, nil)
	subs.updateErr = apperr.Permission("submissions.UpdateStatus", "")

	err := board.SetStatus(context.Background(), "old", "completed", "kari@crust.no")
	require.Error(t, err)

	for _, row := range board.Rows() {
		assert.Equal(t, domain.StatusAwaitingReview, row.Status, "row %s", row.ID)
	}
	assert.Contains(t, board.State("old").StatusError, "Mangler tilgang")
	assert.Empty(t, board.State("new").StatusError)

	subs.updateErr = nil
	require.NoError(t, board.SetStatus(context.Background(), "new", "needs follow-up", ""))
	assert.Contains(t, board.State("old").StatusError, "Mangler tilgang", "other rows keep their own errors")
}

func TestBoardDeleteClosesSelectedDetail(t *testing.T) {
	subs := seededSubmissions()
	prompts := 0
	board := loadedBoard(t, subs, func(prompt string) bool {
		prompts++
		assert.Equal(t, DeletePrompt, prompt)
		return true
	})

	_, err := board.Open(context.Background(), "new")
	require.NoError(t, err)
	require.NotNil(t, board.Selected())

	deleted, err := board.Delete(context.Background(), "new")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, prompts)
	assert.Nil(t, board.Selected())
	assert.Equal(t, []string{"old", "pending"}, ids(board.Rows()))

	require.NoError(t, board.Load(context.Background(), "stengeskjema"))
	assert.NotContains(t, ids(board.Rows()), "new")
}

func TestBoardDeleteKeepsOtherDetailOpen(t *testing.T) {
	board := loadedBoard(t, seededSubmissions(), func(string) bool { return true })
	_, err := board.Open(context.Background(), "old")
	require.NoError(t, err)

	_, err = board.Delete(context.Background(), "new")
	require.NoError(t, err)
	require.NotNil(t, board.Selected())
	assert.Equal(t, "old", board.Selected().Submission.ID)
}

func TestBoardDeleteDeclined(t *testing.T) {
	subs := seededSubmissions()
	board := loadedBoard(t, subs, func(string) bool { return false })

	deleted, err := board.Delete(context.Background(), "old")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, board.Rows(), 3)
	assert.Equal(t, "old", subs.get("old").ID)
}

func TestBoardDeleteFailure(t *testing.T) {
	subs := seededSubmissions()
	subs.deleteErr = apperr.Permission("submissions.Delete", "")
	board := loadedBoard(t, subs, func(string) bool { return true })

	deleted, err := board.Delete(context.Background(), "old")
	require.Error(t, err)
	assert.False(t, deleted)
	assert.Equal(t, MessageDeleteFailed, board.State("old").DeleteError)
	assert.Len(t, board.Rows(), 3)
}
