package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/bookstore-sagas/internal/coordinator/sagalog"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "saga.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func entryAt(sagaID string, status sagalog.Status, step string, ts time.Time) *sagalog.SagaLog {
	return &sagalog.SagaLog{
		SagaID:        sagaID,
		Status:        status,
		CurrentStep:   step,
		ErrorMessages: "[]",
		UpdatedAt:     ts,
	}
}

func TestSaveAndGetLatest(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, &sagalog.SagaLog{
		SagaID:        "saga-1",
		Status:        sagalog.StatusStarted,
		Payload:       `{"title":"Most","quantity":5,"customer":"Luka"}`,
		ErrorMessages: "[]",
		UpdatedAt:     base,
	}))
	require.NoError(t, repo.Save(ctx, entryAt("saga-1", sagalog.StatusStepDone, "reserve_stock", base.Add(time.Second))))
	require.NoError(t, repo.Save(ctx, entryAt("saga-1", sagalog.StatusCompleted, "", base.Add(2*time.Second))))

	latest, err := repo.GetLatest(ctx, "saga-1")
	require.NoError(t, err)
	assert.Equal(t, "saga-1", latest.SagaID)
	assert.Equal(t, sagalog.StatusCompleted, latest.Status)
	assert.True(t, latest.UpdatedAt.Equal(base.Add(2*time.Second)))
}

func TestGetLatestBreaksTimestampTiesByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, entryAt("saga-1", sagalog.StatusStarted, "", ts)))
	require.NoError(t, repo.Save(ctx, entryAt("saga-1", sagalog.StatusCompensating, "rollback_participants", ts)))

	latest, err := repo.GetLatest(ctx, "saga-1")
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusCompensating, latest.Status)
}

func TestGetLatestScopedToSaga(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, entryAt("saga-1", sagalog.StatusCompleted, "", ts.Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, entryAt("saga-2", sagalog.StatusStarted, "", ts)))

	latest, err := repo.GetLatest(ctx, "saga-2")
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusStarted, latest.Status)
}

func TestGetLatestUnknownSaga(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.GetLatest(ctx, "nope")
	assert.Error(t, err)
}

func TestEmptyPayloadRoundTrips(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, entryAt("saga-1", sagalog.StatusStepDone, "confirm_participants", ts)))

	latest, err := repo.GetLatest(ctx, "saga-1")
	require.NoError(t, err)
	assert.Empty(t, latest.Payload)
	assert.Equal(t, "confirm_participants", latest.CurrentStep)
}
