package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "printd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func okRecord(jobID, orderID, kind string) Record {
	return Record{
		JobID: jobID, OrderID: orderID, Kind: kind,
		Notify: OutcomeOK, Kitchen: OutcomeOK, Separator: OutcomeOK, Receipt: OutcomeOK,
		Committed: true,
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printd.db")

	j1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j1.Close())

	j2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, j2.Close())
}

func TestAppend_AssignsIncreasingSeq(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	seq1, err := j.Append(ctx, okRecord("job-1", "O1", "new"))
	require.NoError(t, err)
	seq2, err := j.Append(ctx, okRecord("job-2", "O1", "modified"))
	require.NoError(t, err)

	assert.Greater(t, seq2, seq1)
}

func TestAppend_RejectsDuplicateJobID(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	_, err := j.Append(ctx, okRecord("job-1", "O1", "new"))
	require.NoError(t, err)
	_, err = j.Append(ctx, okRecord("job-1", "O2", "new"))
	assert.Error(t, err)
}

func TestAppend_RejectsUnknownKind(t *testing.T) {
	j := openJournal(t)

	_, err := j.Append(context.Background(), okRecord("job-1", "O1", "reprint"))
	assert.Error(t, err)
}

func TestRecent_NewestFirst(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	for _, id := range []string{"job-1", "job-2", "job-3"} {
		_, err := j.Append(ctx, okRecord(id, "O1", "new"))
		require.NoError(t, err)
	}

	records, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "job-3", records[0].JobID)
	assert.Equal(t, "job-2", records[1].JobID)
}

func TestByOrder_FiltersAndPreservesOutcomes(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	failed := Record{
		JobID: "job-1", OrderID: "O1", Kind: "new",
		Notify: OutcomeOK, Kitchen: OutcomeFailed, Separator: OutcomeOK, Receipt: OutcomeFailed,
		Committed: false,
	}
	_, err := j.Append(ctx, failed)
	require.NoError(t, err)
	_, err = j.Append(ctx, okRecord("job-2", "O2", "new"))
	require.NoError(t, err)

	records, err := j.ByOrder(ctx, "O1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, OutcomeFailed, got.Kitchen)
	assert.Equal(t, OutcomeFailed, got.Receipt)
	assert.False(t, got.Committed)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAppend_PreservesExplicitTimestamp(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	stamp := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rec := okRecord("job-1", "O1", "new")
	rec.CreatedAt = stamp
	_, err := j.Append(ctx, rec)
	require.NoError(t, err)

	records, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, stamp.Equal(records[0].CreatedAt))
}
