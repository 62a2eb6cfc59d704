package dedupe

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"optimaflow/internal/storage"
)

func order(no, status string, hasImages bool, ts string) storage.WorkOrder {
	return storage.WorkOrder{
		ID:        "id-" + no,
		OrderNo:   no,
		Status:    status,
		HasImages: hasImages,
		Timestamp: ts,
	}
}

func TestDeduplicate_NoDuplicatesIsNoOp(t *testing.T) {
	input := []storage.WorkOrder{
		order("A1", storage.StatusImported, false, ""),
		order("B2", storage.StatusApproved, true, ""),
		order("C3", storage.StatusFlagged, false, ""),
	}

	got := Deduplicate(slog.Default(), input)

	assert.Equal(t, input, got)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	input := []storage.WorkOrder{
		order("A1", storage.StatusImported, false, "2024-03-01T10:00:00Z"),
		order("A1", "completed", true, "2024-03-01T09:00:00Z"),
		order("B2", storage.StatusImported, false, ""),
		{ID: "no-key", Status: storage.StatusImported},
	}

	once := Deduplicate(slog.Default(), input)
	twice := Deduplicate(slog.Default(), once)

	assert.Equal(t, once, twice)
}

func TestDeduplicate_CompletedWinsRegardlessOfArrivalOrder(t *testing.T) {
	completed := order("A1", "completed", false, "")
	imported := order("A1", storage.StatusImported, false, "")

	got := Deduplicate(slog.Default(), []storage.WorkOrder{imported, completed})
	assert.Len(t, got, 1)
	assert.Equal(t, "completed", got[0].Status)

	got = Deduplicate(slog.Default(), []storage.WorkOrder{completed, imported})
	assert.Len(t, got, 1)
	assert.Equal(t, "completed", got[0].Status)
}

func TestDeduplicate_RejectedReplacesImported(t *testing.T) {
	got := Deduplicate(slog.Default(), []storage.WorkOrder{
		order("A1", storage.StatusImported, false, ""),
		order("A1", storage.StatusRejected, false, ""),
	})

	assert.Len(t, got, 1)
	assert.Equal(t, storage.StatusRejected, got[0].Status)
}

func TestDeduplicate_ImagesWinOnEqualStatus(t *testing.T) {
	got := Deduplicate(slog.Default(), []storage.WorkOrder{
		order("A1", storage.StatusImported, false, ""),
		order("A1", storage.StatusImported, true, ""),
	})

	assert.Len(t, got, 1)
	assert.True(t, got[0].HasImages)

	// A later record without images does not displace the one with images.
	got = Deduplicate(slog.Default(), []storage.WorkOrder{
		order("A1", storage.StatusImported, true, ""),
		order("A1", storage.StatusImported, false, ""),
	})

	assert.Len(t, got, 1)
	assert.True(t, got[0].HasImages)
}

func TestDeduplicate_LaterTimestampWins(t *testing.T) {
	got := Deduplicate(slog.Default(), []storage.WorkOrder{
		order("A1", storage.StatusImported, false, "2024-03-01T10:00:00Z"),
		order("A1", storage.StatusImported, false, "2024-03-01T11:00:00Z"),
	})

	assert.Len(t, got, 1)
	assert.Equal(t, "2024-03-01T11:00:00Z", got[0].Timestamp)

	// Earlier timestamp does not replace.
	got = Deduplicate(slog.Default(), []storage.WorkOrder{
		order("A1", storage.StatusImported, false, "2024-03-01T11:00:00Z"),
		order("A1", storage.StatusImported, false, "2024-03-01T10:00:00Z"),
	})

	assert.Equal(t, "2024-03-01T11:00:00Z", got[0].Timestamp)
}

func TestDeduplicate_UnparsableTimestampKeepsExisting(t *testing.T) {
	got := Deduplicate(slog.Default(), []storage.WorkOrder{
		order("A1", storage.StatusImported, false, "not-a-date"),
		order("A1", storage.StatusImported, false, "2024-03-01T10:00:00Z"),
	})

	assert.Len(t, got, 1)
	assert.Equal(t, "not-a-date", got[0].Timestamp)
}

// rejected vs flagged has no defined precedence: it falls through to the
// timestamp rule.
func TestDeduplicate_RejectedVsFlaggedFallsThroughToTimestamp(t *testing.T) {
	got := Deduplicate(slog.Default(), []storage.WorkOrder{
		order("A1", storage.StatusFlagged, false, "2024-03-01T10:00:00Z"),
		order("A1", storage.StatusRejected, false, "2024-03-01T09:00:00Z"),
	})

	assert.Len(t, got, 1)
	assert.Equal(t, storage.StatusFlagged, got[0].Status)

	got = Deduplicate(slog.Default(), []storage.WorkOrder{
		order("A1", storage.StatusFlagged, false, "2024-03-01T09:00:00Z"),
		order("A1", storage.StatusRejected, false, "2024-03-01T10:00:00Z"),
	})

	assert.Equal(t, storage.StatusRejected, got[0].Status)
}

func TestDeduplicate_EmptyOrderNoDropped(t *testing.T) {
	got := Deduplicate(slog.Default(), []storage.WorkOrder{
		{ID: "x", Status: "completed", HasImages: true},
		order("A1", storage.StatusImported, false, ""),
	})

	assert.Len(t, got, 1)
	assert.Equal(t, "A1", got[0].OrderNo)
	// The keyless record influenced nothing.
	assert.Equal(t, storage.StatusImported, got[0].Status)
}

func TestMerge_EmptyIncomingEqualsDeduplicate(t *testing.T) {
	existing := []storage.WorkOrder{
		order("A1", storage.StatusImported, false, ""),
		order("A1", "completed", false, ""),
		order("B2", storage.StatusApproved, true, ""),
	}

	assert.Equal(t,
		Deduplicate(slog.Default(), existing),
		Merge(slog.Default(), existing, nil),
	)
}

func TestMerge_IncomingWinsOnlyThroughTieBreak(t *testing.T) {
	existing := []storage.WorkOrder{order("A1", storage.StatusApproved, true, "2024-03-01T10:00:00Z")}
	incoming := []storage.WorkOrder{order("A1", storage.StatusImported, false, "2024-02-01T10:00:00Z")}

	got := Merge(slog.Default(), existing, incoming)

	assert.Len(t, got, 1)
	assert.Equal(t, storage.StatusApproved, got[0].Status)
}
