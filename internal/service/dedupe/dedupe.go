// Package dedupe collapses work orders sharing an order number so repeated
// imports cannot regress data quality.
package dedupe

import (
	"log/slog"
	"time"

	"optimaflow/internal/storage"
)

// Deduplicate keeps exactly one record per non-empty order number. Records
// without an order number are dropped and logged; they never influence the
// winner for any other key. Output preserves first-seen key order, so the
// result is deterministic for a fixed input ordering.
func Deduplicate(log *slog.Logger, orders []storage.WorkOrder) []storage.WorkOrder {
	const op = "service.dedupe.Deduplicate"

	result := make([]storage.WorkOrder, 0, len(orders))
	index := make(map[string]int, len(orders))

	for _, order := range orders {
		if order.OrderNo == "" {
			log.Warn("dropping order without order_no",
				slog.String("op", op),
				slog.String("id", order.ID),
			)
			continue
		}

		at, seen := index[order.OrderNo]
		if !seen {
			index[order.OrderNo] = len(result)
			result = append(result, order)
			continue
		}

		if replaces(order, result[at]) {
			result[at] = order
		}
	}

	return result
}

// Merge applies the dedup rules across an existing collection and a new
// batch. Existing records come first, so incoming ones win only through the
// tie-break rules, never by arrival alone.
func Merge(log *slog.Logger, existing, incoming []storage.WorkOrder) []storage.WorkOrder {
	combined := make([]storage.WorkOrder, 0, len(existing)+len(incoming))
	combined = append(combined, existing...)
	combined = append(combined, incoming...)
	return Deduplicate(log, combined)
}

// replaces decides whether a newly-seen duplicate beats the retained record.
// Rules fire in strict order; a rule that does not fire falls through to the
// next. Note the deliberate gap: "rejected" vs "flagged"/"pending_review"/
// "resolved" has no defined precedence and falls through to the timestamp
// rule, matching current product behaviour.
func replaces(incoming, retained storage.WorkOrder) bool {
	if incoming.Status == "completed" && retained.Status != "completed" {
		return true
	}
	if incoming.Status == storage.StatusRejected && retained.Status == storage.StatusImported {
		return true
	}
	if incoming.HasImages && !retained.HasImages {
		return true
	}

	ti, errI := parseTimestamp(incoming.Timestamp)
	tr, errR := parseTimestamp(retained.Timestamp)
	if errI == nil && errR == nil && ti.After(tr) {
		return true
	}

	return false
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", ts)
}
