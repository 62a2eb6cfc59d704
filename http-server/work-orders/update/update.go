package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"optimaflow/internal/storage"
)

// QC actions the dashboard may apply. "imported" is set only by the import
// path and cannot be assigned by hand.
var allowedStatuses = map[string]bool{
	storage.StatusPendingReview: true,
	storage.StatusApproved:      true,
	storage.StatusFlagged:       true,
	storage.StatusResolved:      true,
	storage.StatusRejected:      true,
}

type StatusUpdater interface {
	UpdateWorkOrderStatus(ctx context.Context, orderNo, status, note string) error
}

func UpdateStatus(log *slog.Logger, updater StatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.work-orders.update.UpdateStatus"

		orderNo := chi.URLParam(r, "orderNo")

		var req struct {
			Status string `json:"status"`
			Note   string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if !allowedStatuses[req.Status] {
			log.Warn("rejected unknown QC status",
				slog.String("op", op),
				slog.String("status", req.Status),
			)
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := updater.UpdateWorkOrderStatus(ctx, orderNo, req.Status, req.Note); err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				http.Error(w, "work order not found", http.StatusNotFound)
				return
			}
			log.Error("failed to update status",
				slog.String("op", op),
				slog.String("order_no", orderNo),
				slog.String("error", err.Error()),
			)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]string{
			"status":   "success",
			"order_no": orderNo,
		})
	}
}
