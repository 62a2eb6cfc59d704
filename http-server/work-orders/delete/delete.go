package delete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"optimaflow/internal/storage"
)

type OrderDeleter interface {
	DeleteWorkOrder(ctx context.Context, orderNo string) error
}

func DeleteWorkOrder(log *slog.Logger, deleter OrderDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.work-orders.delete.DeleteWorkOrder"

		orderNo := chi.URLParam(r, "orderNo")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := deleter.DeleteWorkOrder(ctx, orderNo); err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				http.Error(w, "work order not found", http.StatusNotFound)
				return
			}
			log.Error("failed to delete work order",
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
