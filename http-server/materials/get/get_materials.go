package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"optimaflow/internal/service/materials"
	"optimaflow/internal/storage"
)

type OrderLister interface {
	ListWorkOrders(ctx context.Context, filter storage.WorkOrderFilter) ([]storage.WorkOrder, error)
}

type Response struct {
	Materials []storage.MaterialRequirement `json:"materials"`
	Orders    int                           `json:"orders"`
	Error     string                        `json:"error,omitempty"`
}

// GetMaterials aggregates reported material usage over the orders of a date
// range.
func GetMaterials(log *slog.Logger, lister OrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.materials.get.GetMaterials"

		filter := storage.WorkOrderFilter{
			From: r.URL.Query().Get("from"),
			To:   r.URL.Query().Get("to"),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		orders, err := lister.ListWorkOrders(ctx, filter)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to load orders for materials")
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Error: "failed to load orders"})
			return
		}

		render.JSON(w, r, Response{
			Materials: materials.Requirements(orders),
			Orders:    len(orders),
		})
	}
}
