package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"optimaflow/internal/storage"
)

type ResponseOrders struct {
	Orders []storage.WorkOrder `json:"orders"`
	Total  int                 `json:"total"`
	Error  string              `json:"error,omitempty"`
}

type OrderLister interface {
	ListWorkOrders(ctx context.Context, filter storage.WorkOrderFilter) ([]storage.WorkOrder, error)
}

func GetWorkOrders(log *slog.Logger, lister OrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.work-orders.get.GetWorkOrders"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter := storage.WorkOrderFilter{
			Status: r.URL.Query().Get("status"),
			From:   r.URL.Query().Get("from"),
			To:     r.URL.Query().Get("to"),
			Search: r.URL.Query().Get("search"),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		orders, err := lister.ListWorkOrders(ctx, filter)
		if err != nil {
			log.Error("failed to list work orders", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseOrders{Error: "failed to load work orders"})
			return
		}

		render.JSON(w, r, ResponseOrders{
			Orders: orders,
			Total:  len(orders),
		})
	}
}

type OrderGetter interface {
	GetWorkOrder(ctx context.Context, orderNo string) (*storage.WorkOrder, error)
}

func GetWorkOrder(log *slog.Logger, getter OrderGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.work-orders.get.GetWorkOrder"

		orderNo := chi.URLParam(r, "orderNo")
		if orderNo == "" {
			http.Error(w, "order number is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := getter.GetWorkOrder(ctx, orderNo)
		if err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				http.Error(w, "work order not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get work order",
				slog.String("op", op),
				slog.String("order_no", orderNo),
				slog.String("error", err.Error()),
			)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, order)
	}
}
