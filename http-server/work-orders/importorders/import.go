package importorders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"optimaflow/internal/routeapi"
	"optimaflow/internal/service/importer"
)

// importTimeout caps one bulk import, pagination included.
const importTimeout = 5 * time.Minute

type OrderImporter interface {
	Run(ctx context.Context, from, to string) (importer.Result, error)
}

type Response struct {
	importer.Result
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func ImportOrders(log *slog.Logger, svc OrderImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.work-orders.importorders.ImportOrders"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req struct {
			From string `json:"from"`
			To   string `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.From == "" || req.To == "" {
			http.Error(w, "from and to dates are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), importTimeout)
		defer cancel()

		result, err := svc.Run(ctx, req.From, req.To)
		if err != nil {
			if errors.Is(err, routeapi.ErrRateLimited) {
				log.Warn("routing API rate limited")
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, Response{Status: "error", Error: "routing API rate limit reached, try again later"})
				return
			}
			log.Error("import failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, Response{Status: "error", Error: "import failed"})
			return
		}

		render.JSON(w, r, Response{
			Result: result,
			Status: "success",
		})
	}
}
