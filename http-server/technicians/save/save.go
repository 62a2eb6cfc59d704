package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"optimaflow/internal/storage"
)

type TechnicianSaver interface {
	SaveTechnician(ctx context.Context, t storage.Technician) (int64, error)
}

func SaveTechnician(log *slog.Logger, saver TechnicianSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.technicians.save.SaveTechnician"

		var req storage.Technician
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		if req.GroupID == 0 {
			http.Error(w, "group_id is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := saver.SaveTechnician(ctx, req)
		if err != nil {
			log.Error("failed to save technician",
				slog.String("op", op),
				slog.String("name", req.Name),
				slog.String("error", err.Error()),
			)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]any{
			"status": "success",
			"id":     id,
		})
	}
}
