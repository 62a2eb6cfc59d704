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

type GroupSaver interface {
	SaveGroup(ctx context.Context, g storage.TechnicianGroup) (int64, error)
}

func SaveGroupAdmin(log *slog.Logger, saver GroupSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.save.SaveGroupAdmin"

		var req storage.TechnicianGroup
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.Name == "" || req.Slug == "" {
			http.Error(w, "name and slug are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := saver.SaveGroup(ctx, req)
		if err != nil {
			log.Error("failed to save group",
				slog.String("op", op),
				slog.String("slug", req.Slug),
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
