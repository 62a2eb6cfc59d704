package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"optimaflow/internal/storage"
)

type Technicians interface {
	GetTechnicians(ctx context.Context, groupSlug string) ([]storage.Technician, error)
}

func GetTechnicians(log *slog.Logger, technicians Technicians) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.technicians.get.GetTechnicians"

		groupSlug := r.URL.Query().Get("group")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := technicians.GetTechnicians(ctx, groupSlug)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to load technicians")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, result)
	}
}
