package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"optimaflow/internal/storage"
)

type Groups interface {
	GetGroups(ctx context.Context) ([]storage.TechnicianGroup, error)
}

func GetGroupsAdmin(log *slog.Logger, groups Groups) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.get.GetGroupsAdmin"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := groups.GetGroups(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to load groups")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, result)
	}
}
