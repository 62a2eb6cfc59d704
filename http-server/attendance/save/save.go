package save

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"optimaflow/internal/storage"
)

var validStatuses = map[string]bool{
	storage.AttendancePresent: true,
	storage.AttendanceAbsent:  true,
	storage.AttendanceExcused: true,
}

type AttendanceSaver interface {
	SaveAttendance(ctx context.Context, req storage.SaveAttendance) error
}

func SaveAttendance(log *slog.Logger, saver AttendanceSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.attendance.save.SaveAttendance"

		var req storage.SaveAttendance
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.GroupID == 0 || req.Date == "" {
			http.Error(w, "group_id and date are required", http.StatusBadRequest)
			return
		}
		if len(req.Records) == 0 {
			log.Warn("empty attendance sheet submitted", slog.String("op", op), slog.Int64("group_id", req.GroupID))
			http.Error(w, "no records provided", http.StatusBadRequest)
			return
		}

		for i, rec := range req.Records {
			if rec.TechnicianID == 0 {
				http.Error(w, fmt.Sprintf("record %d: technician_id is required", i), http.StatusBadRequest)
				return
			}
			if !validStatuses[rec.Status] {
				http.Error(w, fmt.Sprintf("record %d: unknown status %q", i, rec.Status), http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := saver.SaveAttendance(ctx, req); err != nil {
			log.Error("failed to save attendance",
				slog.String("op", op),
				slog.Int64("group_id", req.GroupID),
				slog.String("date", req.Date),
				slog.String("error", err.Error()),
			)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]any{
			"status": "success",
			"saved":  len(req.Records),
		})
	}
}
