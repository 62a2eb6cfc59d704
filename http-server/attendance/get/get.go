package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"optimaflow/internal/storage"
)

type Attendance interface {
	GetAttendance(ctx context.Context, groupID int64, date string) ([]storage.AttendanceRecord, error)
}

func GetAttendance(log *slog.Logger, attendance Attendance) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.attendance.get.GetAttendance"

		groupStr := r.URL.Query().Get("group_id")
		date := r.URL.Query().Get("date")

		if groupStr == "" || date == "" {
			http.Error(w, "group_id and date are required", http.StatusBadRequest)
			return
		}

		groupID, err := strconv.ParseInt(groupStr, 10, 64)
		if err != nil {
			http.Error(w, "invalid group_id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		records, err := attendance.GetAttendance(ctx, groupID, date)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to load attendance")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, records)
	}
}
