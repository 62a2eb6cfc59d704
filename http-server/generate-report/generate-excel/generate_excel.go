package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type ReportGenerator interface {
	Generate(ctx context.Context, from, to string) ([]byte, error)
}

func GenerateReportExcel(log *slog.Logger, gen ReportGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.generate-report.GenerateReportExcel"

		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")
		if from == "" || to == "" {
			http.Error(w, "from and to dates are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		data, err := gen.Generate(ctx, from, to)
		if err != nil {
			log.Error("failed to generate report",
				slog.String("op", op),
				slog.String("from", from),
				slog.String("to", to),
				slog.String("error", err.Error()),
			)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("optimaflow-report-%s-%s.xlsx", from, to)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.Write(data)
	}
}
