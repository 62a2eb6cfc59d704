package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getgroups "optimaflow/http-server/admin/get"
	savegroups "optimaflow/http-server/admin/save"
	upgroups "optimaflow/http-server/admin/update"
	getattendance "optimaflow/http-server/attendance/get"
	saveattendance "optimaflow/http-server/attendance/save"
	generate_excel "optimaflow/http-server/generate-report/generate-excel"
	getmaterials "optimaflow/http-server/materials/get"
	gettechnicians "optimaflow/http-server/technicians/get"
	savetechnicians "optimaflow/http-server/technicians/save"
	delorder "optimaflow/http-server/work-orders/delete"
	getorder "optimaflow/http-server/work-orders/get"
	"optimaflow/http-server/work-orders/importorders"
	uporder "optimaflow/http-server/work-orders/update"
	"optimaflow/internal/config"
	"optimaflow/internal/middleware/auth"
	"optimaflow/internal/service/importer"
	"optimaflow/internal/service/report"
	"optimaflow/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, importService *importer.Service, reportService *report.Service) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// work orders
	router.Get("/api/work-orders", getorder.GetWorkOrders(log, storage))
	router.Get("/api/work-orders/{orderNo}", getorder.GetWorkOrder(log, storage))
	router.Put("/api/work-orders/{orderNo}/status", uporder.UpdateStatus(log, storage))
	router.Delete("/api/work-orders/{orderNo}", delorder.DeleteWorkOrder(log, storage))
	router.Post("/api/work-orders/import", importorders.ImportOrders(log, importService))

	// technicians
	router.Get("/api/technicians", gettechnicians.GetTechnicians(log, storage))
	router.Post("/api/technicians", savetechnicians.SaveTechnician(log, storage))

	// attendance
	router.Get("/api/attendance", getattendance.GetAttendance(log, storage))
	router.Post("/api/attendance", saveattendance.SaveAttendance(log, storage))

	// materials
	router.Get("/api/materials", getmaterials.GetMaterials(log, storage))

	// excel report
	router.Get("/api/report/excel", generate_excel.GenerateReportExcel(log, reportService))

	// group administration
	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Get("/groups", getgroups.GetGroupsAdmin(log, storage))
	adminRouter.Post("/groups", savegroups.SaveGroupAdmin(log, storage))
	adminRouter.Put("/groups/{id}", upgroups.UpdateGroupAdmin(log, storage))

	router.Mount("/api/admin", adminRouter)

	return router
}
