package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

func NewRouter(opts RouterOptions, payrollHandler PayrollHandler, requestHandler RequestHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "rrhh"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/preview-single", payrollHandler.PreviewSingle)
			r.Post("/preview-batch", payrollHandler.PreviewBatch)
			r.Post("/commit-single", payrollHandler.CommitSingle)
			r.Post("/commit-batch", payrollHandler.CommitBatch)
			r.Get("/", payrollHandler.List)

			r.Route("/concepts", func(r chi.Router) {
				r.Get("/", payrollHandler.ListConcepts)
				r.Post("/", payrollHandler.CreateConcept)
				r.Put("/{id}", payrollHandler.UpdateConcept)
			})

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", payrollHandler.Get)
				r.Put("/estado", payrollHandler.UpdateStatus)
				r.Get("/payslip", payrollHandler.Payslip)
			})
		})

		r.Route("/contracts/{contractId}", func(r chi.Router) {
			r.Get("/requests", requestHandler.ListByContract)
			r.Post("/concepts/{conceptId}", payrollHandler.AssignConcept)
			r.Delete("/concepts/{conceptId}", payrollHandler.RemoveConcept)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/{variant:vacation|leave|overtime|resignation}", requestHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", requestHandler.Get)
				r.Put("/", requestHandler.Update)
				r.Delete("/", requestHandler.Delete)
				r.Patch("/reactivate", requestHandler.Reactivate)
				r.Patch("/state", requestHandler.Transition)
			})
		})
	})
	return r
}
