package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/venom3333/CPK-GrandNode/config"
	"github.com/venom3333/CPK-GrandNode/internal/db"
	"github.com/venom3333/CPK-GrandNode/internal/handlers"
	"github.com/venom3333/CPK-GrandNode/internal/middleware"
	"github.com/venom3333/CPK-GrandNode/internal/payture"
	"github.com/venom3333/CPK-GrandNode/internal/reconcile"
	"github.com/venom3333/CPK-GrandNode/logging"
)

func main() {
	logger := logging.GetSugaredLogger()
	defer logger.Sync()

	cfg := config.GetConfig()

	database, err := db.NewManager(cfg)
	if err != nil {
		logger.Fatal(err)
	}
	defer database.Close()

	gateway := payture.NewClient(cfg, logger)
	reconciler := reconcile.NewReconciler(database, gateway, logger)

	h := handlers.Handler{
		Config:     cfg,
		Database:   database,
		Logger:     logger,
		Reconciler: reconciler,
		Payture:    gateway,
	}

	r := initRouter(h)

	err = http.ListenAndServe(cfg.RunAddress, r)
	logger.Fatalw("failed to start server", "error", err)
}

func initRouter(h handlers.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get(`/Plugins/PaymentPayture/PostProcessPayment`,
		func(w http.ResponseWriter, r *http.Request) {
			middleware.Conveyor(
				http.HandlerFunc(h.PostProcessPayment),
				h.Logger,
				middleware.WithRequestLogging,
			).ServeHTTP(w, r)
		},
	)
	r.Get(`/Plugins/PaymentPayture/ReturnUrlHandler`,
		func(w http.ResponseWriter, r *http.Request) {
			middleware.Conveyor(
				http.HandlerFunc(h.ReturnUrlHandler),
				h.Logger,
				middleware.WithRequestLogging,
			).ServeHTTP(w, r)
		},
	)
	r.Post(`/Plugins/PaymentPayture/NotificationHandler`,
		func(w http.ResponseWriter, r *http.Request) {
			middleware.Conveyor(
				http.HandlerFunc(h.NotificationHandler),
				h.Logger,
				middleware.WithRequestLogging,
			).ServeHTTP(w, r)
		},
	)
	r.Get(`/Plugins/PaymentPayture/PaymentInfo`,
		func(w http.ResponseWriter, r *http.Request) {
			middleware.Conveyor(
				http.HandlerFunc(h.PaymentInfo),
				h.Logger,
				middleware.WithRequestLogging,
			).ServeHTTP(w, r)
		},
	)
	return r
}
