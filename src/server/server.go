package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"signaltracker/src/auth"
	"signaltracker/src/connectors"
	"signaltracker/src/engine"
	"signaltracker/src/handler"
	"signaltracker/src/repository"
	"signaltracker/src/stream"
)

func StartServer(port string) {
	quotes, err := connectors.NewQuoteSource(connectors.GetConfig())
	if err != nil {
		logger.WithError(err).Fatal("Quote source not configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := stream.NewHub()
	go hub.Run(ctx)

	stockRepo := repository.NewTrackedStockRepository()
	userRepo := repository.NewUserRepository()
	eng := engine.NewEngine(quotes, stockRepo, hub, nil)
	jwt := auth.NewJWT()

	// Router with middleware
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("\"/healthcheck\" error")
		}
	})

	r.Post("/api/auth/register", handler.RegisterHandler(userRepo, jwt))
	r.Post("/api/auth/login", handler.LoginHandler(userRepo, jwt))

	// Evaluation surface. The batch is also triggered by the scheduler
	// binary; both run the same engine operation.
	r.Post("/api/signals/check", handler.CheckSignalsHandler(eng))
	r.Post("/api/stocks/price", handler.StockPriceHandler(quotes))

	r.Get("/ws/stocks", hub.ServeWS)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(jwt, userRepo))
		r.Post("/api/stocks/track", handler.TrackStockHandler(stockRepo, eng))
		r.Post("/api/stocks/untrack", handler.UntrackStockHandler(stockRepo))
		r.Get("/api/stocks", handler.ListStocksHandler(stockRepo))
	})

	// Graceful server
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
