package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/relgrid/internal/config"
	"github.com/Lumos-Labs-HQ/relgrid/internal/mutation"
	"github.com/Lumos-Labs-HQ/relgrid/internal/store"
)

// Server exposes the grid over HTTP for embedding hosts. It is
// stateless apart from pending delete confirmations, which live only
// until confirmed or cancelled.
type Server struct {
	cfg    *config.Config
	store  store.Store
	logger *zap.SugaredLogger

	pendingDeletes *mutation.DeleteTokens
}

func New(cfg *config.Config, st store.Store, logger *zap.SugaredLogger) *Server {
	return &Server{
		cfg:            cfg,
		store:          st,
		logger:         logger,
		pendingDeletes: mutation.NewDeleteTokens(),
	}
}

// Handler builds the router with CORS applied.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/grid").Subrouter()
	api.HandleFunc("/config", s.handleConfig).Methods("GET")
	api.HandleFunc("/records", s.handleRecords).Methods("GET")
	api.HandleFunc("/metadata", s.handleMetadata).Methods("GET")
	api.HandleFunc("/columns", s.handleColumns).Methods("GET")
	api.HandleFunc("/save", s.handleSave).Methods("POST")
	api.HandleFunc("/bulk-update", s.handleBulkUpdate).Methods("POST")
	api.HandleFunc("/delete", s.handleDeleteRequest).Methods("POST")
	api.HandleFunc("/delete/confirm", s.handleDeleteConfirm).Methods("POST")
	api.HandleFunc("/delete/cancel", s.handleDeleteCancel).Methods("POST")
	api.HandleFunc("/export", s.handleExport).Methods("GET")

	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router)
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests before returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Server.Port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
