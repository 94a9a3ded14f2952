package www

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/tibberwatch-go/config"
	"github.com/angas/tibberwatch-go/coordinator"
	"github.com/angas/tibberwatch-go/database"
	"github.com/angas/tibberwatch-go/timewindow"
)

type Server struct {
	logger  *slog.Logger
	config  config.AppConfigApi
	db      *database.Database
	coord   *coordinator.Coordinator
	windows *timewindow.Manager
	hub     *Hub
	mux     *http.ServeMux
}

func StartServer(db *database.Database, coord *coordinator.Coordinator, windows *timewindow.Manager, config config.AppConfigApi) *Server {
	logger := slog.Default().With("module", "www")

	s := &Server{
		logger:  logger,
		config:  config,
		db:      db,
		coord:   coord,
		windows: windows,
		hub:     NewHub(logger),
		mux:     http.NewServeMux(),
	}

	go s.hub.Run()

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	s.mux.Handle("/api/snapshot", logReqMW(s.snapshotHandler()))
	s.mux.Handle("/api/snapshot/", logReqMW(s.snapshotHomeHandler()))
	s.mux.Handle("/api/refresh", logReqMW(s.refreshHandler()))
	s.mux.Handle("/api/best_window", logReqMW(s.bestWindowHandler()))
	s.mux.Handle("/api/forecast", logReqMW(s.forecastHandler()))
	s.mux.Handle("/api/windows", logReqMW(s.windowsHandler()))
	s.mux.Handle("/api/windows/", logReqMW(s.windowHandler()))
	s.mux.Handle("/api/log", logReqMW(s.logHandler()))

	s.mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client
		go client.WritePump()
	})

	return s
}

// NotifySnapshot tells every connected websocket client that fresh
// data is available. Wired as an OnUpdate hook on the coordinator.
func (s *Server) NotifySnapshot() {
	s.hub.Broadcast <- []byte(`{"event":"snapshot"}`)
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", "address", s.config.Address, "port", s.config.Port)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler: s.mux,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	for {
		select {
		case err := <-srvErrors:
			if err != nil {
				s.logger.Error("server error", slog.Any("error", err))
			}

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("server shutdown failed", slog.Any("error", err))
			}
			return
		}
	}
}
