// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// HemiWeb is the web interface of mpform. It parses multipart/form-data requests and answers them in JSON.

package hemiweb

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hexinfra/mpform/hemi"
	"github.com/hexinfra/mpform/hemi/library/arena"
)

var logger = hemi.GetLogger("hemiweb")

// Server
type Server struct {
	config    *hemi.Config
	collector *hemi.Collector
	registry  *prometheus.Registry
	router    *mux.Router
}

func NewServer(config *hemi.Config) *Server {
	s := &Server{
		config:    config,
		collector: hemi.NewCollector(),
		registry:  prometheus.NewRegistry(),
		router:    mux.NewRouter(),
	}
	s.registry.MustRegister(s.collector)
	s.router.HandleFunc("/parse", s.handleParse).Methods(http.MethodPost)
	s.router.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Serve serves on listener until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- server.Shutdown(shutdownCtx)
	}()
	logger.Infof("serving on %s", listener.Addr())
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Trace(err)
	}
	return errors.Trace(<-done)
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return errors.Annotatef(err, "cannot listen on %s", s.config.Listen)
	}
	return s.Serve(ctx, listener)
}

type errorResult struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(s.config.MaxBodySize)))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResult{"too_large", err.Error()})
		} else {
			writeJSON(w, http.StatusBadRequest, errorResult{"read_error", err.Error()})
		}
		return
	}

	a, err := arena.New(int(s.config.ArenaChunk))
	if err != nil {
		logger.Errorf("%v", err)
		writeJSON(w, http.StatusInternalServerError, errorResult{"arena_error", err.Error()})
		return
	}
	defer a.Free()

	data, err := hemi.Parse(a, r.Header.Get("Content-Type"), content)
	s.collector.Observe(data, a.Used(), err)
	if err != nil {
		logger.Debugf("parse %s: %v", r.RemoteAddr, err)
		writeJSON(w, http.StatusBadRequest, errorResult{hemi.ResultOf(err), err.Error()})
		return
	}
	if logger.IsTraceEnabled() {
		logger.Tracef("parse %s: %d parts, arena: %s", r.RemoteAddr, len(data.Parts), a.Stats())
	}
	writeJSON(w, http.StatusOK, data.View()) // view is copied out of the arena
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": hemi.Version})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warningf("cannot write response: %v", err)
	}
}
