package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dCount/lib/counter"
	"github.com/ValentinKolb/dCount/lib/store"
	rpchttp "github.com/ValentinKolb/dCount/rpc/transport/http"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"net/http"
	"sync"
	"time"
)

var Logger = logger.GetLogger("api")

// VisitRecorded is the response of a recorded visit
type VisitRecorded struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is written for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	// Visits is the locally buffered count, set if the owning node was unavailable
	Visits *int64 `json:"visits,omitempty"`
}

// Server exposes a counter.Service over HTTP
type Server struct {
	svc            *counter.Service
	endpoint       string
	processMetrics bool
	debug          bool

	server   *http.Server
	serverMu sync.Mutex
	closed   bool
}

// NewServer creates the HTTP API for svc. The server is not started, call ListenAndServe.
func NewServer(svc *counter.Service, conf ServiceConfig) *Server {
	return &Server{
		svc:            svc,
		endpoint:       conf.Endpoint,
		processMetrics: conf.ProcessMetrics,
		debug:          conf.LogLevel == "debug",
	}
}

// Handler returns the router with all API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/counter/visit/{page_id}", s.handleVisit)
	mux.HandleFunc("GET /api/v1/counter/visits/{page_id}", s.handleVisits)
	mux.HandleFunc("GET /api/v1/counter/info", s.handleInfo)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if s.debug {
		return rpchttp.LoggerMiddleware(Logger, mux.ServeHTTP)
	}
	return mux
}

// ListenAndServe serves the API on the configured endpoint and blocks until Shutdown is called
func (s *Server) ListenAndServe() error {
	server := &http.Server{
		Addr:              s.endpoint,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.serverMu.Lock()
	if s.closed {
		s.serverMu.Unlock()
		return nil
	}
	s.server = server
	s.serverMu.Unlock()

	Logger.Infof("HTTP API listening on %s", s.endpoint)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for running requests until ctx is done
func (s *Server) Shutdown(ctx context.Context) error {
	s.serverMu.Lock()
	defer s.serverMu.Unlock()

	s.closed = true
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

func (s *Server) handleVisit(w http.ResponseWriter, r *http.Request) {
	pageID := r.PathValue("page_id")
	s.svc.IncrementVisit(pageID)

	writeJSON(w, http.StatusOK, VisitRecorded{
		Status:  "success",
		Message: fmt.Sprintf("Visit recorded for page %s", pageID),
	})
}

func (s *Server) handleVisits(w http.ResponseWriter, r *http.Request) {
	pageID := r.PathValue("page_id")

	count, err := s.svc.GetVisitCount(pageID)
	if err != nil {
		if store.IsRemoteUnavailable(err) {
			Logger.Warningf("read of %s failed: %v", pageID, err)
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Visits: &count.Count})
			return
		}
		Logger.Errorf("read of %s failed: %v", pageID, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, count)
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Info())
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	s.svc.WriteMetrics(w)
	if s.processMetrics {
		metrics.WriteProcessMetrics(w)
	}
}

// writeJSON writes v as the JSON body of the response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Errorf("failed to write response: %v", err)
	}
}
