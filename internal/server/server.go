// Package server is the thin HTTP transport over the audit pipeline.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"call-audit-go/internal/config"
	"call-audit-go/internal/ingest"
	"call-audit-go/internal/logger"
	"call-audit-go/internal/pipeline"
	"call-audit-go/internal/telemetry"
)

type Server struct {
	cfg      config.Config
	log      *logger.Logger
	pipeline *pipeline.Service
	router   *mux.Router
}

func New(cfg config.Config, log *logger.Logger, svc *pipeline.Service) *Server {
	s := &Server{cfg: cfg, log: log, pipeline: svc}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", telemetry.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/artifacts/{callId}/{filename}", s.handleArtifact).Methods(http.MethodGet)
	s.router = r

	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze accepts an uploaded recording (multipart field "audio") or
// an "audio_url" reference, stages it to a temp file, runs the pipeline
// and responds with the full report document. The staged file is removed
// on every exit path. A degraded rubric is reported in the body, never as
// an HTTP error.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "analyze")
	reqLog.Info("analyze request received")

	consent := parseConsent(r.FormValue("consent"))

	stagedPath, err := s.stageInput(r, reqLog)
	if err != nil {
		reqLog.WithError(err).Warn("no usable audio input")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	defer os.Remove(stagedPath)

	start := time.Now()
	res, err := s.pipeline.Run(r.Context(), stagedPath, "", consent)
	elapsed := time.Since(start)
	if err != nil {
		telemetry.ObserveRun("failed", elapsed)
		reqLog.WithError(err).Error("pipeline failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	status := "ok"
	if res.Degraded {
		status = "degraded"
	}
	telemetry.ObserveRun(status, elapsed)
	reqLog.WithFields(logrus.Fields{
		"call_id":     res.CallID,
		"status":      status,
		"duration_ms": elapsed.Milliseconds(),
	}).Info("pipeline finished")

	writeJSON(w, http.StatusOK, res.Payload)
}

// stageInput persists the request's audio to a temp file and returns its
// path. Callers own the file's removal.
func (s *Server) stageInput(r *http.Request, reqLog *logrus.Entry) (string, error) {
	file, header, err := r.FormFile("audio")
	if err == nil {
		defer file.Close()
		ext := filepath.Ext(header.Filename)
		if ext == "" {
			ext = ".wav"
		}
		tmp, err := os.CreateTemp("", "upload-*"+ext)
		if err != nil {
			return "", errors.New("could not stage uploaded file")
		}
		if _, err := io.Copy(tmp, file); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", errors.New("could not stage uploaded file")
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return "", errors.New("could not stage uploaded file")
		}
		return tmp.Name(), nil
	}

	if audioURL := r.FormValue("audio_url"); audioURL != "" {
		reqLog.WithField("audio_url", audioURL).Info("staging remote audio")
		staged, err := ingest.FetchRemote(r.Context(), audioURL, os.TempDir())
		if err != nil {
			return "", err
		}
		return staged, nil
	}

	return "", errors.New("audio file or audio_url is required")
}

// handleArtifact serves a previously written artifact file. Anything that
// does not resolve to a plain file inside the call directory is a 404.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	callID, filename := vars["callId"], vars["filename"]

	if !filepath.IsLocal(callID) || !filepath.IsLocal(filename) {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(s.cfg.ArtifactsDir, callID, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func parseConsent(v string) bool {
	switch v {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
