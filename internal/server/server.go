// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vitalscan/internal/common/logger"
	"vitalscan/internal/profile"
	"vitalscan/internal/report"
	"vitalscan/internal/schedule"
	"vitalscan/internal/store"
	"vitalscan/internal/tracker"
)

// Submitter enqueues one diagnostic job and returns its id.
type Submitter interface {
	Submit(raw map[string]interface{}) string
}

// Fetcher looks a stored diagnostic up by id.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*store.StoredDiagnostic, error)
}

// Server exposes the HTTP surface: submission, status polling, report
// viewing and the booking calendar.
type Server struct {
	submitter Submitter
	fetcher   Fetcher
	tracker   *tracker.Tracker
	reportDir string
	logger    logger.Logger
}

func New(sub Submitter, fetch Fetcher, tr *tracker.Tracker, reportDir string, log logger.Logger) *Server {
	return &Server{
		submitter: sub,
		fetcher:   fetch,
		tracker:   tr,
		reportDir: reportDir,
		logger:    log,
	}
}

// Router builds the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/submit", s.handleSubmit)
	r.Get("/check-status/{id}", s.handleCheckStatus)
	r.Get("/success/{id}", s.handleSuccess)
	r.Get("/view-report/{id}", s.handleViewReport)
	r.Get("/download-report/{id}", s.handleDownloadReport)
	r.Get("/schedule/{id}", s.handleScheduleAvailability)
	r.Post("/api/schedule", s.handleScheduleBooking)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// handleSubmit accepts the questionnaire as JSON or as a form post and
// returns the job id immediately. The heavy work happens asynchronously.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeSubmission(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read submission")
		return
	}

	id := s.submitter.Submit(raw)
	s.logger.Info("submission accepted", map[string]interface{}{"job_id": id})

	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"id":         id,
		"status_url": "/check-status/" + id,
	})
}

// decodeSubmission normalizes both content types into the raw answer map.
// Repeated form keys become string slices, matching multi-select questions.
func decodeSubmission(r *http.Request) (map[string]interface{}, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var raw map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, err
		}
		return raw, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	raw := make(map[string]interface{}, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) == 1 {
			raw[key] = values[0]
		} else {
			raw[key] = values
		}
	}
	return raw, nil
}

func (s *Server) handleCheckStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.writeJSON(w, http.StatusOK, s.tracker.Get(id))
}

// handleSuccess is the landing payload a completed job redirects to: the
// diagnostic itself, the artifact link and the booking calendar.
func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.fetcher.Fetch(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("success lookup failed", map[string]interface{}{"job_id": id})
		s.writeError(w, http.StatusInternalServerError, "could not load report")
		return
	}
	if rec == nil {
		rec = placeholderRecord(id)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"diagnostic":   rec,
		"download_url": "/download-report/" + id,
		"availability": schedule.Next(3, time.Now()),
	})
}

// handleViewReport returns the stored diagnostic. When neither the store
// nor the snapshot has the record yet, a placeholder is returned so a fast
// poller never sees an error page.
func (s *Server) handleViewReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.fetcher.Fetch(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("report lookup failed", map[string]interface{}{"job_id": id})
		s.writeError(w, http.StatusInternalServerError, "could not load report")
		return
	}

	if rec == nil {
		rec = placeholderRecord(id)
	}

	s.writeJSON(w, http.StatusOK, rec)
}

// placeholderRecord stands in when neither store has the id yet.
func placeholderRecord(id string) *store.StoredDiagnostic {
	return &store.StoredDiagnostic{
		ID: id,
		Profile: &profile.DiagnosticProfile{
			Diagnosis:       "Your report is still being prepared.",
			Recommendations: "Please check back in a moment.",
		},
	}
}

func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	path := report.ArtifactPath(s.reportDir, id)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="diagnostic_`+id+`.pdf"`)
	http.ServeFile(w, r, path)
}

// handleScheduleAvailability returns the next bookable days and the daily
// slot grid for the follow-up call link sent with every report.
func (s *Server) handleScheduleAvailability(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"diagnostic_id": chi.URLParam(r, "id"),
		"availability":  schedule.Next(3, time.Now()),
	})
}

// handleScheduleBooking records a consultation request against an existing
// diagnostic.
func (s *Server) handleScheduleBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DiagnosticID string `json:"diagnostic_id"`
		Date         string `json:"date"`
		Slot         string `json:"slot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read booking request")
		return
	}
	if req.DiagnosticID == "" || req.Date == "" || req.Slot == "" {
		s.writeError(w, http.StatusBadRequest, "diagnostic_id, date and slot are required")
		return
	}

	rec, err := s.fetcher.Fetch(r.Context(), req.DiagnosticID)
	if err != nil {
		s.logger.WithError(err).Error("booking lookup failed", map[string]interface{}{"job_id": req.DiagnosticID})
		s.writeError(w, http.StatusInternalServerError, "could not book consultation")
		return
	}
	if rec == nil {
		s.writeError(w, http.StatusNotFound, "diagnostic not found")
		return
	}

	s.logger.Info("consultation booked", map[string]interface{}{
		"job_id": req.DiagnosticID,
		"date":   req.Date,
		"slot":   req.Slot,
	})
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Consultation booked",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("response encode failed", nil)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
