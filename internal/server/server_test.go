// internal/server/server_test.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitalscan/internal/common/logger"
	"vitalscan/internal/profile"
	"vitalscan/internal/store"
	"vitalscan/internal/tracker"
)

type fakeSubmitter struct {
	lastRaw map[string]interface{}
	id      string
}

func (f *fakeSubmitter) Submit(raw map[string]interface{}) string {
	f.lastRaw = raw
	return f.id
}

type fakeFetcher struct {
	rec *store.StoredDiagnostic
	err error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (*store.StoredDiagnostic, error) {
	return f.rec, f.err
}

func newTestServer(t *testing.T) (*Server, *fakeSubmitter, *fakeFetcher, *tracker.Tracker) {
	t.Helper()
	sub := &fakeSubmitter{id: "job-1"}
	fetch := &fakeFetcher{}
	tr := tracker.New()
	srv := New(sub, fetch, tr, t.TempDir(), logger.NewTestLogger(t))
	return srv, sub, fetch, tr
}

func TestSubmit_JSON(t *testing.T) {
	srv, sub, _, _ := newTestServer(t)

	body := `{"name":"Maria","symptoms":["headache","fatigue"]}`
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-1", resp["id"])
	assert.Equal(t, "/check-status/job-1", resp["status_url"])

	assert.Equal(t, "Maria", sub.lastRaw["name"])
}

func TestSubmit_FormWithMultiSelect(t *testing.T) {
	srv, sub, _, _ := newTestServer(t)

	form := url.Values{}
	form.Set("name", "Maria")
	form.Add("symptoms", "headache")
	form.Add("symptoms", "fatigue")

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "Maria", sub.lastRaw["name"])
	assert.Equal(t, []string{"headache", "fatigue"}, sub.lastRaw["symptoms"])
}

func TestSubmit_BadJSON(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckStatus_UnknownIdIsProcessing(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/check-status/never-seen", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"processing","progress":0}`, rec.Body.String())
}

func TestCheckStatus_CompletedJob(t *testing.T) {
	srv, _, _, tr := newTestServer(t)
	tr.Create("job-1")
	tr.Complete("job-1", "/success/job-1")

	req := httptest.NewRequest(http.MethodGet, "/check-status/job-1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var status tracker.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, tracker.StageCompleted, status.Stage)
	assert.Equal(t, "/success/job-1", status.RedirectURL)
}

func TestViewReport_StoredRecord(t *testing.T) {
	srv, _, fetch, _ := newTestServer(t)
	fetch.rec = &store.StoredDiagnostic{
		ID: "job-1",
		Profile: &profile.DiagnosticProfile{
			Name:      "Maria",
			Diagnosis: "All good.",
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/view-report/job-1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "All good.")
}

func TestViewReport_UnknownIdGetsPlaceholder(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/view-report/unknown", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "still being prepared")
}

func TestSuccess_ReturnsRecordAndAvailability(t *testing.T) {
	srv, _, fetch, _ := newTestServer(t)
	fetch.rec = &store.StoredDiagnostic{
		ID: "job-1",
		Profile: &profile.DiagnosticProfile{
			Name:      "Maria",
			Diagnosis: "All good.",
		},
	}

	// The redirect reference recorded on completion must resolve.
	req := httptest.NewRequest(http.MethodGet, "/success/job-1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Diagnostic struct {
			ID string `json:"id"`
		} `json:"diagnostic"`
		DownloadURL  string `json:"download_url"`
		Availability struct {
			Dates []string `json:"dates"`
			Slots []string `json:"slots"`
		} `json:"availability"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-1", resp.Diagnostic.ID)
	assert.Equal(t, "/download-report/job-1", resp.DownloadURL)
	assert.Len(t, resp.Availability.Dates, 3)
}

func TestSuccess_UnknownIdGetsPlaceholder(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/success/unknown", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "still being prepared")
}

func TestScheduleAvailability(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/schedule/job-1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		DiagnosticID string `json:"diagnostic_id"`
		Availability struct {
			Dates []string `json:"dates"`
			Slots []string `json:"slots"`
		} `json:"availability"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-1", resp.DiagnosticID)
	assert.Len(t, resp.Availability.Dates, 3)
	assert.Len(t, resp.Availability.Slots, 11)
}

func TestScheduleBooking_Success(t *testing.T) {
	srv, _, fetch, _ := newTestServer(t)
	fetch.rec = &store.StoredDiagnostic{ID: "job-1", Profile: &profile.DiagnosticProfile{}}

	body := `{"diagnostic_id":"job-1","date":"31-08-2026","slot":"09:00 - 09:30"}`
	req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestScheduleBooking_MissingFields(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader(`{"diagnostic_id":"job-1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleBooking_UnknownDiagnostic(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	body := `{"diagnostic_id":"missing","date":"31-08-2026","slot":"09:00 - 09:30"}`
	req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
