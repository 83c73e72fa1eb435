package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewdunn358-dev/Veteran-sub000/internal/audit"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/session"
)

type fakeQuerier struct {
	records []audit.Record
	err     error
	got     audit.Filter
}

func (f *fakeQuerier) QueryEvents(_ context.Context, filter audit.Filter) ([]audit.Record, error) {
	f.got = filter
	return f.records, f.err
}

type fakeReloader struct {
	err   error
	calls int
}

func (f *fakeReloader) Reload() error {
	f.calls++
	return f.err
}

type fakeLister struct {
	entries []session.Entry
	err     error
}

func (f *fakeLister) List(_ context.Context, _ string, _ int64) ([]session.Entry, error) {
	return f.entries, f.err
}

func TestQueryAuditParsesFilters(t *testing.T) {
	querier := &fakeQuerier{records: []audit.Record{{ID: "rec-1", SessionID: "s1"}}}
	handler := NewAdminHandler(querier, nil, nil, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/v1/admin/audit?session_id=s1&level=RED&escalation=true&limit=10&offset=5&since=2026-03-01T00:00:00Z", nil)
	handler.QueryAudit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", querier.got.SessionID)
	assert.Equal(t, "RED", querier.got.RiskLevel)
	require.NotNil(t, querier.got.Escalation)
	assert.True(t, *querier.got.Escalation)
	assert.Equal(t, 10, querier.got.Limit)
	assert.Equal(t, 5, querier.got.Offset)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), querier.got.StartTime)

	var body struct {
		Records []audit.Record `json:"records"`
		Count   int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}

func TestQueryAuditCapsLimit(t *testing.T) {
	querier := &fakeQuerier{}
	handler := NewAdminHandler(querier, nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.QueryAudit(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/audit?limit=9000", nil))

	assert.Equal(t, 50, querier.got.Limit, "an out-of-range limit falls back to the default")
}

func TestQueryAuditEmptyResultIsArray(t *testing.T) {
	handler := NewAdminHandler(&fakeQuerier{}, nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.QueryAudit(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/audit", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"records":[]`)
}

func TestQueryAuditWithoutStore(t *testing.T) {
	handler := NewAdminHandler(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.QueryAudit(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/audit", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestQueryAuditStoreError(t *testing.T) {
	handler := NewAdminHandler(&fakeQuerier{err: errors.New("db down")}, nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.QueryAudit(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/audit", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func transcriptRequest(sessionID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/sessions/"+sessionID+"/transcript", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("sessionID", sessionID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetTranscript(t *testing.T) {
	lister := &fakeLister{entries: []session.Entry{{RiskLevel: "AMBER", RiskScore: 4}}}
	handler := NewAdminHandler(nil, nil, lister, nil)

	rec := httptest.NewRecorder()
	handler.GetTranscript(rec, transcriptRequest("s1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		SessionID string          `json:"session_id"`
		Entries   []session.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "s1", body.SessionID)
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "AMBER", body.Entries[0].RiskLevel)
}

func TestGetTranscriptWithoutStore(t *testing.T) {
	handler := NewAdminHandler(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.GetTranscript(rec, transcriptRequest("s1"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetTranscriptStoreError(t *testing.T) {
	handler := NewAdminHandler(nil, nil, &fakeLister{err: errors.New("redis down")}, nil)

	rec := httptest.NewRecorder()
	handler.GetTranscript(rec, transcriptRequest("s1"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReloadLexicon(t *testing.T) {
	reloader := &fakeReloader{}
	handler := NewAdminHandler(nil, reloader, nil, nil)

	rec := httptest.NewRecorder()
	handler.ReloadLexicon(rec, httptest.NewRequest(http.MethodPost, "/v1/admin/lexicon/reload", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, reloader.calls)
	assert.Contains(t, rec.Body.String(), "reloaded")
}

func TestReloadLexiconValidationFailure(t *testing.T) {
	reloader := &fakeReloader{err: errors.New("lexicon: category weight must be positive")}
	handler := NewAdminHandler(nil, reloader, nil, nil)

	rec := httptest.NewRecorder()
	handler.ReloadLexicon(rec, httptest.NewRequest(http.MethodPost, "/v1/admin/lexicon/reload", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "weight")
}

func TestReloadLexiconUnsupported(t *testing.T) {
	handler := NewAdminHandler(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.ReloadLexicon(rec, httptest.NewRequest(http.MethodPost, "/v1/admin/lexicon/reload", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
