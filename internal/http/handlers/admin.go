package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andrewdunn358-dev/Veteran-sub000/internal/audit"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/http/middleware"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/session"
	"github.com/andrewdunn358-dev/Veteran-sub000/pkg/logging"
)

// AuditQuerier retrieves stored audit records.
type AuditQuerier interface {
	QueryEvents(ctx context.Context, filter audit.Filter) ([]audit.Record, error)
}

// LexiconReloader swaps the triage tables without a restart.
type LexiconReloader interface {
	Reload() error
}

// TranscriptLister reads a session's assessment transcript.
type TranscriptLister interface {
	List(ctx context.Context, sessionID string, limit int64) ([]session.Entry, error)
}

// AdminHandler serves the safeguarding staff API: audit queries, session
// transcripts, and lexicon reloads.
type AdminHandler struct {
	audits      AuditQuerier
	reloader    LexiconReloader
	transcripts TranscriptLister
	logger      *logging.Logger
}

// NewAdminHandler creates the admin handler. Audit querier and transcript
// lister are optional; endpoints without a backing store return 503.
func NewAdminHandler(audits AuditQuerier, reloader LexiconReloader, transcripts TranscriptLister, logger *logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{
		audits:      audits,
		reloader:    reloader,
		transcripts: transcripts,
		logger:      logger,
	}
}

// QueryAudit handles GET /v1/admin/audit.
func (h *AdminHandler) QueryAudit(w http.ResponseWriter, r *http.Request) {
	if h.audits == nil {
		http.Error(w, `{"error":"audit store not configured"}`, http.StatusServiceUnavailable)
		return
	}

	filter := audit.Filter{
		SessionID: strings.TrimSpace(r.URL.Query().Get("session_id")),
		RiskLevel: strings.TrimSpace(r.URL.Query().Get("level")),
		Limit:     50,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit <= 500 {
			filter.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if v := r.URL.Query().Get("escalation"); v != "" {
		if escalation, err := strconv.ParseBool(v); err == nil {
			filter.Escalation = &escalation
		}
	}
	if v := r.URL.Query().Get("since"); v != "" {
		if since, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartTime = since
		}
	}

	records, err := h.audits.QueryEvents(r.Context(), filter)
	if err != nil {
		h.logger.Error("admin: audit query failed", "error", err)
		http.Error(w, `{"error":"audit query failed"}`, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []audit.Record{}
	}

	// Access to audit records is itself audited: who read what.
	h.logger.Info("admin: audit records served",
		"subject", middleware.AdminSubject(r.Context()),
		"session_id", filter.SessionID,
		"count", len(records),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// GetTranscript handles GET /v1/admin/sessions/{sessionID}/transcript.
func (h *AdminHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	if h.transcripts == nil {
		http.Error(w, `{"error":"transcript store not configured"}`, http.StatusServiceUnavailable)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, `{"error":"session id is required"}`, http.StatusBadRequest)
		return
	}

	var limit int64 = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.transcripts.List(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("admin: transcript lookup failed", "error", err, "session_id", sessionID)
		http.Error(w, `{"error":"transcript lookup failed"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("admin: transcript served",
		"subject", middleware.AdminSubject(r.Context()),
		"session_id", sessionID,
		"entries", len(entries),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"session_id": sessionID,
		"entries":    entries,
	})
}

// ReloadLexicon handles POST /v1/admin/lexicon/reload. A validation failure
// keeps the previous tables in place.
func (h *AdminHandler) ReloadLexicon(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		http.Error(w, `{"error":"reload not supported"}`, http.StatusServiceUnavailable)
		return
	}
	if err := h.reloader.Reload(); err != nil {
		h.logger.Error("admin: lexicon reload failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	h.logger.Info("admin: lexicon reloaded",
		"subject", middleware.AdminSubject(r.Context()),
	)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "reloaded"})
}
