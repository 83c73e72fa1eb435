package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/andrewdunn358-dev/Veteran-sub000/internal/notify"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/session"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/triage"
	"github.com/andrewdunn358-dev/Veteran-sub000/pkg/logging"
)

// notifyTimeout bounds the background safeguarding notification.
const notifyTimeout = 10 * time.Second

// Assessor runs a triage assessment.
type Assessor interface {
	Assess(ctx context.Context, req triage.Request) triage.Result
}

// EscalationNotifier alerts human safeguarding staff.
type EscalationNotifier interface {
	NotifyEscalation(ctx context.Context, alert notify.SafeguardingAlert) error
}

// TranscriptAppender records assessment outcomes per session.
type TranscriptAppender interface {
	Append(ctx context.Context, sessionID string, entry session.Entry) error
}

// TriageHandler exposes the synchronous assessment endpoint called by the
// chat orchestrator before every companion reply.
type TriageHandler struct {
	engine      Assessor
	notifier    EscalationNotifier
	transcripts TranscriptAppender
	logger      *logging.Logger
}

// NewTriageHandler creates the assessment handler. Notifier and transcript
// store are optional collaborators.
func NewTriageHandler(engine Assessor, notifier EscalationNotifier, transcripts TranscriptAppender, logger *logging.Logger) *TriageHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TriageHandler{
		engine:      engine,
		notifier:    notifier,
		transcripts: transcripts,
		logger:      logger,
	}
}

// Assess handles POST /v1/triage/assess. An assessable request always gets
// a 200 with a result; the engine converts internal faults to a degraded
// AMBER rather than failing the request.
func (h *TriageHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req triage.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		http.Error(w, `{"error":"session_id is required"}`, http.StatusBadRequest)
		return
	}

	result := h.engine.Assess(r.Context(), req)

	if result.Intervention == triage.InterventionIntervene && h.notifier != nil {
		alert := notify.SafeguardingAlert{
			SessionID:   req.SessionID,
			CharacterID: req.CharacterID,
			RiskLevel:   string(result.RiskLevel),
			RiskScore:   result.RiskScore,
			Trend:       string(result.Trend),
			Region:      req.RegionHint,
			AuditID:     result.AuditID,
			Degraded:    result.Degraded,
			OccurredAt:  result.Timestamp,
		}
		bg := context.WithoutCancel(r.Context())
		go func() {
			ctx, cancel := context.WithTimeout(bg, notifyTimeout)
			defer cancel()
			if err := h.notifier.NotifyEscalation(ctx, alert); err != nil {
				h.logger.Error("triage: safeguarding notification failed",
					"error", err,
					"session_id", alert.SessionID,
					"audit_id", alert.AuditID,
				)
			}
		}()
	}

	if h.transcripts != nil {
		entry := session.Entry{
			RiskLevel:    string(result.RiskLevel),
			RiskScore:    result.RiskScore,
			Trend:        string(result.Trend),
			Intervention: string(result.Intervention),
			Degraded:     result.Degraded,
			CreatedAt:    result.Timestamp,
		}
		if err := h.transcripts.Append(r.Context(), req.SessionID, entry); err != nil {
			h.logger.Warn("triage: transcript append failed",
				"error", err,
				"session_id", req.SessionID,
			)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("triage: failed to encode response", "error", err)
	}
}
