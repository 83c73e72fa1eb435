package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andrewdunn358-dev/Veteran-sub000/pkg/logging"
)

// SafeguardingAlert carries what staff need to act on an INTERVENE.
type SafeguardingAlert struct {
	SessionID   string
	CharacterID string
	RiskLevel   string
	RiskScore   float64
	Trend       string
	Region      string
	AuditID     string
	Degraded    bool
	OccurredAt  time.Time
}

// Service sends safeguarding alerts to the configured staff address.
type Service struct {
	email   EmailSender
	toEmail string
	logger  *logging.Logger
}

// NewService creates a notification service. A nil sender or empty staff
// address disables delivery; alerts are then logged only.
func NewService(email EmailSender, toEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:   email,
		toEmail: toEmail,
		logger:  logger,
	}
}

// NotifyEscalation delivers a safeguarding alert. Failures are returned for
// the caller to log and retry; they must never block the chat reply.
func (s *Service) NotifyEscalation(ctx context.Context, alert SafeguardingAlert) error {
	if s.email == nil || s.toEmail == "" {
		s.logger.Warn("notify: safeguarding email not configured, alert logged only",
			"session_id", alert.SessionID,
			"audit_id", alert.AuditID,
			"risk_level", alert.RiskLevel,
		)
		return nil
	}

	msg := EmailMessage{
		To:      s.toEmail,
		ToName:  "Safeguarding Team",
		Subject: fmt.Sprintf("[URGENT] Crisis intervention triggered - session %s", alert.SessionID),
		Body:    formatAlertBody(alert),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: safeguarding alert failed: %w", err)
	}

	s.logger.Info("notify: safeguarding alert sent",
		"session_id", alert.SessionID,
		"audit_id", alert.AuditID,
	)
	return nil
}

func formatAlertBody(alert SafeguardingAlert) string {
	var b strings.Builder
	b.WriteString("A chat message triggered a crisis intervention and requires human follow-up.\n\n")
	fmt.Fprintf(&b, "Session:      %s\n", alert.SessionID)
	if alert.CharacterID != "" {
		fmt.Fprintf(&b, "Companion:    %s\n", alert.CharacterID)
	}
	fmt.Fprintf(&b, "Risk level:   %s (score %.1f, trend %s)\n", alert.RiskLevel, alert.RiskScore, alert.Trend)
	if alert.Region != "" {
		fmt.Fprintf(&b, "Region:       %s\n", alert.Region)
	}
	fmt.Fprintf(&b, "Audit record: %s\n", alert.AuditID)
	fmt.Fprintf(&b, "Occurred at:  %s\n", alert.OccurredAt.UTC().Format(time.RFC3339))
	if alert.Degraded {
		b.WriteString("\nNote: the assessment ran degraded; classification may be inconclusive.\n")
	}
	b.WriteString("\nThe user has been shown crisis resources. Please review the session transcript and follow the safeguarding protocol.\n")
	return b.String()
}
