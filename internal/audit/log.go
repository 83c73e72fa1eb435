package audit

import (
	"context"

	"github.com/andrewdunn358-dev/Veteran-sub000/pkg/logging"
)

// LogSink writes audit records to the structured log. Used as the fallback
// sink in environments without a database or queue, so an assessment is
// never produced without at least one durable trace.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a log-backed audit sink.
func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

// Write logs the record. Escalation records log at warn so they stand out
// in aggregation.
func (s *LogSink) Write(_ context.Context, rec Record) error {
	attrs := []any{
		"record_id", rec.ID,
		"session_id", rec.SessionID,
		"risk_level", rec.RiskLevel,
		"risk_score", rec.RiskScore,
		"trend", rec.Trend,
		"intervention", rec.Intervention,
		"degraded", rec.Degraded,
		"escalation", rec.Escalation,
	}
	if rec.Escalation {
		s.logger.Warn("audit: escalation record", attrs...)
		return nil
	}
	s.logger.Info("audit: assessment record", attrs...)
	return nil
}
