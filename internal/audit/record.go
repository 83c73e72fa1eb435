// Package audit produces immutable structured records of every triage
// assessment for downstream storage. Persistence is owned by external
// collaborators behind the Sink interface.
package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Record is one assessment's audit entry. Records are immutable once
// emitted; escalation records in particular are never retracted, even if
// the session later de-escalates.
type Record struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"session_id"`
	CharacterID  string          `json:"character_id,omitempty"`
	Region       string          `json:"region,omitempty"`
	MessageText  string          `json:"message_text"`
	Signals      json.RawMessage `json:"signals,omitempty"`
	RiskScore    float64         `json:"risk_score"`
	RiskLevel    string          `json:"risk_level"`
	Trend        string          `json:"trend"`
	Intervention string          `json:"intervention"`
	Degraded     bool            `json:"degraded"`
	Escalation   bool            `json:"escalation"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Sink accepts audit records for durable storage.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// Filter specifies criteria for querying stored records.
type Filter struct {
	SessionID  string
	RiskLevel  string
	Escalation *bool
	StartTime  time.Time
	EndTime    time.Time
	Limit      int
	Offset     int
}
