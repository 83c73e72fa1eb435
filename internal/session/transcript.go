// Package session keeps a redis-backed transcript of assessment outcomes
// per conversation, for support staff review. It stores levels and scores
// only, never raw message text; the audit trail owns the full record.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// maxTranscriptEntries bounds the per-session list in redis.
const maxTranscriptEntries = 50

// Entry is one assessment outcome in a session's transcript.
type Entry struct {
	RiskLevel    string    `json:"risk_level"`
	RiskScore    float64   `json:"risk_score"`
	Trend        string    `json:"trend"`
	Intervention string    `json:"intervention"`
	Degraded     bool      `json:"degraded,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TranscriptStore appends and lists assessment transcripts.
type TranscriptStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewTranscriptStore creates a store over the given redis client.
func NewTranscriptStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *TranscriptStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if tracer == nil {
		tracer = otel.Tracer("vetsupport.internal.session")
	}
	return &TranscriptStore{
		redis:  client,
		ttl:    ttl,
		tracer: tracer,
	}
}

// Append adds an entry to the session's transcript, trimming to the most
// recent entries and refreshing the TTL.
func (s *TranscriptStore) Append(ctx context.Context, sessionID string, entry Entry) error {
	ctx, span := s.tracer.Start(ctx, "session.append_transcript")
	defer span.End()

	data, err := json.Marshal(entry)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal transcript entry: %w", err)
	}

	key := transcriptKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -maxTranscriptEntries, -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist transcript entry: %w", err)
	}
	return nil
}

// List returns up to limit of the session's most recent entries, oldest
// first. An unknown session yields an empty slice.
func (s *TranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]Entry, error) {
	ctx, span := s.tracer.Start(ctx, "session.list_transcript")
	defer span.End()

	if limit <= 0 || limit > maxTranscriptEntries {
		limit = maxTranscriptEntries
	}
	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), -limit, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load transcript: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("session: failed to decode transcript entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func transcriptKey(sessionID string) string {
	return fmt.Sprintf("triage:transcript:%s", sessionID)
}
