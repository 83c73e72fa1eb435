package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresSink stores audit records in the triage_audit_events table.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink creates a Postgres-backed audit sink.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// Write inserts one record. The table is append-only; there is no update or
// delete path.
func (s *PostgresSink) Write(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO triage_audit_events (
			id, session_id, character_id, region, message_text, signals,
			risk_score, risk_level, trend, intervention, degraded, escalation, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.SessionID,
		nullString(rec.CharacterID),
		nullString(rec.Region),
		rec.MessageText,
		[]byte(rec.Signals),
		rec.RiskScore,
		rec.RiskLevel,
		rec.Trend,
		rec.Intervention,
		rec.Degraded,
		rec.Escalation,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: failed to insert record: %w", err)
	}
	return nil
}

// QueryEvents retrieves stored records matching the filter, newest first.
func (s *PostgresSink) QueryEvents(ctx context.Context, filter Filter) ([]Record, error) {
	query := `
		SELECT id, session_id, character_id, region, message_text, signals,
			   risk_score, risk_level, trend, intervention, degraded, escalation, created_at
		FROM triage_audit_events
		WHERE 1=1
	`
	var args []interface{}
	argIdx := 1

	if filter.SessionID != "" {
		query += fmt.Sprintf(" AND session_id = $%d", argIdx)
		args = append(args, filter.SessionID)
		argIdx++
	}
	if filter.RiskLevel != "" {
		query += fmt.Sprintf(" AND risk_level = $%d", argIdx)
		args = append(args, filter.RiskLevel)
		argIdx++
	}
	if filter.Escalation != nil {
		query += fmt.Sprintf(" AND escalation = $%d", argIdx)
		args = append(args, *filter.Escalation)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var characterID, region sql.NullString
		var signals []byte
		err := rows.Scan(
			&rec.ID, &rec.SessionID, &characterID, &region, &rec.MessageText, &signals,
			&rec.RiskScore, &rec.RiskLevel, &rec.Trend, &rec.Intervention,
			&rec.Degraded, &rec.Escalation, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("audit: failed to scan record: %w", err)
		}
		rec.CharacterID = characterID.String
		rec.Region = region.String
		rec.Signals = signals
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: failed to iterate records: %w", err)
	}

	return records, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
