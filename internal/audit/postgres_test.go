package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() Record {
	return Record{
		ID:           "rec-1",
		SessionID:    "s1",
		CharacterID:  "mentor",
		Region:       "GB",
		MessageText:  "sometimes I think about ending it all",
		Signals:      json.RawMessage(`[{"category":"self-harm"}]`),
		RiskScore:    8,
		RiskLevel:    "RED",
		Trend:        "ESCALATING",
		Intervention: "INTERVENE",
		Escalation:   true,
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func auditColumns() []string {
	return []string{
		"id", "session_id", "character_id", "region", "message_text", "signals",
		"risk_score", "risk_level", "trend", "intervention", "degraded", "escalation", "created_at",
	}
}

func TestPostgresSinkWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := testRecord()
	mock.ExpectExec("INSERT INTO triage_audit_events").
		WithArgs(
			rec.ID, rec.SessionID, sqlmock.AnyArg(), sqlmock.AnyArg(), rec.MessageText,
			[]byte(rec.Signals), rec.RiskScore, rec.RiskLevel, rec.Trend,
			rec.Intervention, rec.Degraded, rec.Escalation, rec.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sink := NewPostgresSink(db)
	require.NoError(t, sink.Write(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkWriteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO triage_audit_events").
		WillReturnError(errors.New("connection reset"))

	sink := NewPostgresSink(db)
	err = sink.Write(context.Background(), testRecord())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit:")
}

func TestPostgresSinkQueryEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := testRecord()
	rows := sqlmock.NewRows(auditColumns()).AddRow(
		rec.ID, rec.SessionID, rec.CharacterID, rec.Region, rec.MessageText, []byte(rec.Signals),
		rec.RiskScore, rec.RiskLevel, rec.Trend, rec.Intervention, rec.Degraded, rec.Escalation, rec.CreatedAt,
	)
	mock.ExpectQuery("SELECT (.+) FROM triage_audit_events").
		WithArgs("s1", "RED").
		WillReturnRows(rows)

	sink := NewPostgresSink(db)
	records, err := sink.QueryEvents(context.Background(), Filter{SessionID: "s1", RiskLevel: "RED"})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, rec.CharacterID, records[0].CharacterID)
	assert.JSONEq(t, string(rec.Signals), string(records[0].Signals))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkQueryEventsEscalationFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM triage_audit_events").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows(auditColumns()))

	escalation := true
	sink := NewPostgresSink(db)
	records, err := sink.QueryEvents(context.Background(), Filter{Escalation: &escalation, Limit: 50})

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkQueryEventsNullColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(auditColumns()).AddRow(
		"rec-2", "s2", nil, nil, "hello", []byte(`[]`),
		0.0, "NONE", "STABLE", "CONTINUE", false, false, time.Now().UTC(),
	)
	mock.ExpectQuery("SELECT (.+) FROM triage_audit_events").
		WillReturnRows(rows)

	sink := NewPostgresSink(db)
	records, err := sink.QueryEvents(context.Background(), Filter{})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].CharacterID)
	assert.Empty(t, records[0].Region)
}
