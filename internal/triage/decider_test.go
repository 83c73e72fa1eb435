package triage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		level RiskLevel
		want  Intervention
	}{
		{LevelNone, InterventionContinue},
		{LevelLow, InterventionContinue},
		{LevelAmber, InterventionAdvise},
		{LevelRed, InterventionIntervene},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.level))
		})
	}
}

func TestFormatCrisisMessage(t *testing.T) {
	contacts := []Contact{
		{Name: "Samaritans", Phone: "116 123", URL: "https://www.samaritans.org"},
		{Name: "Shout", TextLine: "85258"},
	}

	msg := FormatCrisisMessage(contacts)

	assert.Contains(t, msg, "Samaritans")
	assert.Contains(t, msg, "call 116 123")
	assert.Contains(t, msg, "text 85258")
	assert.Contains(t, msg, "emergency services")
}

func TestFormatSupportNotice(t *testing.T) {
	notice := FormatSupportNotice([]Contact{{Name: "Samaritans", Phone: "116 123"}})

	assert.Contains(t, notice, "Samaritans")
	assert.False(t, strings.HasSuffix(notice, "\n"))
}

func TestFormatIsPureOverContactList(t *testing.T) {
	contacts := []Contact{{Name: "A", Phone: "1"}, {Name: "B", Phone: "2"}}
	assert.Equal(t, FormatCrisisMessage(contacts), FormatCrisisMessage(contacts))
}

func TestRiskLevelOrdering(t *testing.T) {
	assert.True(t, LevelRed.AtLeast(LevelAmber))
	assert.True(t, LevelAmber.AtLeast(LevelAmber))
	assert.False(t, LevelLow.AtLeast(LevelAmber))
	assert.Equal(t, LevelRed, maxLevel(LevelAmber, LevelRed))
	assert.Equal(t, LevelAmber, maxLevel(LevelAmber, LevelNone))
}
