// Package triage implements the message-safety classifier that runs
// synchronously on every inbound chat message before the companion reply
// is sent. It assigns a risk tier, decides whether to interrupt the
// conversation with crisis resources, and produces an auditable record.
package triage

import "time"

// RiskLevel is the discrete severity tier derived from a continuous score.
type RiskLevel string

const (
	LevelNone  RiskLevel = "NONE"
	LevelLow   RiskLevel = "LOW"
	LevelAmber RiskLevel = "AMBER"
	LevelRed   RiskLevel = "RED"
)

// rank orders tiers so comparisons always resolve toward the higher tier.
func (l RiskLevel) rank() int {
	switch l {
	case LevelLow:
		return 1
	case LevelAmber:
		return 2
	case LevelRed:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether l is the same tier as min or higher.
func (l RiskLevel) AtLeast(min RiskLevel) bool {
	return l.rank() >= min.rank()
}

// maxLevel returns the higher of two tiers.
func maxLevel(a, b RiskLevel) RiskLevel {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// Trend describes the direction of a session's recent risk scores.
type Trend string

const (
	TrendStable       Trend = "STABLE"
	TrendEscalating   Trend = "ESCALATING"
	TrendDeEscalating Trend = "DE_ESCALATING"
)

// Intervention is the action taken on the conversation for a risk tier.
type Intervention string

const (
	// InterventionContinue lets the companion reply proceed unmodified.
	InterventionContinue Intervention = "CONTINUE"
	// InterventionAdvise allows the reply but requires localized support
	// resources to be appended or interleaved.
	InterventionAdvise Intervention = "ADVISE"
	// InterventionIntervene replaces the reply with a crisis message and
	// signals the caller to notify human safeguarding staff.
	InterventionIntervene Intervention = "INTERVENE"
)

// Polarity records whether a matched phrase was asserted or negated by
// surrounding context.
type Polarity string

const (
	PolarityAffirmed Polarity = "affirmed"
	PolarityNegated  Polarity = "negated"
)

// Signal is a single lexicon hit in a message.
type Signal struct {
	Category string   `json:"category"`
	Phrase   string   `json:"phrase"`
	Polarity Polarity `json:"polarity"`
	Weight   float64  `json:"weight"`
	Critical bool     `json:"critical,omitempty"`
}

// Contact is one crisis resource entry for a region.
type Contact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	TextLine string `json:"text_line,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Request is the inbound assessment request from the chat orchestrator.
type Request struct {
	SessionID   string `json:"session_id"`
	MessageText string `json:"message_text"`
	RegionHint  string `json:"region_hint,omitempty"`
	CharacterID string `json:"character_id,omitempty"`
}

// Result is the outcome of one assessment. It is immutable once produced.
type Result struct {
	RiskLevel      RiskLevel    `json:"risk_level"`
	RiskScore      float64      `json:"risk_score"`
	Trend          Trend        `json:"trend"`
	MatchedSignals []Signal     `json:"matched_signals"`
	Intervention   Intervention `json:"intervention"`
	Resources      []Contact    `json:"resources,omitempty"`
	CrisisMessage  string       `json:"crisis_message,omitempty"`
	SupportNotice  string       `json:"support_notice,omitempty"`
	Degraded       bool         `json:"degraded,omitempty"`
	AuditID        string       `json:"audit_id,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}
