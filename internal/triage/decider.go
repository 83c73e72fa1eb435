package triage

import (
	"fmt"
	"strings"
)

// Decide maps a risk tier to the action taken on the conversation. The
// mapping is stateless: everything history-dependent already fed the scorer.
func Decide(level RiskLevel) Intervention {
	switch level {
	case LevelAmber:
		return InterventionAdvise
	case LevelRed:
		return InterventionIntervene
	default:
		return InterventionContinue
	}
}

// FormatCrisisMessage renders the hard-stop message shown in place of the
// companion reply on an INTERVENE. Pure function of the contact list.
func FormatCrisisMessage(contacts []Contact) string {
	var b strings.Builder
	b.WriteString("It sounds like you're going through something really difficult right now. ")
	b.WriteString("You don't have to face this alone - please reach out to someone who can help:\n")
	writeContacts(&b, contacts)
	b.WriteString("If you are in immediate danger, please call your local emergency services.")
	return b.String()
}

// FormatSupportNotice renders the softer resource block appended to the
// companion reply on an ADVISE.
func FormatSupportNotice(contacts []Contact) string {
	var b strings.Builder
	b.WriteString("If things ever feel like too much, support is always available:\n")
	writeContacts(&b, contacts)
	return strings.TrimRight(b.String(), "\n")
}

func writeContacts(b *strings.Builder, contacts []Contact) {
	for _, c := range contacts {
		b.WriteString("- ")
		b.WriteString(c.Name)
		if c.Phone != "" {
			fmt.Fprintf(b, ": call %s", c.Phone)
		}
		if c.TextLine != "" {
			fmt.Fprintf(b, ", text %s", c.TextLine)
		}
		if c.URL != "" {
			fmt.Fprintf(b, " (%s)", c.URL)
		}
		b.WriteString("\n")
	}
}
