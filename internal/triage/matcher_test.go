package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLexiconYAML = `
version: 1
categories:
  - category: self-harm
    critical: true
    weight: 8
    phrases:
      - "suicidal"
      - "ending it all"
      - "want to die"
      - "kill myself"
    negation_exceptions:
      - "much better now"
  - category: hopelessness
    weight: 3
    phrases:
      - "hopeless"
      - "no way out"
  - category: substance-abuse
    weight: 3
    phrases:
      - "relapsed"
      - "overdose"
`

func testLexicons(t *testing.T) *LexiconSet {
	t.Helper()
	set, err := ParseLexicons([]byte(testLexiconYAML))
	require.NoError(t, err)
	return set
}

func TestMatchAffirmedHit(t *testing.T) {
	set := testLexicons(t)

	signals := Match("Sometimes I think about ending it all", set)

	require.Len(t, signals, 1)
	assert.Equal(t, "self-harm", signals[0].Category)
	assert.Equal(t, "ending it all", signals[0].Phrase)
	assert.Equal(t, PolarityAffirmed, signals[0].Polarity)
	assert.True(t, signals[0].Critical)
}

func TestMatchNegationCue(t *testing.T) {
	set := testLexicons(t)

	signals := Match("I am not suicidal, just tired", set)

	require.Len(t, signals, 1)
	assert.Equal(t, "self-harm", signals[0].Category)
	assert.Equal(t, PolarityNegated, signals[0].Polarity)
}

func TestMatchNegationExceptionPhrase(t *testing.T) {
	set := testLexicons(t)

	signals := Match("I used to feel suicidal but I'm much better now", set)

	require.Len(t, signals, 1)
	assert.Equal(t, PolarityNegated, signals[0].Polarity,
		"past-tense recovery phrasing should attenuate the signal")
}

func TestMatchCueOutsideWindowDoesNotNegate(t *testing.T) {
	set := testLexicons(t)

	// The cue sits more than six tokens before the hit.
	signals := Match("I am not sure what the weather will be like but I feel hopeless", set)

	require.Len(t, signals, 1)
	assert.Equal(t, "hopelessness", signals[0].Category)
	assert.Equal(t, PolarityAffirmed, signals[0].Polarity)
}

func TestMatchDeduplicatesPerCategory(t *testing.T) {
	set := testLexicons(t)

	signals := Match("I want to die, I really want to die, I want to die", set)

	require.Len(t, signals, 1)
	assert.Equal(t, "self-harm", signals[0].Category)
}

func TestMatchAffirmedOutranksNegatedInDedup(t *testing.T) {
	set := testLexicons(t)

	// One negated and one affirmed phrase from the same category: the
	// affirmed instance must win so a real signal is never masked.
	signals := Match("I'm not suicidal anymore and yet sometimes I still think about ending it all honestly", set)

	require.Len(t, signals, 1)
	assert.Equal(t, PolarityAffirmed, signals[0].Polarity)
}

func TestMatchMultipleCategoriesOrderedByWeight(t *testing.T) {
	set := testLexicons(t)

	signals := Match("I feel hopeless and I relapsed and I want to die", set)

	require.Len(t, signals, 3)
	assert.Equal(t, "self-harm", signals[0].Category)
	assert.Equal(t, 8.0, signals[0].Weight)
}

func TestMatchEmptyAndCleanText(t *testing.T) {
	set := testLexicons(t)

	assert.Empty(t, Match("", set))
	assert.Empty(t, Match("   \t\n ", set))
	assert.Empty(t, Match("I'm a bit stressed about work", set))
}

func TestMatchIsCaseAndWhitespaceInsensitive(t *testing.T) {
	set := testLexicons(t)

	signals := Match("ENDING   IT\tALL", set)

	require.Len(t, signals, 1)
	assert.Equal(t, "ending it all", signals[0].Phrase)
}

func TestMatchNilLexicons(t *testing.T) {
	assert.Empty(t, Match("I want to die", nil))
}

func TestMatchHyphenatedHit(t *testing.T) {
	set := testLexicons(t)

	// The pattern's word boundary matches inside "non-suicidal"; the hit
	// starts mid-token and must still resolve to the containing token.
	signals := Match("she described herself as non-suicidal", set)

	require.Len(t, signals, 1)
	assert.Equal(t, "self-harm", signals[0].Category)
	assert.Equal(t, "suicidal", signals[0].Phrase)
}

func TestMatchQuotedHit(t *testing.T) {
	set := testLexicons(t)

	signals := Match(`they wrote "suicidal" in the note`, set)

	require.Len(t, signals, 1)
	assert.Equal(t, "self-harm", signals[0].Category)
}

func TestMatchNegationCueAroundQuotedHit(t *testing.T) {
	set := testLexicons(t)

	// The leading quote attaches to the hit's token; the cue window must
	// still line up with the containing token.
	signals := Match(`I am not "suicidal", just exhausted`, set)

	require.Len(t, signals, 1)
	assert.Equal(t, PolarityNegated, signals[0].Polarity)
}

func TestMatchHitAtEndOfHyphenatedText(t *testing.T) {
	set := testLexicons(t)

	signals := Match("half-hopeless", set)

	require.Len(t, signals, 1)
	assert.Equal(t, "hopelessness", signals[0].Category)
	assert.Equal(t, PolarityAffirmed, signals[0].Polarity)
}
