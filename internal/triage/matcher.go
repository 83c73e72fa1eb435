package triage

import (
	"regexp"
	"sort"
	"strings"
)

// negationWindow is how many tokens before and after a hit are scanned for
// negation cues.
const negationWindow = 6

// Match scans a message for lexicon hits with negation handling. It is a
// pure function over the immutable lexicon set: empty or malformed text
// yields an empty signal list, never an error. Hits of the same category
// are deduplicated to the strongest instance, with an affirmed hit always
// outranking a negated one.
func Match(text string, set *LexiconSet) []Signal {
	if set == nil {
		return nil
	}
	norm := normalizeText(text)
	if norm == "" {
		return nil
	}
	tokens := strings.Fields(norm)

	best := make(map[string]Signal)
	for _, cat := range set.categories {
		for _, phrase := range cat.phrases {
			// Every occurrence is evaluated: an affirmed use later in the
			// message must not be masked by an earlier negated one.
			for _, loc := range phrase.re.FindAllStringIndex(norm, -1) {
				start := tokenIndexAt(norm, loc[0])
				polarity := PolarityAffirmed
				if negatedAround(tokens, start, phrase.tokens, set.negationCues, cat.exceptions) {
					polarity = PolarityNegated
				}
				sig := Signal{
					Category: cat.Category,
					Phrase:   phrase.raw,
					Polarity: polarity,
					Weight:   cat.Weight,
					Critical: cat.Critical,
				}
				cur, ok := best[cat.Category]
				if !ok || outranks(sig, cur) {
					best[cat.Category] = sig
				}
			}
		}
	}

	signals := make([]Signal, 0, len(best))
	for _, sig := range best {
		signals = append(signals, sig)
	}
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Weight != signals[j].Weight {
			return signals[i].Weight > signals[j].Weight
		}
		return signals[i].Category < signals[j].Category
	})
	return signals
}

// outranks reports whether a should replace b in the per-category dedup.
// Affirmed beats negated so a real signal is never masked by a weaker
// negated phrasing elsewhere in the message.
func outranks(a, b Signal) bool {
	if a.Polarity != b.Polarity {
		return a.Polarity == PolarityAffirmed
	}
	return a.Weight > b.Weight
}

// tokenIndexAt returns the index of the token containing byte offset off.
// A hit can start mid-token (hyphenated or quoted text still satisfies the
// patterns' word boundaries), in which case the partial prefix must not be
// counted as a token of its own.
func tokenIndexAt(norm string, off int) int {
	n := len(strings.Fields(norm[:off]))
	if off > 0 && norm[off-1] != ' ' {
		n--
	}
	return n
}

// negatedAround reports whether a negation cue appears in the token window
// around a hit, or a category negation exception anywhere across the window
// including the hit itself. The cue scan excludes the hit's own tokens so a
// phrase can never negate itself.
func negatedAround(tokens []string, start, span int, cues, exceptions []*regexp.Regexp) bool {
	lo := start - negationWindow
	if lo < 0 {
		lo = 0
	}
	end := start + span
	if end > len(tokens) {
		end = len(tokens)
	}
	hi := end + negationWindow
	if hi > len(tokens) {
		hi = len(tokens)
	}

	surrounding := strings.Join(tokens[lo:start], " ") + " " + strings.Join(tokens[end:hi], " ")
	for _, cue := range cues {
		if cue.MatchString(surrounding) {
			return true
		}
	}

	window := strings.Join(tokens[lo:hi], " ")
	for _, exc := range exceptions {
		if exc.MatchString(window) {
			return true
		}
	}
	return false
}
