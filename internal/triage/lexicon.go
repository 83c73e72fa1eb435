package triage

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultNegationCues are applied when the lexicon file does not supply its
// own list. Deliberately conservative: a missed negation over-flags, a wrong
// negation under-flags.
var defaultNegationCues = []string{
	"not", "never", "don't", "dont", "doesn't", "isn't", "wasn't",
	"won't", "wouldn't", "no longer", "used to", "not going to", "stopped",
}

// CategoryLexicon is one risk category as declared in the lexicon file.
type CategoryLexicon struct {
	Category           string   `yaml:"category"`
	Critical           bool     `yaml:"critical"`
	Weight             float64  `yaml:"weight"`
	Phrases            []string `yaml:"phrases"`
	NegationExceptions []string `yaml:"negation_exceptions"`
}

type lexiconFile struct {
	Version      int               `yaml:"version"`
	NegationCues []string          `yaml:"negation_cues"`
	Categories   []CategoryLexicon `yaml:"categories"`
}

// compiledPhrase pairs a phrase with its word-boundary pattern.
type compiledPhrase struct {
	raw    string
	tokens int
	re     *regexp.Regexp
}

type compiledCategory struct {
	CategoryLexicon
	phrases    []compiledPhrase
	exceptions []*regexp.Regexp
}

// LexiconSet is the full set of category lexicons, compiled and immutable
// after load. Safe for unsynchronized concurrent reads.
type LexiconSet struct {
	Version      int
	negationCues []*regexp.Regexp
	categories   []compiledCategory
}

// LoadLexicons reads and validates the lexicon file. Any malformed entry is
// a configuration error: the caller must treat it as fatal at startup.
func LoadLexicons(path string) (*LexiconSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("triage: read lexicon file: %w", err)
	}
	return ParseLexicons(data)
}

// ParseLexicons builds a LexiconSet from raw YAML.
func ParseLexicons(data []byte) (*LexiconSet, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("triage: decode lexicon file: %w", err)
	}
	if file.Version <= 0 {
		return nil, fmt.Errorf("triage: lexicon file missing version")
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("triage: lexicon file declares no categories")
	}

	cues := file.NegationCues
	if len(cues) == 0 {
		cues = defaultNegationCues
	}

	set := &LexiconSet{Version: file.Version}
	for _, cue := range cues {
		re, err := compilePhrase(cue)
		if err != nil {
			return nil, fmt.Errorf("triage: negation cue %q: %w", cue, err)
		}
		set.negationCues = append(set.negationCues, re)
	}

	seen := make(map[string]bool, len(file.Categories))
	for _, cat := range file.Categories {
		name := strings.TrimSpace(cat.Category)
		if name == "" {
			return nil, fmt.Errorf("triage: lexicon category with empty name")
		}
		if seen[name] {
			return nil, fmt.Errorf("triage: duplicate lexicon category %q", name)
		}
		seen[name] = true
		if cat.Weight <= 0 {
			return nil, fmt.Errorf("triage: category %q has non-positive weight %v", name, cat.Weight)
		}
		if len(cat.Phrases) == 0 {
			return nil, fmt.Errorf("triage: category %q has no phrases", name)
		}

		compiled := compiledCategory{CategoryLexicon: cat}
		compiled.Category = name
		for _, phrase := range cat.Phrases {
			phrase = normalizeText(phrase)
			if phrase == "" {
				return nil, fmt.Errorf("triage: category %q has an empty phrase", name)
			}
			re, err := compilePhrase(phrase)
			if err != nil {
				return nil, fmt.Errorf("triage: category %q phrase %q: %w", name, phrase, err)
			}
			compiled.phrases = append(compiled.phrases, compiledPhrase{
				raw:    phrase,
				tokens: len(strings.Fields(phrase)),
				re:     re,
			})
		}
		for _, exc := range cat.NegationExceptions {
			exc = normalizeText(exc)
			if exc == "" {
				continue
			}
			re, err := compilePhrase(exc)
			if err != nil {
				return nil, fmt.Errorf("triage: category %q negation exception %q: %w", name, exc, err)
			}
			compiled.exceptions = append(compiled.exceptions, re)
		}
		set.categories = append(set.categories, compiled)
	}

	return set, nil
}

// Categories returns the declared category lexicons, for diagnostics.
func (s *LexiconSet) Categories() []CategoryLexicon {
	out := make([]CategoryLexicon, 0, len(s.categories))
	for _, cat := range s.categories {
		out = append(out, cat.CategoryLexicon)
	}
	return out
}

// compilePhrase turns a phrase into a case-insensitive, word-boundary
// pattern tolerant of any whitespace between words.
func compilePhrase(phrase string) (*regexp.Regexp, error) {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) == 0 {
		return nil, fmt.Errorf("empty phrase")
	}
	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = regexp.QuoteMeta(w)
	}
	return regexp.Compile(`\b` + strings.Join(escaped, `\s+`) + `\b`)
}

// normalizeText lowercases and collapses whitespace.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
