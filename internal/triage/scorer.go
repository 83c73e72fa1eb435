package triage

// Scorer aggregates phrase signals and session history into a numeric score
// and a discrete risk tier. Thresholds are injected, never hard-coded, so
// tiering can be tuned without touching logic.
type Scorer struct {
	thresholdAmber  float64
	thresholdRed    float64
	escalationBonus float64
}

// NewScorer builds a scorer with the configured tier thresholds.
func NewScorer(thresholdAmber, thresholdRed, escalationBonus float64) *Scorer {
	return &Scorer{
		thresholdAmber:  thresholdAmber,
		thresholdRed:    thresholdRed,
		escalationBonus: escalationBonus,
	}
}

// Score combines the message's signals with the session's prior scores.
// Signals are expected deduplicated to one per category, so each category
// contributes at most once. A boundary score always rounds up to the higher
// tier, and an affirmed critical-category signal floors the tier at AMBER
// regardless of total score.
func (s *Scorer) Score(signals []Signal, history []float64) (float64, RiskLevel) {
	var score float64
	critical := false
	for _, sig := range signals {
		if sig.Polarity != PolarityAffirmed {
			continue
		}
		score += sig.Weight
		if sig.Critical {
			critical = true
		}
	}

	if score > 0 && strictlyIncreasingTail(history, 3) {
		score += s.escalationBonus
	}

	level := s.levelFor(score)
	if critical {
		level = maxLevel(level, LevelAmber)
	}
	return score, level
}

func (s *Scorer) levelFor(score float64) RiskLevel {
	switch {
	case score <= 0:
		return LevelNone
	case score < s.thresholdAmber:
		return LevelLow
	case score < s.thresholdRed:
		return LevelAmber
	default:
		return LevelRed
	}
}

// strictlyIncreasingTail reports whether the last n entries of history exist
// and are strictly increasing.
func strictlyIncreasingTail(history []float64, n int) bool {
	if len(history) < n {
		return false
	}
	tail := history[len(history)-n:]
	for i := 1; i < len(tail); i++ {
		if tail[i] <= tail[i-1] {
			return false
		}
	}
	return true
}
