package sage

import "time"

// Weights for combining behavioral signals into a style score.
const (
	styleEngagementWeight = 0.6
	styleCompletionWeight = 0.4
)

// AnalyzeBehavioralPatterns aggregates behavioral observations into one
// score per VARK style. Score combines mean engagement and mean completion
// for the matching channel; confidence saturates toward 1 as the observation
// count grows and is 0 for channels with no observations.
//
// Malformed indicators (unknown content type) are skipped; out-of-range
// engagement and completion values are clamped. An empty input yields four
// zero scores with zero confidence, which callers must treat as
// "insufficient data" rather than a valid detection.
func AnalyzeBehavioralPatterns(cfg EngineConfig, indicators []BehavioralIndicator) []LearningStyleScore {
	return analyzeBehavioralPatternsAt(cfg, indicators, time.Now().UTC())
}

func analyzeBehavioralPatternsAt(cfg EngineConfig, indicators []BehavioralIndicator, now time.Time) []LearningStyleScore {
	type channel struct {
		count         int
		engagementSum float64
		completionSum float64
	}

	channels := make(map[ContentType]*channel, 4)
	for _, t := range ValidContentTypes() {
		channels[t] = &channel{}
	}

	for _, ind := range indicators {
		ch, ok := channels[ind.ContentType]
		if !ok {
			continue
		}
		ch.count++
		ch.engagementSum += clamp(ind.EngagementLevel, 0, 100)
		ch.completionSum += clamp(ind.CompletionRate, 0, 100)
	}

	scores := make([]LearningStyleScore, 0, 4)
	for _, t := range ValidContentTypes() {
		ch := channels[t]
		score := LearningStyleScore{Type: t, LastUpdated: now}
		if ch.count > 0 {
			n := float64(ch.count)
			meanEngagement := ch.engagementSum / n
			meanCompletion := ch.completionSum / n
			score.Score = clamp(styleEngagementWeight*meanEngagement+styleCompletionWeight*meanCompletion, 0, 100)
			score.Confidence = n / (n + cfg.StyleConfidenceHalfLife)
		}
		scores = append(scores, score)
	}

	return scores
}

// DominantStyle returns the style with the highest confidence-weighted score.
// The boolean is false when no channel has any observations.
func DominantStyle(scores []LearningStyleScore) (ContentType, bool) {
	var (
		best    ContentType
		bestVal float64
		found   bool
	)
	for _, s := range scores {
		v := effectiveStyleScore(s)
		if v > 0 && (!found || v > bestVal) {
			best = s.Type
			bestVal = v
			found = true
		}
	}
	return best, found
}

// IsMultimodal reports whether the learner spreads across styles: true when
// the second-highest confidence-weighted score is within MultimodalMargin of
// the highest. Weighting by confidence keeps a thinly observed channel from
// masquerading as a second modality.
func IsMultimodal(cfg EngineConfig, scores []LearningStyleScore) bool {
	var top, second float64
	for _, s := range scores {
		v := effectiveStyleScore(s)
		if v > top {
			second = top
			top = v
		} else if v > second {
			second = v
		}
	}
	if top == 0 || second == 0 {
		return false
	}
	return top-second <= cfg.MultimodalMargin
}

func effectiveStyleScore(s LearningStyleScore) float64 {
	return s.Score * s.Confidence
}

// ApplyStyleAnalysis returns a copy of the profile with styles, dominant
// style and multimodality recomputed from the given indicators. The input
// profile is not mutated.
func ApplyStyleAnalysis(cfg EngineConfig, profile LearningProfile, indicators []BehavioralIndicator, now time.Time) LearningProfile {
	scores := analyzeBehavioralPatternsAt(cfg, indicators, now)

	profile.Styles = scores
	profile.IsMultimodal = IsMultimodal(cfg, scores)
	profile.UpdatedAt = now

	if dominant, ok := DominantStyle(scores); ok {
		profile.DominantStyle = dominant
	} else {
		profile.DominantStyle = ""
		profile.IsMultimodal = false
	}

	return profile
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
