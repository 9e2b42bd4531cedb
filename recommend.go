package sage

import (
	"math"
	"sort"
)

// Affinity weights for scoring content against a learner.
const (
	affinityStyleWeight      = 0.35
	affinityTopicWeight      = 0.30
	affinityDifficultyWeight = 0.25
	affinityPriorWeight      = 0.10

	// redundancyWeight scales how hard similarity to already-selected items
	// penalizes a candidate during greedy selection.
	redundancyWeight = 0.5
)

// ScoredContent pairs a content item with its affinity to a learner.
type ScoredContent struct {
	Content  AdaptiveContent
	Affinity float64
}

// RecommendationResult holds recommended content and the session refs
// assigned to each item.
type RecommendationResult struct {
	Content     []AdaptiveContent `json:"content"`
	SessionRefs map[string]string `json:"session_refs"` // ref -> content ID
}

// Selector abstracts recommendation selection strategies.
// Enables future swap to submodular or learned selection policies.
type Selector interface {
	Select(candidates []ScoredContent, constraints RecommendationConstraints) []AdaptiveContent
}

// GenerateRecommendations ranks a content pool for a learner and returns a
// bounded, diverse recommendation set.
//
// The pipeline hard-filters exclusions and unmet prerequisites, narrows the
// pool to a calibrated-difficulty band and preference matches to keep the
// scoring set small, scores the remainder by affinity to the profile, and
// greedily selects items maximizing affinity minus a redundancy penalty
// while the running set's pairwise diversity stays at or above the
// constraint. Work stays around O(n log n + k·n) for pool size n and result
// size k.
func GenerateRecommendations(cfg EngineConfig, pool []AdaptiveContent, profile LearningProfile, rctx RecommendationContext) ([]AdaptiveContent, error) {
	max := rctx.Constraints.MaxRecommendations
	if max <= 0 {
		return nil, &ValidationError{Field: "MaxRecommendations", Message: "must be positive"}
	}

	eligible := filterEligible(pool, rctx)
	if len(eligible) == 0 {
		return []AdaptiveContent{}, nil
	}

	narrowed := narrowPool(cfg, eligible, profile, rctx, max)
	scored := scorePool(narrowed, profile, rctx)

	selector := &GreedyDiversitySelector{}
	return selector.Select(scored, rctx.Constraints), nil
}

// filterEligible applies the hard constraints: excluded IDs, prerequisite
// coverage, and the learner's stated duration ceiling.
func filterEligible(pool []AdaptiveContent, rctx RecommendationContext) []AdaptiveContent {
	excluded := make(map[string]struct{}, len(rctx.Constraints.ExcludeContentIDs))
	for _, id := range rctx.Constraints.ExcludeContentIDs {
		excluded[id] = struct{}{}
	}
	completed := make(map[string]struct{}, len(rctx.CompletedContent))
	for _, id := range rctx.CompletedContent {
		completed[id] = struct{}{}
	}

	eligible := make([]AdaptiveContent, 0, len(pool))
	for _, content := range pool {
		if _, skip := excluded[content.ID]; skip {
			continue
		}
		if rctx.Constraints.RequirePrerequisites && !prerequisitesMet(content, completed) {
			continue
		}
		if rctx.Preferences.MaxDuration > 0 && content.Metadata.EstimatedDuration > rctx.Preferences.MaxDuration {
			continue
		}
		eligible = append(eligible, content)
	}
	return eligible
}

func prerequisitesMet(content AdaptiveContent, completed map[string]struct{}) bool {
	for _, prereq := range content.Prerequisites {
		if _, ok := completed[prereq]; !ok {
			return false
		}
	}
	return true
}

// narrowPool shrinks the scoring set to a difficulty band around the
// learner's target, then to preference matches, backing off whenever a
// narrowing step would leave too few candidates to fill the result.
func narrowPool(cfg EngineConfig, eligible []AdaptiveContent, profile LearningProfile, rctx RecommendationContext, max int) []AdaptiveContent {
	target := targetDifficulty(profile, rctx)

	banded := make([]AdaptiveContent, 0, len(eligible))
	for _, content := range eligible {
		if math.Abs(content.Difficulty-target) <= cfg.DifficultyBand {
			banded = append(banded, content)
		}
	}
	if len(banded) < max {
		banded = eligible
	}

	if len(rctx.Preferences.Topics) == 0 && len(rctx.Preferences.ContentTypes) == 0 {
		return banded
	}

	preferred := make([]AdaptiveContent, 0, len(banded))
	for _, content := range banded {
		if matchesPreferences(content, rctx.Preferences) {
			preferred = append(preferred, content)
		}
	}
	if len(preferred) < max {
		return banded
	}
	return preferred
}

func matchesPreferences(content AdaptiveContent, prefs RecommendationPreferences) bool {
	if len(prefs.Topics) > 0 {
		for _, topic := range prefs.Topics {
			if content.Topic == topic {
				return true
			}
			for _, tag := range content.Metadata.Tags {
				if tag == topic {
					return true
				}
			}
		}
	}
	if len(prefs.ContentTypes) > 0 {
		for _, t := range prefs.ContentTypes {
			if content.HasVariant(t) {
				return true
			}
		}
	}
	return false
}

// targetDifficulty is the preferred difficulty when stated, otherwise a
// level proportional to the learner's adaptation.
func targetDifficulty(profile LearningProfile, rctx RecommendationContext) float64 {
	if rctx.Preferences.PreferredDifficulty > 0 {
		return clamp(rctx.Preferences.PreferredDifficulty, DifficultyMin, DifficultyMax)
	}
	return DifficultyMin + (DifficultyMax-DifficultyMin)*clamp(profile.AdaptationLevel, 0, 100)/100
}

// scorePool computes affinity for every candidate: style-channel match,
// topic and goal overlap, difficulty closeness, and a small authored prior.
func scorePool(candidates []AdaptiveContent, profile LearningProfile, rctx RecommendationContext) []ScoredContent {
	target := targetDifficulty(profile, rctx)
	styleVec := StyleVector(profile)
	wants := append(append([]string{}, rctx.Preferences.Topics...), rctx.Preferences.LearningGoals...)

	scored := make([]ScoredContent, 0, len(candidates))
	for _, content := range candidates {
		styleMatch := CosineSimilarity(styleVec, ContentStyleVector(content))
		if styleMatch == 0 && profile.DominantStyle == "" {
			// No detected style yet: stay neutral rather than punishing
			// content for the learner's missing profile.
			styleMatch = 0.5
		}

		topicMatch := topicGoalOverlap(content, wants)
		difficultyMatch := 1 - clamp(math.Abs(content.Difficulty-target)/(DifficultyMax-DifficultyMin), 0, 1)
		prior := 0.5*clamp(content.Metadata.EstimatedEngagement/10, 0, 1) + 0.5*clamp(content.Metadata.SuccessRate/100, 0, 1)

		scored = append(scored, ScoredContent{
			Content: content,
			Affinity: affinityStyleWeight*styleMatch +
				affinityTopicWeight*topicMatch +
				affinityDifficultyWeight*difficultyMatch +
				affinityPriorWeight*prior,
		})
	}
	return scored
}

func topicGoalOverlap(content AdaptiveContent, wants []string) float64 {
	if len(wants) == 0 {
		return 0.5 // nothing stated, nothing to contradict
	}
	have := append([]string{content.Topic, content.Concept}, content.Metadata.Tags...)
	var matches int
	for _, want := range wants {
		for _, h := range have {
			if h != "" && h == want {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(len(wants))
}

// GreedyDiversitySelector selects items one at a time, maximizing affinity
// minus a redundancy penalty against the already-selected set, and stops
// when the next best candidate would drag pairwise diversity below the
// constraint.
type GreedyDiversitySelector struct{}

// Select implements Selector. Candidates are ranked by affinity descending
// (ties broken by content ID for determinism); each selection round scans
// the remaining candidates once, keeping work at O(k·n).
func (s *GreedyDiversitySelector) Select(candidates []ScoredContent, constraints RecommendationConstraints) []AdaptiveContent {
	selected := []AdaptiveContent{}
	if len(candidates) == 0 || constraints.MaxRecommendations <= 0 {
		return selected
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Affinity != candidates[j].Affinity {
			return candidates[i].Affinity > candidates[j].Affinity
		}
		return candidates[i].Content.ID < candidates[j].Content.ID
	})

	type tracked struct {
		ScoredContent
		divSum float64 // summed diversity against selected items
		maxSim float64 // highest similarity to any selected item
		taken  bool
	}
	pool := make([]tracked, len(candidates))
	for i, c := range candidates {
		pool[i] = tracked{ScoredContent: c}
	}

	take := func(idx int) {
		pool[idx].taken = true
		selected = append(selected, pool[idx].Content)
		for i := range pool {
			if pool[i].taken {
				continue
			}
			sim := ContentSimilarity(pool[i].Content, pool[idx].Content)
			pool[i].divSum += 1 - sim
			if sim > pool[i].maxSim {
				pool[i].maxSim = sim
			}
		}
	}

	// Highest affinity seeds the set.
	take(0)

	// pairDivSum tracks the summed pairwise diversity of the selected set so
	// the diversity constraint is checked incrementally.
	var pairDivSum float64
	for len(selected) < constraints.MaxRecommendations {
		bestIdx, bestMarginal := -1, math.Inf(-1)
		for i := range pool {
			if pool[i].taken {
				continue
			}
			newPairs := pairDivSum + pool[i].divSum
			pairCount := len(selected) * (len(selected) + 1) / 2
			if float64(pairCount) > 0 && newPairs/float64(pairCount) < constraints.MinDiversityScore {
				continue
			}
			marginal := pool[i].Affinity - redundancyWeight*pool[i].maxSim
			if marginal > bestMarginal {
				bestMarginal = marginal
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		pairDivSum += pool[bestIdx].divSum
		take(bestIdx)
	}

	return selected
}
