package sage

import "math"

// StyleVector projects a profile's style mixture onto a fixed-order vector
// (visual, auditory, reading, kinesthetic) of confidence-weighted scores.
func StyleVector(profile LearningProfile) []float64 {
	v := make([]float64, 4)
	for i, t := range ValidContentTypes() {
		if s, ok := profile.StyleScore(t); ok {
			v[i] = effectiveStyleScore(s)
		}
	}
	return v
}

// ContentStyleVector projects the styles a piece of content can serve onto
// the same fixed-order vector: 1 where a variant exists, 0 elsewhere.
// Content with no variants serves no channel.
func ContentStyleVector(content AdaptiveContent) []float64 {
	v := make([]float64, 4)
	for i, t := range ValidContentTypes() {
		if content.HasVariant(t) {
			v[i] = 1
		}
	}
	return v
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TagOverlap computes the Jaccard overlap of two tag sets.
// Returns a value between 0 and 1, where 1 means identical sets.
func TagOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[tag] = struct{}{}
	}

	var intersection int
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, tag := range b {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := set[tag]; ok {
			intersection++
		} else {
			union++
		}
	}

	return float64(intersection) / float64(union)
}

// Content similarity weights. Tags carry the most signal; topic and concept
// equality catch untagged content; difficulty closeness breaks near-ties.
const (
	similarityTagWeight        = 0.4
	similarityTopicWeight      = 0.3
	similarityConceptWeight    = 0.2
	similarityDifficultyWeight = 0.1
)

// ContentSimilarity measures how redundant two pieces of content are,
// from 0 (unrelated) to 1 (interchangeable).
func ContentSimilarity(a, b AdaptiveContent) float64 {
	sim := similarityTagWeight * TagOverlap(a.Metadata.Tags, b.Metadata.Tags)
	if a.Topic != "" && a.Topic == b.Topic {
		sim += similarityTopicWeight
	}
	if a.Concept != "" && a.Concept == b.Concept {
		sim += similarityConceptWeight
	}
	gap := math.Abs(a.Difficulty-b.Difficulty) / (DifficultyMax - DifficultyMin)
	sim += similarityDifficultyWeight * (1 - clamp(gap, 0, 1))
	return clamp(sim, 0, 1)
}

// ContentDiversity is the complement of similarity: 1 means the pair covers
// disjoint ground.
func ContentDiversity(a, b AdaptiveContent) float64 {
	return 1 - ContentSimilarity(a, b)
}

// SetDiversity is the mean pairwise diversity of a content set. Sets of
// fewer than two items are maximally diverse by definition.
func SetDiversity(items []AdaptiveContent) float64 {
	if len(items) < 2 {
		return 1
	}

	var sum float64
	var pairs int
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			sum += ContentDiversity(items[i], items[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}
