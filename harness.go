package sage

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// AccuracyFloors are the per-component accuracy floors the validation
// harness asserts. They are part of the engine contract, injected rather
// than hard-coded so alternative deployments can tighten them.
type AccuracyFloors struct {
	StyleDetection float64 `json:"style_detection"`
	Repetition     float64 `json:"repetition"`
	Calibration    float64 `json:"calibration"`
	Analytics      float64 `json:"analytics"`
	Recommendation float64 `json:"recommendation"`
}

// DefaultAccuracyFloors returns the contractual floors.
func DefaultAccuracyFloors() AccuracyFloors {
	return AccuracyFloors{
		StyleDetection: 0.85,
		Repetition:     0.90,
		Calibration:    0.80,
		Analytics:      0.85,
		Recommendation: 0.75,
	}
}

// HarnessConfig configures a validation run.
type HarnessConfig struct {
	Floors AccuracyFloors
	// Trials is the number of synthetic cases evaluated per component.
	Trials int
	// Size scales each synthetic case (indicators per learner, sessions per
	// content item, content pool size).
	Size int
	// Seed makes runs reproducible.
	Seed int64
}

// DefaultHarnessConfig returns a moderate-size deterministic run.
func DefaultHarnessConfig() HarnessConfig {
	return HarnessConfig{
		Floors: DefaultAccuracyFloors(),
		Trials: 200,
		Size:   50,
		Seed:   1,
	}
}

// ComponentResult is the harness outcome for one engine component.
type ComponentResult struct {
	Component string  `json:"component"`
	Accuracy  float64 `json:"accuracy"`
	Floor     float64 `json:"floor"`
	Passed    bool    `json:"passed"`
	Trials    int     `json:"trials"`
}

// HarnessReport is the outcome of a full validation run.
type HarnessReport struct {
	Results []ComponentResult `json:"results"`
	Passed  bool              `json:"passed"`
}

// RunHarness evaluates all five engine components against synthetic data
// with known ground truth and reports per-component accuracy against the
// configured floors.
func RunHarness(cfg EngineConfig, h HarnessConfig) HarnessReport {
	if h.Trials <= 0 {
		h.Trials = DefaultHarnessConfig().Trials
	}
	if h.Size <= 0 {
		h.Size = DefaultHarnessConfig().Size
	}

	rng := rand.New(rand.NewSource(h.Seed))
	report := HarnessReport{Passed: true}

	evaluations := []struct {
		component string
		floor     float64
		run       func(*rand.Rand) float64
	}{
		{"style_detection", h.Floors.StyleDetection, func(r *rand.Rand) float64 { return evaluateStyleDetection(cfg, r, h.Trials, h.Size) }},
		{"repetition", h.Floors.Repetition, func(r *rand.Rand) float64 { return evaluateRepetition(cfg, r, h.Trials) }},
		{"calibration", h.Floors.Calibration, func(r *rand.Rand) float64 { return evaluateCalibration(cfg, r, h.Trials, h.Size) }},
		{"analytics", h.Floors.Analytics, func(r *rand.Rand) float64 { return evaluateAnalytics(cfg, r, h.Trials, h.Size) }},
		{"recommendation", h.Floors.Recommendation, func(r *rand.Rand) float64 { return evaluateRecommendation(cfg, r, h.Trials, h.Size) }},
	}

	for _, eval := range evaluations {
		accuracy := eval.run(rng)
		result := ComponentResult{
			Component: eval.component,
			Accuracy:  accuracy,
			Floor:     eval.floor,
			Passed:    accuracy >= eval.floor,
			Trials:    h.Trials,
		}
		if !result.Passed {
			report.Passed = false
		}
		report.Results = append(report.Results, result)
	}

	return report
}

var harnessEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// evaluateStyleDetection plants a dominant style per learner, generates
// indicators skewed toward it, and checks the detector recovers it.
func evaluateStyleDetection(cfg EngineConfig, rng *rand.Rand, trials, size int) float64 {
	styles := ValidContentTypes()
	correct := 0

	for t := 0; t < trials; t++ {
		planted := styles[rng.Intn(len(styles))]
		indicators := SyntheticIndicators(rng, planted, size)

		scores := analyzeBehavioralPatternsAt(cfg, indicators, harnessEpoch)
		if dominant, ok := DominantStyle(scores); ok && dominant == planted {
			correct++
		}
	}

	return float64(correct) / float64(trials)
}

// SyntheticIndicators generates a behavioral stream skewed toward the
// planted style: roughly 70% of observations hit the planted channel with
// high engagement, the rest spread across channels with mediocre signals.
func SyntheticIndicators(rng *rand.Rand, planted ContentType, n int) []BehavioralIndicator {
	styles := ValidContentTypes()
	indicators := make([]BehavioralIndicator, 0, n)

	for i := 0; i < n; i++ {
		ind := BehavioralIndicator{
			Action:    "content_interaction",
			TimeSpent: 30 + rng.Float64()*300,
			Timestamp: harnessEpoch.Add(time.Duration(i) * time.Hour),
		}
		if rng.Float64() < 0.7 {
			ind.ContentType = planted
			ind.EngagementLevel = 70 + rng.Float64()*30
			ind.CompletionRate = 70 + rng.Float64()*30
		} else {
			ind.ContentType = styles[rng.Intn(len(styles))]
			ind.EngagementLevel = 20 + rng.Float64()*30
			ind.CompletionRate = 20 + rng.Float64()*30
		}
		indicators = append(indicators, ind)
	}

	return indicators
}

// evaluateRepetition runs random review events through the scheduler and
// checks every scheduling invariant holds on the result.
func evaluateRepetition(cfg EngineConfig, rng *rand.Rand, trials int) float64 {
	correct := 0

	for t := 0; t < trials; t++ {
		card := SyntheticCard(rng, cfg)
		quality := rng.Intn(QualityMax + 1)

		updated, err := CalculateNextReview(cfg, card, ReviewInput{
			Quality:      quality,
			ResponseTime: rng.Float64() * 30,
			Now:          harnessEpoch,
		})
		if err != nil {
			continue
		}
		if reviewInvariantsHold(cfg, card, updated, quality) {
			correct++
		}
	}

	return float64(correct) / float64(trials)
}

// SyntheticCard generates an internally consistent card: intervals match
// the repetition stage the card claims to be in.
func SyntheticCard(rng *rand.Rand, cfg EngineConfig) SpacedRepetitionCard {
	reps := rng.Intn(9)
	interval := IntervalMin
	switch {
	case reps == 2:
		interval = cfg.SecondStepInterval
	case reps > 2:
		interval = cfg.SecondStepInterval + rng.Intn(60)
	}

	return SpacedRepetitionCard{
		ID:             fmt.Sprintf("card-%d", rng.Int63()),
		ContentID:      fmt.Sprintf("content-%d", rng.Intn(1000)),
		UserID:         "synthetic-learner",
		Difficulty:     DifficultyMin + rng.Float64()*(DifficultyMax-DifficultyMin),
		EaseFactor:     EaseFactorMin + rng.Float64()*(EaseFactorMax-EaseFactorMin),
		Interval:       interval,
		Repetitions:    reps,
		LastReviewDate: harnessEpoch.AddDate(0, 0, -interval),
		NextReviewDate: harnessEpoch,
	}
}

func reviewInvariantsHold(cfg EngineConfig, before, after SpacedRepetitionCard, quality int) bool {
	if after.EaseFactor < EaseFactorMin || after.EaseFactor > EaseFactorMax {
		return false
	}
	if quality < QualityPassing {
		return after.Repetitions == 0 && after.Interval == IntervalMin
	}
	if after.Repetitions != before.Repetitions+1 {
		return false
	}
	if after.Interval < before.Interval && before.Repetitions >= 2 {
		return false
	}
	if len(after.Reviews) != len(before.Reviews)+1 {
		return false
	}
	return !after.NextReviewDate.Before(after.LastReviewDate)
}

// evaluateCalibration plants a true difficulty offset from the authored
// value, generates a mastery rate that encodes it, and checks calibration
// lands within one difficulty point of the planted value.
func evaluateCalibration(cfg EngineConfig, rng *rand.Rand, trials, size int) float64 {
	correct := 0

	for t := 0; t < trials; t++ {
		authored := 2 + rng.Float64()*6
		shift := (rng.Float64() - 0.5) * 2 // planted offset in [-1, 1]
		planted := authored + shift

		// Invert the mastery adjustment so sessions encode the shift.
		masteryRate := clamp(0.5-shift/(2*calibrationSuccessWeight), 0, 1)
		sessions := syntheticMasterySessions(rng, cfg, masteryRate, size)

		content := AdaptiveContent{
			ID:         fmt.Sprintf("content-%d", t),
			Difficulty: authored,
			Concept:    "synthetic",
		}
		profile := LearningProfile{UserID: "synthetic-learner", AdaptationLevel: 50}

		result := CalibrateDifficulty(cfg, content, sessions, profile)
		if math.Abs(result.CalibratedDifficulty-planted) <= 1.0 {
			correct++
		}
	}

	return float64(correct) / float64(trials)
}

func syntheticMasterySessions(rng *rand.Rand, cfg EngineConfig, masteryRate float64, n int) []LearningSession {
	sessions := make([]LearningSession, 0, n)
	mastered := int(math.Round(masteryRate * float64(n)))

	for i := 0; i < n; i++ {
		s := LearningSession{
			ID:             fmt.Sprintf("session-%d", i),
			UserID:         "synthetic-learner",
			ContentID:      "synthetic",
			StartTime:      harnessEpoch.Add(time.Duration(i) * time.Hour),
			Duration:       10 + rng.Float64()*10,
			Completed:      true,
			TotalQuestions: 10,
		}
		if i < mastered {
			s.CorrectAnswers = 9 // above mastery threshold
		} else {
			s.CorrectAnswers = 5 // below mastery threshold
		}
		sessions = append(sessions, s)
	}

	return sessions
}

// evaluateAnalytics checks computed accuracy against known totals and that
// paginated processing agrees with the single-pass path.
func evaluateAnalytics(cfg EngineConfig, rng *rand.Rand, trials, size int) float64 {
	correct := 0

	for t := 0; t < trials; t++ {
		var totalCorrect, totalQuestions int
		sessions := make([]LearningSession, 0, size)
		for i := 0; i < size; i++ {
			questions := 5 + rng.Intn(15)
			answers := rng.Intn(questions + 1)
			totalCorrect += answers
			totalQuestions += questions
			sessions = append(sessions, LearningSession{
				ID:             fmt.Sprintf("session-%d-%d", t, i),
				UserID:         "synthetic-learner",
				StartTime:      harnessEpoch.Add(time.Duration(i) * time.Hour),
				Duration:       5 + rng.Float64()*30,
				TotalQuestions: questions,
				CorrectAnswers: answers,
				ItemsCompleted: 1 + rng.Intn(10),
			})
		}

		expected := 100 * float64(totalCorrect) / float64(totalQuestions)
		in := PerformanceInput{Sessions: sessions}
		metrics := AnalyzePerformance(cfg, in)
		paged := ProcessPaginatedAnalytics(cfg, in, 7)

		if math.Abs(metrics.Accuracy-expected) < 1e-9 &&
			math.Abs(paged.Metrics.Accuracy-metrics.Accuracy) < 1e-9 &&
			math.Abs(paged.Metrics.Consistency-metrics.Consistency) < 1e-6 {
			correct++
		}
	}

	return float64(correct) / float64(trials)
}

// evaluateRecommendation builds a pool where a known subset matches the
// learner's planted topic and style, then measures what fraction of the
// returned set is relevant to the request.
func evaluateRecommendation(cfg EngineConfig, rng *rand.Rand, trials, size int) float64 {
	styles := ValidContentTypes()
	topics := []string{"algebra", "geometry", "history", "biology", "grammar"}

	var relevanceSum float64
	scoredTrials := 0

	for t := 0; t < trials; t++ {
		plantedStyle := styles[rng.Intn(len(styles))]
		plantedTopic := topics[rng.Intn(len(topics))]

		pool := SyntheticContentPool(rng, plantedStyle, plantedTopic, size)
		profile := syntheticStyledProfile(plantedStyle)
		rctx := RecommendationContext{
			UserID: profile.UserID,
			Preferences: RecommendationPreferences{
				Topics:              []string{plantedTopic},
				PreferredDifficulty: 5,
			},
			Constraints: RecommendationConstraints{
				MaxRecommendations: 10,
				MinDiversityScore:  0.2,
			},
		}

		recommended, err := GenerateRecommendations(cfg, pool, profile, rctx)
		if err != nil || len(recommended) == 0 {
			continue
		}

		relevant := 0
		for _, content := range recommended {
			if content.Topic == plantedTopic || content.HasVariant(plantedStyle) {
				relevant++
			}
		}
		relevanceSum += float64(relevant) / float64(len(recommended))
		scoredTrials++
	}

	if scoredTrials == 0 {
		return 0
	}
	return relevanceSum / float64(scoredTrials)
}

// SyntheticContentPool generates a pool where roughly half the items match
// the planted topic or style and the rest are decoys.
func SyntheticContentPool(rng *rand.Rand, plantedStyle ContentType, plantedTopic string, size int) []AdaptiveContent {
	styles := ValidContentTypes()
	pool := make([]AdaptiveContent, 0, size)

	for i := 0; i < size; i++ {
		content := AdaptiveContent{
			ID:         fmt.Sprintf("content-%04d", i),
			Difficulty: 1 + rng.Float64()*9,
			Concept:    fmt.Sprintf("concept-%d", i),
			Metadata: ContentMetadata{
				CognitiveLoad:       rng.Float64() * 10,
				EstimatedEngagement: rng.Float64() * 10,
				SuccessRate:         40 + rng.Float64()*50,
				EstimatedDuration:   5 + rng.Float64()*25,
			},
		}
		if i%2 == 0 {
			content.Topic = plantedTopic
			content.Variants = []ContentVariant{{Style: plantedStyle, Format: "standard"}}
			content.Metadata.Tags = []string{plantedTopic, fmt.Sprintf("tag-%d", i%7)}
		} else {
			content.Topic = fmt.Sprintf("other-%d", i%5)
			content.Variants = []ContentVariant{{Style: styles[rng.Intn(len(styles))], Format: "standard"}}
			content.Metadata.Tags = []string{content.Topic, fmt.Sprintf("tag-%d", i%11)}
		}
		pool = append(pool, content)
	}

	return pool
}

func syntheticStyledProfile(style ContentType) LearningProfile {
	profile := LearningProfile{
		UserID:          "synthetic-learner",
		AdaptationLevel: 50,
		CreatedAt:       harnessEpoch,
		UpdatedAt:       harnessEpoch,
	}
	for _, t := range ValidContentTypes() {
		score := LearningStyleScore{Type: t, Score: 30, Confidence: 0.6, LastUpdated: harnessEpoch}
		if t == style {
			score.Score = 85
			score.Confidence = 0.9
		}
		profile.Styles = append(profile.Styles, score)
	}
	profile.DominantStyle = style
	return profile
}
