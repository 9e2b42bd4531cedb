package sage_test

import (
	"math"
	"testing"
	"time"

	"github.com/hyperengineering/sage"
)

func indicatorsFor(style sage.ContentType, n int, engagement, completion float64) []sage.BehavioralIndicator {
	out := make([]sage.BehavioralIndicator, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, sage.BehavioralIndicator{
			Action:          "content_interaction",
			ContentType:     style,
			EngagementLevel: engagement,
			CompletionRate:  completion,
			TimeSpent:       60,
			Timestamp:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func TestAnalyzeBehavioralPatterns_PlantedStyleWins(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	indicators := append(
		indicatorsFor(sage.ContentVisual, 8, 90, 95),
		indicatorsFor(sage.ContentAuditory, 2, 30, 40)...,
	)

	scores := sage.AnalyzeBehavioralPatterns(cfg, indicators)
	if len(scores) != 4 {
		t.Fatalf("expected 4 style scores, got %d", len(scores))
	}

	dominant, ok := sage.DominantStyle(scores)
	if !ok {
		t.Fatal("expected a dominant style")
	}
	if dominant != sage.ContentVisual {
		t.Errorf("dominant = %q, want visual", dominant)
	}
}

func TestAnalyzeBehavioralPatterns_ScoreWeights(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	// engagement 80, completion 60: score = 0.6*80 + 0.4*60 = 72
	scores := sage.AnalyzeBehavioralPatterns(cfg, indicatorsFor(sage.ContentReading, 4, 80, 60))

	var reading sage.LearningStyleScore
	for _, s := range scores {
		if s.Type == sage.ContentReading {
			reading = s
		}
	}
	if math.Abs(reading.Score-72) > 1e-9 {
		t.Errorf("reading score = %v, want 72", reading.Score)
	}
	// confidence = n / (n + halfLife) = 4 / 7
	wantConf := 4.0 / (4.0 + cfg.StyleConfidenceHalfLife)
	if math.Abs(reading.Confidence-wantConf) > 1e-9 {
		t.Errorf("reading confidence = %v, want %v", reading.Confidence, wantConf)
	}
}

func TestAnalyzeBehavioralPatterns_EmptyInput(t *testing.T) {
	scores := sage.AnalyzeBehavioralPatterns(sage.DefaultEngineConfig(), nil)
	if len(scores) != 4 {
		t.Fatalf("expected 4 style scores, got %d", len(scores))
	}
	for _, s := range scores {
		if s.Score != 0 || s.Confidence != 0 {
			t.Errorf("style %q: score=%v confidence=%v, want zeros", s.Type, s.Score, s.Confidence)
		}
	}

	if _, ok := sage.DominantStyle(scores); ok {
		t.Error("DominantStyle on empty input should report no detection")
	}
}

func TestAnalyzeBehavioralPatterns_SkipsUnknownChannel(t *testing.T) {
	indicators := []sage.BehavioralIndicator{
		{ContentType: "olfactory", EngagementLevel: 100, CompletionRate: 100},
	}
	scores := sage.AnalyzeBehavioralPatterns(sage.DefaultEngineConfig(), indicators)
	for _, s := range scores {
		if s.Score != 0 {
			t.Errorf("unknown channel leaked into style %q: score %v", s.Type, s.Score)
		}
	}
}

func TestAnalyzeBehavioralPatterns_ClampsOutOfRange(t *testing.T) {
	indicators := []sage.BehavioralIndicator{
		{ContentType: sage.ContentVisual, EngagementLevel: 500, CompletionRate: -50},
	}
	scores := sage.AnalyzeBehavioralPatterns(sage.DefaultEngineConfig(), indicators)
	for _, s := range scores {
		if s.Type != sage.ContentVisual {
			continue
		}
		// engagement clamps to 100, completion to 0: 0.6*100 + 0.4*0 = 60
		if math.Abs(s.Score-60) > 1e-9 {
			t.Errorf("clamped score = %v, want 60", s.Score)
		}
	}
}

func TestIsMultimodal(t *testing.T) {
	cfg := sage.DefaultEngineConfig()

	tests := []struct {
		name   string
		scores []sage.LearningStyleScore
		want   bool
	}{
		{
			"close top two",
			[]sage.LearningStyleScore{
				{Type: sage.ContentVisual, Score: 80, Confidence: 1},
				{Type: sage.ContentAuditory, Score: 75, Confidence: 1},
			},
			true,
		},
		{
			"clear dominant",
			[]sage.LearningStyleScore{
				{Type: sage.ContentVisual, Score: 90, Confidence: 1},
				{Type: sage.ContentAuditory, Score: 30, Confidence: 1},
			},
			false,
		},
		{
			"thin second channel discounted by confidence",
			[]sage.LearningStyleScore{
				{Type: sage.ContentVisual, Score: 80, Confidence: 1},
				{Type: sage.ContentAuditory, Score: 80, Confidence: 0.1},
			},
			false,
		},
		{"no observations", []sage.LearningStyleScore{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sage.IsMultimodal(cfg, tt.scores); got != tt.want {
				t.Errorf("IsMultimodal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyStyleAnalysis_DoesNotMutateInput(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	original := sage.LearningProfile{UserID: "learner-1", AdaptationLevel: 50}

	updated := sage.ApplyStyleAnalysis(cfg, original, indicatorsFor(sage.ContentVisual, 5, 90, 90), now)

	if original.DominantStyle != "" || len(original.Styles) != 0 {
		t.Error("input profile was mutated")
	}
	if updated.DominantStyle != sage.ContentVisual {
		t.Errorf("updated dominant = %q, want visual", updated.DominantStyle)
	}
	if !updated.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, now)
	}
}

func TestApplyStyleAnalysis_NoData_ClearsDominant(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	profile := sage.LearningProfile{
		UserID:        "learner-1",
		DominantStyle: sage.ContentVisual,
		IsMultimodal:  true,
	}

	updated := sage.ApplyStyleAnalysis(cfg, profile, nil, time.Now().UTC())
	if updated.DominantStyle != "" {
		t.Errorf("dominant = %q, want empty with no indicators", updated.DominantStyle)
	}
	if updated.IsMultimodal {
		t.Error("IsMultimodal should be false with no indicators")
	}
}
