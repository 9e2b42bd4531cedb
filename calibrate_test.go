package sage_test

import (
	"math"
	"testing"

	"github.com/hyperengineering/sage"
)

func masterySessions(n int, questions, correct int, duration float64) []sage.LearningSession {
	out := make([]sage.LearningSession, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, sage.LearningSession{
			ID:             "s",
			TotalQuestions: questions,
			CorrectAnswers: correct,
			Duration:       duration,
		})
	}
	return out
}

func TestCalibrateDifficulty_NoSessions(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	content := sage.AdaptiveContent{ID: "c1", Difficulty: 6}

	result := sage.CalibrateDifficulty(cfg, content, nil, sage.LearningProfile{})

	if result.CalibratedDifficulty != 6 {
		t.Errorf("CalibratedDifficulty = %v, want authored 6", result.CalibratedDifficulty)
	}
	if result.ConfidenceLevel != 0 {
		t.Errorf("ConfidenceLevel = %v, want 0", result.ConfidenceLevel)
	}
	if result.SessionsUsed != 0 {
		t.Errorf("SessionsUsed = %d, want 0", result.SessionsUsed)
	}
}

func TestCalibrateDifficulty_HighMasteryLowersDifficulty(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	content := sage.AdaptiveContent{
		ID:         "c1",
		Difficulty: 5,
		Metadata:   sage.ContentMetadata{EstimatedDuration: 10},
	}
	profile := sage.LearningProfile{AdaptationLevel: 50}
	// All sessions mastered, duration exactly on estimate: only the mastery
	// factor fires, full strength, -2 points.
	sessions := masterySessions(10, 10, 10, 10)

	result := sage.CalibrateDifficulty(cfg, content, sessions, profile)

	if math.Abs(result.CalibratedDifficulty-3) > 1e-9 {
		t.Errorf("CalibratedDifficulty = %v, want 3", result.CalibratedDifficulty)
	}
	wantConf := 10.0 / (10.0 + cfg.CalibrationHalfLife)
	if math.Abs(result.ConfidenceLevel-wantConf) > 1e-9 {
		t.Errorf("ConfidenceLevel = %v, want %v", result.ConfidenceLevel, wantConf)
	}

	var masteryFactor *sage.CalibrationFactor
	for i := range result.Factors {
		if result.Factors[i].Name == "mastery_rate" {
			masteryFactor = &result.Factors[i]
		}
	}
	if masteryFactor == nil {
		t.Fatal("mastery_rate factor missing")
	}
	if masteryFactor.Value != 1.0 {
		t.Errorf("mastery_rate value = %v, want 1.0", masteryFactor.Value)
	}
	if math.Abs(masteryFactor.Adjustment-(-2)) > 1e-9 {
		t.Errorf("mastery_rate adjustment = %v, want -2", masteryFactor.Adjustment)
	}
}

func TestCalibrateDifficulty_LowMasteryRaisesDifficulty(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	content := sage.AdaptiveContent{
		ID:         "c1",
		Difficulty: 5,
		Metadata:   sage.ContentMetadata{EstimatedDuration: 10},
	}
	sessions := masterySessions(10, 10, 2, 10) // 20% accuracy, no session mastered

	result := sage.CalibrateDifficulty(cfg, content, sessions, sage.LearningProfile{AdaptationLevel: 50})

	if result.CalibratedDifficulty <= 5 {
		t.Errorf("CalibratedDifficulty = %v, want above authored 5", result.CalibratedDifficulty)
	}
}

func TestCalibrateDifficulty_SlowSessionsRaiseDifficulty(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	content := sage.AdaptiveContent{
		ID:         "c1",
		Difficulty: 5,
		Metadata:   sage.ContentMetadata{EstimatedDuration: 10},
	}
	// Unscored sessions running at double the estimate: only duration and
	// adaptation factors fire; deviation caps at +1 so +1 difficulty point.
	sessions := masterySessions(5, 0, 0, 20)

	result := sage.CalibrateDifficulty(cfg, content, sessions, sage.LearningProfile{AdaptationLevel: 50})

	if math.Abs(result.CalibratedDifficulty-6) > 1e-9 {
		t.Errorf("CalibratedDifficulty = %v, want 6", result.CalibratedDifficulty)
	}
}

func TestCalibrateDifficulty_SkipsNegativeDurations(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	content := sage.AdaptiveContent{ID: "c1", Difficulty: 5}
	sessions := append(masterySessions(4, 10, 10, 10), sage.LearningSession{Duration: -1})

	result := sage.CalibrateDifficulty(cfg, content, sessions, sage.LearningProfile{AdaptationLevel: 50})

	if result.SessionsUsed != 4 {
		t.Errorf("SessionsUsed = %d, want 4", result.SessionsUsed)
	}
	if result.SessionsSkipped != 1 {
		t.Errorf("SessionsSkipped = %d, want 1", result.SessionsSkipped)
	}
}

func TestCalibrateDifficulty_StaysInBounds(t *testing.T) {
	cfg := sage.DefaultEngineConfig()

	low := sage.AdaptiveContent{ID: "low", Difficulty: 1}
	result := sage.CalibrateDifficulty(cfg, low, masterySessions(20, 10, 10, 1), sage.LearningProfile{AdaptationLevel: 100})
	if result.CalibratedDifficulty < sage.DifficultyMin {
		t.Errorf("CalibratedDifficulty = %v, below floor", result.CalibratedDifficulty)
	}

	high := sage.AdaptiveContent{ID: "high", Difficulty: 10, Metadata: sage.ContentMetadata{EstimatedDuration: 1}}
	result = sage.CalibrateDifficulty(cfg, high, masterySessions(20, 10, 0, 100), sage.LearningProfile{AdaptationLevel: 0})
	if result.CalibratedDifficulty > sage.DifficultyMax {
		t.Errorf("CalibratedDifficulty = %v, above ceiling", result.CalibratedDifficulty)
	}
}

func TestAdaptDifficultyRealTime(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	cfg.AdaptationWindow = 3

	struggling := masterySessions(3, 10, 3, 10) // 30% accuracy, below band
	coasting := masterySessions(3, 10, 10, 10)  // 100% accuracy, above band
	inBand := masterySessions(3, 10, 7, 10)     // 70%, inside band

	tests := []struct {
		name     string
		current  float64
		sessions []sage.LearningSession
		want     float64
	}{
		{"all below band lowers by one", 5, struggling, 4},
		{"all above band raises by one", 5, coasting, 6},
		{"in band unchanged", 5, inBand, 5},
		{"window not filled", 5, struggling[:2], 5},
		{"floor holds", sage.DifficultyMin, struggling, sage.DifficultyMin},
		{"ceiling holds", sage.DifficultyMax, coasting, sage.DifficultyMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sage.AdaptDifficultyRealTime(cfg, tt.current, tt.sessions)
			if got != tt.want {
				t.Errorf("AdaptDifficultyRealTime(%v) = %v, want %v", tt.current, got, tt.want)
			}
		})
	}
}

func TestAdaptDifficultyRealTime_OutlierBlocksNudge(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	cfg.AdaptationWindow = 3

	// Two struggling sessions plus one in-band session: no full-window
	// agreement, so no change.
	sessions := append(masterySessions(2, 10, 3, 10), sage.LearningSession{TotalQuestions: 10, CorrectAnswers: 7, Duration: 10})

	if got := sage.AdaptDifficultyRealTime(cfg, 5, sessions); got != 5 {
		t.Errorf("AdaptDifficultyRealTime = %v, want 5 (outlier blocks nudge)", got)
	}
}

func TestAdaptDifficultyRealTime_UnscoredSessionCarriesNoEvidence(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	cfg.AdaptationWindow = 3

	sessions := append(masterySessions(2, 10, 10, 10), sage.LearningSession{TotalQuestions: 0, Duration: 10})

	if got := sage.AdaptDifficultyRealTime(cfg, 5, sessions); got != 5 {
		t.Errorf("AdaptDifficultyRealTime = %v, want 5 (unscored session blocks nudge)", got)
	}
}
