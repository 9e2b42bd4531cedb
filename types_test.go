package sage_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hyperengineering/sage"
)

func TestContentType_IsValid(t *testing.T) {
	for _, ct := range sage.ValidContentTypes() {
		if !ct.IsValid() {
			t.Errorf("ContentType(%q).IsValid() = false, want true", ct)
		}
	}
}

func TestContentType_InvalidString(t *testing.T) {
	invalid := sage.ContentType("olfactory")
	if invalid.IsValid() {
		t.Error("ContentType(\"olfactory\").IsValid() = true, want false")
	}
}

func TestValidContentTypes_ReturnsAll4(t *testing.T) {
	types := sage.ValidContentTypes()
	if len(types) != 4 {
		t.Errorf("len(ValidContentTypes()) = %d, want 4", len(types))
	}
}

func TestLearningSession_Accuracy(t *testing.T) {
	tests := []struct {
		name      string
		questions int
		correct   int
		want      float64
	}{
		{"perfect", 10, 10, 1.0},
		{"half", 10, 5, 0.5},
		{"none correct", 10, 0, 0.0},
		{"no questions", 0, 0, 0.0},
		{"negative questions", -1, 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sage.LearningSession{TotalQuestions: tt.questions, CorrectAnswers: tt.correct}
			if got := s.Accuracy(); got != tt.want {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCard_Stage(t *testing.T) {
	tests := []struct {
		name string
		card sage.SpacedRepetitionCard
		want sage.CardStage
	}{
		{"new card", sage.SpacedRepetitionCard{}, sage.StageNew},
		{"one repetition", sage.SpacedRepetitionCard{Repetitions: 1}, sage.StageLearning},
		{"two repetitions", sage.SpacedRepetitionCard{Repetitions: 2}, sage.StageLearning},
		{"mature", sage.SpacedRepetitionCard{Repetitions: 3}, sage.StageMature},
		{"lapsed after failure", sage.SpacedRepetitionCard{Repetitions: 0, Reviews: []sage.ReviewRecord{{Quality: 1}}}, sage.StageLapsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.card.Stage(); got != tt.want {
				t.Errorf("Stage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCard_IsDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	due := sage.SpacedRepetitionCard{NextReviewDate: now.Add(-time.Hour)}
	if !due.IsDue(now) {
		t.Error("card with past NextReviewDate should be due")
	}

	exact := sage.SpacedRepetitionCard{NextReviewDate: now}
	if !exact.IsDue(now) {
		t.Error("card due exactly now should be due")
	}

	future := sage.SpacedRepetitionCard{NextReviewDate: now.Add(time.Hour)}
	if future.IsDue(now) {
		t.Error("card with future NextReviewDate should not be due")
	}
}

func TestAdaptiveContent_HasVariant(t *testing.T) {
	content := sage.AdaptiveContent{
		Variants: []sage.ContentVariant{
			{Style: sage.ContentVisual, Format: "video"},
			{Style: sage.ContentReading, Format: "article"},
		},
	}

	if !content.HasVariant(sage.ContentVisual) {
		t.Error("HasVariant(visual) = false, want true")
	}
	if content.HasVariant(sage.ContentKinesthetic) {
		t.Error("HasVariant(kinesthetic) = true, want false")
	}
}

func TestLearningProfile_StyleScore(t *testing.T) {
	profile := sage.LearningProfile{
		Styles: []sage.LearningStyleScore{
			{Type: sage.ContentVisual, Score: 80, Confidence: 0.9},
		},
	}

	score, ok := profile.StyleScore(sage.ContentVisual)
	if !ok {
		t.Fatal("StyleScore(visual) not found")
	}
	if score.Score != 80 {
		t.Errorf("StyleScore(visual).Score = %v, want 80", score.Score)
	}

	if _, ok := profile.StyleScore(sage.ContentAuditory); ok {
		t.Error("StyleScore(auditory) found, want missing")
	}
}

func TestLearningSession_JSONMarshal_SnakeCase(t *testing.T) {
	session := sage.LearningSession{
		ID:             "s-1",
		UserID:         "learner-1",
		ContentID:      "c-1",
		TotalQuestions: 10,
		CorrectAnswers: 7,
	}

	data, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}

	for _, key := range []string{"user_id", "content_id", "total_questions", "correct_answers", "engagement_metrics"} {
		if _, ok := m[key]; !ok {
			t.Errorf("marshaled session missing key %q", key)
		}
	}
}
