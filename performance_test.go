package sage_test

import (
	"math"
	"testing"
	"time"

	"github.com/hyperengineering/sage"
)

func TestAnalyzePerformance_Empty(t *testing.T) {
	m := sage.AnalyzePerformance(sage.DefaultEngineConfig(), sage.PerformanceInput{})
	if m.Accuracy != 0 || m.Speed != 0 || m.Consistency != 0 || m.Retention != 0 || m.Engagement != 0 {
		t.Errorf("empty input metrics = %+v, want zeros", m)
	}
}

func TestAnalyzePerformance_Accuracy(t *testing.T) {
	in := sage.PerformanceInput{
		Sessions: []sage.LearningSession{
			{TotalQuestions: 10, CorrectAnswers: 8, Duration: 10},
			{TotalQuestions: 10, CorrectAnswers: 6, Duration: 10},
		},
	}
	m := sage.AnalyzePerformance(sage.DefaultEngineConfig(), in)
	if math.Abs(m.Accuracy-70) > 1e-9 {
		t.Errorf("Accuracy = %v, want 70", m.Accuracy)
	}
	if m.SessionsUsed != 2 {
		t.Errorf("SessionsUsed = %d, want 2", m.SessionsUsed)
	}
}

func TestAnalyzePerformance_SkipsMalformedSessions(t *testing.T) {
	in := sage.PerformanceInput{
		Sessions: []sage.LearningSession{
			{TotalQuestions: 10, CorrectAnswers: 8, Duration: 10},
			{TotalQuestions: 5, CorrectAnswers: 9, Duration: 10}, // correct > total
			{TotalQuestions: 10, CorrectAnswers: -1, Duration: 10},
			{TotalQuestions: 10, CorrectAnswers: 5, Duration: -3},
		},
	}
	m := sage.AnalyzePerformance(sage.DefaultEngineConfig(), in)
	if m.SessionsUsed != 1 {
		t.Errorf("SessionsUsed = %d, want 1", m.SessionsUsed)
	}
	if m.SessionsSkipped != 3 {
		t.Errorf("SessionsSkipped = %d, want 3", m.SessionsSkipped)
	}
	if math.Abs(m.Accuracy-80) > 1e-9 {
		t.Errorf("Accuracy = %v, want 80 from the single usable session", m.Accuracy)
	}
}

func TestAnalyzePerformance_SpeedBaseline(t *testing.T) {
	cfg := sage.DefaultEngineConfig() // baseline 1 item/minute scores 50
	in := sage.PerformanceInput{
		Sessions: []sage.LearningSession{
			{ItemsCompleted: 10, Duration: 10},
		},
	}
	m := sage.AnalyzePerformance(cfg, in)
	if math.Abs(m.Speed-50) > 1e-9 {
		t.Errorf("Speed = %v, want 50 at baseline pace", m.Speed)
	}

	in.Sessions[0].ItemsCompleted = 40 // 4x baseline saturates at 100
	m = sage.AnalyzePerformance(cfg, in)
	if m.Speed != 100 {
		t.Errorf("Speed = %v, want saturated 100", m.Speed)
	}
}

func TestAnalyzePerformance_Consistency(t *testing.T) {
	cfg := sage.DefaultEngineConfig()

	single := sage.PerformanceInput{
		Sessions: []sage.LearningSession{{TotalQuestions: 10, CorrectAnswers: 5, Duration: 1}},
	}
	if m := sage.AnalyzePerformance(cfg, single); m.Consistency != 100 {
		t.Errorf("single scored session Consistency = %v, want 100", m.Consistency)
	}

	steady := sage.PerformanceInput{
		Sessions: []sage.LearningSession{
			{TotalQuestions: 10, CorrectAnswers: 8, Duration: 1},
			{TotalQuestions: 10, CorrectAnswers: 8, Duration: 1},
			{TotalQuestions: 10, CorrectAnswers: 8, Duration: 1},
		},
	}
	if m := sage.AnalyzePerformance(cfg, steady); m.Consistency != 100 {
		t.Errorf("identical accuracies Consistency = %v, want 100", m.Consistency)
	}

	erratic := sage.PerformanceInput{
		Sessions: []sage.LearningSession{
			{TotalQuestions: 10, CorrectAnswers: 10, Duration: 1},
			{TotalQuestions: 10, CorrectAnswers: 0, Duration: 1},
			{TotalQuestions: 10, CorrectAnswers: 10, Duration: 1},
			{TotalQuestions: 10, CorrectAnswers: 0, Duration: 1},
		},
	}
	m := sage.AnalyzePerformance(cfg, erratic)
	if m.Consistency >= 50 {
		t.Errorf("erratic accuracies Consistency = %v, want well below steady", m.Consistency)
	}
}

func TestAnalyzePerformance_RetentionFromCards(t *testing.T) {
	in := sage.PerformanceInput{
		Sessions: []sage.LearningSession{{TotalQuestions: 10, CorrectAnswers: 5, Duration: 1}},
		Cards: []sage.SpacedRepetitionCard{
			{Reviews: []sage.ReviewRecord{
				{WasCorrect: true}, {WasCorrect: true}, {WasCorrect: true}, {WasCorrect: false},
			}},
		},
	}
	m := sage.AnalyzePerformance(sage.DefaultEngineConfig(), in)
	if math.Abs(m.Retention-75) > 1e-9 {
		t.Errorf("Retention = %v, want 75 from review history", m.Retention)
	}
}

func TestAnalyzePerformance_RetentionFallsBackToAccuracy(t *testing.T) {
	in := sage.PerformanceInput{
		Sessions: []sage.LearningSession{{TotalQuestions: 10, CorrectAnswers: 6, Duration: 1}},
	}
	m := sage.AnalyzePerformance(sage.DefaultEngineConfig(), in)
	if m.Retention != m.Accuracy {
		t.Errorf("Retention = %v, want to mirror Accuracy %v with no cards", m.Retention, m.Accuracy)
	}
}

func TestDetectLearningPatterns_Trends(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	improving := make([]sage.LearningSession, 0, 5)
	for i := 0; i < 5; i++ {
		improving = append(improving, sage.LearningSession{
			TotalQuestions: 10,
			CorrectAnswers: 5 + i, // 50% up to 90%
			StartTime:      base.AddDate(0, 0, i),
			Duration:       15,
		})
	}

	p := sage.DetectLearningPatterns(cfg, improving, sage.LearningProfile{})
	if p.Trend != sage.TrendImproving {
		t.Errorf("Trend = %q, want improving", p.Trend)
	}
	if p.Slope <= 0 {
		t.Errorf("Slope = %v, want positive", p.Slope)
	}

	declining := make([]sage.LearningSession, 0, 5)
	for i := 0; i < 5; i++ {
		declining = append(declining, sage.LearningSession{
			TotalQuestions: 10,
			CorrectAnswers: 9 - i,
			StartTime:      base.AddDate(0, 0, i),
			Duration:       15,
		})
	}
	p = sage.DetectLearningPatterns(cfg, declining, sage.LearningProfile{})
	if p.Trend != sage.TrendDeclining {
		t.Errorf("Trend = %q, want declining", p.Trend)
	}

	flat := []sage.LearningSession{
		{TotalQuestions: 10, CorrectAnswers: 7, StartTime: base, Duration: 15},
		{TotalQuestions: 10, CorrectAnswers: 7, StartTime: base.AddDate(0, 0, 1), Duration: 15},
		{TotalQuestions: 10, CorrectAnswers: 7, StartTime: base.AddDate(0, 0, 2), Duration: 15},
	}
	p = sage.DetectLearningPatterns(cfg, flat, sage.LearningProfile{})
	if p.Trend != sage.TrendPlateauing {
		t.Errorf("Trend = %q, want plateauing", p.Trend)
	}
}

func TestDetectLearningPatterns_InsufficientData(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	sessions := []sage.LearningSession{
		{TotalQuestions: 10, CorrectAnswers: 5, Duration: 10},
		{TotalQuestions: 10, CorrectAnswers: 6, Duration: 10},
	}

	p := sage.DetectLearningPatterns(cfg, sessions, sage.LearningProfile{})
	if p.Trend != sage.TrendInsufficient {
		t.Errorf("Trend = %q, want insufficient_data with two sessions", p.Trend)
	}
}

func TestDetectLearningPatterns_PreferredHourAndLength(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	morning := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 4, 1, 21, 0, 0, 0, time.UTC)

	sessions := []sage.LearningSession{
		{TotalQuestions: 10, CorrectAnswers: 9, StartTime: morning, Duration: 15},
		{TotalQuestions: 10, CorrectAnswers: 9, StartTime: morning.AddDate(0, 0, 1), Duration: 15},
		{TotalQuestions: 10, CorrectAnswers: 3, StartTime: evening, Duration: 45},
	}

	p := sage.DetectLearningPatterns(cfg, sessions, sage.LearningProfile{})
	if p.PreferredHour != 9 {
		t.Errorf("PreferredHour = %d, want 9", p.PreferredHour)
	}
	if p.OptimalSessionMinutes != "10-20" {
		t.Errorf("OptimalSessionMinutes = %q, want 10-20", p.OptimalSessionMinutes)
	}
}

func TestDetectLearningPatterns_NoScoredSessions(t *testing.T) {
	p := sage.DetectLearningPatterns(sage.DefaultEngineConfig(), []sage.LearningSession{
		{TotalQuestions: 0, Duration: 10},
	}, sage.LearningProfile{})
	if p.PreferredHour != -1 {
		t.Errorf("PreferredHour = %d, want -1 with no scored sessions", p.PreferredHour)
	}
}

func TestDetectAnomalies_TooFewSessions(t *testing.T) {
	sessions := []sage.LearningSession{
		{Duration: 10}, {Duration: 200},
	}
	if got := sage.DetectAnomalies(sage.DefaultEngineConfig(), sessions, sage.LearningProfile{}); got != nil {
		t.Errorf("DetectAnomalies = %v, want nil below three sessions", got)
	}
}

func TestDetectAnomalies_FlagsDurationOutlier(t *testing.T) {
	cfg := sage.DefaultEngineConfig()

	sessions := make([]sage.LearningSession, 0, 10)
	for i := 0; i < 9; i++ {
		sessions = append(sessions, sage.LearningSession{
			ID:             "normal",
			Duration:       10,
			TotalQuestions: 10,
			CorrectAnswers: 7,
		})
	}
	sessions = append(sessions, sage.LearningSession{
		ID:             "marathon",
		Duration:       200,
		TotalQuestions: 10,
		CorrectAnswers: 7,
	})

	anomalies := sage.DetectAnomalies(cfg, sessions, sage.LearningProfile{})
	if len(anomalies) != 1 {
		t.Fatalf("len(anomalies) = %d, want 1", len(anomalies))
	}
	a := anomalies[0]
	if a.SessionID != "marathon" || a.Metric != "duration" {
		t.Errorf("anomaly = %+v, want marathon/duration", a)
	}
	if a.Deviations <= cfg.AnomalyStdDevs {
		t.Errorf("Deviations = %v, want above threshold %v", a.Deviations, cfg.AnomalyStdDevs)
	}
}

func TestDetectAnomalies_UniformSessionsClean(t *testing.T) {
	sessions := []sage.LearningSession{
		{Duration: 10, TotalQuestions: 10, CorrectAnswers: 7},
		{Duration: 10, TotalQuestions: 10, CorrectAnswers: 7},
		{Duration: 10, TotalQuestions: 10, CorrectAnswers: 7},
	}
	if got := sage.DetectAnomalies(sage.DefaultEngineConfig(), sessions, sage.LearningProfile{}); len(got) != 0 {
		t.Errorf("DetectAnomalies = %v, want none for uniform sessions", got)
	}
}

func TestProcessPaginatedAnalytics_MatchesUnpaginated(t *testing.T) {
	cfg := sage.DefaultEngineConfig()
	in := sage.PerformanceInput{
		Sessions: []sage.LearningSession{
			{TotalQuestions: 10, CorrectAnswers: 8, ItemsCompleted: 10, Duration: 10},
			{TotalQuestions: 10, CorrectAnswers: 6, ItemsCompleted: 8, Duration: 12},
			{TotalQuestions: 10, CorrectAnswers: 9, ItemsCompleted: 12, Duration: 9},
			{TotalQuestions: 5, CorrectAnswers: 9, Duration: 10}, // malformed
			{TotalQuestions: 10, CorrectAnswers: 7, ItemsCompleted: 9, Duration: 11},
		},
		Indicators: []sage.BehavioralIndicator{
			{ContentType: sage.ContentVisual, EngagementLevel: 80},
		},
	}

	whole := sage.AnalyzePerformance(cfg, in)
	paged := sage.ProcessPaginatedAnalytics(cfg, in, 2)

	if math.Abs(paged.Metrics.Accuracy-whole.Accuracy) > 1e-9 {
		t.Errorf("paged Accuracy = %v, want %v", paged.Metrics.Accuracy, whole.Accuracy)
	}
	if math.Abs(paged.Metrics.Speed-whole.Speed) > 1e-9 {
		t.Errorf("paged Speed = %v, want %v", paged.Metrics.Speed, whole.Speed)
	}
	if math.Abs(paged.Metrics.Consistency-whole.Consistency) > 1e-6 {
		t.Errorf("paged Consistency = %v, want %v", paged.Metrics.Consistency, whole.Consistency)
	}
	if paged.Metrics.Engagement != whole.Engagement {
		t.Errorf("paged Engagement = %v, want %v", paged.Metrics.Engagement, whole.Engagement)
	}
	if paged.Metrics.SessionsUsed != whole.SessionsUsed || paged.Metrics.SessionsSkipped != whole.SessionsSkipped {
		t.Errorf("paged used/skipped = %d/%d, want %d/%d",
			paged.Metrics.SessionsUsed, paged.Metrics.SessionsSkipped, whole.SessionsUsed, whole.SessionsSkipped)
	}

	if len(paged.Pages) != 3 {
		t.Errorf("len(Pages) = %d, want 3 pages of size 2", len(paged.Pages))
	}
}

func TestProcessPaginatedAnalytics_DefaultPageSize(t *testing.T) {
	result := sage.ProcessPaginatedAnalytics(sage.DefaultEngineConfig(), sage.PerformanceInput{
		Sessions: []sage.LearningSession{{TotalQuestions: 10, CorrectAnswers: 5, Duration: 1}},
	}, 0)
	if result.PageSize != 100 {
		t.Errorf("PageSize = %d, want default 100", result.PageSize)
	}
}
