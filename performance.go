package sage

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// PerformanceInput bundles the learner data consumed by performance
// analytics. Cards are optional; when present their review history drives
// the retention metric.
type PerformanceInput struct {
	Sessions   []LearningSession
	Profile    LearningProfile
	Indicators []BehavioralIndicator
	Cards      []SpacedRepetitionCard
}

// PerformanceMetrics are interpretable 0-100 measures of how a learner is
// actually doing.
type PerformanceMetrics struct {
	Accuracy    float64 `json:"accuracy"`
	Speed       float64 `json:"speed"`
	Consistency float64 `json:"consistency"`
	Retention   float64 `json:"retention"`
	Engagement  float64 `json:"engagement"`

	// SessionsUsed and SessionsSkipped report input quality: malformed
	// sessions are skipped, not fatal.
	SessionsUsed    int `json:"sessions_used"`
	SessionsSkipped int `json:"sessions_skipped"`
}

// AnalyzePerformance aggregates sessions, indicators and optional review
// history into the five performance metrics. It is deterministic: identical
// inputs produce identical outputs. Empty inputs yield zeroed metrics, never
// a division error.
func AnalyzePerformance(cfg EngineConfig, in PerformanceInput) PerformanceMetrics {
	var m PerformanceMetrics

	var (
		totalQuestions int
		totalCorrect   int
		totalItems     int
		totalMinutes   float64
		accuracies     []float64
	)

	for _, s := range in.Sessions {
		if s.Duration < 0 || s.CorrectAnswers > s.TotalQuestions || s.CorrectAnswers < 0 {
			m.SessionsSkipped++
			continue
		}
		m.SessionsUsed++
		totalQuestions += s.TotalQuestions
		totalCorrect += s.CorrectAnswers
		totalItems += s.ItemsCompleted
		totalMinutes += s.Duration
		if s.TotalQuestions > 0 {
			accuracies = append(accuracies, s.Accuracy()*100)
		}
	}

	if totalQuestions > 0 {
		m.Accuracy = 100 * float64(totalCorrect) / float64(totalQuestions)
	}

	// Speed: the baseline pace scores 50, twice the baseline saturates at 100.
	if totalMinutes > 0 && cfg.BaselineItemsPerMinute > 0 {
		itemsPerMinute := float64(totalItems) / totalMinutes
		m.Speed = clamp(50*itemsPerMinute/cfg.BaselineItemsPerMinute, 0, 100)
	}

	m.Consistency = consistencyScore(accuracies)
	m.Retention = retentionScore(in.Cards, m.Accuracy)
	m.Engagement = engagementScore(in.Indicators)

	return m
}

// consistencyScore maps the coefficient of variation of per-session accuracy
// onto 0-100, floored at 0. A single scored session is perfectly consistent.
func consistencyScore(accuracies []float64) float64 {
	if len(accuracies) == 0 {
		return 0
	}
	if len(accuracies) == 1 {
		return 100
	}

	mean, err := stats.Mean(accuracies)
	if err != nil || mean == 0 {
		return 0
	}
	stdev, err := stats.StandardDeviation(accuracies)
	if err != nil {
		return 0
	}
	return clamp(100*(1-stdev/mean), 0, 100)
}

// retentionScore is the pass rate across card reviews when review history is
// available, and mirrors accuracy otherwise.
func retentionScore(cards []SpacedRepetitionCard, accuracy float64) float64 {
	var reviews, correct int
	for _, c := range cards {
		for _, r := range c.Reviews {
			reviews++
			if r.WasCorrect {
				correct++
			}
		}
	}
	if reviews == 0 {
		return accuracy
	}
	return 100 * float64(correct) / float64(reviews)
}

func engagementScore(indicators []BehavioralIndicator) float64 {
	if len(indicators) == 0 {
		return 0
	}
	var sum float64
	for _, ind := range indicators {
		sum += clamp(ind.EngagementLevel, 0, 100)
	}
	return sum / float64(len(indicators))
}

// TrendLabel classifies the direction of a learner's accuracy over time.
type TrendLabel string

const (
	TrendImproving    TrendLabel = "improving"
	TrendPlateauing   TrendLabel = "plateauing"
	TrendDeclining    TrendLabel = "declining"
	TrendInsufficient TrendLabel = "insufficient_data"
)

// LearningPatterns describes trends and descriptive habits mined from a
// learner's session history.
type LearningPatterns struct {
	Trend TrendLabel `json:"trend"`
	// Slope is the fitted per-session change in accuracy (0-1 scale).
	Slope float64 `json:"slope"`

	// PreferredHour is the hour of day (0-23) with the highest mean
	// accuracy, or -1 when no scored sessions exist.
	PreferredHour int `json:"preferred_hour"`

	// OptimalSessionMinutes labels the session-length bucket with the
	// highest mean accuracy, empty when unknown.
	OptimalSessionMinutes string `json:"optimal_session_minutes,omitempty"`
}

// Session length buckets for pattern detection, in minutes.
var sessionLengthBuckets = []struct {
	label string
	max   float64
}{
	{"under 10", 10},
	{"10-20", 20},
	{"20-40", 40},
	{"over 40", -1},
}

// DetectLearningPatterns labels the accuracy trend via a linear fit over the
// session sequence and derives the learner's best-performing time of day and
// session length. At least three scored sessions are needed for a trend.
func DetectLearningPatterns(cfg EngineConfig, sessions []LearningSession, profile LearningProfile) LearningPatterns {
	patterns := LearningPatterns{Trend: TrendInsufficient, PreferredHour: -1}

	series := make(stats.Series, 0, len(sessions))
	hourAcc := make(map[int][]float64)
	bucketAcc := make(map[string][]float64)

	for _, s := range sessions {
		if s.TotalQuestions <= 0 {
			continue
		}
		acc := s.Accuracy()
		series = append(series, stats.Coordinate{X: float64(len(series)), Y: acc})
		hour := s.StartTime.Hour()
		hourAcc[hour] = append(hourAcc[hour], acc)
		bucketAcc[sessionLengthBucket(s.Duration)] = append(bucketAcc[sessionLengthBucket(s.Duration)], acc)
	}

	if len(series) >= 3 {
		fitted, err := stats.LinearRegression(series)
		if err == nil && len(fitted) >= 2 {
			first, last := fitted[0], fitted[len(fitted)-1]
			patterns.Slope = (last.Y - first.Y) / (last.X - first.X)
			switch {
			case patterns.Slope > cfg.TrendSlope:
				patterns.Trend = TrendImproving
			case patterns.Slope < -cfg.TrendSlope:
				patterns.Trend = TrendDeclining
			default:
				patterns.Trend = TrendPlateauing
			}
		}
	}

	patterns.PreferredHour = bestGroup(hourAcc, -1)
	if label, ok := bestLabel(bucketAcc); ok {
		patterns.OptimalSessionMinutes = label
	}

	return patterns
}

func sessionLengthBucket(minutes float64) string {
	for _, b := range sessionLengthBuckets {
		if b.max < 0 || minutes < b.max {
			return b.label
		}
	}
	return sessionLengthBuckets[len(sessionLengthBuckets)-1].label
}

func bestGroup(groups map[int][]float64, none int) int {
	best, bestMean := none, -1.0
	for key, values := range groups {
		mean, err := stats.Mean(values)
		if err != nil {
			continue
		}
		if mean > bestMean || (mean == bestMean && key < best) {
			best, bestMean = key, mean
		}
	}
	return best
}

func bestLabel(groups map[string][]float64) (string, bool) {
	best, bestMean, found := "", -1.0, false
	for key, values := range groups {
		mean, err := stats.Mean(values)
		if err != nil {
			continue
		}
		if mean > bestMean || (mean == bestMean && key < best) {
			best, bestMean, found = key, mean, true
		}
	}
	return best, found
}

// Anomaly flags a session that deviates sharply from the learner's norm.
// Flags are informational; nothing is discarded.
type Anomaly struct {
	SessionID  string  `json:"session_id"`
	Metric     string  `json:"metric"` // "duration" or "accuracy"
	Value      float64 `json:"value"`
	Mean       float64 `json:"mean"`
	Deviations float64 `json:"deviations"`
	Reason     string  `json:"reason"`
}

// DetectAnomalies flags sessions whose duration or accuracy lies more than
// AnomalyStdDevs standard deviations from the learner's mean. These tend to
// indicate disengagement, guessing, or data-entry errors. Fewer than three
// sessions yield no flags.
func DetectAnomalies(cfg EngineConfig, sessions []LearningSession, profile LearningProfile) []Anomaly {
	if len(sessions) < 3 {
		return nil
	}

	durations := make([]float64, 0, len(sessions))
	accuracies := make([]float64, 0, len(sessions))
	for _, s := range sessions {
		durations = append(durations, s.Duration)
		if s.TotalQuestions > 0 {
			accuracies = append(accuracies, s.Accuracy())
		}
	}

	var anomalies []Anomaly
	durMean, durStdev := meanStdev(durations)
	accMean, accStdev := meanStdev(accuracies)

	for _, s := range sessions {
		if durStdev > 0 {
			dev := (s.Duration - durMean) / durStdev
			if abs(dev) > cfg.AnomalyStdDevs {
				anomalies = append(anomalies, Anomaly{
					SessionID:  s.ID,
					Metric:     "duration",
					Value:      s.Duration,
					Mean:       durMean,
					Deviations: dev,
					Reason:     fmt.Sprintf("duration %.1f min is %.1f standard deviations from mean %.1f", s.Duration, dev, durMean),
				})
			}
		}
		if accStdev > 0 && s.TotalQuestions > 0 {
			acc := s.Accuracy()
			dev := (acc - accMean) / accStdev
			if abs(dev) > cfg.AnomalyStdDevs {
				anomalies = append(anomalies, Anomaly{
					SessionID:  s.ID,
					Metric:     "accuracy",
					Value:      acc,
					Mean:       accMean,
					Deviations: dev,
					Reason:     fmt.Sprintf("accuracy %.0f%% is %.1f standard deviations from mean %.0f%%", acc*100, dev, accMean*100),
				})
			}
		}
	}

	return anomalies
}

func meanStdev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0, 0
	}
	stdev, err := stats.StandardDeviation(values)
	if err != nil {
		return mean, 0
	}
	return mean, stdev
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// PageSummary reports aggregates for one processed page of sessions.
type PageSummary struct {
	Page     int     `json:"page"`
	Sessions int     `json:"sessions"`
	Accuracy float64 `json:"accuracy"` // 0-100
}

// PaginatedAnalytics is the result of streaming analytics over session pages.
type PaginatedAnalytics struct {
	Metrics  PerformanceMetrics `json:"metrics"`
	Pages    []PageSummary      `json:"pages"`
	PageSize int                `json:"page_size"`
}

// ProcessPaginatedAnalytics computes performance metrics over sessions in
// bounded-size batches. Each page is folded into running aggregates, so peak
// memory stays O(pageSize) and the total cost stays O(n) regardless of the
// page size chosen.
func ProcessPaginatedAnalytics(cfg EngineConfig, in PerformanceInput, pageSize int) PaginatedAnalytics {
	if pageSize <= 0 {
		pageSize = 100
	}

	result := PaginatedAnalytics{PageSize: pageSize, Pages: []PageSummary{}}

	var agg performanceAggregate
	sessions := in.Sessions
	for page := 0; len(sessions) > 0; page++ {
		n := pageSize
		if n > len(sessions) {
			n = len(sessions)
		}
		batch := sessions[:n]
		sessions = sessions[n:]

		pageCorrect, pageQuestions := 0, 0
		for _, s := range batch {
			if s.Duration < 0 || s.CorrectAnswers > s.TotalQuestions || s.CorrectAnswers < 0 {
				agg.skipped++
				continue
			}
			agg.fold(s)
			pageCorrect += s.CorrectAnswers
			pageQuestions += s.TotalQuestions
		}

		summary := PageSummary{Page: page + 1, Sessions: n}
		if pageQuestions > 0 {
			summary.Accuracy = 100 * float64(pageCorrect) / float64(pageQuestions)
		}
		result.Pages = append(result.Pages, summary)
	}

	result.Metrics = agg.metrics(cfg, in)
	return result
}

// performanceAggregate accumulates streaming session statistics. Variance is
// tracked via sum and sum-of-squares so pages can be merged in O(1) memory.
type performanceAggregate struct {
	used, skipped int
	questions     int
	correct       int
	items         int
	minutes       float64
	accCount      int
	accSum, accSq float64
}

func (a *performanceAggregate) fold(s LearningSession) {
	a.used++
	a.questions += s.TotalQuestions
	a.correct += s.CorrectAnswers
	a.items += s.ItemsCompleted
	a.minutes += s.Duration
	if s.TotalQuestions > 0 {
		acc := s.Accuracy() * 100
		a.accCount++
		a.accSum += acc
		a.accSq += acc * acc
	}
}

func (a *performanceAggregate) metrics(cfg EngineConfig, in PerformanceInput) PerformanceMetrics {
	m := PerformanceMetrics{SessionsUsed: a.used, SessionsSkipped: a.skipped}

	if a.questions > 0 {
		m.Accuracy = 100 * float64(a.correct) / float64(a.questions)
	}
	if a.minutes > 0 && cfg.BaselineItemsPerMinute > 0 {
		m.Speed = clamp(50*(float64(a.items)/a.minutes)/cfg.BaselineItemsPerMinute, 0, 100)
	}
	if a.accCount > 0 {
		mean := a.accSum / float64(a.accCount)
		if a.accCount == 1 {
			m.Consistency = 100
		} else if mean > 0 {
			variance := a.accSq/float64(a.accCount) - mean*mean
			if variance < 0 {
				variance = 0
			}
			stdev := math.Sqrt(variance)
			m.Consistency = clamp(100*(1-stdev/mean), 0, 100)
		}
	}
	m.Retention = retentionScore(in.Cards, m.Accuracy)
	m.Engagement = engagementScore(in.Indicators)

	return m
}
