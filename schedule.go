package sage

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ReviewInput carries the outcome of a single review event.
type ReviewInput struct {
	Quality      int       `json:"quality"`       // 0-5
	ResponseTime float64   `json:"response_time"` // seconds
	Now          time.Time `json:"now"`
}

// CalculateNextReview applies a modified SM-2 update to a card and returns
// the updated copy. The input card is not mutated.
//
// Quality below 3 is a failure: repetitions reset to zero, the interval
// drops to one day and the ease factor takes a quality-dependent penalty,
// floored at EaseFactorMin. Quality 3 and above is a success: repetitions
// increment and the interval grows geometrically with the ease factor once
// the card is past its first two steps.
//
// The ease update coefficients deviate from textbook SM-2 deliberately;
// scheduling behavior was tuned against this exact formula.
func CalculateNextReview(cfg EngineConfig, card SpacedRepetitionCard, in ReviewInput) (SpacedRepetitionCard, error) {
	if in.Quality < QualityMin || in.Quality > QualityMax {
		return card, &ValidationError{
			Field:   "Quality",
			Message: fmt.Sprintf("must be between %d and %d, got %d", QualityMin, QualityMax, in.Quality),
			Err:     ErrInvalidQuality,
		}
	}
	if in.ResponseTime < 0 {
		return card, &ValidationError{Field: "ResponseTime", Message: "must be non-negative"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// One bad stored record must not poison the update.
	card.EaseFactor = clamp(card.EaseFactor, EaseFactorMin, EaseFactorMax)
	if card.EaseFactor == 0 {
		card.EaseFactor = EaseFactorDefault
	}
	if card.Interval < IntervalMin {
		card.Interval = IntervalMin
	}

	previousInterval := card.Interval
	quality := float64(in.Quality)

	if in.Quality < QualityPassing {
		card.Repetitions = 0
		card.Interval = IntervalMin
		card.EaseFactor = math.Max(EaseFactorMin, card.EaseFactor-0.8+0.28*quality-0.02*quality*quality)
	} else {
		card.Repetitions++
		switch {
		case card.Repetitions == 1:
			card.Interval = IntervalMin
		case card.Repetitions == 2:
			card.Interval = cfg.SecondStepInterval
		default:
			card.Interval = int(math.Round(float64(card.Interval) * card.EaseFactor))
		}
		missed := 5 - quality
		card.EaseFactor = clamp(card.EaseFactor+0.1-missed*(0.08+0.02*missed), EaseFactorMin, EaseFactorMax)
	}

	// Geometric growth never schedules past the horizon.
	if horizonDays := int(cfg.ScheduleHorizon.Hours() / 24); horizonDays >= IntervalMin && card.Interval > horizonDays {
		card.Interval = horizonDays
	}

	card.LastReviewDate = now
	card.NextReviewDate = now.AddDate(0, 0, card.Interval)

	card.Reviews = append(card.Reviews, ReviewRecord{
		ReviewDate:       now,
		Quality:          in.Quality,
		ResponseTime:     in.ResponseTime,
		PreviousInterval: previousInterval,
		NewInterval:      card.Interval,
		EaseFactor:       card.EaseFactor,
		WasCorrect:       in.Quality >= QualityPassing,
	})

	return card, nil
}

// RetentionBucket aggregates review outcomes for one grouping.
type RetentionBucket struct {
	Reviews int     `json:"reviews"`
	Correct int     `json:"correct"`
	Rate    float64 `json:"rate"` // 0-1
}

// RetentionReport summarizes recall success across a card collection.
type RetentionReport struct {
	TotalReviews  int                        `json:"total_reviews"`
	RetentionRate float64                    `json:"retention_rate"` // 0-1
	ByDifficulty  map[string]RetentionBucket `json:"by_difficulty"`
	ByInterval    map[string]RetentionBucket `json:"by_interval"`
}

// AnalyzeRetentionPatterns computes the aggregate retention rate across all
// reviews, grouped by card difficulty and by the interval the review was
// scheduled at. Cards with no reviews contribute nothing.
func AnalyzeRetentionPatterns(cards []SpacedRepetitionCard) RetentionReport {
	report := RetentionReport{
		ByDifficulty: make(map[string]RetentionBucket),
		ByInterval:   make(map[string]RetentionBucket),
	}

	var correct int
	for _, card := range cards {
		difficultyKey := difficultyBucket(card.Difficulty)
		for _, r := range card.Reviews {
			report.TotalReviews++
			if r.WasCorrect {
				correct++
			}
			addToBucket(report.ByDifficulty, difficultyKey, r.WasCorrect)
			addToBucket(report.ByInterval, intervalBucket(r.PreviousInterval), r.WasCorrect)
		}
	}

	if report.TotalReviews > 0 {
		report.RetentionRate = float64(correct) / float64(report.TotalReviews)
	}
	return report
}

func addToBucket(m map[string]RetentionBucket, key string, wasCorrect bool) {
	b := m[key]
	b.Reviews++
	if wasCorrect {
		b.Correct++
	}
	b.Rate = float64(b.Correct) / float64(b.Reviews)
	m[key] = b
}

func difficultyBucket(d float64) string {
	switch {
	case d <= 3:
		return "easy"
	case d <= 6:
		return "medium"
	default:
		return "hard"
	}
}

func intervalBucket(days int) string {
	switch {
	case days <= 1:
		return "1d"
	case days <= 7:
		return "2-7d"
	case days <= 30:
		return "8-30d"
	default:
		return "31d+"
	}
}

// ScheduledCard is one entry in a study schedule.
type ScheduledCard struct {
	Card             SpacedRepetitionCard `json:"card"`
	OverdueDays      float64              `json:"overdue_days"`
	EstimatedMinutes float64              `json:"estimated_minutes"`
}

// StudySchedule is an ordered, time-bounded set of due cards.
type StudySchedule struct {
	Cards            []ScheduledCard `json:"cards"`
	EstimatedMinutes float64         `json:"estimated_minutes"`
	MinutesAvailable float64         `json:"minutes_available"`
	DueCount         int             `json:"due_count"` // due cards before truncation
	GeneratedAt      time.Time       `json:"generated_at"`
}

// GenerateStudySchedule selects the cards due at the given time, most
// overdue first with lower ease breaking ties (harder items surface
// earlier), and truncates the list so the summed per-card estimates never
// exceed the minutes available. The per-card estimate starts from
// MinutesPerCard and shrinks as the learner's adaptation level grows.
func GenerateStudySchedule(cfg EngineConfig, cards []SpacedRepetitionCard, minutesAvailable float64, profile LearningProfile, now time.Time) StudySchedule {
	schedule := StudySchedule{
		Cards:            []ScheduledCard{},
		MinutesAvailable: minutesAvailable,
		GeneratedAt:      now,
	}
	if minutesAvailable <= 0 {
		return schedule
	}

	due := make([]ScheduledCard, 0, len(cards))
	perCard := estimateMinutesPerCard(cfg, profile)
	for _, card := range cards {
		if !card.IsDue(now) {
			continue
		}
		due = append(due, ScheduledCard{
			Card:             card,
			OverdueDays:      now.Sub(card.NextReviewDate).Hours() / 24,
			EstimatedMinutes: perCard,
		})
	}
	schedule.DueCount = len(due)

	sort.Slice(due, func(i, j int) bool {
		if due[i].OverdueDays != due[j].OverdueDays {
			return due[i].OverdueDays > due[j].OverdueDays
		}
		return due[i].Card.EaseFactor < due[j].Card.EaseFactor
	})

	var total float64
	for _, entry := range due {
		if total+entry.EstimatedMinutes > minutesAvailable {
			break
		}
		total += entry.EstimatedMinutes
		schedule.Cards = append(schedule.Cards, entry)
	}
	schedule.EstimatedMinutes = total

	return schedule
}

// estimateMinutesPerCard adjusts the default card estimate by learner pace.
// Adaptation level 0 reviews at 125% of the default, level 100 at 75%.
func estimateMinutesPerCard(cfg EngineConfig, profile LearningProfile) float64 {
	pace := 1.25 - 0.5*clamp(profile.AdaptationLevel, 0, 100)/100
	return cfg.MinutesPerCard * pace
}
