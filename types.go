package sage

import "time"

// ContentType classifies content by the VARK learning-style channel it
// primarily exercises.
type ContentType string

const (
	ContentVisual      ContentType = "visual"
	ContentAuditory    ContentType = "auditory"
	ContentReading     ContentType = "reading"
	ContentKinesthetic ContentType = "kinesthetic"
)

// ValidContentTypes returns all valid VARK content types.
func ValidContentTypes() []ContentType {
	return []ContentType{
		ContentVisual,
		ContentAuditory,
		ContentReading,
		ContentKinesthetic,
	}
}

// IsValid checks if the content type is a valid VARK channel.
func (c ContentType) IsValid() bool {
	for _, valid := range ValidContentTypes() {
		if c == valid {
			return true
		}
	}
	return false
}

// BehavioralIndicator is a single behavioral observation produced by
// instrumentation. Immutable; the engine only reads these.
type BehavioralIndicator struct {
	Action          string      `json:"action"`
	ContentType     ContentType `json:"content_type"`
	EngagementLevel float64     `json:"engagement_level"` // 0-100
	CompletionRate  float64     `json:"completion_rate"`  // 0-100
	TimeSpent       float64     `json:"time_spent"`       // seconds, >= 0
	Timestamp       time.Time   `json:"timestamp"`
}

// LearningStyleScore is the detected strength of one VARK style.
// Scores across the four styles need not sum to 100.
type LearningStyleScore struct {
	Type        ContentType `json:"type"`
	Score       float64     `json:"score"`      // 0-100
	Confidence  float64     `json:"confidence"` // 0-1
	LastUpdated time.Time   `json:"last_updated"`
}

// LearningProfile aggregates everything the engine knows about one learner.
// Styles, DominantStyle and IsMultimodal are written only by the style
// detector; AdaptationLevel is adjusted by calibration and performance
// feedback.
type LearningProfile struct {
	UserID               string                `json:"user_id"`
	Styles               []LearningStyleScore  `json:"styles"` // one per VARK style
	DominantStyle        ContentType           `json:"dominant_style,omitempty"`
	IsMultimodal         bool                  `json:"is_multimodal"`
	AdaptationLevel      float64               `json:"adaptation_level"` // 0-100
	BehavioralIndicators []BehavioralIndicator `json:"behavioral_indicators,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// StyleScore returns the score entry for the given style, if present.
func (p *LearningProfile) StyleScore(t ContentType) (LearningStyleScore, bool) {
	for _, s := range p.Styles {
		if s.Type == t {
			return s, true
		}
	}
	return LearningStyleScore{}, false
}

// EngagementMetrics captures in-session attention signals.
type EngagementMetrics struct {
	FocusTime         float64 `json:"focus_time"` // seconds
	InteractionRate   float64 `json:"interaction_rate"`
	DistractionEvents int     `json:"distraction_events"`
}

// LearningSession is one completed study session. Created at session end and
// immutable thereafter. CorrectAnswers never exceeds TotalQuestions.
type LearningSession struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	ContentID         string            `json:"content_id"`
	StartTime         time.Time         `json:"start_time"`
	Duration          float64           `json:"duration"` // minutes, >= 0
	Completed         bool              `json:"completed"`
	TotalQuestions    int               `json:"total_questions"`
	CorrectAnswers    int               `json:"correct_answers"`
	ItemsCompleted    int               `json:"items_completed"`
	EngagementMetrics EngagementMetrics `json:"engagement_metrics"`
	DifficultyLevel   float64           `json:"difficulty_level"` // 1-10
}

// Accuracy returns the session's correct/total ratio in [0,1].
// Sessions with no questions attempted score 0, never a division error.
func (s *LearningSession) Accuracy() float64 {
	if s.TotalQuestions <= 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.TotalQuestions)
}

// ReviewRecord is one append-only entry in a card's review history.
type ReviewRecord struct {
	ID               string    `json:"id"`
	ReviewDate       time.Time `json:"review_date"`
	Quality          int       `json:"quality"`       // 0-5
	ResponseTime     float64   `json:"response_time"` // seconds, >= 0
	PreviousInterval int       `json:"previous_interval"`
	NewInterval      int       `json:"new_interval"`
	EaseFactor       float64   `json:"ease_factor"` // 1.3-2.5, post-review
	WasCorrect       bool      `json:"was_correct"`
}

// SpacedRepetitionCard tracks the review scheduling state of one piece of
// studied content for one learner. Mutated exactly once per review event via
// CalculateNextReview; review history is retained indefinitely.
type SpacedRepetitionCard struct {
	ID             string         `json:"id"`
	ContentID      string         `json:"content_id"`
	UserID         string         `json:"user_id"`
	Difficulty     float64        `json:"difficulty"`  // 1-10
	EaseFactor     float64        `json:"ease_factor"` // 1.3-2.5
	Interval       int            `json:"interval"`    // days, >= 1
	Repetitions    int            `json:"repetitions"` // >= 0
	LastReviewDate time.Time      `json:"last_review_date"`
	NextReviewDate time.Time      `json:"next_review_date"`
	Reviews        []ReviewRecord `json:"reviews,omitempty"`
}

// CardStage is the lifecycle state of a card, derived from its repetition
// count. Transitions happen only through CalculateNextReview.
type CardStage string

const (
	StageNew      CardStage = "new"      // never successfully reviewed
	StageLearning CardStage = "learning" // 1-2 successful repetitions
	StageMature   CardStage = "mature"   // 3+ repetitions, geometric intervals
	StageLapsed   CardStage = "lapsed"   // failed after having matured
)

// Stage derives the lifecycle stage from the card's current state.
func (c *SpacedRepetitionCard) Stage() CardStage {
	switch {
	case c.Repetitions >= 3:
		return StageMature
	case c.Repetitions >= 1:
		return StageLearning
	case len(c.Reviews) > 0:
		// Repetitions reset to zero by a failing review.
		return StageLapsed
	default:
		return StageNew
	}
}

// IsDue reports whether the card is due for review at the given time.
func (c *SpacedRepetitionCard) IsDue(now time.Time) bool {
	return !c.NextReviewDate.After(now)
}

// ContentMetadata describes authored attributes of a piece of content.
type ContentMetadata struct {
	CognitiveLoad       float64  `json:"cognitive_load"`
	EstimatedEngagement float64  `json:"estimated_engagement"` // 0-10
	SuccessRate         float64  `json:"success_rate"`         // 0-100
	EstimatedDuration   float64  `json:"estimated_duration"`   // minutes
	Tags                []string `json:"tags,omitempty"`
}

// ContentVariant is a per-style rendition of a piece of content.
type ContentVariant struct {
	Style    ContentType `json:"style"`
	Format   string      `json:"format"`
	Duration float64     `json:"duration"` // minutes
}

// AdaptiveContent is a piece of learnable content. Authored externally and
// read-only to the engine.
type AdaptiveContent struct {
	ID            string           `json:"id"`
	Difficulty    float64          `json:"difficulty"` // 1-10
	Concept       string           `json:"concept"`
	Topic         string           `json:"topic,omitempty"`
	Prerequisites []string         `json:"prerequisites,omitempty"`
	Variants      []ContentVariant `json:"variants,omitempty"`
	Metadata      ContentMetadata  `json:"metadata"`
}

// HasVariant reports whether the content offers a rendition for the style.
func (a *AdaptiveContent) HasVariant(style ContentType) bool {
	for _, v := range a.Variants {
		if v.Style == style {
			return true
		}
	}
	return false
}

// RecommendationPreferences captures the learner's stated preferences.
type RecommendationPreferences struct {
	ContentTypes        []ContentType `json:"content_types,omitempty"`
	MaxDuration         float64       `json:"max_duration,omitempty"` // minutes
	PreferredDifficulty float64       `json:"preferred_difficulty,omitempty"`
	Topics              []string      `json:"topics,omitempty"`
	LearningGoals       []string      `json:"learning_goals,omitempty"`
}

// RecommendationConstraints bound the recommendation set.
type RecommendationConstraints struct {
	MaxRecommendations   int      `json:"max_recommendations"`
	MinDiversityScore    float64  `json:"min_diversity_score"` // 0-1
	ExcludeContentIDs    []string `json:"exclude_content_ids,omitempty"`
	RequirePrerequisites bool     `json:"require_prerequisites"`
}

// RecommendationContext is the per-request input to the recommender.
// Constructed by the caller; never persisted by the engine.
type RecommendationContext struct {
	UserID           string                    `json:"user_id"`
	RecentHistory    []LearningSession         `json:"recent_history,omitempty"`
	CompletedContent []string                  `json:"completed_content,omitempty"`
	Preferences      RecommendationPreferences `json:"preferences"`
	Constraints      RecommendationConstraints `json:"constraints"`
}

// Ease factor and interval bounds for the modified SM-2 scheduler.
const (
	EaseFactorMin     = 1.3
	EaseFactorMax     = 2.5
	EaseFactorDefault = 2.5
	IntervalMin       = 1 // days
	QualityMin        = 0
	QualityMax        = 5
	QualityPassing    = 3
)

// Difficulty scale bounds shared by cards, sessions and content.
const (
	DifficultyMin = 1.0
	DifficultyMax = 10.0
)
