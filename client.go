package sage

import (
	"context"
	"fmt"
	"time"
)

// Client is the main interface for interacting with a learner store. It
// orchestrates the engine components over persisted learner data.
type Client struct {
	store   *Store
	session *Session
	logger  *DebugLogger
	config  Config
	engine  EngineConfig
}

// New creates a new Sage client.
func New(cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := NewDebugLogger(cfg.Debug, cfg.DebugLogPath)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	store, err := NewStore(cfg.LocalPath)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("client: %w", err)
	}

	return &Client{
		store:   store,
		session: NewSession(),
		logger:  logger,
		config:  cfg,
		engine:  *cfg.Engine,
	}, nil
}

// Store exposes the underlying store for direct data management.
func (c *Client) Store() *Store {
	return c.store
}

// EngineConfig returns the engine thresholds the client operates with.
func (c *Client) EngineConfig() EngineConfig {
	return c.engine
}

// RecordSession persists a completed learning session and refreshes the
// learner's difficulty adaptation from the recent session window.
func (c *Client) RecordSession(ctx context.Context, session LearningSession) (*LearningSession, error) {
	stored, err := c.store.InsertSession(session)
	if err != nil {
		c.logger.LogError("record_session", err)
		return nil, err
	}
	c.logger.LogOperation("record_session", fmt.Sprintf("user=%s content=%s accuracy=%.2f",
		stored.UserID, stored.ContentID, stored.Accuracy()))

	// Real-time difficulty adaptation over the learner's trailing sessions on
	// this content. Best-effort; the session itself is already recorded.
	if card, err := c.store.CardForContent(stored.UserID, stored.ContentID); err == nil {
		recent, err := c.store.SessionsByContent(stored.UserID, stored.ContentID)
		if err == nil {
			adapted := AdaptDifficultyRealTime(c.engine, card.Difficulty, recent)
			if adapted != card.Difficulty {
				card.Difficulty = adapted
				if _, err := c.store.UpsertCard(*card); err != nil {
					c.logger.LogError("record_session: adapt", err)
				} else {
					c.logger.LogOperation("record_session", fmt.Sprintf("adapted difficulty for %s to %.0f", stored.ContentID, adapted))
				}
			}
		}
	}

	return stored, nil
}

// RecordIndicators persists behavioral observations and refreshes the
// learner's style profile from the full observation history.
func (c *Client) RecordIndicators(ctx context.Context, userID string, indicators []BehavioralIndicator) (*LearningProfile, error) {
	if err := c.store.InsertIndicators(userID, indicators); err != nil {
		c.logger.LogError("record_indicators", err)
		return nil, err
	}
	return c.RefreshProfile(ctx, userID)
}

// RefreshProfile recomputes the learner's style profile from all stored
// observations and persists the result.
func (c *Client) RefreshProfile(ctx context.Context, userID string) (*LearningProfile, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	history, err := c.store.IndicatorsByUser(userID, 0)
	if err != nil {
		return nil, err
	}

	profile, err := c.store.GetProfile(userID)
	if err == ErrNotFound {
		now := time.Now().UTC()
		profile = &LearningProfile{UserID: userID, CreatedAt: now, UpdatedAt: now}
	} else if err != nil {
		return nil, err
	}

	updated := ApplyStyleAnalysis(c.engine, *profile, history, time.Now().UTC())
	if err := c.store.UpsertProfile(updated); err != nil {
		return nil, err
	}
	c.logger.LogOperation("refresh_profile", fmt.Sprintf("user=%s dominant=%s multimodal=%t",
		userID, updated.DominantStyle, updated.IsMultimodal))

	return &updated, nil
}

// Profile retrieves the learner's stored style profile.
func (c *Client) Profile(ctx context.Context, userID string) (*LearningProfile, error) {
	return c.store.GetProfile(userID)
}

// ReviewCard applies a quality-graded review to a card and persists the new
// schedule. The read-modify-write is serialized per store, so concurrent
// reviews of the same card cannot lose updates.
func (c *Client) ReviewCard(ctx context.Context, cardID string, in ReviewInput) (*SpacedRepetitionCard, error) {
	updated, err := c.store.ApplyReview(cardID, func(card SpacedRepetitionCard) (SpacedRepetitionCard, error) {
		return CalculateNextReview(c.engine, card, in)
	})
	if err != nil {
		c.logger.LogError("review_card", err)
		return nil, err
	}
	c.logger.LogOperation("review_card", fmt.Sprintf("card=%s quality=%d interval=%dd ease=%.2f",
		updated.ID, in.Quality, updated.Interval, updated.EaseFactor))
	return updated, nil
}

// ReviewContent looks up (or creates) the learner's card for a content item
// and applies a review to it.
func (c *Client) ReviewContent(ctx context.Context, userID, contentID string, in ReviewInput) (*SpacedRepetitionCard, error) {
	card, err := c.store.CardForContent(userID, contentID)
	if err == ErrNotFound {
		difficulty := DifficultyMin
		if content, cerr := c.store.GetContent(contentID); cerr == nil {
			difficulty = content.Difficulty
		} else if IsSessionRef(contentID) {
			// A ref from another process names no card and no content.
			// Refusing beats minting a card for the literal string "S1".
			return nil, fmt.Errorf("%w: %q", ErrSessionRefNotFound, contentID)
		}
		card, err = c.store.UpsertCard(SpacedRepetitionCard{
			UserID:     userID,
			ContentID:  contentID,
			Difficulty: difficulty,
		})
	}
	if err != nil {
		return nil, err
	}
	return c.ReviewCard(ctx, card.ID, in)
}

// StudySchedule builds a prioritized review plan for the learner within the
// given time budget.
func (c *Client) StudySchedule(ctx context.Context, userID string, minutesAvailable float64, now time.Time) (*StudySchedule, error) {
	cards, err := c.store.CardsByUser(userID)
	if err != nil {
		return nil, err
	}

	profile := LearningProfile{UserID: userID}
	if stored, err := c.store.GetProfile(userID); err == nil {
		profile = *stored
	}

	schedule := GenerateStudySchedule(c.engine, cards, minutesAvailable, profile, now)
	c.logger.LogOperation("study_schedule", fmt.Sprintf("user=%s due=%d scheduled=%d minutes=%.0f",
		userID, schedule.DueCount, len(schedule.Cards), minutesAvailable))
	return &schedule, nil
}

// Retention reports retention rates bucketed by difficulty and interval.
func (c *Client) Retention(ctx context.Context, userID string) (*RetentionReport, error) {
	cards, err := c.store.CardsByUser(userID)
	if err != nil {
		return nil, err
	}
	report := AnalyzeRetentionPatterns(cards)
	return &report, nil
}

// Calibrate computes the calibrated difficulty for a content item from the
// learner's session history on it.
func (c *Client) Calibrate(ctx context.Context, userID, contentID string) (*CalibrationResult, error) {
	content, err := c.store.GetContent(contentID)
	if err != nil {
		return nil, err
	}

	sessions, err := c.store.SessionsByContent(userID, contentID)
	if err != nil {
		return nil, err
	}

	profile := LearningProfile{UserID: userID}
	if stored, err := c.store.GetProfile(userID); err == nil {
		profile = *stored
	}

	result := CalibrateDifficulty(c.engine, *content, sessions, profile)
	c.logger.LogOperation("calibrate", fmt.Sprintf("content=%s authored=%.1f calibrated=%.1f confidence=%.2f",
		contentID, content.Difficulty, result.CalibratedDifficulty, result.ConfidenceLevel))
	return &result, nil
}

// Recommend returns diversified content recommendations for the learner.
// Surfaced items are tracked in the session for short-ref follow-ups.
func (c *Client) Recommend(ctx context.Context, userID string, rctx RecommendationContext) (*RecommendationResult, error) {
	pool, err := c.store.ContentPool()
	if err != nil {
		return nil, err
	}

	profile := LearningProfile{UserID: userID}
	if stored, err := c.store.GetProfile(userID); err == nil {
		profile = *stored
	}

	if len(rctx.CompletedContent) == 0 {
		completed, err := c.store.CompletedContentIDs(userID)
		if err != nil {
			return nil, err
		}
		rctx.CompletedContent = completed
	}

	items, err := GenerateRecommendations(c.engine, pool, profile, rctx)
	if err != nil {
		c.logger.LogError("recommend", err)
		return nil, err
	}

	refs := make(map[string]string, len(items))
	for _, item := range items {
		ref := c.session.Track(item.ID)
		refs[ref] = item.ID
	}
	c.logger.LogOperation("recommend", fmt.Sprintf("user=%s pool=%d returned=%d", userID, len(pool), len(items)))

	return &RecommendationResult{Content: items, SessionRefs: refs}, nil
}

// Performance computes the learner's performance metrics from stored history.
func (c *Client) Performance(ctx context.Context, userID string) (*PerformanceMetrics, error) {
	in, err := c.performanceInput(userID)
	if err != nil {
		return nil, err
	}
	metrics := AnalyzePerformance(c.engine, *in)
	return &metrics, nil
}

// Patterns detects the learner's trend, preferred study hour, and session
// length distribution.
func (c *Client) Patterns(ctx context.Context, userID string) (*LearningPatterns, error) {
	in, err := c.performanceInput(userID)
	if err != nil {
		return nil, err
	}
	patterns := DetectLearningPatterns(c.engine, in.Sessions, in.Profile)
	return &patterns, nil
}

// Anomalies flags sessions that deviate sharply from the learner's norm.
func (c *Client) Anomalies(ctx context.Context, userID string) ([]Anomaly, error) {
	in, err := c.performanceInput(userID)
	if err != nil {
		return nil, err
	}
	return DetectAnomalies(c.engine, in.Sessions, in.Profile), nil
}

func (c *Client) performanceInput(userID string) (*PerformanceInput, error) {
	sessions, err := c.store.SessionsByUser(userID, 0)
	if err != nil {
		return nil, err
	}
	indicators, err := c.store.IndicatorsByUser(userID, 0)
	if err != nil {
		return nil, err
	}
	cards, err := c.store.CardsByUser(userID)
	if err != nil {
		return nil, err
	}

	profile := LearningProfile{UserID: userID}
	if stored, err := c.store.GetProfile(userID); err == nil {
		profile = *stored
	}

	return &PerformanceInput{
		Sessions:   sessions,
		Profile:    profile,
		Indicators: indicators,
		Cards:      cards,
	}, nil
}

// SessionContent describes a content item surfaced during this session.
type SessionContent struct {
	SessionRef string  `json:"session_ref"`
	ID         string  `json:"id"`
	Concept    string  `json:"concept"`
	Topic      string  `json:"topic,omitempty"`
	Difficulty float64 `json:"difficulty"`
}

// GetSessionContent returns all content surfaced this session.
func (c *Client) GetSessionContent() []SessionContent {
	all := c.session.All()
	result := make([]SessionContent, 0, len(all))

	for ref, id := range all {
		content, err := c.store.GetContent(id)
		if err != nil {
			continue
		}
		result = append(result, SessionContent{
			SessionRef: ref,
			ID:         id,
			Concept:    content.Concept,
			Topic:      content.Topic,
			Difficulty: content.Difficulty,
		})
	}

	return result
}

// ResolveContentRef resolves a session ref, content ID, or concept snippet to
// a content ID.
func (c *Client) ResolveContentRef(ref string) (string, bool) {
	return c.session.FuzzyMatch(ref, func(id string) string {
		content, err := c.store.GetContent(id)
		if err != nil {
			return ""
		}
		return content.Concept
	})
}

// Stats returns store statistics.
func (c *Client) Stats() (*StoreStats, error) {
	return c.store.Stats()
}

// HealthStatus reports the health of the client and its store.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	StoreOK bool   `json:"store_ok"`
	Error   string `json:"error,omitempty"`
}

// HealthCheck returns the health status of the client.
func (c *Client) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		StoreOK: true,
	}

	_, err := c.store.Stats()
	if err != nil {
		status.StoreOK = false
		status.Healthy = false
		status.Error = err.Error()
	}

	return status
}

// Close closes the client.
func (c *Client) Close() error {
	err := c.store.Close()
	if lerr := c.logger.Close(); err == nil {
		err = lerr
	}
	return err
}
