package sage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hyperengineering/sage/internal/store/migrations"
	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// StoreStats contains statistics about the local store.
type StoreStats struct {
	Profiles      int    `json:"profiles"`
	Sessions      int    `json:"sessions"`
	Cards         int    `json:"cards"`
	Reviews       int    `json:"reviews"`
	ContentItems  int    `json:"content_items"`
	Indicators    int    `json:"indicators"`
	SchemaVersion string `json:"schema_version"`
}

// Store manages the local SQLite learner database.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewStore opens or creates a local learner store.
func NewStore(path string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}

	// Set schema version if not set
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, schemaVersion)
	return err
}

// SetMetadata stores a metadata key/value pair.
func (s *Store) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetMetadata retrieves a metadata value. Returns ErrNotFound when unset.
func (s *Store) GetMetadata(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetStoreMigratedFrom records the source path of an auto-migrated database.
func (s *Store) SetStoreMigratedFrom(sourcePath string) error {
	return s.SetMetadata("migrated_from", sourcePath)
}

// SetStoreDescription records a human-readable store description.
func (s *Store) SetStoreDescription(description string) error {
	return s.SetMetadata("description", description)
}

// GetStoreDescription retrieves the store description, empty if unset.
func (s *Store) GetStoreDescription() (string, error) {
	desc, err := s.GetMetadata("description")
	if err == ErrNotFound {
		return "", nil
	}
	return desc, err
}

// UpsertProfile stores a learner profile, replacing style scores.
func (s *Store) UpsertProfile(profile LearningProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if profile.UserID == "" {
		return ErrEmptyUserID
	}

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	_, err = tx.Exec(`
		INSERT INTO profiles (user_id, dominant_style, is_multimodal, adaptation_level, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			dominant_style = excluded.dominant_style,
			is_multimodal = excluded.is_multimodal,
			adaptation_level = excluded.adaptation_level,
			updated_at = excluded.updated_at
	`,
		profile.UserID,
		nullString(string(profile.DominantStyle)),
		boolToInt(profile.IsMultimodal),
		profile.AdaptationLevel,
		profile.CreatedAt.Format(time.RFC3339),
		profile.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: upsert profile: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM style_scores WHERE user_id = ?`, profile.UserID); err != nil {
		return fmt.Errorf("store: clear style scores: %w", err)
	}
	for _, score := range profile.Styles {
		_, err = tx.Exec(`
			INSERT INTO style_scores (user_id, type, score, confidence, last_updated)
			VALUES (?, ?, ?, ?, ?)
		`,
			profile.UserID,
			string(score.Type),
			score.Score,
			score.Confidence,
			score.LastUpdated.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("store: insert style score: %w", err)
		}
	}

	return tx.Commit()
}

// GetProfile retrieves a learner profile with its style scores.
func (s *Store) GetProfile(userID string) (*LearningProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var (
		profile       LearningProfile
		dominantStyle sql.NullString
		isMultimodal  int
		createdAt     string
		updatedAt     string
	)
	err := s.db.QueryRow(`
		SELECT user_id, dominant_style, is_multimodal, adaptation_level, created_at, updated_at
		FROM profiles WHERE user_id = ?
	`, userID).Scan(&profile.UserID, &dominantStyle, &isMultimodal, &profile.AdaptationLevel, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if dominantStyle.Valid {
		profile.DominantStyle = ContentType(dominantStyle.String)
	}
	profile.IsMultimodal = isMultimodal != 0
	profile.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	profile.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	rows, err := s.db.Query(`
		SELECT type, score, confidence, last_updated
		FROM style_scores WHERE user_id = ? ORDER BY type
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			score       LearningStyleScore
			styleType   string
			lastUpdated string
		)
		if err := rows.Scan(&styleType, &score.Score, &score.Confidence, &lastUpdated); err != nil {
			return nil, err
		}
		score.Type = ContentType(styleType)
		score.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)
		profile.Styles = append(profile.Styles, score)
	}

	return &profile, rows.Err()
}

// InsertIndicators stores a batch of behavioral observations for a learner.
func (s *Store) InsertIndicators(userID string, indicators []BehavioralIndicator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if userID == "" {
		return ErrEmptyUserID
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ind := range indicators {
		if !ind.ContentType.IsValid() {
			return ErrInvalidContentType
		}
		timestamp := ind.Timestamp
		if timestamp.IsZero() {
			timestamp = time.Now().UTC()
		}
		_, err = tx.Exec(`
			INSERT INTO indicators (id, user_id, action, content_type, engagement_level, completion_rate, time_spent, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			ulid.Make().String(),
			userID,
			ind.Action,
			string(ind.ContentType),
			ind.EngagementLevel,
			ind.CompletionRate,
			ind.TimeSpent,
			timestamp.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("store: insert indicator: %w", err)
		}
	}

	return tx.Commit()
}

// IndicatorsByUser retrieves a learner's observations, newest first.
// A limit of 0 returns all.
func (s *Store) IndicatorsByUser(userID string, limit int) ([]BehavioralIndicator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	query := `
		SELECT action, content_type, engagement_level, completion_rate, time_spent, timestamp
		FROM indicators WHERE user_id = ? ORDER BY timestamp DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query indicators: %w", err)
	}
	defer rows.Close()

	var results []BehavioralIndicator
	for rows.Next() {
		var (
			ind         BehavioralIndicator
			contentType string
			timestamp   string
		)
		if err := rows.Scan(&ind.Action, &contentType, &ind.EngagementLevel, &ind.CompletionRate, &ind.TimeSpent, &timestamp); err != nil {
			return nil, err
		}
		ind.ContentType = ContentType(contentType)
		ind.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
		results = append(results, ind)
	}

	return results, rows.Err()
}

// InsertSession validates and stores a completed learning session.
func (s *Store) InsertSession(session LearningSession) (*LearningSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if session.UserID == "" {
		return nil, ErrEmptyUserID
	}
	if session.ContentID == "" {
		return nil, ErrEmptyContentID
	}
	if session.Duration < 0 {
		return nil, ErrNegativeDuration
	}
	if session.CorrectAnswers < 0 || session.CorrectAnswers > session.TotalQuestions {
		return nil, &ValidationError{Field: "CorrectAnswers", Message: "cannot exceed total questions"}
	}

	if session.ID == "" {
		session.ID = ulid.Make().String()
	}
	if session.StartTime.IsZero() {
		session.StartTime = time.Now().UTC()
	}
	session.DifficultyLevel = clamp(session.DifficultyLevel, DifficultyMin, DifficultyMax)

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, user_id, content_id, start_time, duration, completed, total_questions,
		                      correct_answers, items_completed, focus_time, interaction_rate, distraction_events, difficulty_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.UserID,
		session.ContentID,
		session.StartTime.Format(time.RFC3339),
		session.Duration,
		boolToInt(session.Completed),
		session.TotalQuestions,
		session.CorrectAnswers,
		session.ItemsCompleted,
		session.EngagementMetrics.FocusTime,
		session.EngagementMetrics.InteractionRate,
		session.EngagementMetrics.DistractionEvents,
		session.DifficultyLevel,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert session: %w", err)
	}

	return &session, nil
}

// SessionsByUser retrieves a learner's sessions, oldest first.
// A limit of 0 returns all.
func (s *Store) SessionsByUser(userID string, limit int) ([]LearningSession, error) {
	return s.querySessions(`WHERE user_id = ?`, limit, userID)
}

// SessionsByContent retrieves a learner's sessions on one content item.
func (s *Store) SessionsByContent(userID, contentID string) ([]LearningSession, error) {
	return s.querySessions(`WHERE user_id = ? AND content_id = ?`, 0, userID, contentID)
}

func (s *Store) querySessions(where string, limit int, args ...any) ([]LearningSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	query := `
		SELECT id, user_id, content_id, start_time, duration, completed, total_questions,
		       correct_answers, items_completed, focus_time, interaction_rate, distraction_events, difficulty_level
		FROM sessions ` + where + ` ORDER BY start_time`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query sessions: %w", err)
	}
	defer rows.Close()

	var results []LearningSession
	for rows.Next() {
		var (
			session   LearningSession
			startTime string
			completed int
		)
		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.ContentID,
			&startTime,
			&session.Duration,
			&completed,
			&session.TotalQuestions,
			&session.CorrectAnswers,
			&session.ItemsCompleted,
			&session.EngagementMetrics.FocusTime,
			&session.EngagementMetrics.InteractionRate,
			&session.EngagementMetrics.DistractionEvents,
			&session.DifficultyLevel,
		)
		if err != nil {
			return nil, err
		}
		session.StartTime, _ = time.Parse(time.RFC3339, startTime)
		session.Completed = completed != 0
		results = append(results, session)
	}

	return results, rows.Err()
}

// CompletedContentIDs returns the distinct content IDs the learner has
// completed sessions on, for prerequisite checks.
func (s *Store) CompletedContentIDs(userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT DISTINCT content_id FROM sessions WHERE user_id = ? AND completed = 1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// UpsertCard stores a spaced-repetition card. Review history is persisted
// separately through ApplyReview.
func (s *Store) UpsertCard(card SpacedRepetitionCard) (*SpacedRepetitionCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if card.UserID == "" {
		return nil, ErrEmptyUserID
	}
	if card.ContentID == "" {
		return nil, ErrEmptyContentID
	}

	if card.ID == "" {
		card.ID = ulid.Make().String()
	}
	if card.EaseFactor == 0 {
		card.EaseFactor = EaseFactorDefault
	}
	card.EaseFactor = clamp(card.EaseFactor, EaseFactorMin, EaseFactorMax)
	if card.Interval < IntervalMin {
		card.Interval = IntervalMin
	}
	card.Difficulty = clamp(card.Difficulty, DifficultyMin, DifficultyMax)
	if card.NextReviewDate.IsZero() {
		card.NextReviewDate = time.Now().UTC()
	}

	err := s.writeCard(s.db, card)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// execer abstracts Exec shared by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *Store) writeCard(e execer, card SpacedRepetitionCard) error {
	var lastReview *string
	if !card.LastReviewDate.IsZero() {
		formatted := card.LastReviewDate.Format(time.RFC3339)
		lastReview = &formatted
	}

	_, err := e.Exec(`
		INSERT INTO cards (id, content_id, user_id, difficulty, ease_factor, interval, repetitions, last_review_date, next_review_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			difficulty = excluded.difficulty,
			ease_factor = excluded.ease_factor,
			interval = excluded.interval,
			repetitions = excluded.repetitions,
			last_review_date = excluded.last_review_date,
			next_review_date = excluded.next_review_date
	`,
		card.ID,
		card.ContentID,
		card.UserID,
		card.Difficulty,
		card.EaseFactor,
		card.Interval,
		card.Repetitions,
		lastReview,
		card.NextReviewDate.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: write card: %w", err)
	}
	return nil
}

// GetCard retrieves a card with its full review history.
func (s *Store) GetCard(id string) (*SpacedRepetitionCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	return s.getCard(id)
}

func (s *Store) getCard(id string) (*SpacedRepetitionCard, error) {
	row := s.db.QueryRow(`
		SELECT id, content_id, user_id, difficulty, ease_factor, interval, repetitions, last_review_date, next_review_date
		FROM cards WHERE id = ?
	`, id)

	card, err := scanCard(row)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewsForCard(card.ID)
	if err != nil {
		return nil, err
	}
	card.Reviews = reviews

	return card, nil
}

// CardForContent retrieves the learner's card for a content item.
func (s *Store) CardForContent(userID, contentID string) (*SpacedRepetitionCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var id string
	err := s.db.QueryRow(`
		SELECT id FROM cards WHERE user_id = ? AND content_id = ?
	`, userID, contentID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.getCard(id)
}

// CardsByUser retrieves all of a learner's cards with review history.
func (s *Store) CardsByUser(userID string) ([]SpacedRepetitionCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, content_id, user_id, difficulty, ease_factor, interval, repetitions, last_review_date, next_review_date
		FROM cards WHERE user_id = ? ORDER BY next_review_date
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: query cards: %w", err)
	}
	defer rows.Close()

	var cards []SpacedRepetitionCard
	byID := make(map[string]int)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		byID[card.ID] = len(cards)
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(cards) == 0 {
		return cards, nil
	}

	reviewRows, err := s.db.Query(`
		SELECT r.id, r.card_id, r.review_date, r.quality, r.response_time, r.previous_interval, r.new_interval, r.ease_factor, r.was_correct
		FROM reviews r JOIN cards c ON c.id = r.card_id
		WHERE c.user_id = ? ORDER BY r.review_date
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: query reviews: %w", err)
	}
	defer reviewRows.Close()

	for reviewRows.Next() {
		var (
			review     ReviewRecord
			cardID     string
			reviewDate string
			wasCorrect int
		)
		err := reviewRows.Scan(&review.ID, &cardID, &reviewDate, &review.Quality, &review.ResponseTime,
			&review.PreviousInterval, &review.NewInterval, &review.EaseFactor, &wasCorrect)
		if err != nil {
			return nil, err
		}
		review.ReviewDate, _ = time.Parse(time.RFC3339, reviewDate)
		review.WasCorrect = wasCorrect != 0
		if idx, ok := byID[cardID]; ok {
			cards[idx].Reviews = append(cards[idx].Reviews, review)
		}
	}

	return cards, reviewRows.Err()
}

// DueCards retrieves the learner's cards due at the given time, with review
// history, most overdue first.
func (s *Store) DueCards(userID string, now time.Time) ([]SpacedRepetitionCard, error) {
	cards, err := s.CardsByUser(userID)
	if err != nil {
		return nil, err
	}

	due := cards[:0]
	for _, card := range cards {
		if card.IsDue(now) {
			due = append(due, card)
		}
	}
	return due, nil
}

// ApplyReview atomically applies a review update to a card. The card is
// re-read inside the transaction and the whole read-modify-write is
// serialized by the store, so two concurrent reviews of the same card can
// never clobber each other's scheduling decision.
func (s *Store) ApplyReview(cardID string, apply func(SpacedRepetitionCard) (SpacedRepetitionCard, error)) (*SpacedRepetitionCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	current, err := s.getCard(cardID)
	if err != nil {
		return nil, err
	}

	updated, err := apply(*current)
	if err != nil {
		return nil, err
	}
	if len(updated.Reviews) != len(current.Reviews)+1 {
		return nil, &ValidationError{Field: "Reviews", Message: "review update must append exactly one review record"}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.writeCard(tx, updated); err != nil {
		return nil, err
	}

	review := updated.Reviews[len(updated.Reviews)-1]
	if review.ID == "" {
		review.ID = ulid.Make().String()
		updated.Reviews[len(updated.Reviews)-1] = review
	}
	_, err = tx.Exec(`
		INSERT INTO reviews (id, card_id, review_date, quality, response_time, previous_interval, new_interval, ease_factor, was_correct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		review.ID,
		updated.ID,
		review.ReviewDate.Format(time.RFC3339),
		review.Quality,
		review.ResponseTime,
		review.PreviousInterval,
		review.NewInterval,
		review.EaseFactor,
		boolToInt(review.WasCorrect),
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ImportCard writes a card together with its full review history in one
// transaction. Existing reviews for the card are replaced.
func (s *Store) ImportCard(card SpacedRepetitionCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if card.ID == "" {
		return &ValidationError{Field: "ID", Message: "card ID is required for import"}
	}
	if card.UserID == "" {
		return ErrEmptyUserID
	}
	if card.ContentID == "" {
		return ErrEmptyContentID
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.writeCard(tx, card); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM reviews WHERE card_id = ?`, card.ID); err != nil {
		return fmt.Errorf("store: clear reviews: %w", err)
	}
	for _, review := range card.Reviews {
		if review.ID == "" {
			review.ID = ulid.Make().String()
		}
		_, err := tx.Exec(`
			INSERT INTO reviews (id, card_id, review_date, quality, response_time, previous_interval, new_interval, ease_factor, was_correct)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			review.ID,
			card.ID,
			review.ReviewDate.Format(time.RFC3339),
			review.Quality,
			review.ResponseTime,
			review.PreviousInterval,
			review.NewInterval,
			review.EaseFactor,
			boolToInt(review.WasCorrect),
		)
		if err != nil {
			return fmt.Errorf("store: insert review: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) reviewsForCard(cardID string) ([]ReviewRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, review_date, quality, response_time, previous_interval, new_interval, ease_factor, was_correct
		FROM reviews WHERE card_id = ? ORDER BY review_date
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("store: query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []ReviewRecord
	for rows.Next() {
		var (
			review     ReviewRecord
			reviewDate string
			wasCorrect int
		)
		err := rows.Scan(&review.ID, &reviewDate, &review.Quality, &review.ResponseTime,
			&review.PreviousInterval, &review.NewInterval, &review.EaseFactor, &wasCorrect)
		if err != nil {
			return nil, err
		}
		review.ReviewDate, _ = time.Parse(time.RFC3339, reviewDate)
		review.WasCorrect = wasCorrect != 0
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

// UpsertContent stores an authored content item.
func (s *Store) UpsertContent(content AdaptiveContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if content.ID == "" {
		return ErrEmptyContentID
	}
	// Authored difficulty is a caller contract, not telemetry to clamp.
	// Zero means unset and defaults to the floor.
	if content.Difficulty != 0 && (content.Difficulty < DifficultyMin || content.Difficulty > DifficultyMax) {
		return &ValidationError{
			Field:   "Difficulty",
			Message: fmt.Sprintf("must be between %.0f and %.0f, got %g", DifficultyMin, DifficultyMax, content.Difficulty),
			Err:     ErrInvalidDifficulty,
		}
	}

	var variantsJSON *string
	if len(content.Variants) > 0 {
		encoded, err := json.Marshal(content.Variants)
		if err != nil {
			return fmt.Errorf("store: encode variants: %w", err)
		}
		str := string(encoded)
		variantsJSON = &str
	}

	_, err := s.db.Exec(`
		INSERT INTO content (id, difficulty, concept, topic, prerequisites, variants,
		                     cognitive_load, estimated_engagement, success_rate, estimated_duration, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			difficulty = excluded.difficulty,
			concept = excluded.concept,
			topic = excluded.topic,
			prerequisites = excluded.prerequisites,
			variants = excluded.variants,
			cognitive_load = excluded.cognitive_load,
			estimated_engagement = excluded.estimated_engagement,
			success_rate = excluded.success_rate,
			estimated_duration = excluded.estimated_duration,
			tags = excluded.tags
	`,
		content.ID,
		clamp(content.Difficulty, DifficultyMin, DifficultyMax),
		content.Concept,
		nullString(content.Topic),
		joinList(content.Prerequisites),
		variantsJSON,
		content.Metadata.CognitiveLoad,
		content.Metadata.EstimatedEngagement,
		content.Metadata.SuccessRate,
		content.Metadata.EstimatedDuration,
		joinList(content.Metadata.Tags),
	)
	if err != nil {
		return fmt.Errorf("store: upsert content: %w", err)
	}
	return nil
}

// GetContent retrieves one content item.
func (s *Store) GetContent(id string) (*AdaptiveContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	row := s.db.QueryRow(`
		SELECT id, difficulty, concept, topic, prerequisites, variants,
		       cognitive_load, estimated_engagement, success_rate, estimated_duration, tags
		FROM content WHERE id = ?
	`, id)
	return scanContent(row)
}

// ContentPool retrieves the full content catalog.
func (s *Store) ContentPool() ([]AdaptiveContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, difficulty, concept, topic, prerequisites, variants,
		       cognitive_load, estimated_engagement, success_rate, estimated_duration, tags
		FROM content ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: query content: %w", err)
	}
	defer rows.Close()

	var pool []AdaptiveContent
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		pool = append(pool, *content)
	}

	return pool, rows.Err()
}

// Stats returns store statistics.
func (s *Store) Stats() (*StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	stats := &StoreStats{SchemaVersion: schemaVersion}
	counts := []struct {
		table string
		dest  *int
	}{
		{"profiles", &stats.Profiles},
		{"sessions", &stats.Sessions},
		{"cards", &stats.Cards},
		{"reviews", &stats.Reviews},
		{"content", &stats.ContentItems},
		{"indicators", &stats.Indicators},
	}
	for _, c := range counts {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// scanner abstracts the Scan method shared by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCard(sc scanner) (*SpacedRepetitionCard, error) {
	var (
		card       SpacedRepetitionCard
		lastReview sql.NullString
		nextReview string
	)
	err := sc.Scan(
		&card.ID,
		&card.ContentID,
		&card.UserID,
		&card.Difficulty,
		&card.EaseFactor,
		&card.Interval,
		&card.Repetitions,
		&lastReview,
		&nextReview,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if lastReview.Valid {
		card.LastReviewDate, _ = time.Parse(time.RFC3339, lastReview.String)
	}
	card.NextReviewDate, _ = time.Parse(time.RFC3339, nextReview)

	return &card, nil
}

func scanContent(sc scanner) (*AdaptiveContent, error) {
	var (
		content       AdaptiveContent
		topic         sql.NullString
		prerequisites sql.NullString
		variants      sql.NullString
		tags          sql.NullString
	)
	err := sc.Scan(
		&content.ID,
		&content.Difficulty,
		&content.Concept,
		&topic,
		&prerequisites,
		&variants,
		&content.Metadata.CognitiveLoad,
		&content.Metadata.EstimatedEngagement,
		&content.Metadata.SuccessRate,
		&content.Metadata.EstimatedDuration,
		&tags,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if topic.Valid {
		content.Topic = topic.String
	}
	if prerequisites.Valid {
		content.Prerequisites = strings.Split(prerequisites.String, ",")
	}
	if variants.Valid {
		if err := json.Unmarshal([]byte(variants.String), &content.Variants); err != nil {
			return nil, fmt.Errorf("store: decode variants: %w", err)
		}
	}
	if tags.Valid {
		content.Metadata.Tags = strings.Split(tags.String, ",")
	}

	return &content, nil
}

func joinList(items []string) *string {
	if len(items) == 0 {
		return nil
	}
	joined := strings.Join(items, ",")
	return &joined
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
