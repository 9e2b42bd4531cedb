package sage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// ExportVersion is the current version of the JSONL export format.
const ExportVersion = "1"

// Export record kinds, one per JSONL line.
const (
	RecordKindHeader    = "header"
	RecordKindProfile   = "profile"
	RecordKindIndicator = "indicator"
	RecordKindSession   = "session"
	RecordKindCard      = "card"
	RecordKindContent   = "content"
)

// ExportRecord is one line of a JSONL export. Kind selects which payload
// field is populated.
type ExportRecord struct {
	Kind       string                `json:"kind"`
	Version    string                `json:"version,omitempty"`
	ExportedAt *time.Time            `json:"exported_at,omitempty"`
	UserID     string                `json:"user_id,omitempty"`
	Profile    *LearningProfile      `json:"profile,omitempty"`
	Indicator  *BehavioralIndicator  `json:"indicator,omitempty"`
	Session    *LearningSession      `json:"session,omitempty"`
	Card       *SpacedRepetitionCard `json:"card,omitempty"`
	Content    *AdaptiveContent      `json:"content,omitempty"`
}

// ExportJSONL streams a learner's data as JSONL to the writer: a header
// line, then the profile, observations, sessions, and cards (with review
// history), then the full content catalog. Records are written one per line
// so imports can stream without loading everything into memory.
func (c *Client) ExportJSONL(ctx context.Context, userID string, w io.Writer) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	enc := json.NewEncoder(w)
	now := time.Now().UTC()
	if err := enc.Encode(ExportRecord{Kind: RecordKindHeader, Version: ExportVersion, ExportedAt: &now, UserID: userID}); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	if profile, err := c.store.GetProfile(userID); err == nil {
		if err := enc.Encode(ExportRecord{Kind: RecordKindProfile, Profile: profile}); err != nil {
			return fmt.Errorf("export: write profile: %w", err)
		}
	} else if err != ErrNotFound {
		return err
	}

	indicators, err := c.store.IndicatorsByUser(userID, 0)
	if err != nil {
		return err
	}
	for i := range indicators {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(ExportRecord{Kind: RecordKindIndicator, UserID: userID, Indicator: &indicators[i]}); err != nil {
			return fmt.Errorf("export: write indicator: %w", err)
		}
	}

	sessions, err := c.store.SessionsByUser(userID, 0)
	if err != nil {
		return err
	}
	for i := range sessions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(ExportRecord{Kind: RecordKindSession, Session: &sessions[i]}); err != nil {
			return fmt.Errorf("export: write session: %w", err)
		}
	}

	cards, err := c.store.CardsByUser(userID)
	if err != nil {
		return err
	}
	for i := range cards {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(ExportRecord{Kind: RecordKindCard, Card: &cards[i]}); err != nil {
			return fmt.Errorf("export: write card: %w", err)
		}
	}

	pool, err := c.store.ContentPool()
	if err != nil {
		return err
	}
	for i := range pool {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(ExportRecord{Kind: RecordKindContent, Content: &pool[i]}); err != nil {
			return fmt.Errorf("export: write content: %w", err)
		}
	}

	return nil
}

// ExportSQLite exports the store to a SQLite database file. It performs a
// WAL checkpoint first so the copy is consistent.
func (s *Store) ExportSQLite(ctx context.Context, destPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	// Flush pending writes before copying the file
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpoint WAL: %w", err)
	}

	srcFile, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, srcFile); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("copy database: %w", err)
	}

	return destFile.Sync()
}
