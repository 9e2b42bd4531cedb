package sage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ImportResult summarizes a JSONL import operation.
type ImportResult struct {
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportJSONL imports learner data from a JSONL export. Malformed or
// invalid lines are skipped and counted; the import continues past them.
// The first line must be a header record with a supported version.
func (c *Client) ImportJSONL(ctx context.Context, r io.Reader) (*ImportResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	result := &ImportResult{}
	line := 0
	sawHeader := false

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec ExportRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			if !sawHeader {
				return nil, &ImportError{Line: line, Err: err}
			}
			result.Total++
			result.Skipped++
			result.Errors = append(result.Errors, (&ImportError{Line: line, Err: err}).Error())
			continue
		}

		if !sawHeader {
			if rec.Kind != RecordKindHeader {
				return nil, &ImportError{Line: line, Err: fmt.Errorf("expected header record, got %q", rec.Kind)}
			}
			if rec.Version != ExportVersion {
				return nil, &ImportError{Line: line, Err: fmt.Errorf("unsupported export version %q (expected %q)", rec.Version, ExportVersion)}
			}
			sawHeader = true
			continue
		}

		result.Total++
		if err := c.importRecord(rec); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, (&ImportError{Line: line, Err: err}).Error())
			continue
		}
		result.Imported++
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("import: read: %w", err)
	}
	if !sawHeader {
		return nil, &ImportError{Line: line, Err: fmt.Errorf("missing header record")}
	}

	c.logger.LogOperation("import", fmt.Sprintf("total=%d imported=%d skipped=%d",
		result.Total, result.Imported, result.Skipped))
	return result, nil
}

func (c *Client) importRecord(rec ExportRecord) error {
	switch rec.Kind {
	case RecordKindProfile:
		if rec.Profile == nil {
			return fmt.Errorf("profile record without payload")
		}
		return c.store.UpsertProfile(*rec.Profile)

	case RecordKindIndicator:
		if rec.Indicator == nil {
			return fmt.Errorf("indicator record without payload")
		}
		return c.store.InsertIndicators(rec.UserID, []BehavioralIndicator{*rec.Indicator})

	case RecordKindSession:
		if rec.Session == nil {
			return fmt.Errorf("session record without payload")
		}
		_, err := c.store.InsertSession(*rec.Session)
		return err

	case RecordKindCard:
		if rec.Card == nil {
			return fmt.Errorf("card record without payload")
		}
		return c.store.ImportCard(*rec.Card)

	case RecordKindContent:
		if rec.Content == nil {
			return fmt.Errorf("content record without payload")
		}
		return c.store.UpsertContent(*rec.Content)

	default:
		return fmt.Errorf("unknown record kind %q", rec.Kind)
	}
}
