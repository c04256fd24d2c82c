package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/paperflow-app/paperflow/internal/domain"
)

// RecordPaperOpened accumulates reading time and remembers the last
// opened page for a paper. Stats rows are seeded at import but the
// upsert tolerates databases predating that.
func (s *Store) RecordPaperOpened(ctx context.Context, paperID string, page int64, readSeconds int64) error {
	if strings.TrimSpace(paperID) == "" {
		return domain.BadRequest("paperId is required")
	}
	if readSeconds < 0 {
		return domain.BadRequest("readSeconds cannot be negative")
	}

	return s.withTx(ctx, "record paper opened", func(tx *sql.Tx) error {
		if err := paperExists(ctx, tx.QueryRowContext, paperID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO paper_stats (paperId, totalReadTime, lastOpenedPage)
			VALUES (?, ?, ?)
			ON CONFLICT(paperId) DO UPDATE SET
				totalReadTime = totalReadTime + excluded.totalReadTime,
				lastOpenedPage = excluded.lastOpenedPage
		`, paperID, readSeconds, page); err != nil {
			return domain.DBError(fmt.Errorf("record paper opened: %w", err))
		}
		return nil
	})
}

// RecordNoteReviewed bumps a note's review counter and stamps the review
// time.
func (s *Store) RecordNoteReviewed(ctx context.Context, noteID string) error {
	if strings.TrimSpace(noteID) == "" {
		return domain.BadRequest("noteId is required")
	}

	return s.withTx(ctx, "record note reviewed", func(tx *sql.Tx) error {
		if err := noteExistsTx(ctx, tx, noteID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO note_stats (noteId, reviewCount, lastReviewedAt)
			VALUES (?, 1, ?)
			ON CONFLICT(noteId) DO UPDATE SET
				reviewCount = reviewCount + 1,
				lastReviewedAt = excluded.lastReviewedAt
		`, noteID, s.now()); err != nil {
			return domain.DBError(fmt.Errorf("record note reviewed: %w", err))
		}
		return nil
	})
}

// GetPaperStats returns the stats row for a paper.
func (s *Store) GetPaperStats(ctx context.Context, paperID string) (domain.PaperStats, error) {
	if strings.TrimSpace(paperID) == "" {
		return domain.PaperStats{}, domain.BadRequest("paperId is required")
	}

	defer s.lock()()

	var stats domain.PaperStats
	var lastPage sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT paperId, totalReadTime, lastOpenedPage FROM paper_stats WHERE paperId = ?
	`, paperID).Scan(&stats.PaperID, &stats.TotalReadTime, &lastPage)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PaperStats{}, domain.NotFound("paper %s not found", paperID)
	}
	if err != nil {
		return domain.PaperStats{}, domain.DBError(fmt.Errorf("get paper stats: %w", err))
	}
	if lastPage.Valid {
		stats.LastOpenedPage = &lastPage.Int64
	}
	return stats, nil
}

// ReviewSummary aggregates review activity across the whole database.
func (s *Store) ReviewSummary(ctx context.Context) (domain.ReviewSummary, error) {
	defer s.lock()()

	var summary domain.ReviewSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM paper),
			(SELECT COUNT(*) FROM note),
			(SELECT COUNT(*) FROM note_stats WHERE reviewCount > 0),
			(SELECT COALESCE(SUM(reviewCount), 0) FROM note_stats)
	`).Scan(&summary.PaperCount, &summary.NoteCount, &summary.ReviewedNotes, &summary.TotalReviews)
	if err != nil {
		return domain.ReviewSummary{}, domain.DBError(fmt.Errorf("review summary: %w", err))
	}
	return summary, nil
}
