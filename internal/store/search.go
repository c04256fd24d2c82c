package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/paperflow-app/paperflow/internal/domain"
	"github.com/paperflow-app/paperflow/internal/fts"
)

const (
	searchLimitMin = 1
	searchLimitMax = 100
)

// SearchQuery runs a ranked lexical match against the search index.
// Each token of the term is a prefix match and tokens are ANDed. The
// limit clamps to [1,100]. A term with no queryable content returns no
// hits without touching storage.
func (s *Store) SearchQuery(ctx context.Context, term string, limit int) ([]domain.SearchHit, error) {
	matchExpr := fts.BuildMatchExpression(term)
	if matchExpr == "" {
		return []domain.SearchHit{}, nil
	}

	if limit < searchLimitMin {
		limit = searchLimitMin
	}
	if limit > searchLimitMax {
		limit = searchLimitMax
	}

	defer s.lock()()

	rows, err := s.db.QueryContext(ctx, `
		SELECT refType, refId,
		       snippet(search_index, 0, '<b>', '</b>', ' ... ', 10) AS snippet,
		       bm25(search_index) AS rank
		FROM search_index
		WHERE search_index MATCH ?
		ORDER BY rank ASC
		LIMIT ?
	`, matchExpr, limit)
	if err != nil {
		return nil, domain.DBError(fmt.Errorf("search query: %w", err))
	}
	defer rows.Close()

	hits := []domain.SearchHit{}
	for rows.Next() {
		var hit domain.SearchHit
		var snippet sql.NullString
		var rank float64
		if err := rows.Scan(&hit.RefType, &hit.RefID, &snippet, &rank); err != nil {
			return nil, domain.DBError(fmt.Errorf("scan search hit: %w", err))
		}
		if snippet.Valid {
			hit.Snippet = &snippet.String
		}
		hit.Score = rankToScore(rank)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DBError(fmt.Errorf("iterate search hits: %w", err))
	}

	return hits, nil
}

// SearchRebuild clears the entire index and re-derives one entry per
// existing note. This is the authoritative recovery path whenever index
// consistency is suspected to have drifted. Idempotent.
func (s *Store) SearchRebuild(ctx context.Context) error {
	return s.withTx(ctx, "search rebuild", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM search_index`); err != nil {
			return domain.DBError(fmt.Errorf("clear search index: %w", err))
		}

		rows, err := tx.QueryContext(ctx, `SELECT id, content FROM note`)
		if err != nil {
			return domain.DBError(fmt.Errorf("read notes for rebuild: %w", err))
		}

		type noteContent struct{ id, content string }
		var notes []noteContent
		for rows.Next() {
			var n noteContent
			if err := rows.Scan(&n.id, &n.content); err != nil {
				rows.Close()
				return domain.DBError(fmt.Errorf("scan note for rebuild: %w", err))
			}
			notes = append(notes, n)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return domain.DBError(fmt.Errorf("iterate notes for rebuild: %w", err))
		}
		rows.Close()

		for _, n := range notes {
			if err := upsertSearchEntry(ctx, tx, domain.NoteRefType, n.id, n.content); err != nil {
				return err
			}
		}
		return nil
	})
}

// upsertSearchEntry replaces the index entry for (refType, refId) with
// the normalized form of rawContent. Content that normalizes to nothing
// leaves no entry at all.
func upsertSearchEntry(ctx context.Context, tx *sql.Tx, refType, refID, rawContent string) error {
	if err := removeSearchEntry(ctx, tx, refType, refID); err != nil {
		return err
	}

	normalized := fts.NormalizeContent(rawContent)
	if normalized == "" {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO search_index (content, refType, refId) VALUES (?, ?, ?)
	`, normalized, refType, refID); err != nil {
		return domain.DBError(fmt.Errorf("insert search entry: %w", err))
	}
	return nil
}

// removeSearchEntry deletes the index entry for (refType, refId), if any.
func removeSearchEntry(ctx context.Context, tx *sql.Tx, refType, refID string) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM search_index WHERE refType = ? AND refId = ?
	`, refType, refID); err != nil {
		return domain.DBError(fmt.Errorf("remove search entry: %w", err))
	}
	return nil
}

// rankToScore folds an unbounded lower-is-better bm25 rank into a
// bounded [0,1] relevance score. Non-finite ranks score 0.
func rankToScore(rank float64) float64 {
	if math.IsNaN(rank) || math.IsInf(rank, 0) {
		return 0
	}
	return 1 / (1 + rank)
}
