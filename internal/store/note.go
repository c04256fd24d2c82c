package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/paperflow-app/paperflow/internal/domain"
)

const noteColumns = `id, paperId, page, x, y, content, color, createdAt, updatedAt`

type noteRow struct {
	id        string
	paperID   string
	page      int
	x         float64
	y         float64
	content   string
	color     sql.NullString
	createdAt string
	updatedAt string
}

func (r *noteRow) toDomain() domain.Note {
	n := domain.Note{
		ID:        r.id,
		PaperID:   r.paperID,
		Page:      r.page,
		X:         r.x,
		Y:         r.y,
		Content:   r.content,
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
	if r.color.Valid {
		n.Color = &r.color.String
	}
	return n
}

func scanNote(row rowScanner) (noteRow, error) {
	var r noteRow
	err := row.Scan(
		&r.id, &r.paperID, &r.page, &r.x, &r.y,
		&r.content, &r.color, &r.createdAt, &r.updatedAt,
	)
	return r, err
}

// ListNotes returns all notes on a paper in creation order. The parent
// paper must exist even when the note set would be empty.
func (s *Store) ListNotes(ctx context.Context, paperID string) ([]domain.Note, error) {
	if strings.TrimSpace(paperID) == "" {
		return nil, domain.BadRequest("paperId is required")
	}

	defer s.lock()()

	if err := paperExists(ctx, s.db.QueryRowContext, paperID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM note
		WHERE paperId = ?
		ORDER BY datetime(createdAt) ASC
	`, paperID)
	if err != nil {
		return nil, domain.DBError(fmt.Errorf("list notes: %w", err))
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		r, err := scanNote(rows)
		if err != nil {
			return nil, domain.DBError(fmt.Errorf("scan note: %w", err))
		}
		notes = append(notes, r.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DBError(fmt.Errorf("iterate notes: %w", err))
	}

	return notes, nil
}

// GetNote returns a single note by id.
func (s *Store) GetNote(ctx context.Context, noteID string) (domain.Note, error) {
	if strings.TrimSpace(noteID) == "" {
		return domain.Note{}, domain.BadRequest("noteId is required")
	}

	defer s.lock()()

	r, err := scanNote(s.db.QueryRowContext(ctx, `
		SELECT `+noteColumns+` FROM note WHERE id = ? LIMIT 1
	`, noteID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Note{}, domain.NotFound("note %s not found", noteID)
	}
	if err != nil {
		return domain.Note{}, domain.DBError(fmt.Errorf("get note: %w", err))
	}
	return r.toDomain(), nil
}

// CreateNote inserts a note under an existing paper, seeds its stats
// row, and writes the matching search index entry — all in one
// transaction.
func (s *Store) CreateNote(ctx context.Context, note domain.NewNote) (domain.Note, error) {
	if strings.TrimSpace(note.PaperID) == "" {
		return domain.Note{}, domain.BadRequest("paperId is required")
	}
	if strings.TrimSpace(note.Content) == "" {
		return domain.Note{}, domain.BadRequest("note content cannot be empty")
	}

	var created domain.Note
	err := s.withTx(ctx, "create note", func(tx *sql.Tx) error {
		if err := paperExists(ctx, tx.QueryRowContext, note.PaperID); err != nil {
			return err
		}

		noteID := s.newID()
		now := s.now()

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO note (id, paperId, page, x, y, content, color, createdAt, updatedAt)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, noteID, note.PaperID, note.Page, note.X, note.Y,
			note.Content, nullable(note.Color), now, now); err != nil {
			return domain.DBError(fmt.Errorf("insert note: %w", err))
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO note_stats (noteId) VALUES (?)
		`, noteID); err != nil {
			return domain.DBError(fmt.Errorf("seed note stats: %w", err))
		}

		if err := upsertSearchEntry(ctx, tx, domain.NoteRefType, noteID, note.Content); err != nil {
			return err
		}

		r, err := scanNote(tx.QueryRowContext(ctx, `
			SELECT `+noteColumns+` FROM note WHERE id = ?
		`, noteID))
		if err != nil {
			return domain.DBError(fmt.Errorf("read created note: %w", err))
		}
		created = r.toDomain()
		return nil
	})
	if err != nil {
		return domain.Note{}, err
	}
	return created, nil
}

// UpdateNote applies a patch to an existing note. Only fields present in
// the patch are touched; a supplied content must be non-blank. The
// search index entry is refreshed in the same transaction.
func (s *Store) UpdateNote(ctx context.Context, patch domain.UpdateNote) (domain.Note, error) {
	if strings.TrimSpace(patch.ID) == "" {
		return domain.Note{}, domain.BadRequest("id is required")
	}

	var updated domain.Note
	err := s.withTx(ctx, "update note", func(tx *sql.Tx) error {
		r, err := scanNote(tx.QueryRowContext(ctx, `
			SELECT `+noteColumns+` FROM note WHERE id = ?
		`, patch.ID))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("note %s not found", patch.ID)
		}
		if err != nil {
			return domain.DBError(fmt.Errorf("load note: %w", err))
		}

		if patch.Content != nil {
			if strings.TrimSpace(*patch.Content) == "" {
				return domain.BadRequest("note content cannot be empty")
			}
			r.content = *patch.Content
		}
		if patch.Color != nil {
			r.color = sql.NullString{String: *patch.Color, Valid: true}
		}
		r.updatedAt = s.now()

		if _, err := tx.ExecContext(ctx, `
			UPDATE note SET content = ?, color = ?, updatedAt = ? WHERE id = ?
		`, r.content, r.color, r.updatedAt, r.id); err != nil {
			return domain.DBError(fmt.Errorf("update note: %w", err))
		}

		if err := upsertSearchEntry(ctx, tx, domain.NoteRefType, r.id, r.content); err != nil {
			return err
		}

		updated = r.toDomain()
		return nil
	})
	if err != nil {
		return domain.Note{}, err
	}
	return updated, nil
}

// DeleteNote removes a note and its search index entry. Deleting an
// absent note is NotFound: deletes must target something real.
func (s *Store) DeleteNote(ctx context.Context, noteID string) error {
	if strings.TrimSpace(noteID) == "" {
		return domain.BadRequest("id is required")
	}

	return s.withTx(ctx, "delete note", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM note WHERE id = ?`, noteID)
		if err != nil {
			return domain.DBError(fmt.Errorf("delete note: %w", err))
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return domain.DBError(fmt.Errorf("delete note: rows affected: %w", err))
		}
		if affected == 0 {
			return domain.NotFound("note %s not found", noteID)
		}

		return removeSearchEntry(ctx, tx, domain.NoteRefType, noteID)
	})
}

// queryRowFunc abstracts QueryRowContext so existence checks work both
// inside and outside a transaction.
type queryRowFunc func(ctx context.Context, query string, args ...any) *sql.Row

// paperExists verifies the parent paper before note operations so a
// missing reference surfaces as NotFound rather than a constraint
// violation.
func paperExists(ctx context.Context, queryRow queryRowFunc, paperID string) error {
	var one int64
	err := queryRow(ctx, `SELECT 1 FROM paper WHERE id = ?`, paperID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("paper %s not found", paperID)
	}
	if err != nil {
		return domain.DBError(fmt.Errorf("check paper: %w", err))
	}
	return nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
